// Package catalog loads the named page collections the bot can paginate.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"gopkg.in/yaml.v3"
)

// ErrBookNotFound is returned by Lookup for an unknown book name.
var ErrBookNotFound = errors.New("book not found")

// Field is a single embed field.
type Field struct {
	Name   string `yaml:"name"`
	Value  string `yaml:"value"`
	Inline bool   `yaml:"inline"`
}

// Page describes one embed.
type Page struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	URL         string  `yaml:"url"`
	Color       int     `yaml:"color"`
	Footer      string  `yaml:"footer"`
	Thumbnail   string  `yaml:"thumbnail"`
	Image       string  `yaml:"image"`
	Fields      []Field `yaml:"fields"`
}

// Book is a named, ordered collection of pages.
type Book struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Pages       []Page `yaml:"pages"`
}

// Embed converts the page to a Discord embed.
func (p Page) Embed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       p.Title,
		Description: p.Description,
		URL:         p.URL,
		Color:       p.Color,
	}
	if p.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: p.Footer}
	}
	if p.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: p.Thumbnail}
	}
	if p.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: p.Image}
	}
	for _, f := range p.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}

// Embeds converts every page of the book, in order.
func (b Book) Embeds() []*discordgo.MessageEmbed {
	embeds := make([]*discordgo.MessageEmbed, 0, len(b.Pages))
	for _, p := range b.Pages {
		embeds = append(embeds, p.Embed())
	}
	return embeds
}

// Catalog indexes books by lower-cased name.
type Catalog struct {
	books map[string]Book
}

type file struct {
	Books []Book `yaml:"books"`
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML. Book names must be unique regardless of case.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	c := &Catalog{books: make(map[string]Book, len(f.Books))}
	for idx, b := range f.Books {
		key := strings.ToLower(strings.TrimSpace(b.Name))
		if key == "" {
			return nil, fmt.Errorf("book %d has no name", idx+1)
		}
		if _, exists := c.books[key]; exists {
			return nil, fmt.Errorf("duplicate book name %q", b.Name)
		}
		c.books[key] = b
	}
	return c, nil
}

// Lookup finds a book by name, ignoring case.
func (c *Catalog) Lookup(name string) (Book, error) {
	b, ok := c.books[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Book{}, fmt.Errorf("%w: %q", ErrBookNotFound, name)
	}
	return b, nil
}

// Names returns the book names sorted alphabetically.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.books))
	for _, b := range c.books {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of books.
func (c *Catalog) Len() int {
	return len(c.books)
}
