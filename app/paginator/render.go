package paginator

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const footerSeparator = " • "

// PageCounter formats the footer counter for a 1-based page index.
func PageCounter(index, total int) string {
	return fmt.Sprintf("Page %d of %d", index, total)
}

// RenderPage returns a copy of page ready to send. The caller's embed is left
// untouched; with showNumbers the copy's footer gets the page counter appended.
func RenderPage(page *discordgo.MessageEmbed, index, total int, showNumbers bool) *discordgo.MessageEmbed {
	rendered := *page
	if page.Footer != nil {
		footer := *page.Footer
		rendered.Footer = &footer
	}
	if !showNumbers {
		return &rendered
	}

	counter := PageCounter(index, total)
	if rendered.Footer == nil {
		rendered.Footer = &discordgo.MessageEmbedFooter{Text: counter}
		return &rendered
	}
	if rendered.Footer.Text == "" {
		rendered.Footer.Text = counter
	} else {
		rendered.Footer.Text = rendered.Footer.Text + footerSeparator + counter
	}
	return &rendered
}
