package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Black-And-White-Club/discord-paginator/app/catalog"
	discord "github.com/Black-And-White-Club/discord-paginator/app/discordgo"
	"github.com/Black-And-White-Club/discord-paginator/app/paginator"
	"github.com/bwmarrin/discordgo"
)

// handlePagesCommand serves "<prefix>pages [book] [startPage]". Without a book
// it lists what the catalog holds.
func (bot *DiscordBot) handlePagesCommand(ctx context.Context, s discord.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		bot.reply(ctx, s, m, bot.bookList())
		return
	}

	book, err := bot.Catalog.Lookup(args[0])
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			bot.reply(ctx, s, m, fmt.Sprintf("Unknown book %q. %s", args[0], bot.bookList()))
			return
		}
		bot.Logger.ErrorContext(ctx, "Failed to look up book", slog.Any("error", err))
		return
	}

	var opts []paginator.Option
	if len(args) > 1 {
		start, err := strconv.Atoi(args[1])
		if err != nil {
			bot.reply(ctx, s, m, fmt.Sprintf("%q is not a page number.", args[1]))
			return
		}
		opts = append(opts, paginator.WithStartPage(start))
	}

	_, err = bot.Paginator.Paginate(ctx, m.Message, book.Embeds(), opts...)
	switch {
	case err == nil:
	case errors.Is(err, paginator.ErrTooFewPages):
		bot.reply(ctx, s, m, fmt.Sprintf("%q needs at least two pages to be paginated.", book.Name))
	case errors.Is(err, paginator.ErrStartPageOutOfRange):
		bot.reply(ctx, s, m, fmt.Sprintf("Page must be between 1 and %d.", len(book.Pages)))
	default:
		bot.Logger.ErrorContext(ctx, "Failed to paginate book",
			slog.String("book", book.Name),
			slog.String("channel_id", m.ChannelID),
			slog.Any("error", err))
	}
}

func (bot *DiscordBot) bookList() string {
	names := bot.Catalog.Names()
	if len(names) == 0 {
		return "No books are available."
	}
	return "Available books: " + strings.Join(names, ", ")
}

func (bot *DiscordBot) reply(ctx context.Context, s discord.Session, m *discordgo.MessageCreate, content string) {
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:   content,
		Reference: m.Reference(),
	})
	if err != nil {
		bot.Logger.ErrorContext(ctx, "Failed to send command reply",
			slog.String("channel_id", m.ChannelID),
			slog.Any("error", err))
	}
}
