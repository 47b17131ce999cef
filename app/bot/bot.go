package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/discord-paginator/app/catalog"
	discord "github.com/Black-And-White-Club/discord-paginator/app/discordgo"
	"github.com/Black-And-White-Club/discord-paginator/app/health"
	"github.com/Black-And-White-Club/discord-paginator/app/interactions"
	"github.com/Black-And-White-Club/discord-paginator/app/paginator"
	"github.com/Black-And-White-Club/discord-paginator/config"
	"github.com/bwmarrin/discordgo"
)

type DiscordBot struct {
	Session   discord.Session
	Logger    *slog.Logger
	Config    *config.Config
	Paginator paginator.Manager
	Catalog   *catalog.Catalog
	Registry  *interactions.Registry
	Messages  *interactions.MessageRegistry
	Health    *health.Handler

	removers  []func()
	closeOnce sync.Once
}

func NewDiscordBot(
	session discord.Session,
	cfg *config.Config,
	logger *slog.Logger,
	manager paginator.Manager,
	registry *interactions.Registry,
	books *catalog.Catalog,
	healthHandler *health.Handler,
) (*DiscordBot, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if manager == nil {
		return nil, fmt.Errorf("paginator manager cannot be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if books == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}

	logger.InfoContext(context.Background(), "Creating DiscordBot",
		slog.Int("books", books.Len()),
		slog.String("command_prefix", cfg.Discord.CommandPrefix))

	return &DiscordBot{
		Session:   session,
		Logger:    logger,
		Config:    cfg,
		Paginator: manager,
		Catalog:   books,
		Registry:  registry,
		Messages:  interactions.NewMessageRegistry(logger, cfg.Discord.CommandPrefix),
		Health:    healthHandler,
	}, nil
}

// Run wires the handlers onto the session and opens the gateway. It returns
// once the connection is open; cancelling ctx closes the bot.
func (bot *DiscordBot) Run(ctx context.Context) error {
	bot.Logger.InfoContext(ctx, "Entering bot.Run()...")

	bot.Messages.RegisterCommand("pages", bot.handlePagesCommand)

	bot.removers = append(bot.removers,
		bot.Registry.RegisterWithSession(bot.Session),
		bot.Messages.RegisterWithSession(bot.Session, bot.Session),
		bot.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
			bot.Logger.InfoContext(ctx, "Discord bot is connected and ready.")
			bot.setReady(true)
		}),
		bot.Session.AddHandler(func(s *discordgo.Session, d *discordgo.Disconnect) {
			bot.Logger.WarnContext(ctx, "Discord gateway disconnected")
			bot.setReady(false)
		}),
	)

	if err := bot.Session.Open(); err != nil {
		bot.Logger.ErrorContext(ctx, "Error opening discord connection", slog.Any("error", err))
		return err
	}

	bot.Logger.InfoContext(ctx, "Discord bot is now running.")

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		bot.Logger.Info("Shutting down Discord bot...")
		bot.Close()
	}()

	return nil
}

// Close disables every live paginator, then closes the Discord session. Safe
// to call more than once.
func (bot *DiscordBot) Close() {
	bot.closeOnce.Do(func() {
		ctx := context.Background()
		bot.Logger.InfoContext(ctx, "Closing bot",
			slog.Int("active_sessions", bot.Paginator.Active()))

		bot.Paginator.Shutdown(ctx)
		bot.setReady(false)
		for _, remove := range bot.removers {
			if remove != nil {
				remove()
			}
		}

		if err := bot.Session.Close(); err != nil {
			bot.Logger.ErrorContext(ctx, "Failed to close Discord session", slog.Any("error", err))
		}
	})
}

func (bot *DiscordBot) setReady(ready bool) {
	if bot.Health != nil {
		bot.Health.SetReady(ready)
	}
}
