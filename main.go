package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/discord-paginator/app/bot"
	"github.com/Black-And-White-Club/discord-paginator/app/catalog"
	discord "github.com/Black-And-White-Club/discord-paginator/app/discordgo"
	"github.com/Black-And-White-Club/discord-paginator/app/health"
	"github.com/Black-And-White-Club/discord-paginator/app/interactions"
	"github.com/Black-And-White-Club/discord-paginator/app/metrics"
	"github.com/Black-And-White-Club/discord-paginator/app/observability"
	"github.com/Black-And-White-Club/discord-paginator/app/paginator"
	"github.com/Black-And-White-Club/discord-paginator/config"
	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	// Load configuration.
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger.
	logger, closeLog, err := observability.NewLogger(cfg.Log, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize tracing.
	tracer, tracerShutdown, err := observability.InitTracing(ctx, cfg.Tracing, cfg.Service.Name, cfg.Service.Version)
	if err != nil {
		logger.Error("Failed to initialize tracing", slog.Any("error", err))
		return
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := tracerShutdown(shutdownCtx); err != nil {
			logger.Error("Failed to flush traces", slog.Any("error", err))
		}
	}()

	// Metrics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	paginatorMetrics := metrics.NewPrometheusMetrics(registry, "discord")

	books, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error("Failed to load catalog", slog.String("path", cfg.Catalog.Path), slog.Any("error", err))
		return
	}

	// Create Discord session.
	discordSession, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	// Set Discord intents.
	discordSession.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	// Wrap the Discord session in the correct interface.
	discordSessionWrapper := discord.NewDiscordSession(discordSession, logger)

	interactionRegistry := interactions.NewRegistry(logger)

	defaults := paginator.DefaultOptions()
	defaults.Timeout = cfg.Paginator.Timeout()
	defaults.Cycling = cfg.Paginator.CyclingEnabled()
	defaults.ShowPageNumbers = cfg.Paginator.PageNumbersEnabled()

	manager, err := paginator.NewManager(discordSessionWrapper, interactionRegistry, logger, tracer, paginatorMetrics, defaults)
	if err != nil {
		log.Fatalf("Failed to create paginator manager: %v", err)
	}

	healthHandler := health.NewHandler(cfg.Service.Version, manager.Active, registry, logger)
	go func() {
		if err := healthHandler.StartServer(ctx, cfg.Health.Addr); err != nil {
			logger.Error("Health server error", slog.Any("error", err))
		}
	}()

	// Create the Discord bot, passing in dependencies.
	discordBot, err := bot.NewDiscordBot(discordSessionWrapper, cfg, logger, manager, interactionRegistry, books, healthHandler)
	if err != nil {
		log.Fatalf("Failed to create Discord bot: %v", err)
	}

	if err := discordBot.Run(ctx); err != nil {
		logger.Error("Discord bot error", slog.Any("error", err))
		return
	}

	// Handle graceful shutdown.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan // Block until a signal is received.

	logger.Info("Shutting down gracefully...")
	cancel()

	// Close the Discord bot.
	discordBot.Close()

	logger.Info("Shutdown complete.")
}
