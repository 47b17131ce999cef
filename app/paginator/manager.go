package paginator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	discord "github.com/Black-And-White-Club/discord-paginator/app/discordgo"
	"github.com/Black-And-White-Club/discord-paginator/app/interactions"
	"github.com/Black-And-White-Club/discord-paginator/app/metrics"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Dispatcher routes component interactions to the session owning a message.
type Dispatcher interface {
	RegisterHandler(messageID string, handler interactions.ComponentHandler)
	RemoveHandler(messageID string)
}

// Manager starts paginator sessions and tracks the live ones.
type Manager interface {
	Paginate(ctx context.Context, invoking *discordgo.Message, pages []*discordgo.MessageEmbed, opts ...Option) (*discordgo.Message, error)
	Active() int
	Shutdown(ctx context.Context)
}

type manager struct {
	session    discord.Session
	dispatcher Dispatcher
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    metrics.PaginatorMetrics
	defaults   Options

	mu       sync.Mutex
	sessions map[string]*Paginator

	operationWrapper func(ctx context.Context, operationName string, fn func(context.Context) error) error
}

// NewManager creates a new Manager. defaults apply to every session before
// per-call options.
func NewManager(
	session discord.Session,
	dispatcher Dispatcher,
	logger *slog.Logger,
	tracer trace.Tracer,
	paginatorMetrics metrics.PaginatorMetrics,
	defaults Options,
) (Manager, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if tracer == nil {
		return nil, fmt.Errorf("tracer cannot be nil")
	}
	if paginatorMetrics == nil {
		paginatorMetrics = metrics.NewNoop()
	}

	logger.InfoContext(context.Background(), "Creating PaginatorManager",
		slog.Bool("show_page_numbers", defaults.ShowPageNumbers),
		slog.Bool("cycling", defaults.Cycling),
		slog.Duration("timeout", defaults.Timeout),
	)

	return &manager{
		session:    session,
		dispatcher: dispatcher,
		logger:     logger,
		tracer:     tracer,
		metrics:    paginatorMetrics,
		defaults:   defaults,
		sessions:   make(map[string]*Paginator),
		operationWrapper: func(ctx context.Context, operationName string, fn func(context.Context) error) error {
			return wrapPaginatorOperation(ctx, operationName, fn, logger, tracer, paginatorMetrics)
		},
	}, nil
}

// wrapPaginatorOperation wraps paginator operations with tracing and logging
func wrapPaginatorOperation(
	ctx context.Context,
	operationName string,
	fn func(context.Context) error,
	logger *slog.Logger,
	tracer trace.Tracer,
	paginatorMetrics metrics.PaginatorMetrics,
) error {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("paginator.%s", operationName))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		paginatorMetrics.OperationFailed(operationName)
		logger.ErrorContext(ctx, "Paginator operation failed",
			"operation", operationName,
			"duration_sec", fmt.Sprintf("%.2f", duration.Seconds()),
			"error", err)
		return err
	}

	logger.DebugContext(ctx, "Paginator operation completed",
		"operation", operationName,
		"duration_sec", fmt.Sprintf("%.2f", duration.Seconds()))
	return nil
}

// Paginate sends the first page for invoking's author and keeps the controls
// live until the session is disabled or times out.
func (m *manager) Paginate(ctx context.Context, invoking *discordgo.Message, pages []*discordgo.MessageEmbed, opts ...Option) (*discordgo.Message, error) {
	var sent *discordgo.Message
	err := m.operationWrapper(ctx, "paginate", func(ctx context.Context) error {
		all := append([]Option{WithOptions(m.defaults)}, opts...)
		p := New(m.session, invoking, pages, all...)
		p.logger = m.logger
		p.metrics = m.metrics
		p.onClose = m.release

		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("paginator.session_id", p.SessionID()),
			attribute.Int("paginator.pages", len(pages)),
		)

		msg, err := p.Start(ctx)
		if err != nil {
			return err
		}

		m.mu.Lock()
		m.sessions[msg.ID] = p
		m.mu.Unlock()
		m.dispatcher.RegisterHandler(msg.ID, func(ctx context.Context, i *discordgo.InteractionCreate) error {
			return m.operationWrapper(ctx, "handle_interaction", func(ctx context.Context) error {
				return p.HandleInteraction(ctx, i)
			})
		})
		m.metrics.SessionStarted()

		// The timer may already have fired before the handler was registered.
		if p.Closed() {
			m.release(msg.ID)
		}

		sent = msg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sent, nil
}

// Active returns the number of sessions whose controls are still live.
func (m *manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown disables every live session.
func (m *manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	live := make([]*Paginator, 0, len(m.sessions))
	for _, p := range m.sessions {
		live = append(live, p)
	}
	m.mu.Unlock()

	for _, p := range live {
		err := m.operationWrapper(ctx, "shutdown", func(ctx context.Context) error {
			return p.close(ctx, CloseReasonShutdown)
		})
		if err != nil {
			m.logger.WarnContext(ctx, "Failed to disable paginator on shutdown",
				slog.String("session_id", p.SessionID()))
		}
	}
}

func (m *manager) release(messageID string) {
	m.mu.Lock()
	delete(m.sessions, messageID)
	m.mu.Unlock()
	m.dispatcher.RemoveHandler(messageID)
}
