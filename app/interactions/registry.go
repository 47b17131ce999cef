// interactions/registry.go
package interactions

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ComponentHandler handles a component interaction targeting one message.
type ComponentHandler func(ctx context.Context, i *discordgo.InteractionCreate) error

type discordgoAdder interface {
	AddHandler(handler interface{}) func()
}

// Registry routes component interactions to the handler registered for the
// message they target. A single InteractionCreate subscription serves every
// message; handlers are removed once their message goes inert.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ComponentHandler
	logger   *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]ComponentHandler),
		logger:   logger,
	}
}

// RegisterHandler routes interactions on messageID to handler, replacing any
// previous registration.
func (r *Registry) RegisterHandler(messageID string, handler ComponentHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[messageID] = handler
}

// RemoveHandler stops routing interactions on messageID.
func (r *Registry) RemoveHandler(messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, messageID)
}

// Len returns the number of messages with a live handler.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// RegisterWithSession subscribes the registry to InteractionCreate events.
func (r *Registry) RegisterWithSession(session discordgoAdder) func() {
	return session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		r.HandleInteraction(s, i)
	})
}

func (r *Registry) HandleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if i.Message == nil || i.Message.ID == "" {
		return
	}

	r.mu.RLock()
	handler, ok := r.handlers[i.Message.ID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	r.run(context.Background(), i, handler)
}

func (r *Registry) run(ctx context.Context, i *discordgo.InteractionCreate, handler ComponentHandler) {
	defer func() {
		if recovered := recover(); recovered != nil && r.logger != nil {
			r.logger.Error("Recovered panic from component handler",
				slog.String("discord_message_id", i.Message.ID),
				slog.String("interaction_id", i.ID),
				slog.Any("panic", recovered),
				slog.String("stack_trace", string(debug.Stack())))
		}
	}()

	if err := handler(ctx, i); err != nil && r.logger != nil {
		r.logger.ErrorContext(ctx, "Component handler failed",
			slog.String("discord_message_id", i.Message.ID),
			slog.String("interaction_id", i.ID),
			slog.String("custom_id", i.MessageComponentData().CustomID),
			slog.Any("error", err))
	}
}
