// interactions/message_registry.go
package interactions

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"

	discord "github.com/Black-And-White-Club/discord-paginator/app/discordgo"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler handles a prefixed text command. args excludes the command itself.
type CommandHandler func(ctx context.Context, s discord.Session, m *discordgo.MessageCreate, args []string)

// MessageRegistry routes MessageCreate events to text commands such as "!pages".
type MessageRegistry struct {
	prefix   string
	commands map[string]CommandHandler
	logger   *slog.Logger
}

// NewMessageRegistry creates a new MessageRegistry for commands starting with prefix.
func NewMessageRegistry(logger *slog.Logger, prefix string) *MessageRegistry {
	return &MessageRegistry{
		prefix:   prefix,
		commands: make(map[string]CommandHandler),
		logger:   logger,
	}
}

// RegisterCommand registers a handler for prefix+name. Names are case-insensitive.
func (r *MessageRegistry) RegisterCommand(name string, handler CommandHandler) {
	r.commands[strings.ToLower(name)] = handler
}

// RegisterWithSession registers the MessageCreate handler with the Discord session
func (r *MessageRegistry) RegisterWithSession(session discordgoAdder, wrapperSession discord.Session) func() {
	return session.AddHandler(func(s *discordgo.Session, e *discordgo.MessageCreate) {
		var sessionUserID string
		if s != nil && s.State != nil && s.State.User != nil {
			sessionUserID = s.State.User.ID
		}
		r.HandleMessageCreate(context.Background(), sessionUserID, wrapperSession, e)
	})
}

// HandleMessageCreate dispatches one message. Messages authored by botUserID
// are ignored to prevent the bot answering itself.
func (r *MessageRegistry) HandleMessageCreate(ctx context.Context, botUserID string, s discord.Session, e *discordgo.MessageCreate) {
	if e == nil || e.Message == nil {
		r.warn("Ignoring MessageCreate event with nil payload")
		return
	}
	if e.Author == nil {
		r.warn("Ignoring MessageCreate event with nil author",
			slog.String("channel_id", e.ChannelID),
			slog.String("message_id", e.ID))
		return
	}
	if e.Author.Bot || (botUserID != "" && e.Author.ID == botUserID) {
		return
	}

	name, args, ok := r.parse(e.Content)
	if !ok {
		return
	}
	handler, ok := r.commands[name]
	if !ok || handler == nil {
		return
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, "Dispatching text command",
			slog.String("command", name),
			slog.String("author_id", e.Author.ID),
			slog.String("channel_id", e.ChannelID),
			slog.String("message_id", e.ID))
	}

	defer func() {
		if recovered := recover(); recovered != nil && r.logger != nil {
			r.logger.Error("Recovered panic from command handler",
				slog.String("command", name),
				slog.String("channel_id", e.ChannelID),
				slog.String("message_id", e.ID),
				slog.Any("panic", recovered),
				slog.String("stack_trace", string(debug.Stack())))
		}
	}()

	handler(ctx, s, e, args)
}

func (r *MessageRegistry) parse(content string) (string, []string, bool) {
	if r.prefix == "" || !strings.HasPrefix(content, r.prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, r.prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

func (r *MessageRegistry) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
