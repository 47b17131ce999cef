package paginator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	discord "github.com/Black-And-White-Club/discord-paginator/app/discordgo"
	"github.com/Black-And-White-Club/discord-paginator/app/metrics"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// NotAllowedMessage is sent privately to anyone but the invoker who presses a control.
const NotAllowedMessage = "You are not allowed to use these controls."

// Reasons a session reaches its terminal state.
const (
	CloseReasonDisabled = "disabled"
	CloseReasonTimeout  = "timeout"
	CloseReasonShutdown = "shutdown"
)

type stopper interface {
	Stop() bool
}

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// Paginator is one live session bound to a single sent message.
type Paginator struct {
	session discord.Session
	logger  *slog.Logger
	metrics metrics.PaginatorMetrics

	id        string
	channelID string
	authorID  string
	pages     []*discordgo.MessageEmbed
	opts      Options

	mu       sync.Mutex
	page     int
	closed   bool
	message  *discordgo.Message
	timer    stopper
	timerGen uint64
	version  uint64

	// editMu serializes edits; applied is the last version written to Discord.
	editMu  sync.Mutex
	applied uint64

	afterFunc func(time.Duration, func()) stopper
	onClose   func(messageID string)
}

// New builds a session for the author of invoking. It performs no I/O and no
// validation; Start does both.
func New(session discord.Session, invoking *discordgo.Message, pages []*discordgo.MessageEmbed, opts ...Option) *Paginator {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Paginator{
		session:   session,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:   metrics.NewNoop(),
		id:        uuid.New().String(),
		pages:     pages,
		opts:      o,
		page:      o.StartPage,
		afterFunc: realAfterFunc,
	}
	if invoking != nil {
		p.channelID = invoking.ChannelID
		if invoking.Author != nil {
			p.authorID = invoking.Author.ID
		}
	}
	return p
}

// Validate reports why the session cannot start, if it cannot.
func (p *Paginator) Validate() error {
	if p.channelID == "" || p.authorID == "" {
		return ErrNoInvoker
	}
	if len(p.pages) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewPages, len(p.pages))
	}
	for idx, page := range p.pages {
		if page == nil {
			return fmt.Errorf("%w: page %d", ErrNilPage, idx+1)
		}
	}
	if p.opts.StartPage < 1 || p.opts.StartPage > len(p.pages) {
		return fmt.Errorf("%w: %d is not between 1 and %d", ErrStartPageOutOfRange, p.opts.StartPage, len(p.pages))
	}
	if p.opts.Timeout <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidTimeout, p.opts.Timeout)
	}
	if p.opts.Timeout > MaxTimeout {
		return fmt.Errorf("%w: got %s", ErrTimeoutTooLong, p.opts.Timeout)
	}
	return nil
}

// Start validates the session, sends the start page with the controls attached
// and arms the inactivity timer.
func (p *Paginator) Start(ctx context.Context) (*discordgo.Message, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.message != nil {
		p.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	send := &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{p.renderLocked()},
		Components: Controls(false),
	}
	p.mu.Unlock()

	msg, err := p.session.ChannelMessageSendComplex(p.channelID, send)
	if err != nil {
		return nil, fmt.Errorf("failed to send paginated message: %w", err)
	}

	p.mu.Lock()
	p.message = msg
	p.resetTimerLocked()
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "Paginator started",
		slog.String("session_id", p.id),
		slog.String("discord_message_id", msg.ID),
		slog.String("channel_id", p.channelID),
		slog.String("user_id", p.authorID),
		slog.Int("pages", len(p.pages)),
		slog.Int("page", p.opts.StartPage),
	)
	return msg, nil
}

// Update re-renders the current page onto the sent message and resets the
// inactivity timer.
func (p *Paginator) Update(ctx context.Context) error {
	p.mu.Lock()
	if p.message == nil || p.closed {
		p.mu.Unlock()
		return nil
	}
	p.version++
	p.resetTimerLocked()
	p.mu.Unlock()

	return p.flush(ctx)
}

// DisableControls moves the session to its terminal state: the timer is
// cancelled and the message is edited with every control disabled. Only the
// first call has any effect.
func (p *Paginator) DisableControls(ctx context.Context) error {
	return p.close(ctx, CloseReasonDisabled)
}

// HandleInteraction applies a button press to the session.
func (p *Paginator) HandleInteraction(ctx context.Context, i *discordgo.InteractionCreate) error {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionMessageComponent {
		return nil
	}

	p.mu.Lock()
	msg := p.message
	p.mu.Unlock()
	if msg == nil || i.Message == nil || i.Message.ID != msg.ID {
		return nil
	}

	if interactionUserID(i) != p.authorID {
		p.metrics.UnauthorizedPress()
		p.logger.InfoContext(ctx, "Rejected paginator control from non-invoker",
			slog.String("session_id", p.id),
			slog.String("user_id", interactionUserID(i)),
		)
		err := p.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: NotAllowedMessage,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to send rejection notice: %w", err)
		}
		return nil
	}

	err := p.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		return fmt.Errorf("failed to acknowledge interaction: %w", err)
	}

	id := ControlID(i.MessageComponentData().CustomID)
	if id == ControlDisable {
		return p.DisableControls(ctx)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	next, changed := nextPage(id, p.page, len(p.pages), p.opts.Cycling)
	if !changed {
		p.mu.Unlock()
		return nil
	}
	p.page = next
	p.version++
	p.resetTimerLocked()
	p.mu.Unlock()

	p.metrics.PageTurned(string(id))
	return p.flush(ctx)
}

// Page returns the 1-based cursor.
func (p *Paginator) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Closed reports whether the session reached its terminal state.
func (p *Paginator) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Message returns the sent message, or nil before Start succeeds.
func (p *Paginator) Message() *discordgo.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.message
}

func (p *Paginator) SessionID() string {
	return p.id
}

func (p *Paginator) close(ctx context.Context, reason string) error {
	p.mu.Lock()
	if p.message == nil || p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.timerGen++
	p.version++
	messageID := p.message.ID
	p.mu.Unlock()

	p.metrics.SessionClosed(reason)
	p.logger.InfoContext(ctx, "Paginator closed",
		slog.String("session_id", p.id),
		slog.String("discord_message_id", messageID),
		slog.String("reason", reason),
	)
	if p.onClose != nil {
		p.onClose(messageID)
	}

	return p.flush(ctx)
}

func (p *Paginator) expire(gen uint64) {
	p.mu.Lock()
	stale := gen != p.timerGen || p.closed
	p.mu.Unlock()
	if stale {
		return
	}

	ctx := context.Background()
	if err := p.close(ctx, CloseReasonTimeout); err != nil {
		p.metrics.OperationFailed("timeout")
		p.logger.ErrorContext(ctx, "Failed to disable paginator controls after timeout",
			slog.String("session_id", p.id),
			slog.Any("error", err),
		)
	}
}

func (p *Paginator) resetTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timerGen++
	gen := p.timerGen
	p.timer = p.afterFunc(p.opts.Timeout, func() { p.expire(gen) })
}

// flush writes the latest state to Discord. Edits queue behind editMu and each
// one renders whatever is current when it runs, so a slow edit can never
// overwrite a newer page.
func (p *Paginator) flush(ctx context.Context) error {
	p.editMu.Lock()
	defer p.editMu.Unlock()

	p.mu.Lock()
	version := p.version
	if version == p.applied {
		p.mu.Unlock()
		return nil
	}
	embeds := []*discordgo.MessageEmbed{p.renderLocked()}
	components := Controls(p.closed)
	edit := &discordgo.MessageEdit{
		Channel:    p.message.ChannelID,
		ID:         p.message.ID,
		Embeds:     &embeds,
		Components: &components,
	}
	p.mu.Unlock()

	if edit.Channel == "" {
		edit.Channel = p.channelID
	}
	if _, err := p.session.ChannelMessageEditComplex(edit); err != nil {
		return fmt.Errorf("failed to edit paginated message: %w", err)
	}
	p.applied = version
	return nil
}

func (p *Paginator) renderLocked() *discordgo.MessageEmbed {
	return RenderPage(p.pages[p.page-1], p.page, len(p.pages), p.opts.ShowPageNumbers)
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
