package paginator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	discord "github.com/Black-And-White-Club/discord-paginator/app/discordgo"
	"github.com/Black-And-White-Club/discord-paginator/app/interactions"
	"github.com/Black-And-White-Club/discord-paginator/app/metrics"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/trace/noop"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T, defaults Options) (Manager, *discord.FakeSession, *interactions.Registry, *editRecorder) {
	t.Helper()
	fs := discord.NewFakeSession()
	rec := &editRecorder{}
	fs.ChannelMessageEditComplexFunc = rec.record
	registry := interactions.NewRegistry(testLogger())

	m, err := NewManager(fs, registry, testLogger(), noop.NewTracerProvider().Tracer("test"), metrics.NewNoop(), defaults)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	t.Cleanup(func() { m.Shutdown(context.Background()) })
	return m, fs, registry, rec
}

func TestNewManager_RequiresDependencies(t *testing.T) {
	fs := discord.NewFakeSession()
	registry := interactions.NewRegistry(testLogger())
	tracer := noop.NewTracerProvider().Tracer("test")

	tests := []struct {
		name       string
		session    discord.Session
		dispatcher Dispatcher
		logger     *slog.Logger
	}{
		{name: "nil session", dispatcher: registry, logger: testLogger()},
		{name: "nil dispatcher", session: fs, logger: testLogger()},
		{name: "nil logger", session: fs, dispatcher: registry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewManager(tt.session, tt.dispatcher, tt.logger, tracer, nil, DefaultOptions()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if _, err := NewManager(fs, registry, testLogger(), nil, nil, DefaultOptions()); err == nil {
		t.Fatalf("expected error for nil tracer")
	}
}

func TestManager_Paginate_RoutesInteractions(t *testing.T) {
	m, _, registry, rec := newTestManager(t, DefaultOptions())

	msg, err := m.Paginate(context.Background(), invokingMessage(), testPages("A", "B", "C"))
	if err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}
	if msg.ID != testMessageID {
		t.Fatalf("unexpected message %+v", msg)
	}
	if m.Active() != 1 || registry.Len() != 1 {
		t.Fatalf("expected one live session, active=%d handlers=%d", m.Active(), registry.Len())
	}

	registry.HandleInteraction(nil, press(testAuthorID, ControlLast))
	if got := rec.titles(); len(got) != 1 || got[0] != "C" {
		t.Fatalf("expected jump to C, got %v", got)
	}

	registry.HandleInteraction(nil, press(testAuthorID, ControlDisable))
	if m.Active() != 0 || registry.Len() != 0 {
		t.Fatalf("expected disabled session to deregister, active=%d handlers=%d", m.Active(), registry.Len())
	}

	// Deregistered: later presses never reach the session.
	registry.HandleInteraction(nil, press(testAuthorID, ControlFirst))
	if rec.count() != 2 {
		t.Fatalf("expected 2 edits in total, got %d", rec.count())
	}
}

func TestManager_Paginate_AppliesDefaults(t *testing.T) {
	defaults := DefaultOptions()
	defaults.Cycling = true
	defaults.ShowPageNumbers = false
	m, fs, registry, rec := newTestManager(t, defaults)

	var sent *discordgo.MessageSend
	fs.ChannelMessageSendComplexFunc = func(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
		sent = data
		return &discordgo.Message{ID: testMessageID, ChannelID: channelID}, nil
	}

	if _, err := m.Paginate(context.Background(), invokingMessage(), testPages("A", "B"), WithStartPage(2)); err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}
	if sent.Embeds[0].Title != "B" || sent.Embeds[0].Footer != nil {
		t.Fatalf("expected page B without counter, got %+v", sent.Embeds[0])
	}

	registry.HandleInteraction(nil, press(testAuthorID, ControlNext))
	if got := rec.titles(); len(got) != 1 || got[0] != "A" {
		t.Fatalf("expected default cycling to wrap to A, got %v", got)
	}
}

func TestManager_Paginate_ValidationFailure(t *testing.T) {
	m, fs, registry, _ := newTestManager(t, DefaultOptions())

	_, err := m.Paginate(context.Background(), invokingMessage(), testPages("A"))
	if !errors.Is(err, ErrTooFewPages) {
		t.Fatalf("expected ErrTooFewPages, got %v", err)
	}
	if fs.Count("ChannelMessageSendComplex") != 0 {
		t.Fatalf("expected no message to be sent")
	}
	if m.Active() != 0 || registry.Len() != 0 {
		t.Fatalf("expected nothing registered")
	}
}

func TestManager_Paginate_TimeoutDeregisters(t *testing.T) {
	m, _, registry, rec := newTestManager(t, DefaultOptions())

	if _, err := m.Paginate(context.Background(), invokingMessage(), testPages("A", "B"), WithTimeout(10*time.Millisecond)); err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.Active() != 0 || rec.count() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("session did not time out, active=%d edits=%d", m.Active(), rec.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if registry.Len() != 0 {
		t.Fatalf("expected handler to be removed after timeout")
	}
}

func TestManager_Shutdown_DisablesLiveSessions(t *testing.T) {
	m, fs, registry, rec := newTestManager(t, DefaultOptions())

	ids := []string{"m1", "m2"}
	sends := 0
	fs.ChannelMessageSendComplexFunc = func(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
		id := ids[sends]
		sends++
		return &discordgo.Message{ID: id, ChannelID: channelID}, nil
	}

	for range ids {
		if _, err := m.Paginate(context.Background(), invokingMessage(), testPages("A", "B")); err != nil {
			t.Fatalf("Paginate returned error: %v", err)
		}
	}
	if m.Active() != 2 {
		t.Fatalf("expected 2 sessions, got %d", m.Active())
	}

	m.Shutdown(context.Background())

	if m.Active() != 0 || registry.Len() != 0 {
		t.Fatalf("expected all sessions released")
	}
	if rec.count() != 2 {
		t.Fatalf("expected one disabling edit per session, got %d", rec.count())
	}
}
