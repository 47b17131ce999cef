package discord

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func TestDiscordSession_ChannelMessageSendComplex_PostsToChannel(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotBody   discordgo.MessageSend
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-1","channel_id":"chan-1"}`))
	}))
	defer server.Close()

	originalEndpointChannels := discordgo.EndpointChannels
	discordgo.EndpointChannels = server.URL + "/channels/"
	t.Cleanup(func() {
		discordgo.EndpointChannels = originalEndpointChannels
	})

	underlying, err := discordgo.New("Bot unit-test-token")
	if err != nil {
		t.Fatalf("failed to create discordgo session: %v", err)
	}
	underlying.Client = server.Client()

	session := NewDiscordSession(underlying, testLogger())
	msg, err := session.ChannelMessageSendComplex("chan-1", &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{Title: "Page one"}},
	})
	if err != nil {
		t.Fatalf("ChannelMessageSendComplex returned error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST request, got %q", gotMethod)
	}
	if gotPath != "/channels/chan-1/messages" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(gotBody.Embeds) != 1 || gotBody.Embeds[0].Title != "Page one" {
		t.Fatalf("expected embed to be forwarded, got %+v", gotBody.Embeds)
	}
	if msg.ID != "msg-1" {
		t.Fatalf("expected message id msg-1, got %q", msg.ID)
	}
}

func TestFakeSession_RecordsTrace(t *testing.T) {
	fs := NewFakeSession()

	if _, err := fs.ChannelMessageSendComplex("c1", &discordgo.MessageSend{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fs.ChannelMessageEditComplex(&discordgo.MessageEdit{ID: "m1", Channel: "c1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fs.InteractionRespond(&discordgo.Interaction{}, &discordgo.InteractionResponse{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fs.ChannelMessageEditComplex(&discordgo.MessageEdit{ID: "m1", Channel: "c1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"ChannelMessageSendComplex", "ChannelMessageEditComplex", "InteractionRespond", "ChannelMessageEditComplex"}
	if got := fs.Trace(); !slices.Equal(got, want) {
		t.Fatalf("trace mismatch: got %v want %v", got, want)
	}
	if got := fs.Count("ChannelMessageEditComplex"); got != 2 {
		t.Fatalf("expected 2 edits, got %d", got)
	}
}
