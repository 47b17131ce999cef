package interactions

import (
	"context"
	"slices"
	"testing"

	discord "github.com/Black-And-White-Club/discord-paginator/app/discordgo"
	discordmocks "github.com/Black-And-White-Club/discord-paginator/app/discordgo/mocks"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/mock/gomock"
)

type testDiscordgoAdder struct {
	handler func(s *discordgo.Session, e *discordgo.MessageCreate)
}

func (a *testDiscordgoAdder) AddHandler(handler interface{}) func() {
	fn, ok := handler.(func(s *discordgo.Session, e *discordgo.MessageCreate))
	if !ok {
		panic("unexpected handler type")
	}
	a.handler = fn
	return func() {}
}

func messageCreate(authorID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "msg-1",
		ChannelID: "chan-1",
		Content:   content,
		Author:    &discordgo.User{ID: authorID},
	}}
}

func TestMessageRegistry_RegisterWithSession_routesCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	wrapperSession := discordmocks.NewMockSession(ctrl)
	wrapper := discord.Session(wrapperSession)
	reg := NewMessageRegistry(testLogger(), "!")

	var gotArgs []string
	reg.RegisterCommand("pages", func(ctx context.Context, s discord.Session, m *discordgo.MessageCreate, args []string) {
		if s != wrapper {
			t.Fatalf("expected wrapper session to be passed through")
		}
		if m.ID != "msg-1" {
			t.Fatalf("unexpected message: %+v", m)
		}
		gotArgs = args
	})

	adder := &testDiscordgoAdder{}
	reg.RegisterWithSession(adder, wrapper)
	if adder.handler == nil {
		t.Fatalf("expected a discordgo MessageCreate handler to be registered")
	}

	adder.handler(&discordgo.Session{}, messageCreate("user-1", "!PAGES rules 2"))

	if !slices.Equal(gotArgs, []string{"rules", "2"}) {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
}

func TestMessageRegistry_HandleMessageCreate_filters(t *testing.T) {
	tests := []struct {
		name      string
		botUserID string
		event     *discordgo.MessageCreate
		wantCall  bool
	}{
		{name: "matching command", botUserID: "bot", event: messageCreate("user-1", "!pages"), wantCall: true},
		{name: "missing prefix", botUserID: "bot", event: messageCreate("user-1", "pages")},
		{name: "unknown command", botUserID: "bot", event: messageCreate("user-1", "!help")},
		{name: "prefix only", botUserID: "bot", event: messageCreate("user-1", "!")},
		{name: "own message", botUserID: "bot", event: messageCreate("bot", "!pages")},
		{name: "nil payload", botUserID: "bot", event: &discordgo.MessageCreate{}},
		{name: "nil author", botUserID: "bot", event: &discordgo.MessageCreate{Message: &discordgo.Message{Content: "!pages"}}},
		{
			name:      "other bot",
			botUserID: "bot",
			event: &discordgo.MessageCreate{Message: &discordgo.Message{
				Content: "!pages",
				Author:  &discordgo.User{ID: "other-bot", Bot: true},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewMessageRegistry(testLogger(), "!")
			called := false
			reg.RegisterCommand("pages", func(ctx context.Context, s discord.Session, m *discordgo.MessageCreate, args []string) {
				called = true
			})

			reg.HandleMessageCreate(context.Background(), tt.botUserID, discord.NewFakeSession(), tt.event)

			if called != tt.wantCall {
				t.Fatalf("called = %v, want %v", called, tt.wantCall)
			}
		})
	}
}

func TestMessageRegistry_RecoversFromPanics(t *testing.T) {
	reg := NewMessageRegistry(testLogger(), "!")
	reg.RegisterCommand("pages", func(ctx context.Context, s discord.Session, m *discordgo.MessageCreate, args []string) {
		panic("boom")
	})

	reg.HandleMessageCreate(context.Background(), "bot", discord.NewFakeSession(), messageCreate("user-1", "!pages"))
}
