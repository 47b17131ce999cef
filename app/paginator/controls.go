package paginator

import "github.com/bwmarrin/discordgo"

// ControlID is the custom ID carried by a paginator button.
type ControlID string

const (
	ControlFirst    ControlID = "paginator_first"
	ControlPrevious ControlID = "paginator_previous"
	ControlNext     ControlID = "paginator_next"
	ControlLast     ControlID = "paginator_last"
	ControlDisable  ControlID = "paginator_disable"
)

// Control describes one button. Values are never mutated; the button set is
// rebuilt for every render.
type Control struct {
	ID    ControlID
	Label string
	Emoji string
	Style discordgo.ButtonStyle
}

var controlSet = [...]Control{
	{ID: ControlFirst, Label: "First", Emoji: "⏮️", Style: discordgo.SecondaryButton},
	{ID: ControlPrevious, Label: "Previous", Emoji: "◀️", Style: discordgo.PrimaryButton},
	{ID: ControlNext, Label: "Next", Emoji: "▶️", Style: discordgo.PrimaryButton},
	{ID: ControlLast, Label: "Last", Emoji: "⏭️", Style: discordgo.SecondaryButton},
	{ID: ControlDisable, Label: "Stop", Emoji: "⏹️", Style: discordgo.DangerButton},
}

// ControlSet returns a copy of the five controls in display order.
func ControlSet() []Control {
	out := make([]Control, len(controlSet))
	copy(out, controlSet[:])
	return out
}

// Button renders the control as a discordgo button.
func (c Control) Button(disabled bool) discordgo.Button {
	return discordgo.Button{
		Label:    c.Label,
		Style:    c.Style,
		CustomID: string(c.ID),
		Disabled: disabled,
		Emoji:    &discordgo.ComponentEmoji{Name: c.Emoji},
	}
}

// Controls builds the single action row attached to a paginated message.
func Controls(disabled bool) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(controlSet))
	for _, c := range controlSet {
		buttons = append(buttons, c.Button(disabled))
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

// nextPage applies a navigation control to the cursor. The bool is false when
// the press is a no-op (already at a boundary, or not a navigation control).
func nextPage(id ControlID, current, total int, cycling bool) (int, bool) {
	switch id {
	case ControlFirst:
		if current > 1 {
			return 1, true
		}
	case ControlPrevious:
		if current > 1 {
			return current - 1, true
		}
		if cycling {
			return total, true
		}
	case ControlNext:
		if current < total {
			return current + 1, true
		}
		if cycling {
			return 1, true
		}
	case ControlLast:
		if current < total {
			return total, true
		}
	}
	return current, false
}
