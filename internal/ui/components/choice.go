package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lembar/internal/ui/theme"
)

// Choice is a single-line selector that cycles through a fixed list of
// options with the left and right keys.
type Choice struct {
	Options  []string
	Selected int
	Focused  bool
}

// NewChoice creates a selector positioned on the option equal to current,
// or on the first option when current is not listed.
func NewChoice(options []string, current string) Choice {
	c := Choice{Options: options}
	c.Set(current)
	return c
}

// Set moves the selection to value if it is one of the options.
func (c *Choice) Set(value string) {
	for i, o := range c.Options {
		if o == value {
			c.Selected = i
			return
		}
	}
	c.Selected = 0
}

// Value returns the selected option, or "" when there are none.
func (c Choice) Value() string {
	if c.Selected < 0 || c.Selected >= len(c.Options) {
		return ""
	}
	return c.Options[c.Selected]
}

// Update handles left/right cycling. It wraps around at both ends.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(c.Options) == 0 {
		return c, nil
	}

	switch kmsg.String() {
	case "left", "h":
		c.Selected = (c.Selected - 1 + len(c.Options)) % len(c.Options)
	case "right", "l", "space":
		c.Selected = (c.Selected + 1) % len(c.Options)
	}
	return c, nil
}

// View renders the selector.
func (c Choice) View() string {
	value := c.Value()
	if !c.Focused {
		return lipgloss.NewStyle().Foreground(theme.Text).Render("  " + value)
	}
	return lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("◂ " + value + " ▸")
}
