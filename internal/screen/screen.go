package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fluentz/internal/ui/layout"
)

// Screen is one page of the TUI. Only the screen on top of the router's
// stack receives messages and is drawn.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View draws the body, the area between header and footer.
	View(width, height int) string

	// Title names the screen in the header.
	Title() string
}

// Decorated is implemented by screens that set their own header status or
// footer hints. Title is taken from Screen and may be left empty. Nil
// Hints fall back to the defaults for the stack depth.
type Decorated interface {
	Chrome() layout.Chrome
}
