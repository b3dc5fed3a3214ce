package components

import (
	"slices"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluentz/internal/ui/theme"
)

// maxRecall bounds how many earlier entries up/down can bring back.
const maxRecall = 20

// TextInput is a focused single-line input. Once submitted it shows a
// verdict mark and ignores keys until cleared. Earlier entries can be
// recalled with up and down, like a shell history.
type TextInput struct {
	Model textinput.Model

	submitted bool
	valid     bool

	recall []string
	// cursor indexes recall while browsing it; len(recall) means the
	// entry being typed.
	cursor int
	draft  string
}

// NewTextInput creates a new focused text input. charLimit 0 means no limit.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = charLimit
	ti.Focus()
	return TextInput{Model: ti}
}

func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update edits the entry and browses the recall list on up/down.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.submitted {
		return t, nil
	}
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "up":
			t.browse(-1)
			return t, nil
		case "down":
			t.browse(1)
			return t, nil
		}
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t *TextInput) browse(step int) {
	next := t.cursor + step
	if next < 0 || next > len(t.recall) {
		return
	}
	if t.cursor == len(t.recall) {
		t.draft = t.Model.Value()
	}
	t.cursor = next
	if next == len(t.recall) {
		t.Model.SetValue(t.draft)
	} else {
		t.Model.SetValue(t.recall[next])
	}
	t.Model.CursorEnd()
}

func (t TextInput) View() string {
	view := t.Model.View()
	if !t.submitted {
		return view
	}
	if t.valid {
		return view + " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	}
	return view + " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
}

// Value returns the trimmed entry.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// Submit freezes the entry, marks it valid or not, and adds it to the
// recall list.
func (t *TextInput) Submit(valid bool) {
	t.submitted = true
	t.valid = valid
	if v := t.Value(); v != "" && (len(t.recall) == 0 || t.recall[len(t.recall)-1] != v) {
		t.recall = append(t.recall, v)
		if len(t.recall) > maxRecall {
			t.recall = slices.Delete(t.recall, 0, len(t.recall)-maxRecall)
		}
	}
	t.cursor = len(t.recall)
}

// Submitted reports whether Submit was called since the last Clear.
func (t TextInput) Submitted() bool {
	return t.submitted
}

// Clear empties the entry for the next answer and keeps the recall list.
func (t *TextInput) Clear() {
	t.Model.Reset()
	t.submitted = false
	t.valid = false
	t.cursor = len(t.recall)
	t.draft = ""
}
