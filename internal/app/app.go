package app

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fluentz/internal/router"
	"github.com/abhisek/fluentz/internal/screen"
	"github.com/abhisek/fluentz/internal/screens/home"
	"github.com/abhisek/fluentz/internal/screens/welcome"
	"github.com/abhisek/fluentz/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the welcome screen.
func newAppModel(homeFactory func(participant string) screen.Screen, participant string) AppModel {
	return AppModel{
		router: router.New(welcome.New(participant, homeFactory)),
	}
}

// HomeFactory returns the constructor for the home screen, wired to deps.
// One controller is created per participant and kept for the whole run.
func (d *Deps) HomeFactory() func(participant string) screen.Screen {
	return func(participant string) screen.Screen {
		env := home.Env{
			Controller:  d.NewController(participant),
			Snapshots:   d,
			Sessions:    d.Store.SessionRepo(),
			Transcriber: d.Transcriber,
			Logger:      d.Log,
		}
		if counter, ok := d.Catalog.(home.Counter); ok {
			env.Counter = counter
		}
		return home.New(env)
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(layout.Page(m.chrome(), m.width, m.height, m.router.View))
	return v
}

var quitHint = layout.Hint{Key: "Ctrl+C", Action: "Quit"}

// chrome merges the active screen's own chrome with the defaults. The
// title is the router trail, so nested screens show where they came from.
func (m AppModel) chrome() layout.Chrome {
	var c layout.Chrome
	if d, ok := m.router.Active().(screen.Decorated); ok {
		c = d.Chrome()
	}
	c.Title = strings.Join(m.router.Trail(), " › ")
	if c.Hints == nil {
		if m.router.Depth() > 1 {
			c.Hints = []layout.Hint{{Key: "Esc", Action: "Back"}}
		} else {
			c.Hints = []layout.Hint{
				{Key: "↑↓", Action: "Navigate"},
				{Key: "Enter", Action: "Select"},
			}
		}
	}
	c.Hints = append(slices.Clip(c.Hints), quitHint)
	return c
}

// Run starts the Bubble Tea program. participant overrides the configured
// name; when both are empty the welcome screen asks for one.
func Run(ctx context.Context, d *Deps, participant string) error {
	if participant == "" {
		participant = d.Config.Session.Participant
	}
	p := tea.NewProgram(newAppModel(d.HomeFactory(), participant), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
