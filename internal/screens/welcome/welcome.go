package welcome

import (
	"math"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluentz/internal/router"
	"github.com/abhisek/fluentz/internal/screen"
	"github.com/abhisek/fluentz/internal/ui/components"
	"github.com/abhisek/fluentz/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	// The voice wave swells until waveFull, then the wordmark and the
	// prompt appear at revealAt. Ticks stop counting at totalDur.
	waveFull = 500 * time.Millisecond
	revealAt = 1500 * time.Millisecond
	totalDur = 4500 * time.Millisecond
)

// waveLevels are bar glyphs from silent to loud.
var waveLevels = []rune(" ▁▂▃▄▅▆▇█")

const waveBars = 24

type tickMsg time.Time

// WelcomeScreen shows a splash animation, asks who is practicing when no
// participant is configured, then replaces itself with the home screen.
type WelcomeScreen struct {
	homeFactory  func(participant string) screen.Screen
	participant  string
	askName      bool
	input        components.TextInput
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen. With an empty participant the learner is
// asked for a name before homeFactory is called.
func New(participant string, homeFactory func(participant string) screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory: homeFactory,
		participant: participant,
		askName:     participant == "",
		input:       components.NewTextInput("Your name", 40),
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Batch(
		tea.Tick(tickInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		}),
		w.input.Init(),
	)
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tea.Tick(tickInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tea.KeyPressMsg:
		if w.askName {
			if w.elapsed < revealAt {
				return w, nil
			}
			if msg.String() == "enter" {
				name := w.input.Value()
				if name == "" {
					return w, nil
				}
				w.participant = name
				return w, w.transition()
			}
			var cmd tea.Cmd
			w.input, cmd = w.input.Update(msg)
			return w, cmd
		}
		// Any key skips the animation.
		return w, w.transition()
	}

	return w, nil
}

// Participant returns the chosen participant name.
func (w *WelcomeScreen) Participant() string {
	return w.participant
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory(w.participant)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

// wave draws one frame of the voice bars. Bar heights follow two sine
// waves drifting with the tick count; the amplitude grows until waveFull.
func (w *WelcomeScreen) wave() string {
	gain := min(float64(w.elapsed+tickInterval)/float64(waveFull), 1)
	top := len(waveLevels) - 1
	bars := make([]rune, waveBars)
	for i := range bars {
		x := float64(i)/2 + float64(w.tickCount)/3
		h := (math.Sin(x) + math.Sin(x*0.37+1)) / 4 * gain
		bars[i] = waveLevels[int(math.Round((h+0.5)*float64(top)))]
	}
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Render(string(bars[:waveBars/2]))
	right := lipgloss.NewStyle().Foreground(theme.Primary).Render(string(bars[waveBars/2:]))
	return left + right
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{w.wave()}

	if w.elapsed >= revealAt {
		tagline := lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("Speak up, one phrase at a time.")
		sections = append(sections, "", components.Wordmark(width, " ", theme.Primary), "", tagline, "")

		if w.askName {
			sections = append(sections,
				lipgloss.NewStyle().Foreground(theme.Text).Render("Who's practicing today?"),
				w.input.View(),
				theme.Hint.Render("type your name and press enter"),
			)
		} else {
			sections = append(sections, theme.Hint.Render("press any key to continue"))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.Join(sections, "\n"))
}
