package home

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/router"
	"github.com/abhisek/fluentz/internal/screen"
	"github.com/abhisek/fluentz/internal/screens/history"
	"github.com/abhisek/fluentz/internal/screens/speaking"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/store"
	"github.com/abhisek/fluentz/internal/transcript"
	"github.com/abhisek/fluentz/internal/ui/components"
)

// Snapshots saves and loads the in-progress session.
type Snapshots interface {
	speaking.Snapshotter
	LatestSnapshot(ctx context.Context) (*session.Snapshot, error)
}

// Sessions reads the session archive.
type Sessions interface {
	history.Sessions
	Stats(ctx context.Context) (*store.Stats, error)
}

// Counter reports how many practices the catalog holds per difficulty.
type Counter interface {
	Count(ctx context.Context) (map[practice.Difficulty]int, error)
}

// Env is everything the home screen needs to start sessions. Controller is
// required; the rest are optional.
type Env struct {
	Controller  *session.Controller
	Snapshots   Snapshots
	Sessions    Sessions
	Counter     Counter
	Transcriber transcript.Transcriber
	Logger      *slog.Logger
}

const (
	itemAdaptive = iota
	itemFixed
	itemResume
	itemHistory
	itemExit
)

var (
	menuLabels = []string{"ADAPTIVE PRACTICE", "FIXED PRACTICE", "RESUME", "HISTORY", "EXIT"}
	menuKeys   = []string{"a", "f", "r", "h", "q"}
	menuHints  = []string{
		"Phrases get harder or easier with your answers and mood",
		"Easy phrases first, then medium, then hard",
		"Continue where you left off",
		"Browse finished sessions",
		"",
	}
)

type homeLoadedMsg struct {
	snap     *session.Snapshot
	stats    *store.Stats
	counts   map[practice.Difficulty]int
	countErr error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	env  Env
	log  *slog.Logger
	menu components.Menu

	stats     *store.Stats
	practices int
	// counted is false until the catalog was counted successfully.
	counted bool
	loaded  bool
	notice  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ router.Refresher = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(env Env) *HomeScreen {
	log := env.Logger
	if log == nil {
		log = slog.Default()
	}
	h := &HomeScreen{env: env, log: log.With("component", "home")}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	items := make([]components.MenuItem, len(menuLabels))
	for i, label := range menuLabels {
		items[i] = components.MenuItem{Label: label, Key: menuKeys[i], Hint: menuHints[i]}
	}
	items[itemAdaptive].Action = func() tea.Cmd { return h.start(difficulty.Adaptive) }
	items[itemFixed].Action = func() tea.Cmd { return h.start(difficulty.Fixed) }
	items[itemResume].Action = h.resume
	items[itemResume].Disabled = !h.resumable()
	items[itemHistory].Action = func() tea.Cmd {
		if h.env.Sessions == nil {
			return nil
		}
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: history.New(h.env.Sessions)}
		}
	}
	items[itemExit].Action = func() tea.Cmd { return tea.Quit }
	return items
}

// resumable reports whether an unfinished session can be continued.
func (h *HomeScreen) resumable() bool {
	c := h.env.Controller
	return c.Active() && c.Phase() != session.PhaseFinished
}

func (h *HomeScreen) start(policy difficulty.Policy) tea.Cmd {
	if !h.settle() {
		return nil
	}
	resumed, err := h.env.Controller.Start(policy)
	if err != nil {
		h.notice = err.Error()
		return nil
	}
	if resumed {
		h.log.Info("resuming session", "policy", policy)
	}
	return h.pushSpeaking()
}

func (h *HomeScreen) resume() tea.Cmd {
	if !h.resumable() {
		return nil
	}
	return h.pushSpeaking()
}

func (h *HomeScreen) pushSpeaking() tea.Cmd {
	scr := speaking.New(speaking.Options{
		Controller:  h.env.Controller,
		Snapshots:   h.env.Snapshots,
		Transcriber: h.env.Transcriber,
		Logger:      h.env.Logger,
	})
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: scr}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load(!h.env.Controller.Active())
}

// Refresh reloads the dashboard when the home screen becomes visible again.
func (h *HomeScreen) Refresh() tea.Cmd {
	h.settle()
	h.rebuildMenu()
	return h.load(false)
}

// load reads the dashboard data, and the saved snapshot when withSnapshot
// is set. The snapshot is restored on the UI goroutine in Update.
func (h *HomeScreen) load(withSnapshot bool) tea.Cmd {
	env := h.env
	log := h.log
	return func() tea.Msg {
		ctx := context.Background()
		var msg homeLoadedMsg
		if withSnapshot && env.Snapshots != nil {
			snap, err := env.Snapshots.LatestSnapshot(ctx)
			if err != nil {
				log.Warn("loading session snapshot failed", "error", err)
			}
			msg.snap = snap
		}
		if env.Sessions != nil {
			stats, err := env.Sessions.Stats(ctx)
			if err != nil {
				log.Warn("loading session stats failed", "error", err)
			}
			msg.stats = stats
		}
		if env.Counter != nil {
			msg.counts, msg.countErr = env.Counter.Count(ctx)
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case homeLoadedMsg:
		return h, h.applyLoaded(msg)
	case tea.KeyPressMsg:
		if h.env.Controller.Unarchived() {
			if k := msg.String(); k == "s" || k == "S" {
				return h, h.retryArchive()
			}
		}
	}
	if !h.env.Controller.Unarchived() {
		h.notice = ""
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// applyLoaded restores an unfinished snapshot, and archives a finished one
// whose archive failed last time. The dashboard is reloaded after such an
// archive so the new session is counted.
func (h *HomeScreen) applyLoaded(msg homeLoadedMsg) tea.Cmd {
	h.loaded = true
	c := h.env.Controller
	var reload tea.Cmd
	if snap := msg.snap; snap != nil && !c.Active() && !(snap.Finished() && snap.Archived) {
		if err := c.Restore(snap); err != nil {
			h.log.Warn("discarding unusable snapshot", "error", err)
		} else if c.Unarchived() && h.settle() {
			reload = h.load(false)
		}
	}
	if msg.stats != nil {
		h.stats = msg.stats
	}
	if h.env.Counter != nil {
		h.counted = msg.countErr == nil
		h.practices = 0
		for _, n := range msg.counts {
			h.practices += n
		}
		if msg.countErr != nil {
			h.log.Warn("counting practices failed", "error", msg.countErr)
		}
	}
	h.rebuildMenu()
	return reload
}

// settle archives a finished session that has not reached the archive yet
// and clears its snapshot. It reports false while archiving keeps failing;
// no new session may start then, or the finished one would be lost.
func (h *HomeScreen) settle() bool {
	c := h.env.Controller
	if !c.Unarchived() {
		return true
	}
	ctx := context.Background()
	if err := c.Archive(ctx); err != nil {
		h.notice = fmt.Sprintf("Your last session is not in the history yet: %v. Press S to retry.", err)
		return false
	}
	h.notice = "Your last session was added to the history."
	if h.env.Snapshots != nil {
		if err := h.env.Snapshots.SaveSnapshot(ctx, c); err != nil {
			h.log.Warn("clearing session snapshot failed", "error", err)
		}
	}
	return true
}

func (h *HomeScreen) retryArchive() tea.Cmd {
	if !h.settle() {
		return nil
	}
	return h.load(false)
}

// rebuildMenu refreshes the disabled state of RESUME, keeping the selection.
func (h *HomeScreen) rebuildMenu() {
	selected := h.menu.Selected
	h.menu = components.NewMenu(h.menuItems())
	if selected >= 0 && selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	cw := components.ContentWidth(width)

	var sections []string

	sections = append(sections, renderTitle(cw, compact))

	if !compact {
		sections = append(sections, renderMascotBox(h.mascotVariant(), cw))
	}

	sessions, accuracy := h.totals()
	sections = append(sections, renderStatsBar(sessions, accuracy, h.practices, h.counted, cw, compact))

	if h.loaded && h.counted && h.practices == 0 {
		sections = append(sections, renderNoPracticesBanner(cw))
	}
	if h.notice != "" {
		sections = append(sections, renderNotice(h.notice, cw))
	}

	sections = append(sections, h.menu.View(cw, buttonWidth, termHeight < 24))

	content := strings.Join(sections, "\n\n")

	return components.Frame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// totals sums archived sessions over every policy.
func (h *HomeScreen) totals() (sessions int, accuracy float64) {
	if h.stats == nil {
		return 0, 0
	}
	var all store.PolicyStats
	for _, ps := range h.stats.ByPolicy {
		all.Sessions += ps.Sessions
		all.Questions += ps.Questions
		all.Correct += ps.Correct
	}
	return all.Sessions, all.Accuracy()
}

func (h *HomeScreen) mascotVariant() MascotVariant {
	if h.loaded && h.counted && h.practices == 0 {
		return MascotAlert
	}
	if sessions, accuracy := h.totals(); sessions > 0 && accuracy >= 0.8 {
		return MascotCelebrating
	}
	return MascotIdle
}
