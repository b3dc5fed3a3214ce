package speaking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fluentz/internal/router"
	"github.com/abhisek/fluentz/internal/screen"
	"github.com/abhisek/fluentz/internal/screens/summary"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/transcript"
	"github.com/abhisek/fluentz/internal/ui/components"
	"github.com/abhisek/fluentz/internal/ui/layout"
)

// NoPracticesText is shown when the catalog has nothing to serve.
const NoPracticesText = "No practices found in database."

const placeholder = "Type your answer, or @path/to/recording.wav"

// Snapshotter persists the in-progress session after every transition.
type Snapshotter interface {
	SaveSnapshot(ctx context.Context, c *session.Controller) error
}

// Options configures the speaking screen. Controller must have a started
// session. Snapshots and Transcriber are optional.
type Options struct {
	Controller  *session.Controller
	Snapshots   Snapshotter
	Transcriber transcript.Transcriber
	Logger      *slog.Logger
}

type mode int

const (
	modeLoading mode = iota
	modeQuestion
	modeChecking
	modeFeedback
	modeQuitConfirm
	modeError
)

// SpeakingScreen runs one practice session: it presents items, collects
// typed or recorded answers and shows feedback until the session finishes.
type SpeakingScreen struct {
	opts Options
	ctrl *session.Controller
	log  *slog.Logger

	mode     mode
	prevMode mode

	served  *session.Served
	outcome *session.Outcome
	input   components.TextInput

	// resolveSeq invalidates transcriptions that finish after a skip.
	resolveSeq uint64
	resolving  bool
	advised    bool

	notice string
	errMsg string
}

var _ screen.Screen = (*SpeakingScreen)(nil)
var _ screen.Decorated = (*SpeakingScreen)(nil)

// New creates a SpeakingScreen.
func New(opts Options) *SpeakingScreen {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &SpeakingScreen{
		opts:  opts,
		ctrl:  opts.Controller,
		log:   log.With("component", "speaking"),
		input: components.NewTextInput(placeholder, 0),
	}
}

func (s *SpeakingScreen) Init() tea.Cmd {
	st, err := s.ctrl.State()
	if err != nil {
		s.fail(err)
		return nil
	}
	switch st.Phase {
	case session.PhaseAwaitingAnswer:
		s.served = &session.Served{Item: *st.Current, Number: st.QuestionIndex + 1}
		s.mode = modeQuestion
		return s.input.Init()
	case session.PhaseFinished:
		return s.showSummary()
	default:
		return s.fetchNext()
	}
}

func (s *SpeakingScreen) Title() string {
	return "Speaking Practice"
}

// Chrome shows who is practicing and how far they are, and the keys that
// work in the current mode.
func (s *SpeakingScreen) Chrome() layout.Chrome {
	return layout.Chrome{Status: s.status(), Hints: s.hints()}
}

func (s *SpeakingScreen) status() string {
	st, err := s.ctrl.State()
	if err != nil {
		return ""
	}
	n := st.QuestionIndex + 1
	if n > session.MaxQuestions {
		n = session.MaxQuestions
	}
	status := fmt.Sprintf("%s · Q %d/%d", st.Policy.Label(), n, session.MaxQuestions)
	if st.Participant != "" {
		status = st.Participant + " · " + status
	}
	return status
}

func (s *SpeakingScreen) hints() []layout.Hint {
	switch s.mode {
	case modeQuitConfirm:
		return []layout.Hint{
			{Key: "Y", Action: "Leave"},
			{Key: "N", Action: "Keep going"},
		}
	case modeFeedback:
		hints := []layout.Hint{
			{Key: "any key", Action: "Continue"},
			{Key: "Ctrl+R", Action: "Restart"},
		}
		if s.ctrl.Unarchived() {
			hints = append(hints, layout.Hint{Key: "S", Action: "Retry save"})
		}
		return hints
	case modeError:
		return []layout.Hint{{Key: "any key", Action: "Back"}}
	case modeChecking:
		return []layout.Hint{{Key: "Ctrl+S", Action: "Skip"}}
	case modeQuestion:
		return []layout.Hint{
			{Key: "Enter", Action: "Submit"},
			{Key: "Ctrl+S", Action: "Skip"},
			{Key: "Ctrl+R", Action: "Restart"},
			{Key: "Esc", Action: "Leave"},
		}
	default:
		return []layout.Hint{{Key: "Esc", Action: "Leave"}}
	}
}

func (s *SpeakingScreen) View(width, height int) string {
	switch s.mode {
	case modeError:
		return renderError(width, s.errMsg)
	case modeLoading:
		return renderLoading(width)
	case modeQuitConfirm:
		return renderQuitConfirm(width)
	case modeFeedback:
		return s.renderFeedback(width)
	default:
		return s.renderQuestion(width)
	}
}

func (s *SpeakingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchDoneMsg:
		return s.handleFetch(msg)
	case resolvedMsg:
		return s.handleResolved(msg)
	case labelDoneMsg:
		return s.handleLabel(msg)
	case adviceDoneMsg:
		return s.handleAdvice(msg)
	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.mode == modeQuestion {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SpeakingScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.mode {
	case modeError:
		return s, popToRoot
	case modeQuitConfirm:
		switch key {
		case "y", "Y":
			s.save()
			return s, popToRoot
		case "n", "N", "esc":
			s.mode = s.prevMode
		}
		return s, nil
	case modeChecking:
		if key == "ctrl+s" {
			return s.skip()
		}
		return s, nil
	case modeLoading:
		if key == "esc" {
			s.confirmQuit()
		}
		return s, nil
	case modeFeedback:
		switch key {
		case "esc":
			s.confirmQuit()
			return s, nil
		case "ctrl+r":
			return s.restart()
		case "s", "S":
			if s.ctrl.Unarchived() {
				return s.retryArchive()
			}
		}
		if s.ctrl.Phase() == session.PhaseFinished {
			return s, s.showSummary()
		}
		return s, s.fetchNext()
	}

	switch key {
	case "esc":
		s.confirmQuit()
		return s, nil
	case "ctrl+s":
		return s.skip()
	case "ctrl+r":
		return s.restart()
	case "enter":
		return s.submit()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *SpeakingScreen) confirmQuit() {
	s.prevMode = s.mode
	s.mode = modeQuitConfirm
}

// fetchNext starts loading the next item.
func (s *SpeakingScreen) fetchNext() tea.Cmd {
	t, err := s.ctrl.BeginFetch()
	if err != nil {
		s.fail(err)
		return nil
	}
	s.mode = modeLoading
	s.save()

	ctrl := s.ctrl
	return func() tea.Msg {
		return fetchDoneMsg{ticket: t, result: ctrl.Fetch(context.Background(), t)}
	}
}

func (s *SpeakingScreen) handleFetch(msg fetchDoneMsg) (screen.Screen, tea.Cmd) {
	served, err := s.ctrl.ApplyFetch(msg.ticket, msg.result)
	if errors.Is(err, session.ErrStale) {
		return s, nil
	}
	if err != nil {
		s.fail(err)
		return s, nil
	}

	s.served = served
	s.outcome = nil
	s.notice = ""
	s.advised = false
	s.resolving = false
	s.input.Clear()
	s.save()
	// The quit dialog stays up; answering "no" lands on the question.
	if s.mode == modeQuitConfirm {
		s.prevMode = modeQuestion
		return s, nil
	}
	s.mode = modeQuestion
	return s, s.input.Init()
}

// submit answers with the typed text, or loads "@path" recordings first.
func (s *SpeakingScreen) submit() (screen.Screen, tea.Cmd) {
	raw := s.input.Value()
	if raw == "" || s.resolving {
		return s, nil
	}
	s.resolveSeq++
	if !strings.HasPrefix(raw, transcript.FilePrefix) {
		return s.beginAnswer(transcript.Result{Text: raw})
	}

	s.resolving = true
	s.notice = "Transcribing recording..."
	seq := s.resolveSeq
	tr := s.opts.Transcriber
	return s, func() tea.Msg {
		res, err := transcript.Resolve(context.Background(), raw, tr)
		return resolvedMsg{seq: seq, result: res, err: err}
	}
}

func (s *SpeakingScreen) handleResolved(msg resolvedMsg) (screen.Screen, tea.Cmd) {
	if msg.seq != s.resolveSeq || s.mode != modeQuestion {
		return s, nil
	}
	s.resolving = false
	if msg.err != nil {
		s.log.Warn("loading recording failed", "error", msg.err)
		s.notice = fmt.Sprintf("Could not use recording: %v", msg.err)
		return s, nil
	}
	s.notice = ""
	return s.beginAnswer(msg.result)
}

func (s *SpeakingScreen) beginAnswer(res transcript.Result) (screen.Screen, tea.Cmd) {
	t, err := s.ctrl.BeginAnswer(res.Text)
	if err != nil {
		s.fail(err)
		return s, nil
	}
	s.mode = modeChecking

	ctrl := s.ctrl
	sig := res.Signal()
	return s, func() tea.Msg {
		label, ok := ctrl.DetectLabel(context.Background(), t, sig)
		return labelDoneMsg{ticket: t, label: label, ok: ok}
	}
}

func (s *SpeakingScreen) handleLabel(msg labelDoneMsg) (screen.Screen, tea.Cmd) {
	out, err := s.ctrl.ApplyAnswer(context.Background(), msg.ticket, msg.label, msg.ok)
	if errors.Is(err, session.ErrStale) {
		return s, nil
	}
	return s.showOutcome(out, err)
}

func (s *SpeakingScreen) skip() (screen.Screen, tea.Cmd) {
	out, err := s.ctrl.Skip(context.Background())
	if out == nil {
		var te *session.TransitionError
		if errors.As(err, &te) {
			return s, nil
		}
	}
	s.resolveSeq++
	s.resolving = false
	return s.showOutcome(out, err)
}

func (s *SpeakingScreen) restart() (screen.Screen, tea.Cmd) {
	if err := s.ctrl.Reset(s.ctrl.Policy()); err != nil {
		s.fail(err)
		return s, nil
	}
	s.resolveSeq++
	s.served = nil
	s.outcome = nil
	return s, s.fetchNext()
}

// showOutcome displays feedback for a finalized question. An archive
// failure still comes with the outcome and is shown as a notice.
func (s *SpeakingScreen) showOutcome(out *session.Outcome, err error) (screen.Screen, tea.Cmd) {
	if out == nil {
		s.fail(err)
		return s, nil
	}
	s.outcome = out
	s.notice = ""
	if err != nil {
		s.notice = fmt.Sprintf("Session could not be saved: %v", err)
	}
	s.input.Submit(out.Correct)
	s.mode = modeFeedback
	s.save()
	return s, s.requestAdvice()
}

// retryArchive hands a finished session to the archive again after a
// failure. The snapshot keeps the session until it succeeds.
func (s *SpeakingScreen) retryArchive() (screen.Screen, tea.Cmd) {
	if err := s.ctrl.Archive(context.Background()); err != nil {
		s.notice = fmt.Sprintf("Session could not be saved: %v", err)
		return s, nil
	}
	s.notice = "Session saved."
	s.save()
	return s, nil
}

func (s *SpeakingScreen) requestAdvice() tea.Cmd {
	req, ok := s.ctrl.BeginAdvice()
	if !ok {
		return nil
	}
	ctrl := s.ctrl
	return func() tea.Msg {
		return adviceDoneMsg{req: req, item: ctrl.Advise(context.Background(), req)}
	}
}

func (s *SpeakingScreen) handleAdvice(msg adviceDoneMsg) (screen.Screen, tea.Cmd) {
	if s.ctrl.ApplyAdvice(msg.req.Ticket, msg.item) {
		s.advised = true
		s.save()
	}
	return s, nil
}

func (s *SpeakingScreen) showSummary() tea.Cmd {
	s.save()
	rec := s.ctrl.Record()
	sum := session.BuildSummary(rec)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(rec, sum)}
	}
}

func (s *SpeakingScreen) fail(err error) {
	s.mode = modeError
	if errors.Is(err, session.ErrNoPracticesAvailable) {
		s.errMsg = NoPracticesText
		return
	}
	s.errMsg = err.Error()
}

func (s *SpeakingScreen) save() {
	if s.opts.Snapshots == nil {
		return
	}
	if err := s.opts.Snapshots.SaveSnapshot(context.Background(), s.ctrl); err != nil {
		s.log.Warn("saving session snapshot failed", "error", err)
	}
}

func popToRoot() tea.Msg {
	return router.PopToRootMsg{}
}
