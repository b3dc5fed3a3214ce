package speaking

import (
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/transcript"
)

// fetchDoneMsg carries the result of the catalog fallback ladder.
type fetchDoneMsg struct {
	ticket session.Ticket
	result session.FetchResult
}

// resolvedMsg is sent when an "@file" answer has been loaded and
// transcribed.
type resolvedMsg struct {
	seq    uint64
	result transcript.Result
	err    error
}

// labelDoneMsg carries the emotion service's answer for a pending answer.
type labelDoneMsg struct {
	ticket session.Ticket
	label  string
	ok     bool
}

// adviceDoneMsg carries the next-practice advisory result.
type adviceDoneMsg struct {
	req  session.AdviceRequest
	item *practice.Item
}
