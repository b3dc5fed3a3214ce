package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/session"
)

// SessionRepo stores finished sessions. It implements session.Sink.
type SessionRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var _ session.Sink = (*SessionRepo)(nil)

// SessionSummary is one row of the archived session list.
type SessionSummary struct {
	ID             string
	Sequence       int64
	Participant    string
	Policy         difficulty.Policy
	StartedAt      time.Time
	FinishedAt     time.Time
	TotalQuestions int
	CorrectAnswers int
	Skipped        int
}

// Archive stores rec with all of its outcomes. Archiving the same session
// twice is a no-op, so a failed archive can be retried.
func (r *SessionRepo) Archive(ctx context.Context, rec session.Record) error {
	if rec.SessionID == "" {
		return fmt.Errorf("archive session: missing session id")
	}

	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, rec.SessionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check session %s: %w", rec.SessionID, err)
	}
	if exists > 0 {
		return nil
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	var correct, skipped int
	for _, o := range rec.Outcomes {
		if o.Correct {
			correct++
		}
		if o.Skipped {
			skipped++
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, sequence, participant, policy, started_at, finished_at,
		   total_questions, correct_answers, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, seqNum, rec.Participant, string(rec.Policy),
		rec.StartedAt.UTC(), rec.FinishedAt.UTC(), len(rec.Outcomes), correct, skipped)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", rec.SessionID, err)
	}

	for _, o := range rec.Outcomes {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO outcomes (session_id, idx, item_id, difficulty, emotion, emotion_source,
			   correct, skipped, answer, answered_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.SessionID, o.Index, o.ItemID, string(o.Difficulty), string(o.Emotion), o.EmotionSource,
			o.Correct, o.Skipped, o.Answer, o.AnsweredAt.UTC())
		if err != nil {
			return fmt.Errorf("insert outcome %d of %s: %w", o.Index, rec.SessionID, err)
		}
	}

	return tx.Commit()
}

// List returns archived sessions, newest first.
func (r *SessionRepo) List(ctx context.Context, opts QueryOpts) ([]SessionSummary, error) {
	query, args := opts.selector("sessions", "finished_at",
		"id", "sequence", "participant", "policy", "started_at", "finished_at",
		"total_questions", "correct_answers", "skipped").Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var s SessionSummary
		var policy string
		if err := rows.Scan(&s.ID, &s.Sequence, &s.Participant, &policy, &s.StartedAt, &s.FinishedAt,
			&s.TotalQuestions, &s.CorrectAnswers, &s.Skipped); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Policy = difficulty.Policy(policy)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get loads a full archived session. An exact ID wins; otherwise a unique
// ID prefix is accepted. Unknown IDs return ErrNotFound.
func (r *SessionRepo) Get(ctx context.Context, id string) (*session.Record, error) {
	rec, err := r.header(ctx, `WHERE id = ?`, id)
	if errors.Is(err, ErrNotFound) {
		rec, err = r.header(ctx, `WHERE id LIKE ? || '%'`, id)
	}
	if err != nil {
		return nil, err
	}

	rec.Outcomes, err = r.outcomes(ctx, rec.SessionID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *SessionRepo) header(ctx context.Context, where, id string) (*session.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, participant, policy, started_at, finished_at FROM sessions `+where+` LIMIT 2`, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	defer rows.Close()

	var recs []session.Record
	for rows.Next() {
		var rec session.Record
		var policy string
		if err := rows.Scan(&rec.SessionID, &rec.Participant, &policy, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.Policy = difficulty.Policy(policy)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	switch len(recs) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &recs[0], nil
	default:
		return nil, fmt.Errorf("session id prefix %q is ambiguous", id)
	}
}

// All returns every archived session with outcomes, oldest first.
func (r *SessionRepo) All(ctx context.Context) ([]session.Record, error) {
	summaries, err := r.List(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}
	out := make([]session.Record, 0, len(summaries))
	for i := len(summaries) - 1; i >= 0; i-- {
		s := summaries[i]
		outcomes, err := r.outcomes(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, session.Record{
			SessionID:   s.ID,
			Participant: s.Participant,
			Policy:      s.Policy,
			StartedAt:   s.StartedAt,
			FinishedAt:  s.FinishedAt,
			Outcomes:    outcomes,
		})
	}
	return out, nil
}

func (r *SessionRepo) outcomes(ctx context.Context, sessionID string) ([]session.Outcome, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT idx, item_id, difficulty, emotion, emotion_source, correct, skipped, answer, answered_at
		 FROM outcomes WHERE session_id = ? ORDER BY idx`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []session.Outcome
	for rows.Next() {
		var o session.Outcome
		var d, e string
		if err := rows.Scan(&o.Index, &o.ItemID, &d, &e, &o.EmotionSource, &o.Correct, &o.Skipped,
			&o.Answer, &o.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Difficulty = practice.Difficulty(d)
		o.Emotion = emotion.Emotion(e)
		out = append(out, o)
	}
	return out, rows.Err()
}

// PolicyStats aggregates archived sessions run under one policy.
type PolicyStats struct {
	Sessions  int
	Questions int
	Correct   int
	Skipped   int
}

// Accuracy is Correct / Questions, or 0 when nothing was answered.
func (p PolicyStats) Accuracy() float64 {
	if p.Questions == 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Questions)
}

// Stats is the aggregate view over all archived sessions.
type Stats struct {
	ByPolicy     map[difficulty.Policy]PolicyStats
	Emotions     map[emotion.Emotion]int
	ByDifficulty map[practice.Difficulty]session.Tally
}

// Stats aggregates every archived session.
func (r *SessionRepo) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		ByPolicy:     make(map[difficulty.Policy]PolicyStats),
		Emotions:     make(map[emotion.Emotion]int),
		ByDifficulty: make(map[practice.Difficulty]session.Tally),
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT policy, COUNT(*), COALESCE(SUM(total_questions), 0),
		   COALESCE(SUM(correct_answers), 0), COALESCE(SUM(skipped), 0)
		 FROM sessions GROUP BY policy`)
	if err != nil {
		return nil, fmt.Errorf("session stats: %w", err)
	}
	for rows.Next() {
		var policy string
		var ps PolicyStats
		if err := rows.Scan(&policy, &ps.Sessions, &ps.Questions, &ps.Correct, &ps.Skipped); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session stats: %w", err)
		}
		st.ByPolicy[difficulty.Policy(policy)] = ps
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session stats: %w", err)
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT difficulty, emotion, COUNT(*), COALESCE(SUM(correct), 0)
		 FROM outcomes GROUP BY difficulty, emotion`)
	if err != nil {
		return nil, fmt.Errorf("outcome stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d, e string
		var n, correct int
		if err := rows.Scan(&d, &e, &n, &correct); err != nil {
			return nil, fmt.Errorf("scan outcome stats: %w", err)
		}
		st.Emotions[emotion.Emotion(e)] += n
		t := st.ByDifficulty[practice.Difficulty(d)]
		t.Attempted += n
		t.Correct += correct
		st.ByDifficulty[practice.Difficulty(d)] = t
	}
	return st, rows.Err()
}

// Delete removes an archived session and its outcomes.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
