package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/llm"
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/store/migrations"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fluentz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		require.NoError(t, db.QueryRow("PRAGMA "+tt.pragma).Scan(&got), tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestMigrationsAppliedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluentz.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	applied, err := migrations.Applied(context.Background(), s.DB())
	require.NoError(t, err)
	assert.True(t, applied["0001_init.sql"])
}

func TestPracticeRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.PracticeRepo()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, practice.SeedItems()...))

	counts, err := repo.Count(ctx)
	require.NoError(t, err)
	total := 0
	for _, d := range practice.AllDifficulties {
		assert.Positive(t, counts[d], "difficulty %s", d)
		total += counts[d]
	}
	assert.Equal(t, len(practice.SeedItems()), total)

	easy, err := repo.FetchByDifficulty(ctx, practice.Easy)
	require.NoError(t, err)
	for _, it := range easy {
		assert.Equal(t, practice.Easy, it.Difficulty)
	}

	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, total)

	it, err := repo.Get(ctx, "e-greet-1")
	require.NoError(t, err)
	assert.Equal(t, practice.Easy, it.Difficulty)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, practice.ErrNotFound)

	// Upsert replaces by ID.
	updated := *it
	updated.Prompt = "Say hi."
	require.NoError(t, repo.Upsert(ctx, updated))
	it, err = repo.Get(ctx, "e-greet-1")
	require.NoError(t, err)
	assert.Equal(t, "Say hi.", it.Prompt)

	require.NoError(t, repo.Delete(ctx, "e-greet-1"))
	assert.ErrorIs(t, repo.Delete(ctx, "e-greet-1"), practice.ErrNotFound)
}

func TestPracticeRepo_UpsertRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	err := s.PracticeRepo().Upsert(context.Background(), practice.Item{ID: "x", Difficulty: "extreme", Prompt: "p", ExpectedAnswer: "a"})
	require.Error(t, err)

	all, err := s.PracticeRepo().FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testRecord(id string, policy difficulty.Policy, start time.Time) session.Record {
	rec := session.Record{
		SessionID:   id,
		Participant: "p-01",
		Policy:      policy,
		StartedAt:   start,
		FinishedAt:  start.Add(5 * time.Minute),
	}
	for i := 1; i <= session.MaxQuestions; i++ {
		rec.Outcomes = append(rec.Outcomes, session.Outcome{
			Index:         i,
			ItemID:        "item-" + string(rune('a'+i)),
			Difficulty:    practice.Medium,
			Emotion:       emotion.Neutral,
			EmotionSource: session.SourceText,
			Correct:       i%2 == 0,
			Skipped:       i == 3,
			Answer:        "answer",
			AnsweredAt:    start.Add(time.Duration(i) * time.Second),
		})
	}
	return rec
}

func TestSessionRepo_ArchiveAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := testRecord("6f1c2a3b-0000-4000-8000-000000000001", difficulty.Adaptive, start)
	require.NoError(t, repo.Archive(ctx, rec))

	// Retrying an archive is harmless.
	require.NoError(t, repo.Archive(ctx, rec))

	got, err := repo.Get(ctx, rec.SessionID)
	require.NoError(t, err)
	assert.Equal(t, rec.Participant, got.Participant)
	assert.Equal(t, difficulty.Adaptive, got.Policy)
	assert.True(t, got.StartedAt.Equal(start))
	require.Len(t, got.Outcomes, session.MaxQuestions)
	for i, o := range got.Outcomes {
		assert.Equal(t, i+1, o.Index)
		assert.Equal(t, rec.Outcomes[i].Correct, o.Correct)
		assert.Equal(t, rec.Outcomes[i].Skipped, o.Skipped)
	}

	byPrefix, err := repo.Get(ctx, "6f1c2a3b")
	require.NoError(t, err)
	assert.Equal(t, rec.SessionID, byPrefix.SessionID)

	_, err = repo.Get(ctx, "nope")
	assert.True(t, IsNotFound(err))
}

func TestSessionRepo_ListAndStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Archive(ctx, testRecord("s1", difficulty.Fixed, start)))
	require.NoError(t, repo.Archive(ctx, testRecord("s2", difficulty.Adaptive, start.Add(time.Hour))))
	require.NoError(t, repo.Archive(ctx, testRecord("s3", difficulty.Adaptive, start.Add(2*time.Hour))))

	list, err := repo.List(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "s3", list[0].ID, "newest first")
	assert.Equal(t, 5, list[0].CorrectAnswers)
	assert.Equal(t, 1, list[0].Skipped)

	limited, err := repo.List(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "s1", all[0].SessionID, "oldest first")

	st, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.ByPolicy[difficulty.Fixed].Sessions)
	assert.Equal(t, 2, st.ByPolicy[difficulty.Adaptive].Sessions)
	assert.InDelta(t, 0.5, st.ByPolicy[difficulty.Adaptive].Accuracy(), 1e-9)
	assert.Equal(t, 30, st.Emotions[emotion.Neutral])
	assert.Equal(t, 15, st.ByDifficulty[practice.Medium].Correct)

	require.NoError(t, repo.Delete(ctx, "s1"))
	assert.True(t, IsNotFound(repo.Delete(ctx, "s1")))
}

func TestSnapshotRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	snap, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap, "no snapshot yet")

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Save(ctx, &session.Snapshot{
			Version:           session.SnapshotVersion,
			ID:                "sess",
			Policy:            difficulty.Adaptive,
			Phase:             "READY",
			QuestionIndex:     i,
			CurrentDifficulty: practice.Easy,
			StartedAt:         time.Now().UTC(),
		}))
	}

	snap, err = repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 3, snap.QuestionIndex)
	assert.Equal(t, difficulty.Adaptive, snap.Policy)

	require.NoError(t, repo.Prune(ctx, 1))
	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n))
	assert.Equal(t, 1, n)

	require.NoError(t, repo.Clear(ctx))
	snap, err = repo.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestEventRepo_LLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []llm.RequestEvent{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "emotion-label", InputTokens: 100, OutputTokens: 5, LatencyMs: 300, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "next-practice", InputTokens: 200, OutputTokens: 20, LatencyMs: 500, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "emotion-label", LatencyMs: 100, ErrorMessage: "rate limited"},
	}
	for _, ev := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, ev))
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Greater(t, list[0].Sequence, list[1].Sequence, "newest first")
	assert.False(t, list[0].Success)
	assert.Equal(t, "rate limited", list[0].ErrorMessage)

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: list[1].Sequence})
	require.NoError(t, err)
	assert.Len(t, after, 1)

	labels, err := repo.QueryLLMEvents(ctx, QueryOpts{}, ForPurpose("emotion-label"))
	require.NoError(t, err)
	assert.Len(t, labels, 2)

	failed, err := repo.QueryLLMEvents(ctx, QueryOpts{After: list[2].Sequence}, ForPurpose("emotion-label"), FailedOnly())
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "rate limited", failed[0].ErrorMessage)

	got, err := repo.GetLLMEvent(ctx, list[2].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "emotion-label", got.Purpose)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "emotion-label", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, 100, byPurpose[0].InputTokens)
	assert.EqualValues(t, 200, byPurpose[0].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, 3, byModel[0].Calls)
}

func TestQueryOptsSelector(t *testing.T) {
	query, args := QueryOpts{After: 3, Before: 9, Limit: 2}.selector("sessions", "finished_at", "id").Query()
	assert.Contains(t, query, "FROM `sessions`")
	assert.Contains(t, query, "`sequence` > ?")
	assert.Contains(t, query, "`sequence` < ?")
	assert.True(t, strings.HasSuffix(query, "ORDER BY `sequence` DESC LIMIT 2"), query)
	assert.Equal(t, []any{int64(3), int64(9)}, args)

	query, args = QueryOpts{}.selector("llm_request_events", "timestamp", "id").Query()
	assert.NotContains(t, query, "WHERE")
	assert.NotContains(t, query, "LIMIT")
	assert.Empty(t, args)
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.EventRepo().AppendLLMRequest(ctx, llm.RequestEvent{Model: "m", Purpose: "p"}))
	require.NoError(t, s.SessionRepo().Archive(ctx, testRecord("s1", difficulty.Fixed, time.Now().UTC())))

	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	sessions, err := s.SessionRepo().List(ctx, QueryOpts{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), events[0].Sequence)
	assert.Equal(t, int64(2), sessions[0].Sequence)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("FLUENTZ_DB", filepath.Join(dir, "custom", "x.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom", "x.db"), p)
	assert.DirExists(t, filepath.Join(dir, "custom"))

	t.Setenv("FLUENTZ_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fluentz", "fluentz.db"), p)
}
