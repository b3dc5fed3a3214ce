package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/llm"
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/store"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("FLUENTZ_CONFIG", "")
	t.Setenv("FLUENTZ_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestSeedPracticeExport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "fluentz.db")

	out := execute(t, "", "seed", "--db", db)
	assert.Contains(t, out, "Catalog: 6 easy, 6 medium, 6 hard.")

	out = execute(t, "", "export", "--db", db, "--out", filepath.Join(dir, "none.csv"))
	assert.Contains(t, out, "No sessions to export.")

	answers := strings.Repeat("/skip\n", 10)
	out = execute(t, answers, "practice", "--db", db, "--policy", "fixed", "--participant", "ana")
	assert.Contains(t, out, "Session complete!")
	assert.Contains(t, out, "Participant: ana")

	csvPath := filepath.Join(dir, "all.csv")
	out = execute(t, "", "export", "--db", db, "--out", csvPath)
	assert.Contains(t, out, "Exported 1 sessions")
	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 11, strings.Count(string(b), "\n"), "header plus one row per question")
}

func TestPracticeResumesAfterQuit(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fluentz.db")
	execute(t, "", "seed", "--db", db)

	out := execute(t, "/skip\n/quit\n", "practice", "--db", db, "--policy", "adaptive")
	assert.Contains(t, out, "Session saved.")

	out = execute(t, strings.Repeat("/skip\n", 9), "practice", "--db", db, "--policy", "adaptive")
	assert.Contains(t, out, "Resuming adaptive session at question 2.")
	assert.Contains(t, out, "Session complete!")
}

type brokenSink struct{}

func (brokenSink) Archive(context.Context, session.Record) error {
	return errors.New("disk full")
}

func TestPracticeArchivesFinishedSnapshot(t *testing.T) {
	ctx := context.Background()
	db := filepath.Join(t.TempDir(), "fluentz.db")
	execute(t, "", "seed", "--db", db)

	ctrl := session.New(session.Options{
		Catalog: practice.NewMemoryCatalog(practice.SeedItems()...),
		Sink:    brokenSink{},
	})
	_, err := ctrl.Start(difficulty.Fixed)
	require.NoError(t, err)
	for range session.MaxQuestions {
		_, err := ctrl.RequestNextItem(ctx)
		require.NoError(t, err)
		_, err = ctrl.Skip(ctx)
		if err != nil {
			require.ErrorContains(t, err, "disk full")
		}
	}
	snap, err := ctrl.Snapshot()
	require.NoError(t, err)
	require.False(t, snap.Archived)

	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.SnapshotRepo().Save(ctx, snap))
	require.NoError(t, st.Close())

	out := execute(t, "/quit\n", "practice", "--db", db, "--policy", "adaptive")
	assert.Contains(t, out, "Your last session was added to the history.")
	assert.NotContains(t, out, "Resuming")

	st, err = store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	sessions, err := st.SessionRepo().List(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, snap.ID, sessions[0].ID)
}

func TestResetRequiresConfirmation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fluentz.db")
	execute(t, "", "seed", "--db", db)

	out := execute(t, "n\n", "reset", "--db", db)
	assert.Contains(t, out, "Aborted.")
	assert.FileExists(t, db)

	execute(t, "", "reset", "--db", db, "--yes")
	assert.NoFileExists(t, db)
}

func TestVersion(t *testing.T) {
	out := execute(t, "", "version")
	assert.Contains(t, out, "fluentz (devel)")
	assert.Contains(t, out, "commit: unknown")

	out = execute(t, "", "version", "--short")
	assert.Equal(t, "(devel)\n", out)
}

func TestLLMCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fluentz.db")
	out := execute(t, "", "llm", "stats", "--db", db)
	assert.Contains(t, out, "No LLM usage recorded yet.")

	s, err := store.Open(db)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.EventRepo().AppendLLMRequest(ctx, llm.RequestEvent{
		Provider: "gemini", Model: "gemini-2.5-flash", Purpose: llm.PurposeEmotionLabel,
		InputTokens: 300, OutputTokens: 5, Success: true,
		RequestBody: `{"system":"judge"}`, ResponseBody: `{"label":"Positive"}`,
	}))
	require.NoError(t, s.EventRepo().AppendLLMRequest(ctx, llm.RequestEvent{
		Provider: "gemini", Model: "gemini-2.5-flash", Purpose: llm.PurposeNextPractice,
		ErrorMessage: "rate limited",
	}))
	require.NoError(t, s.Close())

	out = execute(t, "", "llm", "list", "--db", db)
	assert.Contains(t, out, "emotion-label")
	assert.Contains(t, out, "✗ rate limited")

	out = execute(t, "", "llm", "view", "1", "--db", db)
	assert.Contains(t, out, "gemini/gemini-2.5-flash for emotion-label")
	assert.Contains(t, out, "\"label\": \"Positive\"")

	out = execute(t, "", "llm", "stats", "--db", db)
	assert.Contains(t, out, "Usage by purpose")
	assert.Contains(t, out, "next-practice")

	out = execute(t, "", "llm", "list", "--failed", "--db", db)
	assert.NotContains(t, out, "emotion-label")
	assert.Contains(t, out, "next-practice")
}
