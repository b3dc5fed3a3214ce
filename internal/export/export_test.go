package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/session"
)

func sampleRecord() session.Record {
	start := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	return session.Record{
		SessionID:   "abc",
		Participant: "p-07",
		Policy:      difficulty.Adaptive,
		StartedAt:   start,
		FinishedAt:  start.Add(4 * time.Minute),
		Outcomes: []session.Outcome{
			{Index: 1, ItemID: "e-greet-1", Difficulty: practice.Easy, Emotion: emotion.Positive, EmotionSource: session.SourceText, Correct: true, Answer: "Hello!"},
			{Index: 2, ItemID: "m-order-1", Difficulty: practice.Medium, Emotion: emotion.Neutral, EmotionSource: session.SourceSkip, Skipped: true},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecord()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"abc", "p-07", "adaptive", "1", "e-greet-1", "easy", "POSITIVE", "true", "false"}, rows[1])
	assert.Equal(t, []string{"abc", "p-07", "adaptive", "2", "m-order-1", "medium", "NEUTRAL", "false", "true"}, rows[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, WriteJSON(&buf, now, sampleRecord()))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, Version, doc.Version)
	assert.Equal(t, "2026-05-05T00:00:00Z", doc.ExportedAt)
	require.Len(t, doc.Sessions, 1)
	assert.Equal(t, difficulty.Adaptive, doc.Sessions[0].Policy)
	assert.Len(t, doc.Sessions[0].Outcomes, 2)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, now))
	assert.Contains(t, buf.String(), `"sessions": []`)
}

func TestDirSinks(t *testing.T) {
	dir := t.TempDir()
	rec := sampleRecord()
	sink := MultiSink{NewCSVSink(dir), NewJSONSink(filepath.Join(dir, "json")), nil}

	require.NoError(t, sink.Archive(context.Background(), rec))

	csvPath := filepath.Join(dir, FileName(rec, FormatCSV))
	assert.FileExists(t, csvPath)
	assert.FileExists(t, filepath.Join(dir, "json", FileName(rec, FormatJSON)))
	assert.Equal(t, "session-20260504-093400-abc.csv", filepath.Base(csvPath))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".export-", "temp file left behind")
	}
}

type failingSink struct{ err error }

func (f failingSink) Archive(context.Context, session.Record) error { return f.err }

func TestMultiSink_TriesAllAndJoinsErrors(t *testing.T) {
	dir := t.TempDir()
	errA := errors.New("disk full")
	sink := MultiSink{failingSink{errA}, NewCSVSink(dir)}

	err := sink.Archive(context.Background(), sampleRecord())
	assert.ErrorIs(t, err, errA)
	assert.FileExists(t, filepath.Join(dir, FileName(sampleRecord(), FormatCSV)), "later sinks still run")
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "x.xml"), "xml", sampleRecord())
	assert.Error(t, err)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
}
