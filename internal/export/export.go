// Package export writes finished sessions to CSV and JSON files. Each
// format is also a session.Sink, so sessions can be exported as they are
// archived.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/abhisek/fluentz/internal/session"
)

// Format names accepted by ParseFormat.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Version is the JSON export format version.
const Version = "1.0"

// CSVHeader lists the CSV columns; one row per question.
var CSVHeader = []string{"session_id", "participant", "policy", "index", "item_id", "difficulty", "emotion", "correct", "skipped"}

// WriteCSV writes recs as CSV rows with a header.
func WriteCSV(w io.Writer, recs ...session.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, rec := range recs {
		for _, o := range rec.Outcomes {
			row := []string{
				rec.SessionID,
				rec.Participant,
				rec.Policy.Label(),
				strconv.Itoa(o.Index),
				o.ItemID,
				string(o.Difficulty),
				string(o.Emotion),
				strconv.FormatBool(o.Correct),
				strconv.FormatBool(o.Skipped),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Document is the JSON export envelope.
type Document struct {
	Version    string           `json:"version"`
	ExportedAt string           `json:"exported_at"`
	Sessions   []session.Record `json:"sessions"`
}

// WriteJSON writes recs as one indented Document.
func WriteJSON(w io.Writer, now time.Time, recs ...session.Record) error {
	doc := Document{
		Version:    Version,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Sessions:   append([]session.Record{}, recs...),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteFile writes recs to path in the given format. The parent directory
// is created if needed and the file is replaced atomically.
func WriteFile(path, format string, recs ...session.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	switch format {
	case FormatCSV:
		err = WriteCSV(tmp, recs...)
	case FormatJSON:
		err = WriteJSON(tmp, time.Now(), recs...)
	default:
		err = fmt.Errorf("unknown export format %q (want csv or json)", format)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

// FileName is the per-session export file name.
func FileName(rec session.Record, format string) string {
	stamp := rec.FinishedAt.UTC().Format("20060102-150405")
	return fmt.Sprintf("session-%s-%s.%s", stamp, rec.SessionID, format)
}

// ParseFormat validates a format name.
func ParseFormat(s string) (string, error) {
	switch s {
	case FormatCSV, FormatJSON:
		return s, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
	}
}

// DirSink writes each archived session to its own file in Dir.
type DirSink struct {
	Dir    string
	Format string
}

var _ session.Sink = (*DirSink)(nil)

// NewCSVSink exports sessions as CSV files under dir.
func NewCSVSink(dir string) *DirSink {
	return &DirSink{Dir: dir, Format: FormatCSV}
}

// NewJSONSink exports sessions as JSON files under dir.
func NewJSONSink(dir string) *DirSink {
	return &DirSink{Dir: dir, Format: FormatJSON}
}

func (s *DirSink) Archive(ctx context.Context, rec session.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteFile(filepath.Join(s.Dir, FileName(rec, s.Format)), s.Format, rec)
}

// MultiSink fans a record out to every sink. All sinks are tried; their
// errors are joined.
type MultiSink []session.Sink

var _ session.Sink = MultiSink(nil)

func (m MultiSink) Archive(ctx context.Context, rec session.Record) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Archive(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
