package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abhisek/fluentz/internal/practice"
)

// PracticeRepo is the SQLite-backed practice catalog. It implements
// practice.Catalog and practice.Lookup.
type PracticeRepo struct {
	db *sql.DB
}

var (
	_ practice.Catalog = (*PracticeRepo)(nil)
	_ practice.Lookup  = (*PracticeRepo)(nil)
)

const practiceColumns = `id, difficulty, prompt, expected_answer`

func (r *PracticeRepo) FetchByDifficulty(ctx context.Context, d practice.Difficulty) ([]practice.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+practiceColumns+` FROM practices WHERE difficulty = ? ORDER BY id`, string(d))
	if err != nil {
		return nil, fmt.Errorf("list practices by difficulty: %w", err)
	}
	defer rows.Close()
	return scanPractices(rows)
}

func (r *PracticeRepo) FetchAll(ctx context.Context) ([]practice.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+practiceColumns+` FROM practices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list practices: %w", err)
	}
	defer rows.Close()
	return scanPractices(rows)
}

// Get returns the item with the given ID, or practice.ErrNotFound.
func (r *PracticeRepo) Get(ctx context.Context, id string) (*practice.Item, error) {
	var it practice.Item
	var d string
	err := r.db.QueryRowContext(ctx,
		`SELECT `+practiceColumns+` FROM practices WHERE id = ?`, id,
	).Scan(&it.ID, &d, &it.Prompt, &it.ExpectedAnswer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, practice.ErrNotFound
		}
		return nil, fmt.Errorf("get practice %q: %w", id, err)
	}
	it.Difficulty = practice.Difficulty(d)
	return &it, nil
}

// Upsert validates and stores items, replacing any with the same ID.
// All items are written in one transaction.
func (r *PracticeRepo) Upsert(ctx context.Context, items ...practice.Item) error {
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO practices (id, difficulty, prompt, expected_answer) VALUES (?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			   difficulty = excluded.difficulty,
			   prompt = excluded.prompt,
			   expected_answer = excluded.expected_answer`,
			it.ID, string(it.Difficulty), it.Prompt, it.ExpectedAnswer)
		if err != nil {
			return fmt.Errorf("upsert practice %q: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// Delete removes an item. Deleting a missing item returns practice.ErrNotFound.
func (r *PracticeRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM practices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete practice %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete practice %q: %w", id, err)
	}
	if n == 0 {
		return practice.ErrNotFound
	}
	return nil
}

// Count returns the number of items per difficulty.
func (r *PracticeRepo) Count(ctx context.Context) (map[practice.Difficulty]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT difficulty, COUNT(*) FROM practices GROUP BY difficulty`)
	if err != nil {
		return nil, fmt.Errorf("count practices: %w", err)
	}
	defer rows.Close()

	counts := make(map[practice.Difficulty]int)
	for rows.Next() {
		var d string
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, fmt.Errorf("scan practice count: %w", err)
		}
		counts[practice.Difficulty(d)] = n
	}
	return counts, rows.Err()
}

func scanPractices(rows *sql.Rows) ([]practice.Item, error) {
	var items []practice.Item
	for rows.Next() {
		var it practice.Item
		var d string
		if err := rows.Scan(&it.ID, &d, &it.Prompt, &it.ExpectedAnswer); err != nil {
			return nil, fmt.Errorf("scan practice: %w", err)
		}
		it.Difficulty = practice.Difficulty(d)
		items = append(items, it)
	}
	return items, rows.Err()
}
