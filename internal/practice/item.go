package practice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// ErrNotFound is returned when a practice item lookup by ID finds nothing.
var ErrNotFound = errors.New("practice item not found")

// Item is a single practice question. Items are immutable once fetched.
type Item struct {
	ID             string     `json:"id"`
	Difficulty     Difficulty `json:"difficulty"`
	Prompt         string     `json:"question"`
	ExpectedAnswer string     `json:"correct_answer"`
}

// Catalog supplies practice items. Implementations return every matching
// item; selection and exclusion of used IDs is the caller's job.
type Catalog interface {
	// FetchByDifficulty returns all items at the given level (possibly none).
	FetchByDifficulty(ctx context.Context, d Difficulty) ([]Item, error)

	// FetchAll returns every item in the catalog.
	FetchAll(ctx context.Context) ([]Item, error)
}

// Lookup is implemented by catalogs that can resolve a single item by ID.
type Lookup interface {
	Get(ctx context.Context, id string) (*Item, error)
}

// Pick chooses uniformly at random among items whose ID is not in exclude.
// It returns false when every item is excluded or the slice is empty.
func Pick(items []Item, exclude map[string]struct{}, rnd *rand.Rand) (Item, bool) {
	eligible := make([]Item, 0, len(items))
	for _, it := range items {
		if _, used := exclude[it.ID]; used {
			continue
		}
		eligible = append(eligible, it)
	}
	if len(eligible) == 0 {
		return Item{}, false
	}

	var n int
	if rnd != nil {
		n = rnd.IntN(len(eligible))
	} else {
		n = rand.IntN(len(eligible))
	}
	return eligible[n], true
}

// FilterByDifficulty returns the items at level d, preserving order.
func FilterByDifficulty(items []Item, d Difficulty) []Item {
	var out []Item
	for _, it := range items {
		if it.Difficulty == d {
			out = append(out, it)
		}
	}
	return out
}

// UnmarshalJSON accepts the item ID as either a JSON string or number, since
// catalogs backed by SQL serials emit numeric IDs.
func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var raw struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*it = Item(raw.plain)

	id := strings.TrimSpace(string(raw.ID))
	switch {
	case id == "" || id == "null":
		it.ID = ""
	case strings.HasPrefix(id, `"`):
		var s string
		if err := json.Unmarshal(raw.ID, &s); err != nil {
			return fmt.Errorf("decode item id: %w", err)
		}
		it.ID = s
	default:
		var n json.Number
		if err := json.Unmarshal(raw.ID, &n); err != nil {
			return fmt.Errorf("decode item id: %w", err)
		}
		it.ID = n.String()
	}
	return nil
}
