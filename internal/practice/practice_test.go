package practice

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/fluentz/internal/emotion"
)

func TestDifficultyOrdering(t *testing.T) {
	if Easy.Harder() != Medium || Medium.Harder() != Hard || Hard.Harder() != Hard {
		t.Error("Harder() does not walk easy -> medium -> hard with a ceiling")
	}
	if Hard.Easier() != Medium || Medium.Easier() != Easy || Easy.Easier() != Easy {
		t.Error("Easier() does not walk hard -> medium -> easy with a floor")
	}
	if Difficulty("x").Valid() {
		t.Error("Difficulty(x).Valid() = true, want false")
	}
	d, err := ParseDifficulty(" HARD ")
	if err != nil || d != Hard {
		t.Errorf("ParseDifficulty(HARD) = (%s, %v), want hard", d, err)
	}
	if _, err := ParseDifficulty("extreme"); err == nil {
		t.Error("ParseDifficulty(extreme): expected error")
	}
}

func TestPick_ExcludesUsed(t *testing.T) {
	items := []Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	rnd := rand.New(rand.NewPCG(1, 2))
	exclude := map[string]struct{}{"a": {}, "c": {}}

	for range 20 {
		it, ok := Pick(items, exclude, rnd)
		if !ok {
			t.Fatal("Pick returned ok=false with an eligible item")
		}
		if it.ID != "b" {
			t.Fatalf("Pick = %q, want b", it.ID)
		}
	}

	exclude["b"] = struct{}{}
	if _, ok := Pick(items, exclude, rnd); ok {
		t.Error("Pick with all excluded: ok = true, want false")
	}
	if _, ok := Pick(nil, nil, nil); ok {
		t.Error("Pick(nil): ok = true, want false")
	}
}

func TestMemoryCatalog(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCatalog(SeedItems()...)

	all, err := c.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(all) != len(SeedItems()) {
		t.Errorf("FetchAll len = %d, want %d", len(all), len(SeedItems()))
	}

	for _, d := range AllDifficulties {
		items, err := c.FetchByDifficulty(ctx, d)
		if err != nil {
			t.Fatalf("FetchByDifficulty(%s): %v", d, err)
		}
		if len(items) == 0 {
			t.Errorf("no seed items at %s", d)
		}
		for _, it := range items {
			if it.Difficulty != d {
				t.Errorf("item %s difficulty = %s, want %s", it.ID, it.Difficulty, d)
			}
		}
	}

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}
}

func TestSeedItemsValid(t *testing.T) {
	seen := map[string]bool{}
	for _, it := range SeedItems() {
		if err := it.Validate(); err != nil {
			t.Errorf("seed item invalid: %v", err)
		}
		if seen[it.ID] {
			t.Errorf("duplicate seed id %s", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestDecodeItems(t *testing.T) {
	in := `[{"id": 7, "difficulty": "easy", "question": "Say hi", "correct_answer": "Hi"},
	        {"id": "x1", "difficulty": "Hard", "question": "Q", "correct_answer": "A"}]`
	items, err := DecodeItems(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeItems: %v", err)
	}
	if items[0].ID != "7" {
		t.Errorf("numeric id = %q, want \"7\"", items[0].ID)
	}
	if items[1].ID != "x1" || items[1].Difficulty != Hard {
		t.Errorf("items[1] = %+v", items[1])
	}

	_, err = DecodeItems(strings.NewReader(`[{"id":1,"difficulty":"impossible","question":"q","correct_answer":"a"}]`))
	if err == nil {
		t.Error("expected error for unknown difficulty")
	}
	_, err = DecodeItems(strings.NewReader(`[{"id":1,"difficulty":"easy","question":"q","correct_answer":"a"},{"id":1,"difficulty":"easy","question":"q","correct_answer":"a"}]`))
	if err == nil {
		t.Error("expected error for duplicate id")
	}
}

func newTestHTTPCatalog(t *testing.T, handler http.Handler) *HTTPCatalog {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPCatalog(server.URL, time.Second)
}

func TestHTTPCatalog_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/practices/difficulty/{d}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("d") != "medium" {
			t.Errorf("difficulty path = %q, want medium", r.PathValue("d"))
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 3, "difficulty": "medium", "question": "Order coffee", "correct_answer": "A coffee please"},
		})
	})
	mux.HandleFunc("GET /api/practices", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Item{{ID: "1", Difficulty: Easy, Prompt: "p", ExpectedAnswer: "a"}})
	})
	mux.HandleFunc("GET /api/practices/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})

	c := newTestHTTPCatalog(t, mux)
	ctx := context.Background()

	items, err := c.FetchByDifficulty(ctx, Medium)
	if err != nil {
		t.Fatalf("FetchByDifficulty: %v", err)
	}
	if len(items) != 1 || items[0].ID != "3" || items[0].ExpectedAnswer != "A coffee please" {
		t.Errorf("items = %+v", items)
	}

	all, err := c.FetchAll(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("FetchAll = (%v, %v)", all, err)
	}

	if _, err := c.Get(ctx, "42"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound", err)
	}
}

func TestHTTPCatalog_Suggest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/practices/FindNextPractice" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body NextRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Emotion != emotion.Positive || body.Practice.ID != "1" {
			t.Errorf("body = %+v", body)
		}
		json.NewEncoder(w).Encode(Item{ID: "9", Difficulty: Medium, Prompt: "p", ExpectedAnswer: "a"})
	})

	c := newTestHTTPCatalog(t, handler)
	it, err := c.Suggest(context.Background(), Item{ID: "1", Difficulty: Easy}, emotion.Positive, Medium)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if it.ID != "9" {
		t.Errorf("suggested id = %q, want 9", it.ID)
	}
}

func TestHTTPCatalog_ServerError(t *testing.T) {
	c := newTestHTTPCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "db down", http.StatusInternalServerError)
	}))
	_, err := c.FetchAll(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Fatalf("err = %v, want StatusError 500", err)
	}
}

func TestHTTPCatalog_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)

	c := NewHTTPCatalog(server.URL, 20*time.Millisecond)
	if _, err := c.FetchAll(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}
