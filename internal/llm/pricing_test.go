package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	c := LookupCost("gemini-2.5-flash")
	if c == nil {
		t.Fatal("expected cost for gemini-2.5-flash")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-2.8) > 1e-9 {
		t.Errorf("Cost(1M, 1M) = %f, want 2.8", got)
	}

	if LookupCost("google/gemini-2.5-flash") == nil {
		t.Error("vendor-prefixed id did not resolve")
	}
	if LookupCost("acme/unknown-model") != nil {
		t.Error("unknown model resolved")
	}
}
