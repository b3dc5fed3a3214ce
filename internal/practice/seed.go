package practice

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// SeedItems returns the built-in starter deck of everyday English phrases.
func SeedItems() []Item {
	return []Item{
		{ID: "e-greet-1", Difficulty: Easy, Prompt: "How do you greet someone in the morning?", ExpectedAnswer: "Good morning"},
		{ID: "e-thanks-1", Difficulty: Easy, Prompt: "What do you say when someone helps you?", ExpectedAnswer: "Thank you"},
		{ID: "e-sorry-1", Difficulty: Easy, Prompt: "What do you say to get a stranger's attention politely?", ExpectedAnswer: "Excuse me!"},
		{ID: "e-bye-1", Difficulty: Easy, Prompt: "What do you say when leaving a friend?", ExpectedAnswer: "See you later"},
		{ID: "e-name-1", Difficulty: Easy, Prompt: "Ask someone for their name.", ExpectedAnswer: "What is your name?"},
		{ID: "e-fine-1", Difficulty: Easy, Prompt: "Reply to \"How are you?\" when you feel well.", ExpectedAnswer: "I'm fine, thank you"},
		{ID: "m-direction-1", Difficulty: Medium, Prompt: "Ask a passer-by where the train station is.", ExpectedAnswer: "Where is the train station?"},
		{ID: "m-order-1", Difficulty: Medium, Prompt: "Order a cup of coffee politely.", ExpectedAnswer: "I would like a coffee, please"},
		{ID: "m-price-1", Difficulty: Medium, Prompt: "Ask a shopkeeper the price of an item.", ExpectedAnswer: "How much does this cost?"},
		{ID: "m-repeat-1", Difficulty: Medium, Prompt: "Ask someone to say something again.", ExpectedAnswer: "Could you repeat that, please?"},
		{ID: "m-time-1", Difficulty: Medium, Prompt: "Ask someone what time it is.", ExpectedAnswer: "What time is it?"},
		{ID: "m-help-1", Difficulty: Medium, Prompt: "Offer help to a colleague.", ExpectedAnswer: "Can I help you with that?"},
		{ID: "h-appoint-1", Difficulty: Hard, Prompt: "Ask to move a meeting to the following week.", ExpectedAnswer: "Would it be possible to reschedule our meeting to next week?"},
		{ID: "h-complain-1", Difficulty: Hard, Prompt: "Tell a waiter politely that your order is wrong.", ExpectedAnswer: "I'm afraid this isn't what I ordered"},
		{ID: "h-opinion-1", Difficulty: Hard, Prompt: "Disagree politely with a colleague's idea.", ExpectedAnswer: "I see your point, but I have a different opinion"},
		{ID: "h-interview-1", Difficulty: Hard, Prompt: "Describe your strongest skill in a job interview.", ExpectedAnswer: "My greatest strength is solving problems under pressure"},
		{ID: "h-doctor-1", Difficulty: Hard, Prompt: "Tell a doctor you have had a headache for three days.", ExpectedAnswer: "I have had a headache for three days"},
		{ID: "h-refund-1", Difficulty: Hard, Prompt: "Ask a store for a refund on a faulty product.", ExpectedAnswer: "I would like a refund because this product is faulty"},
	}
}

// Validate checks that an item has every required field and a known level.
func (it Item) Validate() error {
	switch {
	case strings.TrimSpace(it.ID) == "":
		return fmt.Errorf("item id is required")
	case !it.Difficulty.Valid():
		return fmt.Errorf("item %s: unknown difficulty %q", it.ID, it.Difficulty)
	case strings.TrimSpace(it.Prompt) == "":
		return fmt.Errorf("item %s: question is required", it.ID)
	case strings.TrimSpace(it.ExpectedAnswer) == "":
		return fmt.Errorf("item %s: correct_answer is required", it.ID)
	}
	return nil
}

// DecodeItems reads a JSON array of items and validates each one.
func DecodeItems(r io.Reader) ([]Item, error) {
	var items []Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, err
		}
		if seen[it.ID] {
			return nil, fmt.Errorf("duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
	}
	return items, nil
}
