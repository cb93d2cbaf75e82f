package memory_test

import (
	"testing"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/memory"
)

func factTexts(facts []memory.Fact) []string {
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.Text
	}
	return out
}

func containsFact(facts []memory.Fact, text string) bool {
	for _, f := range facts {
		if f.Text == text {
			return true
		}
	}
	return false
}

func TestExtractFacts_Patterns(t *testing.T) {
	cases := []struct {
		input    string
		want     string
		category string
	}{
		{"my name is Alice", "User's name is Alice", "personal"},
		{"Hi there, I am called bob!", "User's name is Bob", "personal"},
		{"I'm 34 years old", "User is 34 years old", "personal"},
		{"I live in new york", "User lives in New York", "personal"},
		{"i work as a software engineer", "User works as software engineer", "personal"},
		{"I am married", "User is married", "personal"},
		{"I love hiking", "User likes hiking", "preferences"},
		{"I hate mondays", "User dislikes mondays", "preferences"},
		{"my favorite food is sushi", "User's favorite food is sushi", "preferences"},
		{"I want to become a writer", "User wants to become writer", "goals"},
		{"I'm working on a novel", "User is working on a novel", "goals"},
		{"my sister is named carol", "User's sister is Carol", "relationships"},
		{"I have two kids", "User has two children", "relationships"},
	}

	for _, tc := range cases {
		facts := memory.ExtractFacts(tc.input)
		if !containsFact(facts, tc.want) {
			t.Errorf("ExtractFacts(%q): want %q, got %v", tc.input, tc.want, factTexts(facts))
			continue
		}
		for _, f := range facts {
			if f.Text == tc.want && f.Category != tc.category {
				t.Errorf("ExtractFacts(%q): category %q, want %q", tc.input, f.Category, tc.category)
			}
		}
	}
}

func TestExtractFacts_ConfidenceAndSource(t *testing.T) {
	facts := memory.ExtractFacts("my name is Alice")
	if len(facts) == 0 {
		t.Fatal("expected a fact")
	}
	if facts[0].Confidence != 0.8 {
		t.Errorf("extracted facts carry confidence 0.8, got %v", facts[0].Confidence)
	}
	if facts[0].Source != "my name is Alice" {
		t.Errorf("source snippet mismatch: %q", facts[0].Source)
	}
}

func TestExtractFacts_SourceTruncated(t *testing.T) {
	long := "my name is Alice and here is a very long trailing explanation that goes on and on well past fifty characters"
	facts := memory.ExtractFacts(long)
	if len(facts) == 0 {
		t.Fatal("expected a fact")
	}
	if got := len([]rune(facts[0].Source)); got != 50 {
		t.Errorf("source should be truncated to 50 runes, got %d", got)
	}
}

func TestExtractFacts_RejectsNoise(t *testing.T) {
	for _, input := range []string{
		"my name is a",  // single-char capture
		"I love the",    // stopword capture
		"nothing to see", // no pattern
		"",
	} {
		if facts := memory.ExtractFacts(input); len(facts) != 0 {
			t.Errorf("ExtractFacts(%q) should yield nothing, got %v", input, factTexts(facts))
		}
	}
}

func TestExtractFacts_MultipleFromOneUtterance(t *testing.T) {
	facts := memory.ExtractFacts("my name is Alice and I love hiking")
	if !containsFact(facts, "User's name is Alice") {
		t.Errorf("missing name fact: %v", factTexts(facts))
	}
	if !containsFact(facts, "User likes hiking") {
		t.Errorf("missing preference fact: %v", factTexts(facts))
	}
}
