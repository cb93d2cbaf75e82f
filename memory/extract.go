package memory

import (
	"regexp"
	"strings"
)

// Fact extraction is a fixed ordered table of (pattern, category,
// renderer) tuples applied to the lowercased input, one independent scan
// per pattern. Patterns are not mutually exclusive: a single utterance
// may yield several candidates.

const (
	// extractedConfidence is carried by auto-extracted facts; explicit
	// additions get 1.0.
	extractedConfidence = 0.8

	// sourceSnippetLen bounds the provenance snippet kept on each fact.
	sourceSnippetLen = 50
)

// Spans this short, or in this closed set, are noise and are discarded.
var extractionStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "am": true, "are": true,
}

type factPattern struct {
	re       *regexp.Regexp
	category string
	render   func(captures []string) string
}

var factPatterns = []factPattern{
	// Personal
	{
		re:       regexp.MustCompile(`(?:my name is|i am called|call me) ([a-z]+)`),
		category: "personal",
		render:   func(c []string) string { return "User's name is " + capitalize(c[1]) },
	},
	{
		re:       regexp.MustCompile(`i(?:'m| am) (\d{1,3}) years? old`),
		category: "personal",
		render:   func(c []string) string { return "User is " + c[1] + " years old" },
	},
	{
		re:       regexp.MustCompile(`i live in ([a-z][a-z ]*[a-z])`),
		category: "personal",
		render:   func(c []string) string { return "User lives in " + titleWords(c[1]) },
	},
	{
		re:       regexp.MustCompile(`i work as (?:an? )?([a-z][a-z ]*[a-z])`),
		category: "personal",
		render:   func(c []string) string { return "User works as " + c[1] },
	},
	{
		re:       regexp.MustCompile(`i(?:'m| am) (single|married|divorced|widowed|engaged|in a relationship)`),
		category: "personal",
		render:   func(c []string) string { return "User is " + c[1] },
	},

	// Preferences
	{
		re:       regexp.MustCompile(`i (?:love|like|enjoy) ([a-z][a-z ]*[a-z])`),
		category: "preferences",
		render:   func(c []string) string { return "User likes " + c[1] },
	},
	{
		re:       regexp.MustCompile(`i (?:hate|dislike|cannot stand|can't stand) ([a-z][a-z ]*[a-z])`),
		category: "preferences",
		render:   func(c []string) string { return "User dislikes " + c[1] },
	},
	{
		re:       regexp.MustCompile(`my hobb(?:y is|ies are) ([a-z][a-z ]*[a-z])`),
		category: "preferences",
		render:   func(c []string) string { return "User's hobby is " + c[1] },
	},
	{
		re:       regexp.MustCompile(`my favorite food is ([a-z][a-z ]*[a-z])`),
		category: "preferences",
		render:   func(c []string) string { return "User's favorite food is " + c[1] },
	},

	// Goals
	{
		re:       regexp.MustCompile(`i want to (?:be(?:come)? )(?:an? )?([a-z][a-z ]*[a-z])`),
		category: "goals",
		render:   func(c []string) string { return "User wants to become " + c[1] },
	},
	{
		re:       regexp.MustCompile(`i(?:'m| am) working on ([a-z][a-z ]*[a-z])`),
		category: "goals",
		render:   func(c []string) string { return "User is working on " + c[1] },
	},

	// Relationships
	{
		re:       regexp.MustCompile(`my (wife|husband|partner|girlfriend|boyfriend|mother|father|mom|dad|sister|brother|son|daughter)(?:'s name)? is (?:named |called )?([a-z]+)`),
		category: "relationships",
		render: func(c []string) string {
			return "User's " + c[1] + " is " + capitalize(c[2])
		},
	},
	{
		re:       regexp.MustCompile(`i have (\d+|one|two|three|four|five|six) (?:kids?|children)`),
		category: "relationships",
		render:   func(c []string) string { return "User has " + c[1] + " children" },
	},
}

// ExtractFacts proposes candidate facts from a single user utterance.
// Pure and side-effect-free: malformed or unmatched input yields an
// empty result, never an error. Candidates carry a fixed confidence of
// 0.8 and a truncated provenance snippet; AddedAt is stamped when the
// candidate is merged into a Person's fact list.
func ExtractFacts(text string) []Fact {
	lowered := strings.ToLower(text)
	snippet := truncateRunes(strings.TrimSpace(text), sourceSnippetLen)

	var facts []Fact
	for _, p := range factPatterns {
		for _, match := range p.re.FindAllStringSubmatch(lowered, -1) {
			if !capturesUsable(match[1:]) {
				continue
			}
			facts = append(facts, Fact{
				Text:       p.render(match),
				Category:   p.category,
				Confidence: extractedConfidence,
				Source:     snippet,
			})
		}
	}
	return facts
}

// capturesUsable discards matches whose captured spans are shorter than
// 2 characters or are bare stopwords.
func capturesUsable(captures []string) bool {
	for _, c := range captures {
		c = strings.TrimSpace(c)
		if len(c) < 2 || extractionStopwords[c] {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
