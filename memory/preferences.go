package memory

import (
	"strings"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
)

// Preferences are the interaction preferences inferred from user
// messages. Zero values mean "no signal"; Interests accumulates without
// duplicates across a scan.
type Preferences struct {
	CommunicationStyle string
	ResponseLength     string
	Interests          []string
}

var (
	formalKeywords = []string{"please", "kindly", "would you", "could you", "formal", "professional"}
	casualKeywords = []string{"hey", "yo", "gonna", "wanna", "cool", "casual", "lol"}

	shortKeywords    = []string{"brief", "short", "quick", "summary", "tldr", "concise"}
	detailedKeywords = []string{"detail", "detailed", "explain", "elaborate", "thorough", "in depth"}

	interestGroups = []struct {
		name     string
		keywords []string
	}{
		{"technology", []string{"computer", "software", "programming", "tech", "code", "coding", "technology"}},
		{"science", []string{"science", "physics", "chemistry", "biology", "research", "space", "astronomy"}},
		{"arts", []string{"music", "art", "painting", "drawing", "writing", "poetry", "film", "theater"}},
		{"sports", []string{"sport", "football", "soccer", "basketball", "running", "gym", "hiking", "swimming"}},
		{"business", []string{"business", "startup", "marketing", "finance", "investing", "entrepreneur"}},
		{"health", []string{"health", "fitness", "nutrition", "diet", "wellness", "meditation"}},
	}
)

// ExtractPreferences scans user-authored messages for fixed keyword sets
// mapping to communication style, response length, and interests. Pure
// and never-failing: no signal yields the zero Preferences.
func ExtractPreferences(messages []core.Message) Preferences {
	var parts []string
	for _, m := range messages {
		if m.Role == core.RoleUser {
			parts = append(parts, m.Content)
		}
	}
	text := strings.ToLower(strings.Join(parts, " "))

	var prefs Preferences

	formal := countKeywords(text, formalKeywords)
	casual := countKeywords(text, casualKeywords)
	if formal > casual {
		prefs.CommunicationStyle = "formal"
	} else if casual > formal {
		prefs.CommunicationStyle = "casual"
	}

	short := countKeywords(text, shortKeywords)
	detailed := countKeywords(text, detailedKeywords)
	if short > detailed {
		prefs.ResponseLength = "short"
	} else if detailed > short {
		prefs.ResponseLength = "detailed"
	}

	for _, group := range interestGroups {
		if countKeywords(text, group.keywords) > 0 {
			prefs.Interests = append(prefs.Interests, group.name)
		}
	}

	return prefs
}

// ExtractRealtimePreferences is the narrower per-message variant: it
// only reacts to explicit imperative phrasing in a single incoming
// message, for immediate preference updates independent of
// consolidation.
func ExtractRealtimePreferences(message string) map[string]interface{} {
	text := strings.ToLower(message)
	updates := map[string]interface{}{}

	switch {
	case containsAny(text, "be more formal", "more professional", "speak formally"):
		updates["communicationStyle"] = "formal"
	case containsAny(text, "be more casual", "less formal", "relax a bit", "speak casually"):
		updates["communicationStyle"] = "casual"
	}

	switch {
	case containsAny(text, "keep it short", "be brief", "shorter answers", "less detail"):
		updates["responseLength"] = "short"
	case containsAny(text, "more detail", "be more detailed", "elaborate more", "longer answers"):
		updates["responseLength"] = "detailed"
	}

	return updates
}

func countKeywords(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func containsAny(text string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
