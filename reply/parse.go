package reply

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
)

// FallbackText is spoken when nothing usable can be recovered from the
// model output.
const FallbackText = "I'm having trouble understanding right now, but I'm here for you!"

var (
	arrayRe     = regexp.MustCompile(`\[[\s\S]*\]`)
	objectRe    = regexp.MustCompile(`\{[\s\S]*?\}`)
	textFieldRe = regexp.MustCompile(`"text":\s*"([^"]+)"`)
)

// Parse recovers an utterance list from raw model output. It works
// down a ladder: direct array, {"messages": [...]} wrapper, single
// object, bracketed array extraction, individual object extraction,
// and finally a generic fallback utterance carrying the raw text.
// It never returns an empty slice.
func Parse(raw string) []core.Utterance {
	trimmed := strings.TrimSpace(raw)

	if utterances, ok := parseDirect(trimmed); ok {
		return cleanAll(utterances)
	}

	log.Printf("[REPLY] Response is not clean JSON, attempting extraction")

	if match := arrayRe.FindString(trimmed); match != "" {
		var utterances []core.Utterance
		if err := json.Unmarshal([]byte(match), &utterances); err == nil && len(utterances) > 0 {
			return cleanAll(utterances)
		}
	}

	if matches := objectRe.FindAllString(trimmed, -1); len(matches) > 0 {
		utterances := make([]core.Utterance, 0, len(matches))
		for _, objStr := range matches {
			var u core.Utterance
			if err := json.Unmarshal([]byte(objStr), &u); err != nil {
				u = core.Utterance{
					Text:             objStr,
					FacialExpression: "default",
					Animation:        "Talking_0",
				}
			}
			utterances = append(utterances, u)
		}
		return cleanAll(utterances)
	}

	text := trimmed
	if text == "" {
		text = FallbackText
	}
	return []core.Utterance{{
		Text:             text,
		FacialExpression: "smile",
		Animation:        "Talking_1",
	}}
}

// parseDirect handles well-formed output: an array, a {"messages": ...}
// wrapper, or a bare utterance object.
func parseDirect(raw string) ([]core.Utterance, bool) {
	var utterances []core.Utterance
	if err := json.Unmarshal([]byte(raw), &utterances); err == nil && len(utterances) > 0 {
		return utterances, true
	}

	var wrapper struct {
		Messages []core.Utterance `json:"messages"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapper); err == nil && len(wrapper.Messages) > 0 {
		return wrapper.Messages, true
	}

	var single core.Utterance
	if err := json.Unmarshal([]byte(raw), &single); err == nil && single.Text != "" {
		return []core.Utterance{single}, true
	}

	return nil, false
}

func cleanAll(utterances []core.Utterance) []core.Utterance {
	for i := range utterances {
		utterances[i].Text = cleanEmbeddedJSON(utterances[i].Text)
	}
	return utterances
}

// cleanEmbeddedJSON repairs utterances whose text field itself contains
// JSON structure (a common failure mode when the model nests its reply
// format inside a string).
func cleanEmbeddedJSON(text string) string {
	if !strings.Contains(text, `"facialExpression"`) &&
		!strings.Contains(text, `"animation"`) &&
		!strings.Contains(text, `"text"`) {
		return text
	}
	log.Printf("[REPLY] Utterance text contains JSON structure, cleaning up")

	cleaned := text
	trimmed := strings.TrimSpace(cleaned)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var arr []core.Utterance
		var obj core.Utterance
		if err := json.Unmarshal([]byte(trimmed), &arr); err == nil && len(arr) > 0 && arr[0].Text != "" {
			cleaned = arr[0].Text
		} else if err := json.Unmarshal([]byte(trimmed), &obj); err == nil && obj.Text != "" {
			cleaned = obj.Text
		} else if m := textFieldRe.FindStringSubmatch(trimmed); m != nil {
			cleaned = m[1]
		} else {
			// Keep whatever prose precedes the JSON structure
			if idx := strings.IndexAny(trimmed, "{["); idx >= 0 {
				cleaned = strings.TrimSpace(trimmed[:idx])
			}
		}
	}

	cleaned = strings.ReplaceAll(cleaned, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\t", " ")
	cleaned = strings.ReplaceAll(cleaned, `\"`, `"`)
	cleaned = strings.ReplaceAll(cleaned, `\'`, `'`)
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if cleaned == "" {
		return text
	}
	return cleaned
}
