package reply_test

import (
	"strings"
	"testing"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/reply"
)

func TestParse_DirectArray(t *testing.T) {
	raw := `[{"text":"Hello!","facialExpression":"smile","animation":"Talking_1"}]`
	utterances := reply.Parse(raw)
	if len(utterances) != 1 {
		t.Fatalf("expected 1 utterance, got %d", len(utterances))
	}
	u := utterances[0]
	if u.Text != "Hello!" || u.FacialExpression != "smile" || u.Animation != "Talking_1" {
		t.Errorf("unexpected utterance: %+v", u)
	}
}

func TestParse_MessagesWrapper(t *testing.T) {
	raw := `{"messages":[{"text":"One"},{"text":"Two"}]}`
	utterances := reply.Parse(raw)
	if len(utterances) != 2 || utterances[0].Text != "One" || utterances[1].Text != "Two" {
		t.Errorf("wrapper unwrap failed: %+v", utterances)
	}
}

func TestParse_SingleObject(t *testing.T) {
	raw := `{"text":"Just me","facialExpression":"default","animation":"Idle"}`
	utterances := reply.Parse(raw)
	if len(utterances) != 1 || utterances[0].Text != "Just me" {
		t.Errorf("single object wrap failed: %+v", utterances)
	}
}

func TestParse_ArrayEmbeddedInProse(t *testing.T) {
	raw := "Sure, here is my response:\n[{\"text\":\"Extracted\",\"facialExpression\":\"smile\",\"animation\":\"Talking_1\"}]\nHope that helps!"
	utterances := reply.Parse(raw)
	if len(utterances) != 1 || utterances[0].Text != "Extracted" {
		t.Errorf("array extraction failed: %+v", utterances)
	}
}

func TestParse_IndividualObjects(t *testing.T) {
	raw := "first {\"text\":\"A\"} then {\"text\":\"B\"} done"
	utterances := reply.Parse(raw)
	if len(utterances) != 2 || utterances[0].Text != "A" || utterances[1].Text != "B" {
		t.Errorf("object extraction failed: %+v", utterances)
	}
}

func TestParse_PlainProseFallback(t *testing.T) {
	utterances := reply.Parse("I could not produce JSON today.")
	if len(utterances) != 1 {
		t.Fatalf("expected 1 fallback utterance, got %d", len(utterances))
	}
	u := utterances[0]
	if u.Text != "I could not produce JSON today." {
		t.Errorf("fallback should carry the raw text, got %q", u.Text)
	}
	if u.FacialExpression != "smile" || u.Animation != "Talking_1" {
		t.Errorf("fallback presentation mismatch: %+v", u)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	utterances := reply.Parse("")
	if len(utterances) != 1 {
		t.Fatalf("Parse must never return an empty slice")
	}
	if utterances[0].Text != reply.FallbackText {
		t.Errorf("empty input should yield the fallback text, got %q", utterances[0].Text)
	}
}

func TestParse_CleansEmbeddedJSONText(t *testing.T) {
	raw := `[{"text":"{\"text\": \"The real reply\", \"facialExpression\": \"smile\"}","facialExpression":"smile","animation":"Talking_1"}]`
	utterances := reply.Parse(raw)
	if len(utterances) != 1 {
		t.Fatalf("expected 1 utterance, got %d", len(utterances))
	}
	if utterances[0].Text != "The real reply" {
		t.Errorf("embedded JSON should be unwrapped, got %q", utterances[0].Text)
	}
}

func TestSanitizeForSpeech_Contractions(t *testing.T) {
	cases := map[string]string{
		"I'm sure you're right": "I am sure you are right",
		"Don't worry, it's fine": "do not worry, it is fine",
		"We'll see what they've done": "we will see what they have done",
		"can't and won't": "cannot and will not",
	}
	for in, want := range cases {
		if got := reply.SanitizeForSpeech(in); got != want {
			t.Errorf("SanitizeForSpeech(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeForSpeech_TypographicPunctuation(t *testing.T) {
	got := reply.SanitizeForSpeech("Well… the “best” plan — honestly – works")
	if strings.ContainsAny(got, "…“”—–") {
		t.Errorf("typographic punctuation should be flattened: %q", got)
	}
	if !strings.Contains(got, "...") {
		t.Errorf("ellipsis should become three dots: %q", got)
	}
}

func TestSanitizeForSpeech_CollapsesWhitespace(t *testing.T) {
	if got := reply.SanitizeForSpeech("  too \n many\t spaces  "); got != "too many spaces" {
		t.Errorf("whitespace not collapsed: %q", got)
	}
}
