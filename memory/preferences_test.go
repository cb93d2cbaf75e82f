package memory_test

import (
	"testing"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/memory"
)

func userMessages(contents ...string) []core.Message {
	msgs := make([]core.Message, len(contents))
	for i, c := range contents {
		msgs[i] = core.Message{Role: core.RoleUser, Content: c}
	}
	return msgs
}

func TestExtractPreferences_CommunicationStyle(t *testing.T) {
	prefs := memory.ExtractPreferences(userMessages(
		"Could you please help me with this professional report?",
		"Kindly review the draft.",
	))
	if prefs.CommunicationStyle != "formal" {
		t.Errorf("expected formal, got %q", prefs.CommunicationStyle)
	}

	prefs = memory.ExtractPreferences(userMessages("hey, gonna need something cool, lol"))
	if prefs.CommunicationStyle != "casual" {
		t.Errorf("expected casual, got %q", prefs.CommunicationStyle)
	}
}

func TestExtractPreferences_TieYieldsNoSignal(t *testing.T) {
	prefs := memory.ExtractPreferences(userMessages("hey, could you help?"))
	if prefs.CommunicationStyle != "" {
		t.Errorf("equal keyword counts should yield no style, got %q", prefs.CommunicationStyle)
	}
}

func TestExtractPreferences_ResponseLength(t *testing.T) {
	prefs := memory.ExtractPreferences(userMessages("give me a quick summary, keep it brief"))
	if prefs.ResponseLength != "short" {
		t.Errorf("expected short, got %q", prefs.ResponseLength)
	}

	prefs = memory.ExtractPreferences(userMessages("please explain in detail and elaborate"))
	if prefs.ResponseLength != "detailed" {
		t.Errorf("expected detailed, got %q", prefs.ResponseLength)
	}
}

func TestExtractPreferences_Interests(t *testing.T) {
	prefs := memory.ExtractPreferences(userMessages(
		"I spend my evenings programming and reading about astronomy",
	))
	want := map[string]bool{"technology": false, "science": false}
	for _, interest := range prefs.Interests {
		if _, ok := want[interest]; ok {
			want[interest] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected interest %q in %v", name, prefs.Interests)
		}
	}
}

func TestExtractPreferences_IgnoresAssistantMessages(t *testing.T) {
	prefs := memory.ExtractPreferences([]core.Message{
		{Role: core.RoleAssistant, Content: "Would you kindly like a detailed, professional explanation of programming?"},
	})
	if prefs.CommunicationStyle != "" || prefs.ResponseLength != "" || len(prefs.Interests) != 0 {
		t.Errorf("assistant messages must not contribute signal: %+v", prefs)
	}
}

func TestExtractRealtimePreferences(t *testing.T) {
	updates := memory.ExtractRealtimePreferences("Please be more formal and keep it short")
	if updates["communicationStyle"] != "formal" {
		t.Errorf("expected formal, got %v", updates["communicationStyle"])
	}
	if updates["responseLength"] != "short" {
		t.Errorf("expected short, got %v", updates["responseLength"])
	}

	updates = memory.ExtractRealtimePreferences("tell me about dogs")
	if len(updates) != 0 {
		t.Errorf("no imperative phrasing should yield no updates, got %v", updates)
	}
}
