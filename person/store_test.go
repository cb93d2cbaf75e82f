package person_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/identity"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/person"
)

func newPerson(id, name string) *identity.PersonIdentity {
	now := time.Now().UTC()
	return &identity.PersonIdentity{
		CoreIdentity: identity.CoreIdentity{Name: "BITCH", SystemPromptCore: "Core."},
		Role:         identity.Role{ID: "general-assistant", Name: "General Assistant"},
		Presentation: &identity.Presentation{Name: name, PersonalityTraits: map[string]float64{}},
		Metadata: identity.Metadata{
			PersonID:      id,
			Created:       now,
			LastModified:  now,
			RoleID:        "general-assistant",
			PersonalityID: "default",
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai-persons.json")

	store := person.NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("load of missing file should succeed: %v", err)
	}

	p := newPerson("ai_person_01", "Ada")
	if err := store.Set(p.Metadata.PersonID, p); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// A fresh store over the same file sees the person
	reloaded := person.NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	got, err := reloaded.Get("ai_person_01")
	if err != nil {
		t.Fatalf("get after reload failed: %v", err)
	}
	if got.Presentation.Name != "Ada" {
		t.Errorf("round trip lost presentation name: %q", got.Presentation.Name)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := person.NewStore(filepath.Join(t.TempDir(), "p.json"))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	_, err := store.Get("nope")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_LegacyRecordDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")

	// A legacy record: top-level id, no presentation, no timestamps
	legacy := `[{"id":"ai_person_legacy","coreIdentity":{"name":"BITCH","systemPromptCore":"Core."},"role":{"id":"general-assistant","name":"General Assistant"},"presentation":null,"metadata":{"aiPersonId":"","created":"0001-01-01T00:00:00Z","lastModified":"0001-01-01T00:00:00Z","roleId":"general-assistant","personalityId":"default"}}]`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	store := person.NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("legacy record should load: %v", err)
	}

	p, err := store.Get("ai_person_legacy")
	if err != nil {
		t.Fatalf("legacy id should be adopted as person id: %v", err)
	}
	if p.Presentation == nil || p.Presentation.Name != "BITCH" {
		t.Errorf("missing presentation should default to core identity name, got %+v", p.Presentation)
	}
	if p.Presentation.PersonalityTraits == nil {
		t.Error("missing traits should default to empty map")
	}
	if p.Metadata.Created.IsZero() || p.Metadata.LastModified.IsZero() {
		t.Error("missing timestamps should be filled")
	}
}

func TestStore_DeleteLastPersonRejected(t *testing.T) {
	store := person.NewStore(filepath.Join(t.TempDir(), "p.json"))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("a", newPerson("a", "A")); err != nil {
		t.Fatal(err)
	}

	err := store.Delete("a")
	if !core.IsValidation(err) {
		t.Errorf("deleting the last person should be a validation error, got %v", err)
	}
	if !store.Has("a") {
		t.Error("rejected delete must not change state")
	}
}

func TestStore_DeleteBoundPersonRejected(t *testing.T) {
	store := person.NewStore(filepath.Join(t.TempDir(), "p.json"))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("a", newPerson("a", "A")); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("b", newPerson("b", "B")); err != nil {
		t.Fatal(err)
	}

	store.SetBoundChecker(func(id string) bool { return id == "a" })

	if err := store.Delete("a"); !core.IsValidation(err) {
		t.Errorf("deleting a bound person should be a validation error, got %v", err)
	}
	if err := store.Delete("b"); err != nil {
		t.Errorf("deleting an unbound person should succeed: %v", err)
	}
	if store.Has("b") {
		t.Error("deleted person still present")
	}
}

func TestStore_DeleteMissing(t *testing.T) {
	store := person.NewStore(filepath.Join(t.TempDir(), "p.json"))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("a", newPerson("a", "A")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("nope"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AllPreservesInsertionOrder(t *testing.T) {
	store := person.NewStore(filepath.Join(t.TempDir(), "p.json"))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"c", "a", "b"} {
		if err := store.Set(id, newPerson(id, id)); err != nil {
			t.Fatal(err)
		}
	}

	all := store.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 persons, got %d", len(all))
	}
	for i, want := range []string{"c", "a", "b"} {
		if all[i].Metadata.PersonID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, all[i].Metadata.PersonID)
		}
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := person.NewStore(filepath.Join(t.TempDir(), "p.json"))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	original := newPerson("a", "Ada")
	original.Presentation.PersonalityTraits["humor"] = 0.5
	if err := store.Set("a", original); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's record after Set does not reach the store
	original.Presentation.Name = "Changed"
	got, err := store.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Presentation.Name != "Ada" {
		t.Errorf("store aliases the record passed to Set: %q", got.Presentation.Name)
	}

	// Mutating a Get result does not change the store
	got.Presentation.Name = "Mutated"
	got.Presentation.PersonalityTraits["humor"] = 0.9
	again, err := store.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if again.Presentation.Name != "Ada" || again.Presentation.PersonalityTraits["humor"] != 0.5 {
		t.Errorf("store state changed through a Get result: %+v", again.Presentation)
	}

	// Same isolation for All
	store.All()[0].Presentation.Name = "Mutated"
	final, err := store.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if final.Presentation.Name != "Ada" {
		t.Errorf("store state changed through an All result: %q", final.Presentation.Name)
	}
}
