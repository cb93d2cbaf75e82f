package identity_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/identity"
)

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// testCatalog builds a loadable catalog in a temp dir with the default
// role and personality plus a distinctive extra of each.
func testCatalog(t *testing.T) *identity.Catalog {
	t.Helper()
	dir := t.TempDir()

	writeJSON(t, filepath.Join(dir, "core-identity.json"), map[string]interface{}{
		"coreIdentity": map[string]string{
			"name":             "BITCH",
			"systemPromptCore": "You are a helpful digital companion.",
		},
	})

	writeJSON(t, filepath.Join(dir, "roles", "general-assistant.json"), map[string]interface{}{
		"role": map[string]string{
			"id":                   "general-assistant",
			"name":                 "General Assistant",
			"systemPromptAddition": "You help with everyday tasks.",
		},
	})
	writeJSON(t, filepath.Join(dir, "roles", "coding-mentor.json"), map[string]interface{}{
		"role": map[string]string{
			"id":                   "coding-mentor",
			"name":                 "Coding Mentor",
			"systemPromptAddition": "You teach programming.",
		},
	})

	writeJSON(t, filepath.Join(dir, "personalities", "default.json"), map[string]interface{}{
		"presentation": map[string]interface{}{
			"name": "BITCH",
			"personalityTraits": map[string]float64{
				"enthusiasm": 0.5,
				"formality":  0.5,
			},
		},
	})
	writeJSON(t, filepath.Join(dir, "personalities", "enthusiastic.json"), map[string]interface{}{
		"presentation": map[string]interface{}{
			"name": "Spark",
			"personalityTraits": map[string]float64{
				"enthusiasm": 0.95,
				"formality":  0.2,
				"humor":      0.8,
				"empathy":    0.9,
			},
		},
	})

	catalog := identity.NewCatalog(identity.CatalogConfig{
		CoreIdentityPath: filepath.Join(dir, "core-identity.json"),
		RolesDir:         filepath.Join(dir, "roles"),
		PersonalitiesDir: filepath.Join(dir, "personalities"),
	})
	if err := catalog.Load(); err != nil {
		t.Fatalf("catalog load failed: %v", err)
	}
	return catalog
}

func TestCompose_Defaults(t *testing.T) {
	composer := identity.NewComposer(testCatalog(t))

	p, res, err := composer.Compose("", "", "", "")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if res.RoleID != identity.DefaultRoleID || res.PresentationID != identity.DefaultPresentationID {
		t.Errorf("expected default resolution, got %+v", res)
	}
	if res.RoleFellBack || res.PresentationFellBack {
		t.Errorf("empty ids are defaults, not fallbacks: %+v", res)
	}
	if !strings.HasPrefix(p.Metadata.PersonID, "ai_person_") {
		t.Errorf("unexpected person id %q", p.Metadata.PersonID)
	}
	if p.Metadata.PersonID != strings.ToLower(p.Metadata.PersonID) {
		t.Errorf("person id should be lowercase: %q", p.Metadata.PersonID)
	}
	if p.Metadata.Created.IsZero() || p.Metadata.LastModified.IsZero() {
		t.Error("timestamps should be stamped")
	}
}

func TestCompose_FallbackOnUnknownIDs(t *testing.T) {
	composer := identity.NewComposer(testCatalog(t))

	p, res, err := composer.Compose("no-such-role", "no-such-personality", "", "")
	if err != nil {
		t.Fatalf("Compose should fall back, not fail: %v", err)
	}
	if !res.RoleFellBack || !res.PresentationFellBack {
		t.Errorf("expected both fallbacks recorded, got %+v", res)
	}
	if p.Metadata.RoleID != identity.DefaultRoleID {
		t.Errorf("metadata should carry the resolved role id, got %q", p.Metadata.RoleID)
	}
	if p.Metadata.PersonalityID != identity.DefaultPresentationID {
		t.Errorf("metadata should carry the resolved personality id, got %q", p.Metadata.PersonalityID)
	}
}

func TestCompose_NameOverrideAndIsolation(t *testing.T) {
	catalog := testCatalog(t)
	composer := identity.NewComposer(catalog)

	p1, _, err := composer.Compose("", "enthusiastic", "", "Ada")
	if err != nil {
		t.Fatal(err)
	}
	if p1.Presentation.Name != "Ada" {
		t.Errorf("name override not applied: %q", p1.Presentation.Name)
	}

	// Mutating a composed presentation must not leak into the catalog
	p1.Presentation.PersonalityTraits["enthusiasm"] = 0.0

	p2, _, err := composer.Compose("", "enthusiastic", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if p2.Presentation.Name != "Spark" {
		t.Errorf("catalog template name was mutated: %q", p2.Presentation.Name)
	}
	if p2.Presentation.PersonalityTraits["enthusiasm"] != 0.95 {
		t.Errorf("catalog template traits were mutated: %v", p2.Presentation.PersonalityTraits)
	}
}

func TestUpdate_RequiresPersonID(t *testing.T) {
	composer := identity.NewComposer(testCatalog(t))
	if _, _, err := composer.Update("", "coding-mentor", "default", ""); err == nil {
		t.Error("Update with empty person id should fail")
	}
}

func TestUpdate_PreservesID(t *testing.T) {
	composer := identity.NewComposer(testCatalog(t))

	p, _, err := composer.Compose("", "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	updated, _, err := composer.Update(p.Metadata.PersonID, "coding-mentor", "enthusiastic", "")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Metadata.PersonID != p.Metadata.PersonID {
		t.Errorf("update changed person id: %q vs %q", updated.Metadata.PersonID, p.Metadata.PersonID)
	}
	if updated.Metadata.RoleID != "coding-mentor" {
		t.Errorf("update did not apply role: %q", updated.Metadata.RoleID)
	}
}

func TestRenderDirective_Deterministic(t *testing.T) {
	composer := identity.NewComposer(testCatalog(t))
	p, _, err := composer.Compose("coding-mentor", "enthusiastic", "", "")
	if err != nil {
		t.Fatal(err)
	}

	first := identity.RenderDirective(p)
	for i := 0; i < 5; i++ {
		if got := identity.RenderDirective(p); got != first {
			t.Fatalf("directive rendering is not deterministic on pass %d", i)
		}
	}
}

func TestRenderDirective_TraitBands(t *testing.T) {
	p := &identity.PersonIdentity{
		CoreIdentity: identity.CoreIdentity{Name: "BITCH", SystemPromptCore: "Core."},
		Role:         identity.Role{ID: "general-assistant", Name: "General Assistant"},
		Presentation: &identity.Presentation{
			Name: "BITCH",
			PersonalityTraits: map[string]float64{
				"enthusiasm": 0.9,
				"formality":  0.1,
				"humor":      0.5,
				"empathy":    0.8,
			},
		},
	}

	directive := identity.RenderDirective(p)

	for _, want := range []string{
		"You express enthusiasm and energy in your responses.",
		"You use casual, relaxed language.",
		"You show high empathy and emotional understanding.",
	} {
		if !strings.Contains(directive, want) {
			t.Errorf("directive missing clause %q", want)
		}
	}
	if strings.Contains(directive, "humor and wit") {
		t.Error("mid-range humor should not produce a clause")
	}

	// Boundary values produce no clause: thresholds are strict
	p.Presentation.PersonalityTraits = map[string]float64{
		"enthusiasm": 0.7,
		"formality":  0.3,
	}
	directive = identity.RenderDirective(p)
	if strings.Contains(directive, "enthusiasm and energy") || strings.Contains(directive, "calm, measured") {
		t.Error("enthusiasm exactly at a threshold should produce no clause")
	}
	if strings.Contains(directive, "formal, professional") || strings.Contains(directive, "casual, relaxed") {
		t.Error("formality exactly at a threshold should produce no clause")
	}
}

func TestRenderDirective_AlternateName(t *testing.T) {
	p := &identity.PersonIdentity{
		CoreIdentity: identity.CoreIdentity{Name: "BITCH", SystemPromptCore: "Core."},
		Role:         identity.Role{ID: "general-assistant"},
		Presentation: &identity.Presentation{Name: "Ada"},
	}
	directive := identity.RenderDirective(p)
	if !strings.Contains(directive, `you may also be referred to as "Ada"`) {
		t.Errorf("alternate name clause missing:\n%s", directive)
	}

	p.Presentation.Name = "BITCH"
	directive = identity.RenderDirective(p)
	if strings.Contains(directive, "referred to as") {
		t.Error("matching names should not produce the alternate name clause")
	}
}

func TestCatalog_MissingDirsAreTolerated(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "core-identity.json"), map[string]interface{}{
		"coreIdentity": map[string]string{
			"name":             "BITCH",
			"systemPromptCore": "Core.",
		},
	})

	catalog := identity.NewCatalog(identity.CatalogConfig{
		CoreIdentityPath: filepath.Join(dir, "core-identity.json"),
		RolesDir:         filepath.Join(dir, "no-roles"),
		PersonalitiesDir: filepath.Join(dir, "no-personalities"),
	})
	if err := catalog.Load(); err != nil {
		t.Fatalf("missing role/personality dirs should not be fatal: %v", err)
	}
	if len(catalog.Roles()) != 0 || len(catalog.Presentations()) != 0 {
		t.Error("expected empty catalogs")
	}
}

func TestCatalog_MissingCoreIdentityIsFatal(t *testing.T) {
	dir := t.TempDir()
	catalog := identity.NewCatalog(identity.CatalogConfig{
		CoreIdentityPath: filepath.Join(dir, "core-identity.json"),
		RolesDir:         filepath.Join(dir, "roles"),
		PersonalitiesDir: filepath.Join(dir, "personalities"),
	})
	if err := catalog.Load(); err == nil {
		t.Fatal("missing core identity should fail catalog load")
	}
}
