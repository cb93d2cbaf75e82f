package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
)

// CatalogConfig locates the identity definition files.
type CatalogConfig struct {
	// CoreIdentityPath is the JSON file holding the core identity.
	// Required: a missing or malformed file fails Load.
	CoreIdentityPath string

	// RolesDir and PersonalitiesDir hold one JSON file per entry.
	// A missing or unreadable directory yields an empty catalog with a
	// warning, not an error.
	RolesDir         string
	PersonalitiesDir string
}

// Catalog holds the loaded core identity and the enumerable role and
// presentation templates. Entries are never mutated in place after load;
// composing a Person copies presentation data.
type Catalog struct {
	cfg CatalogConfig

	mu              sync.RWMutex
	coreIdentity    CoreIdentity
	roles           map[string]*Role
	roleOrder       []string
	presentations   map[string]*Presentation
	presentationIDs []string
}

// NewCatalog creates an empty catalog. Call Load before use.
func NewCatalog(cfg CatalogConfig) *Catalog {
	return &Catalog{cfg: cfg}
}

type coreIdentityFile struct {
	CoreIdentity CoreIdentity `json:"coreIdentity"`
}

type roleFile struct {
	Role Role `json:"role"`
}

type presentationFile struct {
	Presentation Presentation `json:"presentation"`
}

// Load reads the core identity and enumerates all role and presentation
// definitions. The core identity is required; role and presentation
// sources degrade to empty catalogs with a logged warning.
func (c *Catalog) Load() error {
	coreID, err := loadCoreIdentity(c.cfg.CoreIdentityPath)
	if err != nil {
		return &core.ConfigurationError{Component: "identity catalog", Err: err}
	}

	roles, roleOrder := loadRoles(c.cfg.RolesDir)
	presentations, presentationIDs := loadPresentations(c.cfg.PersonalitiesDir)

	c.mu.Lock()
	c.coreIdentity = coreID
	c.roles = roles
	c.roleOrder = roleOrder
	c.presentations = presentations
	c.presentationIDs = presentationIDs
	c.mu.Unlock()

	log.Printf("[CATALOG] Loaded core identity %q, %d roles, %d personalities",
		coreID.Name, len(roleOrder), len(presentationIDs))
	return nil
}

func loadCoreIdentity(path string) (CoreIdentity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CoreIdentity{}, fmt.Errorf("read core identity: %w", err)
	}
	var f coreIdentityFile
	if err := json.Unmarshal(data, &f); err != nil {
		return CoreIdentity{}, fmt.Errorf("parse core identity: %w", err)
	}
	if f.CoreIdentity.Name == "" || f.CoreIdentity.SystemPromptCore == "" {
		return CoreIdentity{}, fmt.Errorf("core identity at %s is missing name or systemPromptCore", path)
	}
	return f.CoreIdentity, nil
}

func loadRoles(dir string) (map[string]*Role, []string) {
	roles := make(map[string]*Role)
	var order []string

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("[CATALOG] Could not load roles directory: %v", err)
		return roles, order
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[CATALOG] Skipping role file %s: %v", entry.Name(), err)
			continue
		}
		var f roleFile
		if err := json.Unmarshal(data, &f); err != nil {
			log.Printf("[CATALOG] Skipping role file %s: %v", entry.Name(), err)
			continue
		}
		if f.Role.ID == "" {
			continue
		}
		role := f.Role
		if _, dup := roles[role.ID]; !dup {
			order = append(order, role.ID)
		}
		roles[role.ID] = &role
		log.Printf("[CATALOG] Loaded role: %s (%s)", role.Name, role.ID)
	}
	return roles, order
}

func loadPresentations(dir string) (map[string]*Presentation, []string) {
	presentations := make(map[string]*Presentation)
	var order []string

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("[CATALOG] Could not load personalities directory: %v", err)
		return presentations, order
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[CATALOG] Skipping personality file %s: %v", entry.Name(), err)
			continue
		}
		var f presentationFile
		if err := json.Unmarshal(data, &f); err != nil {
			log.Printf("[CATALOG] Skipping personality file %s: %v", entry.Name(), err)
			continue
		}
		if f.Presentation.Name == "" {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		p := f.Presentation
		if _, dup := presentations[id]; !dup {
			order = append(order, id)
		}
		presentations[id] = &p
		log.Printf("[CATALOG] Loaded personality: %s (%s)", p.Name, id)
	}
	return presentations, order
}

// CoreIdentity returns the loaded core identity.
func (c *Catalog) CoreIdentity() CoreIdentity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.coreIdentity
}

// Roles returns all roles in insertion order from the load pass.
// The order is not guaranteed stable across reloads.
func (c *Catalog) Roles() []Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Role, 0, len(c.roleOrder))
	for _, id := range c.roleOrder {
		out = append(out, *c.roles[id])
	}
	return out
}

// PresentationEntry pairs a presentation template with its file-derived id.
type PresentationEntry struct {
	ID string `json:"id"`
	Presentation
}

// Presentations returns all presentation templates with their ids, in
// insertion order from the load pass.
func (c *Catalog) Presentations() []PresentationEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]PresentationEntry, 0, len(c.presentationIDs))
	for _, id := range c.presentationIDs {
		out = append(out, PresentationEntry{ID: id, Presentation: *c.presentations[id]})
	}
	return out
}

// Role looks up a role by id.
func (c *Catalog) Role(id string) (Role, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.roles[id]
	if !ok {
		return Role{}, false
	}
	return *r, true
}

// Presentation looks up a presentation template by id. The returned value
// is a deep copy; callers may mutate it freely.
func (c *Catalog) Presentation(id string) (*Presentation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.presentations[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Watch reloads the catalog whenever the role or personality directories
// change, until ctx is cancelled. Reload failures keep the previous
// catalog and are logged.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range []string{c.cfg.RolesDir, c.cfg.PersonalitiesDir} {
		if err := watcher.Add(dir); err != nil {
			log.Printf("[CATALOG] Not watching %s: %v", dir, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Printf("[CATALOG] Change detected (%s), reloading", event.Name)
			if err := c.Load(); err != nil {
				log.Printf("[CATALOG] Reload failed, keeping previous catalog: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[CATALOG] Watch error: %v", err)
		}
	}
}
