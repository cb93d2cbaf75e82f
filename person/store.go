// Package person provides the durable, keyed collection of AI Person
// identities. The collection is fully materialized in memory with
// write-through JSON persistence.
package person

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/identity"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/storage"
)

// BoundChecker reports whether any active session is bound to the given
// person. The session manager registers itself here so Delete can reject
// removing a Person that is still in use.
type BoundChecker func(personID string) bool

// Store is the durable person collection, keyed by person id.
type Store struct {
	path string

	mu      sync.RWMutex
	persons map[string]*identity.PersonIdentity
	order   []string

	boundMu sync.RWMutex
	bound   BoundChecker
}

// NewStore creates a store backed by the JSON collection at path.
// Call Load before use.
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		persons: make(map[string]*identity.PersonIdentity),
	}
}

// SetBoundChecker installs the active-session check used by Delete.
func (s *Store) SetBoundChecker(fn BoundChecker) {
	s.boundMu.Lock()
	s.bound = fn
	s.boundMu.Unlock()
}

// Load reads the person collection from disk. A missing file is an empty
// collection. Each record is keyed by metadata.aiPersonId, falling back
// to the legacy top-level id field; records missing optional fields are
// defaulted, not rejected.
func (s *Store) Load() error {
	var records []*identity.PersonIdentity
	ok, err := storage.Load(s.path, &records)
	if err != nil {
		return fmt.Errorf("load persons: %w", err)
	}
	if !ok {
		log.Printf("[PERSON] No existing person data found, starting fresh")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.persons = make(map[string]*identity.PersonIdentity, len(records))
	s.order = s.order[:0]
	for _, rec := range records {
		if rec == nil {
			continue
		}
		applyDefaults(rec)
		id := rec.Metadata.PersonID
		if id == "" {
			continue
		}
		if _, dup := s.persons[id]; !dup {
			s.order = append(s.order, id)
		}
		s.persons[id] = rec
	}
	log.Printf("[PERSON] Loaded %d AI Persons from storage", len(s.persons))
	return nil
}

// applyDefaults fills fields that older stored records may lack.
func applyDefaults(rec *identity.PersonIdentity) {
	if rec.Metadata.PersonID == "" {
		rec.Metadata.PersonID = rec.LegacyID
	}
	if rec.Presentation == nil {
		rec.Presentation = &identity.Presentation{Name: rec.CoreIdentity.Name}
	}
	if rec.Presentation.PersonalityTraits == nil {
		rec.Presentation.PersonalityTraits = map[string]float64{}
	}
	if rec.Metadata.Created.IsZero() {
		rec.Metadata.Created = time.Now().UTC()
	}
	if rec.Metadata.LastModified.IsZero() {
		rec.Metadata.LastModified = rec.Metadata.Created
	}
}

// clonePerson deep-copies a record so store internals never alias
// caller-held identities.
func clonePerson(p *identity.PersonIdentity) *identity.PersonIdentity {
	c := *p
	if p.Presentation != nil {
		c.Presentation = p.Presentation.Clone()
	}
	return &c
}

// Get returns a copy of the Person with the given id. Mutating the
// result does not change the store; persist changes with Set.
func (s *Store) Get(id string) (*identity.PersonIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[id]
	if !ok {
		return nil, fmt.Errorf("person %s: %w", id, core.ErrNotFound)
	}
	return clonePerson(p), nil
}

// Has reports whether a Person with the given id exists.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.persons[id]
	return ok
}

// All returns a copy of every Person in insertion order.
func (s *Store) All() []*identity.PersonIdentity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*identity.PersonIdentity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clonePerson(s.persons[id]))
	}
	return out
}

// Len returns the number of stored Persons.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.persons)
}

// Set upserts a Person and persists the collection. On persistence
// failure the in-memory mutation is kept, the write is retried once, and
// a PersistenceError is returned if the retry also fails: the caller must
// treat the operation as maybe-applied.
func (s *Store) Set(id string, p *identity.PersonIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.persons[id]; !exists {
		s.order = append(s.order, id)
	}
	s.persons[id] = clonePerson(p)
	return s.persistLocked()
}

// CanDelete reports whether Delete would be accepted for the Person,
// without changing any state. Callers cascading memory deletion check
// this first so a rejected delete never destroys memory.
func (s *Store) CanDelete(id string) error {
	s.boundMu.RLock()
	bound := s.bound
	s.boundMu.RUnlock()
	if bound != nil && bound(id) {
		return &core.ValidationError{Reason: fmt.Sprintf("person %s is bound to an active session", id)}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deletableLocked(id)
}

func (s *Store) deletableLocked(id string) error {
	if _, ok := s.persons[id]; !ok {
		return fmt.Errorf("person %s: %w", id, core.ErrNotFound)
	}
	if len(s.persons) == 1 {
		return &core.ValidationError{Reason: "cannot delete the last remaining person"}
	}
	return nil
}

// Delete removes a Person and persists the collection. Removing the last
// remaining Person or one still bound to an active session is rejected
// with a ValidationError and no state change. Callers are expected to
// cascade memory deletion before calling Delete.
func (s *Store) Delete(id string) error {
	s.boundMu.RLock()
	bound := s.bound
	s.boundMu.RUnlock()
	if bound != nil && bound(id) {
		return &core.ValidationError{Reason: fmt.Sprintf("person %s is bound to an active session", id)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deletableLocked(id); err != nil {
		return err
	}
	delete(s.persons, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s.persistLocked()
}

// persistLocked writes the whole collection, retrying once on failure.
// Callers must hold s.mu: collection writes are serialized so concurrent
// read-modify-write cycles never interleave.
func (s *Store) persistLocked() error {
	records := make([]*identity.PersonIdentity, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.persons[id])
	}

	err := storage.Save(s.path, records)
	if err != nil {
		log.Printf("[PERSON] Save failed, retrying once: %v", err)
		err = storage.Save(s.path, records)
	}
	if err != nil {
		return &core.PersistenceError{Collection: "persons", Err: err}
	}
	return nil
}
