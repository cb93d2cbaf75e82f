package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/storage"
)

// Config holds Store configuration.
type Config struct {
	// LongTermPath and FactsPath locate the durable JSON collections.
	LongTermPath string
	FactsPath    string

	// ShortTermCap bounds each session buffer (drop oldest).
	ShortTermCap int

	// ConversationCap bounds long-term summaries per Person (evict oldest).
	ConversationCap int
}

// DefaultShortTermCap and DefaultConversationCap are the buffer bounds
// used when Config leaves them zero.
const (
	DefaultShortTermCap    = 40
	DefaultConversationCap = 100
)

// Option configures the store.
type Option func(*Store)

// WithFactIndex attaches a semantic fact index. Index failures are
// logged and never fail the owning operation.
func WithFactIndex(idx FactIndex) Option {
	return func(s *Store) { s.index = idx }
}

// Store owns all three memory sub-collections: short-term session
// buffers, long-term per-Person records, and per-Person fact lists.
//
// A single store-wide lock serializes every read-modify-write-persist
// sequence, so concurrent turns for the same Person cannot interleave a
// collection rewrite.
type Store struct {
	cfg   Config
	index FactIndex

	mu        sync.RWMutex
	shortTerm map[string]*ShortTerm
	longTerm  map[string]*LongTerm
	facts     map[string][]Fact
}

// NewStore creates a memory store. Call Load before use.
func NewStore(cfg Config, opts ...Option) *Store {
	if cfg.ShortTermCap <= 0 {
		cfg.ShortTermCap = DefaultShortTermCap
	}
	if cfg.ConversationCap <= 0 {
		cfg.ConversationCap = DefaultConversationCap
	}
	s := &Store{
		cfg:       cfg,
		shortTerm: make(map[string]*ShortTerm),
		longTerm:  make(map[string]*LongTerm),
		facts:     make(map[string][]Fact),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the durable collections. Missing files are empty
// collections, not errors. Short-term memory is never loaded: it does
// not survive the process.
func (s *Store) Load() error {
	longTerm := make(map[string]*LongTerm)
	if ok, err := storage.Load(s.cfg.LongTermPath, &longTerm); err != nil {
		return fmt.Errorf("load long-term memories: %w", err)
	} else if !ok {
		log.Printf("[MEMORY] No existing long-term memories found")
	}

	facts := make(map[string][]Fact)
	if ok, err := storage.Load(s.cfg.FactsPath, &facts); err != nil {
		return fmt.Errorf("load facts: %w", err)
	} else if !ok {
		log.Printf("[MEMORY] No existing facts found")
	}

	s.mu.Lock()
	s.longTerm = longTerm
	s.facts = facts
	s.mu.Unlock()

	log.Printf("[MEMORY] Loaded long-term memories for %d persons, facts for %d persons",
		len(longTerm), len(facts))
	return nil
}

// --- Short-term memory ---

// getShortTermLocked lazily allocates a session buffer. Caller holds s.mu.
func (s *Store) getShortTermLocked(sessionID string) *ShortTerm {
	st, ok := s.shortTerm[sessionID]
	if !ok {
		st = &ShortTerm{CreatedAt: time.Now().UTC()}
		s.shortTerm[sessionID] = st
	}
	return st
}

// Append pushes a timestamped entry onto a session buffer, trimming to
// the most recent ShortTermCap entries.
func (s *Store) Append(sessionID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.getShortTermLocked(sessionID)
	st.Messages = append(st.Messages, core.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if n := len(st.Messages); n > s.cfg.ShortTermCap {
		st.Messages = append(st.Messages[:0:0], st.Messages[n-s.cfg.ShortTermCap:]...)
	}
}

// Bind records which Person a session buffer is attributed to, so
// DeleteAll can cascade to bound sessions.
func (s *Store) Bind(sessionID, personID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getShortTermLocked(sessionID).PersonID = personID
}

// Messages returns a copy of a session's buffered messages.
func (s *Store) Messages(sessionID string) []core.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.shortTerm[sessionID]
	if !ok {
		return nil
	}
	out := make([]core.Message, len(st.Messages))
	copy(out, st.Messages)
	return out
}

// ClearShortTerm discards a session buffer. Clearing an absent session
// is a no-op.
func (s *Store) ClearShortTerm(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.shortTerm, sessionID)
}

// --- Long-term memory ---

// getLongTermLocked lazily allocates a Person's long-term record.
// Caller holds s.mu.
func (s *Store) getLongTermLocked(personID string) *LongTerm {
	lt, ok := s.longTerm[personID]
	if !ok {
		lt = &LongTerm{
			Preferences:   map[string]interface{}{},
			Relationships: map[string]interface{}{},
			CreatedAt:     time.Now().UTC(),
		}
		s.longTerm[personID] = lt
	}
	if lt.Preferences == nil {
		lt.Preferences = map[string]interface{}{}
	}
	if lt.Relationships == nil {
		lt.Relationships = map[string]interface{}{}
	}
	return lt
}

// summarize builds the heuristic conversation summary: up to 10 unique
// lowercase tokens longer than 4 characters from user messages, plus
// truncated first/last previews. Deterministic for identical input.
func summarize(sessionID string, messages []core.Message) ConversationSummary {
	summary := ConversationSummary{
		SessionID:    sessionID,
		MessageCount: len(messages),
		Timestamp:    time.Now().UTC(),
	}
	if len(messages) == 0 {
		return summary
	}

	var userParts []string
	for _, m := range messages {
		if m.Role == core.RoleUser {
			userParts = append(userParts, m.Content)
		}
	}
	seen := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(strings.Join(userParts, " "))) {
		if len(word) <= 4 || seen[word] {
			continue
		}
		seen[word] = true
		summary.Topics = append(summary.Topics, word)
		if len(summary.Topics) == 10 {
			break
		}
	}

	summary.FirstMessage = truncateRunes(messages[0].Content, 100)
	summary.LastMessage = truncateRunes(messages[len(messages)-1].Content, 100)
	return summary
}

// Consolidate folds a session's short-term buffer into a Person's
// long-term memory: summary appended (evicting beyond ConversationCap),
// facts and preferences extracted and merged, durable collections
// written. Callers must not consolidate the same buffer twice without an
// intervening append, or conversation counts will double.
func (s *Store) Consolidate(ctx context.Context, sessionID, personID string) error {
	s.mu.Lock()

	var messages []core.Message
	if st, ok := s.shortTerm[sessionID]; ok {
		messages = append(messages, st.Messages...)
	}

	lt := s.getLongTermLocked(personID)
	lt.Conversations = append(lt.Conversations, summarize(sessionID, messages))
	if n := len(lt.Conversations); n > s.cfg.ConversationCap {
		lt.Conversations = append(lt.Conversations[:0:0], lt.Conversations[n-s.cfg.ConversationCap:]...)
	}

	// Extract and merge facts from user messages.
	var added []Fact
	factsChanged := false
	for _, m := range messages {
		if m.Role != core.RoleUser {
			continue
		}
		for _, candidate := range ExtractFacts(m.Content) {
			if s.insertFactLocked(personID, candidate) {
				factsChanged = true
				added = append(added, candidate)
			}
		}
	}

	// Extract and merge preferences.
	mergePreferences(lt, ExtractPreferences(messages))

	ltErr := s.persistLongTermLocked()
	var factsErr error
	if factsChanged {
		factsErr = s.persistFactsLocked()
	}
	s.mu.Unlock()

	// Index new facts outside the lock; failures never fail consolidation.
	s.indexFacts(ctx, personID, added)

	log.Printf("[MEMORY] Consolidated session %s into person %s (%d messages, %d new facts)",
		sessionID, personID, len(messages), len(added))

	if ltErr != nil {
		return ltErr
	}
	return factsErr
}

// mergePreferences applies extracted preferences to a long-term record:
// last-write-wins per key, interests accumulate without duplicates.
func mergePreferences(lt *LongTerm, prefs Preferences) {
	changed := false
	if prefs.CommunicationStyle != "" {
		lt.Preferences["communicationStyle"] = prefs.CommunicationStyle
		changed = true
	}
	if prefs.ResponseLength != "" {
		lt.Preferences["responseLength"] = prefs.ResponseLength
		changed = true
	}
	if len(prefs.Interests) > 0 {
		lt.Preferences["interests"] = unionInterests(lt.Preferences["interests"], prefs.Interests)
		changed = true
	}
	if changed {
		lt.Preferences["lastUpdated"] = time.Now().UTC().Format(time.RFC3339)
	}
}

// unionInterests merges new interests into the stored value, which may be
// a []string in memory or []interface{} after a JSON reload.
func unionInterests(existing interface{}, incoming []string) []string {
	var merged []string
	seen := map[string]bool{}
	appendOne := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			merged = append(merged, v)
		}
	}
	switch prev := existing.(type) {
	case []string:
		for _, v := range prev {
			appendOne(v)
		}
	case []interface{}:
		for _, v := range prev {
			if str, ok := v.(string); ok {
				appendOne(str)
			}
		}
	}
	for _, v := range incoming {
		appendOne(v)
	}
	return merged
}

// LongTermSnapshot returns a copy of a Person's long-term record,
// creating it lazily.
func (s *Store) LongTermSnapshot(personID string) LongTerm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLongTerm(s.getLongTermLocked(personID))
}

func copyLongTerm(lt *LongTerm) LongTerm {
	out := LongTerm{
		Conversations: append([]ConversationSummary(nil), lt.Conversations...),
		Preferences:   make(map[string]interface{}, len(lt.Preferences)),
		Relationships: make(map[string]interface{}, len(lt.Relationships)),
		Experiences:   append([]interface{}(nil), lt.Experiences...),
		CreatedAt:     lt.CreatedAt,
	}
	for k, v := range lt.Preferences {
		out.Preferences[k] = v
	}
	for k, v := range lt.Relationships {
		out.Relationships[k] = v
	}
	return out
}

// UpdatePreferences merges explicit preference updates (last-write-wins
// per key) and persists.
func (s *Store) UpdatePreferences(personID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lt := s.getLongTermLocked(personID)
	for k, v := range updates {
		lt.Preferences[k] = v
	}
	lt.Preferences["lastUpdated"] = time.Now().UTC().Format(time.RFC3339)
	return s.persistLongTermLocked()
}

// UpdateRelationships merges relationship updates and persists.
func (s *Store) UpdateRelationships(personID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lt := s.getLongTermLocked(personID)
	for k, v := range updates {
		lt.Relationships[k] = v
	}
	lt.Relationships["lastUpdated"] = time.Now().UTC().Format(time.RFC3339)
	return s.persistLongTermLocked()
}

// --- Facts ---

// insertFactLocked enforces the no-exact-duplicate invariant. Caller
// holds s.mu. Returns whether the fact was inserted.
func (s *Store) insertFactLocked(personID string, fact Fact) bool {
	for _, existing := range s.facts[personID] {
		if existing.Text == fact.Text {
			return false
		}
	}
	fact.AddedAt = time.Now().UTC()
	s.facts[personID] = append(s.facts[personID], fact)
	return true
}

// AddFact records an explicit fact (confidence 1.0) for a Person. Adding
// an exact duplicate is a no-op. Persists only on change.
func (s *Store) AddFact(ctx context.Context, personID, text, category string) (bool, error) {
	if category == "" {
		category = "general"
	}
	fact := Fact{Text: text, Category: category, Confidence: 1.0}

	s.mu.Lock()
	inserted := s.insertFactLocked(personID, fact)
	var err error
	if inserted {
		err = s.persistFactsLocked()
	}
	s.mu.Unlock()

	if inserted {
		log.Printf("[MEMORY] Added fact for person %s: %s", personID, text)
		s.indexFacts(ctx, personID, []Fact{fact})
	}
	return inserted, err
}

// SearchFacts filters a Person's facts by case-insensitive substring
// query and/or exact category; both predicates are optional and
// AND-combined.
func (s *Store) SearchFacts(personID, query, category string) []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loweredQuery := strings.ToLower(query)
	var out []Fact
	for _, f := range s.facts[personID] {
		if category != "" && f.Category != category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(f.Text), loweredQuery) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// SearchFactsSemantic returns facts ranked by vector similarity to
// query when a fact index is attached, falling back to substring search
// otherwise.
func (s *Store) SearchFactsSemantic(ctx context.Context, personID, query string, limit int) ([]Fact, error) {
	if s.index == nil {
		facts := s.SearchFacts(personID, query, "")
		if len(facts) > limit {
			facts = facts[:limit]
		}
		return facts, nil
	}

	texts, err := s.index.Query(ctx, personID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query fact index: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	byText := make(map[string]Fact, len(s.facts[personID]))
	for _, f := range s.facts[personID] {
		byText[f.Text] = f
	}
	var out []Fact
	for _, text := range texts {
		if f, ok := byText[text]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// indexFacts adds facts to the semantic index, best-effort.
func (s *Store) indexFacts(ctx context.Context, personID string, facts []Fact) {
	if s.index == nil {
		return
	}
	for _, f := range facts {
		if err := s.index.Add(ctx, personID, f); err != nil {
			log.Printf("[MEMORY] Failed to index fact: %v", err)
		}
	}
}

// --- Context assembly ---

// RelevantContext assembles memory context for a conversational turn:
// the 5 most recent conversation summaries, up to 5 facts whose text
// contains any lowercase token of currentMessage, and the Person's
// current preferences and relationships.
func (s *Store) RelevantContext(personID, currentMessage string) Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	lt := s.getLongTermLocked(personID)
	ctx := Context{
		Preferences:   map[string]interface{}{},
		Relationships: map[string]interface{}{},
	}
	for k, v := range lt.Preferences {
		ctx.Preferences[k] = v
	}
	for k, v := range lt.Relationships {
		ctx.Relationships[k] = v
	}

	if n := len(lt.Conversations); n > 0 {
		start := n - 5
		if start < 0 {
			start = 0
		}
		ctx.RecentConversations = append([]ConversationSummary(nil), lt.Conversations[start:]...)
	}

	keywords := strings.Fields(strings.ToLower(currentMessage))
	for _, f := range s.facts[personID] {
		lowered := strings.ToLower(f.Text)
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				ctx.RelevantFacts = append(ctx.RelevantFacts, f)
				break
			}
		}
		if len(ctx.RelevantFacts) == 5 {
			break
		}
	}
	return ctx
}

// Enhanced extends RelevantContext with the 10 most recently added
// facts (descending by addedAt), the total fact count, and the last
// addition timestamp.
func (s *Store) Enhanced(personID, currentMessage string) EnhancedContext {
	enhanced := EnhancedContext{Context: s.RelevantContext(personID, currentMessage)}

	s.mu.RLock()
	facts := append([]Fact(nil), s.facts[personID]...)
	s.mu.RUnlock()

	sort.SliceStable(facts, func(i, j int) bool {
		return facts[i].AddedAt.After(facts[j].AddedAt)
	})
	enhanced.TotalFacts = len(facts)
	if len(facts) > 0 {
		enhanced.LastFactAt = facts[0].AddedAt
	}
	if len(facts) > 10 {
		facts = facts[:10]
	}
	enhanced.RecentFacts = facts
	return enhanced
}

// --- Deletion ---

// DeleteAll removes a Person's long-term memory, facts, and any
// short-term sessions bound to it, then persists both durable
// collections. Must be called before the Person is removed from the
// person store so no orphaned memory records remain.
func (s *Store) DeleteAll(ctx context.Context, personID string) error {
	s.mu.Lock()
	delete(s.longTerm, personID)
	delete(s.facts, personID)
	for sessionID, st := range s.shortTerm {
		if st.PersonID == personID {
			delete(s.shortTerm, sessionID)
		}
	}
	ltErr := s.persistLongTermLocked()
	factsErr := s.persistFactsLocked()
	s.mu.Unlock()

	if s.index != nil {
		if err := s.index.DeletePerson(ctx, personID); err != nil {
			log.Printf("[MEMORY] Failed to drop fact index for %s: %v", personID, err)
		}
	}

	log.Printf("[MEMORY] Deleted all memory for person %s", personID)
	if ltErr != nil {
		return ltErr
	}
	return factsErr
}

// --- Persistence ---

func (s *Store) persistLongTermLocked() error {
	err := storage.Save(s.cfg.LongTermPath, s.longTerm)
	if err != nil {
		log.Printf("[MEMORY] Long-term save failed, retrying once: %v", err)
		err = storage.Save(s.cfg.LongTermPath, s.longTerm)
	}
	if err != nil {
		return &core.PersistenceError{Collection: "long-term memories", Err: err}
	}
	return nil
}

func (s *Store) persistFactsLocked() error {
	err := storage.Save(s.cfg.FactsPath, s.facts)
	if err != nil {
		log.Printf("[MEMORY] Facts save failed, retrying once: %v", err)
		err = storage.Save(s.cfg.FactsPath, s.facts)
	}
	if err != nil {
		return &core.PersistenceError{Collection: "facts", Err: err}
	}
	return nil
}
