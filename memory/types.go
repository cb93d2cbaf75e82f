package memory

import (
	"context"
	"time"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
)

// ShortTerm is the per-session message buffer. Bounded to the most
// recent ShortTermCap entries and never persisted to durable storage.
type ShortTerm struct {
	Messages  []core.Message `json:"messages"`
	PersonID  string         `json:"aiPersonId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ConversationSummary is one consolidated conversation in long-term
// memory: a lightweight heuristic summary, not semantic summarization.
type ConversationSummary struct {
	SessionID    string    `json:"sessionId"`
	Topics       []string  `json:"topics"`
	MessageCount int       `json:"messageCount"`
	FirstMessage string    `json:"firstMessage,omitempty"`
	LastMessage  string    `json:"lastMessage,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// LongTerm is the durable per-Person memory record. Created lazily on
// first access; grows only by consolidation or explicit preference and
// relationship updates, and shrinks only by eviction of the oldest
// conversation summaries.
type LongTerm struct {
	Conversations []ConversationSummary  `json:"conversations"`
	Preferences   map[string]interface{} `json:"preferences"`
	Relationships map[string]interface{} `json:"relationships"`
	Experiences   []interface{}          `json:"experiences"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// Fact is one learned assertion about the user, scoped per Person.
// Within one Person's fact list no two records share identical Text.
type Fact struct {
	Text       string    `json:"fact"`
	Category   string    `json:"category"`
	AddedAt    time.Time `json:"addedAt"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source,omitempty"`
}

// Context is the memory context assembled for prompt augmentation.
type Context struct {
	RecentConversations []ConversationSummary  `json:"recentConversations"`
	RelevantFacts       []Fact                 `json:"relevantFacts"`
	Preferences         map[string]interface{} `json:"preferences"`
	Relationships       map[string]interface{} `json:"relationships"`
}

// EnhancedContext extends Context with recency-ordered facts and totals.
type EnhancedContext struct {
	Context
	RecentFacts []Fact    `json:"recentFacts"`
	TotalFacts  int       `json:"totalFacts"`
	LastFactAt  time.Time `json:"lastFactAt,omitzero"`
}

// FactIndex is an optional vector index over fact records for semantic
// retrieval. Implementations: memory/index/chromem.
type FactIndex interface {
	// Add indexes a fact under the given person.
	Add(ctx context.Context, personID string, fact Fact) error

	// Query returns up to limit fact texts most similar to text.
	Query(ctx context.Context, personID string, text string, limit int) ([]string, error)

	// DeletePerson drops the index for a person.
	DeletePerson(ctx context.Context, personID string) error
}

// Embedder converts text to vector embeddings for the fact index.
// Implementations: mock (testing), ONNX (local semantic search).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
