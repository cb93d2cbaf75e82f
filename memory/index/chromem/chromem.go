// Package chromem implements memory.FactIndex on chromem-go, a pure Go
// embedded vector database.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/memory"
)

// Index stores fact embeddings in one chromem collection per Person for
// namespace isolation.
type Index struct {
	db       *chromem.DB
	embedder memory.Embedder

	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// New creates a chromem-backed fact index using the given embedder.
func New(embedder memory.Embedder) (*Index, error) {
	return &Index{
		db:          chromem.NewDB(),
		embedder:    embedder,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

func (x *Index) getOrCreateCollection(personID string) (*chromem.Collection, error) {
	x.mu.RLock()
	col, exists := x.collections[personID]
	x.mu.RUnlock()
	if exists {
		return col, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	// Double-check after acquiring write lock
	if col, exists := x.collections[personID]; exists {
		return col, nil
	}

	col, err := x.db.CreateCollection("person_"+personID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	x.collections[personID] = col
	return col, nil
}

// Add embeds and indexes a fact under the given Person.
func (x *Index) Add(ctx context.Context, personID string, fact memory.Fact) error {
	col, err := x.getOrCreateCollection(personID)
	if err != nil {
		return err
	}

	embedding, err := x.embedder.Embed(ctx, fact.Text)
	if err != nil {
		return fmt.Errorf("embed fact: %w", err)
	}

	doc := chromem.Document{
		ID:        fact.Text,
		Content:   fact.Text,
		Embedding: embedding,
		Metadata: map[string]string{
			"category": fact.Category,
		},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Query returns up to limit fact texts most similar to text.
func (x *Index) Query(ctx context.Context, personID string, text string, limit int) ([]string, error) {
	col, err := x.getOrCreateCollection(personID)
	if err != nil {
		return nil, err
	}

	embedding, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// chromem-go requires nResults <= collection size; retry smaller.
	var results []chromem.Result
	for currentLimit := limit; currentLimit >= 1; currentLimit-- {
		results, err = col.QueryEmbedding(ctx, embedding, currentLimit, nil, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if currentLimit == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Content)
	}
	log.Printf("[CHROMEM] Retrieved %d facts for person %s", len(texts), personID)
	return texts, nil
}

// DeletePerson drops the Person's collection.
func (x *Index) DeletePerson(ctx context.Context, personID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.db.DeleteCollection("person_" + personID); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	delete(x.collections, personID)
	return nil
}

// isInsufficientDocsError checks if error is due to insufficient documents.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
