// Package engine orchestrates a chat turn: resolve the AI Person,
// render its system directive, enrich with remembered context, generate
// reply utterances, synthesize speech, and record the exchange in
// short-term memory.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/identity"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/memory"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/person"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/reply"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/session"
	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/speech"
)

// Engine runs chat turns.
type Engine struct {
	persons  *person.Store
	sessions *session.Manager
	memory   *memory.Store
	composer *identity.Composer
	replies  reply.Service
	speech   speech.Synthesizer

	// directives caches rendered system directives keyed by Person id
	// and last-modified stamp, so identity edits invalidate naturally.
	directives *ristretto.Cache
}

// Option configures the engine.
type Option func(*Engine)

// WithSpeech enables speech synthesis for reply utterances.
func WithSpeech(s speech.Synthesizer) Option {
	return func(e *Engine) {
		e.speech = s
	}
}

// New creates an engine over the given stores and services.
func New(persons *person.Store, sessions *session.Manager, mem *memory.Store, composer *identity.Composer, replies reply.Service, opts ...Option) (*Engine, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 22,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create directive cache: %w", err)
	}

	e := &Engine{
		persons:    persons,
		sessions:   sessions,
		memory:     mem,
		composer:   composer,
		replies:    replies,
		directives: cache,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// TurnInput is one chat request.
type TurnInput struct {
	// SessionID identifies the conversation. Generated when empty.
	SessionID string

	// PersonID selects the AI Person. Falls back to the session's bound
	// Person, then to a default Person.
	PersonID string

	// Message is the user's message. Empty triggers the greeting.
	Message string
}

// TurnOutput is the result of one chat turn.
type TurnOutput struct {
	SessionID  string           `json:"sessionId"`
	PersonID   string           `json:"aiPersonId"`
	Utterances []core.Utterance `json:"messages"`
}

// Greeting utterances returned for an empty message.
var greetingUtterances = []core.Utterance{
	{
		Text:             "Hello! I am the Brilliant Interface Task Coordinator and Helper. How can I assist you today?",
		FacialExpression: "smile",
		Animation:        "Talking_1",
	},
	{
		Text:             "I am here to help you with tasks, answer questions, and coordinate your digital interface needs. What would you like to work on?",
		FacialExpression: "smile",
		Animation:        "Talking_2",
	},
}

// Turn executes one chat turn.
func (e *Engine) Turn(ctx context.Context, input TurnInput) (*TurnOutput, error) {
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	p, err := e.resolvePerson(ctx, sessionID, input.PersonID)
	if err != nil {
		return nil, err
	}

	if input.Message == "" {
		utterances := make([]core.Utterance, len(greetingUtterances))
		copy(utterances, greetingUtterances)
		e.synthesize(ctx, utterances)
		return &TurnOutput{
			SessionID:  sessionID,
			PersonID:   p.Metadata.PersonID,
			Utterances: utterances,
		}, nil
	}

	// Imperative style cues take effect immediately
	if prefs := memory.ExtractRealtimePreferences(input.Message); len(prefs) > 0 {
		if err := e.memory.UpdatePreferences(p.Metadata.PersonID, prefs); err != nil {
			log.Printf("[ENGINE] Preference update failed: %v", err)
		}
	}

	directive := e.directive(p)
	if enrichment := e.memoryEnrichment(p.Metadata.PersonID, input.Message); enrichment != "" {
		directive += enrichment
	}

	history := e.memory.Messages(sessionID)
	utterances, err := e.replies.Generate(ctx, directive, history, input.Message)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	for i := range utterances {
		utterances[i].Text = reply.SanitizeForSpeech(utterances[i].Text)
	}
	e.synthesize(ctx, utterances)

	e.sessions.Append(sessionID, core.RoleUser, input.Message)
	e.sessions.Append(sessionID, core.RoleAssistant, joinTexts(utterances))

	return &TurnOutput{
		SessionID:  sessionID,
		PersonID:   p.Metadata.PersonID,
		Utterances: utterances,
	}, nil
}

// resolvePerson picks the Person for the turn: the explicit id, the
// session's bound Person, any stored Person, or a freshly composed
// default, and binds the session to it.
func (e *Engine) resolvePerson(ctx context.Context, sessionID, personID string) (*identity.PersonIdentity, error) {
	if personID == "" {
		if s, ok := e.sessions.Get(sessionID); ok {
			personID = s.PersonID
		}
	}
	if personID == "" {
		if all := e.persons.All(); len(all) > 0 {
			personID = all[0].Metadata.PersonID
		}
	}

	var p *identity.PersonIdentity
	if personID != "" {
		var err error
		p, err = e.persons.Get(personID)
		if err != nil {
			return nil, fmt.Errorf("resolve person %s: %w", personID, err)
		}
	} else {
		composed, res, err := e.composer.Compose("", "", "", "")
		if err != nil {
			return nil, fmt.Errorf("compose default person: %w", err)
		}
		log.Printf("[ENGINE] Composed default person %s (role=%s, personality=%s)",
			composed.Metadata.PersonID, res.RoleID, res.PresentationID)
		if err := e.persons.Set(composed.Metadata.PersonID, composed); err != nil {
			return nil, err
		}
		p = composed
	}

	if err := e.sessions.Bind(ctx, sessionID, p.Metadata.PersonID); err != nil {
		return nil, err
	}
	return p, nil
}

// directive renders (or fetches) the Person's system directive.
func (e *Engine) directive(p *identity.PersonIdentity) string {
	key := p.Metadata.PersonID + "|" + p.Metadata.LastModified.Format("20060102150405.000000")
	if cached, ok := e.directives.Get(key); ok {
		if directive, ok := cached.(string); ok {
			return directive
		}
	}
	directive := identity.RenderDirective(p)
	e.directives.Set(key, directive, int64(len(directive)))
	return directive
}

// memoryEnrichment formats remembered context for the directive.
func (e *Engine) memoryEnrichment(personID, message string) string {
	mc := e.memory.RelevantContext(personID, message)

	var b strings.Builder
	if len(mc.RelevantFacts) > 0 {
		b.WriteString("\n\nTHINGS YOU REMEMBER ABOUT THE USER:\n")
		for _, f := range mc.RelevantFacts {
			fmt.Fprintf(&b, "- %s\n", f.Text)
		}
	}
	if len(mc.RecentConversations) > 0 {
		b.WriteString("\nRECENT CONVERSATION TOPICS:\n")
		for _, c := range mc.RecentConversations {
			if len(c.Topics) > 0 {
				fmt.Fprintf(&b, "- %s\n", strings.Join(c.Topics, ", "))
			}
		}
	}
	if style, ok := mc.Preferences["communicationStyle"].(string); ok && style != "" {
		fmt.Fprintf(&b, "\nThe user prefers a %s communication style.\n", style)
	}
	if length, ok := mc.Preferences["responseLength"].(string); ok && length != "" {
		fmt.Fprintf(&b, "The user prefers %s responses.\n", length)
	}
	return b.String()
}

// synthesize fills in utterance audio; failures leave audio empty.
func (e *Engine) synthesize(ctx context.Context, utterances []core.Utterance) {
	if e.speech == nil {
		return
	}
	for i := range utterances {
		audio, err := e.speech.Synthesize(ctx, utterances[i].Text)
		if err != nil {
			log.Printf("[ENGINE] Speech synthesis failed for utterance %d: %v", i, err)
			continue
		}
		utterances[i].Audio = audio
	}
}

func joinTexts(utterances []core.Utterance) string {
	texts := make([]string, 0, len(utterances))
	for _, u := range utterances {
		if u.Text != "" {
			texts = append(texts, u.Text)
		}
	}
	return strings.Join(texts, " ")
}
