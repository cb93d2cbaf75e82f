// Package reply generates assistant replies as utterance lists: short
// spoken chunks with facial expression and animation cues. Model output
// is requested as JSON but never trusted; a recovery parser turns
// whatever comes back into renderable utterances.
package reply

import (
	"context"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/HackingHobbit/Brilliant-Interface-Task-Coordinator-and-Helper/core"
)

// Service produces reply utterances for a user message given the
// composed system directive and the short-term history.
type Service interface {
	Generate(ctx context.Context, directive string, history []core.Message, userMessage string) ([]core.Utterance, error)
}

// Defaults for the Anthropic-backed service.
const (
	DefaultModel       = "claude-sonnet-4-20250514"
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.6
)

// formatInstructions is appended to every directive so the model
// answers with a parseable utterance array.
const formatInstructions = `

RESPONSE FORMAT:
You will always reply with a JSON array of messages, with a maximum of 3 messages.
Each message has a text, facialExpression, and animation property.
The different facial expressions are: smile, sad, angry, surprised, funnyFace, and default.
The different animations are: Talking_0, Talking_1, Talking_2, Crying, Laughing, Rumba, Idle, Terrified, and Angry.
Reply with ONLY the JSON array, no other text.`

// AnthropicService implements Service on the Anthropic Messages API.
type AnthropicService struct {
	client      *anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// Option configures the Anthropic service.
type Option func(*AnthropicService)

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(s *AnthropicService) {
		s.model = model
	}
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(n int64) Option {
	return func(s *AnthropicService) {
		s.maxTokens = n
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(s *AnthropicService) {
		s.temperature = t
	}
}

// NewAnthropicService creates a reply service over the given client.
func NewAnthropicService(client *anthropic.Client, opts ...Option) *AnthropicService {
	s := &AnthropicService{
		client:      client,
		model:       DefaultModel,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate calls the model and parses its output into utterances. The
// parse never fails; only transport errors are returned.
func (s *AnthropicService) Generate(ctx context.Context, directive string, history []core.Message, userMessage string) ([]core.Utterance, error) {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, msg := range history {
		switch msg.Role {
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)))

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(s.model),
		MaxTokens:   s.maxTokens,
		Temperature: anthropic.Float(s.temperature),
		Messages:    messages,
		System: []anthropic.TextBlockParam{
			{Text: directive + formatInstructions},
		},
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("reply API error: %w", err)
	}

	var raw string
	for _, block := range resp.Content {
		if block.Type == "text" {
			raw += block.Text
		}
	}
	log.Printf("[REPLY] Raw model response (%d chars)", len(raw))

	return Parse(raw), nil
}
