package core

import "time"

// Message roles used throughout the conversation pipeline.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single role-tagged utterance in a conversation.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Utterance is one unit of assistant output: spoken text plus the
// expressive metadata the avatar frontend consumes. Audio is the
// base64-encoded WAV payload, empty when synthesis failed or was skipped.
type Utterance struct {
	Text             string `json:"text"`
	FacialExpression string `json:"facialExpression"`
	Animation        string `json:"animation"`
	Audio            string `json:"audio,omitempty"`
}

// Allowed expressive metadata values. The reply service is instructed to
// stay within these; the parser does not enforce them.
var (
	FacialExpressions = []string{"default", "smile", "sad", "angry", "surprised", "funnyFace", "crazy", "wink"}
	Animations        = []string{"Talking_0", "Talking_1", "Talking_2", "Crying", "Laughing", "Rumba", "Idle", "Terrified", "Angry"}
)
