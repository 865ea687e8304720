package api

import (
	"encoding/json"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
)

// Message roles as emitted by the backend.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Feedback verdicts accepted by the backend. Feedback is set-only: once a
// message carries a verdict it can change between the two but is never
// cleared.
const (
	FeedbackLike    = "like"
	FeedbackDislike = "dislike"
)

// Default send options, mirroring the backend's own defaults.
const (
	DefaultTopK        = 4
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 1000
)

// Timestamp wraps time.Time with lenient decoding. The backend serializes
// naive ISO-8601 datetimes (no offset), which encoding/json's RFC 3339
// parser rejects, so we go through dateparse instead.
type Timestamp struct {
	time.Time
}

func Now() Timestamp {
	return Timestamp{Time: time.Now().UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "timestamp is not a JSON string")
	}
	if s == nil || *s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := dateparse.ParseAny(*s)
	if err != nil {
		return errors.Wrapf(err, "could not parse timestamp %q", *s)
	}
	t.Time = parsed
	return nil
}

// Conversation is a titled, timestamped container for a message history.
// Title may be empty until the backend derives one from the first exchange.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Source is a citation excerpt attached to an assistant message.
type Source struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// Message is one turn in a conversation. Sources are only present on
// assistant messages; Feedback is empty until a verdict is recorded.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Sources   []Source  `json:"sources,omitempty"`
	Feedback  string    `json:"feedback,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// ChatDetail is the response of GET /chats/{id}.
type ChatDetail struct {
	Chat     Conversation `json:"chat"`
	Messages []Message    `json:"messages"`
}

// ChatResponse is the response of POST /chats/{id}/messages. Title is only
// set when the backend derived a new conversation title from this exchange.
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Title   string   `json:"title,omitempty"`
}

// HealthStatus is the liveness payload of GET /health.
type HealthStatus struct {
	Status string `json:"status"`
}

// SendOptions tune retrieval and generation for a single send. Zero fields
// fall back to the backend defaults.
type SendOptions struct {
	TopK        int
	Temperature float64
	MaxTokens   int
}

func (o SendOptions) normalized() SendOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}
