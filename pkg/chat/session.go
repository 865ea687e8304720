package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/jiminy/pkg/api"
)

// TitleListener is notified when a send response carries a derived
// conversation title, so the orchestration layer can refresh the list.
type TitleListener func(chatID string, title string)

// SessionController owns the message timeline of the single active
// conversation. Responses are applied only if the active conversation is
// still the one they were requested for: every network round-trip captures
// the epoch at call time and discards its result when the epoch moved on,
// so switching away while a load or send is in flight can never leak
// messages across conversations.
//
// Sends are serialized per controller, so an earlier pending question always
// resolves before the next assistant reply is appended.
type SessionController struct {
	mu        sync.Mutex
	sendMu    sync.Mutex
	transport SessionTransport
	logger    zerolog.Logger

	chatID   string
	epoch    uint64
	chat     *api.Conversation
	messages []api.Message
	loading  bool
	lastErr  string
	onTitle  TitleListener
}

func NewSessionController(transport SessionTransport) *SessionController {
	return &SessionController{
		transport: transport,
		logger:    log.Logger,
	}
}

// SetTitleListener registers the orchestration callback invoked after a send
// response updates the conversation title.
func (s *SessionController) SetTitleListener(fn TitleListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTitle = fn
}

// SetActive switches the active conversation. It is synchronous and never
// touches the network: the timeline and metadata are cleared immediately,
// and in-flight responses for the previous conversation are invalidated.
// The return value reports whether the caller should follow up with Load.
// An empty id means "no conversation selected".
func (s *SessionController) SetActive(chatID string) bool {
	chatID = strings.TrimSpace(chatID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if chatID == s.chatID {
		return false
	}
	s.epoch++
	s.chatID = chatID
	s.chat = nil
	s.messages = nil
	s.loading = false
	s.lastErr = ""
	return chatID != ""
}

// Load fetches the active conversation's metadata and full message history,
// replacing both wholesale. A no-op without an active conversation. Results
// arriving after the active id changed are discarded.
func (s *SessionController) Load(ctx context.Context) error {
	s.mu.Lock()
	chatID := s.chatID
	if chatID == "" {
		s.mu.Unlock()
		return nil
	}
	epoch := s.epoch
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	detail, err := s.transport.GetChat(ctx, chatID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Debug().Str("chat_id", chatID).Msg("discarding stale conversation load")
		return nil
	}
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		return err
	}
	chat := detail.Chat
	s.chat = &chat
	s.messages = append([]api.Message(nil), detail.Messages...)
	return nil
}

// Send posts a question to the active conversation. The user message is
// appended optimistically before the round-trip and removed again if the
// request fails; the assistant message is appended only on success. A no-op
// (nil, nil) when no conversation is active or the content trims to empty.
func (s *SessionController) Send(ctx context.Context, content string, opts api.SendOptions) (*api.ChatResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	chatID := s.chatID
	if chatID == "" {
		s.mu.Unlock()
		return nil, nil
	}
	epoch := s.epoch
	userMessage := api.Message{
		ID:        uuid.NewString(),
		Role:      api.RoleUser,
		Content:   content,
		CreatedAt: api.Now(),
	}
	s.messages = append(s.messages, userMessage)
	s.mu.Unlock()

	response, err := s.transport.SendMessage(ctx, chatID, content, opts)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.logger.Debug().Str("chat_id", chatID).Msg("discarding stale send result")
		if err != nil {
			return nil, err
		}
		return &response, nil
	}
	if err != nil {
		s.removeMessageLocked(userMessage.ID)
		s.lastErr = err.Error()
		s.mu.Unlock()
		return nil, err
	}

	s.messages = append(s.messages, api.Message{
		ID:        uuid.NewString(),
		Role:      api.RoleAssistant,
		Content:   response.Answer,
		Sources:   response.Sources,
		CreatedAt: api.Now(),
	})
	var notify TitleListener
	if response.Title != "" {
		if s.chat != nil {
			s.chat.Title = response.Title
		}
		notify = s.onTitle
	}
	s.mu.Unlock()

	if notify != nil {
		notify(chatID, response.Title)
	}
	return &response, nil
}

// SendFeedback records a like/dislike verdict on one message. On success
// only that message's Feedback field is updated, in place; on failure the
// timeline is untouched.
func (s *SessionController) SendFeedback(ctx context.Context, messageID string, feedback string) error {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return errors.New("message id is empty")
	}
	if feedback != api.FeedbackLike && feedback != api.FeedbackDislike {
		return errors.Errorf("invalid feedback %q", feedback)
	}

	_, err := s.transport.SendFeedback(ctx, messageID, feedback)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		return err
	}
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			s.messages[i].Feedback = feedback
			break
		}
	}
	return nil
}

func (s *SessionController) removeMessageLocked(messageID string) {
	kept := s.messages[:0:0]
	for _, message := range s.messages {
		if message.ID != messageID {
			kept = append(kept, message)
		}
	}
	s.messages = kept
}

// ChatID returns the active conversation id, or "" when none is selected.
func (s *SessionController) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// Conversation returns a copy of the active conversation's metadata. The
// second return is false until Load has populated it.
func (s *SessionController) Conversation() (api.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chat == nil {
		return api.Conversation{}, false
	}
	return *s.chat, true
}

// Messages returns a copy of the timeline in insertion order.
func (s *SessionController) Messages() []api.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Message(nil), s.messages...)
}

func (s *SessionController) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last recorded error message, or "" when the previous
// operation succeeded.
func (s *SessionController) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
