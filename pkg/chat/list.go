package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/jiminy/pkg/api"
)

// ListController owns the set of known conversations. Mutations are atomic
// per operation; accessors return copies so callers can render without
// holding the controller's lock.
type ListController struct {
	mu        sync.Mutex
	transport ListTransport
	logger    zerolog.Logger

	conversations []api.Conversation
	loading       bool
	lastErr       string
}

func NewListController(transport ListTransport) *ListController {
	return &ListController{
		transport: transport,
		logger:    log.Logger,
	}
}

// Refresh replaces the local sequence with the server's list. On failure the
// previous sequence is preserved and the error recorded. The loading flag is
// cleared on every path.
func (c *ListController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()

	conversations, err := c.transport.ListChats(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.lastErr = err.Error()
		c.logger.Debug().Err(err).Msg("conversation list refresh failed")
		return err
	}
	c.conversations = conversations
	return nil
}

// Create requests a new conversation and prepends it to the local sequence,
// without a full reload. On failure the sequence is untouched.
func (c *ListController) Create(ctx context.Context, title string) (api.Conversation, error) {
	conversation, err := c.transport.CreateChat(ctx, title)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return api.Conversation{}, err
	}
	c.conversations = append([]api.Conversation{conversation}, c.conversations...)
	return conversation, nil
}

// Delete removes the conversation both remotely and from the local sequence.
// Clearing the active session when the deleted id was active is the
// orchestration layer's responsibility.
func (c *ListController) Delete(ctx context.Context, chatID string) error {
	chatID = strings.TrimSpace(chatID)
	err := c.transport.DeleteChat(ctx, chatID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return err
	}
	kept := c.conversations[:0:0]
	for _, conversation := range c.conversations {
		if conversation.ID != chatID {
			kept = append(kept, conversation)
		}
	}
	c.conversations = kept
	return nil
}

// Conversations returns a copy of the local sequence in server order.
func (c *ListController) Conversations() []api.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Conversation(nil), c.conversations...)
}

func (c *ListController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last recorded error message, or "" when the previous
// operation succeeded.
func (c *ListController) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
