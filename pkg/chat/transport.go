package chat

import (
	"context"

	"github.com/go-go-golems/jiminy/pkg/api"
)

// ListTransport is the backend surface the list controller depends on.
type ListTransport interface {
	ListChats(ctx context.Context) ([]api.Conversation, error)
	CreateChat(ctx context.Context, title string) (api.Conversation, error)
	DeleteChat(ctx context.Context, chatID string) error
}

// SessionTransport is the backend surface the session controller depends on.
type SessionTransport interface {
	GetChat(ctx context.Context, chatID string) (api.ChatDetail, error)
	SendMessage(ctx context.Context, chatID string, content string, opts api.SendOptions) (api.ChatResponse, error)
	SendFeedback(ctx context.Context, messageID string, feedback string) (api.Message, error)
}

var (
	_ ListTransport    = &api.Client{}
	_ SessionTransport = &api.Client{}
)
