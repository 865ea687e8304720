package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is used when no server address is configured.
const DefaultBaseURL = "http://localhost:8000"

// Client is a stateless request/response mapper over the backend HTTP
// surface. It performs no retries and no caching; failures propagate to the
// caller unchanged, non-2xx responses as *TransportError.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    http.DefaultClient,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListChats returns all conversations, newest activity first (server order).
func (c *Client) ListChats(ctx context.Context) ([]Conversation, error) {
	var out []Conversation
	if err := c.do(ctx, http.MethodGet, "/chats", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateChat creates a conversation. An empty title defaults to "New chat",
// which the backend later replaces with a derived title.
func (c *Client) CreateChat(ctx context.Context, title string) (Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New chat"
	}
	body := struct {
		Title string `json:"title"`
	}{Title: title}
	var out Conversation
	if err := c.do(ctx, http.MethodPost, "/chats", body, &out); err != nil {
		return Conversation{}, err
	}
	return out, nil
}

// GetChat fetches one conversation's metadata together with its full
// message history.
func (c *Client) GetChat(ctx context.Context, chatID string) (ChatDetail, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return ChatDetail{}, errors.New("chat id is empty")
	}
	var out ChatDetail
	if err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatID), nil, &out); err != nil {
		return ChatDetail{}, err
	}
	return out, nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return errors.New("chat id is empty")
	}
	return c.do(ctx, http.MethodDelete, "/chats/"+url.PathEscape(chatID), nil, nil)
}

// SendMessage posts a question to a conversation and returns the generated
// answer with its cited sources. Zero option fields fall back to the
// backend defaults (top_k 4, temperature 0.3, max_tokens 1000).
func (c *Client) SendMessage(ctx context.Context, chatID string, content string, opts SendOptions) (ChatResponse, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return ChatResponse{}, errors.New("chat id is empty")
	}
	if strings.TrimSpace(content) == "" {
		return ChatResponse{}, errors.New("message content is empty")
	}
	opts = opts.normalized()
	body := struct {
		Content     string  `json:"content"`
		TopK        int     `json:"top_k"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
	}{
		Content:     content,
		TopK:        opts.TopK,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	var out ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatID)+"/messages", body, &out); err != nil {
		return ChatResponse{}, err
	}
	return out, nil
}

// SendFeedback records a like/dislike verdict on a message and returns the
// updated message.
func (c *Client) SendFeedback(ctx context.Context, messageID string, feedback string) (Message, error) {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return Message{}, errors.New("message id is empty")
	}
	if feedback != FeedbackLike && feedback != FeedbackDislike {
		return Message{}, errors.Errorf("invalid feedback %q", feedback)
	}
	body := struct {
		Feedback string `json:"feedback"`
	}{Feedback: feedback}
	var out Message
	if err := c.do(ctx, http.MethodPost, "/chats/messages/"+url.PathEscape(messageID)+"/feedback", body, &out); err != nil {
		return Message{}, err
	}
	return out, nil
}

// Health probes the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return HealthStatus{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "could not marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "could not build request")
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("method", method).Str("path", path).Msg("backend request")
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s failed", method, path)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "could not read response for %s %s", method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		terr := newTransportError(resp.StatusCode, data)
		c.logger.Debug().Str("method", method).Str("path", path).
			Int("status", resp.StatusCode).Str("message", terr.Message).
			Msg("backend error response")
		return terr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "could not decode response for %s %s", method, path)
	}
	return nil
}
