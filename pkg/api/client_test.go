package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientListChats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/chats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"2","title":"Second","created_at":"2026-08-28T10:00:00","updated_at":"2026-08-29T09:00:00"},
			{"id":"1","title":"First","created_at":"2026-08-27T10:00:00","updated_at":"2026-08-27T10:00:00"}
		]`))
	}))
	defer server.Close()

	chats, err := NewClient(server.URL).ListChats(context.Background())
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "2", chats[0].ID)
	assert.Equal(t, "Second", chats[0].Title)
	assert.Equal(t, 2026, chats[0].UpdatedAt.Year())
}

func TestClientCreateChatDefaultsTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chats", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "New chat", body["title"])

		_, _ = w.Write([]byte(`{"id":"abc","title":"New chat"}`))
	}))
	defer server.Close()

	created, err := NewClient(server.URL).CreateChat(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "abc", created.ID)
}

func TestClientGetChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chats/abc", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"chat": {"id":"abc","title":"Docs"},
			"messages": [
				{"id":"m1","role":"user","content":"q","created_at":"2026-08-29T09:00:00"},
				{"id":"m2","role":"assistant","content":"a","feedback":"like",
				 "sources":[{"source":"doc.md","content":"excerpt"}]}
			]
		}`))
	}))
	defer server.Close()

	detail, err := NewClient(server.URL).GetChat(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Docs", detail.Chat.Title)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, FeedbackLike, detail.Messages[1].Feedback)
	require.Len(t, detail.Messages[1].Sources, 1)
	assert.Equal(t, "doc.md", detail.Messages[1].Sources[0].Source)
}

func TestClientSendMessageAppliesDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chats/abc/messages", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["content"])
		assert.Equal(t, float64(4), body["top_k"])
		assert.Equal(t, 0.3, body["temperature"])
		assert.Equal(t, float64(1000), body["max_tokens"])

		_, _ = w.Write([]byte(`{"answer":"hi","sources":[],"title":"Greeting"}`))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).SendMessage(context.Background(), "abc", "hello", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Answer)
	assert.Equal(t, "Greeting", resp.Title)
	assert.Empty(t, resp.Sources)
}

func TestClientSendMessageKeepsExplicitOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(8), body["top_k"])
		assert.Equal(t, 0.7, body["temperature"])
		assert.Equal(t, float64(2000), body["max_tokens"])
		_, _ = w.Write([]byte(`{"answer":"ok","sources":[]}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).SendMessage(context.Background(), "abc", "hello", SendOptions{
		TopK:        8,
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	require.NoError(t, err)
}

func TestClientSendFeedback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chats/messages/m2/feedback", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dislike", body["feedback"])
		_, _ = w.Write([]byte(`{"id":"m2","role":"assistant","content":"a","feedback":"dislike"}`))
	}))
	defer server.Close()

	updated, err := NewClient(server.URL).SendFeedback(context.Background(), "m2", FeedbackDislike)
	require.NoError(t, err)
	assert.Equal(t, FeedbackDislike, updated.Feedback)
}

func TestClientHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	status, err := NewClient(server.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
}

func TestClientTransportErrorFromDetailBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Chat not found"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetChat(context.Background(), "missing")
	require.Error(t, err)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusNotFound, terr.StatusCode)
	assert.Equal(t, "Chat not found", terr.Message)
}

func TestClientTransportErrorFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>nope</html>`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).ListChats(context.Background())
	require.Error(t, err)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), terr.Message)
}

func TestClientValidatesIdsBeforeRequesting(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	c := NewClient(server.URL)
	ctx := context.Background()

	_, err := c.GetChat(ctx, "  ")
	require.Error(t, err)
	require.Error(t, c.DeleteChat(ctx, ""))
	_, err = c.SendMessage(ctx, "", "hello", SendOptions{})
	require.Error(t, err)
	_, err = c.SendMessage(ctx, "abc", "   ", SendOptions{})
	require.Error(t, err)
	_, err = c.SendFeedback(ctx, "", FeedbackLike)
	require.Error(t, err)
	_, err = c.SendFeedback(ctx, "m1", "meh")
	require.Error(t, err)

	assert.Equal(t, 0, requests)
}

func TestTimestampParsesNaiveISO(t *testing.T) {
	var message Message
	require.NoError(t, json.Unmarshal([]byte(
		`{"id":"m1","role":"user","content":"q","created_at":"2026-08-29T09:15:30.123456"}`,
	), &message))
	assert.Equal(t, time.August, message.CreatedAt.Month())
	assert.Equal(t, 15, message.CreatedAt.Minute())

	// null and missing timestamps stay zero
	var conversation Conversation
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","title":null,"created_at":null}`), &conversation))
	assert.True(t, conversation.CreatedAt.IsZero())
	assert.Empty(t, conversation.Title)
}
