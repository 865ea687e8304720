package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// TransportError reports a non-2xx backend response. Message carries the
// backend-supplied error text when the body matches the expected error
// shape, otherwise the HTTP status text.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// errorBody is the FastAPI error envelope.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func newTransportError(statusCode int, body []byte) *TransportError {
	msg := ""
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(eb.Detail, &detail); err == nil {
			msg = strings.TrimSpace(detail)
		} else {
			// structured validation details: keep the raw JSON
			msg = strings.TrimSpace(string(eb.Detail))
		}
	}
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", statusCode)
	}
	return &TransportError{StatusCode: statusCode, Message: msg}
}
