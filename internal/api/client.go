// Package api provides the JSON HTTP client shared by all dashboard panels.
// It normalizes every failure into one error shape and otherwise stays out
// of the way: no retries, no caching, no response transformation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client issues authenticated and unauthenticated JSON requests against the
// rewards backend.
type Client struct {
	baseURL string
	session *Session
	http    *http.Client
}

// NewClient creates a Client with a 10-second timeout. The session may be
// shared with other clients; it is read on every authenticated call.
func NewClient(baseURL string, session *Session) *Client {
	if session == nil {
		session = NewSession("")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Session returns the session this client authenticates with.
func (c *Client) Session() *Session { return c.session }

// Call issues one JSON request and returns the raw response body.
//
// When authenticated is true and no usable credential is present, it fails
// with an unauthorized error before any network I/O. Non-2xx responses fail
// with the message extracted from the response body when one is present.
// Transport failures fail with a network error carrying no partial data.
func (c *Client) Call(ctx context.Context, method, path string, body any, authenticated bool, query url.Values) (json.RawMessage, error) {
	if authenticated && !c.session.IsAuthenticated() {
		return nil, Unauthorized("You are not logged in or your session has expired.")
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.session.Token())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, Network(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Network(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	message := extractMessage(respBody)
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d.", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		e := Unauthorized(message)
		e.Status = resp.StatusCode
		return nil, e
	}
	return nil, Backend(resp.StatusCode, message)
}

// extractMessage pulls a human-readable message out of a JSON error body.
// Recognized shapes: {"message": "..."}, {"error": "..."},
// {"error": {"message": "..."}}.
func extractMessage(body []byte) string {
	var envelope struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	if len(envelope.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Error, &s); err == nil {
		return s
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}
