package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/lojasmm/chatbubble/internal/chat"
)

const (
	DefaultBaseURL  = "http://127.0.0.1:8000"
	DefaultChatPath = "/chat"

	// Max bytes of an error body kept in the error message.
	maxErrorBody = 512
)

type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient builds a client posting to baseURL+chatPath. A zero timeout
// leaves requests bounded only by their context.
func NewClient(baseURL, chatPath string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if chatPath == "" {
		chatPath = DefaultChatPath
	}
	if !strings.HasPrefix(chatPath, "/") {
		chatPath = "/" + chatPath
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + chatPath,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) Endpoint() string { return c.endpoint }

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Response json.RawMessage `json:"response"`
}

// Send posts one user turn and classifies the reply.
func (c *Client) Send(ctx context.Context, sessionID, text string) (chat.Reply, error) {
	raw, err := c.exchange(ctx, sessionID, text)
	if err != nil {
		return chat.Reply{}, err
	}
	return chat.Interpret(raw), nil
}

// Greet posts an empty message, which the backend answers with its
// greeting. Slots in the greeting are ignored.
func (c *Client) Greet(ctx context.Context, sessionID string) (chat.Reply, error) {
	raw, err := c.exchange(ctx, sessionID, "")
	if err != nil {
		return chat.Reply{}, err
	}
	return chat.InterpretGreeting(raw), nil
}

func (c *Client) exchange(ctx context.Context, sessionID, text string) (json.RawMessage, error) {
	errb := oops.In("backend").With("session_id", sessionID, "endpoint", c.endpoint)

	payload, err := json.Marshal(chatRequest{SessionID: sessionID, Message: text})
	if err != nil {
		return nil, errb.Wrapf(err, "marshaling chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errb.Wrapf(fmt.Errorf("%w: %w", chat.ErrTransport, err), "building chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errb.Wrapf(fmt.Errorf("%w: %w", chat.ErrTransport, err), "sending chat request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errb.Wrapf(fmt.Errorf("%w: %w", chat.ErrTransport, err), "reading chat response")
	}

	slog.Debug("chat exchange",
		slog.String("session_id", sessionID),
		slog.Int("status", resp.StatusCode),
		slog.Bool("greeting", text == ""),
		slog.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := body
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, errb.With("status", resp.StatusCode).
			Wrapf(fmt.Errorf("%w: status %d: %s", chat.ErrTransport, resp.StatusCode, excerpt), "chat backend")
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errb.Wrapf(chat.ErrMalformed, "chat response is not a JSON object")
	}

	var out chatResponse
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, errb.Wrapf(fmt.Errorf("%w: %w", chat.ErrMalformed, err), "decoding chat response")
	}
	return out.Response, nil
}
