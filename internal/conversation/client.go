package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"clicktap-chat/internal/models"
)

const chatEndpoint = "/api/chat"

// Client talks to the chat proxy. It never sees the upstream credential.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(strings.TrimSpace(baseURL), "/") + chatEndpoint,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts one message. Any HTTP status is a Response; only failures to
// complete the exchange are errors.
func (c *Client) Send(ctx context.Context, text string) (*Response, error) {
	payload, err := json.Marshal(models.ChatRequest{Message: text})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
