package services

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

const (
	chatPath           = "/v1/chat"
	serviceTokenHeader = "X-Service-Token"
	defaultContentType = "application/json"
)

// UpstreamReply is the upstream response captured for verbatim relay.
type UpstreamReply struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// ChatProxy forwards chat messages to the upstream LLM service with the
// service token attached. It holds no per-request state and is safe for
// concurrent use.
type ChatProxy struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type ProxyOption func(*ChatProxy)

func WithHTTPClient(httpClient *http.Client) ProxyOption {
	return func(p *ChatProxy) {
		if httpClient != nil {
			p.httpClient = httpClient
		}
	}
}

// NewChatProxy does not reject empty settings; Relay reports them as
// ConfigurationError so a misconfigured deployment still answers with a
// specific 500.
func NewChatProxy(baseURL, token string, opts ...ProxyOption) *ChatProxy {
	p := &ChatProxy{
		baseURL:    strings.TrimSpace(baseURL),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseChatRequest extracts the message from a raw /api/chat body. The
// message is returned as sent; only the emptiness check trims it.
func ParseChatRequest(body []byte) (string, error) {
	var req models.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", &ValidationError{Message: MsgMessageRequired}
	}
	if strings.TrimSpace(req.Message) == "" {
		return "", &ValidationError{Message: MsgMessageRequired}
	}
	return req.Message, nil
}

// Relay performs one upstream call. Any upstream status, including 4xx and
// 5xx, is returned as a reply rather than an error.
func (p *ChatProxy) Relay(ctx context.Context, message string) (*UpstreamReply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &ValidationError{Message: MsgMessageRequired}
	}
	if p.baseURL == "" {
		return nil, &ConfigurationError{Message: MsgBaseURLMissing}
	}
	if p.token == "" {
		return nil, &ConfigurationError{Message: MsgTokenMissing}
	}

	payload, err := json.Marshal(models.ChatRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to encode upstream request: %w", err)
	}

	url := upstreamURL(p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &UpstreamError{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(serviceTokenHeader, p.token)
	req.Header.Set("Cache-Control", "no-store")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	return &UpstreamReply{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

func upstreamURL(base string) string {
	return strings.TrimRight(base, "/") + chatPath
}
