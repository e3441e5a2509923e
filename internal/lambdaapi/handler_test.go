package lambdaapi

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"clicktap-chat/internal/services"
)

type stubRelayer struct {
	reply   *services.UpstreamReply
	err     error
	message string
	calls   int
}

func (s *stubRelayer) Relay(_ context.Context, message string) (*services.UpstreamReply, error) {
	s.calls++
	s.message = message
	return s.reply, s.err
}

func makeEvent(method, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod:     method,
		Path:           "/api/chat",
		Headers:        map[string]string{"Content-Type": "application/json"},
		Body:           body,
		RequestContext: events.APIGatewayProxyRequestContext{RequestID: "req-1"},
	}
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil)
	require.Error(t, err)
}

func TestHandle_RelaysUpstream(t *testing.T) {
	uc := &stubRelayer{reply: &services.UpstreamReply{
		StatusCode:  http.StatusServiceUnavailable,
		ContentType: "application/json",
		Body:        []byte(`{"error":"overloaded"}`),
	}}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, `{"message":"Hello"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, `{"error":"overloaded"}`, resp.Body)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
	require.Equal(t, "req-1", resp.Headers["X-Request-ID"])
	require.Equal(t, "Hello", uc.message)
}

func TestHandle_DecodesBase64Body(t *testing.T) {
	uc := &stubRelayer{reply: &services.UpstreamReply{StatusCode: 200, ContentType: "application/json", Body: []byte(`{}`)}}
	h, _ := NewHandler(uc)

	event := makeEvent(http.MethodPost, base64.StdEncoding.EncodeToString([]byte(`{"message":"Hi"}`)))
	event.IsBase64Encoded = true

	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Hi", uc.message)
}

func TestHandle_Errors(t *testing.T) {
	cases := []struct {
		name     string
		event    events.APIGatewayProxyRequest
		relayErr error
		status   int
		body     string
	}{
		{"wrong method", makeEvent(http.MethodGet, ""), nil, 405, `{"error":"Method not allowed"}`},
		{"blank message", makeEvent(http.MethodPost, `{"message":"  "}`), nil, 400, `{"error":"Message is required"}`},
		{"bad base64", func() events.APIGatewayProxyRequest {
			e := makeEvent(http.MethodPost, "%%%")
			e.IsBase64Encoded = true
			return e
		}(), nil, 400, `{"error":"Message is required"}`},
		{"config", makeEvent(http.MethodPost, `{"message":"Hello"}`), &services.ConfigurationError{Message: services.MsgTokenMissing}, 500, `{"error":"LLM_SERVICE_TOKEN missing"}`},
		{"unexpected", makeEvent(http.MethodPost, `{"message":"Hello"}`), errors.New("dial tcp: no such host"), 500, `{"error":"Unexpected error"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := NewHandler(&stubRelayer{err: tc.relayErr})
			resp, err := h.Handle(context.Background(), tc.event)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			require.JSONEq(t, tc.body, resp.Body)
			require.Equal(t, "application/json", resp.Headers["Content-Type"])
		})
	}
}
