package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"clicktap-chat/internal/services"
)

type stubRelayer struct {
	reply   *services.UpstreamReply
	err     error
	calls   int
	message string
}

func (s *stubRelayer) Relay(_ context.Context, message string) (*services.UpstreamReply, error) {
	s.calls++
	s.message = message
	return s.reply, s.err
}

func postChat(h *ChatHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Send(rr, req)
	return rr
}

func TestChatHandler_RejectsMissingMessage(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"message":""}`,
		`{"message":"   "}`,
		`{"message":"\n\t"}`,
		`{"message":7}`,
		`{"message":null}`,
		`not json`,
		``,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			relayer := &stubRelayer{}
			rr := postChat(NewChatHandler(relayer), body)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			require.JSONEq(t, `{"error":"Message is required"}`, rr.Body.String())
			require.Zero(t, relayer.calls, "upstream must not be called for invalid input")
		})
	}
}

func TestChatHandler_RelaysUpstreamVerbatim(t *testing.T) {
	cases := []struct {
		name  string
		reply services.UpstreamReply
	}{
		{"success", services.UpstreamReply{StatusCode: 200, ContentType: "application/json", Body: []byte(`{"reply":"Hi there","model":"x"}`)}},
		{"upstream 503", services.UpstreamReply{StatusCode: 503, ContentType: "application/json", Body: []byte(`{"error":"overloaded"}`)}},
		{"non json body", services.UpstreamReply{StatusCode: 502, ContentType: "text/html", Body: []byte("<html>bad gateway</html>")}},
		{"empty body", services.UpstreamReply{StatusCode: 204, ContentType: "application/json", Body: nil}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reply := tc.reply
			relayer := &stubRelayer{reply: &reply}
			rr := postChat(NewChatHandler(relayer), `{"message":"Hello"}`)

			require.Equal(t, tc.reply.StatusCode, rr.Code)
			require.Equal(t, tc.reply.ContentType, rr.Header().Get("Content-Type"))
			require.Equal(t, string(tc.reply.Body), rr.Body.String())
			require.Equal(t, "Hello", relayer.message)
		})
	}
}

func TestChatHandler_MapsProxyErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"base url missing", &services.ConfigurationError{Message: services.MsgBaseURLMissing}, 500, `{"error":"LLM_API_BASE_URL missing"}`},
		{"token missing", &services.ConfigurationError{Message: services.MsgTokenMissing}, 500, `{"error":"LLM_SERVICE_TOKEN missing"}`},
		{"transport", &services.UpstreamError{URL: "http://x/v1/chat", Err: io.ErrUnexpectedEOF}, 500, `{"error":"Unexpected error"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := postChat(NewChatHandler(&stubRelayer{err: tc.err}), `{"message":"Hello"}`)
			require.Equal(t, tc.status, rr.Code)
			require.JSONEq(t, tc.body, rr.Body.String())
		})
	}
}

func TestChatHandler_RejectsOversizedBody(t *testing.T) {
	relayer := &stubRelayer{}
	body := `{"message":"` + strings.Repeat("a", MaxChatBodyBytes) + `"}`
	rr := postChat(NewChatHandler(relayer), body)

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	require.JSONEq(t, `{"error":"Request body too large"}`, rr.Body.String())
	require.Zero(t, relayer.calls)
}

func TestChatHandler_EndToEndWithProxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Service-Token") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"Invalid service token"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		io.WriteString(w, `{"reply":"Hi there","model":"x"}`)
	}))
	defer upstream.Close()

	rr := postChat(NewChatHandler(services.NewChatProxy(upstream.URL, "tok")), `{"message":"Hello"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	require.Equal(t, `{"reply":"Hi there","model":"x"}`, rr.Body.String())

	rr = postChat(NewChatHandler(services.NewChatProxy(upstream.URL, "wrong")), `{"message":"Hello"}`)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, `{"detail":"Invalid service token"}`, rr.Body.String())
}

func TestChatHandler_MissingBaseURLIndependentOfMessage(t *testing.T) {
	for _, msg := range []string{"Hello", "a much longer question?", "🙂"} {
		rr := postChat(NewChatHandler(services.NewChatProxy("", "tok")), `{"message":"`+msg+`"}`)
		require.Equal(t, http.StatusInternalServerError, rr.Code)
		require.JSONEq(t, `{"error":"LLM_API_BASE_URL missing"}`, rr.Body.String())
	}
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
