package conversation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterpret(t *testing.T) {
	cases := []struct {
		name   string
		resp   *Response
		err    error
		want   string
		failed bool
	}{
		{"reply", &Response{200, []byte(`{"reply":"Hi there","model":"x"}`)}, nil, "Hi there", false},
		{"missing reply", &Response{200, []byte(`{"model":"x"}`)}, nil, EmptyReplyText, false},
		{"empty reply", &Response{200, []byte(`{"reply":"","model":"x"}`)}, nil, EmptyReplyText, false},
		{"null reply", &Response{200, []byte(`{"reply":null}`)}, nil, EmptyReplyText, false},
		{"other 2xx", &Response{201, []byte(`{"reply":"created"}`)}, nil, "created", false},
		{"error string", &Response{503, []byte(`{"error":"overloaded"}`)}, nil, "Error: overloaded", true},
		{"error preferred over detail", &Response{500, []byte(`{"error":"LLM_SERVICE_TOKEN missing","detail":"ignored"}`)}, nil, "Error: LLM_SERVICE_TOKEN missing", true},
		{"detail string", &Response{401, []byte(`{"detail":"Invalid service token"}`)}, nil, "Error: Invalid service token", true},
		{"detail list", &Response{422, []byte(`{"detail":[{"msg":"field required"}]}`)}, nil, "Error: Request failed", true},
		{"structured error falls to detail", &Response{400, []byte(`{"error":{"code":"X"},"detail":"bad input"}`)}, nil, "Error: bad input", true},
		{"null error", &Response{500, []byte(`{"error":null}`)}, nil, "Error: Request failed", true},
		{"no fields", &Response{500, []byte(`{}`)}, nil, "Error: Request failed", true},
		{"json array body", &Response{500, []byte(`["x"]`)}, nil, "Error: Request failed", true},
		{"non json error body", &Response{502, []byte(`<html>Bad Gateway</html>`)}, nil, NetworkErrorText, true},
		{"non json success body", &Response{200, []byte(`plain text`)}, nil, NetworkErrorText, true},
		{"empty body", &Response{200, nil}, nil, NetworkErrorText, true},
		{"null success body", &Response{200, []byte(`null`)}, nil, NetworkErrorText, true},
		{"null error body", &Response{500, []byte(` null `)}, nil, "Error: Request failed", true},
		{"string success body", &Response{200, []byte(`"hi"`)}, nil, EmptyReplyText, false},
		{"transport error", nil, errors.New("dial tcp: lookup proxy: no such host"), NetworkErrorText, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Interpret(tc.resp, tc.err)
			require.Equal(t, tc.want, got.Content)
			require.Equal(t, tc.failed, got.Failed)
		})
	}
}

func TestInterpret_KeepsModelAndSources(t *testing.T) {
	body := `{"reply":"See the handbook.","model":"llama3","sources":[{"source":"handbook.pdf"},{"source":"wiki/onboarding"},{"other":1}]}`
	got := Interpret(&Response{StatusCode: 200, Body: []byte(body)}, nil)

	require.Equal(t, "See the handbook.", got.Content)
	require.Equal(t, "llama3", got.Model)
	require.Equal(t, []string{"handbook.pdf", "wiki/onboarding"}, got.Sources)
}

func TestInterpret_NullSources(t *testing.T) {
	got := Interpret(&Response{StatusCode: 200, Body: []byte(`{"reply":"ok","sources":null}`)}, nil)
	require.Empty(t, got.Sources)
}
