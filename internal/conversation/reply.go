package conversation

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

const (
	EmptyReplyText    = "(empty reply)"
	NetworkErrorText  = "Error: network issue"
	RequestFailedText = "Request failed"
	ThinkingText      = "Thinking…"
)

// Response is the raw proxy answer as seen by the client.
type Response struct {
	StatusCode int
	Body       []byte
}

// Reply is what the conversation appends for one completed request.
type Reply struct {
	Content string
	Model   string
	Sources []string
	Failed  bool
}

// Interpret turns the outcome of one proxy call into the assistant turn.
// A transport error, a body that is not JSON and a success body of JSON null
// all count as a network failure, since none yields a usable response.
func Interpret(resp *Response, err error) Reply {
	if err != nil || resp == nil || !gjson.ValidBytes(resp.Body) {
		return Reply{Content: NetworkErrorText, Failed: true}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Reply{Content: "Error: " + errorText(resp.Body), Failed: true}
	}

	payload := gjson.ParseBytes(resp.Body)
	if payload.Type == gjson.Null {
		return Reply{Content: NetworkErrorText, Failed: true}
	}

	content := EmptyReplyText
	if r := payload.Get("reply"); r.Type == gjson.String && r.Str != "" {
		content = r.Str
	}

	var sources []string
	payload.Get("sources.#.source").ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String && v.Str != "" {
			sources = append(sources, v.Str)
		}
		return true
	})

	return Reply{
		Content: content,
		Model:   payload.Get("model").String(),
		Sources: sources,
	}
}

// errorEnvelope captures the candidate error fields undecoded so each can be
// tried as a string independently.
type errorEnvelope struct {
	Error  json.RawMessage `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// errorText prefers a string "error", then a string "detail", then a fixed
// fallback. Structured details (e.g. validation error lists) use the fallback.
func errorText(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return RequestFailedText
	}
	if s, ok := stringField(env.Error); ok {
		return s
	}
	if s, ok := stringField(env.Detail); ok {
		return s
	}
	return RequestFailedText
}

func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
