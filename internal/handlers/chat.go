package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"clicktap-chat/internal/services"
)

// MaxChatBodyBytes bounds the inbound /api/chat body.
const MaxChatBodyBytes = 1 << 20

type chatRelayer interface {
	Relay(ctx context.Context, message string) (*services.UpstreamReply, error)
}

type ChatHandler struct {
	proxy chatRelayer
}

func NewChatHandler(proxy chatRelayer) *ChatHandler {
	return &ChatHandler{proxy: proxy}
}

// Send validates the message, forwards it upstream and relays the upstream
// status, content type and body untouched.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxChatBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleServiceError(w, r, &services.PayloadTooLargeError{Limit: tooLarge.Limit})
			return
		}
		handleServiceError(w, r, err)
		return
	}

	message, err := services.ParseChatRequest(body)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	reply, err := h.proxy.Relay(r.Context(), message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", reply.ContentType)
	w.WriteHeader(reply.StatusCode)
	w.Write(reply.Body)
}
