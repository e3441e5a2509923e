package models

// ChatRequest is the payload accepted by /api/chat and forwarded upstream.
type ChatRequest struct {
	Message string `json:"message"`
}

// ErrorResponse is the flat error body produced by the proxy itself.
type ErrorResponse struct {
	Error string `json:"error"`
}
