// Package lambdaapi serves the chat proxy behind API Gateway on AWS Lambda.
package lambdaapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"clicktap-chat/internal/models"
	"clicktap-chat/internal/services"
)

type relayer interface {
	Relay(ctx context.Context, message string) (*services.UpstreamReply, error)
}

type Handler struct {
	proxy relayer
}

func NewHandler(proxy relayer) (*Handler, error) {
	if proxy == nil {
		return nil, errors.New("lambdaapi: proxy must not be nil")
	}
	return &Handler{proxy: proxy}, nil
}

// Handle mirrors POST /api/chat: same validation, same verbatim relay.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := req.RequestContext.RequestID

	if req.HTTPMethod != http.MethodPost {
		return jsonError(http.StatusMethodNotAllowed, services.MsgMethodNotAllowed, requestID), nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return h.fail(&services.ValidationError{Message: services.MsgMessageRequired}, requestID), nil
		}
		body = decoded
	}

	message, err := services.ParseChatRequest(body)
	if err != nil {
		return h.fail(err, requestID), nil
	}

	reply, err := h.proxy.Relay(ctx, message)
	if err != nil {
		return h.fail(err, requestID), nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: reply.StatusCode,
		Headers:    headers(reply.ContentType, requestID),
		Body:       string(reply.Body),
	}, nil
}

func (h *Handler) fail(err error, requestID string) events.APIGatewayProxyResponse {
	status, message := services.Classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("✗ chat relay failed (request_id=%s): %v", requestID, err)
	}
	return jsonError(status, message, requestID)
}

func jsonError(status int, message, requestID string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(models.ErrorResponse{Error: message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers("application/json", requestID),
		Body:       string(body),
	}
}

func headers(contentType, requestID string) map[string]string {
	h := map[string]string{"Content-Type": contentType}
	if requestID != "" {
		h["X-Request-ID"] = requestID
	}
	return h
}
