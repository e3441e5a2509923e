package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"clicktap-chat/internal/config"
	"clicktap-chat/internal/lambdaapi"
	"clicktap-chat/internal/paramstore"
	"clicktap-chat/internal/services"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("✗ Invalid configuration: %v", err)
	}

	if cfg.ServiceToken == "" {
		store, err := paramstore.NewFromEnvironment(ctx)
		if err != nil {
			log.Fatalf("✗ Parameter store unavailable: %v", err)
		}
		if err := cfg.ResolveServiceToken(ctx, store); err != nil {
			log.Fatalf("✗ Service token resolution failed: %v", err)
		}
	}

	h, err := lambdaapi.NewHandler(services.NewChatProxy(cfg.LLMBaseURL, cfg.ServiceToken))
	if err != nil {
		log.Fatalf("✗ Handler init failed: %v", err)
	}

	lambda.Start(h.Handle)
}
