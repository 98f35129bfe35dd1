// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/internal/domain/port"
	"github.com/openconfhq/conference-chat-service/internal/infrastructure/chatprovider"
	infrastructure "github.com/openconfhq/conference-chat-service/internal/infrastructure/mock"
	"github.com/openconfhq/conference-chat-service/internal/infrastructure/nats"
	chatsvc "github.com/openconfhq/conference-chat-service/internal/service"
	"github.com/openconfhq/conference-chat-service/pkg/constants"
)

var (
	natsStorage   port.MirrorReaderWriter
	natsMessaging port.EntityAttributeReader

	natsDoOnce sync.Once
)

func natsInit(ctx context.Context) {
	natsDoOnce.Do(func() {
		natsURL := os.Getenv(constants.EnvNATSURL)
		if natsURL == "" {
			natsURL = "nats://localhost:4222"
		}

		natsTimeout := os.Getenv("NATS_TIMEOUT")
		if natsTimeout == "" {
			natsTimeout = "10s"
		}
		natsTimeoutDuration, err := time.ParseDuration(natsTimeout)
		if err != nil {
			log.Fatalf("invalid NATS timeout duration: %v", err)
		}

		natsMaxReconnect := os.Getenv("NATS_MAX_RECONNECT")
		if natsMaxReconnect == "" {
			natsMaxReconnect = "3"
		}
		natsMaxReconnectInt, err := strconv.Atoi(natsMaxReconnect)
		if err != nil {
			log.Fatalf("invalid NATS max reconnect value %s: %v", natsMaxReconnect, err)
		}

		natsReconnectWait := os.Getenv("NATS_RECONNECT_WAIT")
		if natsReconnectWait == "" {
			natsReconnectWait = "2s"
		}
		natsReconnectWaitDuration, err := time.ParseDuration(natsReconnectWait)
		if err != nil {
			log.Fatalf("invalid NATS reconnect wait duration %s : %v", natsReconnectWait, err)
		}

		config := nats.Config{
			URL:           natsURL,
			Timeout:       natsTimeoutDuration,
			MaxReconnect:  natsMaxReconnectInt,
			ReconnectWait: natsReconnectWaitDuration,
		}

		natsClient, errNewClient := nats.NewClient(ctx, config)
		if errNewClient != nil {
			log.Fatalf("failed to create NATS client: %v", errNewClient)
		}
		natsStorage = nats.NewStorage(natsClient)
		natsMessaging = nats.NewEntityAttributeReader(natsClient)
	})
}

// MirrorStorage initializes the mirror record store implementation based on
// the repository source
func MirrorStorage(ctx context.Context) port.MirrorReaderWriter {
	repoSource := os.Getenv("REPOSITORY_SOURCE")
	if repoSource == "" {
		repoSource = "nats"
	}

	switch repoSource {
	case "mock":
		slog.InfoContext(ctx, "initializing mock mirror store")
		return infrastructure.NewMockMirrorStore()
	case "nats":
		slog.InfoContext(ctx, "initializing NATS KV mirror store")
		natsInit(ctx)
		return natsStorage
	default:
		log.Fatalf("unsupported mirror store implementation: %s", repoSource)
		return nil
	}
}

// RegistrantRetriever initializes the registrant attribute reader
// implementation based on the repository source
func RegistrantRetriever(ctx context.Context) port.EntityAttributeReader {
	repoSource := os.Getenv("REPOSITORY_SOURCE")
	if repoSource == "" {
		repoSource = "nats"
	}

	switch repoSource {
	case "mock":
		slog.InfoContext(ctx, "initializing mock registrant retriever")
		return infrastructure.NewMockEntityAttributeReader()
	case "nats":
		slog.InfoContext(ctx, "initializing NATS registrant retriever")
		natsInit(ctx)
		return natsMessaging
	default:
		log.Fatalf("unsupported registrant retriever implementation: %s", repoSource)
		return nil
	}
}

// ChatProviderClient initializes the chat provider implementation. The mock
// provider is substituted when CHAT_PROVIDER_MOCK_MODE is set, so the service
// can run without provider credentials.
func ChatProviderClient(ctx context.Context) port.ChatProvider {
	mockMode, _ := strconv.ParseBool(os.Getenv("CHAT_PROVIDER_MOCK_MODE"))
	if mockMode {
		slog.InfoContext(ctx, "initializing mock chat provider")
		return infrastructure.NewMockChatProvider()
	}

	slog.InfoContext(ctx, "initializing chat provider client")
	client, err := chatprovider.NewClient(chatprovider.Config{
		BaseURL:    os.Getenv(constants.EnvProviderBaseURL),
		ServiceSID: os.Getenv(constants.EnvProviderServiceSID),
		APIKey:     os.Getenv(constants.EnvProviderAPIKey),
		APISecret:  os.Getenv(constants.EnvProviderAPISecret),
	})
	if err != nil {
		log.Fatalf("failed to initialize chat provider client: %v", err)
	}
	return client
}

// ResolveRoleSet fetches the provider's role templates and resolves the two
// required channel roles. Missing templates are a startup failure: no channel
// mutation can assign roles without them.
func ResolveRoleSet(ctx context.Context, provider port.ChatProvider) model.RoleSet {
	roles, err := provider.ListRoles(ctx)
	if err != nil {
		log.Fatalf("failed to list chat provider roles: %v", err)
	}

	roleSet, err := model.NewRoleSet(roles)
	if err != nil {
		log.Fatalf("failed to resolve channel role templates: %v", err)
	}

	slog.InfoContext(ctx, "resolved channel role templates",
		"admin_role_sid", roleSet.AdminRoleSID,
		"user_role_sid", roleSet.UserRoleSID,
	)
	return roleSet
}

// TokenIssuerFromEnv builds the client token issuer from environment
// configuration.
func TokenIssuerFromEnv(ctx context.Context) chatsvc.TokenIssuer {
	secret := os.Getenv(constants.EnvTokenSigningSecret)
	if secret == "" {
		log.Fatalf("%s is required", constants.EnvTokenSigningSecret)
	}

	ttl := chatsvc.DefaultTokenTTL
	if raw := os.Getenv("CHAT_TOKEN_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid token TTL duration %s: %v", raw, err)
		}
		ttl = parsed
	}

	slog.InfoContext(ctx, "initializing client token issuer", "ttl", ttl)
	return chatsvc.NewTokenIssuer(
		chatsvc.WithSigningSecret([]byte(secret)),
		chatsvc.WithServiceSID(os.Getenv(constants.EnvProviderServiceSID)),
		chatsvc.WithTokenTTL(ttl),
	)
}
