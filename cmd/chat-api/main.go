// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

// The chat-api server exposes the conference chat coordination API: channel
// creation and invitation against the chat provider, mirror record upkeep in
// the document store, message reactions, and client token issuance.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/openconfhq/conference-chat-service/cmd/chat-api/service"
	chatsvc "github.com/openconfhq/conference-chat-service/internal/service"
	"github.com/openconfhq/conference-chat-service/pkg/log"
)

const gracefulShutdownSeconds = 25

func main() {
	log.InitStructureLogConfig()
	ctx := context.Background()

	provider := service.ChatProviderClient(ctx)
	mirror := service.MirrorStorage(ctx)
	registrants := service.RegistrantRetriever(ctx)
	roleSet := service.ResolveRoleSet(ctx, provider)

	chatWriter := chatsvc.NewChatWriterOrchestrator(
		chatsvc.WithChatProvider(provider),
		chatsvc.WithMirrorStore(mirror),
		chatsvc.WithEntityAttributeReader(registrants),
		chatsvc.WithRoleSet(roleSet),
	)
	reactionWriter := chatsvc.NewReactionWriterOrchestrator(
		chatsvc.WithReactionChatProvider(provider),
	)
	tokenIssuer := service.TokenIssuerFromEnv(ctx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())

	api := service.NewChatService(chatWriter, reactionWriter, tokenIssuer, mirror, provider)
	api.Register(e)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		slog.InfoContext(ctx, "starting chat API server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "server stopped", "error", err)
			os.Exit(1)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	slog.InfoContext(ctx, "shutting down chat API server")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownSeconds*time.Second)
	defer cancel()
	if err := e.Shutdown(timeoutCtx); err != nil {
		slog.ErrorContext(ctx, "graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
