// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

// Package service exposes the chat use cases over HTTP.
package service

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	chatsvc "github.com/openconfhq/conference-chat-service/internal/service"
)

// ReadinessChecker reports whether a backing dependency is reachable.
type ReadinessChecker interface {
	IsReady(ctx context.Context) error
}

// CreateChatPayload is the JSON body of POST /chats.
type CreateChatPayload struct {
	Invite       []string `json:"invite"`
	Mode         string   `json:"mode"`
	Title        string   `json:"title"`
	ForVideoRoom bool     `json:"forVideoRoom"`
}

// InviteToChatPayload is the JSON body of POST /chats/:channelSID/invites.
type InviteToChatPayload struct {
	TargetIdentities []string `json:"targetIdentities"`
}

// ReactionPayload is the JSON body of the reaction endpoints.
type ReactionPayload struct {
	Reaction string `json:"reaction"`
}

// okResponse is the fixed body of side-effect-only endpoints.
type okResponse struct {
	OK bool `json:"ok"`
}

// ChatService registers the chat API routes and adapts HTTP requests to the
// use-case orchestrators.
type ChatService struct {
	chatWriter     chatsvc.ChatWriter
	reactionWriter chatsvc.ReactionWriter
	tokenIssuer    chatsvc.TokenIssuer
	readiness      []ReadinessChecker
}

// NewChatService creates the HTTP service facade.
func NewChatService(chatWriter chatsvc.ChatWriter, reactionWriter chatsvc.ReactionWriter, tokenIssuer chatsvc.TokenIssuer, readiness ...ReadinessChecker) *ChatService {
	return &ChatService{
		chatWriter:     chatWriter,
		reactionWriter: reactionWriter,
		tokenIssuer:    tokenIssuer,
		readiness:      readiness,
	}
}

// Register mounts the routes on the Echo instance. Health probes bypass the
// principal middleware; everything else requires a resolved session.
func (s *ChatService) Register(e *echo.Echo) {
	e.GET("/livez", s.Livez)
	e.GET("/readyz", s.Readyz)

	api := e.Group("", RequestIDMiddleware(), PrincipalMiddleware())
	api.POST("/chats", s.CreateChat)
	api.POST("/chats/:channelSID/invites", s.InviteToChat)
	api.POST("/chats/:channelSID/messages/:messageSID/reactions", s.AddReaction)
	api.DELETE("/chats/:channelSID/messages/:messageSID/reactions", s.RemoveReaction)
	api.POST("/token", s.IssueToken)
}

// CreateChat handles POST /chats
func (s *ChatService) CreateChat(c echo.Context) error {
	ctx := c.Request().Context()
	identity, conferenceUID := principalFrom(c)

	payload := new(CreateChatPayload)
	if err := c.Bind(payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	invite, err := validateCreateChatPayload(identity, payload)
	if err != nil {
		return wrapError(ctx, err)
	}

	result, err := s.chatWriter.CreateChat(ctx, &chatsvc.CreateChatRequest{
		Identity:      identity,
		ConferenceUID: conferenceUID,
		Invite:        invite,
		Mode:          payload.Mode,
		Title:         payload.Title,
		ForVideoRoom:  payload.ForVideoRoom,
	})
	if err != nil {
		return wrapError(ctx, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// InviteToChat handles POST /chats/:channelSID/invites
func (s *ChatService) InviteToChat(c echo.Context) error {
	ctx := c.Request().Context()
	identity, conferenceUID := principalFrom(c)
	channelSID := c.Param("channelSID")

	payload := new(InviteToChatPayload)
	if err := c.Bind(payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	targets, err := validateInvitePayload(identity, channelSID, payload)
	if err != nil {
		return wrapError(ctx, err)
	}

	err = s.chatWriter.InviteToChat(ctx, &chatsvc.InviteToChatRequest{
		Identity:         identity,
		ConferenceUID:    conferenceUID,
		ChannelSID:       channelSID,
		TargetIdentities: targets,
	})
	if err != nil {
		return wrapError(ctx, err)
	}

	return c.JSON(http.StatusOK, map[string]any{})
}

// AddReaction handles POST /chats/:channelSID/messages/:messageSID/reactions
func (s *ChatService) AddReaction(c echo.Context) error {
	return s.handleReaction(c, s.reactionWriter.AddReaction)
}

// RemoveReaction handles DELETE /chats/:channelSID/messages/:messageSID/reactions
func (s *ChatService) RemoveReaction(c echo.Context) error {
	return s.handleReaction(c, s.reactionWriter.RemoveReaction)
}

func (s *ChatService) handleReaction(c echo.Context, mutate func(context.Context, *chatsvc.ReactionRequest) error) error {
	ctx := c.Request().Context()
	identity, conferenceUID := principalFrom(c)
	channelSID := c.Param("channelSID")
	messageSID := c.Param("messageSID")

	payload := new(ReactionPayload)
	if err := c.Bind(payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validateReactionParams(channelSID, messageSID, payload); err != nil {
		return wrapError(ctx, err)
	}

	err := mutate(ctx, &chatsvc.ReactionRequest{
		Identity:      identity,
		ConferenceUID: conferenceUID,
		ChannelSID:    channelSID,
		MessageSID:    messageSID,
		Reaction:      payload.Reaction,
	})
	if err != nil {
		return wrapError(ctx, err)
	}

	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// IssueToken handles POST /token
func (s *ChatService) IssueToken(c echo.Context) error {
	ctx := c.Request().Context()
	identity, conferenceUID := principalFrom(c)

	result, err := s.tokenIssuer.IssueToken(ctx, identity, conferenceUID)
	if err != nil {
		return wrapError(ctx, err)
	}

	return c.JSON(http.StatusOK, result)
}

// Livez handles GET /livez
func (s *ChatService) Livez(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Readyz handles GET /readyz, probing every backing dependency.
func (s *ChatService) Readyz(c echo.Context) error {
	ctx := c.Request().Context()
	for _, checker := range s.readiness {
		if err := checker.IsReady(ctx); err != nil {
			return wrapError(ctx, err)
		}
	}
	return c.String(http.StatusOK, "OK")
}
