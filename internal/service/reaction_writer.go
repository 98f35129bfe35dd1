// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/openconfhq/conference-chat-service/internal/domain/port"
)

// ReactionRequest is the transport-agnostic input of the reaction use cases.
type ReactionRequest struct {
	Identity      string
	ConferenceUID string
	ChannelSID    string
	MessageSID    string
	Reaction      string
}

// ReactionWriter defines the message-reaction use cases.
type ReactionWriter interface {
	// AddReaction records the requester's reaction on a message. Idempotent:
	// the requester appears in the reaction's identity list exactly once.
	AddReaction(ctx context.Context, request *ReactionRequest) error

	// RemoveReaction removes the requester's reaction from a message; the
	// reaction key disappears once its identity list is empty.
	RemoveReaction(ctx context.Context, request *ReactionRequest) error
}

// reactionWriterOrchestratorOption defines a function type for setting options on the orchestrator
type reactionWriterOrchestratorOption func(*reactionWriterOrchestrator)

// WithReactionChatProvider sets the chat provider client
func WithReactionChatProvider(provider port.ChatProvider) reactionWriterOrchestratorOption {
	return func(o *reactionWriterOrchestrator) {
		o.provider = provider
	}
}

// reactionWriterOrchestrator performs the read-modify-write cycle on a
// message's attribute bag.
type reactionWriterOrchestrator struct {
	provider port.ChatProvider
}

// NewReactionWriterOrchestrator creates a new reaction writer orchestrator using the option pattern
func NewReactionWriterOrchestrator(opts ...reactionWriterOrchestratorOption) ReactionWriter {
	uc := &reactionWriterOrchestrator{}
	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// AddReaction records the requester's reaction on a message
func (o *reactionWriterOrchestrator) AddReaction(ctx context.Context, request *ReactionRequest) error {
	slog.DebugContext(ctx, "executing add reaction use case",
		"channel_sid", request.ChannelSID,
		"message_sid", request.MessageSID,
		"reaction", request.Reaction,
	)

	message, err := o.provider.GetMessage(ctx, request.ChannelSID, request.MessageSID)
	if err != nil {
		return err
	}

	attrs := message.Attributes
	if !attrs.AddReaction(request.Reaction, request.Identity) {
		// Already recorded; nothing to write
		return nil
	}

	return o.provider.UpdateMessageAttributes(ctx, request.ChannelSID, request.MessageSID, attrs)
}

// RemoveReaction removes the requester's reaction from a message
func (o *reactionWriterOrchestrator) RemoveReaction(ctx context.Context, request *ReactionRequest) error {
	slog.DebugContext(ctx, "executing remove reaction use case",
		"channel_sid", request.ChannelSID,
		"message_sid", request.MessageSID,
		"reaction", request.Reaction,
	)

	message, err := o.provider.GetMessage(ctx, request.ChannelSID, request.MessageSID)
	if err != nil {
		return err
	}

	attrs := message.Attributes
	if !attrs.RemoveReaction(request.Reaction, request.Identity) {
		return nil
	}

	return o.provider.UpdateMessageAttributes(ctx, request.ChannelSID, request.MessageSID, attrs)
}
