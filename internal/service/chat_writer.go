// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

// Package service implements the use-case orchestrators composing the
// provider client, the mirror store, and the registry readers.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/internal/domain/port"
	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
	"github.com/openconfhq/conference-chat-service/pkg/utils"
)

// CreateChatRequest is the transport-agnostic input of the create-chat use case.
// Invite never contains the requester; the transport layer strips self-invites
// before the orchestrator runs.
type CreateChatRequest struct {
	Identity      string
	ConferenceUID string
	Invite        []string
	Mode          string
	Title         string
	ForVideoRoom  bool
}

// CreateChatResult is the create-chat response payload.
type CreateChatResult struct {
	ChannelSID string `json:"channelSID"`
	TextChatID string `json:"textChatID"`
}

// InviteToChatRequest is the transport-agnostic input of the invite use case.
type InviteToChatRequest struct {
	Identity         string
	ConferenceUID    string
	ChannelSID       string
	TargetIdentities []string
}

// ChatWriter defines the channel-mutating use cases.
type ChatWriter interface {
	// CreateChat resolves or creates a channel for the requester and invitees,
	// reconciles membership, and synchronizes the mirror record.
	CreateChat(ctx context.Context, request *CreateChatRequest) (*CreateChatResult, error)

	// InviteToChat invites additional identities to an existing non-DM channel
	// the requester is a member of.
	InviteToChat(ctx context.Context, request *InviteToChatRequest) error
}

// chatWriterOrchestratorOption defines a function type for setting options on the orchestrator
type chatWriterOrchestratorOption func(*chatWriterOrchestrator)

// WithChatProvider sets the chat provider client
func WithChatProvider(provider port.ChatProvider) chatWriterOrchestratorOption {
	return func(o *chatWriterOrchestrator) {
		o.provider = provider
	}
}

// WithMirrorStore sets the mirror record store
func WithMirrorStore(mirror port.MirrorReaderWriter) chatWriterOrchestratorOption {
	return func(o *chatWriterOrchestrator) {
		o.mirror = mirror
	}
}

// WithEntityAttributeReader sets the registry attribute reader
func WithEntityAttributeReader(reader port.EntityAttributeReader) chatWriterOrchestratorOption {
	return func(o *chatWriterOrchestrator) {
		o.entityReader = reader
	}
}

// WithRoleSet sets the provider role templates resolved at startup
func WithRoleSet(roles model.RoleSet) chatWriterOrchestratorOption {
	return func(o *chatWriterOrchestrator) {
		o.roles = roles
	}
}

// WithRetryConfig overrides the provider-mutation retry policy
func WithRetryConfig(config utils.RetryConfig) chatWriterOrchestratorOption {
	return func(o *chatWriterOrchestrator) {
		o.retry = config
	}
}

// chatWriterOrchestrator orchestrates the channel provisioning process
type chatWriterOrchestrator struct {
	provider     port.ChatProvider
	mirror       port.MirrorReaderWriter
	entityReader port.EntityAttributeReader
	roles        model.RoleSet
	retry        utils.RetryConfig
}

// NewChatWriterOrchestrator creates a new chat writer orchestrator using the option pattern
func NewChatWriterOrchestrator(opts ...chatWriterOrchestratorOption) ChatWriter {
	uc := &chatWriterOrchestrator{
		retry: utils.NewRetryConfig(3, 200*time.Millisecond, 2*time.Second),
	}
	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// CreateChat resolves or creates the channel, reconciles membership, and
// synchronizes the mirror record. A mutation failure on the new-channel path
// deletes the created channel before the error surfaces; the existing-channel
// path is never compensated.
func (o *chatWriterOrchestrator) CreateChat(ctx context.Context, request *CreateChatRequest) (*CreateChatResult, error) {
	slog.DebugContext(ctx, "executing create chat use case",
		"conference_uid", request.ConferenceUID,
		"mode", request.Mode,
		"invitee_count", len(request.Invite),
	)

	if len(request.Invite) == 0 {
		return nil, errors.NewValidation("invitee list cannot be empty")
	}
	if err := constants.ValidateChatMode(request.Mode); err != nil {
		return nil, err
	}

	resolution, err := o.resolveChannel(ctx, request)
	if err != nil {
		slog.ErrorContext(ctx, "channel resolution failed",
			"error", err,
			"conference_uid", request.ConferenceUID,
		)
		return nil, err
	}

	// Compensating deletion guards the new-channel path only
	var rollbackRequired bool
	defer func() {
		if err := recover(); err != nil || rollbackRequired {
			if resolution.Created {
				o.deleteChannelWithRetry(ctx, resolution.Channel.SID)
			}
		}
	}()

	err = o.reconcileMembership(ctx, resolution.Channel, request.Identity, request.Invite, resolution.IsDM, request.ConferenceUID)
	if err != nil {
		slog.ErrorContext(ctx, "membership reconciliation failed",
			"error", err,
			"channel_sid", resolution.Channel.SID,
			"created", resolution.Created,
		)
		rollbackRequired = true
		return nil, err
	}

	private := request.Mode == constants.ChatModePrivate
	record, err := o.syncMirror(ctx, resolution.Channel, request.ConferenceUID, resolution.IsDM, &private)
	if err != nil {
		// The mirror record is derived state; provider-side channel and
		// membership stay in place even on the new-channel path.
		slog.ErrorContext(ctx, "mirror synchronization failed",
			"error", err,
			"channel_sid", resolution.Channel.SID,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "chat created",
		"channel_sid", resolution.Channel.SID,
		"chat_id", record.UID,
		"is_dm", resolution.IsDM,
		"reused", !resolution.Created,
	)

	return &CreateChatResult{
		ChannelSID: resolution.Channel.SID,
		TextChatID: record.UID,
	}, nil
}

// InviteToChat invites additional identities to an existing channel
func (o *chatWriterOrchestrator) InviteToChat(ctx context.Context, request *InviteToChatRequest) error {
	slog.DebugContext(ctx, "executing invite to chat use case",
		"conference_uid", request.ConferenceUID,
		"channel_sid", request.ChannelSID,
		"target_count", len(request.TargetIdentities),
	)

	if len(request.TargetIdentities) == 0 {
		return errors.NewValidation("target identity list cannot be empty")
	}

	channel, err := o.provider.GetChannel(ctx, request.ChannelSID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load channel for invite",
			"error", err,
			"channel_sid", request.ChannelSID,
		)
		return err
	}

	// DM channels have a fixed pair of participants
	if channel.Attributes.IsDM {
		return errors.NewValidation("direct message channels cannot accept additional invitees")
	}

	members, err := o.provider.ListMembers(ctx, channel.SID)
	if err != nil {
		return err
	}
	requesterIsMember := false
	for _, member := range members {
		if member.Identity == request.Identity {
			requesterIsMember = true
			break
		}
	}
	if !requesterIsMember {
		slog.WarnContext(ctx, "invite rejected, requester is not a channel member",
			"channel_sid", channel.SID,
		)
		return errors.NewForbidden("requester is not a member of the channel")
	}

	err = o.reconcileMembership(ctx, channel, request.Identity, request.TargetIdentities, false, request.ConferenceUID)
	if err != nil {
		slog.ErrorContext(ctx, "membership reconciliation failed for invite",
			"error", err,
			"channel_sid", channel.SID,
		)
		// The channel pre-existed the request; partial invitation state stands.
		return err
	}

	if _, err := o.syncMirror(ctx, channel, request.ConferenceUID, false, nil); err != nil {
		slog.ErrorContext(ctx, "mirror synchronization failed for invite",
			"error", err,
			"channel_sid", channel.SID,
		)
		return err
	}

	slog.InfoContext(ctx, "invitees added to chat",
		"channel_sid", channel.SID,
		"target_count", len(request.TargetIdentities),
	)

	return nil
}

// deleteChannelWithRetry removes a partially provisioned channel. Best effort:
// a failure here leaves an orphaned channel and is logged, not surfaced.
func (o *chatWriterOrchestrator) deleteChannelWithRetry(ctx context.Context, channelSID string) {
	slog.WarnContext(ctx, "rolling back partially provisioned channel",
		"channel_sid", channelSID,
	)

	err := utils.RetryWithExponentialBackoff(ctx, o.retry, func() error {
		return o.provider.DeleteChannel(ctx, channelSID)
	})
	if err != nil {
		slog.ErrorContext(ctx, "compensating channel deletion failed, channel is orphaned",
			"error", err,
			"channel_sid", channelSID,
		)
		return
	}

	slog.InfoContext(ctx, "compensating channel deletion completed",
		"channel_sid", channelSID,
	)
}
