// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// ChannelResolution is the outcome of resolving a create-chat request to a
// provider channel.
type ChannelResolution struct {
	Channel *model.Channel
	IsDM    bool
	Created bool
}

// resolveChannel computes the unique key for the requested chat, reuses the
// existing channel for a DM key match, and creates a new channel otherwise.
//
// DM channels are deduplicated by the symmetric key; group channels are
// intentionally never deduplicated, every group request yields a new channel
// even with identical participants.
func (o *chatWriterOrchestrator) resolveChannel(ctx context.Context, request *CreateChatRequest) (*ChannelResolution, error) {
	isDM := request.Mode == constants.ChatModePrivate &&
		len(request.Invite) == 1 &&
		!request.ForVideoRoom

	if isDM {
		return o.resolveDMChannel(ctx, request)
	}
	return o.createGroupChannel(ctx, request)
}

// resolveDMChannel reuses the channel matching the symmetric DM key, creating
// it when absent.
func (o *chatWriterOrchestrator) resolveDMChannel(ctx context.Context, request *CreateChatRequest) (*ChannelResolution, error) {
	uniqueKey := model.DMUniqueKey(request.Identity, request.Invite[0])

	slog.DebugContext(ctx, "resolving DM channel",
		"conference_uid", request.ConferenceUID,
	)

	existing, err := o.provider.FindChannelByUniqueKey(ctx, uniqueKey)
	if err == nil {
		slog.DebugContext(ctx, "reusing existing DM channel",
			"channel_sid", existing.SID,
		)
		return &ChannelResolution{Channel: existing, IsDM: true}, nil
	}

	var notFound errors.NotFound
	if !stderrors.As(err, &notFound) {
		slog.ErrorContext(ctx, "DM channel lookup failed", "error", err)
		return nil, err
	}

	channel, err := o.provider.CreateChannel(ctx, &model.Channel{
		UniqueKey:    uniqueKey,
		FriendlyName: uniqueKey,
		CreatedBy:    constants.SystemIdentity,
		Attributes: model.ChannelAttributes{
			Version: model.ChannelAttributesVersion,
			IsDM:    true,
		},
	})
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "DM channel created", "channel_sid", channel.SID)

	return &ChannelResolution{Channel: channel, IsDM: true, Created: true}, nil
}

// createGroupChannel always creates a fresh channel; the random suffix keeps
// the unique key from ever colliding with a previous group request.
func (o *chatWriterOrchestrator) createGroupChannel(ctx context.Context, request *CreateChatRequest) (*ChannelResolution, error) {
	uniqueKey := model.GroupUniqueKey(request.Identity, uuid.New().String())

	slog.DebugContext(ctx, "creating group channel",
		"conference_uid", request.ConferenceUID,
		"mode", request.Mode,
	)

	channel, err := o.provider.CreateChannel(ctx, &model.Channel{
		UniqueKey:    uniqueKey,
		FriendlyName: request.Title,
		CreatedBy:    request.Identity,
		Attributes: model.ChannelAttributes{
			Version: model.ChannelAttributesVersion,
			IsDM:    false,
		},
	})
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "group channel created", "channel_sid", channel.SID)

	return &ChannelResolution{Channel: channel, Created: true}, nil
}
