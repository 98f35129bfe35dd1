// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/internal/infrastructure/mock"
	errs "github.com/openconfhq/conference-chat-service/pkg/errors"
)

func TestReactionWriterOrchestrator_AddReaction(t *testing.T) {
	provider := mock.NewMockChatProvider()
	writer := NewReactionWriterOrchestrator(WithReactionChatProvider(provider))
	ctx := context.Background()

	messageSID := provider.AddMessage("CH_1", model.MessageAttributes{})

	request := &ReactionRequest{
		Identity:      "alice",
		ConferenceUID: "conf-1",
		ChannelSID:    "CH_1",
		MessageSID:    messageSID,
		Reaction:      "thumbsup",
	}

	require.NoError(t, writer.AddReaction(ctx, request))

	// Re-adding the same reaction is idempotent
	require.NoError(t, writer.AddReaction(ctx, request))

	message, err := provider.GetMessage(ctx, "CH_1", messageSID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, message.Attributes.Reactions["thumbsup"])
}

func TestReactionWriterOrchestrator_RemoveReaction(t *testing.T) {
	provider := mock.NewMockChatProvider()
	writer := NewReactionWriterOrchestrator(WithReactionChatProvider(provider))
	ctx := context.Background()

	messageSID := provider.AddMessage("CH_1", model.MessageAttributes{
		Version: model.MessageAttributesVersion,
		Reactions: map[string][]string{
			"thumbsup": {"alice", "bob"},
		},
	})

	err := writer.RemoveReaction(ctx, &ReactionRequest{
		Identity:   "alice",
		ChannelSID: "CH_1",
		MessageSID: messageSID,
		Reaction:   "thumbsup",
	})
	require.NoError(t, err)

	message, err := provider.GetMessage(ctx, "CH_1", messageSID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, message.Attributes.Reactions["thumbsup"])

	// Removing the last identity drops the reaction key entirely
	err = writer.RemoveReaction(ctx, &ReactionRequest{
		Identity:   "bob",
		ChannelSID: "CH_1",
		MessageSID: messageSID,
		Reaction:   "thumbsup",
	})
	require.NoError(t, err)

	message, err = provider.GetMessage(ctx, "CH_1", messageSID)
	require.NoError(t, err)
	_, exists := message.Attributes.Reactions["thumbsup"]
	assert.False(t, exists)
}

func TestReactionWriterOrchestrator_RemoveAbsentReactionIsNoop(t *testing.T) {
	provider := mock.NewMockChatProvider()
	writer := NewReactionWriterOrchestrator(WithReactionChatProvider(provider))
	ctx := context.Background()

	messageSID := provider.AddMessage("CH_1", model.MessageAttributes{})

	err := writer.RemoveReaction(ctx, &ReactionRequest{
		Identity:   "alice",
		ChannelSID: "CH_1",
		MessageSID: messageSID,
		Reaction:   "thumbsup",
	})
	require.NoError(t, err)
}

func TestReactionWriterOrchestrator_UnknownMessage(t *testing.T) {
	provider := mock.NewMockChatProvider()
	writer := NewReactionWriterOrchestrator(WithReactionChatProvider(provider))

	err := writer.AddReaction(context.Background(), &ReactionRequest{
		Identity:   "alice",
		ChannelSID: "CH_1",
		MessageSID: "MS_missing",
		Reaction:   "thumbsup",
	})
	require.Error(t, err)

	var notFound errs.NotFound
	assert.ErrorAs(t, err, &notFound)
}
