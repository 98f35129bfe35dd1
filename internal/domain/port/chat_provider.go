// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

// Package port declares the interfaces the service layer depends on.
package port

import (
	"context"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
)

// ChatProvider defines every chat-provider API operation this service uses.
// All implementations must be safe for concurrent use: the handle is shared
// across requests after initialization.
type ChatProvider interface {
	// GetChannel retrieves a channel by SID.
	GetChannel(ctx context.Context, channelSID string) (*model.Channel, error)

	// FindChannelByUniqueKey returns the channel with the exact unique key,
	// or a NotFound error when none exists. The provider enforces key
	// uniqueness, so at most one match is possible.
	FindChannelByUniqueKey(ctx context.Context, uniqueKey string) (*model.Channel, error)

	// CreateChannel creates a channel; the returned channel carries the
	// provider-assigned SID.
	CreateChannel(ctx context.Context, channel *model.Channel) (*model.Channel, error)

	// DeleteChannel removes a channel. Used only as a compensating action
	// on partial-creation failure.
	DeleteChannel(ctx context.Context, channelSID string) error

	// ListMembers returns the channel's active memberships.
	ListMembers(ctx context.Context, channelSID string) ([]model.Membership, error)

	// CreateMember adds an identity to a channel with the given role.
	CreateMember(ctx context.Context, channelSID, identity, roleSID string) (*model.Membership, error)

	// ListInvites returns the channel's pending invitations.
	ListInvites(ctx context.Context, channelSID string) ([]model.Invitation, error)

	// CreateInvite invites an identity to a channel with the given role.
	CreateInvite(ctx context.Context, channelSID, identity, roleSID string) (*model.Invitation, error)

	// ListRoles returns the provider service's role templates.
	ListRoles(ctx context.Context) ([]model.Role, error)

	// GetUser retrieves a provider user record, or NotFound.
	GetUser(ctx context.Context, identity string) (*model.User, error)

	// CreateUser creates a provider user record keyed by identity.
	CreateUser(ctx context.Context, identity, friendlyName string) (*model.User, error)

	// GetMessage fetches a message including its attribute bag.
	GetMessage(ctx context.Context, channelSID, messageSID string) (*model.Message, error)

	// UpdateMessageAttributes replaces a message's attribute bag.
	UpdateMessageAttributes(ctx context.Context, channelSID, messageSID string, attrs model.MessageAttributes) error

	// IsReady checks provider API reachability.
	IsReady(ctx context.Context) error
}
