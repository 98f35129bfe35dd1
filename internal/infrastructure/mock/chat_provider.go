// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

// Package mock provides in-memory implementations of the service ports for
// local development and tests.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/internal/domain/port"
	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// MockChatProvider provides a mock implementation of port.ChatProvider backed
// by in-memory maps. All operations are safe for concurrent use.
type MockChatProvider struct {
	channels        map[string]*model.Channel // keyed by SID
	channelsByKey   map[string]string         // unique key -> SID
	members         map[string][]model.Membership
	invites         map[string][]model.Invitation
	users           map[string]*model.User
	roles           []model.Role
	messages        map[string]*model.Message // keyed by channelSID/messageSID
	deletedChannels []string
	injectedErrors  map[string]error
	mu              sync.RWMutex
}

// NewMockChatProvider creates a mock provider pre-seeded with the role
// templates every channel mutation needs.
func NewMockChatProvider() *MockChatProvider {
	return &MockChatProvider{
		channels:      make(map[string]*model.Channel),
		channelsByKey: make(map[string]string),
		members:       make(map[string][]model.Membership),
		invites:       make(map[string][]model.Invitation),
		users:         make(map[string]*model.User),
		roles: []model.Role{
			{SID: "RL_ADMIN", Name: constants.RoleChannelAdmin},
			{SID: "RL_USER", Name: constants.RoleChannelUser},
		},
		messages:       make(map[string]*model.Message),
		injectedErrors: make(map[string]error),
	}
}

// SetErrorFor injects an error for the named operation. An empty error map
// means all operations succeed.
func (m *MockChatProvider) SetErrorFor(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.injectedErrors[operation] = err
}

// ClearErrors removes all injected errors.
func (m *MockChatProvider) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.injectedErrors = make(map[string]error)
}

func (m *MockChatProvider) injectedError(operation string) error {
	return m.injectedErrors[operation]
}

// GetChannel retrieves a channel by SID
func (m *MockChatProvider) GetChannel(ctx context.Context, channelSID string) (*model.Channel, error) {
	slog.DebugContext(ctx, "mock provider: getting channel", "channel_sid", channelSID)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedError("GetChannel"); err != nil {
		return nil, err
	}

	channel, exists := m.channels[channelSID]
	if !exists {
		return nil, errors.NewNotFound(fmt.Sprintf("channel %s not found", channelSID))
	}

	channelCopy := *channel
	return &channelCopy, nil
}

// FindChannelByUniqueKey returns the channel with the exact unique key
func (m *MockChatProvider) FindChannelByUniqueKey(ctx context.Context, uniqueKey string) (*model.Channel, error) {
	slog.DebugContext(ctx, "mock provider: finding channel by unique key")

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedError("FindChannelByUniqueKey"); err != nil {
		return nil, err
	}

	sid, exists := m.channelsByKey[uniqueKey]
	if !exists {
		return nil, errors.NewNotFound("no channel exists for the unique key")
	}

	channelCopy := *m.channels[sid]
	return &channelCopy, nil
}

// CreateChannel creates a channel with a generated SID
func (m *MockChatProvider) CreateChannel(ctx context.Context, channel *model.Channel) (*model.Channel, error) {
	slog.DebugContext(ctx, "mock provider: creating channel", "friendly_name", channel.FriendlyName)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injectedError("CreateChannel"); err != nil {
		return nil, err
	}

	if _, exists := m.channelsByKey[channel.UniqueKey]; exists {
		return nil, errors.NewConflict("channel with same unique key already exists")
	}

	channelCopy := *channel
	channelCopy.SID = "CH_" + uuid.New().String()

	m.channels[channelCopy.SID] = &channelCopy
	m.channelsByKey[channelCopy.UniqueKey] = channelCopy.SID

	resultCopy := channelCopy
	return &resultCopy, nil
}

// DeleteChannel removes a channel and records the deletion for test assertions
func (m *MockChatProvider) DeleteChannel(ctx context.Context, channelSID string) error {
	slog.DebugContext(ctx, "mock provider: deleting channel", "channel_sid", channelSID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injectedError("DeleteChannel"); err != nil {
		return err
	}

	channel, exists := m.channels[channelSID]
	if !exists {
		return errors.NewNotFound(fmt.Sprintf("channel %s not found", channelSID))
	}

	delete(m.channelsByKey, channel.UniqueKey)
	delete(m.channels, channelSID)
	delete(m.members, channelSID)
	delete(m.invites, channelSID)
	m.deletedChannels = append(m.deletedChannels, channelSID)

	return nil
}

// DeletedChannels returns the SIDs of every channel deleted so far.
func (m *MockChatProvider) DeletedChannels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	deleted := make([]string, len(m.deletedChannels))
	copy(deleted, m.deletedChannels)
	return deleted
}

// ListMembers returns the channel's active memberships
func (m *MockChatProvider) ListMembers(ctx context.Context, channelSID string) ([]model.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedError("ListMembers"); err != nil {
		return nil, err
	}

	members := make([]model.Membership, len(m.members[channelSID]))
	copy(members, m.members[channelSID])
	return members, nil
}

// CreateMember adds an identity to a channel with the given role
func (m *MockChatProvider) CreateMember(ctx context.Context, channelSID, identity, roleSID string) (*model.Membership, error) {
	slog.DebugContext(ctx, "mock provider: adding member", "channel_sid", channelSID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injectedError("CreateMember"); err != nil {
		return nil, err
	}

	if _, exists := m.channels[channelSID]; !exists {
		return nil, errors.NewNotFound(fmt.Sprintf("channel %s not found", channelSID))
	}

	for _, member := range m.members[channelSID] {
		if member.Identity == identity {
			return nil, errors.NewConflict("identity is already a member of the channel")
		}
	}

	membership := model.Membership{
		SID:        "MB_" + uuid.New().String(),
		ChannelSID: channelSID,
		Identity:   identity,
		RoleSID:    roleSID,
	}
	m.members[channelSID] = append(m.members[channelSID], membership)

	return &membership, nil
}

// ListInvites returns the channel's pending invitations
func (m *MockChatProvider) ListInvites(ctx context.Context, channelSID string) ([]model.Invitation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedError("ListInvites"); err != nil {
		return nil, err
	}

	invites := make([]model.Invitation, len(m.invites[channelSID]))
	copy(invites, m.invites[channelSID])
	return invites, nil
}

// CreateInvite invites an identity to a channel with the given role
func (m *MockChatProvider) CreateInvite(ctx context.Context, channelSID, identity, roleSID string) (*model.Invitation, error) {
	slog.DebugContext(ctx, "mock provider: inviting member", "channel_sid", channelSID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injectedError("CreateInvite"); err != nil {
		return nil, err
	}

	if _, exists := m.channels[channelSID]; !exists {
		return nil, errors.NewNotFound(fmt.Sprintf("channel %s not found", channelSID))
	}

	for _, invite := range m.invites[channelSID] {
		if invite.Identity == identity {
			return nil, errors.NewConflict("identity is already invited to the channel")
		}
	}

	invitation := model.Invitation{
		SID:        "IN_" + uuid.New().String(),
		ChannelSID: channelSID,
		Identity:   identity,
		RoleSID:    roleSID,
	}
	m.invites[channelSID] = append(m.invites[channelSID], invitation)

	return &invitation, nil
}

// ListRoles returns the provider service's role templates
func (m *MockChatProvider) ListRoles(ctx context.Context) ([]model.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedError("ListRoles"); err != nil {
		return nil, err
	}

	roles := make([]model.Role, len(m.roles))
	copy(roles, m.roles)
	return roles, nil
}

// SetRoles replaces the role templates (used to exercise startup failures).
func (m *MockChatProvider) SetRoles(roles []model.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles = make([]model.Role, len(roles))
	copy(m.roles, roles)
}

// GetUser retrieves a provider user record by identity
func (m *MockChatProvider) GetUser(ctx context.Context, identity string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedError("GetUser"); err != nil {
		return nil, err
	}

	user, exists := m.users[identity]
	if !exists {
		return nil, errors.NewNotFound(fmt.Sprintf("user %s not found", identity))
	}

	userCopy := *user
	return &userCopy, nil
}

// CreateUser creates a provider user record keyed by identity
func (m *MockChatProvider) CreateUser(ctx context.Context, identity, friendlyName string) (*model.User, error) {
	slog.DebugContext(ctx, "mock provider: creating user")

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injectedError("CreateUser"); err != nil {
		return nil, err
	}

	if _, exists := m.users[identity]; exists {
		return nil, errors.NewConflict(fmt.Sprintf("user %s already exists", identity))
	}

	user := &model.User{
		Identity:     identity,
		FriendlyName: friendlyName,
	}
	m.users[identity] = user

	userCopy := *user
	return &userCopy, nil
}

// AddMessage seeds a message for reaction tests and returns its SID.
func (m *MockChatProvider) AddMessage(channelSID string, attrs model.MessageAttributes) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sid := "MS_" + uuid.New().String()
	m.messages[channelSID+"/"+sid] = &model.Message{
		SID:        sid,
		ChannelSID: channelSID,
		Attributes: attrs,
	}
	return sid
}

// GetMessage fetches a message including its attribute bag
func (m *MockChatProvider) GetMessage(ctx context.Context, channelSID, messageSID string) (*model.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedError("GetMessage"); err != nil {
		return nil, err
	}

	message, exists := m.messages[channelSID+"/"+messageSID]
	if !exists {
		return nil, errors.NewNotFound(fmt.Sprintf("message %s not found", messageSID))
	}

	messageCopy := *message
	return &messageCopy, nil
}

// UpdateMessageAttributes replaces a message's attribute bag
func (m *MockChatProvider) UpdateMessageAttributes(ctx context.Context, channelSID, messageSID string, attrs model.MessageAttributes) error {
	slog.DebugContext(ctx, "mock provider: updating message attributes",
		"channel_sid", channelSID, "message_sid", messageSID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injectedError("UpdateMessageAttributes"); err != nil {
		return err
	}

	message, exists := m.messages[channelSID+"/"+messageSID]
	if !exists {
		return errors.NewNotFound(fmt.Sprintf("message %s not found", messageSID))
	}

	if _, err := attrs.Encode(); err != nil {
		return err
	}

	message.Attributes = attrs
	return nil
}

// IsReady always reports ready
func (m *MockChatProvider) IsReady(ctx context.Context) error {
	return nil
}

// interface guard
var _ port.ChatProvider = (*MockChatProvider)(nil)
