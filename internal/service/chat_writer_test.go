// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/internal/infrastructure/mock"
	"github.com/openconfhq/conference-chat-service/pkg/constants"
	errs "github.com/openconfhq/conference-chat-service/pkg/errors"
	"github.com/openconfhq/conference-chat-service/pkg/utils"
)

type testFixture struct {
	provider *mock.MockChatProvider
	mirror   *mock.MockMirrorStore
	reader   *mock.MockEntityAttributeReader
	writer   ChatWriter
}

func newTestFixture() *testFixture {
	provider := mock.NewMockChatProvider()
	mirror := mock.NewMockMirrorStore()
	reader := mock.NewMockEntityAttributeReader()

	writer := NewChatWriterOrchestrator(
		WithChatProvider(provider),
		WithMirrorStore(mirror),
		WithEntityAttributeReader(reader),
		WithRoleSet(model.RoleSet{AdminRoleSID: "RL_ADMIN", UserRoleSID: "RL_USER"}),
		WithRetryConfig(utils.NewRetryConfig(2, time.Millisecond, 5*time.Millisecond)),
	)

	return &testFixture{
		provider: provider,
		mirror:   mirror,
		reader:   reader,
		writer:   writer,
	}
}

func seedProfiles(fixture *testFixture, conferenceUID string, identities ...string) {
	for _, identity := range identities {
		fixture.reader.SetProfile(conferenceUID, &model.Profile{
			Identity:    identity,
			DisplayName: "Display " + identity,
			AccountUID:  "acct-" + identity,
		})
	}
}

func TestChatWriterOrchestrator_CreateChat_DMDeduplication(t *testing.T) {
	fixture := newTestFixture()
	ctx := context.Background()
	seedProfiles(fixture, "conf-1", "alice", "bob")

	first, err := fixture.writer.CreateChat(ctx, &CreateChatRequest{
		Identity:      "alice",
		ConferenceUID: "conf-1",
		Invite:        []string{"bob"},
		Mode:          constants.ChatModePrivate,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ChannelSID)
	require.NotEmpty(t, first.TextChatID)

	// Second call with the same pair reuses the channel
	second, err := fixture.writer.CreateChat(ctx, &CreateChatRequest{
		Identity:      "alice",
		ConferenceUID: "conf-1",
		Invite:        []string{"bob"},
		Mode:          constants.ChatModePrivate,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ChannelSID, second.ChannelSID)
	assert.Equal(t, first.TextChatID, second.TextChatID)
	assert.Equal(t, 1, fixture.mirror.RecordCount())
}

func TestChatWriterOrchestrator_CreateChat_DMSymmetry(t *testing.T) {
	fixture := newTestFixture()
	ctx := context.Background()
	seedProfiles(fixture, "conf-1", "alice", "bob")

	forward, err := fixture.writer.CreateChat(ctx, &CreateChatRequest{
		Identity:      "alice",
		ConferenceUID: "conf-1",
		Invite:        []string{"bob"},
		Mode:          constants.ChatModePrivate,
	})
	require.NoError(t, err)

	// bob inviting alice must resolve to the same channel
	reverse, err := fixture.writer.CreateChat(ctx, &CreateChatRequest{
		Identity:      "bob",
		ConferenceUID: "conf-1",
		Invite:        []string{"alice"},
		Mode:          constants.ChatModePrivate,
	})
	require.NoError(t, err)
	assert.Equal(t, forward.ChannelSID, reverse.ChannelSID)
}

func TestChatWriterOrchestrator_CreateChat_GroupsNeverDeduplicated(t *testing.T) {
	fixture := newTestFixture()
	ctx := context.Background()
	seedProfiles(fixture, "conf-1", "alice", "bob", "carol")

	request := &CreateChatRequest{
		Identity:      "alice",
		ConferenceUID: "conf-1",
		Invite:        []string{"bob", "carol"},
		Mode:          constants.ChatModePublic,
		Title:         "planning sync",
	}

	first, err := fixture.writer.CreateChat(ctx, request)
	require.NoError(t, err)

	second, err := fixture.writer.CreateChat(ctx, request)
	require.NoError(t, err)

	assert.NotEqual(t, first.ChannelSID, second.ChannelSID)
	assert.Equal(t, 2, fixture.mirror.RecordCount())
}

func TestChatWriterOrchestrator_CreateChat_ForVideoRoomSuppressesDM(t *testing.T) {
	fixture := newTestFixture()
	ctx := context.Background()
	seedProfiles(fixture, "conf-1", "alice", "bob")

	request := &CreateChatRequest{
		Identity:      "alice",
		ConferenceUID: "conf-1",
		Invite:        []string{"bob"},
		Mode:          constants.ChatModePrivate,
		Title:         "video room chat",
		ForVideoRoom:  true,
	}

	first, err := fixture.writer.CreateChat(ctx, request)
	require.NoError(t, err)

	// Suppressed DM behaves like a group: no deduplication
	second, err := fixture.writer.CreateChat(ctx, request)
	require.NoError(t, err)
	assert.NotEqual(t, first.ChannelSID, second.ChannelSID)
}

func TestChatWriterOrchestrator_CreateChat_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		request *CreateChatRequest
	}{
		{
			name: "empty invitee list",
			request: &CreateChatRequest{
				Identity:      "alice",
				ConferenceUID: "conf-1",
				Invite:        []string{},
				Mode:          constants.ChatModePrivate,
			},
		},
		{
			name: "unsupported mode",
			request: &CreateChatRequest{
				Identity:      "alice",
				ConferenceUID: "conf-1",
				Invite:        []string{"bob"},
				Mode:          "foo",
			},
		},
		{
			name: "missing mode",
			request: &CreateChatRequest{
				Identity:      "alice",
				ConferenceUID: "conf-1",
				Invite:        []string{"bob"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := newTestFixture()

			result, err := fixture.writer.CreateChat(context.Background(), tc.request)
			require.Error(t, err)
			assert.Nil(t, result)

			var validationErr errs.Validation
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestChatWriterOrchestrator_CreateChat_RollbackDeletesNewChannel(t *testing.T) {
	fixture := newTestFixture()
	ctx := context.Background()
	seedProfiles(fixture, "conf-1", "alice", "bob", "carol")

	fixture.provider.SetErrorFor("CreateInvite", errs.NewServiceUnavailable("provider down"))

	result, err := fixture.writer.CreateChat(ctx, &CreateChatRequest{
		Identity:      "alice",
		ConferenceUID: "conf-1",
		Invite:        []string{"bob", "carol"},
		Mode:          constants.ChatModePublic,
		Title:         "doomed group",
	})
	require.Error(t, err)
	assert.Nil(t, result)

	deleted := fixture.provider.DeletedChannels()
	require.Len(t, deleted, 1)

	// The channel must no longer exist
	_, errGet := fixture.provider.GetChannel(ctx, deleted[0])
	var notFound errs.NotFound
	assert.ErrorAs(t, errGet, &notFound)

	// No mirror record was created for the rolled-back channel
	assert.Equal(t, 0, fixture.mirror.RecordCount())
}

func TestChatWriterOrchestrator_CreateChat_NoRollbackForExistingChannel(t *testing.T) {
	fixture := newTestFixture()
	ctx := context.Background()
	seedProfiles(fixture, "conf-1", "alice", "bob")

	first, err := fixture.writer.CreateChat(ctx, &CreateChatRequest{
		Identity:      "alice",
		ConferenceUID: "conf-1",
		Invite:        []string{"bob"},
		Mode:          constants.ChatModePrivate,
	})
	require.NoError(t, err)

	// Second resolution reuses the channel; a reconcile failure must not
	// delete the pre-existing channel
	fixture.provider.SetErrorFor("ListMembers", errs.NewServiceUnavailable("provider down"))

	_, err = fixture.writer.CreateChat(ctx, &CreateChatRequest{
		Identity:      "bob",
		ConferenceUID: "conf-1",
		Invite:        []string{"alice"},
		Mode:          constants.ChatModePrivate,
	})
	require.Error(t, err)

	assert.Empty(t, fixture.provider.DeletedChannels())

	fixture.provider.ClearErrors()
	_, errGet := fixture.provider.GetChannel(ctx, first.ChannelSID)
	assert.NoError(t, errGet)
}

func TestChatWriterOrchestrator_CreateChat_MembershipIdempotence(t *testing.T) {
	fixture := newTestFixture()
	ctx := context.Background()
	seedProfiles(fixture, "conf-1", "alice", "bob")

	request := &CreateChatRequest{
		Identity:      "alice",
		ConferenceUID: "conf-1",
		Invite:        []string{"bob"},
		Mode:          constants.ChatModePrivate,
	}

	first, err := fixture.writer.CreateChat(ctx, request)
	require.NoError(t, err)

	_, err = fixture.writer.CreateChat(ctx, request)
	require.NoError(t, err)

	members, err := fixture.provider.ListMembers(ctx, first.ChannelSID)
	require.NoError(t, err)
	invites, err := fixture.provider.ListInvites(ctx, first.ChannelSID)
	require.NoError(t, err)

	assert.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Identity)
	assert.Len(t, invites, 1)
	assert.Equal(t, "bob", invites[0].Identity)
}

func TestChatWriterOrchestrator_CreateChat_RoleAssignment(t *testing.T) {
	testCases := []struct {
		name              string
		mode              string
		title             string
		invite            []string
		privileges        map[string]model.Privilege
		wantRequesterRole string
		wantInviteeRoles  map[string]string
	}{
		{
			name:              "group requester gets admin role",
			mode:              constants.ChatModePublic,
			title:             "general topic",
			invite:            []string{"bob"},
			wantRequesterRole: "RL_ADMIN",
			wantInviteeRoles:  map[string]string{"bob": "RL_USER"},
		},
		{
			name:              "DM participants default to user role",
			mode:              constants.ChatModePrivate,
			invite:            []string{"bob"},
			wantRequesterRole: "RL_USER",
			wantInviteeRoles:  map[string]string{"bob": "RL_USER"},
		},
		{
			name:   "elevated privilege overrides user role in DM",
			mode:   constants.ChatModePrivate,
			invite: []string{"bob"},
			privileges: map[string]model.Privilege{
				"alice": model.PrivilegeManager,
				"bob":   model.PrivilegeAdmin,
			},
			wantRequesterRole: "RL_ADMIN",
			wantInviteeRoles:  map[string]string{"bob": "RL_ADMIN"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := newTestFixture()
			ctx := context.Background()
			seedProfiles(fixture, "conf-1", append([]string{"alice"}, tc.invite...)...)
			for identity, privilege := range tc.privileges {
				fixture.reader.SetPrivilege("conf-1", identity, privilege)
			}

			result, err := fixture.writer.CreateChat(ctx, &CreateChatRequest{
				Identity:      "alice",
				ConferenceUID: "conf-1",
				Invite:        tc.invite,
				Mode:          tc.mode,
				Title:         tc.title,
			})
			require.NoError(t, err)

			members, err := fixture.provider.ListMembers(ctx, result.ChannelSID)
			require.NoError(t, err)
			require.Len(t, members, 1)
			assert.Equal(t, tc.wantRequesterRole, members[0].RoleSID)

			invites, err := fixture.provider.ListInvites(ctx, result.ChannelSID)
			require.NoError(t, err)
			for _, invite := range invites {
				want, ok := tc.wantInviteeRoles[invite.Identity]
				require.True(t, ok, "unexpected invitee %s", invite.Identity)
				assert.Equal(t, want, invite.RoleSID)
			}
		})
	}
}

func TestChatWriterOrchestrator_InviteToChat(t *testing.T) {
	testCases := []struct {
		name        string
		setup       func(fixture *testFixture, ctx context.Context) string
		requester   string
		targets     []string
		expectError func(t *testing.T, err error)
	}{
		{
			name: "DM channels reject additional invitees",
			setup: func(fixture *testFixture, ctx context.Context) string {
				seedProfiles(fixture, "conf-1", "alice", "bob")
				result, err := fixture.writer.CreateChat(ctx, &CreateChatRequest{
					Identity:      "alice",
					ConferenceUID: "conf-1",
					Invite:        []string{"bob"},
					Mode:          constants.ChatModePrivate,
				})
				require.NoError(t, err)
				return result.ChannelSID
			},
			requester: "alice",
			targets:   []string{"carol"},
			expectError: func(t *testing.T, err error) {
				var validationErr errs.Validation
				assert.ErrorAs(t, err, &validationErr)
			},
		},
		{
			name: "non-member requester is rejected",
			setup: func(fixture *testFixture, ctx context.Context) string {
				seedProfiles(fixture, "conf-1", "alice", "bob", "mallory")
				result, err := fixture.writer.CreateChat(ctx, &CreateChatRequest{
					Identity:      "alice",
					ConferenceUID: "conf-1",
					Invite:        []string{"bob"},
					Mode:          constants.ChatModePublic,
					Title:         "team updates",
				})
				require.NoError(t, err)
				return result.ChannelSID
			},
			requester: "mallory",
			targets:   []string{"bob"},
			expectError: func(t *testing.T, err error) {
				var forbiddenErr errs.Forbidden
				assert.ErrorAs(t, err, &forbiddenErr)
			},
		},
		{
			name: "unknown channel",
			setup: func(fixture *testFixture, ctx context.Context) string {
				return "CH_missing"
			},
			requester: "alice",
			targets:   []string{"bob"},
			expectError: func(t *testing.T, err error) {
				var notFoundErr errs.NotFound
				assert.ErrorAs(t, err, &notFoundErr)
			},
		},
		{
			name: "empty target list",
			setup: func(fixture *testFixture, ctx context.Context) string {
				return "CH_any"
			},
			requester: "alice",
			targets:   []string{},
			expectError: func(t *testing.T, err error) {
				var validationErr errs.Validation
				assert.ErrorAs(t, err, &validationErr)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := newTestFixture()
			ctx := context.Background()
			channelSID := tc.setup(fixture, ctx)

			err := fixture.writer.InviteToChat(ctx, &InviteToChatRequest{
				Identity:         tc.requester,
				ConferenceUID:    "conf-1",
				ChannelSID:       channelSID,
				TargetIdentities: tc.targets,
			})
			require.Error(t, err)
			tc.expectError(t, err)
		})
	}
}

func TestChatWriterOrchestrator_InviteToChat_InvitesNewTargets(t *testing.T) {
	fixture := newTestFixture()
	ctx := context.Background()
	seedProfiles(fixture, "conf-1", "alice", "bob", "carol", "dave")

	result, err := fixture.writer.CreateChat(ctx, &CreateChatRequest{
		Identity:      "alice",
		ConferenceUID: "conf-1",
		Invite:        []string{"bob"},
		Mode:          constants.ChatModePublic,
		Title:         "release planning",
	})
	require.NoError(t, err)

	err = fixture.writer.InviteToChat(ctx, &InviteToChatRequest{
		Identity:         "alice",
		ConferenceUID:    "conf-1",
		ChannelSID:       result.ChannelSID,
		TargetIdentities: []string{"bob", "carol", "dave"},
	})
	require.NoError(t, err)

	invites, err := fixture.provider.ListInvites(ctx, result.ChannelSID)
	require.NoError(t, err)

	invited := make(map[string]bool, len(invites))
	for _, invite := range invites {
		invited[invite.Identity] = true
	}
	// bob was already invited by the create call; carol and dave are new
	assert.Len(t, invites, 3)
	assert.True(t, invited["bob"])
	assert.True(t, invited["carol"])
	assert.True(t, invited["dave"])
}
