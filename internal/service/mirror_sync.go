// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// syncMirror finds or creates the mirror record for the channel and rebuilds
// its access-control list. When explicitPrivate is nil the record's stored
// privacy flag is kept; the flag is otherwise overwritten.
//
// The ACL rebuild is a full recomputation from current provider state, never
// an incremental patch. That trades a little work for correctness under
// concurrent membership changes.
func (o *chatWriterOrchestrator) syncMirror(ctx context.Context, channel *model.Channel, conferenceUID string, isDM bool, explicitPrivate *bool) (*model.MirrorRecord, error) {
	slog.DebugContext(ctx, "synchronizing mirror record",
		"channel_sid", channel.SID,
		"conference_uid", conferenceUID,
	)

	record, revision, err := o.findOrCreateMirrorRecord(ctx, channel, conferenceUID, isDM, explicitPrivate)
	if err != nil {
		return nil, err
	}

	private := record.Private
	if explicitPrivate != nil {
		private = *explicitPrivate
	}

	acl, err := o.buildAccessList(ctx, channel, conferenceUID, private)
	if err != nil {
		return nil, err
	}

	record.Private = private
	record.Name = channel.FriendlyName
	record.ACL = acl

	updated, _, err := o.mirror.UpdateMirrorRecord(ctx, record.UID, record, revision)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update mirror record",
			"error", err,
			"mirror_uid", record.UID,
		)
		return nil, err
	}

	slog.DebugContext(ctx, "mirror record synchronized",
		"mirror_uid", updated.UID,
		"private", private,
		"acl_entries", len(acl),
	)

	return updated, nil
}

// findOrCreateMirrorRecord performs the idempotent upsert keyed by
// (conference, channel SID). A Conflict on creation means a concurrent
// request won the constraint-key race; the winner's record is fetched and
// reused.
func (o *chatWriterOrchestrator) findOrCreateMirrorRecord(ctx context.Context, channel *model.Channel, conferenceUID string, isDM bool, explicitPrivate *bool) (*model.MirrorRecord, uint64, error) {
	record, revision, err := o.mirror.GetMirrorRecordByChannel(ctx, conferenceUID, channel.SID)
	if err == nil {
		return record, revision, nil
	}

	var notFound errors.NotFound
	if !stderrors.As(err, &notFound) {
		slog.ErrorContext(ctx, "mirror record lookup failed",
			"error", err,
			"channel_sid", channel.SID,
		)
		return nil, 0, err
	}

	private := false
	if explicitPrivate != nil {
		private = *explicitPrivate
	}

	fresh := &model.MirrorRecord{
		UID:           uuid.New().String(),
		ConferenceUID: conferenceUID,
		ChannelSID:    channel.SID,
		Name:          channel.FriendlyName,
		AutoWatch:     isDM,
		Mirrored:      false,
		Private:       private,
		ACL:           []model.AccessGrant{},
	}

	created, revision, err := o.mirror.CreateMirrorRecord(ctx, fresh)
	if err == nil {
		slog.DebugContext(ctx, "mirror record created",
			"mirror_uid", created.UID,
			"channel_sid", channel.SID,
		)
		return created, revision, nil
	}

	if isConflict(err) {
		slog.DebugContext(ctx, "mirror record creation lost constraint race, reusing winner",
			"channel_sid", channel.SID,
		)
		return o.mirror.GetMirrorRecordByChannel(ctx, conferenceUID, channel.SID)
	}

	slog.ErrorContext(ctx, "failed to create mirror record",
		"error", err,
		"channel_sid", channel.SID,
	)
	return nil, 0, err
}

// buildAccessList rebuilds the access-control list from scratch. Conference
// managers and admins always hold read+write; a private channel additionally
// grants read per resolvable member/invitee account, a public channel grants
// read to the attendee role as a whole.
func (o *chatWriterOrchestrator) buildAccessList(ctx context.Context, channel *model.Channel, conferenceUID string, private bool) ([]model.AccessGrant, error) {
	acl := []model.AccessGrant{
		model.RoleGrant(constants.PrivilegeManager, true, true),
		model.RoleGrant(constants.PrivilegeAdmin, true, true),
	}

	if !private {
		acl = append(acl, model.RoleGrant(constants.AttendeeRoleSubject, true, false))
		return acl, nil
	}

	var (
		members []model.Membership
		invites []model.Invitation
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		members, err = o.provider.ListMembers(groupCtx, channel.SID)
		return err
	})
	group.Go(func() error {
		var err error
		invites, err = o.provider.ListInvites(groupCtx, channel.SID)
		return err
	})
	if err := group.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to fetch membership state for access list",
			"error", err,
			"channel_sid", channel.SID,
		)
		return nil, err
	}

	identities := make([]string, 0, len(members)+len(invites))
	seen := make(map[string]bool, len(members)+len(invites))
	for _, member := range members {
		if !seen[member.Identity] {
			seen[member.Identity] = true
			identities = append(identities, member.Identity)
		}
	}
	for _, invite := range invites {
		if !seen[invite.Identity] {
			seen[invite.Identity] = true
			identities = append(identities, invite.Identity)
		}
	}

	// Per-identity profile resolution is independent; a lookup miss drops
	// the identity from the list rather than failing the rebuild, since
	// provider identities may reference profiles deleted after invitation.
	var (
		mu       sync.Mutex
		accounts = make(map[string]bool, len(identities))
		grants   []model.AccessGrant
	)
	resolveGroup, resolveCtx := errgroup.WithContext(ctx)
	for _, identity := range identities {
		identity := identity
		resolveGroup.Go(func() error {
			profile, err := o.entityReader.RegistrantProfile(resolveCtx, conferenceUID, identity)
			if err != nil {
				var notFound errors.NotFound
				if stderrors.As(err, &notFound) {
					slog.DebugContext(resolveCtx, "skipping unresolvable identity in access list",
						"channel_sid", channel.SID,
					)
					return nil
				}
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if !accounts[profile.AccountUID] {
				accounts[profile.AccountUID] = true
				grants = append(grants, model.AccountGrant(profile.AccountUID, true, false))
			}
			return nil
		})
	}
	if err := resolveGroup.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to resolve profiles for access list",
			"error", err,
			"channel_sid", channel.SID,
		)
		return nil, err
	}

	return append(acl, grants...), nil
}
