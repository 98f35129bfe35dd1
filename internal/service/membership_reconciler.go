// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	stderrors "errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
	"github.com/openconfhq/conference-chat-service/pkg/utils"
)

// reconcileMembership brings the channel's membership and invitation state to
// the desired participant set: the requester holds an active membership and
// every target not already present receives an invitation.
//
// Idempotent: current member and invite lists are fetched first and diffed
// against the targets, so re-invoking with the same set performs no redundant
// provider mutation.
func (o *chatWriterOrchestrator) reconcileMembership(ctx context.Context, channel *model.Channel, requester string, targets []string, isDM bool, conferenceUID string) error {
	slog.DebugContext(ctx, "reconciling channel membership",
		"channel_sid", channel.SID,
		"target_count", len(targets),
		"is_dm", isDM,
	)

	participants := dedupeParticipants(requester, targets)

	if err := o.ensureUsersExist(ctx, conferenceUID, participants); err != nil {
		return err
	}

	// Member and invite listings are independent reads
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
		slog.ErrorContext(ctx, "failed to fetch channel membership state",
			"error", err,
			"channel_sid", channel.SID,
		)
		return err
	}

	present := make(map[string]bool, len(members)+len(invites))
	memberSet := make(map[string]bool, len(members))
	for _, member := range members {
		present[member.Identity] = true
		memberSet[member.Identity] = true
	}
	for _, invite := range invites {
		present[invite.Identity] = true
	}

	// The requester joins as an active member, never as an invitee
	if !memberSet[requester] {
		roleSID, err := o.participantRoleSID(ctx, conferenceUID, requester, true, isDM)
		if err != nil {
			return err
		}
		err = utils.RetryWithExponentialBackoff(ctx, o.retry, func() error {
			_, errCreate := o.provider.CreateMember(ctx, channel.SID, requester, roleSID)
			if isConflict(errCreate) {
				// Already a member or a pending invitee of the channel
				return nil
			}
			return errCreate
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create requester membership",
				"error", err,
				"channel_sid", channel.SID,
			)
			return err
		}
	}

	// Invitation creation per target is independent
	inviteGroup, inviteCtx := errgroup.WithContext(ctx)
	for _, target := range targets {
		if target == requester || present[target] {
			continue
		}
		target := target
		inviteGroup.Go(func() error {
			roleSID, err := o.participantRoleSID(inviteCtx, conferenceUID, target, false, isDM)
			if err != nil {
				return err
			}
			return utils.RetryWithExponentialBackoff(inviteCtx, o.retry, func() error {
				_, errInvite := o.provider.CreateInvite(inviteCtx, channel.SID, target, roleSID)
				if isConflict(errInvite) {
					return nil
				}
				return errInvite
			})
		})
	}
	if err := inviteGroup.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to create invitations",
			"error", err,
			"channel_sid", channel.SID,
		)
		return err
	}

	slog.DebugContext(ctx, "channel membership reconciled",
		"channel_sid", channel.SID,
	)

	return nil
}

// ensureUsersExist makes sure every participant has a provider-level user
// record before any membership or invitation mutation. Creation is on demand
// with the display name taken from the registrant's profile.
func (o *chatWriterOrchestrator) ensureUsersExist(ctx context.Context, conferenceUID string, participants []string) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, identity := range participants {
		identity := identity
		group.Go(func() error {
			_, err := o.provider.GetUser(groupCtx, identity)
			if err == nil {
				return nil
			}
			var notFound errors.NotFound
			if !stderrors.As(err, &notFound) {
				return err
			}

			displayName := identity
			if profile, errProfile := o.entityReader.RegistrantProfile(groupCtx, conferenceUID, identity); errProfile == nil {
				displayName = profile.DisplayName
			}

			return utils.RetryWithExponentialBackoff(groupCtx, o.retry, func() error {
				_, errCreate := o.provider.CreateUser(groupCtx, identity, displayName)
				if isConflict(errCreate) {
					// Lost a race with a concurrent request for the same identity
					return nil
				}
				return errCreate
			})
		})
	}

	if err := group.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to ensure provider users exist",
			"error", err,
			"conference_uid", conferenceUID,
		)
		return err
	}
	return nil
}

// participantRoleSID resolves the provider role template for one participant.
// The admin template applies to the requester of a non-DM channel and to any
// participant whose conference privilege is manager or admin.
func (o *chatWriterOrchestrator) participantRoleSID(ctx context.Context, conferenceUID, identity string, isRequester, isDM bool) (string, error) {
	if isRequester && !isDM {
		return o.roles.AdminRoleSID, nil
	}

	privilege, err := o.entityReader.RegistrantPrivilege(ctx, conferenceUID, identity)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve registrant privilege",
			"error", err,
			"conference_uid", conferenceUID,
		)
		return "", err
	}
	if privilege.IsElevated() {
		return o.roles.AdminRoleSID, nil
	}
	return o.roles.UserRoleSID, nil
}

// dedupeParticipants builds the participant list with the requester first and
// duplicates removed.
func dedupeParticipants(requester string, targets []string) []string {
	seen := map[string]bool{requester: true}
	participants := []string{requester}
	for _, target := range targets {
		if seen[target] {
			continue
		}
		seen[target] = true
		participants = append(participants, target)
	}
	return participants
}

func isConflict(err error) bool {
	if err == nil {
		return false
	}
	var conflict errors.Conflict
	return stderrors.As(err, &conflict)
}
