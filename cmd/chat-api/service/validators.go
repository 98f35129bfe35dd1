// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strings"

	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// cleanInviteList trims, deduplicates, and strips the requester from the
// invitee list. Order is preserved.
func cleanInviteList(requester string, invite []string) []string {
	seen := make(map[string]bool, len(invite))
	cleaned := make([]string, 0, len(invite))
	for _, identity := range invite {
		identity = strings.TrimSpace(identity)
		if identity == "" || identity == requester || seen[identity] {
			continue
		}
		seen[identity] = true
		cleaned = append(cleaned, identity)
	}
	return cleaned
}

// validateCreateChatPayload enforces the structural rules of a create-chat
// request and returns the cleaned invitee list. All checks run before any
// side-effecting call.
func validateCreateChatPayload(requester string, payload *CreateChatPayload) ([]string, error) {
	if payload == nil {
		return nil, errors.NewValidation("request body is required")
	}

	if err := constants.ValidateChatMode(payload.Mode); err != nil {
		return nil, err
	}

	invite := cleanInviteList(requester, payload.Invite)
	if len(invite) == 0 {
		return nil, errors.NewValidation("invite must contain at least one identity other than the requester")
	}

	// A DM takes its display name from the unique key; every other shape
	// needs a usable title.
	isDM := payload.Mode == constants.ChatModePrivate && len(invite) == 1 && !payload.ForVideoRoom
	if !isDM {
		title := strings.TrimSpace(payload.Title)
		if len(title) < constants.MinTitleLength {
			return nil, errors.NewValidation(
				fmt.Sprintf("title must be at least %d characters", constants.MinTitleLength))
		}
	}

	return invite, nil
}

// validateInvitePayload enforces the structural rules of an invite request
// and returns the cleaned target list.
func validateInvitePayload(requester, channelSID string, payload *InviteToChatPayload) ([]string, error) {
	if payload == nil {
		return nil, errors.NewValidation("request body is required")
	}
	if strings.TrimSpace(channelSID) == "" {
		return nil, errors.NewValidation("channel SID is required")
	}

	targets := cleanInviteList(requester, payload.TargetIdentities)
	if len(targets) == 0 {
		return nil, errors.NewValidation("targetIdentities must contain at least one identity other than the requester")
	}

	return targets, nil
}

// validateReactionParams enforces the structural rules of a reaction request.
func validateReactionParams(channelSID, messageSID string, payload *ReactionPayload) error {
	if strings.TrimSpace(channelSID) == "" {
		return errors.NewValidation("channel SID is required")
	}
	if strings.TrimSpace(messageSID) == "" {
		return errors.NewValidation("message SID is required")
	}
	if payload == nil || strings.TrimSpace(payload.Reaction) == "" {
		return errors.NewValidation("reaction is required")
	}
	return nil
}
