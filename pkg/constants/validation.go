// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package constants

import (
	"fmt"

	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// Chat visibility modes
const (
	// ChatModePublic marks a channel readable by every conference attendee
	ChatModePublic = "public"

	// ChatModePrivate marks a channel readable only by members and invitees
	ChatModePrivate = "private"
)

// Validation limits
const (
	// MinTitleLength is the minimum trimmed length of a group chat title
	MinTitleLength = 5

	// UniqueKeyMaxLength is the provider's ceiling on channel unique keys
	UniqueKeyMaxLength = 64

	// MaxAttributeBytes is the provider's ceiling on a serialized attribute bag
	MaxAttributeBytes = 4096
)

// DM key composition
const (
	// DMKeySeparator joins the two participant identities of a DM unique key
	DMKeySeparator = "~"

	// SystemIdentity is the sentinel creator identity for DM channels
	SystemIdentity = "system"
)

// ValidateChatMode validates that the mode is one of the allowed values
func ValidateChatMode(mode string) error {
	switch mode {
	case ChatModePublic, ChatModePrivate:
		return nil
	case "":
		return errors.NewValidation("mode is required")
	default:
		return errors.NewValidation(
			fmt.Sprintf("unsupported mode: %s (must be public or private)", mode))
	}
}
