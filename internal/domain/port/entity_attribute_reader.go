// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
)

// EntityAttributeReader defines read operations for registrant attributes
// owned by the platform's registry services.
type EntityAttributeReader interface {
	// RegistrantPrivilege resolves an identity's organizational privilege
	// within a conference.
	RegistrantPrivilege(ctx context.Context, conferenceUID, identity string) (model.Privilege, error)

	// RegistrantProfile resolves an identity's profile within a conference,
	// or NotFound when the profile was deleted after invitation.
	RegistrantProfile(ctx context.Context, conferenceUID, identity string) (*model.Profile, error)
}
