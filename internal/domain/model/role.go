// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package model

import (
	"fmt"

	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// Role is a named provider-side permission template.
type Role struct {
	SID  string `json:"sid"`
	Name string `json:"name"`
}

// RoleSet holds the two role templates every channel mutation needs,
// resolved once at startup and reused for the lifetime of the service.
type RoleSet struct {
	AdminRoleSID string
	UserRoleSID  string
}

// NewRoleSet resolves the channel admin and channel user templates from the
// provider's role listing. A missing template is a fatal configuration
// error: the service must refuse to start rather than discover the gap
// inside request handling.
func NewRoleSet(roles []Role) (RoleSet, error) {
	var set RoleSet
	for _, role := range roles {
		switch role.Name {
		case constants.RoleChannelAdmin:
			set.AdminRoleSID = role.SID
		case constants.RoleChannelUser:
			set.UserRoleSID = role.SID
		}
	}
	if set.AdminRoleSID == "" {
		return set, errors.NewUnexpected(
			fmt.Sprintf("provider service is missing the %q role template", constants.RoleChannelAdmin))
	}
	if set.UserRoleSID == "" {
		return set, errors.NewUnexpected(
			fmt.Sprintf("provider service is missing the %q role template", constants.RoleChannelUser))
	}
	return set, nil
}

// Privilege is a registrant's organizational privilege within a conference.
type Privilege string

// Privilege values mirror pkg/constants.
const (
	PrivilegeAttendee Privilege = constants.PrivilegeAttendee
	PrivilegeManager  Privilege = constants.PrivilegeManager
	PrivilegeAdmin    Privilege = constants.PrivilegeAdmin
)

// IsElevated reports whether the privilege grants channel administration
// regardless of requester status.
func (p Privilege) IsElevated() bool {
	return p == PrivilegeManager || p == PrivilegeAdmin
}
