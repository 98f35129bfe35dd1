// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package constants

// Provider-side channel role template names. Both must exist in the provider
// service before any channel mutation; their absence is a startup failure.
const (
	// RoleChannelAdmin is the provider role template granting channel administration
	RoleChannelAdmin = "channel admin"

	// RoleChannelUser is the provider role template for ordinary channel members
	RoleChannelUser = "channel user"
)

// Conference-level privilege values resolved from the registry
const (
	// PrivilegeAttendee is an ordinary conference participant
	PrivilegeAttendee = "attendee"

	// PrivilegeManager is a conference manager
	PrivilegeManager = "manager"

	// PrivilegeAdmin is a conference administrator
	PrivilegeAdmin = "admin"
)

// Mirror-record access grant subjects
const (
	// GrantKindRole marks an access grant addressed to a conference role
	GrantKindRole = "role"

	// GrantKindAccount marks an access grant addressed to a single account
	GrantKindAccount = "account"

	// AttendeeRoleSubject is the role-based grant subject covering every attendee
	AttendeeRoleSubject = "attendee"
)
