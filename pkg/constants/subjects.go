// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package constants

// NATS messaging subjects
const (
	// RegistrantGetPrivilegeSubject is the NATS subject for resolving a
	// registrant's organizational privilege within a conference.
	RegistrantGetPrivilegeSubject = "openconf.registry-api.get_privilege"

	// RegistrantGetProfileSubject is the NATS subject for resolving a
	// registrant's profile (display name, account UID) within a conference.
	RegistrantGetProfileSubject = "openconf.registry-api.get_profile"
)

// ChatAPIQueue is the NATS queue group for chat service subscriptions
const ChatAPIQueue = "openconf-chat-api"
