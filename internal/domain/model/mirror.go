// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"time"

	"github.com/openconfhq/conference-chat-service/pkg/constants"
)

// MirrorRecord is the secondary-store representation of a channel, used by
// the rest of the platform for querying and permissions. Exactly one record
// exists per (conference, channel SID) pair.
type MirrorRecord struct {
	UID           string        `json:"uid"`
	ConferenceUID string        `json:"conference_uid"`
	ChannelSID    string        `json:"channel_sid"`
	Name          string        `json:"name"`
	AutoWatch     bool          `json:"auto_watch"`
	Mirrored      bool          `json:"mirrored"`
	Private       bool          `json:"private"`
	ACL           []AccessGrant `json:"acl"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// AccessGrant is one entry of a mirror record's access-control list. Kind
// distinguishes role-wide grants from per-account grants.
type AccessGrant struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Read    bool   `json:"read"`
	Write   bool   `json:"write"`
}

// BuildLookupKey returns the KV constraint key enforcing uniqueness of the
// (conference, channel SID) pair.
func (m *MirrorRecord) BuildLookupKey() string {
	return fmt.Sprintf(constants.KVLookupChatMirrorPrefix, m.ConferenceUID, m.ChannelSID)
}

// RoleGrant builds a role-wide access grant.
func RoleGrant(subject string, read, write bool) AccessGrant {
	return AccessGrant{Kind: constants.GrantKindRole, Subject: subject, Read: read, Write: write}
}

// AccountGrant builds a per-account access grant.
func AccountGrant(accountUID string, read, write bool) AccessGrant {
	return AccessGrant{Kind: constants.GrantKindAccount, Subject: accountUID, Read: read, Write: write}
}
