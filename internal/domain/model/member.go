// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package model

// Membership is an active relation between a channel and an identity.
// A user is never simultaneously an active member and a pending invitee
// of the same channel; the provider enforces that invariant.
type Membership struct {
	SID        string `json:"sid"`
	ChannelSID string `json:"channel_sid"`
	Identity   string `json:"identity"`
	RoleSID    string `json:"role_sid"`
}

// Invitation is a pending-access relation between a channel and an
// identity. The provider promotes it to a membership when the invitee
// accepts; this service never does.
type Invitation struct {
	SID        string `json:"sid"`
	ChannelSID string `json:"channel_sid"`
	Identity   string `json:"identity"`
	RoleSID    string `json:"role_sid"`
}

// User is a provider-level user record. Every channel participant must
// exist as a provider user before membership or invitation mutations.
type User struct {
	Identity     string `json:"identity"`
	FriendlyName string `json:"friendly_name"`
}
