// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package chatprovider

// ChannelObject is the provider's wire representation of a channel.
// Attributes is the raw JSON attribute bag, bounded at 4KiB provider-side.
type ChannelObject struct {
	SID          string `json:"sid"`
	UniqueName   string `json:"unique_name"`
	FriendlyName string `json:"friendly_name"`
	CreatedBy    string `json:"created_by"`
	Attributes   string `json:"attributes"`
}

// ChannelsPage is one page of a channel listing.
type ChannelsPage struct {
	Channels []ChannelObject `json:"channels"`
}

// MemberObject is the provider's wire representation of a membership.
type MemberObject struct {
	SID        string `json:"sid"`
	ChannelSID string `json:"channel_sid"`
	Identity   string `json:"identity"`
	RoleSID    string `json:"role_sid"`
}

// MembersPage is one page of a member listing.
type MembersPage struct {
	Members []MemberObject `json:"members"`
}

// InviteObject is the provider's wire representation of an invitation.
type InviteObject struct {
	SID        string `json:"sid"`
	ChannelSID string `json:"channel_sid"`
	Identity   string `json:"identity"`
	RoleSID    string `json:"role_sid"`
}

// InvitesPage is one page of an invite listing.
type InvitesPage struct {
	Invites []InviteObject `json:"invites"`
}

// RoleObject is the provider's wire representation of a role template.
type RoleObject struct {
	SID          string `json:"sid"`
	FriendlyName string `json:"friendly_name"`
	Type         string `json:"type"`
}

// RolesPage is one page of a role listing.
type RolesPage struct {
	Roles []RoleObject `json:"roles"`
}

// UserObject is the provider's wire representation of a user record.
type UserObject struct {
	SID          string `json:"sid"`
	Identity     string `json:"identity"`
	FriendlyName string `json:"friendly_name"`
}

// MessageObject is the provider's wire representation of a message.
type MessageObject struct {
	SID        string `json:"sid"`
	ChannelSID string `json:"channel_sid"`
	Attributes string `json:"attributes"`
}

// SessionObject is the provider's login response.
type SessionObject struct {
	Token string `json:"token"`
}

// ErrorObject is the provider's error response body.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ChannelCreateOptions are the form fields for channel creation.
type ChannelCreateOptions struct {
	UniqueName   string `url:"UniqueName"`
	FriendlyName string `url:"FriendlyName"`
	CreatedBy    string `url:"CreatedBy"`
	Attributes   string `url:"Attributes"`
}

// MemberCreateOptions are the form fields for member creation.
type MemberCreateOptions struct {
	Identity string `url:"Identity"`
	RoleSID  string `url:"RoleSid"`
}

// InviteCreateOptions are the form fields for invite creation.
type InviteCreateOptions struct {
	Identity string `url:"Identity"`
	RoleSID  string `url:"RoleSid"`
}

// UserCreateOptions are the form fields for user creation.
type UserCreateOptions struct {
	Identity     string `url:"Identity"`
	FriendlyName string `url:"FriendlyName"`
}

// MessageUpdateOptions are the form fields for message attribute updates.
type MessageUpdateOptions struct {
	Attributes string `url:"Attributes"`
}
