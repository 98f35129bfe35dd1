// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

// Package constants defines global constants used throughout the conference chat service.
package constants

// Service constants
const (
	// ServiceName is the name of this service
	ServiceName = "conference-chat"
)

// HTTP header constants
const (
	// RequestIDHeader is the HTTP header name for request ID
	RequestIDHeader = "X-Request-Id"

	// IdentityHeader carries the chat identity resolved by the gateway
	IdentityHeader = "X-Identity"

	// ConferenceHeader carries the conference UID resolved by the gateway
	ConferenceHeader = "X-Conference-Uid"
)

// Environment variables
const (
	// EnvNATSURL is the environment variable for NATS server URL
	EnvNATSURL = "NATS_URL"
	// EnvProviderBaseURL is the environment variable for the chat provider API base URL
	EnvProviderBaseURL = "CHAT_PROVIDER_BASE_URL"
	// EnvProviderServiceSID is the environment variable for the provider chat service SID
	EnvProviderServiceSID = "CHAT_PROVIDER_SERVICE_SID"
	// EnvProviderAPIKey is the environment variable for the provider API key
	EnvProviderAPIKey = "CHAT_PROVIDER_API_KEY"
	// EnvProviderAPISecret is the environment variable for the provider API secret
	EnvProviderAPISecret = "CHAT_PROVIDER_API_SECRET"
	// EnvTokenSigningSecret is the environment variable for the client token signing secret
	EnvTokenSigningSecret = "CHAT_TOKEN_SIGNING_SECRET"
)
