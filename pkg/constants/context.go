// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

// Package constants defines shared context key types used throughout the conference chat service.
package constants

// ContextKey is the unified type for all context keys to prevent type mismatches
type ContextKey string

// Context keys for various middleware and service contexts
const (
	// PrincipalContextID is the context key for the requester's chat identity
	PrincipalContextID ContextKey = "principal"

	// ConferenceContextID is the context key for the conference scope
	ConferenceContextID ContextKey = "conference"

	// RequestIDContextKey is the context key for request ID
	RequestIDContextKey ContextKey = "request-id"
)
