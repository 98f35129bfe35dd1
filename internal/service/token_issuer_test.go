// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openconfhq/conference-chat-service/pkg/constants"
)

func TestTokenIssuer_IssueToken(t *testing.T) {
	secret := []byte("test-signing-secret")
	issuer := NewTokenIssuer(
		WithSigningSecret(secret),
		WithServiceSID("IS_service"),
		WithTokenTTL(30*time.Minute),
	)

	result, err := issuer.IssueToken(context.Background(), "alice", "conf-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Identity)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), result.Expiry, 5*time.Second)

	claims := &chatTokenClaims{}
	parsed, err := jwt.ParseWithClaims(result.Token, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, constants.ServiceName, claims.Issuer)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "conf-1", claims.ConferenceUID)
	assert.Equal(t, "IS_service", claims.Grants.Chat.ServiceSID)
	assert.WithinDuration(t, result.Expiry, claims.ExpiresAt.Time, time.Second)
}

func TestTokenIssuer_MissingSecret(t *testing.T) {
	issuer := NewTokenIssuer(WithServiceSID("IS_service"))

	result, err := issuer.IssueToken(context.Background(), "alice", "conf-1")
	require.Error(t, err)
	assert.Nil(t, result)
}
