// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// DefaultTokenTTL is the lifetime of issued client SDK tokens.
const DefaultTokenTTL = time.Hour

// TokenResult is the issue-token response payload.
type TokenResult struct {
	Token    string    `json:"token"`
	Identity string    `json:"identity"`
	Expiry   time.Time `json:"expiry"`
}

// TokenIssuer mints access tokens for the client-side provider SDK.
type TokenIssuer interface {
	IssueToken(ctx context.Context, identity, conferenceUID string) (*TokenResult, error)
}

// chatTokenClaims are the claims carried by an issued SDK token. The grants
// block scopes the token to one provider chat service instance.
type chatTokenClaims struct {
	jwt.RegisteredClaims
	ConferenceUID string     `json:"conference_uid"`
	Grants        chatGrants `json:"grants"`
}

type chatGrants struct {
	Chat chatGrant `json:"chat"`
}

type chatGrant struct {
	ServiceSID string `json:"service_sid"`
}

// tokenIssuerOption defines a function type for setting options on the issuer
type tokenIssuerOption func(*tokenIssuer)

// WithSigningSecret sets the HMAC signing secret
func WithSigningSecret(secret []byte) tokenIssuerOption {
	return func(t *tokenIssuer) {
		t.secret = secret
	}
}

// WithServiceSID sets the provider chat service the tokens are scoped to
func WithServiceSID(serviceSID string) tokenIssuerOption {
	return func(t *tokenIssuer) {
		t.serviceSID = serviceSID
	}
}

// WithTokenTTL overrides the token lifetime
func WithTokenTTL(ttl time.Duration) tokenIssuerOption {
	return func(t *tokenIssuer) {
		t.ttl = ttl
	}
}

type tokenIssuer struct {
	secret     []byte
	serviceSID string
	ttl        time.Duration
}

// NewTokenIssuer creates a token issuer using the option pattern
func NewTokenIssuer(opts ...tokenIssuerOption) TokenIssuer {
	issuer := &tokenIssuer{
		ttl: DefaultTokenTTL,
	}
	for _, opt := range opts {
		opt(issuer)
	}

	return issuer
}

// IssueToken mints an HS256 token binding the identity to the conference and
// the provider chat service instance.
func (t *tokenIssuer) IssueToken(ctx context.Context, identity, conferenceUID string) (*TokenResult, error) {
	if len(t.secret) == 0 {
		return nil, errors.NewUnexpected("token signing secret is not configured")
	}

	now := time.Now()
	expiry := now.Add(t.ttl)

	claims := chatTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.ServiceName,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
		ConferenceUID: conferenceUID,
		Grants: chatGrants{
			Chat: chatGrant{ServiceSID: t.serviceSID},
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign SDK token", "error", err)
		return nil, errors.NewUnexpected("failed to sign token", err)
	}

	slog.DebugContext(ctx, "SDK token issued",
		"conference_uid", conferenceUID,
		"expires_at", expiry.Format(time.RFC3339),
	)

	return &TokenResult{
		Token:    token,
		Identity: identity,
		Expiry:   expiry,
	}, nil
}
