// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/openconfhq/conference-chat-service/pkg/errors"
)

func TestAddReactionIdempotent(t *testing.T) {
	var attrs MessageAttributes

	assert.True(t, attrs.AddReaction("👍", "alice"))
	assert.False(t, attrs.AddReaction("👍", "alice"))
	assert.Equal(t, []string{"alice"}, attrs.Reactions["👍"])

	assert.True(t, attrs.AddReaction("👍", "bob"))
	assert.Equal(t, []string{"alice", "bob"}, attrs.Reactions["👍"])
}

func TestRemoveReaction(t *testing.T) {
	var attrs MessageAttributes
	attrs.AddReaction("🎉", "alice")
	attrs.AddReaction("🎉", "bob")

	assert.True(t, attrs.RemoveReaction("🎉", "alice"))
	assert.Equal(t, []string{"bob"}, attrs.Reactions["🎉"])

	// Removing the last user drops the key entirely.
	assert.True(t, attrs.RemoveReaction("🎉", "bob"))
	_, exists := attrs.Reactions["🎉"]
	assert.False(t, exists)

	// Removing from an absent key is a no-op.
	assert.False(t, attrs.RemoveReaction("🎉", "bob"))
	assert.False(t, attrs.RemoveReaction("🚀", "carol"))
}

func TestMessageAttributesSizeCeiling(t *testing.T) {
	var attrs MessageAttributes
	attrs.AddReaction("👍", strings.Repeat("x", 5000))

	_, err := attrs.Encode()
	require.Error(t, err)

	var validation errs.Validation
	assert.True(t, errors.As(err, &validation))
}

func TestMessageAttributesRoundTrip(t *testing.T) {
	var attrs MessageAttributes
	attrs.AddReaction("👍", "alice")

	data, err := attrs.Encode()
	require.NoError(t, err)

	decoded, err := DecodeMessageAttributes(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, decoded.Reactions["👍"])
}
