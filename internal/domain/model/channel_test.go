// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDMUniqueKey(t *testing.T) {
	testCases := []struct {
		name     string
		a        string
		b        string
		expected string
	}{
		{
			name:     "already ordered",
			a:        "alice",
			b:        "bob",
			expected: "alice~bob",
		},
		{
			name:     "reversed input produces same key",
			a:        "bob",
			b:        "alice",
			expected: "alice~bob",
		},
		{
			name:     "numeric identities sort lexicographically",
			a:        "10",
			b:        "2",
			expected: "10~2",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DMUniqueKey(tc.a, tc.b))
		})
	}
}

func TestDMUniqueKeySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"d4f9c2", "a1b2c3"},
		{"registrant-77", "registrant-8"},
	}
	for _, pair := range pairs {
		assert.Equal(t, DMUniqueKey(pair[0], pair[1]), DMUniqueKey(pair[1], pair[0]))
	}
}

func TestUniqueKeyTruncation(t *testing.T) {
	long := strings.Repeat("x", 80)
	key := DMUniqueKey(long, "alice")
	assert.Len(t, key, 64)

	groupKey := GroupUniqueKey(long, "550e8400-e29b-41d4-a716-446655440000")
	assert.Len(t, groupKey, 64)
}

func TestGroupUniqueKeyNotDeterministic(t *testing.T) {
	// Distinct suffixes must yield distinct keys even for the same requester.
	a := GroupUniqueKey("alice", "suffix-one")
	b := GroupUniqueKey("alice", "suffix-two")
	assert.NotEqual(t, a, b)
}

func TestChannelAttributesRoundTrip(t *testing.T) {
	attrs := ChannelAttributes{Version: ChannelAttributesVersion, IsDM: true}

	data, err := attrs.Encode()
	require.NoError(t, err)

	decoded, err := DecodeChannelAttributes(data)
	require.NoError(t, err)
	assert.True(t, decoded.IsDM)
	assert.Equal(t, ChannelAttributesVersion, decoded.Version)
}

func TestDecodeChannelAttributesEmpty(t *testing.T) {
	decoded, err := DecodeChannelAttributes(nil)
	require.NoError(t, err)
	assert.False(t, decoded.IsDM)
}
