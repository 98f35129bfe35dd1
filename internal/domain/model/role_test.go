// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoleSet(t *testing.T) {
	testCases := []struct {
		name        string
		roles       []Role
		expectError bool
	}{
		{
			name: "both templates present",
			roles: []Role{
				{SID: "RL1", Name: "channel admin"},
				{SID: "RL2", Name: "channel user"},
				{SID: "RL3", Name: "service admin"},
			},
			expectError: false,
		},
		{
			name: "missing admin template",
			roles: []Role{
				{SID: "RL2", Name: "channel user"},
			},
			expectError: true,
		},
		{
			name: "missing user template",
			roles: []Role{
				{SID: "RL1", Name: "channel admin"},
			},
			expectError: true,
		},
		{
			name:        "no roles at all",
			roles:       nil,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			set, err := NewRoleSet(tc.roles)
			if tc.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "RL1", set.AdminRoleSID)
			assert.Equal(t, "RL2", set.UserRoleSID)
		})
	}
}

func TestPrivilegeIsElevated(t *testing.T) {
	assert.False(t, PrivilegeAttendee.IsElevated())
	assert.True(t, PrivilegeManager.IsElevated())
	assert.True(t, PrivilegeAdmin.IsElevated())
	assert.False(t, Privilege("").IsElevated())
}
