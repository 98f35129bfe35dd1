// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/internal/domain/port"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// MockEntityAttributeReader provides a mock implementation of
// port.EntityAttributeReader. Unknown identities resolve to the attendee
// privilege and a NotFound profile, matching registry behavior for deleted
// registrants.
type MockEntityAttributeReader struct {
	privileges     map[string]model.Privilege // conferenceUID/identity -> privilege
	profiles       map[string]*model.Profile  // conferenceUID/identity -> profile
	injectedErrors map[string]error
	mu             sync.RWMutex
}

// NewMockEntityAttributeReader creates an empty mock reader.
func NewMockEntityAttributeReader() *MockEntityAttributeReader {
	return &MockEntityAttributeReader{
		privileges:     make(map[string]model.Privilege),
		profiles:       make(map[string]*model.Profile),
		injectedErrors: make(map[string]error),
	}
}

func registrantKey(conferenceUID, identity string) string {
	return conferenceUID + "/" + identity
}

// SetPrivilege seeds a registrant's privilege.
func (m *MockEntityAttributeReader) SetPrivilege(conferenceUID, identity string, privilege model.Privilege) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.privileges[registrantKey(conferenceUID, identity)] = privilege
}

// SetProfile seeds a registrant's profile.
func (m *MockEntityAttributeReader) SetProfile(conferenceUID string, profile *model.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[registrantKey(conferenceUID, profile.Identity)] = profile
}

// RemoveProfile deletes a seeded profile, simulating a registrant removed
// after invitation.
func (m *MockEntityAttributeReader) RemoveProfile(conferenceUID, identity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, registrantKey(conferenceUID, identity))
}

// SetErrorFor injects an error for the named operation.
func (m *MockEntityAttributeReader) SetErrorFor(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.injectedErrors[operation] = err
}

// RegistrantPrivilege resolves an identity's privilege within a conference
func (m *MockEntityAttributeReader) RegistrantPrivilege(ctx context.Context, conferenceUID, identity string) (model.Privilege, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedErrors["RegistrantPrivilege"]; err != nil {
		return "", err
	}

	if privilege, exists := m.privileges[registrantKey(conferenceUID, identity)]; exists {
		return privilege, nil
	}
	return model.PrivilegeAttendee, nil
}

// RegistrantProfile resolves an identity's profile within a conference
func (m *MockEntityAttributeReader) RegistrantProfile(ctx context.Context, conferenceUID, identity string) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedErrors["RegistrantProfile"]; err != nil {
		return nil, err
	}

	profile, exists := m.profiles[registrantKey(conferenceUID, identity)]
	if !exists {
		return nil, errors.NewNotFound(fmt.Sprintf("registrant profile not found for %s", identity))
	}

	profileCopy := *profile
	return &profileCopy, nil
}

// interface guard
var _ port.EntityAttributeReader = (*MockEntityAttributeReader)(nil)
