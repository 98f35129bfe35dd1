// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/internal/domain/port"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// MockMirrorStore provides a mock implementation of port.MirrorReaderWriter.
// Constraint keys live in the same key space as records, mirroring the KV
// bucket layout of the real store.
type MockMirrorStore struct {
	records        map[string]*model.MirrorRecord
	revisions      map[string]uint64
	constraintKeys map[string]string // lookup key -> record UID
	injectedErrors map[string]error
	mu             sync.RWMutex
}

// NewMockMirrorStore creates an empty mock mirror store.
func NewMockMirrorStore() *MockMirrorStore {
	return &MockMirrorStore{
		records:        make(map[string]*model.MirrorRecord),
		revisions:      make(map[string]uint64),
		constraintKeys: make(map[string]string),
		injectedErrors: make(map[string]error),
	}
}

// SetErrorFor injects an error for the named operation.
func (m *MockMirrorStore) SetErrorFor(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.injectedErrors[operation] = err
}

// ClearErrors removes all injected errors.
func (m *MockMirrorStore) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.injectedErrors = make(map[string]error)
}

func (m *MockMirrorStore) injectedError(operation string) error {
	return m.injectedErrors[operation]
}

func copyRecord(record *model.MirrorRecord) *model.MirrorRecord {
	recordCopy := *record
	recordCopy.ACL = make([]model.AccessGrant, len(record.ACL))
	copy(recordCopy.ACL, record.ACL)
	return &recordCopy
}

// GetMirrorRecord retrieves a record by UID and returns its revision
func (m *MockMirrorStore) GetMirrorRecord(ctx context.Context, uid string) (*model.MirrorRecord, uint64, error) {
	slog.DebugContext(ctx, "mock mirror store: getting record", "mirror_uid", uid)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedError("GetMirrorRecord"); err != nil {
		return nil, 0, err
	}

	record, exists := m.records[uid]
	if !exists {
		return nil, 0, errors.NewNotFound(fmt.Sprintf("mirror record %s not found", uid))
	}

	return copyRecord(record), m.revisions[uid], nil
}

// GetMirrorRecordByChannel retrieves the record for a (conference, channel SID) pair
func (m *MockMirrorStore) GetMirrorRecordByChannel(ctx context.Context, conferenceUID, channelSID string) (*model.MirrorRecord, uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedError("GetMirrorRecordByChannel"); err != nil {
		return nil, 0, err
	}

	lookup := &model.MirrorRecord{ConferenceUID: conferenceUID, ChannelSID: channelSID}
	uid, exists := m.constraintKeys[lookup.BuildLookupKey()]
	if !exists {
		return nil, 0, errors.NewNotFound("no mirror record exists for channel")
	}

	record, exists := m.records[uid]
	if !exists {
		return nil, 0, errors.NewNotFound(fmt.Sprintf("mirror record %s not found", uid))
	}

	return copyRecord(record), m.revisions[uid], nil
}

// CreateMirrorRecord reserves the constraint key and stores the record
func (m *MockMirrorStore) CreateMirrorRecord(ctx context.Context, record *model.MirrorRecord) (*model.MirrorRecord, uint64, error) {
	slog.DebugContext(ctx, "mock mirror store: creating record",
		"mirror_uid", record.UID,
		"channel_sid", record.ChannelSID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injectedError("CreateMirrorRecord"); err != nil {
		return nil, 0, err
	}

	lookupKey := record.BuildLookupKey()
	if _, exists := m.constraintKeys[lookupKey]; exists {
		return nil, 0, errors.NewConflict("mirror record already exists for channel")
	}

	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	m.constraintKeys[lookupKey] = record.UID
	m.records[record.UID] = copyRecord(record)
	m.revisions[record.UID] = 1

	return copyRecord(record), 1, nil
}

// UpdateMirrorRecord updates a record with revision checking
func (m *MockMirrorStore) UpdateMirrorRecord(ctx context.Context, uid string, record *model.MirrorRecord, expectedRevision uint64) (*model.MirrorRecord, uint64, error) {
	slog.DebugContext(ctx, "mock mirror store: updating record",
		"mirror_uid", uid,
		"expected_revision", expectedRevision)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injectedError("UpdateMirrorRecord"); err != nil {
		return nil, 0, err
	}

	existing, exists := m.records[uid]
	if !exists {
		return nil, 0, errors.NewNotFound(fmt.Sprintf("mirror record %s not found", uid))
	}

	currentRevision := m.revisions[uid]
	if currentRevision != expectedRevision {
		return nil, 0, errors.NewConflict(fmt.Sprintf("revision mismatch: expected %d, got %d", expectedRevision, currentRevision))
	}

	record.UID = uid
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = time.Now()

	m.records[uid] = copyRecord(record)
	newRevision := currentRevision + 1
	m.revisions[uid] = newRevision

	return copyRecord(record), newRevision, nil
}

// GetKeyRevision retrieves the revision for a given key
func (m *MockMirrorStore) GetKeyRevision(ctx context.Context, key string) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injectedError("GetKeyRevision"); err != nil {
		return 0, err
	}

	if _, exists := m.constraintKeys[key]; exists {
		return 1, nil
	}
	if _, exists := m.records[key]; exists {
		return m.revisions[key], nil
	}
	return 0, errors.NewNotFound("key not found")
}

// Delete removes a key (record UID or constraint key) with revision checking
func (m *MockMirrorStore) Delete(ctx context.Context, key string, revision uint64) error {
	slog.DebugContext(ctx, "mock mirror store: deleting key", "key", key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injectedError("Delete"); err != nil {
		return err
	}

	if _, exists := m.constraintKeys[key]; exists {
		delete(m.constraintKeys, key)
		return nil
	}
	if _, exists := m.records[key]; exists {
		delete(m.records, key)
		delete(m.revisions, key)
		return nil
	}

	// Key not found is a success for idempotency
	return nil
}

// RecordCount reports how many mirror records are stored.
func (m *MockMirrorStore) RecordCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// IsReady always reports ready
func (m *MockMirrorStore) IsReady(ctx context.Context) error {
	return nil
}

// interface guard
var _ port.MirrorReaderWriter = (*MockMirrorStore)(nil)
