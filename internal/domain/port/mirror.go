// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
)

// MirrorReader defines read operations on channel mirror records.
type MirrorReader interface {
	// GetMirrorRecord retrieves a record by UID and returns its revision.
	GetMirrorRecord(ctx context.Context, uid string) (*model.MirrorRecord, uint64, error)

	// GetMirrorRecordByChannel retrieves the record for a
	// (conference, channel SID) pair via its constraint key, or NotFound.
	GetMirrorRecordByChannel(ctx context.Context, conferenceUID, channelSID string) (*model.MirrorRecord, uint64, error)
}

// MirrorWriter defines write operations on channel mirror records.
type MirrorWriter interface {
	// CreateMirrorRecord reserves the (conference, channel SID) constraint
	// key and stores the record. A Conflict error means another request
	// already created the record for that pair.
	CreateMirrorRecord(ctx context.Context, record *model.MirrorRecord) (*model.MirrorRecord, uint64, error)

	// UpdateMirrorRecord updates a record with optimistic revision checking.
	UpdateMirrorRecord(ctx context.Context, uid string, record *model.MirrorRecord, expectedRevision uint64) (*model.MirrorRecord, uint64, error)

	// GetKeyRevision retrieves the revision for a given key (used for cleanup operations)
	GetKeyRevision(ctx context.Context, key string) (uint64, error)

	// Delete removes a key with the given revision (used for cleanup and rollback)
	Delete(ctx context.Context, key string, revision uint64) error
}

// MirrorReaderWriter combines all reader and writer operations for mirror records
type MirrorReaderWriter interface {
	MirrorReader
	MirrorWriter

	// IsReady checks if the storage is ready by verifying the connection
	IsReady(ctx context.Context) error
}
