// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/internal/domain/port"
	"github.com/openconfhq/conference-chat-service/pkg/constants"
	errs "github.com/openconfhq/conference-chat-service/pkg/errors"

	"github.com/nats-io/nats.go/jetstream"
)

type storage struct {
	client *NATSClient
}

// GetMirrorRecord retrieves a single mirror record by UID and returns its revision
func (s *storage) GetMirrorRecord(ctx context.Context, uid string) (*model.MirrorRecord, uint64, error) {
	slog.DebugContext(ctx, "nats storage: getting mirror record",
		"mirror_uid", uid)

	record := &model.MirrorRecord{}
	rev, err := s.get(ctx, uid, record, false)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			slog.DebugContext(ctx, "mirror record not found", "mirror_uid", uid, "error", err)
			return nil, 0, errs.NewNotFound("mirror record not found")
		}
		slog.ErrorContext(ctx, "failed to get mirror record", "error", err, "mirror_uid", uid)
		return nil, 0, errs.NewServiceUnavailable("failed to get mirror record")
	}

	slog.DebugContext(ctx, "nats storage: mirror record retrieved",
		"mirror_uid", uid,
		"channel_sid", record.ChannelSID,
		"revision", rev)

	return record, rev, nil
}

// GetMirrorRecordByChannel resolves the (conference, channel SID) constraint
// key to a record UID and fetches the record
func (s *storage) GetMirrorRecordByChannel(ctx context.Context, conferenceUID, channelSID string) (*model.MirrorRecord, uint64, error) {
	lookupKey := fmt.Sprintf(constants.KVLookupChatMirrorPrefix, conferenceUID, channelSID)

	slog.DebugContext(ctx, "nats storage: resolving mirror record by channel",
		"conference_uid", conferenceUID,
		"channel_sid", channelSID,
		"lookup_key", lookupKey)

	kv, exists := s.client.kvStore[constants.KVBucketNameChatMirrors]
	if !exists || kv == nil {
		return nil, 0, errs.NewServiceUnavailable("KV bucket not available")
	}

	entry, err := kv.Get(ctx, lookupKey)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, 0, errs.NewNotFound("no mirror record exists for channel")
		}
		slog.ErrorContext(ctx, "failed to resolve mirror lookup key", "error", err, "lookup_key", lookupKey)
		return nil, 0, errs.NewServiceUnavailable("failed to resolve mirror lookup key")
	}

	return s.GetMirrorRecord(ctx, string(entry.Value()))
}

// get retrieves a model from the NATS KV store by UID.
// It unmarshals the data into the provided model and returns the revision.
func (s *storage) get(ctx context.Context, uid string, model any, onlyRevision bool) (uint64, error) {
	if uid == "" {
		return 0, errs.NewValidation("UID cannot be empty")
	}

	kv, exists := s.client.kvStore[constants.KVBucketNameChatMirrors]
	if !exists || kv == nil {
		return 0, errs.NewServiceUnavailable("KV bucket not available")
	}

	data, errGet := kv.Get(ctx, uid)
	if errGet != nil {
		return 0, errGet
	}

	if !onlyRevision {
		errUnmarshal := json.Unmarshal(data.Value(), model)
		if errUnmarshal != nil {
			return 0, errUnmarshal
		}
	}

	return data.Revision(), nil
}

// CreateMirrorRecord reserves the channel constraint key and stores the record.
// The kv.Create on the constraint key is what makes concurrent creation for
// the same (conference, channel SID) pair lose with a Conflict.
func (s *storage) CreateMirrorRecord(ctx context.Context, record *model.MirrorRecord) (*model.MirrorRecord, uint64, error) {
	slog.DebugContext(ctx, "nats storage: creating mirror record",
		"mirror_uid", record.UID,
		"conference_uid", record.ConferenceUID,
		"channel_sid", record.ChannelSID)

	constraintKey, err := s.createUniqueConstraint(ctx, record.BuildLookupKey(), record.UID)
	if err != nil {
		return nil, 0, err
	}

	rev, err := s.put(ctx, record.UID, record)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create mirror record", "error", err, "mirror_uid", record.UID)
		// Release the constraint key so a retry is not locked out
		if revKey, errRev := s.GetKeyRevision(ctx, constraintKey); errRev == nil {
			if errDel := s.Delete(ctx, constraintKey, revKey); errDel != nil {
				slog.WarnContext(ctx, "failed to release constraint key after create failure",
					"error", errDel, "constraint_key", constraintKey)
			}
		}
		return nil, 0, errs.NewServiceUnavailable("failed to create mirror record")
	}

	slog.DebugContext(ctx, "nats storage: mirror record created",
		"mirror_uid", record.UID,
		"revision", rev)

	return record, rev, nil
}

// UpdateMirrorRecord updates an existing record with revision checking
func (s *storage) UpdateMirrorRecord(ctx context.Context, uid string, record *model.MirrorRecord, expectedRevision uint64) (*model.MirrorRecord, uint64, error) {
	slog.DebugContext(ctx, "nats storage: updating mirror record",
		"mirror_uid", uid,
		"expected_revision", expectedRevision)

	rev, err := s.putWithRevision(ctx, uid, record, expectedRevision)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update mirror record", "error", err, "mirror_uid", uid)
		return nil, 0, errs.NewServiceUnavailable("failed to update mirror record")
	}

	slog.DebugContext(ctx, "nats storage: mirror record updated",
		"mirror_uid", uid,
		"revision", rev)

	return record, rev, nil
}

// put stores a model in the NATS KV store by UID, returning the revision.
func (s *storage) put(ctx context.Context, uid string, model any) (uint64, error) {
	if uid == "" {
		return 0, errs.NewValidation("UID cannot be empty")
	}

	kv, exists := s.client.kvStore[constants.KVBucketNameChatMirrors]
	if !exists || kv == nil {
		return 0, errs.NewServiceUnavailable("KV bucket not available")
	}

	data, err := json.Marshal(model)
	if err != nil {
		return 0, err
	}

	revision, err := kv.Put(ctx, uid, data)
	if err != nil {
		return 0, err
	}

	return revision, nil
}

// putWithRevision stores a model with expected revision checking.
func (s *storage) putWithRevision(ctx context.Context, uid string, model any, expectedRevision uint64) (uint64, error) {
	if uid == "" {
		return 0, errs.NewValidation("UID cannot be empty")
	}

	kv, exists := s.client.kvStore[constants.KVBucketNameChatMirrors]
	if !exists || kv == nil {
		return 0, errs.NewServiceUnavailable("KV bucket not available")
	}

	data, err := json.Marshal(model)
	if err != nil {
		return 0, err
	}

	revision, err := kv.Update(ctx, uid, data, expectedRevision)
	if err != nil {
		return 0, err
	}

	return revision, nil
}

// createUniqueConstraint creates a unique constraint key in the mirrors bucket
func (s *storage) createUniqueConstraint(ctx context.Context, uniqueKey, entityID string) (string, error) {
	kv, exists := s.client.kvStore[constants.KVBucketNameChatMirrors]
	if !exists || kv == nil {
		return uniqueKey, errs.NewServiceUnavailable("KV bucket not available")
	}

	// Try to create the constraint key - this will fail if it already exists
	_, err := kv.Create(ctx, uniqueKey, []byte(entityID))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			slog.WarnContext(ctx, "constraint violation - key already exists",
				"constraint_key", uniqueKey,
				"entity_id", entityID,
			)
			return uniqueKey, errs.NewConflict("mirror record already exists for channel")
		}
		slog.ErrorContext(ctx, "failed to create unique constraint",
			"error", err,
			"constraint_key", uniqueKey,
			"entity_id", entityID,
		)
		return uniqueKey, errs.NewUnexpected("failed to create unique constraint", err)
	}

	slog.DebugContext(ctx, "unique constraint created successfully",
		"constraint_key", uniqueKey,
		"entity_id", entityID,
	)

	return uniqueKey, nil
}

// GetKeyRevision retrieves the revision for a given key (used for cleanup operations)
func (s *storage) GetKeyRevision(ctx context.Context, key string) (uint64, error) {
	if key == "" {
		return 0, errs.NewValidation("key cannot be empty")
	}

	kv, exists := s.client.kvStore[constants.KVBucketNameChatMirrors]
	if !exists || kv == nil {
		return 0, errs.NewServiceUnavailable("KV bucket not available")
	}

	entry, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return 0, errs.NewNotFound("key not found")
		}
		return 0, errs.NewServiceUnavailable("failed to get key revision", err)
	}

	return entry.Revision(), nil
}

// Delete removes a key with the given revision (used for cleanup and rollback)
func (s *storage) Delete(ctx context.Context, key string, revision uint64) error {
	if key == "" {
		return errs.NewValidation("key cannot be empty")
	}

	kv, exists := s.client.kvStore[constants.KVBucketNameChatMirrors]
	if !exists || kv == nil {
		return errs.NewServiceUnavailable("KV bucket not available")
	}

	err := kv.Delete(ctx, key, jetstream.LastRevision(revision))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			// Key not found, consider it a success for idempotency
			slog.WarnContext(ctx, "key not found during deletion", "key", key, "revision", revision)
			return nil
		}
		slog.ErrorContext(ctx, "failed to delete key", "error", err, "key", key, "revision", revision)
		return errs.NewServiceUnavailable("failed to delete key", err)
	}

	slog.DebugContext(ctx, "key deleted successfully", "key", key, "revision", revision)
	return nil
}

// IsReady checks if the storage is ready by verifying the client connection
func (s *storage) IsReady(ctx context.Context) error {
	return s.client.IsReady(ctx)
}

// NewStorage creates the mirror record store backed by NATS JetStream KV.
func NewStorage(client *NATSClient) port.MirrorReaderWriter {
	return &storage{
		client: client,
	}
}
