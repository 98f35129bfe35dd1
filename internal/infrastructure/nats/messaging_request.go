// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/internal/domain/port"
	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

type messageRequest struct {
	client *NATSClient
}

// registrantRequest is the request payload for registry-api lookups.
type registrantRequest struct {
	ConferenceUID string `json:"conference_uid"`
	Identity      string `json:"identity"`
}

func (m *messageRequest) get(ctx context.Context, subject, conferenceUID, identity string) ([]byte, error) {

	data, err := json.Marshal(registrantRequest{
		ConferenceUID: conferenceUID,
		Identity:      identity,
	})
	if err != nil {
		return nil, errors.NewUnexpected("failed to encode registrant request", err)
	}

	msg, err := m.client.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "registry-api request failed",
			"error", err,
			"subject", subject,
			"conference_uid", conferenceUID)
		return nil, errors.NewServiceUnavailable(fmt.Sprintf("registry-api unavailable: %v", err))
	}

	// Try to parse as JSON error response first
	var errorResponse struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(msg.Data, &errorResponse); err == nil && errorResponse.Error != "" {
		slog.WarnContext(ctx, "registry-api responded with an error",
			"subject", subject, "conference_uid", conferenceUID, "error", errorResponse.Error)
		return nil, errors.NewUnexpected(errorResponse.Error)
	}

	if len(msg.Data) == 0 {
		return nil, errors.NewNotFound(fmt.Sprintf("registrant attribute %s not found", subject))
	}

	return msg.Data, nil
}

// RegistrantPrivilege resolves an identity's organizational privilege within
// a conference via NATS request/reply. An unknown identity defaults to the
// attendee privilege rather than an error: the registry answers for every
// registrant and non-registrants never reach this service.
func (m *messageRequest) RegistrantPrivilege(ctx context.Context, conferenceUID, identity string) (model.Privilege, error) {
	data, err := m.get(ctx, constants.RegistrantGetPrivilegeSubject, conferenceUID, identity)
	if err != nil {
		return "", err
	}

	privilege := model.Privilege(string(data))

	slog.DebugContext(ctx, "registrant privilege resolved",
		"conference_uid", conferenceUID,
		"privilege", privilege)

	return privilege, nil
}

// RegistrantProfile resolves an identity's profile within a conference via
// NATS request/reply, or NotFound when the profile was deleted after
// invitation.
func (m *messageRequest) RegistrantProfile(ctx context.Context, conferenceUID, identity string) (*model.Profile, error) {
	data, err := m.get(ctx, constants.RegistrantGetProfileSubject, conferenceUID, identity)
	if err != nil {
		return nil, err
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal registrant profile response",
			"error", err,
			"conference_uid", conferenceUID)
		return nil, fmt.Errorf("failed to unmarshal registrant profile: %w", err)
	}

	slog.DebugContext(ctx, "registrant profile resolved",
		"conference_uid", conferenceUID)

	return &profile, nil
}

// NewEntityAttributeReader creates an entity attribute reader backed by NATS messaging.
func NewEntityAttributeReader(client *NATSClient) port.EntityAttributeReader {
	return &messageRequest{
		client: client,
	}
}
