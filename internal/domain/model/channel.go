// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

// Package model contains the domain entities mediated between the chat
// provider and the mirror store.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// Channel is the provider-side chat room entity.
type Channel struct {
	SID          string            `json:"sid"`
	UniqueKey    string            `json:"unique_key"`
	FriendlyName string            `json:"friendly_name"`
	CreatedBy    string            `json:"created_by"`
	Attributes   ChannelAttributes `json:"attributes"`
}

// ChannelAttributes is the typed form of the channel's JSON attribute bag.
// Version allows the schema to evolve without breaking older readers.
type ChannelAttributes struct {
	Version int  `json:"version"`
	IsDM    bool `json:"isDM"`
}

// ChannelAttributesVersion is the current attribute schema version.
const ChannelAttributesVersion = 1

// Encode serializes the attributes and enforces the provider's size ceiling.
func (a ChannelAttributes) Encode() ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, errors.NewUnexpected("failed to encode channel attributes", err)
	}
	if len(data) > constants.MaxAttributeBytes {
		return nil, errors.NewValidation(
			fmt.Sprintf("channel attributes exceed %d bytes", constants.MaxAttributeBytes))
	}
	return data, nil
}

// DecodeChannelAttributes parses a raw attribute bag. An empty bag yields
// zero-value attributes rather than an error, since provider-created
// channels may carry no attributes at all.
func DecodeChannelAttributes(raw []byte) (ChannelAttributes, error) {
	var attrs ChannelAttributes
	if len(raw) == 0 {
		return attrs, nil
	}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return attrs, errors.NewUnexpected("failed to decode channel attributes", err)
	}
	return attrs, nil
}

// DMUniqueKey derives the deterministic unique key for a direct-message
// channel between two identities. The identities are ordered
// lexicographically so that A inviting B and B inviting A resolve to the
// same key.
func DMUniqueKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return truncateKey(strings.Join(pair, constants.DMKeySeparator))
}

// GroupUniqueKey derives a unique key for a group channel. The random
// suffix makes the key unique per request: group chats are intentionally
// never deduplicated by participant set.
func GroupUniqueKey(requester, suffix string) string {
	return truncateKey(requester + constants.DMKeySeparator + suffix)
}

func truncateKey(key string) string {
	if len(key) > constants.UniqueKeyMaxLength {
		return key[:constants.UniqueKeyMaxLength]
	}
	return key
}
