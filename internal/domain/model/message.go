// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package model

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// Message is a provider-side message carrying an application-defined
// attribute bag. Only the attribute bag is mutated by this service.
type Message struct {
	SID        string            `json:"sid"`
	ChannelSID string            `json:"channel_sid"`
	Attributes MessageAttributes `json:"attributes"`
}

// MessageAttributes is the typed form of a message's JSON attribute bag.
// Reactions maps a reaction symbol to the identities that added it.
type MessageAttributes struct {
	Version   int                 `json:"version"`
	Reactions map[string][]string `json:"reactions,omitempty"`
}

// MessageAttributesVersion is the current attribute schema version.
const MessageAttributesVersion = 1

// AddReaction records that identity reacted with the given symbol.
// Idempotent: the identity appears in the symbol's list exactly once.
// Returns true when the bag changed.
func (a *MessageAttributes) AddReaction(symbol, identity string) bool {
	if a.Reactions == nil {
		a.Reactions = make(map[string][]string)
	}
	if slices.Contains(a.Reactions[symbol], identity) {
		return false
	}
	a.Reactions[symbol] = append(a.Reactions[symbol], identity)
	a.Version = MessageAttributesVersion
	return true
}

// RemoveReaction removes identity from the symbol's list and drops the
// symbol entirely once its list is empty. Returns true when the bag changed.
func (a *MessageAttributes) RemoveReaction(symbol, identity string) bool {
	users, ok := a.Reactions[symbol]
	if !ok {
		return false
	}
	idx := slices.Index(users, identity)
	if idx < 0 {
		return false
	}
	users = slices.Delete(users, idx, idx+1)
	if len(users) == 0 {
		delete(a.Reactions, symbol)
	} else {
		a.Reactions[symbol] = users
	}
	return true
}

// Encode serializes the attributes and enforces the provider's size
// ceiling. A reaction mutation that would overflow the bag is rejected
// before any write reaches the provider.
func (a MessageAttributes) Encode() ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, errors.NewUnexpected("failed to encode message attributes", err)
	}
	if len(data) > constants.MaxAttributeBytes {
		return nil, errors.NewValidation(
			fmt.Sprintf("message attributes exceed %d bytes", constants.MaxAttributeBytes))
	}
	return data, nil
}

// DecodeMessageAttributes parses a raw attribute bag; an empty bag yields
// zero-value attributes.
func DecodeMessageAttributes(raw []byte) (MessageAttributes, error) {
	var attrs MessageAttributes
	if len(raw) == 0 {
		return attrs, nil
	}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return attrs, errors.NewUnexpected("failed to decode message attributes", err)
	}
	return attrs, nil
}
