// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package constants

const (
	// KVBucketNameChatMirrors is the name of the KV bucket for channel mirror records.
	KVBucketNameChatMirrors = "chat-mirrors"

	// KVLookupChatMirrorPrefix is the key pattern for the (conference, channel SID)
	// uniqueness constraint. Arguments: conference UID, channel SID.
	KVLookupChatMirrorPrefix = "lookup/chat_mirrors/%s/%s"

	// MirrorLookupKeyPrefix is the shared prefix of all constraint keys.
	MirrorLookupKeyPrefix = "lookup/chat_mirrors/"
)
