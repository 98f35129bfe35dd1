// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package nats

import (
	"time"
)

// Config holds the NATS client configuration
type Config struct {
	// URL is the NATS server URL
	URL string

	// Timeout is the request timeout for NATS operations
	Timeout time.Duration

	// MaxReconnect is the maximum number of reconnect attempts
	MaxReconnect int

	// ReconnectWait is the wait time between reconnect attempts
	ReconnectWait time.Duration
}
