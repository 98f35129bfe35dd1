// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

// Package httpclient provides a reusable HTTP client with retry logic and
// request middleware used by the chat provider integration.
package httpclient

import "time"

// Config holds the HTTP client configuration
type Config struct {
	// Timeout is the per-request timeout
	Timeout time.Duration

	// MaxRetries is the number of retries after the initial attempt
	MaxRetries int

	// RetryDelay is the base delay between retries
	RetryDelay time.Duration

	// RetryBackoff enables exponential backoff between retries
	RetryBackoff bool

	// MaxDelay caps the backoff delay
	MaxDelay time.Duration
}
