// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

// Package chatprovider implements the chat provider REST API client.
package chatprovider

import (
	"fmt"
	"time"
)

// Config holds the chat provider client configuration
type Config struct {
	// BaseURL is the provider API base URL
	BaseURL string

	// ServiceSID scopes every call to one provider chat service instance
	ServiceSID string

	// APIKey and APISecret authenticate the service account
	APIKey    string
	APISecret string

	// Timeout is the per-request timeout
	Timeout time.Duration

	// MaxRetries is the number of HTTP-level retries for transient failures
	MaxRetries int

	// RetryDelay is the base delay between HTTP-level retries
	RetryDelay time.Duration

	// MockMode disables the real client; the mock provider is wired instead
	MockMode bool
}

// Validate checks the configuration for required fields
func (c Config) Validate() error {
	if c.MockMode {
		return nil
	}
	if c.APIKey == "" || c.APISecret == "" {
		return fmt.Errorf("API key and secret are required for the chat provider client")
	}
	if c.ServiceSID == "" {
		return fmt.Errorf("service SID is required for the chat provider client")
	}
	return nil
}
