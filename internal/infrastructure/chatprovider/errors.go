// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package chatprovider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/openconfhq/conference-chat-service/pkg/errors"
	"github.com/openconfhq/conference-chat-service/pkg/httpclient"
)

// MapHTTPError maps httpclient errors to domain errors with proper context logging
func MapHTTPError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if retryableErr, ok := err.(*httpclient.RetryableError); ok {
		slog.WarnContext(ctx, "chat provider HTTP error occurred",
			"status_code", retryableErr.StatusCode,
			"message", retryableErr.Message,
		)

		switch retryableErr.StatusCode {
		case http.StatusNotFound:
			return errors.NewNotFound("resource not found in chat provider", err)
		case http.StatusConflict:
			return errors.NewConflict("resource already exists in chat provider", err)
		case http.StatusUnauthorized:
			return errors.NewUnauthorized("chat provider authentication failed", err)
		case http.StatusForbidden:
			return errors.NewForbidden("chat provider access denied", err)
		case http.StatusTooManyRequests:
			return errors.NewServiceUnavailable("chat provider rate limited", err)
		case http.StatusBadRequest:
			return errors.NewValidation(fmt.Sprintf("chat provider validation error: %s", retryableErr.Message), err)
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return errors.NewServiceUnavailable("chat provider unavailable", err)
		default:
			slog.ErrorContext(ctx, "unexpected chat provider HTTP status code",
				"status_code", retryableErr.StatusCode,
				"message", retryableErr.Message,
			)
			return errors.NewUnexpected("chat provider API error", err)
		}
	}

	// Network, timeout, and other non-HTTP failures
	slog.ErrorContext(ctx, "chat provider request failed with non-HTTP error",
		"error", err.Error(),
	)
	return errors.NewUnexpected("chat provider request failed", err)
}
