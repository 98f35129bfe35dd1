// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openconfhq/conference-chat-service/pkg/errors"
)

// wrapError maps domain errors to HTTP errors. Anything outside the known
// taxonomy becomes a 500 with no internal detail leaked.
func wrapError(ctx context.Context, err error) error {
	slog.ErrorContext(ctx, "request failed", "error", err)

	var (
		validationErr  errors.Validation
		notFoundErr    errors.NotFound
		unauthorized   errors.Unauthorized
		forbiddenErr   errors.Forbidden
		conflictErr    errors.Conflict
		unavailableErr errors.ServiceUnavailable
	)

	switch {
	case stderrors.As(err, &validationErr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case stderrors.As(err, &notFoundErr):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case stderrors.As(err, &unauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case stderrors.As(err, &forbiddenErr):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case stderrors.As(err, &conflictErr):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case stderrors.As(err, &unavailableErr):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
