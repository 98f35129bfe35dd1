// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/log"
)

// RequestIDMiddleware propagates the inbound request ID (or generates one)
// through the request context and the response headers, and attaches it to
// every log record emitted under this request.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(constants.RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := c.Request().Context()
			ctx = log.AppendCtx(ctx, slog.String("request_id", requestID))
			c.SetRequest(c.Request().WithContext(ctx))

			c.Response().Header().Set(constants.RequestIDHeader, requestID)
			return next(c)
		}
	}
}

// PrincipalMiddleware extracts the chat identity and conference scope the
// outer gateway resolved from the session. Requests without both headers are
// rejected before any handler runs; session resolution itself stays outside
// this service.
func PrincipalMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := c.Request().Header.Get(constants.IdentityHeader)
			conferenceUID := c.Request().Header.Get(constants.ConferenceHeader)

			if identity == "" || conferenceUID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session principal headers")
			}

			ctx := c.Request().Context()
			ctx = log.AppendCtx(ctx, slog.String("conference_uid", conferenceUID))
			c.Set(string(constants.PrincipalContextID), identity)
			c.Set(string(constants.ConferenceContextID), conferenceUID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func principalFrom(c echo.Context) (identity, conferenceUID string) {
	identity, _ = c.Get(string(constants.PrincipalContextID)).(string)
	conferenceUID, _ = c.Get(string(constants.ConferenceContextID)).(string)
	return identity, conferenceUID
}
