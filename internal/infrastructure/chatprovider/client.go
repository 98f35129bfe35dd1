// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package chatprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-querystring/query"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/internal/domain/port"
	"github.com/openconfhq/conference-chat-service/pkg/errors"
	"github.com/openconfhq/conference-chat-service/pkg/httpclient"
)

// sessionAuthRoundTripper injects the cached session token as BasicAuth on
// every request except the login call itself.
type sessionAuthRoundTripper struct {
	client *Client
}

// RoundTrip ensures authentication before non-login requests and adds the
// authorization header to those requests
func (rt *sessionAuthRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	// Skip auth for login requests to avoid infinite recursion
	if strings.Contains(req.URL.Path, "/v1/Sessions") {
		return next(req)
	}

	token, err := rt.client.getOrRefreshToken(req.Context())
	if err != nil {
		return nil, fmt.Errorf("authentication failed in RoundTripper: %w", err)
	}

	req.SetBasicAuth(token, "")
	slog.DebugContext(req.Context(), "RoundTripper: using chat provider session token",
		"path", req.URL.Path)

	return next(req)
}

// tokenCache holds the cached session token for the provider service
type tokenCache struct {
	token  string
	expiry time.Time
	mu     sync.RWMutex
}

// Client handles all chat provider API operations with session token caching.
// It implements port.ChatProvider.
type Client struct {
	config     Config
	httpClient *httpclient.Client
	cache      tokenCache
}

// NewClient creates a new chat provider client with the given configuration
func NewClient(cfg Config) (*Client, error) {
	if cfg.MockMode {
		return nil, nil // Return nil for mock mode - wiring will substitute the mock
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://chat.openconf.dev"
	}

	httpConfig := httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		RetryBackoff: true,
		MaxDelay:     30 * time.Second, // Cap exponential backoff at 30s
	}

	client := &Client{
		config:     cfg,
		httpClient: httpclient.NewClient(httpConfig),
	}

	client.httpClient.AddRoundTripper(&sessionAuthRoundTripper{client: client})

	slog.InfoContext(context.Background(), "chat provider client initialized",
		"service_sid", cfg.ServiceSID)

	return client, nil
}

// servicePath builds a path under the configured provider service instance.
func (c *Client) servicePath(parts ...string) string {
	return "/v1/Services/" + c.config.ServiceSID + "/" + strings.Join(parts, "/")
}

// GetChannel retrieves a channel by SID
func (c *Client) GetChannel(ctx context.Context, channelSID string) (*model.Channel, error) {
	slog.DebugContext(ctx, "getting channel from chat provider", "channel_sid", channelSID)

	var response ChannelObject
	err := c.makeRequest(ctx, http.MethodGet, c.servicePath("Channels", channelSID), nil, &response)
	if err != nil {
		return nil, err
	}

	return channelFromObject(response)
}

// FindChannelByUniqueKey returns the channel with the exact unique key.
// The provider enforces key uniqueness so the listing holds at most one match.
func (c *Client) FindChannelByUniqueKey(ctx context.Context, uniqueKey string) (*model.Channel, error) {
	slog.DebugContext(ctx, "finding channel by unique key in chat provider")

	data := url.Values{
		"UniqueName": {uniqueKey},
	}

	var response ChannelsPage
	err := c.makeRequest(ctx, http.MethodGet, c.servicePath("Channels"), data, &response)
	if err != nil {
		return nil, err
	}

	if len(response.Channels) == 0 {
		return nil, errors.NewNotFound("no channel exists for the unique key")
	}

	return channelFromObject(response.Channels[0])
}

// CreateChannel creates a channel; the returned channel carries the
// provider-assigned SID
func (c *Client) CreateChannel(ctx context.Context, channel *model.Channel) (*model.Channel, error) {
	slog.InfoContext(ctx, "creating channel in chat provider",
		"friendly_name", channel.FriendlyName, "created_by", channel.CreatedBy)

	attrs, err := channel.Attributes.Encode()
	if err != nil {
		return nil, err
	}

	options := ChannelCreateOptions{
		UniqueName:   channel.UniqueKey,
		FriendlyName: channel.FriendlyName,
		CreatedBy:    channel.CreatedBy,
		Attributes:   string(attrs),
	}

	data, err := query.Values(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	var response ChannelObject
	err = c.makeRequest(ctx, http.MethodPost, c.servicePath("Channels"), data, &response)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "channel created successfully in chat provider",
		"channel_sid", response.SID)

	return channelFromObject(response)
}

// DeleteChannel removes a channel from the provider
func (c *Client) DeleteChannel(ctx context.Context, channelSID string) error {
	slog.InfoContext(ctx, "deleting channel from chat provider", "channel_sid", channelSID)

	return c.makeRequest(ctx, http.MethodDelete, c.servicePath("Channels", channelSID), nil, nil)
}

// ListMembers returns the channel's active memberships
func (c *Client) ListMembers(ctx context.Context, channelSID string) ([]model.Membership, error) {
	slog.DebugContext(ctx, "listing channel members from chat provider", "channel_sid", channelSID)

	var response MembersPage
	err := c.makeRequest(ctx, http.MethodGet, c.servicePath("Channels", channelSID, "Members"), nil, &response)
	if err != nil {
		return nil, err
	}

	members := make([]model.Membership, 0, len(response.Members))
	for _, obj := range response.Members {
		members = append(members, model.Membership{
			SID:        obj.SID,
			ChannelSID: obj.ChannelSID,
			Identity:   obj.Identity,
			RoleSID:    obj.RoleSID,
		})
	}

	return members, nil
}

// CreateMember adds an identity to a channel with the given role
func (c *Client) CreateMember(ctx context.Context, channelSID, identity, roleSID string) (*model.Membership, error) {
	slog.InfoContext(ctx, "adding member to channel in chat provider",
		"channel_sid", channelSID, "role_sid", roleSID)

	options := MemberCreateOptions{
		Identity: identity,
		RoleSID:  roleSID,
	}

	data, err := query.Values(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	var response MemberObject
	err = c.makeRequest(ctx, http.MethodPost, c.servicePath("Channels", channelSID, "Members"), data, &response)
	if err != nil {
		return nil, err
	}

	return &model.Membership{
		SID:        response.SID,
		ChannelSID: response.ChannelSID,
		Identity:   response.Identity,
		RoleSID:    response.RoleSID,
	}, nil
}

// ListInvites returns the channel's pending invitations
func (c *Client) ListInvites(ctx context.Context, channelSID string) ([]model.Invitation, error) {
	slog.DebugContext(ctx, "listing channel invites from chat provider", "channel_sid", channelSID)

	var response InvitesPage
	err := c.makeRequest(ctx, http.MethodGet, c.servicePath("Channels", channelSID, "Invites"), nil, &response)
	if err != nil {
		return nil, err
	}

	invites := make([]model.Invitation, 0, len(response.Invites))
	for _, obj := range response.Invites {
		invites = append(invites, model.Invitation{
			SID:        obj.SID,
			ChannelSID: obj.ChannelSID,
			Identity:   obj.Identity,
			RoleSID:    obj.RoleSID,
		})
	}

	return invites, nil
}

// CreateInvite invites an identity to a channel with the given role
func (c *Client) CreateInvite(ctx context.Context, channelSID, identity, roleSID string) (*model.Invitation, error) {
	slog.InfoContext(ctx, "inviting member to channel in chat provider",
		"channel_sid", channelSID, "role_sid", roleSID)

	options := InviteCreateOptions{
		Identity: identity,
		RoleSID:  roleSID,
	}

	data, err := query.Values(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	var response InviteObject
	err = c.makeRequest(ctx, http.MethodPost, c.servicePath("Channels", channelSID, "Invites"), data, &response)
	if err != nil {
		return nil, err
	}

	return &model.Invitation{
		SID:        response.SID,
		ChannelSID: response.ChannelSID,
		Identity:   response.Identity,
		RoleSID:    response.RoleSID,
	}, nil
}

// ListRoles returns the provider service's role templates
func (c *Client) ListRoles(ctx context.Context) ([]model.Role, error) {
	slog.DebugContext(ctx, "listing roles from chat provider")

	var response RolesPage
	err := c.makeRequest(ctx, http.MethodGet, c.servicePath("Roles"), nil, &response)
	if err != nil {
		return nil, err
	}

	roles := make([]model.Role, 0, len(response.Roles))
	for _, obj := range response.Roles {
		roles = append(roles, model.Role{
			SID:  obj.SID,
			Name: obj.FriendlyName,
		})
	}

	return roles, nil
}

// GetUser retrieves a provider user record by identity
func (c *Client) GetUser(ctx context.Context, identity string) (*model.User, error) {
	slog.DebugContext(ctx, "getting user from chat provider")

	var response UserObject
	err := c.makeRequest(ctx, http.MethodGet, c.servicePath("Users", url.PathEscape(identity)), nil, &response)
	if err != nil {
		return nil, err
	}

	return &model.User{
		Identity:     response.Identity,
		FriendlyName: response.FriendlyName,
	}, nil
}

// CreateUser creates a provider user record keyed by identity
func (c *Client) CreateUser(ctx context.Context, identity, friendlyName string) (*model.User, error) {
	slog.InfoContext(ctx, "creating user in chat provider")

	options := UserCreateOptions{
		Identity:     identity,
		FriendlyName: friendlyName,
	}

	data, err := query.Values(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	var response UserObject
	err = c.makeRequest(ctx, http.MethodPost, c.servicePath("Users"), data, &response)
	if err != nil {
		return nil, err
	}

	return &model.User{
		Identity:     response.Identity,
		FriendlyName: response.FriendlyName,
	}, nil
}

// GetMessage fetches a message including its attribute bag
func (c *Client) GetMessage(ctx context.Context, channelSID, messageSID string) (*model.Message, error) {
	slog.DebugContext(ctx, "getting message from chat provider",
		"channel_sid", channelSID, "message_sid", messageSID)

	var response MessageObject
	err := c.makeRequest(ctx, http.MethodGet, c.servicePath("Channels", channelSID, "Messages", messageSID), nil, &response)
	if err != nil {
		return nil, err
	}

	attrs, err := model.DecodeMessageAttributes([]byte(response.Attributes))
	if err != nil {
		return nil, err
	}

	return &model.Message{
		SID:        response.SID,
		ChannelSID: response.ChannelSID,
		Attributes: attrs,
	}, nil
}

// UpdateMessageAttributes replaces a message's attribute bag
func (c *Client) UpdateMessageAttributes(ctx context.Context, channelSID, messageSID string, attrs model.MessageAttributes) error {
	slog.InfoContext(ctx, "updating message attributes in chat provider",
		"channel_sid", channelSID, "message_sid", messageSID)

	encoded, err := attrs.Encode()
	if err != nil {
		return err
	}

	data, err := query.Values(MessageUpdateOptions{Attributes: string(encoded)})
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	return c.makeRequest(ctx, http.MethodPost, c.servicePath("Channels", channelSID, "Messages", messageSID), data, nil)
}

// makeRequest centralizes all API calls with encoding and error handling.
// Authentication is injected by the RoundTripper.
func (c *Client) makeRequest(ctx context.Context, method string, path string, data url.Values, result any) error {
	reqURL := c.config.BaseURL + path

	var body io.Reader
	headers := map[string]string{}

	switch {
	case method == http.MethodPost && data != nil:
		body = strings.NewReader(data.Encode())
		headers["Content-Type"] = "application/x-www-form-urlencoded"
	case data != nil:
		reqURL += "?" + data.Encode()
	}

	resp, err := c.httpClient.Request(ctx, method, reqURL, body, headers)
	if err != nil {
		return MapHTTPError(ctx, err)
	}

	if result != nil {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// getOrRefreshToken implements session token caching with JWT expiry
func (c *Client) getOrRefreshToken(ctx context.Context) (string, error) {
	c.cache.mu.RLock()
	if time.Now().Before(c.cache.expiry) && c.cache.token != "" {
		token := c.cache.token
		c.cache.mu.RUnlock()
		return token, nil
	}
	c.cache.mu.RUnlock()

	return c.getToken(ctx)
}

// getToken authenticates the service account and returns a session token
func (c *Client) getToken(ctx context.Context) (string, error) {
	loginCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	data := url.Values{
		"ApiKey":    {c.config.APIKey},
		"ApiSecret": {c.config.APISecret},
	}

	loginURL := c.config.BaseURL + "/v1/Sessions"
	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}

	resp, err := c.httpClient.Request(loginCtx, http.MethodPost, loginURL, strings.NewReader(data.Encode()), headers)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", MapHTTPError(loginCtx, err))
	}

	var session SessionObject
	if err := json.Unmarshal(resp.Body, &session); err != nil {
		return "", fmt.Errorf("login response parse failed: %w", err)
	}

	if session.Token == "" {
		return "", fmt.Errorf("no token in login response")
	}

	expiry := c.parseTokenExpiry(session.Token)

	c.cache.mu.Lock()
	c.cache.token = session.Token
	c.cache.expiry = expiry
	c.cache.mu.Unlock()

	slog.InfoContext(ctx, "chat provider authentication successful",
		"expires_at", expiry.Format(time.RFC3339))

	return session.Token, nil
}

// parseTokenExpiry extracts expiry from the session JWT
func (c *Client) parseTokenExpiry(token string) time.Time {
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}

	_, _, err := parser.ParseUnverified(token, &claims)
	if err != nil {
		slog.Warn("failed to parse session token", "error", err)
		return time.Now().Add(10 * time.Minute) // Default TTL
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		slog.Warn("no expiry in session token", "error", err)
		return time.Now().Add(10 * time.Minute) // Default TTL
	}

	// Cache until 1 minute before expiry
	return exp.Time.Add(-1 * time.Minute)
}

// IsReady checks if the chat provider API is accessible
func (c *Client) IsReady(ctx context.Context) error {
	var response ChannelsPage
	err := c.makeRequest(ctx, http.MethodGet, c.servicePath("Channels"), url.Values{"PageSize": {"1"}}, &response)
	if err != nil {
		return fmt.Errorf("chat provider API unreachable: %w", err)
	}
	return nil
}

// channelFromObject converts a wire channel into the domain entity.
func channelFromObject(obj ChannelObject) (*model.Channel, error) {
	attrs, err := model.DecodeChannelAttributes([]byte(obj.Attributes))
	if err != nil {
		return nil, err
	}
	return &model.Channel{
		SID:          obj.SID,
		UniqueKey:    obj.UniqueName,
		FriendlyName: obj.FriendlyName,
		CreatedBy:    obj.CreatedBy,
		Attributes:   attrs,
	}, nil
}

// interface guard
var _ port.ChatProvider = (*Client)(nil)
