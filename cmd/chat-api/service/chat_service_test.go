// Copyright The OpenConf Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openconfhq/conference-chat-service/internal/domain/model"
	"github.com/openconfhq/conference-chat-service/internal/infrastructure/mock"
	chatsvc "github.com/openconfhq/conference-chat-service/internal/service"
	"github.com/openconfhq/conference-chat-service/pkg/constants"
	"github.com/openconfhq/conference-chat-service/pkg/utils"
)

type apiFixture struct {
	echo     *echo.Echo
	provider *mock.MockChatProvider
	mirror   *mock.MockMirrorStore
	reader   *mock.MockEntityAttributeReader
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	provider := mock.NewMockChatProvider()
	mirror := mock.NewMockMirrorStore()
	reader := mock.NewMockEntityAttributeReader()

	roleSet := model.RoleSet{AdminRoleSID: "RL_ADMIN", UserRoleSID: "RL_USER"}
	chatWriter := chatsvc.NewChatWriterOrchestrator(
		chatsvc.WithChatProvider(provider),
		chatsvc.WithMirrorStore(mirror),
		chatsvc.WithEntityAttributeReader(reader),
		chatsvc.WithRoleSet(roleSet),
		chatsvc.WithRetryConfig(utils.NewRetryConfig(2, time.Millisecond, 5*time.Millisecond)),
	)
	reactionWriter := chatsvc.NewReactionWriterOrchestrator(
		chatsvc.WithReactionChatProvider(provider),
	)
	tokenIssuer := chatsvc.NewTokenIssuer(
		chatsvc.WithSigningSecret([]byte("test-secret")),
		chatsvc.WithServiceSID("IS_service"),
	)

	e := echo.New()
	NewChatService(chatWriter, reactionWriter, tokenIssuer, mirror, provider).Register(e)

	return &apiFixture{echo: e, provider: provider, mirror: mirror, reader: reader}
}

func (f *apiFixture) seedProfiles(conferenceUID string, identities ...string) {
	for _, identity := range identities {
		f.reader.SetProfile(conferenceUID, &model.Profile{
			Identity:    identity,
			DisplayName: strings.ToUpper(identity[:1]) + identity[1:],
			AccountUID:  "acct-" + identity,
		})
	}
}

func (f *apiFixture) request(t *testing.T, method, path, body string, principal bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if principal {
		req.Header.Set(constants.IdentityHeader, "alice")
		req.Header.Set(constants.ConferenceHeader, "conf-1")
	}

	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func TestChatService_CreateChat(t *testing.T) {
	fixture := newAPIFixture(t)
	fixture.seedProfiles("conf-1", "alice", "bob")

	rec := fixture.request(t, http.MethodPost, "/chats",
		`{"invite":["bob"],"mode":"private"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result struct {
		ChannelSID string `json:"channelSID"`
		TextChatID string `json:"textChatID"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.ChannelSID)
	assert.NotEmpty(t, result.TextChatID)

	// Same DM pair again resolves to the same channel.
	rec = fixture.request(t, http.MethodPost, "/chats",
		`{"invite":["bob"],"mode":"private"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var second struct {
		ChannelSID string `json:"channelSID"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, result.ChannelSID, second.ChannelSID)
}

func TestChatService_CreateChatValidation(t *testing.T) {
	fixture := newAPIFixture(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "missing invite", body: `{"mode":"private"}`, code: http.StatusBadRequest},
		{name: "bad mode", body: `{"invite":["bob"],"mode":"secret"}`, code: http.StatusBadRequest},
		{name: "group without title", body: `{"invite":["bob","carol"],"mode":"public"}`, code: http.StatusBadRequest},
		{name: "malformed JSON", body: `{"invite":`, code: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := fixture.request(t, http.MethodPost, "/chats", tc.body, true)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestChatService_MissingPrincipal(t *testing.T) {
	fixture := newAPIFixture(t)

	rec := fixture.request(t, http.MethodPost, "/chats",
		`{"invite":["bob"],"mode":"private"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatService_InviteToChat(t *testing.T) {
	fixture := newAPIFixture(t)
	fixture.seedProfiles("conf-1", "alice", "bob", "carol")

	rec := fixture.request(t, http.MethodPost, "/chats",
		`{"invite":["bob","carol"],"mode":"private","title":"Speaker prep"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ChannelSID string `json:"channelSID"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	fixture.seedProfiles("conf-1", "dave")
	rec = fixture.request(t, http.MethodPost, "/chats/"+created.ChannelSID+"/invites",
		`{"targetIdentities":["dave"]}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unknown channel maps to 404.
	rec = fixture.request(t, http.MethodPost, "/chats/CH_missing/invites",
		`{"targetIdentities":["dave"]}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatService_Reactions(t *testing.T) {
	fixture := newAPIFixture(t)
	fixture.seedProfiles("conf-1", "alice", "bob")

	rec := fixture.request(t, http.MethodPost, "/chats",
		`{"invite":["bob"],"mode":"private"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ChannelSID string `json:"channelSID"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	messageSID := fixture.provider.AddMessage(created.ChannelSID, model.MessageAttributes{})
	path := "/chats/" + created.ChannelSID + "/messages/" + messageSID + "/reactions"

	rec = fixture.request(t, http.MethodPost, path, `{"reaction":"thumbsup"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = fixture.request(t, http.MethodDelete, path, `{"reaction":"thumbsup"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = fixture.request(t, http.MethodPost, path, `{"reaction":""}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatService_IssueToken(t *testing.T) {
	fixture := newAPIFixture(t)

	rec := fixture.request(t, http.MethodPost, "/token", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Token    string `json:"token"`
		Identity string `json:"identity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "alice", result.Identity)
}

func TestChatService_HealthProbes(t *testing.T) {
	fixture := newAPIFixture(t)

	rec := fixture.request(t, http.MethodGet, "/livez", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = fixture.request(t, http.MethodGet, "/readyz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}
