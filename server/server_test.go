package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sardine-ai/go-webclient/model"
	"github.com/sardine-ai/go-webclient/transport"
	"github.com/sardine-ai/go-webclient/webclient"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:115.0) Gecko/20100101 Firefox/115.0"

func newTestServer(t *testing.T, cfg model.Config) *Server {
	t.Helper()
	log, _ := test.NewNullLogger()
	ctx := context.Background()
	svc := webclient.NewService(nil, log)
	require.NoError(t, svc.ApplyProfile(ctx, model.Profile{Identity: "ECHOECHO", PublicNickname: "alice"}))
	require.NoError(t, svc.ApplyContact(ctx, &model.ContactReceiver{
		ID: "BOBBOBBO", FirstName: "Bob", Access: model.ContactAccess{CanChangeFirstName: true},
	}))
	require.NoError(t, svc.ApplyGroup(ctx, &model.GroupReceiver{ID: "g1", Name: "Climbers", Disabled: true}))
	return NewServer(cfg, svc, log)
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthBypassesAuth(t *testing.T) {
	s := newTestServer(t, model.DefaultConfig())
	s.AuthKey = "secret"
	h := s.Handler()

	rr := do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	_, err := uuid.Parse(rr.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	rr = do(t, h, http.MethodGet, "/config", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = do(t, h, http.MethodGet, "/config", "", map[string]string{"X-API-KEY": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = do(t, h, http.MethodGet, "/config", "", map[string]string{"X-API-KEY": "secret"})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestConfigEndpoint(t *testing.T) {
	cfg := model.DefaultConfig()
	h := newTestServer(t, cfg).Handler()

	rr := do(t, h, http.MethodGet, "/config", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	etag := rr.Header().Get("ETag")
	assert.NotEmpty(t, etag)

	var got model.Config
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, cfg, got)

	rr = do(t, h, http.MethodGet, "/config", "", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, rr.Code)

	rr = do(t, h, http.MethodPost, "/config", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestBrowserEndpoint(t *testing.T) {
	h := newTestServer(t, model.DefaultConfig()).Handler()

	rr := do(t, h, http.MethodGet, "/browser", "", map[string]string{"User-Agent": firefoxUA})
	require.Equal(t, http.StatusOK, rr.Code)
	var got browserReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.True(t, got.Browser.Firefox)
	assert.Equal(t, model.BrowserFirefox, got.Browser.Name)
	assert.True(t, got.SupportsWebrtcTask)
	assert.Equal(t, []string{transport.TaskWebRTC, transport.TaskRelayedData}, got.Tasks)
}

func TestReceiverEndpoints(t *testing.T) {
	h := newTestServer(t, model.DefaultConfig()).Handler()

	rr := do(t, h, http.MethodGet, "/receivers/me", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me controllerReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, model.ReceiverMe, me.Kind)
	assert.Equal(t, model.ModeView, me.Mode)
	assert.True(t, me.IsValid)
	assert.False(t, me.CanChat)
	assert.False(t, me.CanEdit)

	rr = do(t, h, http.MethodGet, "/receivers/contact/BOBBOBBO", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var contact controllerReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &contact))
	assert.True(t, contact.CanChat)
	assert.True(t, contact.CanEdit)

	rr = do(t, h, http.MethodGet, "/receivers/group/g1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var group controllerReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &group))
	assert.False(t, group.CanChat)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/receivers/contact/NOBODY00", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/receivers/me?mode=bogus", "", nil).Code)
}

func TestSaveProfile(t *testing.T) {
	s := newTestServer(t, model.DefaultConfig())
	h := s.Handler()

	rr := do(t, h, http.MethodPut, "/receivers/me", `{"nickname":"Alice"}`, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	cfg := model.DefaultConfig()
	cfg.ProfileEditing = true
	s.Config = cfg
	h = s.Handler()

	rr = do(t, h, http.MethodPut, "/receivers/me", `{"nickname":"Alice W."}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Alice W.", s.Service.Profile().PublicNickname)

	rr = do(t, h, http.MethodPut, "/receivers/me", `{"nickname":"`+strings.Repeat("x", 40)+`"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPut, "/receivers/me", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-KEY", "invalid")
	rr := httptest.NewRecorder()
	Auth(ok, "correct-key").ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %v, got %v", http.StatusUnauthorized, rr.Code)
	}
	if body := rr.Body.String(); body != "Unauthorized\n" {
		t.Errorf("expected body %q, got %q", "Unauthorized\n", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-KEY", "correct-key")
	rr = httptest.NewRecorder()
	Auth(ok, "correct-key").ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Errorf("expected authorized request to pass, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestRequestIDIsKept(t *testing.T) {
	h := newTestServer(t, model.DefaultConfig()).Handler()
	id := uuid.NewString()
	rr := do(t, h, http.MethodGet, "/health", "", map[string]string{RequestIDHeader: id})
	assert.Equal(t, id, rr.Header().Get(RequestIDHeader))

	rr = do(t, h, http.MethodGet, "/health", "", map[string]string{RequestIDHeader: "not-a-uuid"})
	assert.NotEqual(t, "not-a-uuid", rr.Header().Get(RequestIDHeader))
}
