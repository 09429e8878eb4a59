package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrapps/appdaloja/pkg/cache"
	"github.com/mrapps/appdaloja/pkg/cache/inmemory"
	"github.com/mrapps/appdaloja/pkg/config"
	"github.com/mrapps/appdaloja/pkg/session"
)

func setupServer(t *testing.T, auth config.AuthConfig) (*APIServer, *session.Session, cache.Cache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := inmemory.NewCache(&inmemory.Config{DefaultExpiration: 0, CleanupInterval: 600})
	require.NoError(t, err)

	sess := session.New(c)
	t.Cleanup(func() { _ = sess.Close() })

	cfg := &config.AppConfig{
		App: config.App{Environment: "test"},
		APIServer: config.APIServerConfig{
			Host: "127.0.0.1",
			Auth: auth,
			CORS: config.CORSConfig{AllowedMethods: []string{"GET"}},
		},
	}
	return NewAPIServer(cfg, sess), sess, c
}

func doGet(t *testing.T, s *APIServer, path string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestAPIServer_Routes(t *testing.T) {
	s, sess, c := setupServer(t, config.AuthConfig{})
	ctx := context.Background()
	at := time.Date(2024, 3, 5, 17, 7, 9, 0, time.UTC)

	require.NoError(t, sess.SetStore(ctx, map[string]any{"_id": "Z"}))
	require.NoError(t, sess.Store().Device.SetUniqueID(ctx, "device-1"))
	require.NoError(t, sess.Store().Ads.Refresh(ctx, "Z", []any{"ad"}, at))
	require.NoError(t, sess.SetAds(ctx, "Y", []any{}))
	require.NoError(t, c.Set(ctx, "com.mrapps.appdaloja:config", "{broken", cache.NoExpiration))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "status",
			path:       "/api/v1/status",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "com.mrapps.appdaloja", body["namespace"])
			},
		},
		{
			name:       "device",
			path:       "/api/v1/device",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "device-1", body["uniqueId"])
			},
		},
		{
			name:       "store blob",
			path:       "/api/v1/blobs/store",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "com.mrapps.appdaloja:store", body["key"])
				assert.Equal(t, map[string]any{"_id": "Z"}, body["value"])
			},
		},
		{
			name:       "missing blob",
			path:       "/api/v1/blobs/global",
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "global not found", body["error"])
			},
		},
		{
			name:       "corrupt blob",
			path:       "/api/v1/blobs/config",
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "config is corrupt", body["error"])
			},
		},
		{
			name:       "unknown domain",
			path:       "/api/v1/blobs/uniqueId",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ads list",
			path:       "/api/v1/ads",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, []any{"Y", "Z"}, body["ids"])
			},
		},
		{
			name:       "ads with timestamp",
			path:       "/api/v1/ads/Z",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, []any{"ad"}, body["ads"])
				assert.Equal(t, "2024-03-05T17:07:09Z", body["updatedAt"])
			},
		},
		{
			name:       "ads without timestamp",
			path:       "/api/v1/ads/Y",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, []any{}, body["ads"])
				assert.NotContains(t, body, "updatedAt")
			},
		},
		{
			name:       "missing ads",
			path:       "/api/v1/ads/X",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "snapshot",
			path:       "/api/v1/snapshot",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "device-1", body["uniqueId"])
				assert.Contains(t, body["blobs"], "store")
				assert.NotContains(t, body["blobs"], "config")
				assert.Len(t, body["ads"], 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doGet(t, s, tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestAPIServer_DeviceNotCreated(t *testing.T) {
	s, sess, _ := setupServer(t, config.AuthConfig{})

	w, _ := doGet(t, s, "/api/v1/device", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, sess.Store().Device.GetUniqueID(context.Background()))
}

func TestAPIServer_Auth(t *testing.T) {
	s, _, _ := setupServer(t, config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}})

	w, _ := doGet(t, s, "/api/v1/status", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doGet(t, s, "/api/v1/status", map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIServer_StartStops(t *testing.T) {
	s, _, _ := setupServer(t, config.AuthConfig{})
	s.config.APIServer.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestAPIServer_Tracing(t *testing.T) {
	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)
	t.Cleanup(func() { opentracing.SetGlobalTracer(opentracing.NoopTracer{}) })

	s, _, _ := setupServer(t, config.AuthConfig{})
	w, _ := doGet(t, s, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	spans := tracer.FinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP GET /api/v1/status", spans[0].OperationName)
}
