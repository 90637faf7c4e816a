package httpapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgeovany/envshim/internal/config"
	"github.com/mgeovany/envshim/internal/envjs"
	"github.com/mgeovany/envshim/internal/health"
)

func newTestRouter(t *testing.T, h *config.Holder) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SUPABASE_SERVICE_KEY=secret"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env-config.js"), []byte("window.ENV_API_BASE_URL = 'stale';"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	return New(Deps{
		Config:         h,
		StaticDir:      dir,
		AllowedOrigins: []string{"https://app.example.com"},
		Health:         health.Info{Service: "svc", Version: "1.0.0"},
	}), dir
}

func do(h http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEnvConfigJSServesCurrentValues(t *testing.T) {
	holder := config.NewHolder(config.NewDeploymentConfig("https://api.example.com", "https://proj.example-backend.co", "abc123"))
	h, _ := newTestRouter(t, holder)

	rec := do(h, http.MethodGet, "/env-config.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	got, err := envjs.Parse(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.True(t, got.Equal(holder.Current()))
	assert.NotContains(t, rec.Body.String(), "stale")
}

func TestEnvConfigReflectsReload(t *testing.T) {
	holder := config.NewHolder(config.DeploymentConfig{})
	h, _ := newTestRouter(t, holder)

	rec := do(h, http.MethodGet, "/env-config.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"apiBaseUrl":"","supabaseUrl":"","supabaseAnonKey":""}`, rec.Body.String())

	holder.Load(config.MapSource{config.KeyAPIBaseURL: "https://api.example.com"})

	rec = do(h, http.MethodGet, "/env-config.json", nil)
	assert.JSONEq(t, `{"apiBaseUrl":"https://api.example.com","supabaseUrl":"","supabaseAnonKey":""}`, rec.Body.String())
}

func TestEnvConfigMethods(t *testing.T) {
	h, _ := newTestRouter(t, &config.Holder{})

	rec := do(h, http.MethodHead, "/env-config.js", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(h, http.MethodPost, "/env-config.js", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestStaticFiles(t *testing.T) {
	h, _ := newTestRouter(t, &config.Holder{})

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{path: "/", status: http.StatusOK, body: "<html>app</html>"},
		{path: "/assets/app.js", status: http.StatusOK, body: "console.log(1)"},
		{path: "/assets/", status: http.StatusNotFound},
		{path: "/.env", status: http.StatusNotFound},
		{path: "/missing.html", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(h, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestNoStaticDir(t *testing.T) {
	h := New(Deps{})
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/env-config.js", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", nil).Code)
}

func TestCORS(t *testing.T) {
	h, _ := newTestRouter(t, &config.Holder{})

	rec := do(h, http.MethodGet, "/env-config.json", map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	rec = do(h, http.MethodGet, "/env-config.json", map[string]string{"Origin": "https://evil.example.com"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(h, http.MethodOptions, "/env-config.json", map[string]string{
		"Origin":                         "https://app.example.com",
		"Access-Control-Request-Method":  "GET",
		"Access-Control-Request-Headers": "x-request-id",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, HEAD, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "x-request-id", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestRequestID(t *testing.T) {
	h, _ := newTestRouter(t, &config.Holder{})

	rec := do(h, http.MethodGet, "/health", nil)
	_, err := uuid.Parse(rec.Header().Get("X-Request-Id"))
	assert.NoError(t, err)

	id := uuid.NewString()
	rec = do(h, http.MethodGet, "/health", map[string]string{"X-Request-Id": id})
	assert.Equal(t, id, rec.Header().Get("X-Request-Id"))

	rec = do(h, http.MethodGet, "/health", map[string]string{"X-Request-Id": "not-a-uuid"})
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get("X-Request-Id"))
}

func TestAllowedOrigins(t *testing.T) {
	got := AllowedOrigins(config.Config{FrontendURL: "https://app.example.com", CORSDev: true})
	assert.Equal(t, append([]string{"https://app.example.com"}, DefaultDevOrigins...), got)

	assert.Equal(t, []string{"https://app.example.com"}, AllowedOrigins(config.Config{FrontendURL: "https://app.example.com"}))
	assert.Empty(t, AllowedOrigins(config.Config{}))
}
