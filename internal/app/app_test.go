package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/alima/supply/internal/observability"
	"github.com/alima/supply/internal/platform/httpx"
	"github.com/alima/supply/internal/shared"
	_ "github.com/alima/supply/testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "ALM-", cfg.SKUPrefix)
	require.Equal(t, "MXN", cfg.DefaultCurrency)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigReadsDotEnvWithoutOverriding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SKU_PREFIX=PRV-\nDEFAULT_CURRENCY=usd\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("DEFAULT_CURRENCY", "mxn")
	t.Setenv("SKU_PREFIX", "")
	require.NoError(t, os.Unsetenv("SKU_PREFIX"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "PRV-", cfg.SKUPrefix)
	require.Equal(t, "MXN", cfg.DefaultCurrency)
}

func TestLoadConfigRejectsBadCurrency(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DEFAULT_CURRENCY", "PESOS")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{AppEnv: "production", LogFormat: "json"}, &buf)
	logger.Info("hello", "rows", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hello", line["msg"])
	require.Equal(t, "production", line["env"])
	require.EqualValues(t, 3, line["rows"])
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := NewRouter(RouterParams{
		Logger:  newLogger(nil, &bytes.Buffer{}),
		Config:  &Config{AppEnv: "test"},
		Metrics: observability.NewMetrics(),
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "supply_http_requests_total")
}

func TestRouterNotFoundUsesEnvelope(t *testing.T) {
	router := NewRouter(RouterParams{Logger: newLogger(nil, &bytes.Buffer{}), Config: &Config{}})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	require.Equal(t, httpx.CodeNotFound, env.Error.Code)
}

func TestActorMiddleware(t *testing.T) {
	var got shared.Actor
	var ok bool
	handler := ActorMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = shared.ActorFromContext(r.Context())
	}))

	user, business := uuid.New(), uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(httpx.HeaderUserID, user.String())
	req.Header.Set(httpx.HeaderBusinessID, business.String())
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)
	require.Equal(t, shared.Actor{UserID: user, BusinessID: business}, got)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, ok)
}

func TestInTestMode(t *testing.T) {
	RefreshTestMode()
	require.True(t, InTestMode())

	t.Cleanup(RefreshTestMode)
	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	require.False(t, InTestMode())
}
