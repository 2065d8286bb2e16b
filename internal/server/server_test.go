package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-dashboard/internal/common/logger"
	"partner-dashboard/internal/common/metrics"
	validatepassword "partner-dashboard/internal/endpoints/auth/validate-password"
)

func newTestServer(t *testing.T, checks map[string]Check) *httptest.Server {
	t.Helper()
	s := New(Options{
		Logger:           logger.NewTestLogger(t),
		PasswordValidate: validatepassword.NewHandler(logger.NewTestLogger(t)),
		SendMFACode: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
		Checks: checks,
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return fmt.Errorf("connection refused") }

	srv := newTestServer(t, map[string]Check{"postgres": ok})
	resp, err := http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	srv = newTestServer(t, map[string]Check{"postgres": ok, "redis": down})
	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "not_ready", body["status"])
	assert.Equal(t, "connection refused", body["checks"].(map[string]interface{})["redis"])
}

func counterValue(t *testing.T, labels ...string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.HTTPRequests.WithLabelValues(labels...).Write(&m))
	return m.GetCounter().GetValue()
}

func TestRoutesAreMetered(t *testing.T) {
	srv := newTestServer(t, nil)
	before := counterValue(t, "password_validate", http.MethodPost, "200")

	resp, err := http.Post(srv.URL+"/api/auth/password/validate", "application/json", strings.NewReader(`{"password":"Jelszo123"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	after := counterValue(t, "password_validate", http.MethodPost, "200")
	assert.Equal(t, before+1, after)
}

func TestSendMFACodeAcceptsAnyMethod(t *testing.T) {
	srv := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/functions/v1/send-mfa-code", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}
