package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-beagle/gstkit/internal/config"
	"github.com/open-beagle/gstkit/internal/metrics"
)

type fakeSource struct {
	status Status
}

func (f *fakeSource) Status() Status { return f.status }

func newTestServer(source StatusSource) *Server {
	cfg := config.DefaultMonitorConfig()
	cfg.Enabled = true
	return NewServer(cfg, source, metrics.NewCollector())
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeSource{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleStatus(t *testing.T) {
	pos := int64(1500000000)
	source := &fakeSource{status: Status{
		Pipeline:   "demo",
		State:      "PLAYING",
		PositionNs: &pos,
		DurationNs: nil,
		Elements:   []string{"src0", "sink0"},
	}}
	s := newTestServer(source)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "demo", got.Pipeline)
	assert.Equal(t, "PLAYING", got.State)
	require.NotNil(t, got.PositionNs)
	assert.Equal(t, pos, *got.PositionNs)

	// Unknown duration stays null, never a numeric sentinel.
	assert.Nil(t, got.DurationNs)
	assert.Contains(t, rec.Body.String(), `"duration_ns":null`)
}

func TestHandleStatusWithoutSource(t *testing.T) {
	s := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(&fakeSource{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublishWithoutClients(t *testing.T) {
	s := newTestServer(&fakeSource{})

	// Publishing with no connected clients must not panic or block.
	s.Publish(BusEvent{Type: "eos", Source: "sink0"})
}
