package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-beagle/gstkit/gst"
)

func TestObserveTransition(t *testing.T) {
	c := NewCollector()

	c.ObserveTransition(gst.StateNull, gst.StatePaused, gst.StateChangeSuccess, 5*time.Millisecond)
	c.ObserveTransition(gst.StateNull, gst.StatePaused, gst.StateChangeSuccess, 7*time.Millisecond)
	c.ObserveTransition(gst.StatePaused, gst.StatePlaying, gst.StateChangeFailure, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		c.transitions.WithLabelValues("NULL", "PAUSED", "SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		c.transitions.WithLabelValues("PAUSED", "PLAYING", "FAILURE")))
}

func TestObserveBusMessage(t *testing.T) {
	c := NewCollector()

	c.ObserveBusMessage(gst.MessageEOS)
	c.ObserveBusMessage(gst.MessageEOS)
	c.ObserveBusMessage(gst.MessageError)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.busMessages.WithLabelValues("eos")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.busMessages.WithLabelValues("error")))
}

func TestLiveWrappersGauge(t *testing.T) {
	c := NewCollector()

	c.SetLiveWrappers(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(c.liveWrappers))

	c.SetLiveWrappers(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.liveWrappers))
}

func TestHandlerServesMetrics(t *testing.T) {
	c := NewCollector()
	c.ObserveTransition(gst.StateNull, gst.StateReady, gst.StateChangeSuccess, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gstkit_state_transitions_total")
}
