package control

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-beagle/gstkit/gst"
)

func TestMain(m *testing.M) {
	gst.Init()
	os.Exit(m.Run())
}

func shortPipeline(t *testing.T) (*gst.Pipeline, *gst.Bus) {
	t.Helper()
	pipeline, err := gst.NewPipeline("")
	require.NoError(t, err)

	src, err := gst.NewElement("audiotestsrc", "")
	require.NoError(t, err)
	require.NoError(t, src.SetProperty("num-buffers", 8))
	sink, err := gst.NewElement("fakesink", "")
	require.NoError(t, err)

	require.True(t, pipeline.AddMany(src, sink))
	require.True(t, gst.LinkMany(src, sink))

	bus, ok := pipeline.Bus()
	require.True(t, ok)

	t.Cleanup(func() {
		pipeline.SetNull()
		bus.Unref()
		src.Unref()
		sink.Unref()
		pipeline.Unref()
	})
	return pipeline, bus
}

func TestBusWatcherLifecycle(t *testing.T) {
	_, bus := shortPipeline(t)
	bw := NewBusWatcher(bus)

	require.NoError(t, bw.Start())
	assert.True(t, bw.IsRunning())
	assert.Error(t, bw.Start(), "starting twice must fail")

	require.NoError(t, bw.Stop())
	assert.False(t, bw.IsRunning())
	assert.NoError(t, bw.Stop(), "stopping twice is harmless")
}

func TestBusWatcherSeesEOS(t *testing.T) {
	pipeline, bus := shortPipeline(t)
	bw := NewBusWatcher(bus)
	bw.AddDefaultHandlers()

	var eos atomic.Bool
	bw.AddHandler(gst.MessageEOS, func(msg *gst.Message) bool {
		eos.Store(true)
		return true
	})

	require.NoError(t, bw.Start())
	defer bw.Stop()

	require.NotEqual(t, gst.StateChangeFailure, pipeline.Play())

	deadline := time.Now().Add(10 * time.Second)
	for !eos.Load() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	assert.True(t, eos.Load(), "a bounded source must reach end of stream")
}

func TestBusWatcherWaitForWhileRunning(t *testing.T) {
	pipeline, bus := shortPipeline(t)
	bw := NewBusWatcher(bus)
	bw.AddDefaultHandlers()

	require.NoError(t, bw.Start())
	defer bw.Stop()

	// Start playback only after the waiter is parked, so the message
	// loop cannot drain EOS before anyone is waiting for it.
	go func() {
		time.Sleep(50 * time.Millisecond)
		pipeline.Play()
	}()

	// The running loop stays the only bus consumer; the awaited message
	// is handed over instead of being swallowed by the drain.
	msg, err := bw.WaitFor(gst.MessageEOS, 10*time.Second)
	require.NoError(t, err)
	defer msg.Unref()
	assert.Equal(t, gst.MessageEOS, msg.Type())
}

func TestBusWatcherWaitForTimeoutWhileRunning(t *testing.T) {
	_, bus := shortPipeline(t)
	bw := NewBusWatcher(bus)

	require.NoError(t, bw.Start())
	defer bw.Stop()

	// Pipeline stays in NULL, so no EOS can arrive.
	_, err := bw.WaitFor(gst.MessageEOS, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestBusWatcherWaitForTimeout(t *testing.T) {
	_, bus := shortPipeline(t)
	bw := NewBusWatcher(bus)

	// Pipeline stays in NULL, so no EOS can arrive.
	_, err := bw.WaitFor(gst.MessageEOS, 200*time.Millisecond)
	assert.Error(t, err)
}
