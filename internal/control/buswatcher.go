// Package control supervises gst pipelines: timeout-bounded state
// management, bus message dispatch and live-handle accounting. Everything
// here is additive infrastructure over the gst control surface; the
// engine keeps running its own threads regardless.
package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/open-beagle/gstkit/gst"
)

// MessageHandler handles one bus message. Returning false stops the
// remaining handlers for this message.
type MessageHandler func(msg *gst.Message) bool

// BusWatcher polls a pipeline bus and dispatches messages to registered
// handlers from its own goroutine.
type BusWatcher struct {
	bus    *gst.Bus
	logger *logrus.Entry

	handlers map[gst.MessageType][]MessageHandler
	waiters  map[gst.MessageType][]chan *gst.Message
	mutex    sync.RWMutex

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewBusWatcher creates a watcher over the given bus. The watcher does
// not take over the bus wrapper's unit; the caller still releases it
// after Stop.
func NewBusWatcher(bus *gst.Bus) *BusWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &BusWatcher{
		bus:      bus,
		logger:   logrus.WithField("component", "bus-watcher"),
		handlers: make(map[gst.MessageType][]MessageHandler),
		waiters:  make(map[gst.MessageType][]chan *gst.Message),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// AddHandler registers a handler for a message type. Use gst.MessageAny
// to observe everything.
func (bw *BusWatcher) AddHandler(t gst.MessageType, handler MessageHandler) {
	bw.mutex.Lock()
	defer bw.mutex.Unlock()
	bw.handlers[t] = append(bw.handlers[t], handler)
}

// RemoveHandlers removes all handlers for a message type.
func (bw *BusWatcher) RemoveHandlers(t gst.MessageType) {
	bw.mutex.Lock()
	defer bw.mutex.Unlock()
	delete(bw.handlers, t)
}

// Start begins polling the bus.
func (bw *BusWatcher) Start() error {
	bw.mutex.Lock()
	defer bw.mutex.Unlock()

	if bw.running {
		return fmt.Errorf("bus watcher is already running")
	}
	bw.running = true
	bw.wg.Add(1)
	go bw.messageLoop()

	bw.logger.Debug("Bus watcher started")
	return nil
}

// Stop stops polling and waits for the loop to exit.
func (bw *BusWatcher) Stop() error {
	bw.mutex.Lock()
	if !bw.running {
		bw.mutex.Unlock()
		return nil
	}
	bw.running = false
	bw.mutex.Unlock()

	bw.cancel()
	bw.wg.Wait()

	bw.logger.Debug("Bus watcher stopped")
	return nil
}

// IsRunning reports whether the message loop is active.
func (bw *BusWatcher) IsRunning() bool {
	bw.mutex.RLock()
	defer bw.mutex.RUnlock()
	return bw.running
}

func (bw *BusWatcher) messageLoop() {
	defer bw.wg.Done()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-bw.ctx.Done():
			return
		case <-ticker.C:
			bw.drain()
		}
	}
}

func (bw *BusWatcher) drain() {
	for {
		msg, ok := bw.bus.Pop()
		if !ok {
			return
		}
		bw.dispatch(msg)
		msg.Unref()
	}
}

func (bw *BusWatcher) dispatch(msg *gst.Message) {
	t := msg.Type()

	bw.mutex.Lock()
	waiting := bw.waiters[t]
	delete(bw.waiters, t)
	handlers := append(append([]MessageHandler{}, bw.handlers[t]...),
		bw.handlers[gst.MessageAny]...)
	bw.mutex.Unlock()

	// Each waiter gets its own reference; the channels are buffered and
	// one-shot, so delivery never blocks the loop.
	for _, ch := range waiting {
		ch <- msg.Ref()
	}

	if len(handlers) == 0 {
		bw.logger.Debugf("Unhandled %s message from %s", t, sourceOf(msg))
		return
	}
	for _, handler := range handlers {
		if handler != nil && !handler(msg) {
			break
		}
	}
}

func sourceOf(msg *gst.Message) string {
	if name := msg.SourceName(); name != "" {
		return name
	}
	return "unknown"
}

// AddDefaultHandlers registers logging handlers for the message types a
// control surface typically cares about.
func (bw *BusWatcher) AddDefaultHandlers() {
	bw.AddHandler(gst.MessageError, func(msg *gst.Message) bool {
		bw.logger.Errorf("Pipeline error from %s: %s", sourceOf(msg), msg.ParseError())
		return true
	})
	bw.AddHandler(gst.MessageWarning, func(msg *gst.Message) bool {
		bw.logger.Warnf("Pipeline warning from %s", sourceOf(msg))
		return true
	})
	bw.AddHandler(gst.MessageEOS, func(msg *gst.Message) bool {
		bw.logger.Infof("End of stream from %s", sourceOf(msg))
		return true
	})
	bw.AddHandler(gst.MessageStateChanged, func(msg *gst.Message) bool {
		bw.logger.Debugf("State change reported by %s", sourceOf(msg))
		return true
	})
	bw.AddHandler(gst.MessageBuffering, func(msg *gst.Message) bool {
		bw.logger.Debugf("Buffering reported by %s", sourceOf(msg))
		return true
	})
}

// WaitFor blocks until a message of the given type arrives or the timeout
// expires. While the watcher runs its message loop stays the only bus
// consumer and hands the awaited message over; on a stopped watcher
// WaitFor polls the bus itself, dispatching other messages normally.
// The caller must Unref the returned message.
func (bw *BusWatcher) WaitFor(t gst.MessageType, timeout time.Duration) (*gst.Message, error) {
	if bw.IsRunning() {
		return bw.waitDelivered(t, timeout)
	}

	ctx, cancel := context.WithTimeout(bw.ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timeout waiting for %s message", t)
		case <-ticker.C:
			msg, ok := bw.bus.Pop()
			if !ok {
				continue
			}
			if msg.Type() == t {
				return msg, nil
			}
			bw.dispatch(msg)
			msg.Unref()
		}
	}
}

// waitDelivered parks on a one-shot channel the message loop fills when
// a message of the requested type comes through dispatch.
func (bw *BusWatcher) waitDelivered(t gst.MessageType, timeout time.Duration) (*gst.Message, error) {
	ch := make(chan *gst.Message, 1)
	bw.mutex.Lock()
	bw.waiters[t] = append(bw.waiters[t], ch)
	bw.mutex.Unlock()

	select {
	case msg := <-ch:
		return msg, nil
	case <-bw.ctx.Done():
	case <-time.After(timeout):
	}

	bw.removeWaiter(t, ch)

	// The loop may have delivered between the timeout firing and the
	// waiter being removed.
	select {
	case msg := <-ch:
		return msg, nil
	default:
	}
	return nil, fmt.Errorf("timeout waiting for %s message", t)
}

func (bw *BusWatcher) removeWaiter(t gst.MessageType, ch chan *gst.Message) {
	bw.mutex.Lock()
	defer bw.mutex.Unlock()

	kept := bw.waiters[t][:0]
	for _, c := range bw.waiters[t] {
		if c != ch {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		delete(bw.waiters, t)
	} else {
		bw.waiters[t] = kept
	}
}
