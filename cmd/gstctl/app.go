package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/open-beagle/gstkit/gst"
	"github.com/open-beagle/gstkit/internal/config"
	"github.com/open-beagle/gstkit/internal/control"
	"github.com/open-beagle/gstkit/internal/metrics"
	"github.com/open-beagle/gstkit/internal/monitor"
)

// playerApp wires one pipeline to its supervision: state manager, bus
// watcher, handle registry, metrics and the optional monitor surface.
type playerApp struct {
	logger *logrus.Entry
	cfg    *config.Config

	pipeline *gst.Pipeline
	elements []*gst.Element

	stateManager *control.StateManager
	busWatcher   *control.BusWatcher
	registry     *control.Registry
	collector    *metrics.Collector
	monitor      *monitor.Server

	bus    *gst.Bus
	busRef string
	ids    []string

	done chan struct{}
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gst.Init()

	chain, err := elementChain(cfg, args)
	if err != nil {
		return err
	}

	if cfg.Monitor == nil {
		cfg.Monitor = config.DefaultMonitorConfig()
	}
	if flagMonitor {
		cfg.Monitor.Enabled = true
	}
	if flagMonAddr != "" {
		host, portStr, err := net.SplitHostPort(flagMonAddr)
		if err != nil {
			return fmt.Errorf("invalid monitor address %q: %w", flagMonAddr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid monitor port %q: %w", portStr, err)
		}
		cfg.Monitor.Host = host
		cfg.Monitor.Port = port
	}

	app, err := newPlayerApp(cfg, chain)
	if err != nil {
		return err
	}
	defer app.close()

	return app.run()
}

// elementChain resolves the element chain from positional factory names,
// falling back to the configuration file.
func elementChain(cfg *config.Config, args []string) ([]config.ElementConfig, error) {
	chain := cfg.Pipeline.Elements
	if len(args) > 0 {
		chain = nil
		for _, factory := range args {
			chain = append(chain, config.ElementConfig{Factory: factory})
		}
	}
	if len(chain) < 2 {
		return nil, fmt.Errorf("need at least two elements to build a pipeline")
	}
	return chain, nil
}

func newPlayerApp(cfg *config.Config, chain []config.ElementConfig) (*playerApp, error) {
	app := &playerApp{
		logger:    logrus.WithField("component", "player"),
		cfg:       cfg,
		registry:  control.NewRegistry(),
		collector: metrics.NewCollector(),
		done:      make(chan struct{}),
	}

	pipeline, err := gst.NewPipeline(cfg.Pipeline.Name)
	if err != nil {
		return nil, err
	}
	app.pipeline = pipeline
	app.ids = append(app.ids, app.registry.Register("pipeline", pipeline.Name()))

	for _, ec := range chain {
		elem, err := gst.NewElement(ec.Factory, ec.Name)
		if err != nil {
			app.close()
			return nil, err
		}
		for key, value := range ec.Properties {
			if err := elem.SetProperty(key, value); err != nil {
				app.logger.Warnf("Ignoring property %s on %s: %v", key, ec.Factory, err)
			}
		}
		if !pipeline.Add(elem) {
			elem.Unref()
			app.close()
			return nil, fmt.Errorf("failed to add %s to pipeline", ec.Factory)
		}
		app.elements = append(app.elements, elem)
		app.ids = append(app.ids, app.registry.Register("element", elem.Name()))
	}

	if !gst.LinkMany(app.elements...) {
		app.close()
		return nil, fmt.Errorf("failed to link element chain")
	}

	app.stateManager = control.NewStateManager(&pipeline.Element, &control.StateManagerConfig{
		TransitionTimeout: cfg.StateTimeout,
		MaxRetryAttempts:  1,
		RetryDelay:        time.Second,
		HistorySize:       100,
	})
	app.stateManager.SetTransitionCallback(func(tr control.Transition) {
		app.collector.ObserveTransition(tr.From, tr.To, tr.Result, tr.Duration)
	})

	bus, ok := pipeline.Bus()
	if !ok {
		app.close()
		return nil, fmt.Errorf("pipeline has no bus")
	}
	app.bus = bus
	app.busRef = app.registry.Register("bus", "pipeline-bus")

	app.busWatcher = control.NewBusWatcher(bus)
	app.busWatcher.AddDefaultHandlers()
	app.busWatcher.AddHandler(gst.MessageAny, func(msg *gst.Message) bool {
		app.collector.ObserveBusMessage(msg.Type())
		if app.monitor != nil {
			app.monitor.Publish(monitor.BusEvent{
				Type:      msg.Type().String(),
				Source:    msg.SourceName(),
				Detail:    msg.ParseError(),
				Timestamp: time.Now().Unix(),
			})
		}
		return true
	})
	app.busWatcher.AddHandler(gst.MessageEOS, func(msg *gst.Message) bool {
		select {
		case <-app.done:
		default:
			close(app.done)
		}
		return true
	})

	if cfg.Monitor.Enabled {
		app.monitor = monitor.NewServer(cfg.Monitor, app, app.collector)
	}

	app.collector.SetLiveWrappers(app.registry.Live())
	return app, nil
}

// Status implements monitor.StatusSource.
func (app *playerApp) Status() monitor.Status {
	current, pending, _ := app.pipeline.GetState(0)

	status := monitor.Status{
		Pipeline:  app.pipeline.Name(),
		State:     current.String(),
		Timestamp: time.Now().Unix(),
	}
	if pending != gst.StateVoidPending {
		status.PendingState = pending.String()
	}
	if pos, ok := app.pipeline.PositionNs(); ok {
		status.PositionNs = &pos
	}
	if dur, ok := app.pipeline.DurationNs(); ok {
		status.DurationNs = &dur
	}
	for _, elem := range app.elements {
		status.Elements = append(status.Elements, elem.Name())
	}
	return status
}

func (app *playerApp) run() error {
	if err := app.busWatcher.Start(); err != nil {
		return err
	}
	if app.monitor != nil {
		if err := app.monitor.Start(); err != nil {
			return err
		}
	}

	// Preroll first so seek and rate changes have a position to work
	// with, then start playback.
	if err := app.stateManager.SetState(gst.StatePaused); err != nil {
		return err
	}

	if flagSeek >= 0 {
		if !app.pipeline.SetPositionS(flagSeek) {
			app.logger.Warnf("Seek to %.2fs rejected", flagSeek)
		}
	}

	if err := app.stateManager.SetState(gst.StatePlaying); err != nil {
		return err
	}

	if flagRate != 1.0 {
		if !app.pipeline.SetSpeed(flagRate) {
			app.logger.Warnf("Rate change to %.2f rejected", flagRate)
		}
	}

	app.logger.Infof("Playing; pipeline %q", app.pipeline.Name())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var timeout <-chan time.Time
	if flagRunFor > 0 {
		timeout = time.After(flagRunFor)
	}

	select {
	case <-sigChan:
		app.logger.Info("Interrupted")
	case <-timeout:
		app.logger.Info("Run time elapsed")
	case <-app.done:
		app.logger.Info("End of stream")
	}

	return app.stateManager.SetState(gst.StateNull)
}

func (app *playerApp) close() {
	if app.busWatcher != nil {
		app.busWatcher.Stop()
	}
	if app.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		app.monitor.Stop(ctx)
		cancel()
	}

	if app.bus != nil {
		app.bus.Unref()
		app.registry.Release(app.busRef)
		app.bus = nil
	}
	for _, elem := range app.elements {
		elem.Unref()
	}
	app.elements = nil
	if app.pipeline != nil {
		app.pipeline.SetNull()
		app.pipeline.Unref()
		app.pipeline = nil
	}

	for _, id := range app.ids {
		app.registry.Release(id)
	}
	app.ids = nil

	if leaks := app.registry.ReportLeaks(); leaks > 0 {
		app.logger.Warnf("%d handles still tracked at shutdown", leaks)
	}
}

func runStates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gst.Init()

	chain, err := elementChain(cfg, args)
	if err != nil {
		return err
	}

	pipeline, err := gst.NewPipeline(cfg.Pipeline.Name)
	if err != nil {
		return err
	}
	defer pipeline.Unref()
	defer pipeline.SetNull()

	var elements []*gst.Element
	for _, ec := range chain {
		elem, err := gst.NewElement(ec.Factory, ec.Name)
		if err != nil {
			return err
		}
		defer elem.Unref()
		if !pipeline.Add(elem) {
			return fmt.Errorf("failed to add %s to pipeline", ec.Factory)
		}
		elements = append(elements, elem)
	}
	if !gst.LinkMany(elements...) {
		return fmt.Errorf("failed to link element chain")
	}

	ladder := []gst.State{
		gst.StateReady, gst.StatePaused, gst.StatePlaying,
		gst.StatePaused, gst.StateReady, gst.StateNull,
	}
	timeout := gst.ClockTimeFromDuration(cfg.StateTimeout)

	for _, target := range ladder {
		ret := pipeline.SetState(target)
		if ret == gst.StateChangeAsync {
			current, pending, settled := pipeline.GetState(timeout)
			fmt.Printf("-> %-8s %s (settled %s, pending %s, %s)\n",
				target, ret, current, pending, settled)
			if settled == gst.StateChangeFailure {
				return fmt.Errorf("transition to %s failed", target)
			}
			continue
		}
		fmt.Printf("-> %-8s %s\n", target, ret)
		if ret == gst.StateChangeFailure {
			return fmt.Errorf("transition to %s failed", target)
		}
	}
	return nil
}
