package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/open-beagle/gstkit/gst"
	"github.com/open-beagle/gstkit/internal/config"
)

const (
	appName    = "gstctl"
	appVersion = "1.0.0"
)

var (
	flagConfig   string
	flagLogLevel string

	flagSeek    float64
	flagRate    float64
	flagRunFor  time.Duration
	flagMonitor bool
	flagMonAddr string
)

func main() {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Control GStreamer pipelines from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "configuration file path")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	play := &cobra.Command{
		Use:   "play [factory...]",
		Short: "Build a pipeline from an element chain and play it",
		Long: "Builds a pipeline by creating the given element factories in order,\n" +
			"linking each to the next, and driving the pipeline to PLAYING. The\n" +
			"chain can also come from the configuration file.",
		RunE: runPlay,
	}
	play.Flags().Float64Var(&flagSeek, "seek", -1, "seek to this position in seconds after preroll")
	play.Flags().Float64Var(&flagRate, "rate", 1.0, "playback rate; negative plays in reverse")
	play.Flags().DurationVar(&flagRunFor, "run-for", 0, "stop after this duration (0 = until EOS or signal)")
	play.Flags().BoolVar(&flagMonitor, "monitor", false, "serve the HTTP debug surface")
	play.Flags().StringVar(&flagMonAddr, "monitor-addr", "", "monitor listen address, host:port")
	root.AddCommand(play)

	states := &cobra.Command{
		Use:   "states [factory...]",
		Short: "Walk a pipeline through the full state ladder",
		Long: "Builds the element chain like play does, then steps the pipeline\n" +
			"NULL -> READY -> PAUSED -> PLAYING and back down, printing the result\n" +
			"of every transition.",
		RunE: runStates,
	}
	root.AddCommand(states)

	inspect := &cobra.Command{
		Use:   "inspect <factory>",
		Short: "Create an element and print its control surface",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	root.AddCommand(inspect)

	version := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			gst.Init()
			fmt.Printf("%s v%s (%s)\n", appName, appVersion, gst.Version())
		},
	}
	root.AddCommand(version)

	if err := root.Execute(); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration file, applies environment and flag
// overrides and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if flagConfig != "" {
		loaded, err := config.LoadFromFile(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.Logging.ApplyEnv()
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if err := config.SetupLogger(cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	gst.Init()

	elem, err := gst.NewElement(args[0], "")
	if err != nil {
		return err
	}
	defer elem.Unref()

	fmt.Printf("factory: %s\n", args[0])
	fmt.Printf("name:    %s\n", elem.Name())

	for _, pad := range []string{"src", "sink"} {
		if p, ok := elem.StaticPad(pad); ok {
			fmt.Printf("pad:     %s (%s)\n", p.Name(), p.Direction())
			p.Unref()
		}
	}

	current, pending, ret := elem.GetState(0)
	fmt.Printf("state:   %s (pending %s, %s)\n", current, pending, ret)
	return nil
}
