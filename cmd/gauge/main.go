// Gauge - reads an analog barometer from a camera
//
// Finds the dial, fits the needle, maps its angle onto the Stormy / Normal /
// Sunny bands and latches the first target reading.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/teslashibe/go-gauge/internal/config"
	"github.com/teslashibe/go-gauge/internal/log"
	"github.com/teslashibe/go-gauge/pkg/camera"
	"github.com/teslashibe/go-gauge/pkg/display"
	"github.com/teslashibe/go-gauge/pkg/gauge"
	"github.com/teslashibe/go-gauge/pkg/session"
	"github.com/teslashibe/go-gauge/pkg/web"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

// HighGUI must be driven from the main thread on some platforms.
func init() {
	runtime.LockOSThread()
}

type options struct {
	configPath  string
	output      string
	image       string
	headless    bool
	web         bool
	logLevel    string
	writeConfig string
}

func main() {
	cfg, opts := parseFlags()

	if opts.writeConfig != "" {
		if err := config.Write(cfg, opts.writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("📝 Configuration written to %s\n", opts.writeConfig)
		return
	}

	if opts.image != "" {
		if err := readImage(cfg, opts); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, opts); err != nil {
		var acqErr *session.AcquisitionError
		if errors.As(err, &acqErr) {
			fmt.Fprintf(os.Stderr, "❌ Camera failure at frame %d: %v\n", acqErr.Frame, acqErr.Err)
			fmt.Fprintf(os.Stderr, "   Check that device %q is connected and not in use.\n", cfg.Camera.Device)
		} else {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		}
		os.Exit(1)
	}
}

// parseFlags loads the config file and applies command line overrides.
func parseFlags() (config.File, options) {
	var opts options

	cameraDev := flag.String("camera", "", "Camera index or video path (overrides config and GAUGE_CAMERA)")
	preset := flag.String("preset", "", "Camera format preset: "+strings.Join(camera.PresetNames(), ", "))
	flag.StringVar(&opts.configPath, "config", config.Path(""), "YAML config file (or GAUGE_CONFIG)")
	flag.StringVar(&opts.output, "output", "", "Write annotated frames to this video file (or image, with -image)")
	webAddr := flag.String("web", "", "Serve the dashboard on this address, e.g. :8080")
	flag.BoolVar(&opts.headless, "headless", false, "Do not open a preview window")
	flag.StringVar(&opts.image, "image", "", "Read a single still image and exit")
	target := flag.String("target", "", "Label to lock on; empty disables locking")
	delay := flag.Duration("delay", session.DefaultFrameDelay, "Pause between frames")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&opts.writeConfig, "write-config", "", "Write the effective configuration to this YAML file and exit")
	flag.Parse()

	log.Init(opts.logLevel)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(2)
	}

	// The preset seeds the camera format; explicit flags still win.
	if *preset != "" {
		if err := cfg.ApplyPreset(*preset); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
			os.Exit(2)
		}
	}

	opts.web = os.Getenv(config.EnvWebAddr) != ""
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "camera":
			cfg.Camera.Device = *cameraDev
		case "target":
			cfg.Gauge.Target = *target
		case "delay":
			cfg.Session.FrameDelay = *delay
		case "web":
			cfg.Web.Addr = *webAddr
			opts.web = *webAddr != ""
		case "output":
			cfg.Recorder.Path = opts.output
		}
	})

	if problems := cfg.Validate(); len(problems) > 0 {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", problems)
		os.Exit(2)
	}
	return cfg, opts
}

// run opens the camera and drives one session, with the dashboard alongside
// when requested. The session runs on the main goroutine.
func run(ctx context.Context, cfg config.File, opts options) error {
	logger := log.L()

	reader, err := gauge.NewReader(cfg.Gauge, log.Component("reader"))
	if err != nil {
		return err
	}

	src, err := camera.OpenDevice(cfg.Camera, log.Component("camera"))
	if err != nil {
		return &session.AcquisitionError{Frame: 0, Err: err}
	}

	var sinks []display.Sink
	if !opts.headless {
		sinks = append(sinks, display.NewWindowSink("Gauge"))
	}
	if cfg.Recorder.Path != "" {
		sinks = append(sinks, display.NewRecorderSink(cfg.Recorder, log.Component("recorder")))
	}

	var dashboard *web.Server
	if opts.web {
		dashboard, err = web.NewServer(cfg.Web, reader.Scale(), log.Component("web"))
		if err != nil {
			display.NewMulti(sinks...).Close()
			src.Close()
			return err
		}
		dashboard.SetCamera(src.Metadata())
		sinks = append(sinks, dashboard)
	}

	sink := display.NewMulti(sinks...)
	sess, err := session.New(src, reader, sink, cfg.Session,
		session.WithLogger(log.Component("session")))
	if err != nil {
		sink.Close()
		src.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if dashboard != nil {
		dashboard.SetSession(sess.Status)
		g.Go(func() error {
			return dashboard.Start(gctx)
		})
	}

	fmt.Printf("🎯 Reading gauge from %s (target %q, Ctrl+C to stop)\n", cfg.Camera.Device, cfg.Gauge.Target)
	runErr := sess.Run(gctx)
	cancel()

	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}

	st := sess.Status()
	logger.Info("session finished",
		"session", st.ID,
		"frames", st.Frames,
		"readings", st.Readings,
		"elapsed", time.Since(st.StartedAt).Round(time.Millisecond))
	if st.Last.OK() {
		fmt.Printf("📟 %s\n", gauge.Caption(st.Last))
	}
	return runErr
}

// readImage reads one still image, prints the reading and optionally saves
// the annotated image.
func readImage(cfg config.File, opts options) error {
	reader, err := gauge.NewReader(cfg.Gauge, log.Component("reader"))
	if err != nil {
		return err
	}

	src, err := camera.OpenImage(opts.image)
	if err != nil {
		return err
	}
	defer src.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	if err := src.Read(&frame); err != nil {
		return err
	}

	res := reader.Process(&frame)
	if !res.OK() {
		fmt.Println("📟 No reading: dial or needle not found")
	} else {
		fmt.Printf("📟 %s (needle at %.1f°)\n", gauge.Caption(res), res.Angle.Degrees())
	}

	if opts.output != "" {
		if !gocv.IMWrite(opts.output, frame) {
			return fmt.Errorf("failed to write %s", opts.output)
		}
		log.Info("annotated image written", "path", opts.output)
	}

	if !opts.headless {
		win := display.NewWindowSink("Gauge")
		defer win.Close()
		win.Show(frame, res)
		for !win.Poll() {
			time.Sleep(20 * time.Millisecond)
		}
	}
	return nil
}
