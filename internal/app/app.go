// Package app wires configuration, hardware sources, speech output, and the
// mode controller into the smartglass command surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/YousefSamm/smart-vision-assistant/internal/arbiter"
	"github.com/YousefSamm/smart-vision-assistant/internal/button"
	"github.com/YousefSamm/smart-vision-assistant/internal/camera"
	"github.com/YousefSamm/smart-vision-assistant/internal/cli"
	"github.com/YousefSamm/smart-vision-assistant/internal/config"
	"github.com/YousefSamm/smart-vision-assistant/internal/controller"
	"github.com/YousefSamm/smart-vision-assistant/internal/detect"
	"github.com/YousefSamm/smart-vision-assistant/internal/doctor"
	"github.com/YousefSamm/smart-vision-assistant/internal/ipc"
	"github.com/YousefSamm/smart-vision-assistant/internal/logging"
	"github.com/YousefSamm/smart-vision-assistant/internal/mode"
	"github.com/YousefSamm/smart-vision-assistant/internal/ocr"
	"github.com/YousefSamm/smart-vision-assistant/internal/serialio"
	"github.com/YousefSamm/smart-vision-assistant/internal/speech"
	"github.com/YousefSamm/smart-vision-assistant/internal/ultrasonic"
	"github.com/YousefSamm/smart-vision-assistant/internal/version"
)

const welcomePhrase = "Welcome to Smart Glass! Ready to assist you."

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("smartglass"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("smartglass"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandPress:
		return r.forwardOrFail(ctx, parsed.PressButton)
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		if resp.Mode != "" && resp.Mode != "idle" {
			fmt.Fprintf(r.Stdout, "%s (%s)\n", resp.State, resp.Mode)
		} else {
			fmt.Fprintln(r.Stdout, resp.State)
		}
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no running smartglass daemon\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(runCtx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	renderer := speech.NewPiper(cfg.Speech.PiperBinary, cfg.Speech.PiperModel, cfg.Speech.SampleRate, logger)
	arb := arbiter.New(renderer, logger)
	defer arb.Close()

	activities, err := buildActivities(cfg, arb, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	ctrl := controller.New(logger, arb, activities)

	presses, hwErrs, cleanup, err := openButtonSource(runCtx, cfg.Buttons, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("open button source failed", "error", err.Error())
		return 1
	}
	defer cleanup()

	serverCtx, serverCancel := context.WithCancel(runCtx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, ctrl)
	}()

	if cfg.Speech.ReadyCue {
		if err := renderer.PlayReadyCue(runCtx); err != nil {
			logger.Warn("ready cue playback failed", "error", err.Error())
		}
	}
	arb.Speak(welcomePhrase, arbiter.Normal)
	logger.Info("daemon ready", "socket", socketPath, "button_source", cfg.Buttons.Source)

	ctrlErrCh := make(chan error, 1)
	go func() {
		ctrlErrCh <- ctrl.Run(runCtx, presses)
	}()

	exitCode := r.awaitShutdown(ctrlErrCh, hwErrs, stop, logger)

	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		exitCode = 1
	}

	logger.Info("daemon stopped", "exit_code", exitCode)
	return exitCode
}

// awaitShutdown blocks until the controller or the button watcher reports
// termination. The watcher sends its fatal error and then closes the press
// channel, which lets the controller return win the select race; a pending
// hardware error is drained afterwards so it is never silently dropped.
func (r Runner) awaitShutdown(ctrlErrCh <-chan error, hwErrs <-chan error, stop func(), logger *slog.Logger) int {
	exitCode := 0
	select {
	case err, ok := <-hwErrs:
		if ok && err != nil {
			fmt.Fprintf(r.Stderr, "error: button source failed: %v\n", err)
			logger.Error("button source failed", "error", err.Error())
			exitCode = 1
		}
		stop()
		<-ctrlErrCh
	case err := <-ctrlErrCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			exitCode = 1
		}
		select {
		case hwErr, ok := <-hwErrs:
			if ok && hwErr != nil {
				fmt.Fprintf(r.Stderr, "error: button source failed: %v\n", hwErr)
				logger.Error("button source failed", "error", hwErr.Error())
				exitCode = 1
			}
		default:
		}
	}
	return exitCode
}

// buildActivities binds the configured collaborators to the four modes. A
// fresh activity is built per confirmation; the collaborators themselves are
// shared and stateless between runs.
func buildActivities(cfg config.Config, speaker mode.Speaker, logger *slog.Logger) (controller.Activities, error) {
	cameraClient, err := camera.New(camera.Options{
		Argv:    cfg.Camera.CaptureCmd.Argv,
		Timeout: time.Duration(cfg.Camera.TimeoutMS) * time.Millisecond,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("configure camera: %w", err)
	}

	extractor := ocr.New(ocr.Options{
		Binary:   cfg.OCR.Binary,
		Language: cfg.OCR.Language,
		Timeout:  time.Duration(cfg.OCR.TimeoutMS) * time.Millisecond,
	}, logger)

	detector, err := detect.New(detect.Options{
		Endpoint:       cfg.Detect.Endpoint,
		HealthEndpoint: cfg.Detect.HealthEndpoint,
		MinConfidence:  cfg.Detect.MinConfidence,
		Timeout:        time.Duration(cfg.Detect.TimeoutMS) * time.Millisecond,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("configure detector: %w", err)
	}

	ranger, err := ultrasonic.NewOpener(ultrasonic.Options{
		Port:        cfg.Ultrasonic.Port,
		BaudRate:    cfg.Ultrasonic.BaudRate,
		ReadTimeout: time.Duration(cfg.Ultrasonic.ReadTimeoutMS) * time.Millisecond,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("configure ranging sensor: %w", err)
	}

	return controller.BuildFunc(func(kind mode.Kind) (mode.Activity, error) {
		switch kind {
		case mode.Time:
			return mode.NewTime(mode.TimeOptions{
				Interval: time.Duration(cfg.Time.IntervalMS) * time.Millisecond,
				Layout:   cfg.Time.Layout,
			}, speaker, logger), nil
		case mode.TextReading:
			return mode.NewTextReading(mode.TextReadingOptions{
				Interval: time.Duration(cfg.OCR.IntervalMS) * time.Millisecond,
			}, cameraClient, extractor, speaker, logger), nil
		case mode.ObjectDetection:
			return mode.NewObjectDetection(mode.ObjectDetectionOptions{
				Interval: time.Duration(cfg.Detect.IntervalMS) * time.Millisecond,
			}, cameraClient, detector, speaker, logger), nil
		case mode.Distance:
			return mode.NewDistance(mode.DistanceOptions{
				Interval:  time.Duration(cfg.Ultrasonic.IntervalMS) * time.Millisecond,
				WarningCM: cfg.Ultrasonic.WarningCM,
			}, ranger, speaker, logger), nil
		default:
			return nil, fmt.Errorf("no activity for mode %s", kind)
		}
	}), nil
}

// openButtonSource starts the configured press watcher and returns its
// channels with a cleanup function for held hardware.
func openButtonSource(
	ctx context.Context,
	cfg config.ButtonsConfig,
	logger *slog.Logger,
) (<-chan button.Press, <-chan error, func(), error) {
	window := time.Duration(cfg.DebounceMS) * time.Millisecond

	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "gpio":
		sampler, err := button.NewGPIOSampler(cfg.ModePin, cfg.ConfirmPin, cfg.ExitPin)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open gpio buttons: %w", err)
		}
		presses, errs := button.Watch(ctx, sampler, button.WatchConfig{
			PollInterval: time.Duration(cfg.PollMS) * time.Millisecond,
			Window:       window,
		}, logger)
		return presses, errs, func() {}, nil
	case "serial":
		port, err := serialio.Open(cfg.SerialPort, cfg.SerialBaud)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open serial buttons: %w", err)
		}
		presses, errs := button.WatchSerial(ctx, port, window, logger)
		cleanup := func() { _ = port.Close() }
		return presses, errs, cleanup, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown buttons.source %q", cfg.Source)
	}
}

func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
