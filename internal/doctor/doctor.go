// Package doctor runs runtime readiness diagnostics for config, tools,
// sensors, and the inference service.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/YousefSamm/smart-vision-assistant/internal/config"
	"github.com/YousefSamm/smart-vision-assistant/internal/detect"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkButtons(cfg.Config.Buttons))
	checks = append(checks, checkCommand(cfg.Config.Camera.CaptureCmd.Argv, "camera.capture_cmd"))
	checks = append(checks, checkBinary(cfg.Config.OCR.Binary, "text reading requires tesseract"))
	checks = append(checks, checkPiper(cfg.Config.Speech))
	checks = append(checks, checkDetectHealth(cfg.Config.Detect))
	checks = append(checks, checkDevice("ultrasonic.port", cfg.Config.Ultrasonic.Port))

	return Report{Checks: checks}
}

// checkButtons validates the configured button source against the host.
func checkButtons(cfg config.ButtonsConfig) Check {
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "gpio":
		if _, err := os.Stat("/sys/class/gpio"); err != nil {
			return Check{Name: "buttons", Pass: false, Message: "sysfs gpio interface not present at /sys/class/gpio"}
		}
		return Check{
			Name:    "buttons",
			Pass:    true,
			Message: fmt.Sprintf("gpio source with pins %d/%d/%d", cfg.ModePin, cfg.ConfirmPin, cfg.ExitPin),
		}
	case "serial":
		return checkDevice("buttons", cfg.SerialPort)
	default:
		return Check{Name: "buttons", Pass: false, Message: fmt.Sprintf("unknown source %q", cfg.Source)}
	}
}

// checkPiper validates the synthesis binary and voice model.
func checkPiper(cfg config.SpeechConfig) Check {
	if _, err := exec.LookPath(cfg.PiperBinary); err != nil {
		return Check{Name: "speech.piper", Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", cfg.PiperBinary)}
	}

	// A bare model name is resolved by piper itself; only explicit paths are
	// checked for existence.
	if strings.ContainsRune(cfg.PiperModel, os.PathSeparator) {
		if _, err := os.Stat(cfg.PiperModel); err != nil {
			return Check{Name: "speech.piper", Pass: false, Message: fmt.Sprintf("voice model not found: %s", cfg.PiperModel)}
		}
	}

	return Check{Name: "speech.piper", Pass: true, Message: fmt.Sprintf("%s with model %s", cfg.PiperBinary, cfg.PiperModel)}
}

// checkDetectHealth probes the inference service health endpoint.
func checkDetectHealth(cfg config.DetectConfig) Check {
	client, err := detect.New(detect.Options{
		Endpoint:       cfg.Endpoint,
		HealthEndpoint: cfg.HealthEndpoint,
		MinConfidence:  cfg.MinConfidence,
		Timeout:        2 * time.Second,
	}, nil)
	if err != nil {
		return Check{Name: "detect.health", Pass: false, Message: err.Error()}
	}

	if cfg.HealthEndpoint == "" {
		return Check{Name: "detect.health", Pass: true, Message: "no health endpoint configured; skipping probe"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Health(ctx); err != nil {
		return Check{Name: "detect.health", Pass: false, Message: err.Error()}
	}
	return Check{Name: "detect.health", Pass: true, Message: fmt.Sprintf("ready at %s", cfg.HealthEndpoint)}
}

// checkDevice validates that a device node exists.
func checkDevice(name, path string) Check {
	if strings.TrimSpace(path) == "" {
		return Check{Name: name, Pass: false, Message: "device path is empty"}
	}
	if _, err := os.Stat(path); err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("device not present: %s", path)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("device present at %s", path)}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}
