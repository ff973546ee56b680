package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	source := strings.ToLower(strings.TrimSpace(cfg.Buttons.Source))
	if source == "" {
		return nil, fmt.Errorf("buttons.source must not be empty")
	}
	if source != "gpio" && source != "serial" {
		return nil, fmt.Errorf("buttons.source must be one of: gpio, serial")
	}
	if source == "gpio" {
		pins := map[string]int{
			"buttons.mode_pin":    cfg.Buttons.ModePin,
			"buttons.confirm_pin": cfg.Buttons.ConfirmPin,
			"buttons.exit_pin":    cfg.Buttons.ExitPin,
		}
		for key, pin := range pins {
			if pin <= 0 {
				return nil, fmt.Errorf("%s must be > 0 when buttons.source=gpio", key)
			}
		}
		if cfg.Buttons.ModePin == cfg.Buttons.ConfirmPin ||
			cfg.Buttons.ModePin == cfg.Buttons.ExitPin ||
			cfg.Buttons.ConfirmPin == cfg.Buttons.ExitPin {
			return nil, fmt.Errorf("buttons pins must be distinct")
		}
	}
	if source == "serial" && strings.TrimSpace(cfg.Buttons.SerialPort) == "" {
		return nil, fmt.Errorf("buttons.serial_port must not be empty when buttons.source=serial")
	}
	if cfg.Buttons.SerialBaud <= 0 {
		return nil, fmt.Errorf("buttons.serial_baud must be > 0")
	}
	if cfg.Buttons.PollMS <= 0 {
		return nil, fmt.Errorf("buttons.poll_ms must be > 0")
	}
	if cfg.Buttons.DebounceMS < 100 || cfg.Buttons.DebounceMS > 2000 {
		return nil, fmt.Errorf("buttons.debounce_ms must be between 100 and 2000")
	}
	if cfg.Buttons.DebounceMS < cfg.Buttons.PollMS {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("buttons.debounce_ms=%d is below buttons.poll_ms=%d; debouncing has no effect", cfg.Buttons.DebounceMS, cfg.Buttons.PollMS),
		})
	}

	if len(cfg.Camera.CaptureCmd.Argv) == 0 {
		return nil, fmt.Errorf("camera.capture_cmd must not be empty")
	}
	if cfg.Camera.TimeoutMS <= 0 {
		return nil, fmt.Errorf("camera.timeout_ms must be > 0")
	}

	if strings.TrimSpace(cfg.OCR.Binary) == "" {
		return nil, fmt.Errorf("ocr.binary must not be empty")
	}
	if strings.TrimSpace(cfg.OCR.Language) == "" {
		return nil, fmt.Errorf("ocr.language must not be empty")
	}
	if cfg.OCR.IntervalMS <= 0 {
		return nil, fmt.Errorf("ocr.interval_ms must be > 0")
	}
	if cfg.OCR.TimeoutMS <= 0 {
		return nil, fmt.Errorf("ocr.timeout_ms must be > 0")
	}

	if strings.TrimSpace(cfg.Detect.Endpoint) == "" {
		return nil, fmt.Errorf("detect.endpoint must not be empty")
	}
	if cfg.Detect.MinConfidence <= 0 || cfg.Detect.MinConfidence > 1 {
		return nil, fmt.Errorf("detect.min_confidence must be in (0, 1]")
	}
	if cfg.Detect.IntervalMS <= 0 {
		return nil, fmt.Errorf("detect.interval_ms must be > 0")
	}
	if cfg.Detect.TimeoutMS <= 0 {
		return nil, fmt.Errorf("detect.timeout_ms must be > 0")
	}

	if strings.TrimSpace(cfg.Ultrasonic.Port) == "" {
		return nil, fmt.Errorf("ultrasonic.port must not be empty")
	}
	if cfg.Ultrasonic.BaudRate <= 0 {
		return nil, fmt.Errorf("ultrasonic.baud_rate must be > 0")
	}
	if cfg.Ultrasonic.WarningCM <= 0 {
		return nil, fmt.Errorf("ultrasonic.warning_cm must be > 0")
	}
	if cfg.Ultrasonic.IntervalMS <= 0 {
		return nil, fmt.Errorf("ultrasonic.interval_ms must be > 0")
	}
	if cfg.Ultrasonic.ReadTimeoutMS <= 0 {
		return nil, fmt.Errorf("ultrasonic.read_timeout_ms must be > 0")
	}
	if cfg.Ultrasonic.ReadTimeoutMS >= cfg.Ultrasonic.IntervalMS {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("ultrasonic.read_timeout_ms=%d is at or above ultrasonic.interval_ms=%d; measurements may overlap", cfg.Ultrasonic.ReadTimeoutMS, cfg.Ultrasonic.IntervalMS),
		})
	}

	if cfg.Time.IntervalMS <= 0 {
		return nil, fmt.Errorf("time.interval_ms must be > 0")
	}
	if strings.TrimSpace(cfg.Time.Layout) == "" {
		return nil, fmt.Errorf("time.layout must not be empty")
	}

	if strings.TrimSpace(cfg.Speech.PiperBinary) == "" {
		return nil, fmt.Errorf("speech.piper_binary must not be empty")
	}
	if strings.TrimSpace(cfg.Speech.PiperModel) == "" {
		return nil, fmt.Errorf("speech.piper_model must not be empty")
	}
	if cfg.Speech.SampleRate <= 0 {
		return nil, fmt.Errorf("speech.sample_rate must be > 0")
	}

	return warnings, nil
}
