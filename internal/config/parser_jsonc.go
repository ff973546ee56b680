package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Buttons    *jsoncButtons    `json:"buttons"`
	Camera     *jsoncCamera     `json:"camera"`
	OCR        *jsoncOCR        `json:"ocr"`
	Detect     *jsoncDetect     `json:"detect"`
	Ultrasonic *jsoncUltrasonic `json:"ultrasonic"`
	Time       *jsoncTime       `json:"time"`
	Speech     *jsoncSpeech     `json:"speech"`
}

type jsoncButtons struct {
	Source     *string `json:"source"`
	ModePin    *int    `json:"mode_pin"`
	ConfirmPin *int    `json:"confirm_pin"`
	ExitPin    *int    `json:"exit_pin"`
	SerialPort *string `json:"serial_port"`
	SerialBaud *int    `json:"serial_baud"`
	PollMS     *int    `json:"poll_ms"`
	DebounceMS *int    `json:"debounce_ms"`
}

type jsoncCamera struct {
	CaptureCmd *string `json:"capture_cmd"`
	TimeoutMS  *int    `json:"timeout_ms"`
}

type jsoncOCR struct {
	Binary     *string `json:"binary"`
	Language   *string `json:"language"`
	IntervalMS *int    `json:"interval_ms"`
	TimeoutMS  *int    `json:"timeout_ms"`
}

type jsoncDetect struct {
	Endpoint       *string  `json:"endpoint"`
	HealthEndpoint *string  `json:"health_endpoint"`
	MinConfidence  *float64 `json:"min_confidence"`
	IntervalMS     *int     `json:"interval_ms"`
	TimeoutMS      *int     `json:"timeout_ms"`
}

type jsoncUltrasonic struct {
	Port          *string  `json:"port"`
	BaudRate      *int     `json:"baud_rate"`
	WarningCM     *float64 `json:"warning_cm"`
	IntervalMS    *int     `json:"interval_ms"`
	ReadTimeoutMS *int     `json:"read_timeout_ms"`
}

type jsoncTime struct {
	IntervalMS *int    `json:"interval_ms"`
	Layout     *string `json:"layout"`
}

type jsoncSpeech struct {
	PiperBinary *string `json:"piper_binary"`
	PiperModel  *string `json:"piper_model"`
	SampleRate  *int    `json:"sample_rate"`
	ReadyCue    *bool   `json:"ready_cue"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) error {
	if payload.Buttons != nil {
		b := payload.Buttons
		if b.Source != nil {
			cfg.Buttons.Source = strings.TrimSpace(*b.Source)
		}
		if b.ModePin != nil {
			cfg.Buttons.ModePin = *b.ModePin
		}
		if b.ConfirmPin != nil {
			cfg.Buttons.ConfirmPin = *b.ConfirmPin
		}
		if b.ExitPin != nil {
			cfg.Buttons.ExitPin = *b.ExitPin
		}
		if b.SerialPort != nil {
			cfg.Buttons.SerialPort = strings.TrimSpace(*b.SerialPort)
		}
		if b.SerialBaud != nil {
			cfg.Buttons.SerialBaud = *b.SerialBaud
		}
		if b.PollMS != nil {
			cfg.Buttons.PollMS = *b.PollMS
		}
		if b.DebounceMS != nil {
			cfg.Buttons.DebounceMS = *b.DebounceMS
		}
	}

	if payload.Camera != nil {
		if payload.Camera.CaptureCmd != nil {
			raw := *payload.Camera.CaptureCmd
			argv, err := parseArgv(raw)
			if err != nil {
				return fmt.Errorf("invalid camera.capture_cmd: %w", err)
			}
			cfg.Camera.CaptureCmd = CommandConfig{Raw: raw, Argv: argv}
		}
		if payload.Camera.TimeoutMS != nil {
			cfg.Camera.TimeoutMS = *payload.Camera.TimeoutMS
		}
	}

	if payload.OCR != nil {
		if payload.OCR.Binary != nil {
			cfg.OCR.Binary = strings.TrimSpace(*payload.OCR.Binary)
		}
		if payload.OCR.Language != nil {
			cfg.OCR.Language = strings.TrimSpace(*payload.OCR.Language)
		}
		if payload.OCR.IntervalMS != nil {
			cfg.OCR.IntervalMS = *payload.OCR.IntervalMS
		}
		if payload.OCR.TimeoutMS != nil {
			cfg.OCR.TimeoutMS = *payload.OCR.TimeoutMS
		}
	}

	if payload.Detect != nil {
		if payload.Detect.Endpoint != nil {
			cfg.Detect.Endpoint = strings.TrimSpace(*payload.Detect.Endpoint)
		}
		if payload.Detect.HealthEndpoint != nil {
			cfg.Detect.HealthEndpoint = strings.TrimSpace(*payload.Detect.HealthEndpoint)
		}
		if payload.Detect.MinConfidence != nil {
			cfg.Detect.MinConfidence = *payload.Detect.MinConfidence
		}
		if payload.Detect.IntervalMS != nil {
			cfg.Detect.IntervalMS = *payload.Detect.IntervalMS
		}
		if payload.Detect.TimeoutMS != nil {
			cfg.Detect.TimeoutMS = *payload.Detect.TimeoutMS
		}
	}

	if payload.Ultrasonic != nil {
		u := payload.Ultrasonic
		if u.Port != nil {
			cfg.Ultrasonic.Port = strings.TrimSpace(*u.Port)
		}
		if u.BaudRate != nil {
			cfg.Ultrasonic.BaudRate = *u.BaudRate
		}
		if u.WarningCM != nil {
			cfg.Ultrasonic.WarningCM = *u.WarningCM
		}
		if u.IntervalMS != nil {
			cfg.Ultrasonic.IntervalMS = *u.IntervalMS
		}
		if u.ReadTimeoutMS != nil {
			cfg.Ultrasonic.ReadTimeoutMS = *u.ReadTimeoutMS
		}
	}

	if payload.Time != nil {
		if payload.Time.IntervalMS != nil {
			cfg.Time.IntervalMS = *payload.Time.IntervalMS
		}
		if payload.Time.Layout != nil {
			cfg.Time.Layout = strings.TrimSpace(*payload.Time.Layout)
		}
	}

	if payload.Speech != nil {
		s := payload.Speech
		if s.PiperBinary != nil {
			cfg.Speech.PiperBinary = strings.TrimSpace(*s.PiperBinary)
		}
		if s.PiperModel != nil {
			cfg.Speech.PiperModel = strings.TrimSpace(*s.PiperModel)
		}
		if s.SampleRate != nil {
			cfg.Speech.SampleRate = *s.SampleRate
		}
		if s.ReadyCue != nil {
			cfg.Speech.ReadyCue = *s.ReadyCue
		}
	}

	return nil
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' || ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
