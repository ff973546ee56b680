// Package config resolves, parses, validates, and defaults smartglass
// configuration.
package config

// Config is the fully materialized runtime configuration used by smartglass.
type Config struct {
	Buttons    ButtonsConfig
	Camera     CameraConfig
	OCR        OCRConfig
	Detect     DetectConfig
	Ultrasonic UltrasonicConfig
	Time       TimeConfig
	Speech     SpeechConfig
}

// ButtonsConfig selects and tunes the physical button source.
type ButtonsConfig struct {
	// Source is "gpio" for sysfs pins or "serial" for a button board.
	Source     string
	ModePin    int
	ConfirmPin int
	ExitPin    int
	SerialPort string
	SerialBaud int
	PollMS     int
	DebounceMS int
}

// CameraConfig controls frame capture.
type CameraConfig struct {
	// CaptureCmd writes one JPEG frame to stdout.
	CaptureCmd CommandConfig
	TimeoutMS  int
}

// OCRConfig controls the text reading mode.
type OCRConfig struct {
	Binary     string
	Language   string
	IntervalMS int
	TimeoutMS  int
}

// DetectConfig controls the object detection mode.
type DetectConfig struct {
	Endpoint       string
	HealthEndpoint string
	MinConfidence  float64
	IntervalMS     int
	TimeoutMS      int
}

// UltrasonicConfig controls the distance measurement mode.
type UltrasonicConfig struct {
	Port          string
	BaudRate      int
	WarningCM     float64
	IntervalMS    int
	ReadTimeoutMS int
}

// TimeConfig controls the time announcement mode.
type TimeConfig struct {
	IntervalMS int
	// Layout is a Go reference-time layout, e.g. "03:04 PM".
	Layout string
}

// SpeechConfig controls text-to-speech synthesis.
type SpeechConfig struct {
	PiperBinary string
	PiperModel  string
	SampleRate  int
	ReadyCue    bool
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
