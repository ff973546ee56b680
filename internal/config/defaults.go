package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	capture := "rpicam-jpeg -n -t 1 -o -"

	return Config{
		Buttons: ButtonsConfig{
			Source:     "gpio",
			ModePin:    17,
			ConfirmPin: 27,
			ExitPin:    22,
			SerialBaud: 115200,
			PollMS:     50,
			DebounceMS: 500,
		},
		Camera: CameraConfig{
			CaptureCmd: CommandConfig{Raw: capture, Argv: mustParseArgv(capture)},
			TimeoutMS:  10_000,
		},
		OCR: OCRConfig{
			Binary:     "tesseract",
			Language:   "eng",
			IntervalMS: 5_000,
			TimeoutMS:  15_000,
		},
		Detect: DetectConfig{
			Endpoint:       "http://127.0.0.1:8765/v1/detect",
			HealthEndpoint: "http://127.0.0.1:8765/v1/health",
			MinConfidence:  0.5,
			IntervalMS:     3_000,
			TimeoutMS:      10_000,
		},
		Ultrasonic: UltrasonicConfig{
			Port:          "/dev/ttyUSB0",
			BaudRate:      9600,
			WarningCM:     100,
			IntervalMS:    1_000,
			ReadTimeoutMS: 500,
		},
		Time: TimeConfig{
			IntervalMS: 60_000,
			Layout:     "03:04 PM",
		},
		Speech: SpeechConfig{
			PiperBinary: "piper",
			PiperModel:  "en_US-lessac-medium.onnx",
			SampleRate:  22_050,
			ReadyCue:    true,
		},
	}
}
