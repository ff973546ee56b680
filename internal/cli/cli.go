// Package cli parses smartglass command line arguments.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandRun     Command = "run"
	CommandStatus  Command = "status"
	CommandPress   Command = "press"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRun:     {},
	CommandStatus:  {},
	CommandPress:   {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

var validPressButtons = map[string]struct{}{
	"mode":    {},
	"confirm": {},
	"exit":    {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	// PressButton is set for CommandPress: mode, confirm, or exit.
	PressButton string
	ShowHelp    bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			if cmd == CommandPress {
				i++
				if i >= len(args) {
					return Parsed{}, errors.New("press requires a button: mode, confirm, or exit")
				}
				buttonName := strings.ToLower(args[i])
				if _, ok := validPressButtons[buttonName]; !ok {
					return Parsed{}, fmt.Errorf("unknown button %q: expected mode, confirm, or exit", args[i])
				}
				parsed.PressButton = buttonName
			}

			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  run              Run the mode controller daemon
  status           Print current phase and selected mode
  press <button>   Inject a button press into the running daemon (mode, confirm, exit)
  doctor           Run configuration and environment checks
  version          Print version information
  help             Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/smartglass/config.conf)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
