package button

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const gpioRoot = "/sys/class/gpio"

// GPIOSampler reads button levels from sysfs GPIO value files. The buttons
// are wired active-high with pull-down resistors, so a pressed button reads 1.
type GPIOSampler struct {
	modePath    string
	confirmPath string
	exitPath    string
}

// NewGPIOSampler exports the three button pins when needed and returns a
// sampler over their sysfs value files.
func NewGPIOSampler(modePin, confirmPin, exitPin int) (*GPIOSampler, error) {
	paths := make([]string, 0, 3)
	for _, pin := range []int{modePin, confirmPin, exitPin} {
		path, err := exportPin(pin)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	return &GPIOSampler{
		modePath:    paths[0],
		confirmPath: paths[1],
		exitPath:    paths[2],
	}, nil
}

// Sample reads all three lines. Any single unreadable line fails the whole
// sample; the watcher decides whether the failure is transient or fatal.
func (s *GPIOSampler) Sample() (Levels, error) {
	mode, err := readLevel(s.modePath)
	if err != nil {
		return Levels{}, err
	}
	confirm, err := readLevel(s.confirmPath)
	if err != nil {
		return Levels{}, err
	}
	exit, err := readLevel(s.exitPath)
	if err != nil {
		return Levels{}, err
	}
	return Levels{Mode: mode, Confirm: confirm, Exit: exit}, nil
}

// exportPin ensures /sys/class/gpio/gpioN exists and is configured as input.
func exportPin(pin int) (string, error) {
	pinDir := filepath.Join(gpioRoot, fmt.Sprintf("gpio%d", pin))

	if _, err := os.Stat(pinDir); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(filepath.Join(gpioRoot, "export"), []byte(strconv.Itoa(pin)), 0o200); err != nil {
			return "", fmt.Errorf("export gpio pin %d: %w", pin, err)
		}
		// The kernel needs a moment to create the pin directory and its
		// attribute files after export.
		deadline := time.Now().Add(500 * time.Millisecond)
		for {
			if _, err := os.Stat(pinDir); err == nil {
				break
			}
			if time.Now().After(deadline) {
				return "", fmt.Errorf("gpio pin %d did not appear after export", pin)
			}
			time.Sleep(20 * time.Millisecond)
		}
	}

	if err := os.WriteFile(filepath.Join(pinDir, "direction"), []byte("in"), 0o200); err != nil {
		return "", fmt.Errorf("set gpio pin %d direction: %w", pin, err)
	}

	return filepath.Join(pinDir, "value"), nil
}

func readLevel(path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read gpio value %s: %w", path, err)
	}
	return strings.TrimSpace(string(raw)) == "1", nil
}
