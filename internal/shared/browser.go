package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// startCommand launches a process without waiting for it; replaced in tests.
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

var browserCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"cmd", "/c", "start"},
}

// OpenBrowser opens the default system browser to the specified URL.
//
// Supports macOS, Linux, and Windows platforms.
func OpenBrowser(url string) error {
	rt := getRuntime()
	command, ok := browserCommands[rt]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	args := append(append([]string{}, command[1:]...), url)
	if err := startCommand(command[0], args...); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
