// Package launcher resolves and starts the launch command of a pinned app.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/snapkit/snapkit/internal/catalog"
)

// exePattern matches executables directly inside an install directory, in any case.
const exePattern = "*.[eE][xX][eE]"

// ErrNoCommand is returned when a pin has no launch command and none can be inferred.
var ErrNoCommand = errors.New("no launch command")

// InferExe makes a best-effort guess at the main executable in an install directory.
//
// The first executable whose name contains the app name (ignoring case and
// spaces) wins; otherwise the alphabetically first executable is returned.
// Returns "" if the directory is missing or holds no executables.
func InferExe(installLocation, appName string) string {
	if installLocation == "" {
		return ""
	}

	exes, err := doublestar.Glob(os.DirFS(installLocation), exePattern, doublestar.WithFilesOnly())
	if err != nil || len(exes) == 0 {
		return ""
	}

	sort.Slice(exes, func(i, j int) bool {
		return strings.ToLower(exes[i]) < strings.ToLower(exes[j])
	})

	if want := squash(appName); want != "" {
		for _, exe := range exes {
			stem := strings.TrimSuffix(exe, filepath.Ext(exe))
			if strings.Contains(squash(stem), want) {
				return filepath.Join(installLocation, exe)
			}
		}
	}

	return filepath.Join(installLocation, exes[0])
}

// squash lowercases s and removes spaces.
func squash(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// HasArgs reports whether a command string carries arguments beyond the
// executable, i.e. contains a space outside double quotes.
func HasArgs(command string) bool {
	inQuote := false
	for _, ch := range command {
		switch {
		case ch == '"':
			inQuote = !inQuote
		case ch == ' ' && !inQuote:
			return true
		}
	}
	return false
}

// ResolveCommand returns the pin's launch command, or infers one from the
// app's install location.
func ResolveCommand(pin catalog.PinnedApp) (string, error) {
	if pin.LaunchCommand != "" {
		return pin.LaunchCommand, nil
	}
	if exe := InferExe(pin.App.InstallLocation, pin.App.Name); exe != "" {
		return exe, nil
	}
	return "", fmt.Errorf("%s: %w", pin.App.Name, ErrNoCommand)
}

// Command builds the process that launches command on the given platform.
// On Windows a bare executable path goes through the shell association;
// everything else runs through the platform shell.
func Command(goos, command string) *exec.Cmd {
	if goos == "windows" {
		if !HasArgs(command) {
			return exec.Command("cmd", "/c", "start", "", strings.Trim(command, `"`))
		}
		return exec.Command("cmd", "/C", command)
	}
	return exec.Command("sh", "-c", command)
}

// Launch starts command detached from SnapKit with its output discarded.
// It returns once the process has started.
func Launch(ctx context.Context, command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrNoCommand
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := Command(runtime.GOOS, command)
	cmd.SysProcAttr = detachAttr()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %q: %w", command, err)
	}

	// Reap the shell when it exits; the launched app outlives it.
	go func() { _ = cmd.Wait() }()
	return nil
}
