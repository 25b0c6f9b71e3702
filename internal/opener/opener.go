// Package opener opens resource items with the system handler.
package opener

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/snapkit/snapkit/internal/catalog"
)

// Opener opens files, folders and URLs.
type Opener struct {
	browser string // Optional command for URLs; empty uses the system handler
	goos    string
}

// New creates an Opener. browser overrides the handler for URLs when set.
func New(browser string) *Opener {
	return &Opener{browser: browser, goos: runtime.GOOS}
}

// Open opens a resource item. Local resources must exist.
func (o *Opener) Open(ctx context.Context, item catalog.ResourceItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if item.Type.IsLocal() {
		// Fail fast if the target doesn't exist
		if _, err := os.Stat(item.Path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("resource does not exist: %s", item.Path)
			}
			return fmt.Errorf("checking resource: %w", err)
		}
	}

	cmd, err := o.Command(item)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %s: %w", item.Path, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Command returns the command that opens the item on the opener's platform.
func (o *Opener) Command(item catalog.ResourceItem) (*exec.Cmd, error) {
	if item.Type == catalog.ResourceURL {
		if fields := strings.Fields(o.browser); len(fields) > 0 {
			return exec.Command(fields[0], append(fields[1:], item.Path)...), nil
		}
	}

	switch o.goos {
	case "darwin":
		return exec.Command("open", item.Path), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", item.Path), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", item.Path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", o.goos)
	}
}
