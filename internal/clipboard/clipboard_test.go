package clipboard

import (
	"errors"
	"testing"

	"github.com/atotto/clipboard"
)

func TestIsAvailable(t *testing.T) {
	// Availability depends on the system; this only checks consistency.
	if IsAvailable() == clipboard.Unsupported {
		t.Error("IsAvailable() disagrees with clipboard.Unsupported")
	}
}

func TestCopy(t *testing.T) {
	if !IsAvailable() {
		if err := Copy("x"); !errors.Is(err, ErrClipboardUnavailable) {
			t.Errorf("Copy() error = %v, want ErrClipboardUnavailable", err)
		}
		return
	}

	err := Copy("snapkit clipboard test")
	if err != nil && !errors.Is(err, ErrClipboardUnavailable) {
		t.Fatalf("Copy() error = %v", err)
	}
	if err != nil {
		t.Skip("clipboard tool present but no display")
	}

	got, err := clipboard.ReadAll()
	if err != nil {
		t.Skipf("reading clipboard: %v", err)
	}
	if got != "snapkit clipboard test" {
		t.Errorf("clipboard = %q, want %q", got, "snapkit clipboard test")
	}
}
