package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantDebug bool
		wantInfo  bool
	}{
		{"default is info", Config{}, false, true},
		{"debug level", Config{Level: "debug"}, true, true},
		{"warn hides info", Config{Level: "warn"}, false, false},
		{"verbose forces debug", Config{Level: "error", Verbose: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.cfg.Output = &buf
			logger, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			logger.Debug("debug message")
			logger.Info("info message", zap.String("db", "/tmp/snapkit.db"))

			out := buf.String()
			if got := strings.Contains(out, "debug message"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "info message"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v\n%s", got, tt.wantInfo, out)
			}
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("New() expected error for invalid level")
	}
	if NewOrNop(Config{Level: "loud"}) == nil {
		t.Error("NewOrNop() returned nil")
	}
}

func TestNew_ConsoleFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("scan saved", zap.Int("added", 3))

	out := buf.String()
	if !strings.Contains(out, "INFO") || !strings.Contains(out, `"added": 3`) {
		t.Errorf("unexpected log line: %q", out)
	}
}
