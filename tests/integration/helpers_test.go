// Package integration provides integration tests for snapkit commands.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	snapkitBinary     string
	snapkitBinaryOnce sync.Once
	snapkitBinaryErr  error
)

// getSnapkitBinary builds the snapkit binary once and returns its path.
func getSnapkitBinary(t *testing.T) string {
	t.Helper()
	snapkitBinaryOnce.Do(func() {
		// Get module root directory
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			snapkitBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "snapkit-test-*")
		if err != nil {
			snapkitBinaryErr = err
			return
		}
		snapkitBinary = filepath.Join(tmpDir, "snapkit")
		if runtime.GOOS == "windows" {
			snapkitBinary += ".exe"
		}

		cmd := exec.Command("go", "build", "-o", snapkitBinary, "./cmd/snapkit")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			snapkitBinaryErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if snapkitBinaryErr != nil {
		t.Fatalf("failed to build snapkit: %v", snapkitBinaryErr)
	}
	return snapkitBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// testEnv is an isolated home for one test: its own config dir and database.
type testEnv struct {
	dir    string
	dbPath string
}

// setupTestEnv creates a temp directory holding the XDG config home and database.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config", "snapkit"), 0755); err != nil {
		t.Fatal(err)
	}
	return &testEnv{dir: dir, dbPath: filepath.Join(dir, "data", "snapkit.db")}
}

// result holds one command invocation's output.
type result struct {
	stdout   string
	stderr   string
	exitCode int
}

// run executes snapkit with the env's config home and database.
func (e *testEnv) run(t *testing.T, args ...string) result {
	t.Helper()
	cmd := exec.Command(getSnapkitBinary(t), args...)
	cmd.Dir = e.dir
	cmd.Env = e.environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	res := result{stdout: stdout.String(), stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.exitCode = exitErr.ExitCode()
	case err != nil:
		t.Fatalf("running snapkit %s: %v", strings.Join(args, " "), err)
	}
	return res
}

// mustRun executes snapkit and fails the test on a non-zero exit.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	res := e.run(t, args...)
	if res.exitCode != 0 {
		t.Fatalf("snapkit %s exited %d\nstdout: %s\nstderr: %s",
			strings.Join(args, " "), res.exitCode, res.stdout, res.stderr)
	}
	return res.stdout
}

// mustRunJSON executes snapkit and decodes its JSON output into v.
func (e *testEnv) mustRunJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	output := e.mustRun(t, args...)
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("failed to parse output of snapkit %s: %v\nOutput: %s", strings.Join(args, " "), err, output)
	}
}

// environ returns the process environment without SNAPKIT_* variables,
// pointed at the test's config home and database.
func (e *testEnv) environ() []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "SNAPKIT_") || strings.HasPrefix(kv, "XDG_CONFIG_HOME=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env,
		"XDG_CONFIG_HOME="+filepath.Join(e.dir, "config"),
		"SNAPKIT_DB="+e.dbPath,
	)
}
