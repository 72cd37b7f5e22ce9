package assembly

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"clipcast/internal/logging"
	"clipcast/internal/services"
)

// Runner executes the media binary. Tests substitute a scripted runner.
type Runner interface {
	Run(ctx context.Context, dir, binary string, args ...string) error
}

// ExecRunner runs the binary via os/exec with the working directory pinned to
// the engine scratch space.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, binary string, args ...string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", filepath.Base(binary), strings.Join(args, " "), err, tail(stderr.String(), 400))
	}
	return nil
}

func tail(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit:]
}

// Engine wraps the resolved ffmpeg binary together with a locked scratch
// directory. All intermediate job files live inside that directory and are
// addressed by bare name, never by caller-supplied paths.
type Engine struct {
	binary string
	dir    string
	lock   *flock.Flock
	runner Runner
	logger *slog.Logger
}

func newEngine(binary, dir string, runner Runner, logger *slog.Logger) (*Engine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, ".engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire engine lock: %w", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConfiguration, "assembly", "init",
			"scratch directory in use by another clipcast process", nil)
	}

	return &Engine{
		binary: binary,
		dir:    dir,
		lock:   lock,
		runner: runner,
		logger: logging.NewComponentLogger(logger, "engine"),
	}, nil
}

// Run invokes the media binary with args, working inside the scratch directory.
func (e *Engine) Run(ctx context.Context, args ...string) error {
	e.logger.Debug("run", logging.Args(logging.String("args", strings.Join(args, " ")))...)
	return e.runner.Run(ctx, e.dir, e.binary, args...)
}

// WriteFile stores data under name in the scratch directory.
func (e *Engine) WriteFile(name string, data []byte) error {
	path, err := e.resolve(name)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile returns the contents of name from the scratch directory.
func (e *Engine) ReadFile(name string) ([]byte, error) {
	path, err := e.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Remove deletes name from the scratch directory. Missing files are not an
// error; Remove backs the cleanup paths that must never fail a job.
func (e *Engine) Remove(name string) {
	path, err := e.resolve(name)
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		e.logger.Debug("remove failed", logging.Args(logging.String("name", name), logging.Error(err))...)
	}
}

// Path returns the absolute path of name inside the scratch directory.
func (e *Engine) Path(name string) string {
	return filepath.Join(e.dir, name)
}

// Binary returns the resolved media binary path.
func (e *Engine) Binary() string {
	return e.binary
}

// Close releases the scratch directory lock.
func (e *Engine) Close() error {
	if e.lock == nil {
		return nil
	}
	return e.lock.Unlock()
}

func (e *Engine) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid scratch file name %q", name)
	}
	return filepath.Join(e.dir, name), nil
}
