package assembly

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"clipcast/internal/logging"
)

// scriptedRunner records invocations and delegates behavior to onRun.
type scriptedRunner struct {
	mu    sync.Mutex
	calls [][]string
	onRun func(dir string, args []string) error
}

func (r *scriptedRunner) Run(_ context.Context, dir, _ string, args ...string) error {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{}, args...))
	r.mu.Unlock()
	if r.onRun != nil {
		return r.onRun(dir, args)
	}
	return nil
}

func (r *scriptedRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := newEngine("/bin/true", t.TempDir(), &scriptedRunner{}, logging.NewNop())
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestEngineFileRoundTrip(t *testing.T) {
	engine := newTestEngine(t)

	if err := engine.WriteFile("audio.mp3", []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := engine.ReadFile("audio.mp3")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 3 || data[2] != 3 {
		t.Fatalf("round trip mismatch: %v", data)
	}

	engine.Remove("audio.mp3")
	if _, err := engine.ReadFile("audio.mp3"); err == nil {
		t.Fatal("expected read failure after Remove")
	}
}

func TestEngineRejectsPathTraversal(t *testing.T) {
	engine := newTestEngine(t)

	for _, name := range []string{"../escape.txt", "sub/dir.txt", "", ".hidden"} {
		if err := engine.WriteFile(name, []byte("x")); err == nil {
			t.Errorf("WriteFile(%q) should fail", name)
		}
	}
}

func TestEngineRemoveMissingFileIsQuiet(t *testing.T) {
	engine := newTestEngine(t)
	engine.Remove("never-existed.bin")
}

func TestEngineLockRejectsSecondInstance(t *testing.T) {
	dir := t.TempDir()
	first, err := newEngine("/bin/true", dir, &scriptedRunner{}, logging.NewNop())
	if err != nil {
		t.Fatalf("first engine: %v", err)
	}
	defer first.Close()

	if _, err := newEngine("/bin/true", dir, &scriptedRunner{}, logging.NewNop()); err == nil {
		t.Fatal("expected lock conflict for shared scratch directory")
	}
}

func TestEngineLockReleasedOnClose(t *testing.T) {
	dir := t.TempDir()
	first, err := newEngine("/bin/true", dir, &scriptedRunner{}, logging.NewNop())
	if err != nil {
		t.Fatalf("first engine: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := newEngine("/bin/true", dir, &scriptedRunner{}, logging.NewNop())
	if err != nil {
		t.Fatalf("second engine after release: %v", err)
	}
	second.Close()
}

func TestEnginePathStaysInScratchDir(t *testing.T) {
	engine := newTestEngine(t)
	path := engine.Path("thumb.png")
	if filepath.Dir(path) != engine.dir {
		t.Fatalf("Path escaped scratch dir: %q", path)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("scratch dir missing: %v", err)
	}
}
