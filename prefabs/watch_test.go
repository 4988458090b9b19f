package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherReportsChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "scripts"), 0o755))

	w, err := NewWatcher(dir)
	require.NoError(t, err)

	// ignored: not a prefab
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "duck.yaml"), []byte("walk_speed: 2\n"), 0o644))
	waitFor(t, w, "duck.yaml")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "patrol.tengo"), []byte("forward = 1"), 0o644))
	assert.True(t, IsScript(waitFor(t, w, "scripts/patrol.tengo")))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, open := <-w.Events
	assert.False(t, open)
}

func TestWatcherReportsAfterWritesSettle(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "duck.yaml")
	final := []byte("walk_speed: 2\n")
	// truncate-then-write, as editors do
	require.NoError(t, os.WriteFile(path, []byte("walk_"), 0o644))
	time.Sleep(debounce / 4)
	require.NoError(t, os.WriteFile(path, final, 0o644))

	waitFor(t, w, "duck.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, final, data)

	select {
	case name := <-w.Events:
		t.Fatalf("unexpected second event for %s", name)
	case <-time.After(3 * debounce):
	}
}

func TestDue(t *testing.T) {
	now := time.Now()
	pending := map[string]time.Time{
		"scene.yaml":           now.Add(-time.Millisecond),
		"duck.yaml":            now,
		"scripts/patrol.tengo": now.Add(time.Second),
	}
	assert.Equal(t, []string{"duck.yaml", "scene.yaml"}, due(pending, now))
	assert.Equal(t, now.Add(-time.Millisecond), earliest(pending))
	assert.Empty(t, due(map[string]time.Time{}, now))
}

func TestWatcherMissingDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

// waitFor drains events until want shows up. Other prefab files may be
// reported first when the OS splits a write into several events.
func waitFor(t *testing.T, w *Watcher, want string) string {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case name := <-w.Events:
			if name == want {
				return name
			}
		case err := <-w.Errors:
			t.Fatalf("watcher error: %v", err)
		case <-timeout:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}
