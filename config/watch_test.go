package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: tcell\n"), 0644))

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("engine: ansi\n"), 0644))

	// A write may be observed as several events; wait for the final content
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-w.Updates():
			if cfg.Engine == "ansi" {
				return
			}
		case err := <-w.Errors():
			t.Logf("transient reload error: %v", err)
		case <-deadline:
			t.Fatal("No reload within 5s")
		}
	}
}

func TestWatchReportsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: tcell\n"), 0644))

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("engine: teletype\n"), 0644))

	// Truncation may be seen first and reload as defaults
	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-w.Errors():
			assert.Contains(t, err.Error(), "teletype")
			return
		case cfg := <-w.Updates():
			require.Equal(t, "tcell", cfg.Engine)
		case <-deadline:
			t.Fatal("No error within 5s")
		}
	}
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: tcell\n"), 0644))

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("engine: teletype\n"), 0644))

	select {
	case cfg := <-w.Updates():
		t.Fatalf("Unexpected update: %+v", cfg)
	case err := <-w.Errors():
		t.Fatalf("Unexpected error: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchMissingDir(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "absent", "keyview.yaml"))
	assert.Error(t, err)
}

func TestWatchCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyview.yaml")
	w, err := Watch(path)
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestSendKeepsLatest(t *testing.T) {
	ch := make(chan int, 1)
	send(ch, 1)
	send(ch, 2)
	assert.Equal(t, 2, <-ch)
}
