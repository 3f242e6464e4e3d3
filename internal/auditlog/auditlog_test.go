package auditlog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 10, 19, 8, 30, 15, 123_000_000, time.UTC)
}

func TestLogger_AppendsTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "duowatch.log")
	var fb bytes.Buffer
	l := New(path, WithClock(fixedClock), WithFallback(&fb))

	l.Log("KEYBOARD CONNECTED!")
	l.Logf("Display control failed: %s", "no such monitor")

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "[2026-10-19T08:30:15.123Z] KEYBOARD CONNECTED!\n" +
		"[2026-10-19T08:30:15.123Z] Display control failed: no such monitor\n"
	assert.Equal(t, want, string(got))
	assert.Empty(t, fb.String())
}

func TestLogger_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duowatch.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	New(path, WithClock(fixedClock)).Log("enabled")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous run\n[2026-10-19T08:30:15.123Z] enabled\n", string(got))
}

func TestLogger_FallsBackWhenFileUnavailable(t *testing.T) {
	// a directory at the file path makes every open fail
	path := filepath.Join(t.TempDir(), "duowatch.log")
	require.NoError(t, os.Mkdir(path, 0o755))

	var fb bytes.Buffer
	l := New(path, WithFallback(&fb))

	assert.NotPanics(t, func() { l.Log("KEYBOARD DISCONNECTED!") })
	assert.Equal(t, "duowatch: KEYBOARD DISCONNECTED!\n", fb.String())
}

func TestLogger_EmptyPathUsesFallback(t *testing.T) {
	var fb bytes.Buffer
	New("", WithFallback(&fb)).Log("hello")
	assert.Equal(t, "duowatch: hello\n", fb.String())
}

func TestLogger_NilFallback(t *testing.T) {
	l := New("", WithFallback(nil))
	assert.NotPanics(t, func() { l.Log("dropped") })
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/.local/logs/asus-multidisplay-extension.log", p)
}
