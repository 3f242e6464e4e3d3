package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsrosen6/duowatch/internal/config"
	"github.com/dsrosen6/duowatch/internal/listener"
)

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"version"}, &out))
	assert.Equal(t, version+"\n", out.String())
}

func TestRun_Check(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"keyboard attached", "echo 'Bus 001 Device 004: ID 0b05:1234 ASUS Zenbook Duo Keyboard'", "present\n"},
		{"keyboard missing", "echo 'Bus 001 Device 002: ID 8087:0aaa Intel Corp.'", "absent\n"},
		{"enumeration fails", "duowatch-no-such-lsusb", "absent\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(context.Background(), []string{"check", "--enumerate-cmd", tt.command}, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRun_StatusWithoutDaemon(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "none.sock")

	err := run(context.Background(), []string{"--socket", sock, "status"}, &bytes.Buffer{})
	require.ErrorIs(t, err, listener.ErrNotRunning)
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"reboot"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestCLI_ConfigOverlay(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	def, err := config.Default()
	require.NoError(t, err)

	c := cli{Socket: "/tmp/x.sock"}
	c.Listen.Detect = detectFlags{EnumerateCmd: "lsusb -v", VendorID: "046d", Keywords: []string{"logitech"}}
	c.Listen.LogFile = "/tmp/duowatch.log"
	c.Listen.Gdctl = "/usr/bin/gdctl"
	c.Listen.Primary = "eDP-1"
	c.Listen.Secondary = "DP-3"
	c.Listen.Interval = 5 * time.Second
	c.Listen.NoNotify = true

	cfg := c.config(def)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/tmp/x.sock", cfg.SocketPath)
	assert.Equal(t, "lsusb -v", cfg.EnumerateCmd)
	assert.Equal(t, "046d", cfg.VendorID)
	assert.Equal(t, "DP-3", cfg.Layout.Secondary)
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.False(t, cfg.Notifications)

	// defaults are left untouched
	assert.Equal(t, "0b05", def.VendorID)
}

func TestRun_ListenLifecycle(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "d.sock")
	logFile := filepath.Join(dir, "logs", "duowatch.log")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, []string{
			"--socket", sock,
			"listen",
			"--no-notify",
			"--log-file", logFile,
			"--interval", "1h",
			"--enumerate-cmd", "true",
		}, &bytes.Buffer{})
	}()

	var out bytes.Buffer
	require.Eventually(t, func() bool {
		out.Reset()
		return run(context.Background(), []string{"--socket", sock, "status"}, &out) == nil
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "enabled=true state=Unknown\n", out.String())

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"--socket", sock, "probe"}, &out))
	assert.Equal(t, "present=false enabled=true state=Unknown\n", out.String())

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"--socket", sock, "disable"}, &out))
	assert.Equal(t, "enabled=false state=Unknown\n", out.String())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("listen did not stop")
	}

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "] ASUS MultiDisplay enabled\n")
	assert.Contains(t, string(data), "] ASUS MultiDisplay disabled\n")
}
