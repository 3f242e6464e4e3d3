package usb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsrosen6/duowatch/internal/runner"
)

const lsusbWithKeyboard = `Bus 002 Device 001: ID 1d6b:0003 Linux Foundation 3.0 root hub
Bus 001 Device 002: ID 8087:0aaa Intel Corp.
Bus 001 Device 004: ID 0b05:1234 ASUS Zenbook Duo Keyboard
Bus 001 Device 001: ID 1d6b:0002 Linux Foundation 2.0 root hub
`

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"zenbook duo keyboard", "Bus 001 Device 004: ID 0b05:1234 ASUS Zenbook Duo Keyboard", true},
		{"intel only", "Bus 001 Device 002: ID 8087:0aaa Intel Corp.", false},
		{"mixed output", lsusbWithKeyboard, true},
		{"upper case vendor", "ID 0B05:1B2C PRIMAX", true},
		{"vendor without keyword", "Bus 003 Device 007: ID 0b05:19b6 Mystery Device", false},
		{"keyword without vendor", "Bus 003 Device 008: ID 046d:c52b Logitech Keyboard", false},
		{"vendor and keyword on different lines", "ID 0b05:0000 Unknown\nID 046d:c52b keyboard", false},
		{"empty output", "", false},
	}

	m := DefaultMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.output))
		})
	}
}

func TestMatcher_KeywordOrderIrrelevant(t *testing.T) {
	line := "Bus 001 Device 004: ID 0b05:1234 ASUS Zenbook Duo Keyboard"
	forward := Matcher{VendorID: "0b05", Keywords: []string{"asus", "primax"}}
	reverse := Matcher{VendorID: "0b05", Keywords: []string{"primax", "asus"}}

	assert.True(t, forward.Match(line))
	assert.True(t, reverse.Match(line))
}

func TestMatcher_EmptyVendorMatchesNothing(t *testing.T) {
	m := Matcher{Keywords: DefaultKeywords}
	assert.False(t, m.Match(lsusbWithKeyboard))
}

func TestCommandDetector_Present(t *testing.T) {
	tests := []struct {
		name string
		res  runner.Result
		want bool
	}{
		{
			name: "keyboard listed",
			res:  runner.Result{Succeeded: true, Stdout: lsusbWithKeyboard},
			want: true,
		},
		{
			name: "keyboard missing",
			res:  runner.Result{Succeeded: true, Stdout: "Bus 001 Device 002: ID 8087:0aaa Intel Corp.\n"},
			want: false,
		},
		{
			// keyboard text in stdout must not count when the command failed
			name: "command failed",
			res:  runner.Result{Succeeded: false, Stdout: lsusbWithKeyboard, Stderr: "lsusb: not found"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCommand string
			r := runner.Func(func(_ context.Context, commandLine string) runner.Result {
				gotCommand = commandLine
				return tt.res
			})

			d := NewCommandDetector(r, "", DefaultMatcher())
			assert.Equal(t, tt.want, d.Present(context.Background()))
			require.Equal(t, DefaultCommand, gotCommand)
		})
	}
}
