// Package notify shows desktop notifications through the freedesktop
// notification service on the session bus.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"

	appName = "duowatch"
	// -1 lets the notification server pick the timeout
	expireDefault int32 = -1
)

type Notifier interface {
	Notify(ctx context.Context, summary, body string) error
}

// Caller is the subset of a dbus connection used to send notifications.
type Caller interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

type DBus struct {
	conn Caller
}

// NewDBus wraps an existing connection, such as the one returned by
// dbus.ConnectSessionBus.
func NewDBus(conn Caller) *DBus {
	return &DBus{conn: conn}
}

func (d *DBus) Notify(ctx context.Context, summary, body string) error {
	obj := d.conn.Object(notifyDest, dbus.ObjectPath(notifyPath))

	var id uint32
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		appName,
		uint32(0),
		"",
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{},
		expireDefault,
	)
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("calling %s: %w", notifyMethod, err)
	}

	slog.Debug("notify: notification sent", "id", id, "summary", summary)
	return nil
}

type Noop struct{}

func (Noop) Notify(context.Context, string, string) error { return nil }
