package dbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/hybar/internal/model"
)

// EventHandler is called for each event received from the bus.
type EventHandler func(e model.Event)

// Listener subscribes to a running daemon's signals and converts them back into events.
type Listener struct {
	conn   *dbus.Conn
	logger *slog.Logger

	onEvent EventHandler
}

// NewListener creates a new signal listener.
func NewListener(logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		logger: logger,
	}
}

// SetEventHandler sets the callback for received events.
func (l *Listener) SetEventHandler(handler EventHandler) {
	l.onEvent = handler
}

// Run connects to the session bus and delivers events until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	l.conn = conn
	defer func() {
		_ = conn.Close()
	}()

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
	); err != nil {
		return fmt.Errorf("failed to add match rule: %w", err)
	}

	ch := make(chan *dbus.Signal, 100)
	conn.Signal(ch)
	defer conn.RemoveSignal(ch)

	l.logger.Info("listening for D-Bus events", "interface", DBusInterface, "path", DBusPath)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-ch:
			if !ok {
				return fmt.Errorf("D-Bus connection closed")
			}
			l.handleSignal(sig)
		}
	}
}

// handleSignal converts a signal and invokes the handler.
func (l *Listener) handleSignal(sig *dbus.Signal) {
	if sig == nil || sig.Path != DBusPath {
		return
	}

	e, err := EventFromSignal(sig.Name, sig.Body)
	if err != nil {
		l.logger.Warn("ignoring signal", "name", sig.Name, "error", err)
		return
	}

	if l.onEvent != nil {
		l.onEvent(e)
	}
}
