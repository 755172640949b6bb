package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/hybar/internal/model"
	"github.com/jmylchreest/hybar/internal/publish"
)

// ErrNotConnected is returned when emitting before Start.
var ErrNotConnected = errors.New("not connected to D-Bus")

// signalConn is the subset of *dbus.Conn used for emission.
type signalConn interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// Emitter publishes events as signals on the session bus.
// It implements publish.Sink.
type Emitter struct {
	logger  *slog.Logger
	busName string

	mu       sync.RWMutex
	conn     *dbus.Conn
	emitter  signalConn
	snapshot func() publish.Snapshot
	running  bool
}

// NewEmitter creates an Emitter that will claim busName (empty = DBusBusName).
func NewEmitter(busName string, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	if busName == "" {
		busName = DBusBusName
	}
	return &Emitter{
		logger:  logger,
		busName: busName,
	}
}

// SetStateProvider sets the snapshot source answered by GetState.
func (e *Emitter) SetStateProvider(snapshot func() publish.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshot = snapshot
}

// Start connects to the session bus, exports the event object and claims the bus name.
func (e *Emitter) Start() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("emitter already running")
	}
	snapshot := e.snapshot
	e.mu.Unlock()

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(&stateObject{snapshot: snapshot}, DBusPath, DBusInterface); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: string(DBusPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: eventMethods(),
				Signals: eventSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(e.busName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		_ = conn.Close()
		return fmt.Errorf("bus name %s already taken", e.busName)
	}

	e.mu.Lock()
	e.conn = conn
	e.emitter = conn
	e.running = true
	e.mu.Unlock()

	e.logger.Info("D-Bus event emitter started", "name", e.busName, "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name and closes the connection.
func (e *Emitter) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}
	e.running = false
	e.emitter = nil

	if _, err := e.conn.ReleaseName(e.busName); err != nil {
		e.logger.Warn("failed to release bus name", "error", err)
	}
	err := e.conn.Close()
	e.conn = nil

	e.logger.Info("D-Bus event emitter stopped")
	return err
}

// Publish emits the signal for ev.
func (e *Emitter) Publish(ev model.Event) error {
	e.mu.RLock()
	emitter := e.emitter
	e.mu.RUnlock()

	if emitter == nil {
		return ErrNotConnected
	}

	member, body, err := SignalArgs(ev)
	if err != nil {
		return err
	}

	if err := emitter.Emit(DBusPath, DBusInterface+"."+member, body...); err != nil {
		return fmt.Errorf("failed to emit %s signal: %w", member, err)
	}

	e.logger.Debug("emitted signal", "signal", member, "id", ev.ID)
	return nil
}

// Connection returns the underlying D-Bus connection, or nil before Start.
func (e *Emitter) Connection() *dbus.Conn {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.conn
}
