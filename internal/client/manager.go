package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/hybar/internal/hypr"
	"github.com/jmylchreest/hybar/internal/model"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultRetryDelay = time.Second
	DefaultDebounce   = 50 * time.Millisecond

	maxLineSize = 1024 * 1024
)

// ErrPeerClosed is returned when the compositor closes the event socket.
var ErrPeerClosed = errors.New("event socket closed by peer")

// State is a connection state-machine state.
type State int32

const (
	// StateResolving computes the socket path.
	StateResolving State = iota
	// StateConnecting opens the socket.
	StateConnecting
	// StateSubscribing writes the subscription request.
	StateSubscribing
	// StateStreaming reads and aggregates events.
	StateStreaming
)

var stateNames = map[State]string{
	StateResolving:   "resolving",
	StateConnecting:  "connecting",
	StateSubscribing: "subscribing",
	StateStreaming:   "streaming",
}

// String returns the state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StateError records the state in which a connection attempt failed.
type StateError struct {
	State State
	Err   error
}

func (e *StateError) Error() string {
	return e.State.String() + ": " + e.Err.Error()
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// EventPublisher receives each non-empty flush. Publish must not block.
type EventPublisher interface {
	Publish(events ...model.Event)
}

// DialFunc opens a stream connection to the socket at path.
type DialFunc func(ctx context.Context, path string) (net.Conn, error)

// Options configures a Manager.
type Options struct {
	// Resolver locates the socket on every attempt. Defaults to the environment.
	Resolver hypr.Resolver
	// Dial opens the socket. Defaults to a Unix domain socket dialer.
	Dial DialFunc
	// RetryDelay is the constant delay before every retry.
	RetryDelay time.Duration
	// Debounce is the flush interval.
	Debounce time.Duration
	// Categories are the subscribed event categories.
	Categories []string
	// OnStateChange is called synchronously on every state transition.
	OnStateChange func(State)

	Logger *slog.Logger
}

// Manager owns the socket lifecycle. It runs in a single goroutine; only the
// line reader runs beside it.
type Manager struct {
	opts      Options
	publisher EventPublisher
	logger    *slog.Logger

	state    atomic.Int32
	counters counters

	mu          sync.RWMutex
	socketPath  string
	connectedAt time.Time

	// newTicker is replaced in tests to drive flushes by hand.
	newTicker func(d time.Duration) (<-chan time.Time, func())
}

// NewManager creates a Manager publishing to publisher.
func NewManager(publisher EventPublisher, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Resolver == nil {
		opts.Resolver = hypr.EnvResolver(nil)
	}
	if opts.Dial == nil {
		opts.Dial = dialUnix
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if len(opts.Categories) == 0 {
		opts.Categories = hypr.DefaultCategories
	}

	return &Manager{
		opts:      opts,
		publisher: publisher,
		logger:    opts.Logger,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

func dialUnix(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}

// State returns the current state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Stats returns a copy of the connection counters.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	path := m.socketPath
	connectedAt := m.connectedAt
	m.mu.RUnlock()

	return Stats{
		State:         m.State(),
		SocketPath:    path,
		ConnectedAt:   connectedAt,
		Connects:      m.counters.connects.Load(),
		Disconnects:   m.counters.disconnects.Load(),
		FailedResolve: m.counters.failedResolve.Load(),
		LinesRead:     m.counters.linesRead.Load(),
		Flushes:       m.counters.flushes.Load(),
		EventsFlushed: m.counters.eventsFlushed.Load(),
	}
}

func (m *Manager) setState(s State) {
	if State(m.state.Swap(int32(s))) == s {
		return
	}
	m.logger.Debug("connection state changed", "state", s)
	if m.opts.OnStateChange != nil {
		m.opts.OnStateChange(s)
	}
}

// Run keeps a subscription alive until ctx is cancelled, retrying forever
// after a constant delay. It returns ctx.Err().
func (m *Manager) Run(ctx context.Context) error {
	for {
		err := m.connectAndStream(ctx)
		if ctx.Err() != nil {
			m.setState(StateResolving)
			return ctx.Err()
		}

		m.setState(StateResolving)
		m.logger.Warn("compositor connection unavailable, retrying",
			"error", err, "delay", m.opts.RetryDelay)

		if !sleepContext(ctx, m.opts.RetryDelay) {
			return ctx.Err()
		}
	}
}

// connectAndStream performs one pass through the state machine. It always
// returns a non-nil error.
func (m *Manager) connectAndStream(ctx context.Context) error {
	m.setState(StateResolving)
	path, err := m.opts.Resolver()
	if err != nil {
		m.counters.failedResolve.Add(1)
		return &StateError{State: StateResolving, Err: err}
	}

	m.setState(StateConnecting)
	conn, err := m.opts.Dial(ctx, path)
	if err != nil {
		return &StateError{State: StateConnecting, Err: err}
	}
	defer func() { _ = conn.Close() }()

	m.setState(StateSubscribing)
	request, err := hypr.SubscriptionRequest(m.opts.Categories)
	if err != nil {
		return &StateError{State: StateSubscribing, Err: err}
	}
	if _, err := conn.Write(request); err != nil {
		return &StateError{State: StateSubscribing, Err: fmt.Errorf("failed to write subscription: %w", err)}
	}

	m.mu.Lock()
	m.socketPath = path
	m.connectedAt = time.Now()
	m.mu.Unlock()
	m.counters.connects.Add(1)
	m.logger.Info("connected to compositor event socket", "path", path)

	m.setState(StateStreaming)
	err = m.stream(ctx, conn)
	m.counters.disconnects.Add(1)

	m.mu.Lock()
	m.connectedAt = time.Time{}
	m.mu.Unlock()

	return &StateError{State: StateStreaming, Err: err}
}

// stream races line reads against the debounce ticker until the socket
// fails or ctx is cancelled. Pending state does not survive a reconnect.
func (m *Manager) stream(ctx context.Context, conn net.Conn) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go readLines(conn, lines, readErr, done)

	ticks, stopTicker := m.newTicker(m.opts.Debounce)
	defer stopTicker()

	var pending PendingState
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line := <-lines:
			m.logger.Debug("compositor event", "line", line)
			pending.Apply(hypr.ParseLine(line))
			m.counters.linesRead.Add(1)

		case err := <-readErr:
			return err

		case <-ticks:
			events := pending.Flush()
			if len(events) == 0 {
				continue
			}
			m.counters.flushes.Add(1)
			m.counters.eventsFlushed.Add(uint64(len(events)))
			m.publisher.Publish(events...)
		}
	}
}

// readLines scans conn until it fails, forwarding each line. It exits early
// when done is closed.
func readLines(conn net.Conn, lines chan<- string, readErr chan<- error, done <-chan struct{}) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-done:
			return
		}
	}

	err := scanner.Err()
	if err == nil {
		err = ErrPeerClosed
	}
	readErr <- err
}

// sleepContext waits for d or until ctx is done. It reports whether the full
// delay elapsed.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
