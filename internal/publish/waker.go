package publish

// Waker coalesces wake-up requests for a consumer scheduler. Any number of
// Wake calls between two receives collapse into one pending signal.
type Waker struct {
	ch chan struct{}
}

// NewWaker creates a Waker.
func NewWaker() *Waker {
	return &Waker{ch: make(chan struct{}, 1)}
}

// Wake signals the consumer without blocking.
func (w *Waker) Wake() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// C returns the channel that receives wake-up signals.
func (w *Waker) C() <-chan struct{} {
	return w.ch
}
