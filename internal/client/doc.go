// Package client maintains the long-lived subscription to the compositor's
// event socket. A Manager resolves the socket, connects, subscribes and
// streams lines; each line is classified and folded into a PendingState
// that a debounce ticker flushes into model events for the publisher.
// Any failure returns the manager to resolving after a constant delay.
package client
