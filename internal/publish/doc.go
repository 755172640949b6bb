// Package publish delivers flushed events to consumers without ever blocking
// the producer. Events can be delivered through a bounded queue, through
// versioned shared cells that consumers poll on their own schedule, or
// through any other Sink; a Publisher fans each batch out to all of them and
// then wakes the consumer's scheduler once.
package publish
