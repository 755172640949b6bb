// Package dbus bridges outbound events onto the session bus.
// The Emitter is a publisher sink that turns each event into a signal on the
// io.github.jmylchreest.hybar.Events interface; the Listener subscribes to
// those signals and converts them back into events.
package dbus
