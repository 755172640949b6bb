// Package daemon provides the main orchestration for hybar.
// It coordinates the compositor client, the publisher and its sinks,
// the D-Bus bridge, and configuration hot-reload.
package daemon
