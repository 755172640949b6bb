package hypr

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables used to locate the event socket.
const (
	EnvRuntimeDir = "XDG_RUNTIME_DIR"
	EnvInstance   = "HYPRLAND_INSTANCE_SIGNATURE"
)

// EventSocketName is the file name of the event (pub/sub) socket.
const EventSocketName = ".socket2.sock"

// legacySocketRoot is where compositors before 0.40 placed their sockets.
const legacySocketRoot = "/tmp/hypr"

// DefaultCategories are the event categories requested when none are configured.
var DefaultCategories = []string{"workspace", "fullscreen"}

// Resolution errors.
var (
	ErrNoRuntimeDir  = errors.New(EnvRuntimeDir + " is not set")
	ErrNoInstance    = errors.New(EnvInstance + " is not set")
	ErrSocketMissing = errors.New("event socket does not exist")
)

// Resolver computes the socket path for a connection attempt.
type Resolver func() (string, error)

// EnvResolver returns a Resolver that reads the environment through getenv
// on every call, so a restarted compositor with a new instance id is found.
func EnvResolver(getenv func(string) string) Resolver {
	if getenv == nil {
		getenv = os.Getenv
	}
	return func() (string, error) {
		return ResolveSocketPath(getenv)
	}
}

// StaticResolver returns a Resolver for a fixed socket path. The path must
// still exist at resolution time.
func StaticResolver(path string) Resolver {
	return func() (string, error) {
		if err := checkSocket(path); err != nil {
			return "", err
		}
		return path, nil
	}
}

// ResolveSocketPath derives the event socket path from the runtime directory
// and the compositor instance signature. The runtime directory location is
// preferred; the legacy /tmp location is used when only it exists.
func ResolveSocketPath(getenv func(string) string) (string, error) {
	instance := getenv(EnvInstance)
	if instance == "" {
		return "", ErrNoInstance
	}

	runtimeDir := getenv(EnvRuntimeDir)
	if runtimeDir == "" {
		legacy := filepath.Join(legacySocketRoot, instance, EventSocketName)
		if checkSocket(legacy) == nil {
			return legacy, nil
		}
		return "", ErrNoRuntimeDir
	}

	path := filepath.Join(runtimeDir, "hypr", instance, EventSocketName)
	if err := checkSocket(path); err == nil {
		return path, nil
	}

	legacy := filepath.Join(legacySocketRoot, instance, EventSocketName)
	if checkSocket(legacy) == nil {
		return legacy, nil
	}

	return "", fmt.Errorf("%w: %s", ErrSocketMissing, path)
}

func checkSocket(path string) error {
	if path == "" {
		return ErrSocketMissing
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSocketMissing, path)
		}
		return fmt.Errorf("failed to stat socket %s: %w", path, err)
	}
	return nil
}

// SubscriptionRequest builds the request written once after connecting, for
// example ["subscribe", ["workspace", "fullscreen"]].
func SubscriptionRequest(categories []string) ([]byte, error) {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	data, err := json.Marshal([]any{"subscribe", categories})
	if err != nil {
		return nil, fmt.Errorf("failed to encode subscription: %w", err)
	}
	return data, nil
}
