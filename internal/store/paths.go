package store

import (
	"os"
	"path/filepath"
)

// DataDir returns the path to the hybar data directory.
// Uses XDG_DATA_HOME or defaults to ~/.local/share/hybar.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "hybar"), nil
}

// HistoryPath returns the path to the event history file.
func HistoryPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "events.jsonl"), nil
}
