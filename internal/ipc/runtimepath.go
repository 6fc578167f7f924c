// Package ipc provides the length-delimited JSON socket framing shared
// by the command socket and per-subscriber notification sockets
// (spec.md §6), plus the runtime-directory resolution both use to pick
// a well-known path.
package ipc

import (
	"fmt"
	"os"
	"path/filepath"
)

// RuntimeDir returns the directory used for komorebi's local sockets.
// Priority: XDG_RUNTIME_DIR, then /run/user/<uid>, then a created
// /tmp/komorebi-runtime-<uid> fallback.
func RuntimeDir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/komorebi-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// CommandSocketPath returns the well-known path for the command
// socket.
func CommandSocketPath() (string, error) {
	dir, err := RuntimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "komorebi.sock"), nil
}

// SubscriberSocketPath returns the deterministic per-subscriber path
// derived from a subscription name, per spec.md §6.
func SubscriberSocketPath(name string) (string, error) {
	dir, err := RuntimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("komorebi-%s.sock", name)), nil
}

// KnownHwndsPath returns the well-known path for the known-handles
// persistence file used on restart (spec.md §6).
func KnownHwndsPath() (string, error) {
	dir, err := RuntimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "komorebi-known-hwnds.json"), nil
}

// QuickSavePath returns the well-known path for the quick-save
// resize-dimension file.
func QuickSavePath() (string, error) {
	dir, err := RuntimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "komorebi-quicksave.json"), nil
}
