// Package quicksave persists and restores a workspace's per-container
// resize-dimension array to a caller-supplied path, per spec.md's "Persisted
// state layout". Grounded on the teacher's internal/workspace
// storage.go Write/Read shape: validate, MkdirAll, json.MarshalIndent
// to a file, json.Unmarshal back.
package quicksave

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/1broseidon/komorebi/internal/geom"
)

// Document is the on-disk quick-save payload: the focused workspace's
// per-container resize deltas, in container order.
type Document struct {
	ResizeDimensions []*geom.ResizeDelta `json:"resize_dimensions"`
}

// Save writes dims to path as indented JSON, creating parent
// directories as needed.
func Save(path string, dims []*geom.ResizeDelta) error {
	if path == "" {
		return fmt.Errorf("quicksave: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("quicksave: create directory: %w", err)
	}

	doc := Document{ResizeDimensions: dims}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("quicksave: encode: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("quicksave: write %q: %w", path, err)
	}
	return nil
}

// Load reads a previously-saved resize-dimension array from path.
func Load(path string) ([]*geom.ResizeDelta, error) {
	if path == "" {
		return nil, fmt.Errorf("quicksave: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("quicksave: read %q: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("quicksave: parse %q: %w", path, err)
	}
	return doc.ResizeDimensions, nil
}
