package tabs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadSnapshot reads a tab snapshot. Files ending in .toml are parsed as
// TOML; anything else as YAML.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return ParseSnapshot(data, filepath.Ext(path))
}

// ParseSnapshot decodes data in the format named by ext.
func ParseSnapshot(data []byte, ext string) (Snapshot, error) {
	var snap Snapshot
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("parse toml snapshot: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("parse yaml snapshot: %w", err)
		}
	}

	seen := make(map[int]bool, len(snap.Tabs))
	for _, t := range snap.Tabs {
		if seen[t.ID] {
			return Snapshot{}, fmt.Errorf("duplicate tab id %d", t.ID)
		}
		seen[t.ID] = true
	}
	return snap, nil
}

// SaveSnapshot writes snap to path in the format chosen by its extension.
func SaveSnapshot(path string, snap Snapshot) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(snap)
	} else {
		data, err = yaml.Marshal(snap)
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Snapshot returns the current tab table in snapshot form.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{FocusedWindow: r.focusedWindow}
	for _, t := range r.sortedLocked() {
		snap.Tabs = append(snap.Tabs, *t)
	}
	return snap
}
