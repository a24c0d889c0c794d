package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// dirName creates a timestamped directory name, with dashes instead of colons
// for filesystem compatibility.
func dirName(t time.Time) string {
	return t.Format("2006-01-02T15-04-05")
}

// RunDir creates and returns <root>/<kind>/<timestamp> for a run's artifacts.
func RunDir(root string, kind RunKind, t time.Time) (string, error) {
	dir := filepath.Join(root, string(kind), dirName(t))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact dir: %w", err)
	}
	return dir, nil
}

// SaveJSON writes data as indented JSON to dir/name. Returns the path written.
func SaveJSON[T any](dir, name string, data T) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return SaveText(dir, name, string(jsonData))
}

// SaveText writes content to dir/name. Returns the path written.
func SaveText(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	return path, nil
}

// LoadJSON reads JSON data from path.
func LoadJSON[T any](path string) (T, error) {
	var data T

	jsonData, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(jsonData, &data); err != nil {
		return data, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}

	return data, nil
}

// LatestRunDir returns the newest run directory of kind under root.
func LatestRunDir(root string, kind RunKind) (string, error) {
	dir := filepath.Join(root, string(kind))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no %s runs in %s", kind, root)
		}
		return "", err
	}

	// os.ReadDir sorts by name, which is chronological for our timestamps
	var latest string
	for _, entry := range entries {
		if entry.IsDir() {
			latest = entry.Name()
		}
	}

	if latest == "" {
		return "", fmt.Errorf("no %s runs in %s", kind, root)
	}

	return filepath.Join(dir, latest), nil
}
