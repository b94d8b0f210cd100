package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ProjectDir is the per-project state directory tests create.
const ProjectDir = ".tabsuspend"

// TempDir creates a temporary directory and returns it along with a cleanup function.
func TempDir(t *testing.T) (string, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "tabsuspend-test-*")
	if err != nil {
		t.Fatal(err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }
}

// WriteFile writes content to a file in the given directory.
// It creates parent directories as needed and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ReadFile reads a file and returns its contents.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// FileExists checks if a file exists.
func FileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	return err == nil
}

// SetupProjectDir creates a project directory containing an empty
// .tabsuspend state directory.
func SetupProjectDir(t *testing.T) (string, func()) {
	t.Helper()
	dir, cleanup := TempDir(t)
	if err := os.MkdirAll(filepath.Join(dir, ProjectDir), 0755); err != nil {
		cleanup()
		t.Fatal(err)
	}
	return dir, cleanup
}

// SetupProjectDirWithTabs creates a project directory whose tab snapshot
// holds snapshot. It returns the directory and the snapshot path.
func SetupProjectDirWithTabs(t *testing.T, snapshot string) (string, string, func()) {
	t.Helper()
	dir, cleanup := SetupProjectDir(t)
	path := WriteFile(t, dir, filepath.Join(ProjectDir, "tabs.yaml"), snapshot)
	return dir, path, cleanup
}
