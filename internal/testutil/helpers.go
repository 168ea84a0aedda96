package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"flakelab/internal/common"
)

// TestHelper provides common test utilities
type TestHelper struct {
	t *testing.T
}

// NewTestHelper creates a new test helper
func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// WriteFile writes content to a file in the given directory
func (h *TestHelper) WriteFile(dir, filename, content string) string {
	h.t.Helper()
	path := filepath.Join(dir, filename)

	// Create parent directories if needed
	if err := os.MkdirAll(filepath.Dir(path), common.DirPermissionNormal); err != nil {
		h.t.Fatalf("Failed to create directories: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), common.FilePermissionSecure); err != nil {
		h.t.Fatalf("Failed to write file %s: %v", path, err)
	}

	return path
}

// IsolatedHome points HOME and SNOWFLAKE_HOME at fresh temp directories so
// nothing from the developer's machine is picked up. It returns HOME.
func (h *TestHelper) IsolatedHome() string {
	h.t.Helper()
	home := h.t.TempDir()
	h.t.Setenv("HOME", home)
	h.t.Setenv("USERPROFILE", home)
	h.t.Setenv("SNOWFLAKE_HOME", filepath.Join(home, "no-snowflake-home"))
	return home
}
