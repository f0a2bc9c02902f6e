package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SafeJoin joins target under root/sub, returning "" when target would
// escape it or name root/sub itself.
func SafeJoin(root, sub, target string) string {
	cleanTarget := filepath.Clean(target)
	if cleanTarget == "." || cleanTarget == ".." || filepath.IsAbs(cleanTarget) ||
		strings.HasPrefix(cleanTarget, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.Join(root, sub, cleanTarget)
}

// writeFile creates parent directories and writes content.
func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
