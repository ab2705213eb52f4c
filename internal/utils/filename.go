package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename removes characters that are invalid in file paths.
func SanitizeFilename(name string) string {
	sanitized := invalidFilenameChars.ReplaceAllString(name, "")
	// Leading dots would hide the file, trailing ones break some filesystems
	sanitized = strings.TrimLeft(sanitized, " .")
	sanitized = strings.TrimRight(sanitized, " .")
	return sanitized
}

// ChmodAsParent gives path the permissions (minus exec bits for files) and,
// where supported, the ownership of its parent directory.
func ChmodAsParent(path string) error {
	parent, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("failed to stat parent of %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	mode := parent.Mode().Perm()
	if !info.IsDir() {
		mode &^= 0111
	}
	if info.Mode().Perm() != mode {
		if err := os.Chmod(path, mode); err != nil {
			return fmt.Errorf("failed to chmod %s: %w", path, err)
		}
	}
	return chownAsParent(path, parent)
}
