package reference

import (
	"path/filepath"
	"strings"
)

// Source describes where a category's table comes from. Inline CSV text
// (typically from a config or secret store) wins over Path; an empty
// source falls back to the category's default file in the data directory.
type Source struct {
	Path   string
	Inline string
	URL    string // fetched into the data directory by the download command
}

// resolve returns the inline text or the file path to read.
func (s Source) resolve(cat Category, dataDir string) (inline, path string) {
	if strings.TrimSpace(s.Inline) != "" {
		return s.Inline, ""
	}
	if s.Path != "" {
		return "", s.Path
	}
	return "", DefaultPath(cat, dataDir)
}

// DefaultPath returns where a category's table lives inside dataDir.
func DefaultPath(cat Category, dataDir string) string {
	return filepath.Join(dataDir, cat.FileName())
}
