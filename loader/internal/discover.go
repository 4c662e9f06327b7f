package internal

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover lists supported files under sourceDir recursively. The result is
// sorted so repeated runs over the same tree see the same order, which keeps
// chunk ids stable across rebuilds.
func Discover(sourceDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, supported := range SupportedExts {
			if ext == supported {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CreateDirectories bootstraps the directories the pipeline works against.
func CreateDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
