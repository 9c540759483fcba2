// Package fs provides filesystem adapters for walking and hashing recipe inputs.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every file under root in lexical order, skipping VCS
// directories, the tool's own state directory and any ignore patterns.
// Ignore patterns match the base name of files and directories. A walk
// error, such as an unreadable directory, is yielded as a final ("", err)
// pair; swallowing it would silently shrink the file set.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			name := d.Name()
			if d.IsDir() {
				if skippedDirs[name] || matchesIgnore(name, ignores) {
					return filepath.SkipDir
				}
				return nil
			}
			if matchesIgnore(name, ignores) {
				return nil
			}

			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

var skippedDirs = map[string]bool{
	".git":  true,
	".jj":   true,
	".bake": true,
}

func matchesIgnore(name string, ignores []string) bool {
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
