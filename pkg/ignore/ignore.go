// Package ignore filters paths out of asset glob expansion using
// gitignore syntax.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the per-package ignore file, read from the filesystem root.
const FileName = ".distcheckignore"

// Defaults are always ignored, ahead of any patterns from FileName.
var Defaults = []string{".git/", "node_modules/", "vendor/"}

// Matcher reports whether a slash-separated path relative to the package
// root is ignored.
type Matcher struct {
	matcher gitignore.Matcher
}

// NewMatcher layers the defaults and FileName, if present. Patterns in
// FileName may re-include a default with a leading "!".
//
// .gitignore is not consulted: build output is commonly ignored by git
// and still has to be checked.
func NewMatcher(fsys billy.Filesystem) (*Matcher, error) {
	patterns := make([]gitignore.Pattern, 0, len(Defaults))
	for _, p := range Defaults {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	lines, err := readIgnoreFile(fsys, FileName)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	return &Matcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

func readIgnoreFile(fsys billy.Filesystem, name string) ([]string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return lines, nil
}

// IsIgnored checks a file path.
func (m *Matcher) IsIgnored(path string) bool {
	return m.match(path, false)
}

// IsIgnoredDir checks a directory; ignored directories are not descended into.
func (m *Matcher) IsIgnoredDir(path string) bool {
	return m.match(path, true)
}

func (m *Matcher) match(path string, isDir bool) bool {
	parts := splitPath(filepath.ToSlash(path))
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	if path == "" || path == "." {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
