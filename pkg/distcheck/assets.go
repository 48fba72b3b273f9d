package distcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/hydephp/distcheck/pkg/ignore"
	"github.com/hydephp/distcheck/pkg/safeio"
)

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// ResolveAssets expands patterns against fs. Literal paths are returned as
// given, whether or not they exist, so a missing asset surfaces as a read
// error. Glob expansion skips paths excluded by ignore.FileName. Glob
// matches are sorted; duplicates keep their first position.
func ResolveAssets(fs billy.Filesystem, patterns []string) ([]string, error) {
	var matcher *ignore.Matcher
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, pattern := range patterns {
		clean, err := safeio.CleanUserPath(pattern)
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", pattern, err)
		}
		if !isGlob(clean) {
			add(clean)
			continue
		}
		if !doublestar.ValidatePattern(clean) {
			return nil, fmt.Errorf("asset %q: %w", pattern, doublestar.ErrBadPattern)
		}

		if matcher == nil {
			if matcher, err = ignore.NewMatcher(fs); err != nil {
				return nil, err
			}
		}

		base, _ := doublestar.SplitPattern(clean)
		if _, statErr := fs.Stat(base); statErr != nil {
			return nil, fmt.Errorf("asset pattern %q matched no files", pattern)
		}

		var matches []string
		err = util.Walk(fs, base, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			rel := filepath.ToSlash(path)
			if info.IsDir() {
				if matcher.IsIgnoredDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if matcher.IsIgnored(rel) {
				return nil
			}
			if ok, _ := doublestar.Match(clean, rel); ok {
				matches = append(matches, rel)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("expand asset pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("asset pattern %q matched no files", pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}
