// Package inputs resolves the file arguments named on the command
// line. Feature-file arguments may be doublestar glob patterns.
package inputs

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolve expands each argument to concrete file paths. Arguments
// containing glob characters are expanded with doublestar (so
// "features/**/*.feature" works); plain paths must exist. The result is
// deduplicated and sorted for deterministic processing order.
func Resolve(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		if !containsGlob(arg) {
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("feature file %s: %w", arg, err)
			}
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", arg, err)
		}
		var files []string
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			files = append(files, m)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no files match pattern %q", arg)
		}
		for _, f := range files {
			add(f)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
