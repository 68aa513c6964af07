// Package walk discovers BLCS source files under a directory root for
// batch ("-X") and watch ("-w") modes.
package walk

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern matches every BLCS source file at any depth under a root.
const Pattern = "**/*.blcs"

// Files returns every file under root matching Pattern, sorted, as
// paths joined back onto root.
func Files(root string) ([]string, error) {
	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, Pattern)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(root, m)
	}
	sort.Strings(out)
	return out, nil
}
