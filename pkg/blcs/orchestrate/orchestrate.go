// Package orchestrate drives the BFS across "##use" imports, merging
// per-file macro tables into one job-wide table before any expansion
// happens.
package orchestrate

import (
	"path/filepath"

	"github.com/blcs-lang/blcspp/internal/source"
	"github.com/blcs-lang/blcspp/pkg/blcs/blcserr"
	"github.com/blcs-lang/blcspp/pkg/blcs/directive"
	"github.com/blcs-lang/blcspp/pkg/blcs/lexer"
)

// Extension is the configured BLCS source extension.
const Extension = ".blcs"

// Result is the job-wide output of a completed orchestration pass: the
// token stream parsed from every visited file, in discovery order, and
// the macro table merged across all of them.
type Result struct {
	Order  []string
	Parsed map[string][]lexer.Token
	Macros map[string]*directive.Macro
}

// Run seeds the work queue with entryPath and walks every "##use"
// import reachable from it, relative to entryPath's own directory —
// never the including file's directory, even transitively.
func Run(entryPath string) (*Result, error) {
	abs, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, err
	}
	topDir := filepath.Dir(abs)

	visited := map[string]bool{}
	queue := []string{abs}

	result := &Result{
		Parsed: map[string][]lexer.Token{},
		Macros: map[string]*directive.Macro{},
	}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if visited[path] {
			continue
		}

		if filepath.Ext(path) != Extension {
			return nil, &blcserr.FileExtension{Path: path, Expected: Extension}
		}
		if !source.Exists(path) {
			return nil, &blcserr.FileNotFound{Path: path}
		}

		visited[path] = true

		file, err := source.Read(path)
		if err != nil {
			return nil, err
		}

		toks, err := lexer.New(file.Text).AllTokens()
		if err != nil {
			return nil, err
		}
		data, err := directive.Parse(toks)
		if err != nil {
			return nil, err
		}

		result.Parsed[path] = toks
		result.Order = append(result.Order, path)

		for _, rel := range data.Files {
			queue = append(queue, resolve(topDir, rel))
		}
		for name, m := range data.Macros {
			if _, exists := result.Macros[name]; exists {
				return nil, &blcserr.MultipleDefinitions{Line: m.Line, Name: name}
			}
			result.Macros[name] = m
		}
	}

	return result, nil
}

func resolve(topDir, rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Clean(filepath.Join(topDir, rel))
}
