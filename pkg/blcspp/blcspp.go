// Package blcspp is the top-level driver tying the source reader,
// lexer, directive parser, file orchestrator, directive processor and
// emitter into a single preprocessing job.
package blcspp

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blcs-lang/blcspp/pkg/blcs/blcserr"
	"github.com/blcs-lang/blcspp/pkg/blcs/emit"
	"github.com/blcs-lang/blcspp/pkg/blcs/expand"
	"github.com/blcs-lang/blcspp/pkg/blcs/orchestrate"
)

const (
	// OutputExtension is the extension written alongside the source
	// extension's basename.
	OutputExtension = ".cs"

	topComment    = "// Generated by blcspp. Do not edit by hand."
	bottomComment = "// blcspp end"
)

// Options controls a single preprocessing job.
type Options struct {
	// OutputEmpty forces a result even when the processed file has no
	// non-whitespace content, normally suppressed.
	OutputEmpty bool
}

// Result is the outcome of preprocessing one file discovered by the job
// (the entry file or one of its "##use" imports).
type Result struct {
	Path  string // where the output would be written
	Text  string // full output content, including top/bottom banners
	Empty bool   // true if the processed body had no content
}

// PreprocessFile runs a complete job seeded at entryPath: orchestration
// across every "##use" import, then — per spec.md §4.D's closing
// instruction — invokes the Directive Processor and Emitter once for
// each file the orchestrator parsed, in its reported discovery order.
// The entry file is always Results[0].
func PreprocessFile(entryPath string, opts Options) ([]*Result, error) {
	abs, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, err
	}

	orch, err := orchestrate.Run(abs)
	if err != nil {
		return nil, err
	}

	proc, err := expand.New(orch.Macros)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(orch.Order))
	for _, path := range orch.Order {
		tokens, ok := orch.Parsed[path]
		if !ok {
			return nil, &blcserr.FileNotFound{Path: path}
		}

		processed, err := proc.Process(tokens)
		if err != nil {
			return nil, err
		}

		body := emit.Tokens(processed)
		empty := strings.TrimSpace(body) == ""
		out := outputPath(path)

		if empty && !opts.OutputEmpty {
			results = append(results, &Result{Path: out, Empty: true})
			continue
		}

		text := topComment + "\n" + body + "\n\n" + bottomComment
		results = append(results, &Result{Path: out, Text: text, Empty: empty})
	}

	return results, nil
}

// PreprocessString preprocesses in-memory source by writing it to a
// scratch file under the configured extension, so "##use" resolution
// and extension checks behave exactly as they would for a real file.
func PreprocessString(text string, opts Options) ([]*Result, error) {
	dir, err := os.MkdirTemp("", "blcspp")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "input"+orchestrate.Extension)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return nil, err
	}
	return PreprocessFile(path, opts)
}

func outputPath(absEntry string) string {
	dir := filepath.Dir(absEntry)
	base := strings.TrimSuffix(filepath.Base(absEntry), filepath.Ext(absEntry))
	return filepath.Join(dir, base+OutputExtension)
}
