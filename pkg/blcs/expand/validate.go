package expand

import (
	"sort"

	"github.com/blcs-lang/blcspp/pkg/blcs/blcserr"
	"github.com/blcs-lang/blcspp/pkg/blcs/directive"
)

// validateMacros is Pass 1: it resolves every macro-to-macro reference
// across the merged table (catching forward and cross-file references
// that a single file's own parse could not see) and runs a DFS over the
// reference graph to reject cycles before any expansion is attempted.
func validateMacros(macros map[string]*directive.Macro) error {
	for _, m := range macros {
		for ref := range m.Macros {
			if ref == m.Name {
				return &blcserr.Syntax{Line: m.Line, Msg: "macro '" + m.Name + "' cannot reference itself"}
			}
			if _, ok := macros[ref]; !ok {
				return &blcserr.UndefinedMacro{Line: m.Line, Name: ref}
			}
		}
	}

	names := make([]string, 0, len(macros))
	for name := range macros {
		names = append(names, name)
	}
	sort.Strings(names)

	done := map[string]bool{}
	for _, name := range names {
		if err := dfsCycle(macros, name, nil, map[string]bool{}, done); err != nil {
			return err
		}
	}
	return nil
}

func dfsCycle(macros map[string]*directive.Macro, name string, path []string, onPath, done map[string]bool) error {
	if done[name] {
		return nil
	}
	if onPath[name] {
		idx := indexOfString(path, name)
		cycle := append([]string(nil), path[idx:]...)
		return &blcserr.InfiniteMacroRecursion{Line: macros[cycle[0]].Line, Path: cycle}
	}

	onPath[name] = true
	path = append(path, name)

	refs := make([]string, 0, len(macros[name].Macros))
	for ref := range macros[name].Macros {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	for _, ref := range refs {
		if err := dfsCycle(macros, ref, path, onPath, done); err != nil {
			return err
		}
	}

	onPath[name] = false
	done[name] = true
	return nil
}

func indexOfString(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
