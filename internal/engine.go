package internal

import (
	"sort"
	"strings"

	"github.com/dexopt/apiremap/internal/catalog"
	"github.com/dexopt/apiremap/internal/program"
	"github.com/dexopt/apiremap/internal/trie"
	tt "github.com/dexopt/apiremap/internal/types"
)

// DefaultReleasePrefix selects the release library classes considered
// for retargeting when no prefix is configured.
const DefaultReleasePrefix = "Landroidx"

// Engine builds and maintains the release to framework class mapping.
// All methods are synchronous and the engine is not safe for
// concurrent use.
type Engine struct {
	prog          *program.Program
	hier          *program.Hierarchy
	releasePrefix string
	skip          *trie.Trie

	// mapping owns its entries: each value is an independent copy of
	// the catalog entry it was seeded from.
	mapping map[string]*catalog.API

	seeded   int
	rounds   int
	removals []int
}

// Options configures which program classes the seed pass considers.
type Options struct {
	// ReleasePrefix is matched against the most human readable class
	// name. Empty selects DefaultReleasePrefix.
	ReleasePrefix string
	// SkipPackages lists package paths ("androidx/test") whose classes
	// are never seeded, subpackages included.
	SkipPackages []string
}

// NewEngine creates an engine over the given program. The program is
// read, never modified.
func NewEngine(prog *program.Program, opts Options) *Engine {
	prefix := opts.ReleasePrefix
	if prefix == "" {
		prefix = DefaultReleasePrefix
	}

	skip := trie.New()
	for _, pkg := range opts.SkipPackages {
		segments := strings.Split(strings.Trim(pkg, "/"), "/")
		skip.Insert(segments)
	}

	return &Engine{
		prog:          prog,
		hier:          program.NewHierarchy(prog),
		releasePrefix: prefix,
		skip:          skip,
	}
}

// View returns the current release to framework class pairing as a
// plain descriptor map. The caller owns the returned map.
func (e *Engine) View() map[string]string {
	view := make(map[string]string, len(e.mapping))
	for release, api := range e.mapping {
		view[release] = api.Class
	}
	return view
}

// FrameworkFor returns the framework entry a release class is mapped
// to, or nil when the class is not in the mapping.
func (e *Engine) FrameworkFor(release string) *catalog.API {
	return e.mapping[release]
}

// Rounds returns how many validation passes the last build or
// exclusion ran, the final no-removal pass included.
func (e *Engine) Rounds() int { return e.rounds }

// Removals returns the per-round removal counts of the last
// validation. A converged mapping yields an empty slice.
func (e *Engine) Removals() []int {
	out := make([]int, len(e.removals))
	copy(out, e.removals)
	return out
}

// Report summarizes the current mapping. Pairs are sorted by release
// descriptor so output is deterministic.
func (e *Engine) Report() tt.Report {
	pairs := make([]tt.Pair, 0, len(e.mapping))
	for release, api := range e.mapping {
		pairs = append(pairs, tt.Pair{
			Release:   release,
			Framework: api.Class,
			Methods:   api.NumMethods(),
			Fields:    api.NumFields(),
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Release < pairs[j].Release })

	return tt.Report{
		Pairs:    pairs,
		Seeded:   e.seeded,
		Retained: len(pairs),
		Rounds:   e.rounds,
	}
}
