package internal

import (
	"fmt"

	"github.com/dexopt/apiremap/internal/checks"
)

// validate prunes the mapping to its greatest fixed point: the largest
// subset in which every pair passes the member and hierarchy checks
// against the subset itself.
//
// Each round judges all pairs against the view frozen at the start of
// the round and applies the collected removals only afterwards, so
// within a round the verdicts are order independent. A removal can
// invalidate pairs that passed in the same round; the next round
// catches them. The loop stops on the first round that removes
// nothing, after at most one round per seeded pair.
func (e *Engine) validate() error {
	e.rounds = 0
	e.removals = e.removals[:0]

	for {
		view := make(map[string]string, len(e.mapping))
		for release, api := range e.mapping {
			view[release] = api.Class
		}

		var toRemove []string
		for release, api := range e.mapping {
			cls := e.prog.Class(release)
			if cls == nil {
				return fmt.Errorf("mapped class %s is not loaded in the program", release)
			}

			if !checks.Members(cls, api, view) {
				toRemove = append(toRemove, release)
				continue
			}
			if !checks.Hierarchy(cls, e.prog, e.hier, view) {
				toRemove = append(toRemove, release)
			}
		}

		e.rounds++
		if len(toRemove) == 0 {
			return nil
		}
		e.removals = append(e.removals, len(toRemove))
		for _, release := range toRemove {
			delete(e.mapping, release)
		}
	}
}
