// Package internal provides the core engine that decides which release
// library classes of an Android program can be retargeted at the
// framework classes they shadow.
//
// The engine works in two phases:
//
// Seeding: every non-external program class whose human readable name
// carries the release prefix (Landroidx by default) is matched against
// the framework catalog by simple class name. Names produced by more
// than one catalog class identify neither and never match. Each hit
// claims its simple name exactly once and receives an independent copy
// of the catalog entry.
//
// Validation: the seed mapping is pruned to its greatest fixed point.
// Each round judges every pair against the release to framework view
// frozen at the start of the round: all public members of the release
// class must have counterparts on the framework class once their
// signatures are read through the view, and the class's ancestry must
// either be mapped itself or be outside the program's reach. Removals
// are applied between rounds; the loop stops when a round removes
// nothing.
//
// Key components:
//
// Engine: owns the mapping and runs both phases. LoadMapping seeds and
// validates, Exclude removes entries and re-validates, Report and View
// expose the converged result.
//
// checks: the pure per-class member and hierarchy judgments.
//
// catalog, program, descriptor: the framework catalog, the program
// class table with its hierarchy walker, and the descriptor string
// grammar they share.
//
// The package is synchronous and allocation light; callers that want
// logging, caching or file watching layer them on top.
//
// Usage:
//
//	eng := internal.NewEngine(prog, internal.Options{})
//	if err := eng.LoadMapping(cat); err != nil {
//	    // handle error
//	}
//	for _, pair := range eng.Report().Pairs {
//	    fmt.Printf("%s -> %s\n", pair.Release, pair.Framework)
//	}
//
// This package is intended for internal use within the remapping tool
// and should not be imported by external packages.
package internal
