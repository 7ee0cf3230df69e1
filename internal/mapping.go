package internal

import (
	"fmt"
	"strings"

	"github.com/dexopt/apiremap/internal/catalog"
	"github.com/dexopt/apiremap/internal/descriptor"
)

// LoadMapping seeds the mapping from the catalog and validates it to a
// fixed point. Any previous mapping is discarded. The catalog is only
// read during seeding; entries placed in the mapping are copies.
func (e *Engine) LoadMapping(cat *catalog.Catalog) error {
	index, err := buildSimpleNameIndex(cat)
	if err != nil {
		return err
	}

	e.mapping = make(map[string]*catalog.API)
	claimed := make(map[string]string)
	for _, cls := range e.prog.Classes() {
		if cls.External {
			continue
		}

		name := cls.HumanName()
		if !strings.HasPrefix(name, e.releasePrefix) {
			continue
		}
		if e.skip.HasPrefix(descriptor.PackageSegments(name)) {
			continue
		}

		simple, err := descriptor.SimpleName(name)
		if err != nil {
			return err
		}
		framework, ok := index[simple]
		if !ok {
			// release class with no framework counterpart
			continue
		}

		// Release paths moved between library generations, so matching
		// is by simple name and a name may only be claimed once.
		if prev, dup := claimed[simple]; dup {
			return fmt.Errorf("release classes %s and %s both claim the simple name %q",
				prev, cls.Type, simple)
		}
		claimed[simple] = cls.Type

		e.mapping[cls.Type] = cat.Get(framework).Clone()
	}
	e.seeded = len(e.mapping)

	return e.validate()
}

// Exclude removes the given release classes from the mapping and
// re-validates, pruning whatever depended on them.
func (e *Engine) Exclude(types []string) error {
	for _, typ := range types {
		delete(e.mapping, typ)
	}
	return e.validate()
}

// buildSimpleNameIndex maps each simple class name to the single
// catalog class carrying it. A name carried by two or more catalog
// classes identifies none of them and is dropped from the index.
func buildSimpleNameIndex(cat *catalog.Catalog) (map[string]string, error) {
	index := make(map[string]string, cat.Len())
	ambiguous := make(map[string]bool)
	for _, api := range cat.Entries() {
		simple, err := descriptor.SimpleName(api.Class)
		if err != nil {
			return nil, err
		}
		if _, taken := index[simple]; taken {
			ambiguous[simple] = true
			continue
		}
		index[simple] = api.Class
	}
	for simple := range ambiguous {
		delete(index, simple)
	}
	return index, nil
}
