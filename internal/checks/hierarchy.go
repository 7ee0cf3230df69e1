package checks

import (
	"github.com/dexopt/apiremap/internal/descriptor"
	"github.com/dexopt/apiremap/internal/program"
)

// Hierarchy reports whether the release class can be retargeted without
// orphaning its ancestry. For a class, every directly implemented
// interface must itself be mapped and the superclass must be
// Ljava/lang/Object; or mapped. For an interface, the rule applies to
// the transitive super-interface closure instead. Subclasses are not
// examined; they follow the retargeted parent.
func Hierarchy(cls *program.Class, prog *program.Program, hier *program.Hierarchy, view map[string]string) bool {
	if !cls.IsInterface() {
		if !allPresent(hier.ImplementedInterfaces(cls.Type), prog, view) {
			return false
		}
		if cls.Super != descriptor.ObjectClass {
			if _, ok := view[cls.Super]; !ok {
				return false
			}
		}
		return true
	}

	return allPresent(hier.SuperInterfaces(cls.Type), prog, view)
}

// allPresent requires each type to be in the view, except types the
// program does not define or defines as external: those are outside
// the rewrite's reach and do not block the pair.
func allPresent(types []string, prog *program.Program, view map[string]string) bool {
	for _, typ := range types {
		cls := prog.Class(typ)
		if cls == nil || cls.External {
			continue
		}
		if _, ok := view[typ]; !ok {
			return false
		}
	}
	return true
}
