// Package checks holds the per-class compatibility judgments the
// validation loop applies to a candidate mapping. Both checks are pure:
// they read the class, the framework entry and the round's frozen
// release to framework view, and report pass or fail without touching
// any of them.
package checks

import (
	"github.com/dexopt/apiremap/internal/catalog"
	"github.com/dexopt/apiremap/internal/descriptor"
	"github.com/dexopt/apiremap/internal/program"
)

// Members reports whether every public member of the release class has
// a counterpart on the framework class. Method signatures and field
// types are compared as they would read after retargeting, with every
// mapped release type substituted through the view. Non-public members
// are not checked.
func Members(cls *program.Class, api *catalog.API, view map[string]string) bool {
	if !methodsPresent(cls.DirectMethods, api, view) {
		return false
	}
	if !methodsPresent(cls.VirtualMethods, api, view) {
		return false
	}
	if !fieldsPresent(cls.StaticFields, api, view) {
		return false
	}
	return fieldsPresent(cls.InstanceFields, api, view)
}

func methodsPresent(methods []program.Method, api *catalog.API, view map[string]string) bool {
	for _, m := range methods {
		if !m.Access.IsPublic() {
			continue
		}
		if !api.HasMethod(m.Name, m.Proto.Substitute(view)) {
			return false
		}
	}
	return true
}

func fieldsPresent(fields []program.Field, api *catalog.API, view map[string]string) bool {
	for _, f := range fields {
		if !f.Access.IsPublic() {
			continue
		}
		if !api.HasField(f.Name, descriptor.SubstituteType(f.Type, view)) {
			return false
		}
	}
	return true
}
