package program

// Hierarchy answers type-hierarchy queries over a program: which
// interfaces a class implements directly, and the transitive
// super-interface closure of an interface.
type Hierarchy struct {
	prog *Program
}

func NewHierarchy(p *Program) *Hierarchy {
	return &Hierarchy{prog: p}
}

// ImplementedInterfaces returns the interfaces the class declares
// directly. Unknown types have none.
func (h *Hierarchy) ImplementedInterfaces(desc string) []string {
	cls := h.prog.Class(desc)
	if cls == nil {
		return nil
	}
	return cls.Interfaces
}

// SuperInterfaces returns the transitive closure of super-interfaces of
// the given interface, not including the interface itself. Interfaces
// without a definition in the program still appear in the closure; they
// just contribute no further expansion. The walk keeps a visited set, so
// it terminates even on a malformed cyclic declaration.
func (h *Hierarchy) SuperInterfaces(desc string) []string {
	var closure []string
	visited := map[string]bool{desc: true}
	queue := []string{desc}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		cls := h.prog.Class(current)
		if cls == nil {
			continue
		}
		for _, iface := range cls.Interfaces {
			if visited[iface] {
				continue
			}
			visited[iface] = true
			closure = append(closure, iface)
			queue = append(queue, iface)
		}
	}

	return closure
}
