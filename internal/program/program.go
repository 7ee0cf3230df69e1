// Package program holds the in-memory model of the analyzed program: its
// classes with their members and access flags, plus the type-hierarchy
// queries the compatibility checks depend on.
package program

import (
	"fmt"

	"github.com/dexopt/apiremap/internal/descriptor"
)

// AccessFlags is the JVM/dex access flag bitset of a class or member.
type AccessFlags uint32

const (
	AccPublic    AccessFlags = 0x0001
	AccPrivate   AccessFlags = 0x0002
	AccProtected AccessFlags = 0x0004
	AccStatic    AccessFlags = 0x0008
	AccFinal     AccessFlags = 0x0010
	AccInterface AccessFlags = 0x0200
	AccAbstract  AccessFlags = 0x0400
	AccSynthetic AccessFlags = 0x1000
	AccEnum      AccessFlags = 0x4000
)

func (f AccessFlags) IsPublic() bool    { return f&AccPublic != 0 }
func (f AccessFlags) IsPrivate() bool   { return f&AccPrivate != 0 }
func (f AccessFlags) IsStatic() bool    { return f&AccStatic != 0 }
func (f AccessFlags) IsInterface() bool { return f&AccInterface != 0 }

// Method is one declared method of a class.
type Method struct {
	Name   string
	Proto  descriptor.Proto
	Access AccessFlags
}

// Field is one declared field of a class.
type Field struct {
	Name   string
	Type   string
	Access AccessFlags
}

// Class describes one loaded class. Direct methods are the statics,
// privates and constructors; virtual methods are everything else, the
// usual dex split. External classes are referenced but not defined by the
// program (framework classes, boot classpath).
type Class struct {
	Type         string
	Deobfuscated string
	Access       AccessFlags
	Super        string
	Interfaces   []string
	External     bool

	DirectMethods  []Method
	VirtualMethods []Method
	StaticFields   []Field
	InstanceFields []Field
}

func (c *Class) IsInterface() bool { return c.Access.IsInterface() }

// HumanName returns the most human-readable known name of the class: the
// deobfuscated name when one is recorded, otherwise the raw descriptor.
func (c *Class) HumanName() string {
	if c.Deobfuscated != "" {
		return c.Deobfuscated
	}
	return c.Type
}

// Program is the class table of one analyzed program. Iteration order is
// insertion order so that passes over the program are deterministic.
type Program struct {
	classes map[string]*Class
	order   []string
}

func New() *Program {
	return &Program{
		classes: make(map[string]*Class),
	}
}

// Add registers a class. Registering the same type descriptor twice is an
// error; the program model never silently merges class definitions.
func (p *Program) Add(cls *Class) error {
	if !descriptor.IsClass(cls.Type) {
		return fmt.Errorf("invalid class descriptor %q", cls.Type)
	}
	if _, exists := p.classes[cls.Type]; exists {
		return fmt.Errorf("duplicate class %s", cls.Type)
	}
	p.classes[cls.Type] = cls
	p.order = append(p.order, cls.Type)
	return nil
}

// Class resolves a type descriptor to its loaded class, or nil when the
// type has no definition in the program.
func (p *Program) Class(desc string) *Class {
	return p.classes[desc]
}

// Classes returns all loaded classes in insertion order.
func (p *Program) Classes() []*Class {
	out := make([]*Class, 0, len(p.order))
	for _, desc := range p.order {
		out = append(out, p.classes[desc])
	}
	return out
}

// Len returns the number of loaded classes.
func (p *Program) Len() int {
	return len(p.classes)
}
