// Package descriptor handles JVM/dex type descriptors and the canonical
// string forms of method and field references.
//
// A class type is written `Lpath/to/Name;`, primitives are single letters
// (V Z B S C I J F D), and arrays prefix their element type with `[`.
// Method references use the canonical dex form `Lcls;.name:(args)ret`,
// field references `Lcls;.name:type`. The package knows nothing about the
// program being analyzed; it only deals in these strings.
package descriptor

import (
	"fmt"
	"strings"
)

// ObjectClass is the universal root of every class hierarchy.
const ObjectClass = "Ljava/lang/Object;"

// SimpleName returns the unqualified class name of the given descriptor:
// the substring between the last path separator and the trailing
// terminator, e.g. `Landroidx/core/app/ComponentActivity;` yields
// `ComponentActivity`. The name may be a deobfuscated display name as long
// as it keeps the descriptor shape.
//
// A name without a separator has no derivable simple name; that is a
// data-integrity violation, not an expected input, so it is an error.
func SimpleName(name string) (string, error) {
	idx := strings.LastIndexByte(name, '/')
	if idx < 0 {
		return "", fmt.Errorf("class name %q has no path separator", name)
	}
	if idx+1 >= len(name)-1 {
		return "", fmt.Errorf("class name %q is malformed", name)
	}
	return name[idx+1 : len(name)-1], nil
}

// PackageSegments returns the package path of a class name split into
// its segments, e.g. `Landroidx/core/app/ComponentActivity;` yields
// ["androidx" "core" "app"]. A name without a package yields nil.
func PackageSegments(name string) []string {
	trimmed := strings.TrimPrefix(name, "L")
	trimmed = strings.TrimSuffix(trimmed, ";")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 {
		return nil
	}
	return strings.Split(trimmed[:idx], "/")
}

// IsClass reports whether desc is a (non-array) class type descriptor.
func IsClass(desc string) bool {
	return len(desc) >= 3 && desc[0] == 'L' && desc[len(desc)-1] == ';'
}

// IsType reports whether desc is exactly one well-formed type descriptor.
func IsType(desc string) bool {
	_, next, err := scanType(desc, 0)
	return err == nil && next == len(desc)
}

// Proto is a method signature: the parameter descriptors and the return
// descriptor, without the method name.
type Proto struct {
	Params []string
	Return string
}

// ParseProto parses a method signature of the form `(args)ret`.
func ParseProto(s string) (Proto, error) {
	if len(s) == 0 || s[0] != '(' {
		return Proto{}, fmt.Errorf("proto %q does not start with '('", s)
	}

	var params []string
	pos := 1
	for pos < len(s) && s[pos] != ')' {
		typ, next, err := scanType(s, pos)
		if err != nil {
			return Proto{}, fmt.Errorf("proto %q: %w", s, err)
		}
		if typ == "V" {
			return Proto{}, fmt.Errorf("proto %q has void parameter", s)
		}
		params = append(params, typ)
		pos = next
	}
	if pos >= len(s) {
		return Proto{}, fmt.Errorf("proto %q has no closing ')'", s)
	}

	ret, next, err := scanType(s, pos+1)
	if err != nil {
		return Proto{}, fmt.Errorf("proto %q: %w", s, err)
	}
	if next != len(s) {
		return Proto{}, fmt.Errorf("proto %q has trailing characters", s)
	}

	return Proto{Params: params, Return: ret}, nil
}

// String reproduces the canonical `(args)ret` form.
func (p Proto) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, param := range p.Params {
		sb.WriteString(param)
	}
	sb.WriteByte(')')
	sb.WriteString(p.Return)
	return sb.String()
}

// Substitute returns a copy of the proto with every parameter and return
// descriptor that appears as a key in mapping replaced by its value.
// Replacement is by whole descriptor; an array type is only replaced when
// the full array descriptor is itself mapped.
func (p Proto) Substitute(mapping map[string]string) Proto {
	out := Proto{
		Params: make([]string, len(p.Params)),
		Return: SubstituteType(p.Return, mapping),
	}
	for i, param := range p.Params {
		out.Params[i] = SubstituteType(param, mapping)
	}
	return out
}

// SubstituteType returns the mapped descriptor when desc is a key of
// mapping, otherwise desc unchanged.
func SubstituteType(desc string, mapping map[string]string) string {
	if mapped, ok := mapping[desc]; ok {
		return mapped
	}
	return desc
}

// MethodRef is a parsed canonical method reference.
type MethodRef struct {
	Class string
	Name  string
	Proto Proto
}

// FieldRef is a parsed canonical field reference.
type FieldRef struct {
	Class string
	Name  string
	Type  string
}

// ParseMethodRef parses `Lcls;.name:(args)ret`.
func ParseMethodRef(s string) (MethodRef, error) {
	class, name, rest, err := splitRef(s)
	if err != nil {
		return MethodRef{}, fmt.Errorf("method ref %q: %w", s, err)
	}
	proto, err := ParseProto(rest)
	if err != nil {
		return MethodRef{}, fmt.Errorf("method ref %q: %w", s, err)
	}
	return MethodRef{Class: class, Name: name, Proto: proto}, nil
}

// ParseFieldRef parses `Lcls;.name:type`.
func ParseFieldRef(s string) (FieldRef, error) {
	class, name, rest, err := splitRef(s)
	if err != nil {
		return FieldRef{}, fmt.Errorf("field ref %q: %w", s, err)
	}
	typ, next, err := scanType(rest, 0)
	if err != nil || next != len(rest) {
		return FieldRef{}, fmt.Errorf("field ref %q has malformed type", s)
	}
	return FieldRef{Class: class, Name: name, Type: typ}, nil
}

// splitRef breaks `Lcls;.member:signature` into its three parts.
func splitRef(s string) (class, name, signature string, err error) {
	class, pos, err := scanType(s, 0)
	if err != nil {
		return "", "", "", err
	}
	if !IsClass(class) {
		return "", "", "", fmt.Errorf("reference holder %q is not a class", class)
	}
	if pos >= len(s) || s[pos] != '.' {
		return "", "", "", fmt.Errorf("missing '.' member separator")
	}

	sep := strings.IndexByte(s[pos+1:], ':')
	if sep < 0 {
		return "", "", "", fmt.Errorf("missing ':' signature separator")
	}
	name = s[pos+1 : pos+1+sep]
	if name == "" {
		return "", "", "", fmt.Errorf("empty member name")
	}
	return class, name, s[pos+2+sep:], nil
}

// scanType consumes one type descriptor starting at pos and returns it
// together with the position of the following character.
func scanType(s string, pos int) (string, int, error) {
	start := pos
	for pos < len(s) && s[pos] == '[' {
		pos++
	}
	if pos >= len(s) {
		return "", 0, fmt.Errorf("truncated descriptor at offset %d", start)
	}

	switch s[pos] {
	case 'V', 'Z', 'B', 'S', 'C', 'I', 'J', 'F', 'D':
		return s[start : pos+1], pos + 1, nil
	case 'L':
		end := strings.IndexByte(s[pos:], ';')
		if end < 0 {
			return "", 0, fmt.Errorf("class descriptor at offset %d has no ';'", start)
		}
		return s[start : pos+end+1], pos + end + 1, nil
	default:
		return "", 0, fmt.Errorf("unknown descriptor character %q at offset %d", s[pos], pos)
	}
}
