// Package catalog loads the framework API descriptions that mapped
// classes are validated against.
//
// A catalog file is a whitespace separated token stream. Each record
// opens with a class descriptor and its method and field counts,
// followed by one tagged member reference per line:
//
//	Landroid/app/Activity; 2 1
//	M Landroid/app/Activity;.onCreate:(Landroid/os/Bundle;)V
//	M Landroid/app/Activity;.finish:()V
//	F Landroid/app/Activity;.mResumed:Z
//
// Token boundaries are the only structure; line breaks and indentation
// carry no meaning.
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dexopt/apiremap/internal/descriptor"
)

// API is the catalog entry for a single framework class: the class
// descriptor plus the member references the framework exposes on it.
type API struct {
	Class   string
	methods map[string]descriptor.MethodRef
	fields  map[string]descriptor.FieldRef
}

func newAPI(class string) *API {
	return &API{
		Class:   class,
		methods: make(map[string]descriptor.MethodRef),
		fields:  make(map[string]descriptor.FieldRef),
	}
}

func methodKey(name, proto string) string { return name + ":" + proto }

// HasMethod reports whether the framework class declares a method with
// the given name and descriptor.
func (a *API) HasMethod(name string, proto descriptor.Proto) bool {
	_, ok := a.methods[methodKey(name, proto.String())]
	return ok
}

// HasField reports whether the framework class declares a field with
// the given name and type.
func (a *API) HasField(name, typ string) bool {
	_, ok := a.fields[methodKey(name, typ)]
	return ok
}

// NumMethods returns the number of distinct method references.
func (a *API) NumMethods() int { return len(a.methods) }

// NumFields returns the number of distinct field references.
func (a *API) NumFields() int { return len(a.fields) }

// Clone returns an independent copy. Mappings hold their own copy of
// the entry they were seeded from, so later catalog reloads cannot
// mutate an established mapping.
func (a *API) Clone() *API {
	cp := newAPI(a.Class)
	for k, v := range a.methods {
		cp.methods[k] = v
	}
	for k, v := range a.fields {
		cp.fields[k] = v
	}
	return cp
}

func (a *API) addMethod(ref descriptor.MethodRef) {
	a.methods[methodKey(ref.Name, ref.Proto.String())] = ref
}

func (a *API) addField(ref descriptor.FieldRef) {
	a.fields[methodKey(ref.Name, ref.Type)] = ref
}

// Catalog indexes framework API entries by class descriptor.
type Catalog struct {
	entries map[string]*API
	order   []string
}

// Get returns the entry for the given class descriptor, or nil when
// the catalog has none.
func (c *Catalog) Get(class string) *API {
	return c.entries[class]
}

// Entries returns all entries in file order.
func (c *Catalog) Entries() []*API {
	out := make([]*API, 0, len(c.order))
	for _, class := range c.order {
		out = append(out, c.entries[class])
	}
	return out
}

// Len returns the number of classes in the catalog.
func (c *Catalog) Len() int { return len(c.entries) }

// Load reads and parses the catalog file at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file %s: %w", path, err)
	}
	defer f.Close()

	cat, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing catalog file %s: %w", path, err)
	}
	return cat, nil
}

// Parse reads a catalog from the token stream r. Any malformed record
// aborts the parse: a truncated file, an unknown member tag, or a class
// appearing twice all indicate a broken catalog rather than a condition
// worth recovering from.
func Parse(r io.Reader) (*Catalog, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	cat := &Catalog{entries: make(map[string]*API)}
	for {
		class, ok := nextToken(sc)
		if !ok {
			// clean end of stream between records
			break
		}
		if !descriptor.IsClass(class) {
			return nil, fmt.Errorf("invalid class descriptor %q", class)
		}
		if _, dup := cat.entries[class]; dup {
			return nil, fmt.Errorf("duplicate class %s", class)
		}

		numMethods, err := nextCount(sc, class, "method count")
		if err != nil {
			return nil, err
		}
		numFields, err := nextCount(sc, class, "field count")
		if err != nil {
			return nil, err
		}

		api := newAPI(class)
		for i := uint64(0); i < numMethods; i++ {
			raw, err := nextMember(sc, class, "M")
			if err != nil {
				return nil, err
			}
			ref, err := descriptor.ParseMethodRef(raw)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", class, err)
			}
			api.addMethod(ref)
		}
		for i := uint64(0); i < numFields; i++ {
			raw, err := nextMember(sc, class, "F")
			if err != nil {
				return nil, err
			}
			ref, err := descriptor.ParseFieldRef(raw)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", class, err)
			}
			api.addField(ref)
		}

		cat.entries[class] = api
		cat.order = append(cat.order, class)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return cat, nil
}

func nextToken(sc *bufio.Scanner) (string, bool) {
	if !sc.Scan() {
		return "", false
	}
	return sc.Text(), true
}

func nextCount(sc *bufio.Scanner, class, what string) (uint64, error) {
	tok, ok := nextToken(sc)
	if !ok {
		return 0, fmt.Errorf("class %s: unexpected end of catalog reading %s", class, what)
	}
	n, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("class %s: invalid %s %q", class, what, tok)
	}
	return n, nil
}

func nextMember(sc *bufio.Scanner, class, wantTag string) (string, error) {
	tag, ok := nextToken(sc)
	if !ok {
		return "", fmt.Errorf("class %s: unexpected end of catalog reading member tag", class)
	}
	if tag != wantTag {
		return "", fmt.Errorf("class %s: unexpected member tag %q, want %q", class, tag, wantTag)
	}
	ref, ok := nextToken(sc)
	if !ok {
		return "", fmt.Errorf("class %s: unexpected end of catalog reading member reference", class)
	}
	return ref, nil
}
