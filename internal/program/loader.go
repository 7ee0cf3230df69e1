package program

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dexopt/apiremap/internal/descriptor"
)

// Program dumps are YAML documents listing classes with their members:
//
//	classes:
//	  - name: Landroidx/core/app/ComponentActivity;
//	    access: [public]
//	    super: Ljava/lang/Object;
//	    interfaces: [Landroidx/core/view/KeyEventDispatcher;]
//	    methods:
//	      - name: onCreate
//	        descriptor: (Landroid/os/Bundle;)V
//	        access: [public]
//	    fields:
//	      - name: TAG
//	        type: Ljava/lang/String;
//	        access: [private, static, final]
//
// Methods land in the direct or virtual bucket by the dex rule: statics,
// privates and constructors are direct, everything else is virtual.
// Fields split on the static flag.

type document struct {
	Classes []classDoc `yaml:"classes"`
}

type classDoc struct {
	Name         string      `yaml:"name"`
	Deobfuscated string      `yaml:"deobfuscated"`
	Access       []string    `yaml:"access"`
	Super        string      `yaml:"super"`
	Interfaces   []string    `yaml:"interfaces"`
	External     bool        `yaml:"external"`
	Methods      []methodDoc `yaml:"methods"`
	Fields       []fieldDoc  `yaml:"fields"`
}

type methodDoc struct {
	Name       string   `yaml:"name"`
	Descriptor string   `yaml:"descriptor"`
	Access     []string `yaml:"access"`
}

type fieldDoc struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Access []string `yaml:"access"`
}

var flagNames = map[string]AccessFlags{
	"public":    AccPublic,
	"private":   AccPrivate,
	"protected": AccProtected,
	"static":    AccStatic,
	"final":     AccFinal,
	"interface": AccInterface,
	"abstract":  AccAbstract,
	"synthetic": AccSynthetic,
	"enum":      AccEnum,
}

// Load reads and parses a program dump file.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program dump %s: %w", path, err)
	}
	prog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("program dump %s: %w", path, err)
	}
	return prog, nil
}

// Parse parses YAML program dump data into a Program.
func Parse(data []byte) (*Program, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse program dump: %w", err)
	}

	prog := New()
	for i := range doc.Classes {
		cls, err := buildClass(&doc.Classes[i])
		if err != nil {
			return nil, err
		}
		if err := prog.Add(cls); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func buildClass(doc *classDoc) (*Class, error) {
	if !descriptor.IsClass(doc.Name) {
		return nil, fmt.Errorf("class %q: invalid class descriptor", doc.Name)
	}

	access, err := parseAccess(doc.Access)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", doc.Name, err)
	}

	cls := &Class{
		Type:         doc.Name,
		Deobfuscated: doc.Deobfuscated,
		Access:       access,
		Super:        doc.Super,
		Interfaces:   doc.Interfaces,
		External:     doc.External,
	}

	// Every class except the root itself extends something; an omitted
	// super means java.lang.Object.
	if cls.Super == "" && cls.Type != descriptor.ObjectClass {
		cls.Super = descriptor.ObjectClass
	}
	if cls.Super != "" && !descriptor.IsClass(cls.Super) {
		return nil, fmt.Errorf("class %s: invalid superclass descriptor %q", doc.Name, cls.Super)
	}
	for _, iface := range cls.Interfaces {
		if !descriptor.IsClass(iface) {
			return nil, fmt.Errorf("class %s: invalid interface descriptor %q", doc.Name, iface)
		}
	}

	for _, m := range doc.Methods {
		method, err := buildMethod(m)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", doc.Name, err)
		}
		if isDirect(method) {
			cls.DirectMethods = append(cls.DirectMethods, method)
		} else {
			cls.VirtualMethods = append(cls.VirtualMethods, method)
		}
	}

	for _, f := range doc.Fields {
		field, err := buildField(f)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", doc.Name, err)
		}
		if field.Access.IsStatic() {
			cls.StaticFields = append(cls.StaticFields, field)
		} else {
			cls.InstanceFields = append(cls.InstanceFields, field)
		}
	}

	return cls, nil
}

func buildMethod(doc methodDoc) (Method, error) {
	if doc.Name == "" {
		return Method{}, fmt.Errorf("method with empty name")
	}
	proto, err := descriptor.ParseProto(doc.Descriptor)
	if err != nil {
		return Method{}, fmt.Errorf("method %s: %w", doc.Name, err)
	}
	access, err := parseAccess(doc.Access)
	if err != nil {
		return Method{}, fmt.Errorf("method %s: %w", doc.Name, err)
	}
	return Method{Name: doc.Name, Proto: proto, Access: access}, nil
}

func buildField(doc fieldDoc) (Field, error) {
	if doc.Name == "" {
		return Field{}, fmt.Errorf("field with empty name")
	}
	if !descriptor.IsType(doc.Type) || doc.Type == "V" {
		return Field{}, fmt.Errorf("field %s: invalid type %q", doc.Name, doc.Type)
	}
	access, err := parseAccess(doc.Access)
	if err != nil {
		return Field{}, fmt.Errorf("field %s: %w", doc.Name, err)
	}
	return Field{Name: doc.Name, Type: doc.Type, Access: access}, nil
}

func parseAccess(names []string) (AccessFlags, error) {
	var flags AccessFlags
	for _, name := range names {
		flag, ok := flagNames[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("unknown access flag %q", name)
		}
		flags |= flag
	}
	return flags, nil
}

func isDirect(m Method) bool {
	return m.Access.IsStatic() || m.Access.IsPrivate() || strings.HasPrefix(m.Name, "<")
}
