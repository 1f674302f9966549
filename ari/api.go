package ari

import (
	"sort"
	"strconv"
	"strings"
)

// API is the parsed description of an ARI deployment: its resource
// collections with their declared operations, and its data models.
type API struct {
	Version   string
	Resources map[string]*Resource
	Models    map[string]*Model
}

// Resource is one named collection of operations, e.g. "channels".
type Resource struct {
	Name       string
	Operations map[string]*Operation
}

// Operation describes a single declared operation of a resource.
type Operation struct {
	Nickname string
	Method   string
	Path     string
	Params   []Param

	// Responses maps an HTTP status code (or "default") to the declared
	// shape of the response body for that status. Swagger 1.1 declares a
	// single responseClass per operation, stored under "200".
	Responses map[string]Shape
}

// responseShape resolves the declared shape for the status actually
// received, falling back to the generic "200" shape, then to "default".
func (op *Operation) responseShape(status int) Shape {
	if s, ok := op.Responses[strconv.Itoa(status)]; ok {
		return s
	}
	if s, ok := op.Responses["200"]; ok {
		return s
	}
	return op.Responses["default"]
}

const (
	paramPath  = "path"
	paramQuery = "query"
	paramBody  = "body"
)

// Param is one declared operation parameter.
type Param struct {
	Name     string
	Location string // paramPath, paramQuery or paramBody
	DataType string
	Required bool
}

type ShapeKind uint

const (
	// ShapeNone marks operations with no declared body ("void").
	ShapeNone ShapeKind = iota
	// ShapePrimitive marks free-form or scalar payloads, returned unmodified.
	ShapePrimitive
	// ShapeRef marks a single reference to a named model.
	ShapeRef
	// ShapeList marks an array of references to a named model.
	ShapeList
)

// Shape is the declared structure of a response body or event field, used to
// select the promotion path.
type Shape struct {
	Kind ShapeKind
	// Name is the referenced model id for ShapeRef and ShapeList, or the
	// raw type name for ShapePrimitive.
	Name string
}

var primitiveTypes = map[string]bool{
	"string": true, "int": true, "long": true, "double": true,
	"boolean": true, "date": true, "byte": true, "binary": true,
	"object": true, "containers": true,
}

// ParseShape parses a Swagger 1.1 responseClass such as "void", "string",
// "Channel" or "List[Channel]".
func ParseShape(class string) Shape {
	class = strings.TrimSpace(class)
	if class == "" || class == "void" {
		return Shape{}
	}
	if strings.HasPrefix(class, "List[") && strings.HasSuffix(class, "]") {
		inner := class[len("List[") : len(class)-1]
		if primitiveTypes[inner] {
			return Shape{Kind: ShapePrimitive, Name: class}
		}
		return Shape{Kind: ShapeList, Name: inner}
	}
	if primitiveTypes[class] {
		return Shape{Kind: ShapePrimitive, Name: class}
	}
	return Shape{Kind: ShapeRef, Name: class}
}

// Model is one named data model, event models included.
type Model struct {
	ID         string
	Properties map[string]Property
}

// Property is the declared type of one model field. A field references a
// model either by naming it directly in Type or through an explicit Ref.
type Property struct {
	Type string
	Ref  string
}

// references reports whether the property's declared type is the named
// model, matching either the direct type name or the terminal name of a
// schema reference.
func (p Property) references(model string) bool {
	if p.Type == model {
		return true
	}
	return p.Ref != "" && (p.Ref == model || strings.HasSuffix(p.Ref, "/"+model))
}

// eventModelIndex maps event-type name to the declared field names carrying
// each domain-object kind. Built once at client construction, read-only
// thereafter.
type eventModelIndex map[string]map[string][]string

func newEventModelIndex(api *API, kinds []string) eventModelIndex {
	idx := make(eventModelIndex, len(api.Models))
	for name, model := range api.Models {
		byKind := make(map[string][]string)
		for _, kind := range kinds {
			var fields []string
			for field, prop := range model.Properties {
				if prop.references(kind) {
					fields = append(fields, field)
				}
			}
			if len(fields) > 0 {
				sort.Strings(fields)
				byKind[kind] = fields
			}
		}
		idx[name] = byKind
	}
	return idx
}

func (idx eventModelIndex) knows(eventType string) bool {
	_, ok := idx[eventType]
	return ok
}

func (idx eventModelIndex) fields(eventType, kind string) []string {
	return idx[eventType][kind]
}
