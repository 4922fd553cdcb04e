// Package surface models the exported declaration surface of one module
// version: a path-keyed tree of normalized declarations produced by a parser
// frontend and consumed read-only by the differ.
package surface

// Position is a point in source text. Line is 1-based, Column is 0-based.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Range is a half-open span of source text: [Start, End).
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// NodeKind identifies what sort of declaration a node is
type NodeKind string

const (
	KindFunction           NodeKind = "function"
	KindClass              NodeKind = "class"
	KindInterface          NodeKind = "interface"
	KindTypeAlias          NodeKind = "type-alias"
	KindEnum               NodeKind = "enum"
	KindNamespace          NodeKind = "namespace"
	KindVariable           NodeKind = "variable"
	KindProperty           NodeKind = "property"
	KindMethod             NodeKind = "method"
	KindParameter          NodeKind = "parameter"
	KindTypeParameter      NodeKind = "type-parameter"
	KindEnumMember         NodeKind = "enum-member"
	KindCallSignature      NodeKind = "call-signature"
	KindConstructSignature NodeKind = "construct-signature"
	KindIndexSignature     NodeKind = "index-signature"
	KindGetter             NodeKind = "getter"
	KindSetter             NodeKind = "setter"
)

// Modifier is a declaration modifier keyword
type Modifier string

const (
	ModExported      Modifier = "exported"
	ModDefaultExport Modifier = "default-export"
	ModReadonly      Modifier = "readonly"
	ModOptional      Modifier = "optional"
	ModAbstract      Modifier = "abstract"
	ModStatic        Modifier = "static"
	ModPrivate       Modifier = "private"
	ModProtected     Modifier = "protected"
	ModPublic        Modifier = "public"
	ModConst         Modifier = "const"
	ModDeclare       Modifier = "declare"
	ModAsync         Modifier = "async"
)

// ModifierSet is the set of modifiers present on a declaration
type ModifierSet map[Modifier]bool

// Has reports whether the modifier is present
func (m ModifierSet) Has(mod Modifier) bool {
	return m[mod]
}

// Parameter is one parameter of a callable signature
type Parameter struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Optional     bool   `json:"optional,omitempty"`
	Rest         bool   `json:"rest,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty"`
}

// Property is one named member of an object/interface type
type Property struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
	Readonly bool   `json:"readonly,omitempty"`
}

// CallableSignature is one call or construct signature
type CallableSignature struct {
	Parameters []Parameter `json:"parameters"`
	ReturnType string      `json:"returnType,omitempty"`
}

// TypeInfo is the structured breakdown of a declaration's type, alongside the
// normalized signature text it was derived from
type TypeInfo struct {
	Raw                 string              `json:"raw"`
	Parameters          []Parameter         `json:"parameters,omitempty"`
	ReturnType          string              `json:"returnType,omitempty"`
	Properties          []Property          `json:"properties,omitempty"`
	CallSignatures      []CallableSignature `json:"callSignatures,omitempty"`
	ConstructSignatures []CallableSignature `json:"constructSignatures,omitempty"`
	UnionMembers        []string            `json:"unionMembers,omitempty"`
	IntersectionMembers []string            `json:"intersectionMembers,omitempty"`
}

// Metadata carries documentation-derived facts about a declaration
type Metadata struct {
	Deprecated         bool   `json:"deprecated,omitempty"`
	DeprecationMessage string `json:"deprecationMessage,omitempty"`
	DefaultValue       string `json:"defaultValue,omitempty"`
	DocText            string `json:"docText,omitempty"`
}

// Node is one declaration or member. Nodes are built once by a parser
// frontend and never mutated afterward.
//
// Path is the dot-delimited identifier joining a declaration across versions;
// it is unique within a Module and stable unless the name itself changes.
// Parent is the owning node's path, never a pointer, so two independently
// parsed trees never alias each other.
type Node struct {
	Path       string           `json:"path"`
	Name       string           `json:"name"`
	Kind       NodeKind         `json:"kind"`
	Location   *Range           `json:"location,omitempty"`
	Parent     string           `json:"parent,omitempty"`
	TypeInfo   *TypeInfo        `json:"typeInfo,omitempty"`
	Modifiers  ModifierSet      `json:"modifiers,omitempty"`
	Metadata   *Metadata        `json:"metadata,omitempty"`
	Children   map[string]*Node `json:"children,omitempty"`
	Extends    []string         `json:"extends,omitempty"`
	Implements []string         `json:"implements,omitempty"`
}

// IsExported reports whether the node is part of the public surface
func (n *Node) IsExported() bool {
	return n.Modifiers.Has(ModExported) || n.Modifiers.Has(ModDefaultExport)
}

// IsCallable reports whether the node's type carries parameters/signatures
// the differ should compare position by position
func (n *Node) IsCallable() bool {
	switch n.Kind {
	case KindFunction, KindMethod, KindCallSignature, KindConstructSignature, KindGetter, KindSetter:
		return true
	}
	return false
}

// Module is the analysis of one module version: every reachable declaration
// keyed by path, the exported subset, and any parse anomalies.
type Module struct {
	Filename string           `json:"filename"`
	Source   string           `json:"source,omitempty"`
	Nodes    map[string]*Node `json:"nodes"`
	Exports  map[string]*Node `json:"exports"`
	Errors   []string         `json:"errors,omitempty"`
}

// NewModule creates an empty module analysis for a file
func NewModule(filename string) *Module {
	return &Module{
		Filename: filename,
		Nodes:    make(map[string]*Node),
		Exports:  make(map[string]*Node),
	}
}

// Add registers a node under its path, and under Exports when it is part of
// the public surface. A duplicate path is recorded as an error, keeping the
// first occurrence.
func (m *Module) Add(node *Node) {
	if node == nil || node.Path == "" {
		return
	}
	if _, exists := m.Nodes[node.Path]; exists {
		m.Errors = append(m.Errors, "duplicate declaration path: "+node.Path)
		return
	}
	m.Nodes[node.Path] = node
	if node.IsExported() {
		m.Exports[node.Path] = node
	}
}

// AddError records a parse anomaly. Parsing never fails hard; the differ
// works with whatever nodes exist.
func (m *Module) AddError(msg string) {
	m.Errors = append(m.Errors, msg)
}

// Parser produces a module analysis from raw declaration source. Parse never
// returns an error: failures populate Module.Errors.
type Parser interface {
	Parse(source, filename string) *Module
}
