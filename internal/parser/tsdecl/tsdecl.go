//go:build cgo

// Package tsdecl parses TypeScript declaration source (.d.ts) into a
// normalized declaration surface using tree-sitter.
package tsdecl

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"apidelta/internal/surface"
)

// Parser extracts declaration surfaces from TypeScript source.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a TypeScript declaration parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(typescript.GetLanguage())
	return &Parser{parser: p}
}

// IsAvailable returns whether tree-sitter parsing is available.
func IsAvailable() bool {
	return true
}

// Parse analyzes source text. Parse never fails hard: syntax problems are
// recorded on the module and whatever declarations exist are extracted.
func (p *Parser) Parse(source, filename string) *surface.Module {
	mod := surface.NewModule(filename)

	tree, err := p.parser.ParseCtx(context.Background(), nil, []byte(source))
	if err != nil {
		mod.AddError("parse failed: " + err.Error())
		return mod
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		mod.AddError("source contains syntax errors; extracting what parses")
	}

	w := &walker{src: []byte(source), mod: mod}
	w.statements(root, "", nil)
	return mod
}

// walker carries parse state through one recursive extraction pass
type walker struct {
	src []byte
	mod *surface.Module
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(w.src[n.StartByte():n.EndByte()])
}

func locationOf(n *sitter.Node) *surface.Range {
	return &surface.Range{
		Start: surface.Position{
			Line:   int(n.StartPoint().Row) + 1,
			Column: int(n.StartPoint().Column),
			Offset: int(n.StartByte()),
		},
		End: surface.Position{
			Line:   int(n.EndPoint().Row) + 1,
			Column: int(n.EndPoint().Column),
			Offset: int(n.EndByte()),
		},
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// statements walks one statement container (program or namespace body),
// dispatching each declaration statement. Doc comments attach to the first
// declaration that follows them.
func (w *walker) statements(container *sitter.Node, parentPath string, inherited []surface.Modifier) {
	var doc *sitter.Node
	for i := 0; i < int(container.NamedChildCount()); i++ {
		stmt := container.NamedChild(i)
		if stmt.Type() == "comment" {
			if strings.HasPrefix(w.text(stmt), "/**") {
				doc = stmt
			} else {
				doc = nil
			}
			continue
		}
		w.statement(stmt, parentPath, inherited, doc)
		doc = nil
	}
}

func (w *walker) statement(stmt *sitter.Node, parentPath string, mods []surface.Modifier, doc *sitter.Node) {
	switch stmt.Type() {
	case "export_statement":
		w.exportStatement(stmt, parentPath, mods, doc)
	case "ambient_declaration":
		for i := 0; i < int(stmt.NamedChildCount()); i++ {
			w.statement(stmt.NamedChild(i), parentPath, append(mods, surface.ModDeclare), doc)
		}
	case "function_declaration", "function_signature":
		w.function(stmt, parentPath, mods, doc)
	case "class_declaration", "abstract_class_declaration":
		w.class(stmt, parentPath, mods, doc)
	case "interface_declaration":
		w.iface(stmt, parentPath, mods, doc)
	case "type_alias_declaration":
		w.typeAlias(stmt, parentPath, mods, doc)
	case "enum_declaration":
		w.enum(stmt, parentPath, mods, doc)
	case "internal_module", "module":
		w.namespace(stmt, parentPath, mods, doc)
	case "lexical_declaration", "variable_declaration":
		w.variables(stmt, parentPath, mods, doc)
	}
}

// exportStatement unwraps `export ...` and `export default ...`, or marks
// already-declared nodes exported for `export { a, b }` clauses
func (w *walker) exportStatement(stmt *sitter.Node, parentPath string, mods []surface.Modifier, doc *sitter.Node) {
	mods = append(mods, surface.ModExported)
	for i := 0; i < int(stmt.ChildCount()); i++ {
		if stmt.Child(i).Type() == "default" {
			mods = append(mods, surface.ModDefaultExport)
		}
	}

	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		w.statement(decl, parentPath, mods, doc)
		return
	}

	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		child := stmt.NamedChild(i)
		if child.Type() != "export_clause" {
			w.statement(child, parentPath, mods, doc)
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			spec := child.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			name := w.text(spec.ChildByFieldName("name"))
			if node, ok := w.mod.Nodes[joinPath(parentPath, name)]; ok {
				node.Modifiers[surface.ModExported] = true
				w.mod.Exports[node.Path] = node
			}
		}
	}
}

func (w *walker) newNode(astNode *sitter.Node, parentPath, name string, kind surface.NodeKind, mods []surface.Modifier, doc *sitter.Node) *surface.Node {
	node := &surface.Node{
		Path:      joinPath(parentPath, name),
		Name:      name,
		Kind:      kind,
		Parent:    parentPath,
		Location:  locationOf(astNode),
		Modifiers: make(surface.ModifierSet),
		Metadata:  docMetadata(w.text(doc)),
	}
	for _, m := range mods {
		node.Modifiers[m] = true
	}
	return node
}

func (w *walker) function(decl *sitter.Node, parentPath string, mods []surface.Modifier, doc *sitter.Node) {
	name := w.text(decl.ChildByFieldName("name"))
	if name == "" {
		return
	}
	node := w.newNode(decl, parentPath, name, surface.KindFunction, mods, doc)
	node.TypeInfo = w.callableType(decl)
	w.addTypeParameters(node, decl)
	w.mod.Add(node)
}

func (w *walker) class(decl *sitter.Node, parentPath string, mods []surface.Modifier, doc *sitter.Node) {
	name := w.text(decl.ChildByFieldName("name"))
	if name == "" {
		return
	}
	if decl.Type() == "abstract_class_declaration" {
		mods = append(mods, surface.ModAbstract)
	}
	node := w.newNode(decl, parentPath, name, surface.KindClass, mods, doc)
	node.Extends, node.Implements = w.heritage(decl)
	w.addTypeParameters(node, decl)
	w.members(node, decl.ChildByFieldName("body"))
	w.mod.Add(node)
}

func (w *walker) iface(decl *sitter.Node, parentPath string, mods []surface.Modifier, doc *sitter.Node) {
	name := w.text(decl.ChildByFieldName("name"))
	if name == "" {
		return
	}
	node := w.newNode(decl, parentPath, name, surface.KindInterface, mods, doc)
	node.Extends, _ = w.heritage(decl)
	w.addTypeParameters(node, decl)
	w.members(node, decl.ChildByFieldName("body"))
	w.mod.Add(node)
}

func (w *walker) typeAlias(decl *sitter.Node, parentPath string, mods []surface.Modifier, doc *sitter.Node) {
	name := w.text(decl.ChildByFieldName("name"))
	if name == "" {
		return
	}
	node := w.newNode(decl, parentPath, name, surface.KindTypeAlias, mods, doc)
	value := decl.ChildByFieldName("value")
	node.TypeInfo = &surface.TypeInfo{Raw: normalizeType(w.text(value))}
	if value != nil {
		switch value.Type() {
		case "union_type":
			node.TypeInfo.UnionMembers = w.flattenCompound(value, "union_type")
		case "intersection_type":
			node.TypeInfo.IntersectionMembers = w.flattenCompound(value, "intersection_type")
		}
	}
	w.addTypeParameters(node, decl)
	w.mod.Add(node)
}

func (w *walker) enum(decl *sitter.Node, parentPath string, mods []surface.Modifier, doc *sitter.Node) {
	name := w.text(decl.ChildByFieldName("name"))
	if name == "" {
		return
	}
	node := w.newNode(decl, parentPath, name, surface.KindEnum, mods, doc)
	node.Children = make(map[string]*surface.Node)

	body := decl.ChildByFieldName("body")
	for i := 0; body != nil && i < int(body.NamedChildCount()); i++ {
		entry := body.NamedChild(i)
		var memberName, memberValue string
		switch entry.Type() {
		case "enum_assignment":
			memberName = w.text(entry.ChildByFieldName("name"))
			memberValue = w.text(entry.ChildByFieldName("value"))
		case "property_identifier":
			memberName = w.text(entry)
		default:
			continue
		}
		member := w.newNode(entry, node.Path, memberName, surface.KindEnumMember, nil, nil)
		member.TypeInfo = &surface.TypeInfo{Raw: memberValue}
		node.Children[memberName] = member
		w.mod.Add(member)
	}
	w.mod.Add(node)
}

func (w *walker) namespace(decl *sitter.Node, parentPath string, mods []surface.Modifier, doc *sitter.Node) {
	name := strings.Trim(w.text(decl.ChildByFieldName("name")), `"'`)
	if name == "" {
		return
	}
	node := w.newNode(decl, parentPath, name, surface.KindNamespace, mods, doc)
	w.mod.Add(node)

	if body := decl.ChildByFieldName("body"); body != nil {
		w.statements(body, node.Path, nil)
	}

	// Namespace members registered by the recursive walk become children.
	node.Children = make(map[string]*surface.Node)
	for _, n := range w.mod.Nodes {
		if n.Parent == node.Path {
			node.Children[n.Name] = n
		}
	}
}

func (w *walker) variables(decl *sitter.Node, parentPath string, mods []surface.Modifier, doc *sitter.Node) {
	for i := 0; i < int(decl.ChildCount()); i++ {
		if decl.Child(i).Type() == "const" {
			mods = append(mods, surface.ModConst)
		}
	}
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		declarator := decl.NamedChild(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		name := w.text(declarator.ChildByFieldName("name"))
		if name == "" {
			continue
		}
		node := w.newNode(declarator, parentPath, name, surface.KindVariable, mods, doc)
		raw := typeAnnotationText(w, declarator.ChildByFieldName("type"))
		if raw == "" {
			raw = normalizeType(w.text(declarator.ChildByFieldName("value")))
		}
		node.TypeInfo = &surface.TypeInfo{Raw: raw}
		w.mod.Add(node)
	}
}

// members extracts class/interface body members as children of owner.
// Call and construct signatures go onto the owner's TypeInfo instead of
// becoming named children.
func (w *walker) members(owner *surface.Node, body *sitter.Node) {
	owner.Children = make(map[string]*surface.Node)
	if body == nil {
		return
	}

	var doc *sitter.Node
	indexCount := 0
	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)
		if m.Type() == "comment" {
			if strings.HasPrefix(w.text(m), "/**") {
				doc = m
			} else {
				doc = nil
			}
			continue
		}

		var member *surface.Node
		switch m.Type() {
		case "method_definition", "method_signature", "abstract_method_signature":
			member = w.method(m, owner.Path, doc)
		case "public_field_definition", "property_signature":
			member = w.property(m, owner.Path, doc)
		case "call_signature":
			w.ownerTypeInfo(owner).CallSignatures = append(
				w.ownerTypeInfo(owner).CallSignatures, w.signatureOf(m))
		case "construct_signature":
			w.ownerTypeInfo(owner).ConstructSignatures = append(
				w.ownerTypeInfo(owner).ConstructSignatures, w.signatureOf(m))
		case "index_signature":
			indexCount++
			member = w.newNode(m, owner.Path, fmt.Sprintf("[index-%d]", indexCount), surface.KindIndexSignature, nil, doc)
			member.TypeInfo = &surface.TypeInfo{Raw: normalizeType(w.text(m))}
		}
		doc = nil

		if member == nil {
			continue
		}
		owner.Children[member.Name] = member
		w.mod.Add(member)
	}
}

func (w *walker) ownerTypeInfo(owner *surface.Node) *surface.TypeInfo {
	if owner.TypeInfo == nil {
		owner.TypeInfo = &surface.TypeInfo{}
	}
	return owner.TypeInfo
}

func (w *walker) method(m *sitter.Node, parentPath string, doc *sitter.Node) *surface.Node {
	name := w.text(m.ChildByFieldName("name"))
	if name == "" {
		return nil
	}

	kind := surface.KindMethod
	mods := w.memberModifiers(m)
	for i := 0; i < int(m.ChildCount()); i++ {
		switch m.Child(i).Type() {
		case "get":
			kind = surface.KindGetter
		case "set":
			kind = surface.KindSetter
		}
	}
	if m.Type() == "abstract_method_signature" {
		mods = append(mods, surface.ModAbstract)
	}

	node := w.newNode(m, parentPath, name, kind, mods, doc)
	node.TypeInfo = w.callableType(m)
	w.addTypeParameters(node, m)
	return node
}

func (w *walker) property(m *sitter.Node, parentPath string, doc *sitter.Node) *surface.Node {
	name := w.text(m.ChildByFieldName("name"))
	if name == "" {
		return nil
	}
	node := w.newNode(m, parentPath, name, surface.KindProperty, w.memberModifiers(m), doc)
	node.TypeInfo = &surface.TypeInfo{Raw: typeAnnotationText(w, m.ChildByFieldName("type"))}
	if value := m.ChildByFieldName("value"); value != nil {
		if node.Metadata == nil {
			node.Metadata = &surface.Metadata{}
		}
		node.Metadata.DefaultValue = w.text(value)
	}
	return node
}

// memberModifiers reads modifier tokens off a class/interface member
func (w *walker) memberModifiers(m *sitter.Node) []surface.Modifier {
	var mods []surface.Modifier
	for i := 0; i < int(m.ChildCount()); i++ {
		child := m.Child(i)
		switch child.Type() {
		case "accessibility_modifier":
			switch w.text(child) {
			case "private":
				mods = append(mods, surface.ModPrivate)
			case "protected":
				mods = append(mods, surface.ModProtected)
			case "public":
				mods = append(mods, surface.ModPublic)
			}
		case "readonly":
			mods = append(mods, surface.ModReadonly)
		case "static":
			mods = append(mods, surface.ModStatic)
		case "abstract":
			mods = append(mods, surface.ModAbstract)
		case "async":
			mods = append(mods, surface.ModAsync)
		case "?":
			mods = append(mods, surface.ModOptional)
		}
	}
	return mods
}

// callableType builds the structured signature plus its normalized text
func (w *walker) callableType(decl *sitter.Node) *surface.TypeInfo {
	sig := w.signatureOf(decl)
	info := &surface.TypeInfo{
		Parameters: sig.Parameters,
		ReturnType: sig.ReturnType,
	}

	var parts []string
	for _, p := range sig.Parameters {
		text := p.Name
		if p.Rest {
			text = "..." + text
		}
		if p.Optional {
			text += "?"
		}
		if p.Type != "" {
			text += ": " + p.Type
		}
		parts = append(parts, text)
	}
	ret := sig.ReturnType
	if ret == "" {
		ret = "void"
	}
	info.Raw = "(" + strings.Join(parts, ", ") + ") => " + ret
	return info
}

func (w *walker) signatureOf(decl *sitter.Node) surface.CallableSignature {
	sig := surface.CallableSignature{
		ReturnType: typeAnnotationText(w, decl.ChildByFieldName("return_type")),
	}
	params := decl.ChildByFieldName("parameters")
	for i := 0; params != nil && i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			sig.Parameters = append(sig.Parameters, w.parameter(p))
		}
	}
	return sig
}

func (w *walker) parameter(p *sitter.Node) surface.Parameter {
	param := surface.Parameter{
		Type:         typeAnnotationText(w, p.ChildByFieldName("type")),
		DefaultValue: w.text(p.ChildByFieldName("value")),
		Optional:     p.Type() == "optional_parameter",
	}
	pattern := p.ChildByFieldName("pattern")
	if pattern != nil && pattern.Type() == "rest_pattern" {
		param.Rest = true
		param.Name = strings.TrimPrefix(w.text(pattern), "...")
	} else {
		param.Name = w.text(pattern)
	}
	if param.DefaultValue != "" {
		param.Optional = true
	}
	return param
}

// addTypeParameters registers `<T extends X = Y>` entries as children
func (w *walker) addTypeParameters(node *surface.Node, decl *sitter.Node) {
	tps := decl.ChildByFieldName("type_parameters")
	if tps == nil {
		return
	}
	if node.Children == nil {
		node.Children = make(map[string]*surface.Node)
	}
	for i := 0; i < int(tps.NamedChildCount()); i++ {
		tp := tps.NamedChild(i)
		if tp.Type() != "type_parameter" {
			continue
		}
		// The grammar does not name fields here; identify parts by node type.
		var name, constraint, defaultType string
		for j := 0; j < int(tp.NamedChildCount()); j++ {
			part := tp.NamedChild(j)
			switch part.Type() {
			case "type_identifier":
				if name == "" {
					name = w.text(part)
				}
			case "constraint":
				if part.NamedChildCount() > 0 {
					constraint = normalizeType(w.text(part.NamedChild(0)))
				}
			case "default_type":
				if part.NamedChildCount() > 0 {
					defaultType = normalizeType(w.text(part.NamedChild(0)))
				}
			}
		}
		if name == "" {
			continue
		}
		child := w.newNode(tp, node.Path, name, surface.KindTypeParameter, nil, nil)
		child.TypeInfo = &surface.TypeInfo{Raw: constraint}
		if defaultType != "" {
			child.Metadata = &surface.Metadata{DefaultValue: defaultType}
		}
		node.Children[name] = child
		w.mod.Add(child)
	}
}

// heritage collects extends/implements referenced type names from any of the
// clause shapes the grammar produces for classes and interfaces
func (w *walker) heritage(decl *sitter.Node) (extends, implements []string) {
	collect := func(clause *sitter.Node) []string {
		var names []string
		for i := 0; i < int(clause.NamedChildCount()); i++ {
			names = append(names, normalizeType(w.text(clause.NamedChild(i))))
		}
		return names
	}

	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "class_heritage":
				visit(child)
			case "extends_clause", "extends_type_clause":
				extends = append(extends, collect(child)...)
			case "implements_clause":
				implements = append(implements, collect(child)...)
			}
		}
	}
	visit(decl)
	return extends, implements
}

// flattenCompound collects the leaf member texts of a nested union or
// intersection type node
func (w *walker) flattenCompound(n *sitter.Node, nodeType string) []string {
	var members []string
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == nodeType {
				visit(child)
			} else {
				members = append(members, normalizeType(w.text(child)))
			}
		}
	}
	visit(n)
	return members
}

func typeAnnotationText(w *walker, annotation *sitter.Node) string {
	if annotation == nil {
		return ""
	}
	// A type_annotation node spans ": T"; its named child is the type itself.
	if annotation.Type() == "type_annotation" && annotation.NamedChildCount() > 0 {
		return normalizeType(w.text(annotation.NamedChild(0)))
	}
	return normalizeType(w.text(annotation))
}

// normalizeType collapses whitespace so equivalent type text compares equal
// regardless of source formatting
func normalizeType(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// docMetadata extracts deprecation and default-value facts from a JSDoc block
func docMetadata(doc string) *surface.Metadata {
	if doc == "" {
		return nil
	}
	meta := &surface.Metadata{DocText: doc}
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "/*"))
		switch {
		case strings.HasPrefix(line, "@deprecated"):
			meta.Deprecated = true
			meta.DeprecationMessage = strings.TrimSpace(strings.TrimPrefix(line, "@deprecated"))
		case strings.HasPrefix(line, "@default"):
			meta.DefaultValue = strings.TrimSpace(strings.TrimPrefix(line, "@default"))
		}
	}
	return meta
}
