// Package scipsurface projects a SCIP code-intelligence index onto the
// normalized declaration surface, giving a second parser frontend that works
// from indexer output instead of raw source text.
package scipsurface

import (
	"fmt"
	"os"
	"sort"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"apidelta/internal/errors"
	"apidelta/internal/surface"
)

// Load reads a SCIP index file and projects it onto a declaration surface
func Load(path string) (*surface.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ParseFailed,
			fmt.Sprintf("cannot read SCIP index %s", path), err)
	}

	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, errors.New(errors.ParseFailed,
			fmt.Sprintf("cannot parse SCIP index %s", path), err)
	}

	return FromIndex(&index, path), nil
}

// FromIndex converts a parsed SCIP index. Symbols that cannot be projected
// are recorded as module errors, never dropped silently.
func FromIndex(index *scippb.Index, filename string) *surface.Module {
	mod := surface.NewModule(filename)
	if index == nil {
		mod.AddError("nil SCIP index")
		return mod
	}

	// Definition locations come from occurrences, keyed by symbol id.
	definitions := make(map[string]*surface.Range)
	for _, doc := range index.Documents {
		for _, occ := range doc.Occurrences {
			if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) == 0 {
				continue
			}
			if r := rangeOf(occ.Range); r != nil {
				definitions[occ.Symbol] = r
			}
		}
	}

	var nodes []*surface.Node
	for _, doc := range index.Documents {
		for _, info := range doc.Symbols {
			node, err := projectSymbol(info, definitions)
			if err != nil {
				mod.AddError(err.Error())
				continue
			}
			if node != nil {
				nodes = append(nodes, node)
			}
		}
	}

	// Parents before children, so child attachment finds its owner.
	sort.Slice(nodes, func(i, j int) bool {
		if di, dj := strings.Count(nodes[i].Path, "."), strings.Count(nodes[j].Path, "."); di != dj {
			return di < dj
		}
		return nodes[i].Path < nodes[j].Path
	})
	for _, node := range nodes {
		mod.Add(node)
		if node.Parent == "" {
			continue
		}
		if parent, ok := mod.Nodes[node.Parent]; ok {
			if parent.Children == nil {
				parent.Children = make(map[string]*surface.Node)
			}
			parent.Children[node.Name] = node
		}
	}
	return mod
}

// projectSymbol converts one SCIP symbol into a surface node. Local symbols
// project to nil: they are not part of any declaration surface.
func projectSymbol(info *scippb.SymbolInformation, definitions map[string]*surface.Range) (*surface.Node, error) {
	parsed, err := scippb.ParseSymbol(info.Symbol)
	if err != nil {
		return nil, fmt.Errorf("unparsable symbol %q: %v", info.Symbol, err)
	}
	if len(parsed.Descriptors) == 0 {
		return nil, nil
	}
	for _, d := range parsed.Descriptors {
		if d.Suffix == scippb.Descriptor_Local || d.Suffix == scippb.Descriptor_Parameter {
			return nil, nil
		}
	}

	var parts []string
	for _, d := range parsed.Descriptors {
		if d.Suffix == scippb.Descriptor_Meta {
			continue
		}
		if d.Name != "" {
			parts = append(parts, d.Name)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}

	last := parsed.Descriptors[len(parsed.Descriptors)-1]
	node := &surface.Node{
		Path:      strings.Join(parts, "."),
		Name:      parts[len(parts)-1],
		Kind:      kindOf(info.Kind, last.Suffix, len(parts) > 1),
		Parent:    strings.Join(parts[:len(parts)-1], "."),
		Location:  definitions[info.Symbol],
		Modifiers: make(surface.ModifierSet),
		Metadata:  metadataOf(info.Documentation),
	}
	// SCIP indexes record reachable symbols; anything at the top level of
	// the descriptor path is part of the surface.
	if node.Parent == "" {
		node.Modifiers[surface.ModExported] = true
	}

	if sig := signatureOf(info); sig != "" {
		node.TypeInfo = &surface.TypeInfo{Raw: sig}
	}
	return node, nil
}

func signatureOf(info *scippb.SymbolInformation) string {
	if info.SignatureDocumentation != nil && info.SignatureDocumentation.Text != "" {
		return strings.Join(strings.Fields(info.SignatureDocumentation.Text), " ")
	}
	return ""
}

// kindOf maps the SCIP kind onto the surface kind, falling back to the
// descriptor suffix when the indexer did not record a kind
func kindOf(kind scippb.SymbolInformation_Kind, suffix scippb.Descriptor_Suffix, isMember bool) surface.NodeKind {
	switch kind {
	case scippb.SymbolInformation_Function:
		return surface.KindFunction
	case scippb.SymbolInformation_Class, scippb.SymbolInformation_Struct:
		return surface.KindClass
	case scippb.SymbolInformation_Interface, scippb.SymbolInformation_Trait:
		return surface.KindInterface
	case scippb.SymbolInformation_TypeAlias, scippb.SymbolInformation_Type:
		return surface.KindTypeAlias
	case scippb.SymbolInformation_Enum:
		return surface.KindEnum
	case scippb.SymbolInformation_EnumMember:
		return surface.KindEnumMember
	case scippb.SymbolInformation_Namespace, scippb.SymbolInformation_Module, scippb.SymbolInformation_Package:
		return surface.KindNamespace
	case scippb.SymbolInformation_Variable, scippb.SymbolInformation_Constant:
		return surface.KindVariable
	case scippb.SymbolInformation_Property, scippb.SymbolInformation_Field:
		return surface.KindProperty
	case scippb.SymbolInformation_Method, scippb.SymbolInformation_Constructor, scippb.SymbolInformation_StaticMethod:
		return surface.KindMethod
	case scippb.SymbolInformation_Getter:
		return surface.KindGetter
	case scippb.SymbolInformation_Setter:
		return surface.KindSetter
	case scippb.SymbolInformation_TypeParameter:
		return surface.KindTypeParameter
	}

	switch suffix {
	case scippb.Descriptor_Namespace:
		return surface.KindNamespace
	case scippb.Descriptor_Type:
		return surface.KindClass
	case scippb.Descriptor_Method:
		if isMember {
			return surface.KindMethod
		}
		return surface.KindFunction
	case scippb.Descriptor_TypeParameter:
		return surface.KindTypeParameter
	}
	if isMember {
		return surface.KindProperty
	}
	return surface.KindVariable
}

// metadataOf scans SCIP documentation strings for deprecation markers
func metadataOf(docs []string) *surface.Metadata {
	if len(docs) == 0 {
		return nil
	}
	meta := &surface.Metadata{DocText: strings.Join(docs, "\n")}
	for _, doc := range docs {
		if idx := strings.Index(doc, "@deprecated"); idx >= 0 {
			meta.Deprecated = true
			line := doc[idx+len("@deprecated"):]
			if nl := strings.IndexByte(line, '\n'); nl >= 0 {
				line = line[:nl]
			}
			meta.DeprecationMessage = strings.TrimSpace(line)
		}
	}
	return meta
}

// rangeOf converts a SCIP occurrence range ([startLine, startCol, endCol] or
// [startLine, startCol, endLine, endCol], 0-based lines) to a surface range
func rangeOf(r []int32) *surface.Range {
	if len(r) < 3 {
		return nil
	}
	start := surface.Position{Line: int(r[0]) + 1, Column: int(r[1])}
	end := surface.Position{Line: int(r[0]) + 1, Column: int(r[2])}
	if len(r) >= 4 {
		end = surface.Position{Line: int(r[2]) + 1, Column: int(r[3])}
	}
	return &surface.Range{Start: start, End: end}
}
