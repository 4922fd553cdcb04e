package scipsurface

import (
	"path/filepath"
	"testing"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"

	"apidelta/internal/surface"
)

const pkgPrefix = "scip-typescript npm mylib 1.0.0 "

func testIndex() *scippb.Index {
	return &scippb.Index{
		Metadata: &scippb.Metadata{ProjectRoot: "file:///mylib"},
		Documents: []*scippb.Document{
			{
				RelativePath: "index.d.ts",
				Occurrences: []*scippb.Occurrence{
					{
						Symbol:      pkgPrefix + "connect().",
						SymbolRoles: int32(scippb.SymbolRole_Definition),
						Range:       []int32{4, 0, 7},
					},
				},
				Symbols: []*scippb.SymbolInformation{
					{
						Symbol: pkgPrefix + "connect().",
						Kind:   scippb.SymbolInformation_Function,
						SignatureDocumentation: &scippb.Document{
							Text: "function connect(host: string): Connection",
						},
					},
					{
						Symbol: pkgPrefix + "Store#",
						Kind:   scippb.SymbolInformation_Class,
					},
					{
						Symbol:        pkgPrefix + "Store#get().",
						Kind:          scippb.SymbolInformation_Method,
						Documentation: []string{"Reads one key.\n@deprecated use fetch"},
					},
					{
						Symbol: "local 0",
					},
				},
			},
		},
	}
}

func TestFromIndex(t *testing.T) {
	mod := FromIndex(testIndex(), "index.scip")
	if len(mod.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", mod.Errors)
	}

	connect, ok := mod.Exports["connect"]
	if !ok {
		t.Fatalf("connect not exported; nodes = %v", mod.Nodes)
	}
	if connect.Kind != surface.KindFunction {
		t.Errorf("kind = %v", connect.Kind)
	}
	if connect.Location == nil || connect.Location.Start.Line != 5 {
		t.Errorf("location = %+v", connect.Location)
	}
	if connect.TypeInfo == nil || connect.TypeInfo.Raw != "function connect(host: string): Connection" {
		t.Errorf("type info = %+v", connect.TypeInfo)
	}

	store, ok := mod.Exports["Store"]
	if !ok {
		t.Fatal("Store not exported")
	}
	get := store.Children["get"]
	if get == nil || get.Kind != surface.KindMethod {
		t.Fatalf("Store.get = %+v", get)
	}
	if get.Parent != "Store" || get.Path != "Store.get" {
		t.Errorf("get path = %q parent = %q", get.Path, get.Parent)
	}
	if get.IsExported() {
		t.Error("member should not be an export")
	}
	if get.Metadata == nil || !get.Metadata.Deprecated || get.Metadata.DeprecationMessage != "use fetch" {
		t.Errorf("metadata = %+v", get.Metadata)
	}

	// Local symbols are not part of the surface.
	if _, ok := mod.Nodes["0"]; ok {
		t.Error("local symbol projected")
	}
}

func TestFromIndexNil(t *testing.T) {
	mod := FromIndex(nil, "x.scip")
	if len(mod.Errors) == 0 {
		t.Error("nil index not reported")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.scip"))
	if err == nil {
		t.Fatal("missing index accepted")
	}
}

func TestRangeOf(t *testing.T) {
	cases := []struct {
		in   []int32
		want *surface.Range
	}{
		{[]int32{0, 1}, nil},
		{
			[]int32{2, 0, 9},
			&surface.Range{Start: surface.Position{Line: 3, Column: 0}, End: surface.Position{Line: 3, Column: 9}},
		},
		{
			[]int32{2, 0, 4, 1},
			&surface.Range{Start: surface.Position{Line: 3, Column: 0}, End: surface.Position{Line: 5, Column: 1}},
		},
	}
	for i, tc := range cases {
		got := rangeOf(tc.in)
		if (got == nil) != (tc.want == nil) {
			t.Errorf("case %d: got %+v, want %+v", i, got, tc.want)
			continue
		}
		if got != nil && *got != *tc.want {
			t.Errorf("case %d: got %+v, want %+v", i, got, tc.want)
		}
	}
}
