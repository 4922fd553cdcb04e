package surface

import (
	"strings"
	"testing"
)

func TestModuleAdd(t *testing.T) {
	mod := NewModule("api.d.ts")

	mod.Add(&Node{
		Path:      "connect",
		Name:      "connect",
		Kind:      KindFunction,
		Modifiers: ModifierSet{ModExported: true},
	})
	mod.Add(&Node{
		Path: "helper",
		Name: "helper",
		Kind: KindFunction,
	})

	if len(mod.Nodes) != 2 {
		t.Fatalf("Nodes = %d, want 2", len(mod.Nodes))
	}
	if len(mod.Exports) != 1 {
		t.Fatalf("Exports = %d, want 1", len(mod.Exports))
	}
	if _, ok := mod.Exports["helper"]; ok {
		t.Error("unexported node appeared in Exports")
	}
}

func TestModuleAddDuplicatePath(t *testing.T) {
	mod := NewModule("api.d.ts")

	first := &Node{Path: "x", Name: "x", Kind: KindVariable}
	mod.Add(first)
	mod.Add(&Node{Path: "x", Name: "x", Kind: KindFunction})

	if mod.Nodes["x"] != first {
		t.Error("duplicate replaced the first occurrence")
	}
	if len(mod.Errors) != 1 || !strings.Contains(mod.Errors[0], "duplicate") {
		t.Errorf("Errors = %v", mod.Errors)
	}
}

func TestModuleAddIgnoresNil(t *testing.T) {
	mod := NewModule("api.d.ts")
	mod.Add(nil)
	mod.Add(&Node{Name: "anon"})

	if len(mod.Nodes) != 0 || len(mod.Errors) != 0 {
		t.Errorf("nil/pathless nodes were registered: %+v", mod)
	}
}

func TestIsExported(t *testing.T) {
	cases := []struct {
		name string
		mods ModifierSet
		want bool
	}{
		{"exported", ModifierSet{ModExported: true}, true},
		{"default export", ModifierSet{ModDefaultExport: true}, true},
		{"plain", ModifierSet{}, false},
		{"nil set", nil, false},
	}
	for _, tc := range cases {
		n := &Node{Path: "n", Modifiers: tc.mods}
		if got := n.IsExported(); got != tc.want {
			t.Errorf("%s: IsExported() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsCallable(t *testing.T) {
	callable := []NodeKind{KindFunction, KindMethod, KindCallSignature, KindConstructSignature, KindGetter, KindSetter}
	for _, k := range callable {
		if !(&Node{Kind: k}).IsCallable() {
			t.Errorf("%s should be callable", k)
		}
	}
	for _, k := range []NodeKind{KindClass, KindInterface, KindVariable, KindEnum} {
		if (&Node{Kind: k}).IsCallable() {
			t.Errorf("%s should not be callable", k)
		}
	}
}
