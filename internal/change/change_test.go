package change

import (
	"testing"
)

func TestDescriptorValidate(t *testing.T) {
	tests := []struct {
		name    string
		desc    Descriptor
		wantErr bool
	}{
		{"added is valid", Added(TargetExport), false},
		{"removed is valid", Removed(TargetMember), false},
		{"renamed is valid", Renamed(TargetParameter), false},
		{"reordered is valid", Reordered(TargetSignature), false},
		{"modified with aspect and impact", Modified(TargetProperty, AspectType, ImpactNarrowing), false},
		{"modified missing aspect", Descriptor{Action: ActionModified, Target: TargetProperty, Impact: ImpactNarrowing}, true},
		{"modified missing impact", Descriptor{Action: ActionModified, Target: TargetProperty, Aspect: AspectType}, true},
		{"added with stray impact", Descriptor{Action: ActionAdded, Target: TargetExport, Impact: ImpactWidening}, true},
		{"unknown action", Descriptor{Action: "mutated", Target: TargetExport}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMostSevere(t *testing.T) {
	mk := func(r ReleaseType) ClassifiedChange {
		return ClassifiedChange{ReleaseType: r}
	}

	tests := []struct {
		name    string
		changes []ClassifiedChange
		want    ReleaseType
	}{
		{"empty batch", nil, ReleaseNone},
		{"single patch", []ClassifiedChange{mk(ReleasePatch)}, ReleasePatch},
		{"major beats minor", []ClassifiedChange{mk(ReleaseMinor), mk(ReleaseMajor), mk(ReleasePatch)}, ReleaseMajor},
		{"minor beats patch", []ClassifiedChange{mk(ReleasePatch), mk(ReleaseMinor)}, ReleaseMinor},
		{"all none", []ClassifiedChange{mk(ReleaseNone), mk(ReleaseNone)}, ReleaseNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MostSevere(tt.changes); got != tt.want {
				t.Errorf("MostSevere() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescriptorString(t *testing.T) {
	d := Modified(TargetParameter, AspectType, ImpactWidening)
	if got, want := d.String(), "modified parameter (type, widening)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	r := Removed(TargetExport)
	if got, want := r.String(), "removed export"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestHasTag(t *testing.T) {
	d := Added(TargetParameter, "optional", "rest")
	if !d.HasTag("optional") {
		t.Error("HasTag(optional) = false, want true")
	}
	if d.HasTag("required") {
		t.Error("HasTag(required) = true, want false")
	}
}

func TestValidReleaseType(t *testing.T) {
	for _, s := range []string{"major", "minor", "patch", "none"} {
		if !ValidReleaseType(s) {
			t.Errorf("ValidReleaseType(%q) = false, want true", s)
		}
	}
	if ValidReleaseType("breaking") {
		t.Error("ValidReleaseType(breaking) = true, want false")
	}
}
