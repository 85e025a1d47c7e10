package testkit

import (
	"strings"
	"testing"

	"vuecore/internal/code"
	"vuecore/internal/mapping"
)

func TestCheckInvariants(t *testing.T) {
	const src = "<template>{{ foo-bar }}</template>"
	at := strings.Index(src, "foo")
	resolve := func(string) (int, bool) { return 0, true }

	tests := []struct {
		name    string
		segs    []code.Segment
		wantErr string
	}{
		{
			name: "ok",
			segs: []code.Segment{
				code.Plain("("),
				code.Mapped("foo", "template", at, code.PresetAll.Caps()),
				code.Plain(")"),
			},
		},
		{
			name: "represented source",
			segs: []code.Segment{
				code.Mapped("fooBar", "template", at, code.PresetAll.Caps()).WithSource("foo-bar"),
			},
		},
		{
			name:    "wrong offset",
			segs:    []code.Segment{code.Mapped("foo", "template", at+1, code.PresetAll.Caps())},
			wantErr: "source holds",
		},
		{
			name:    "camelized without source",
			segs:    []code.Segment{code.Mapped("fooBar", "template", at, code.PresetAll.Caps())},
			wantErr: "source holds",
		},
		{
			name: "lonely linked token",
			segs: []code.Segment{
				code.Mapped("foo", "template", at, code.PresetAll.Caps()).WithLinked(1),
			},
			wantErr: "linked token 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Build сам ругается на незакрытые токены, артефакт всё равно возвращается
			art, _ := mapping.Build("script_ts", "typescript", tt.segs, resolve)
			err := CheckInvariants(art, tt.segs, resolve, src)
			switch {
			case tt.wantErr == "" && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}

	if err := CheckInvariants(nil, nil, nil, ""); err == nil {
		t.Errorf("nil artifact accepted")
	}
	broken := &mapping.Artifact{Text: "ab", Mappings: []mapping.Mapping{{
		SourceOffsets: []int{0, 1}, GeneratedOffsets: []int{0}, Lengths: []int{1, 1},
	}}}
	if err := CheckInvariants(broken, nil, nil, "ab"); err == nil || !strings.Contains(err.Error(), "arrays differ") {
		t.Errorf("non-parallel arrays: %v", err)
	}
}
