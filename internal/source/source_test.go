package source

import (
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("comp/App.vue", []byte("<template></template>"), 0)
	id2 := fs.Add("comp/./App.vue", []byte("<template>x</template>"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}
	latest, ok := fs.GetLatest("comp/App.vue")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d,%v, want %d", latest, ok, id2)
	}
	// старая версия остаётся доступной
	if got := string(fs.Get(id1).Content); got != "<template></template>" {
		t.Errorf("old content = %q", got)
	}
	if fs.Get(FileID(99)) != nil {
		t.Errorf("unknown id must return nil")
	}
}

func TestNormalize(t *testing.T) {
	in := []byte("\xEF\xBB\xBFa\r\nb\rc\r\n")
	out, flags := Normalize(in)
	if string(out) != "a\nb\rc\n" {
		t.Errorf("Normalize = %q", out)
	}
	if flags&FileHadBOM == 0 || flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b", flags)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.vue", []byte("ab\ncd\n\nef"))
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // сам '\n' принадлежит первой строке
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tt := range tests {
		got, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if got != tt.want {
			t.Errorf("offset %d: got %+v, want %+v", tt.off, got, tt.want)
		}
	}
	if line := fs.Get(id).GetLine(2); line != "cd" {
		t.Errorf("GetLine(2) = %q", line)
	}
	if line := fs.Get(id).GetLine(9); line != "" {
		t.Errorf("GetLine(9) = %q", line)
	}
}

func TestPositionRoundTrip(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.vue", []byte("x😀y\nпривет"))
	f := fs.Get(id)

	pos := f.PositionAt(5) // after the emoji
	if pos.Line != 0 || pos.Character != 3 {
		t.Fatalf("PositionAt(5) = %+v", pos)
	}
	if off := f.OffsetAt(pos); off != 5 {
		t.Errorf("OffsetAt(%+v) = %d, want 5", pos, off)
	}
	pos = f.PositionAt(11) // 'и' на второй строке
	if pos.Line != 1 || pos.Character != 2 {
		t.Errorf("PositionAt(11) = %+v", pos)
	}
	if off := f.OffsetAt(Position{Line: 1, Character: 100}); off != uint32(len(f.Content)) {
		t.Errorf("clamp: got %d", off)
	}
}

func TestSpanShift(t *testing.T) {
	s := Span{File: 1, Start: 10, End: 20}
	if got := s.Shift(-15); got.Start != 0 || got.End != 5 {
		t.Errorf("Shift(-15) = %v", got)
	}
	if got := s.Shift(3); got.Start != 13 || got.End != 23 {
		t.Errorf("Shift(3) = %v", got)
	}
	if !s.Overlaps(Span{File: 1, Start: 19, End: 30}) || s.Overlaps(Span{File: 1, Start: 20, End: 30}) {
		t.Errorf("Overlaps misbehaves")
	}
}

func TestDiffAndApply(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     Change
	}{
		{"insert", "abcdef", "abcXdef", Change{Start: 3, End: 3, NewText: "X"}},
		{"delete", "abcdef", "abef", Change{Start: 2, End: 4}},
		{"replace", "count + 1", "count + 2", Change{Start: 8, End: 9, NewText: "2"}},
		{"repeated", "aaa", "aaaa", Change{Start: 3, End: 3, NewText: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Diff(tt.old, tt.new)
			if !ok || got != tt.want {
				t.Fatalf("Diff = %v,%v want %v", got, ok, tt.want)
			}
			next, err := NewSnapshot(tt.old).Apply(got)
			if err != nil {
				t.Fatal(err)
			}
			if next.Text != tt.new || next.Version != 1 {
				t.Errorf("Apply = %q v%d", next.Text, next.Version)
			}
		})
	}
	if _, ok := Diff("same", "same"); ok {
		t.Errorf("equal texts must not produce a change")
	}
	if _, err := NewSnapshot("ab").Apply(Change{Start: 1, End: 5}); err == nil {
		t.Errorf("expected range error")
	}
}

func TestKindOf(t *testing.T) {
	md, html := []string{".md"}, []string{".html"}
	if KindOf("docs/Index.MD", md, html) != KindMarkdown {
		t.Errorf("expected markdown")
	}
	if KindOf("a.html", md, html) != KindHTML || KindOf("a.vue", md, html) != KindSFC {
		t.Errorf("kind mismatch")
	}
}
