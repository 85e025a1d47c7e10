package diag

import (
	"testing"

	"vuecore/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSetWithBase("/workspace")

	userFile := fs.Add("/workspace/src/App.vue", []byte("a\nb\n"), 0)
	vendored := fs.Add("/workspace/node_modules/lib/X.vue", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevError,
			Code:     TplUnclosedElement,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: vendored, Start: 0, End: 0}, Msg: "skip me"},
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "opened here"},
			},
		},
		{
			Severity: SevWarning,
			Code:     SfcDuplicateBlock,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "error TPL2001 src/App.vue:1:1 first line second\n" +
		"warning SFC1003 src/App.vue:2:1 another\n" +
		"note TPL2001 src/App.vue:2:1 opened here"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	bag := NewBag(3)
	r := BagReporter{Bag: bag}
	sp := func(s, e uint32) source.Span { return source.Span{Start: s, End: e} }

	r.Report(TplStrayEndTag, SevError, sp(10, 12), "b", nil, nil)
	r.Report(SfcDuplicateBlock, SevWarning, sp(1, 2), "a", nil, nil)
	r.Report(TplStrayEndTag, SevError, sp(10, 12), "b again", nil, nil)
	r.Report(ScrUnknownChar, SevError, sp(0, 1), "dropped", nil, nil)

	if bag.Len() != 3 || bag.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", bag.Len(), bag.Dropped())
	}
	bag.Sort()
	bag.Dedup()
	items := bag.Items()
	if len(items) != 2 || items[0].Code != SfcDuplicateBlock || items[1].Message != "b" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Errorf("HasErrors/HasWarnings should be true")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	for range 3 {
		ReportError(r, TplUnclosedComment, source.Span{Start: 4, End: 8}, "unterminated").Emit()
	}
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	r.Reset()
	ReportError(r, TplUnclosedComment, source.Span{Start: 4, End: 8}, "unterminated").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected reset to forget seen keys, got %d", bag.Len())
	}
}

func TestCodeIDs(t *testing.T) {
	tests := map[Code]string{
		SfcUnclosedBlock:     "SFC1001",
		TplInvalidVFor:       "TPL2006",
		ScrUnterminatedRegex: "SCR3004",
		GenUnclosedToken:     "GEN4001",
		IOLoadFileError:      "IO5001",
		CfgInvalid:           "CFG6001",
		UnknownCode:          "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if sev, err := ParseSeverity("Warn"); err != nil || sev != SevWarning {
		t.Errorf("ParseSeverity(Warn) = %v, %v", sev, err)
	}
}

func TestBagTransformAndFilter(t *testing.T) {
	bag := NewBag(0)
	bag.Add(New(SevWarning, SfcDuplicateBlock, source.Span{}, "dup"))
	bag.Add(New(SevInfo, ObsTimings, source.Span{}, "timings"))
	bag.Add(NewError(TplUnclosedElement, source.Span{}, "unclosed"))

	bag.Transform(func(d Diagnostic) Diagnostic {
		if d.Severity == SevWarning {
			d.Severity = SevError
		}
		return d
	})
	if got := bag.Items()[0].Severity; got != SevError {
		t.Fatalf("warning not promoted: %v", got)
	}
	bag.Filter(func(d Diagnostic) bool { return d.Code != ObsTimings })
	if bag.Len() != 2 || !bag.HasErrors() {
		t.Errorf("items after filter: %+v", bag.Items())
	}
}
