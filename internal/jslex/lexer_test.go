package jslex

import (
	"testing"

	"vuecore/internal/diag"
)

func kindsAndTexts(toks []Token) ([]Kind, []string) {
	kinds := make([]Kind, 0, len(toks))
	texts := make([]string, 0, len(toks))
	for _, t := range toks {
		kinds = append(kinds, t.Kind)
		texts = append(texts, t.Text)
	}
	return kinds, texts
}

func TestTokenizeBasics(t *testing.T) {
	toks := Tokenize(`const { a, b: c } = defineProps<{ x?: number }>()`, Options{})
	_, texts := kindsAndTexts(toks)
	want := []string{"const", "{", "a", ",", "b", ":", "c", "}", "=", "defineProps", "<", "{", "x", "?", ":", "number", "}", ">", "(", ")", ""}
	if len(texts) != len(want) {
		t.Fatalf("got %d tokens %q", len(texts), texts)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestNestedGenericsCloseOneAtATime(t *testing.T) {
	toks := Tokenize(`ref<Array<string>>()`, Options{})
	_, texts := kindsAndTexts(toks)
	if texts[5] != ">" || texts[6] != ">" {
		t.Fatalf("expected two separate '>' tokens, got %q", texts)
	}
}

func TestTemplateLiteral(t *testing.T) {
	toks := Tokenize("`a${ {x: 1}.x }b${y}c` + z", Options{})
	kinds, texts := kindsAndTexts(toks)
	want := []Kind{TemplateHead, Punct, Ident, Punct, Number, Punct, Punct, Ident, TemplateMiddle, Ident, TemplateTail, Punct, Ident, EOF}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v texts = %q", kinds, texts)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d kind = %v (%q), want %v", i, kinds[i], texts[i], want[i])
		}
	}
}

func TestRegexHeuristic(t *testing.T) {
	tests := []struct {
		src   string
		regex bool
	}{
		{"x = /ab+c/g", true},
		{"return /x/.test(s)", true},
		{"a / b / c", false},
		{"(a) / 2", false},
	}
	for _, tt := range tests {
		toks := Tokenize(tt.src, Options{})
		found := false
		for _, tok := range toks {
			if tok.Kind == Regex {
				found = true
			}
		}
		if found != tt.regex {
			t.Errorf("%q: regex=%v, want %v", tt.src, found, tt.regex)
		}
	}
}

func TestTriviaAndComments(t *testing.T) {
	toks := Tokenize("// lead\n/* block */ foo\nbar", Options{})
	if toks[0].Text != "foo" || len(toks[0].Leading) != 4 {
		t.Fatalf("foo leading = %+v", toks[0].Leading)
	}
	if toks[0].Leading[0].Kind != TriviaLineComment || toks[0].Leading[2].Kind != TriviaBlockComment {
		t.Errorf("unexpected trivia kinds %+v", toks[0].Leading)
	}
	if !toks[1].NewlineBefore() || toks[0].Start != 20 {
		t.Errorf("bar newline=%v foo start=%d", toks[1].NewlineBefore(), toks[0].Start)
	}
}

func TestUnterminatedReportsWithBase(t *testing.T) {
	bag := diag.NewBag(0)
	Tokenize("x = 'abc\n/* open", Options{Reporter: diag.BagReporter{Bag: bag}, Base: 100})
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
	first := bag.Items()[0]
	if first.Code != diag.ScrUnterminatedString || first.Primary.Start != 104 {
		t.Errorf("first = %+v", first)
	}
	if bag.Items()[1].Code != diag.ScrUnterminatedComment {
		t.Errorf("second = %+v", bag.Items()[1])
	}
}

func TestNumbersAndPrivateNames(t *testing.T) {
	toks := Tokenize("0x1F 1_000n 1.5e-3 .5 #secret a?.b a?.5:1", Options{})
	kinds, texts := kindsAndTexts(toks)
	want := []string{"0x1F", "1_000n", "1.5e-3", ".5", "#secret", "a", "?.", "b", "a", "?", ".5", ":", "1", ""}
	for i := range want {
		if i >= len(texts) || texts[i] != want[i] {
			t.Fatalf("texts = %q", texts)
		}
	}
	if kinds[4] != PrivateName {
		t.Errorf("kind = %v", kinds[4])
	}
	if !IsIdentifierName("$foo_1") || IsIdentifierName("1abc") || IsIdentifierName("a-b") {
		t.Errorf("IsIdentifierName misbehaves")
	}
}
