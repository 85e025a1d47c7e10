package jslex

import "fmt"

// Kind classifies a token. Punctuators and keywords keep their text in
// Token.Text; keywords are identifiers since most of them are contextual.
type Kind uint8

const (
	EOF Kind = iota
	Ident
	PrivateName
	Number
	String
	Template       // `...` without substitutions
	TemplateHead   // `...${
	TemplateMiddle // }...${
	TemplateTail   // }...`
	Regex
	Punct
	Invalid
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case PrivateName:
		return "PrivateName"
	case Number:
		return "Number"
	case String:
		return "String"
	case Template:
		return "Template"
	case TemplateHead:
		return "TemplateHead"
	case TemplateMiddle:
		return "TemplateMiddle"
	case TemplateTail:
		return "TemplateTail"
	case Regex:
		return "Regex"
	case Punct:
		return "Punct"
	default:
		return "Invalid"
	}
}

// TriviaKind classifies skipped input between tokens.
type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
)

type Trivia struct {
	Kind       TriviaKind
	Start, End int
	Text       string
}

// Token is one significant token. Start and End are block-relative.
type Token struct {
	Kind    Kind
	Start   int
	End     int
	Text    string
	Leading []Trivia
}

// Is reports whether the token is the punctuator or identifier text.
func (t Token) Is(text string) bool {
	return (t.Kind == Punct || t.Kind == Ident) && t.Text == text
}

// IsIdent reports whether the token is an identifier that is not a reserved word.
func (t Token) IsIdent() bool {
	return t.Kind == Ident && !IsReserved(t.Text)
}

// NewlineBefore reports whether a line break precedes the token.
func (t Token) NewlineBefore() bool {
	for _, tr := range t.Leading {
		switch tr.Kind {
		case TriviaNewline:
			return true
		case TriviaBlockComment:
			for i := 0; i < len(tr.Text); i++ {
				if tr.Text[i] == '\n' {
					return true
				}
			}
		}
	}
	return false
}

// StringValue returns the unquoted body of a String token without unescaping.
func (t Token) StringValue() string {
	if t.Kind != String || len(t.Text) < 2 {
		return ""
	}
	return t.Text[1 : len(t.Text)-1]
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Text, t.Start)
}

var reserved = map[string]struct{}{
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {},
	"debugger": {}, "default": {}, "delete": {}, "do": {}, "else": {}, "enum": {},
	"export": {}, "extends": {}, "false": {}, "finally": {}, "for": {}, "function": {},
	"if": {}, "import": {}, "in": {}, "instanceof": {}, "new": {}, "null": {},
	"return": {}, "super": {}, "switch": {}, "this": {}, "throw": {}, "true": {},
	"try": {}, "typeof": {}, "var": {}, "void": {}, "while": {}, "with": {},
}

// IsReserved reports whether name can never be a binding identifier.
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// keywords after which '/' starts a regular expression
var regexAfterWord = map[string]struct{}{
	"return": {}, "typeof": {}, "case": {}, "do": {}, "else": {}, "in": {},
	"instanceof": {}, "new": {}, "void": {}, "delete": {}, "throw": {},
	"yield": {}, "await": {}, "of": {},
}
