package diag

import (
	"vuecore/internal/source"
)

// Note is a secondary location attached to a diagnostic.
type Note struct {
	Span source.Span `json:"span"`
	Msg  string      `json:"msg"`
}

// FixEdit replaces the bytes of Span with NewText.
type FixEdit struct {
	Span    source.Span `json:"span"`
	NewText string      `json:"new_text"`
}

// Fix is a titled group of edits the host may offer as a quick fix.
type Fix struct {
	Title string    `json:"title"`
	Edits []FixEdit `json:"edits"`
}

type Diagnostic struct {
	Severity Severity    `json:"severity"`
	Code     Code        `json:"code"`
	Message  string      `json:"message"`
	Primary  source.Span `json:"primary"`
	Notes    []Note      `json:"notes,omitempty"`
	Fixes    []Fix       `json:"fixes,omitempty"`
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}
