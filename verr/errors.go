// Package verr defines the typed error model shared by the VOTable codec,
// the MIVOT annotation parser and the index tooling.
//
// Every failure surfaced by the engine is a *Error carrying a stable code,
// the XML tag being processed when the failure occurred, and (when it makes
// sense) the offending attribute name. Nothing is silently recovered:
// decode errors abort the current call and bubble to the caller.
package verr

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes (exported consts for IDE completion and stable matching).
const (
	CodeIO                  = "io_error"
	CodeXMLSyntax           = "xml_syntax"
	CodeUnexpectedAttr      = "unexpected_attr"
	CodeUnexpectedElem      = "unexpected_elem"
	CodeUnexpectedEmptyElem = "unexpected_empty_elem"
	CodeUnexpectedEndElem   = "unexpected_end_elem"
	CodeMissingAttr         = "missing_attr"
	CodeExclusiveAttrs      = "exclusive_attrs"
	CodeValueGrammar        = "value_grammar"
	CodeStructure           = "structure"
	CodePrematureEOF        = "premature_eof"
	CodeCustom              = "custom"
)

// Error is a single typed failure. Tag is the local name of the element
// being processed; Attr is set for attribute-level failures. Offset is the
// byte offset in the input source, -1 when unknown.
type Error struct {
	Code   string
	Tag    string
	Attr   string
	Msg    string
	Cause  error
	Offset int64
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Code)
	if e.Tag != "" {
		fmt.Fprintf(b, " in %s", e.Tag)
	}
	if e.Attr != "" {
		fmt.Fprintf(b, " (attribute %q)", e.Attr)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Cause != nil {
		fmt.Fprintf(b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on code so callers can write errors.Is(err, verr.Code(CodeStructure)).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code && (t.Tag == "" || t.Tag == e.Tag)
	}
	return false
}

// Code returns a bare matcher error for use with errors.Is.
func Code(code string) error { return &Error{Code: code} }

// HasCode reports whether err (or anything it wraps) is a *Error with the
// given code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func IO(cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: CodeIO, Cause: cause, Offset: -1}
}

func XMLSyntax(cause error, offset int64) error {
	return &Error{Code: CodeXMLSyntax, Cause: cause, Offset: offset}
}

func UnexpectedAttr(tag, attr string) error {
	return &Error{Code: CodeUnexpectedAttr, Tag: tag, Attr: attr, Offset: -1}
}

func UnexpectedElem(parent, child string) error {
	return &Error{Code: CodeUnexpectedElem, Tag: parent, Msg: fmt.Sprintf("unexpected element <%s>", child), Offset: -1}
}

func UnexpectedEmptyElem(parent, child string) error {
	return &Error{Code: CodeUnexpectedEmptyElem, Tag: parent, Msg: fmt.Sprintf("unexpected empty element <%s/>", child), Offset: -1}
}

func UnexpectedEndElem(parent, end string) error {
	return &Error{Code: CodeUnexpectedEndElem, Tag: parent, Msg: fmt.Sprintf("unexpected end tag </%s>", end), Offset: -1}
}

func MissingAttr(tag, attr string) error {
	return &Error{Code: CodeMissingAttr, Tag: tag, Attr: attr, Offset: -1}
}

// ExclusiveAttrs reports that exactly one of two attributes was expected and
// either both or neither was present.
func ExclusiveAttrs(tag, a, b string, bothPresent bool) error {
	state := "both absent"
	if bothPresent {
		state = "both present"
	}
	return &Error{
		Code: CodeExclusiveAttrs, Tag: tag,
		Msg:    fmt.Sprintf("exactly one of %q and %q expected, %s", a, b, state),
		Offset: -1,
	}
}

func ValueGrammar(tag, attr, value string, cause error) error {
	return &Error{
		Code: CodeValueGrammar, Tag: tag, Attr: attr,
		Msg: fmt.Sprintf("bad value %q", value), Cause: cause, Offset: -1,
	}
}

func Structure(tag, msg string) error {
	return &Error{Code: CodeStructure, Tag: tag, Msg: msg, Offset: -1}
}

func PrematureEOF(tag string) error {
	return &Error{Code: CodePrematureEOF, Tag: tag, Msg: "end of input inside element", Offset: -1}
}

func Custom(msg string) error {
	return &Error{Code: CodeCustom, Msg: msg, Offset: -1}
}

func Customf(format string, args ...any) error {
	return &Error{Code: CodeCustom, Msg: fmt.Sprintf(format, args...), Offset: -1}
}

// Wrap attaches a tag context to an arbitrary error, leaving *Error values
// untouched when they already carry one.
func Wrap(tag string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Tag != "" {
		return err
	}
	if errors.As(err, &e) {
		return &Error{Code: e.Code, Tag: tag, Attr: e.Attr, Msg: e.Msg, Cause: e.Cause, Offset: e.Offset}
	}
	return &Error{Code: CodeCustom, Tag: tag, Cause: err, Offset: -1}
}
