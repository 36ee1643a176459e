package mrz

import (
	"errors"
	"fmt"
)

// Error categories. Use errors.Is against these; the typed errors below
// unwrap to them.
var (
	ErrMalformedInput          = errors.New("malformed MRZ input")
	ErrUnknownFormat           = errors.New("unknown MRZ format")
	ErrFormatMismatch          = errors.New("MRZ format does not match record")
	ErrInvalidCharacter        = errors.New("invalid character in MRZ")
	ErrInvalidSexChar          = errors.New("invalid MRZ sex character")
	ErrUnsupportedDocumentCode = errors.New("unsupported document code")
	ErrAcceptance              = errors.New("MRZ check digits not accepted")
	ErrInvalidArgument         = errors.New("invalid argument")
)

// ParseError wraps one of the error categories with the location it was
// raised at.
type ParseError struct {
	Err     error
	Message string
	Range   *Range
	Format  *Format
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Err.Error()
	}
	if e.Range != nil {
		msg = fmt.Sprintf("%s at %s", msg, e.Range)
	}
	if e.Format != nil {
		msg = fmt.Sprintf("%s (format %s)", msg, e.Format)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidCharacterError pinpoints the offending cell of a field range.
type InvalidCharacterError struct {
	Row    int
	Column int
	Char   rune
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid character in MRZ record: %q at row %d column %d", e.Char, e.Row, e.Column)
}

func (e *InvalidCharacterError) Unwrap() error {
	return ErrInvalidCharacter
}

// UnknownFormatError reports the dimensions nothing in the registry matched.
type UnknownFormatError struct {
	Columns int
	Rows    int
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown format / unsupported number of cols/rows: %d/%d", e.Columns, e.Rows)
}

func (e *UnknownFormatError) Unwrap() error {
	return ErrUnknownFormat
}

// AcceptanceError is returned by Cleaner.ParseAndClean for a structurally
// valid record whose check digits do not satisfy the acceptance rule. The
// rejected record is attached for diagnostics.
type AcceptanceError struct {
	Record Record
	// Repeated is true when the same text was already rejected by the
	// previous call on this Cleaner.
	Repeated bool
}

func (e *AcceptanceError) Error() string {
	return "invalid check digits"
}

func (e *AcceptanceError) Unwrap() error {
	return ErrAcceptance
}

// Retryable reports whether err is frame dependent OCR noise, meaning the
// caller should try again with the next frame instead of surfacing an error.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrAcceptance),
		errors.Is(err, ErrMalformedInput),
		errors.Is(err, ErrUnknownFormat),
		errors.Is(err, ErrFormatMismatch),
		errors.Is(err, ErrInvalidCharacter):
		return true
	default:
		return false
	}
}

func malformed(msg string) error {
	return &ParseError{Err: ErrMalformedInput, Message: msg}
}

func invalidArgument(format string, args ...any) error {
	return &ParseError{Err: ErrInvalidArgument, Message: fmt.Sprintf(format, args...)}
}
