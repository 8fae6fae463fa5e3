// Package errtypes - Fehlerarten der Colorization-Pipeline
//
// Alle Fehler, die aus tiling, vision, model und pipeline nach aussen gehen,
// sind *Error mit einer Kind. Aufrufer pruefen mit errors.Is gegen die
// Sentinel-Werte (ErrMissingCategory, ...) oder mit KindOf.
package errtypes

import (
	"errors"
	"fmt"
)

// Kind klassifiziert einen Pipeline-Fehler
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidDimensions
	KindMissingCategory
	KindUnclassifiableInput
	KindShapeMismatch
	KindStorage
	KindModelInference
	KindInvalidImage
	KindConfiguration
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindInvalidDimensions:   "invalid_dimensions",
	KindMissingCategory:     "missing_category",
	KindUnclassifiableInput: "unclassifiable_input",
	KindShapeMismatch:       "shape_mismatch",
	KindStorage:             "storage_error",
	KindModelInference:      "model_inference_error",
	KindInvalidImage:        "invalid_image",
	KindConfiguration:       "configuration_error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// Sentinel-Werte fuer errors.Is
var (
	ErrInvalidDimensions   = &Error{Kind: KindInvalidDimensions}
	ErrMissingCategory     = &Error{Kind: KindMissingCategory}
	ErrUnclassifiableInput = &Error{Kind: KindUnclassifiableInput}
	ErrShapeMismatch       = &Error{Kind: KindShapeMismatch}
	ErrStorage             = &Error{Kind: KindStorage}
	ErrModelInference      = &Error{Kind: KindModelInference}
	ErrInvalidImage        = &Error{Kind: KindInvalidImage}
	ErrConfiguration       = &Error{Kind: KindConfiguration}
)

// Error ist ein strukturierter Fehler mit Art, Operation und Ursache.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is vergleicht nur die Kind, damit errors.Is(err, ErrMissingCategory)
// unabhaengig von Op und Msg funktioniert.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New erstellt einen Fehler mit formatierter Nachricht
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap haengt eine Ursache an. Ist err bereits ein *Error, wird er
// unveraendert zurueckgegeben.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf liefert die Kind eines Fehlers oder KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
