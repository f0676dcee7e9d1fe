package bitpack

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalidFieldKind matches *InvalidFieldKindError.
var ErrInvalidFieldKind = errors.New("invalid field kind")

// ErrTypeMismatch matches *TypeMismatchError and raw values that fail to parse.
var ErrTypeMismatch = errors.New("type mismatch")

// ErrDuplicateField matches *DuplicateFieldError.
var ErrDuplicateField = errors.New("duplicate field")

// ErrTooWide matches *WidthError.
var ErrTooWide = errors.New("schema too wide")

// ErrUnknownField matches *UnknownFieldError.
var ErrUnknownField = errors.New("unknown field")

// ErrSchemaMismatch matches *SchemaMismatchError.
var ErrSchemaMismatch = errors.New("schema mismatch")

// InvalidFieldKindError is returned when a declaration names a kind outside
// of KindNumber and KindBoolean.
type InvalidFieldKindError struct {
	Kind string
}

func (e *InvalidFieldKindError) Error() string {
	return fmt.Sprintf("invalid field kind %q", e.Kind)
}

func (e *InvalidFieldKindError) Is(target error) bool {
	return target == ErrInvalidFieldKind
}

// TypeMismatchError is returned when a value of the wrong Go type is handed
// to the codec, either as a raw value or as a record entry.
type TypeMismatchError struct {
	// Field is empty for raw values.
	Field string
	Want  string
	Value any
}

func (e *TypeMismatchError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("type mismatch: want %s, got %T", e.Want, e.Value)
	}

	return fmt.Sprintf("field %q: type mismatch: want %s, got %T", e.Field, e.Want, e.Value)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// DuplicateFieldError is returned when a field name is declared twice.
type DuplicateFieldError struct {
	Name string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("field %q declared twice", e.Name)
}

func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrDuplicateField
}

// WidthError is returned when a declaration would grow the schema beyond
// its maximum width.
type WidthError struct {
	Name  string
	Width uint
	Total uint
	Max   uint
}

func (e *WidthError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("width %d exceeds maximum of %d bits", e.Width, e.Max)
	}

	return fmt.Sprintf("field %q of %d bits grows schema to %d bits, maximum is %d",
		e.Name, e.Width, e.Total+e.Width, e.Max)
}

func (e *WidthError) Is(target error) bool {
	return target == ErrTooWide
}

// UnknownFieldError is returned when a record is accessed by a name the
// schema does not declare.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Name)
}

func (e *UnknownFieldError) Is(target error) bool {
	return target == ErrUnknownField
}

// SchemaMismatchError is returned when records of different layouts are
// combined. Want and Got are schema fingerprints.
type SchemaMismatchError struct {
	Want uint64
	Got  uint64
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: want fingerprint %016x, got %016x", e.Want, e.Got)
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// NotSupportedError is returned when a struct can not be bound to a record.
type NotSupportedError struct {
	Type reflect.Type
}

func (n NotSupportedError) Error() string {
	return fmt.Sprintf("type %q is not supported", n.Type)
}
