package bitpack

import (
	"fmt"
	"iter"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Record is the decoded, editable view of a raw value. It maps field names to
// values in declaration order: bool for boolean fields, uint64 for number
// fields. Values of number fields are not truncated when set, Encode only
// keeps the bits that fit into the field.
type Record struct {
	schema *Schema

	// one entry per field, booleans are stored as 0 or 1
	values []uint64
}

// grow appends zero values for fields declared after the record was decoded.
func (r *Record) grow() {
	for len(r.values) < len(r.schema.fields) {
		r.values = append(r.values, 0)
	}
}

// Len returns the number of fields in the record.
func (r *Record) Len() int {
	return len(r.values)
}

// Names returns the field names in declaration order.
func (r *Record) Names() []string {
	names := make([]string, 0, len(r.values))
	for idx := range r.values {
		names = append(names, r.schema.fields[idx].Name)
	}

	return names
}

// All iterates over field names and values in declaration order.
func (r *Record) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for idx := range r.values {
			if !yield(r.schema.fields[idx].Name, r.valueAt(idx)) {
				return
			}
		}
	}
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (any, bool) {
	idx, err := r.lookup(name)
	if err != nil {
		return nil, false
	}

	return r.valueAt(idx), true
}

// Bool returns the value of a boolean field.
func (r *Record) Bool(name string) (bool, error) {
	idx, err := r.lookup(name)
	if err != nil {
		return false, err
	}

	return r.boolAt(idx)
}

// Uint returns the value of a number field.
func (r *Record) Uint(name string) (uint64, error) {
	idx, err := r.lookup(name)
	if err != nil {
		return 0, err
	}

	return r.uintAt(idx)
}

// Set replaces the value of the named field. Boolean fields accept a bool,
// number fields accept any non-negative integer. On error the record is not
// modified.
func (r *Record) Set(name string, value any) error {
	idx, err := r.lookup(name)
	if err != nil {
		return err
	}

	return r.setAt(idx, value)
}

// SetBool replaces the value of a boolean field.
func (r *Record) SetBool(name string, value bool) error {
	return r.Set(name, value)
}

// SetUint replaces the value of a number field.
func (r *Record) SetUint(name string, value uint64) error {
	return r.Set(name, value)
}

// CopyFrom replaces all values of the record with the values of src. Both
// records must have schemas with the same Fingerprint, otherwise a
// *SchemaMismatchError is returned and the record is not modified.
func (r *Record) CopyFrom(src *Record) error {
	if r.schema != src.schema {
		want, got := r.schema.Fingerprint(), src.schema.Fingerprint()
		if want != got {
			return &SchemaMismatchError{Want: want, Got: got}
		}
	}

	r.grow()
	clear(r.values)
	copy(r.values, src.values)

	return nil
}

func (r *Record) String() string {
	var sb strings.Builder

	for idx := range r.values {
		if idx > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(r.schema.fields[idx].Name)
		sb.WriteByte('=')
		sb.WriteString(r.formatAt(idx))
	}

	return sb.String()
}

func (r *Record) lookup(name string) (int, error) {
	idx, ok := r.schema.index[name]
	if !ok || idx >= len(r.values) {
		return 0, &UnknownFieldError{Name: name}
	}

	return idx, nil
}

func (r *Record) valueAt(idx int) any {
	if r.schema.fields[idx].Kind == KindBoolean {
		return r.values[idx] != 0
	}

	return r.values[idx]
}

func (r *Record) formatAt(idx int) string {
	if r.schema.fields[idx].Kind == KindBoolean {
		return strconv.FormatBool(r.values[idx] != 0)
	}

	return strconv.FormatUint(r.values[idx], 10)
}

func (r *Record) boolAt(idx int) (bool, error) {
	field := r.schema.fields[idx]
	if field.Kind != KindBoolean {
		return false, &TypeMismatchError{Field: field.Name, Want: "bool", Value: r.values[idx]}
	}

	return r.values[idx] != 0, nil
}

func (r *Record) uintAt(idx int) (uint64, error) {
	field := r.schema.fields[idx]
	if field.Kind != KindNumber {
		return 0, &TypeMismatchError{Field: field.Name, Want: "uint64", Value: r.values[idx] != 0}
	}

	return r.values[idx], nil
}

func (r *Record) setAt(idx int, value any) error {
	field := r.schema.fields[idx]

	switch field.Kind {
	case KindBoolean:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Bool {
			return &TypeMismatchError{Field: field.Name, Want: "bool", Value: value}
		}

		r.values[idx] = 0
		if rv.Bool() {
			r.values[idx] = 1
		}

	case KindNumber:
		uintValue, err := toUint64(value)
		if err != nil {
			return &TypeMismatchError{Field: field.Name, Want: "non-negative integer", Value: value}
		}

		r.values[idx] = uintValue
	}

	return nil
}

// UintAs returns the value of a number field converted to T. It fails with
// strconv.ErrRange if the value does not fit into T.
func UintAs[T constraints.Unsigned](r *Record, name string) (T, error) {
	value, err := r.Uint(name)
	if err != nil {
		return 0, err
	}

	if value > uint64(MaskOf[T](0, MaxWidth)) {
		return 0, fmt.Errorf("field %q: value %d overflows %T: %w", name, value, T(0), strconv.ErrRange)
	}

	return T(value), nil
}
