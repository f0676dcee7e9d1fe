package bitpack

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Field is a single named range of bits within a raw value.
type Field struct {
	Name string
	Kind FieldKind

	// Offset is the sum of the lengths of all fields declared before this
	// one. A field with offset 0 holds the most significant bits.
	Offset uint

	// Length is the width of the field in bits.
	Length uint
}

// shift returns the distance between the least significant bit of the field
// and bit 0 of a raw value that is total bits wide.
func (f Field) shift(total uint) uint {
	return total - f.Offset - f.Length
}

func (f Field) mask(total uint) uint64 {
	return Mask(f.shift(total), f.Length)
}

// DeclareFunc declares fields on a Builder. Errors are collected by the
// Builder and reported by the function that invoked the DeclareFunc.
type DeclareFunc func(b *Builder)

// Schema is an ordered list of fields. The first declared field occupies the
// most significant bits, the last declared field the least significant bits.
type Schema struct {
	fields   []Field
	index    map[string]int
	length   uint
	maxWidth uint
	logger   *zap.Logger
}

// NewSchema creates a schema and runs fn against it. fn may be nil.
func NewSchema(fn DeclareFunc, opts ...Option) (*Schema, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	schema := newSchema(cfg)
	if fn != nil {
		if err := schema.Declare(fn); err != nil {
			return nil, err
		}
	}

	return schema, nil
}

func newSchema(cfg *config) *Schema {
	return &Schema{
		index:    map[string]int{},
		maxWidth: cfg.maxWidth,
		logger:   cfg.logger,
	}
}

// Declare appends the fields declared by fn after all existing fields.
// If any declaration within fn fails, none of them is added.
func (s *Schema) Declare(fn DeclareFunc) error {
	b := &Builder{
		schema: s,
		names:  map[string]struct{}{},
		length: s.length,
	}

	fn(b)

	if b.err != nil {
		return fmt.Errorf("declare: %w", b.err)
	}

	for _, field := range b.fields {
		s.index[field.Name] = len(s.fields)
		s.fields = append(s.fields, field)
	}

	s.length = b.length

	if ce := s.logger.Check(zap.DebugLevel, "schema extended"); ce != nil {
		ce.Write(
			zap.Int("added", len(b.fields)),
			zap.Int("fields", len(s.fields)),
			zap.Uint("length", s.length))
	}

	return nil
}

// Len returns the total width of the schema in bits.
func (s *Schema) Len() uint {
	return s.length
}

// MaxWidth returns the maximum width the schema may grow to.
func (s *Schema) MaxWidth() uint {
	return s.maxWidth
}

// Fields returns a copy of the fields in declaration order.
func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	idx, ok := s.index[name]
	if !ok {
		return Field{}, false
	}

	return s.fields[idx], true
}

// Fingerprint hashes the layout of the schema. Two schemas with the same
// fields in the same order have the same fingerprint. Record.CopyFrom uses it
// to accept records of independently declared but identical schemas.
func (s *Schema) Fingerprint() uint64 {
	digest := xxhash.New()
	for _, field := range s.fields {
		// the length prefix keeps names containing separators apart
		_, _ = fmt.Fprintf(digest, "%d:%s/%s/%d/%d;", len(field.Name), field.Name, field.Kind, field.Offset, field.Length)
	}

	return digest.Sum64()
}

// Builder collects field declarations for a Schema. The first failing
// declaration is recorded; all following declarations are ignored.
type Builder struct {
	schema *Schema
	fields []Field
	names  map[string]struct{}
	length uint
	err    error
}

// Field declares a field of the given kind and width and returns the new
// total width of the schema.
func (b *Builder) Field(kind FieldKind, name string, width uint) (uint, error) {
	if b.err != nil {
		return b.length, b.err
	}

	if err := b.check(kind, name, width); err != nil {
		b.err = err
		return b.length, err
	}

	b.fields = append(b.fields, Field{
		Name:   name,
		Kind:   kind,
		Offset: b.length,
		Length: width,
	})

	b.names[name] = struct{}{}
	b.length += width

	return b.length, nil
}

func (b *Builder) check(kind FieldKind, name string, width uint) error {
	if !kind.valid() {
		return &InvalidFieldKindError{Kind: string(kind)}
	}

	if _, ok := b.schema.index[name]; ok {
		return &DuplicateFieldError{Name: name}
	}

	if _, ok := b.names[name]; ok {
		return &DuplicateFieldError{Name: name}
	}

	// INVARIANT: b.length <= maxWidth, the subtraction can not wrap
	if width > b.schema.maxWidth-b.length {
		return &WidthError{Name: name, Width: width, Total: b.length, Max: b.schema.maxWidth}
	}

	return nil
}

// Number declares a number field that is width bits wide.
func (b *Builder) Number(name string, width uint) uint {
	length, _ := b.Field(KindNumber, name, width)
	return length
}

// Boolean declares a single bit boolean field.
func (b *Builder) Boolean(name string) uint {
	length, _ := b.Field(KindBoolean, name, 1)
	return length
}

// Len returns the total width including the fields declared so far.
func (b *Builder) Len() uint {
	return b.length
}

// Err returns the first error recorded by this builder.
func (b *Builder) Err() error {
	return b.err
}
