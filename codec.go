package bitpack

import (
	"reflect"

	"go.uber.org/zap"
)

// Codec binds a Schema to a raw value. Decode unpacks the raw value into a
// Record, Encode packs the current state of that Record back into a raw
// value. A Codec is not safe for concurrent use.
type Codec struct {
	schema *Schema
	raw    uint64
	record *Record
	logger *zap.Logger
}

// New creates a Codec with the fields declared by fn. Use WithRaw to supply
// the initial raw value, it defaults to zero.
func New(fn DeclareFunc, opts ...Option) (*Codec, error) {
	schema, err := NewSchema(fn, opts...)
	if err != nil {
		return nil, err
	}

	return NewWithSchema(schema, opts...)
}

// NewWithSchema creates a Codec for an existing schema. Codecs created from
// the same schema share it: fields declared through any of them are seen by
// all. WithMaxWidth has no effect here, the schema keeps its own maximum.
func NewWithSchema(schema *Schema, opts ...Option) (*Codec, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	codec := &Codec{
		schema: schema,
		logger: cfg.logger,
	}

	if cfg.hasRaw {
		codec.Push(cfg.raw)
	}

	return codec, nil
}

// Declare extends the schema of the codec. A cached Record keeps its values
// and gains zero values for the new fields.
func (c *Codec) Declare(fn DeclareFunc) error {
	return c.schema.Declare(fn)
}

// SetRaw replaces the raw value and drops the cached Record. value must be a
// non-negative integer of any Go integer type, otherwise a *TypeMismatchError
// is returned and the codec is left unchanged.
func (c *Codec) SetRaw(value any) error {
	raw, err := toUint64(value)
	if err != nil {
		return err
	}

	c.Push(raw)
	return nil
}

// Push replaces the raw value and drops the cached Record.
func (c *Codec) Push(raw uint64) *Codec {
	if ce := c.logger.Check(zap.DebugLevel, "raw value replaced"); ce != nil {
		ce.Write(
			zap.Uint64("raw", raw),
			zap.Bool("dropped", c.record != nil))
	}

	c.raw = raw
	c.record = nil

	return c
}

// Raw returns the last raw value that was set. Decode and Encode do not
// modify it.
func (c *Codec) Raw() uint64 {
	return c.raw
}

// Len returns the width of the schema in bits.
func (c *Codec) Len() uint {
	return c.schema.Len()
}

// Schema returns the schema of the codec.
func (c *Codec) Schema() *Schema {
	return c.schema
}

// Decode returns the Record of the current raw value. The Record is computed
// on the first call and the same Record is returned until the raw value is
// replaced, so changes made to it are seen by Encode.
func (c *Codec) Decode() *Record {
	if c.record != nil {
		c.record.grow()
		return c.record
	}

	total := c.schema.length
	values := make([]uint64, len(c.schema.fields))

	for idx, field := range c.schema.fields {
		shift := field.shift(total)
		bits := c.raw & Mask(shift, field.Length)

		switch field.Kind {
		case KindBoolean:
			if bits != 0 {
				values[idx] = 1
			}

		case KindNumber:
			values[idx] = bits >> shift
		}
	}

	c.record = &Record{schema: c.schema, values: values}

	if ce := c.logger.Check(zap.DebugLevel, "raw value decoded"); ce != nil {
		ce.Write(
			zap.Uint64("raw", c.raw),
			zap.Int("fields", len(values)))
	}

	return c.record
}

// Encode packs the values of the Record returned by Decode into a raw value.
// Bits of the raw value above Len are not carried over.
func (c *Codec) Encode() uint64 {
	record := c.Decode()
	total := c.schema.length

	var result uint64
	for idx, field := range c.schema.fields {
		value := record.values[idx]

		switch field.Kind {
		case KindBoolean:
			mask := field.mask(total)
			if value == 1 {
				result |= mask
			} else {
				result &^= mask
			}

		case KindNumber:
			value &= Mask(0, field.Length)
			result |= value << field.shift(total)
		}
	}

	return result
}

// toUint64 converts any non-negative integer to an uint64.
func toUint64(value any) (uint64, error) {
	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue := rv.Int()
		if intValue < 0 {
			return 0, &TypeMismatchError{Want: "non-negative integer", Value: value}
		}

		return uint64(intValue), nil

	default:
		return 0, &TypeMismatchError{Want: "non-negative integer", Value: value}
	}
}
