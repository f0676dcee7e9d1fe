package bitpack

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"sync"
)

// A binder moves a value between a record entry and a struct field.
// Either direction may be nil if the struct field type does not support it.
type binder struct {
	load  func(r *Record, idx int, target reflect.Value) error
	store func(r *Record, idx int, source reflect.Value) error
}

type boundField struct {
	structField
	binder binder
}

type plan []boundField

var tyTextUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()
var tyTextMarshaler = reflect.TypeFor[encoding.TextMarshaler]()

// Cache for plans, indexed by struct type
var plans sync.Map

// Unmarshal copies the values of the record into the struct target points to.
// Struct fields are matched by their `bitpack:"name"` tag or their Go name.
// Record fields without a struct field and struct fields without a record
// field are ignored.
func (r *Record) Unmarshal(target any) error {
	targetValue, err := structValue(target)
	if err != nil {
		return err
	}

	p, err := planOf(targetValue.Type())
	if err != nil {
		return err
	}

	for _, field := range p {
		idx, err := r.lookup(field.Name)
		if err != nil {
			continue
		}

		if field.binder.load == nil {
			return fmt.Errorf("load field %q: %w", field.Name, NotSupportedError{Type: field.Type})
		}

		fieldValue := targetValue.FieldByIndex(field.Index)
		if err := field.binder.load(r, idx, fieldValue); err != nil {
			return fmt.Errorf("load field %q into %q: %w", field.Name, targetValue.Type(), err)
		}
	}

	return nil
}

// Marshal copies the fields of the struct source points to into the record.
// It uses the same matching rules as Unmarshal. On error the record is not
// modified.
func (r *Record) Marshal(source any) error {
	sourceValue, err := structValue(source)
	if err != nil {
		return err
	}

	p, err := planOf(sourceValue.Type())
	if err != nil {
		return err
	}

	staged := &Record{schema: r.schema, values: slices.Clone(r.values)}

	for _, field := range p {
		idx, err := staged.lookup(field.Name)
		if err != nil {
			continue
		}

		if field.binder.store == nil {
			return fmt.Errorf("store field %q: %w", field.Name, NotSupportedError{Type: field.Type})
		}

		fieldValue := sourceValue.FieldByIndex(field.Index)
		if err := field.binder.store(staged, idx, fieldValue); err != nil {
			return fmt.Errorf("store field %q from %q: %w", field.Name, sourceValue.Type(), err)
		}
	}

	copy(r.values, staged.values)

	return nil
}

func structValue(ptr any) (reflect.Value, error) {
	value := reflect.ValueOf(ptr)
	if value.Kind() != reflect.Pointer || value.IsNil() || value.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, NotSupportedError{Type: reflect.TypeOf(ptr)}
	}

	return value.Elem(), nil
}

func planOf(ty reflect.Type) (plan, error) {
	if cached, ok := plans.Load(ty); ok {
		return cached.(plan), nil
	}

	var p plan
	for _, field := range structFields(ty) {
		b, err := binderOf(field.Type)
		if err != nil {
			return nil, fmt.Errorf("binder for field %q: %w", field.Name, err)
		}

		p = append(p, boundField{structField: field, binder: b})
	}

	plans.Store(ty, p)

	return p, nil
}

// binderOf prefers the text form for types implementing both text
// interfaces. Otherwise the binder of the kind is used and the text
// methods only step in if the kind itself is not supported.
func binderOf(ty reflect.Type) (binder, error) {
	text := makeTextBinder(ty)
	if text.load != nil && text.store != nil {
		return text, nil
	}

	b, err := kindBinderOf(ty)
	if err != nil {
		if text.load == nil && text.store == nil {
			return binder{}, err
		}

		return text, nil
	}

	return b, nil
}

func kindBinderOf(ty reflect.Type) (binder, error) {
	switch ty.Kind() {
	case reflect.Bool:
		return binder{load: loadBool, store: storeAny}, nil

	case reflect.Int:
		return makeIntBinder(math.MaxInt), nil

	case reflect.Int8:
		return makeIntBinder(math.MaxInt8), nil

	case reflect.Int16:
		return makeIntBinder(math.MaxInt16), nil

	case reflect.Int32:
		return makeIntBinder(math.MaxInt32), nil

	case reflect.Int64:
		return makeIntBinder(math.MaxInt64), nil

	case reflect.Uint:
		return makeIntBinder(math.MaxUint), nil

	case reflect.Uint8:
		return makeIntBinder(math.MaxUint8), nil

	case reflect.Uint16:
		return makeIntBinder(math.MaxUint16), nil

	case reflect.Uint32:
		return makeIntBinder(math.MaxUint32), nil

	case reflect.Uint64:
		return makeIntBinder(math.MaxUint64), nil

	case reflect.Pointer:
		return makePointerBinder(ty)

	default:
		return binder{}, NotSupportedError{Type: ty}
	}
}

func loadBool(r *Record, idx int, target reflect.Value) error {
	boolValue, err := r.boolAt(idx)
	if err != nil {
		return err
	}

	target.SetBool(boolValue)
	return nil
}

func storeAny(r *Record, idx int, source reflect.Value) error {
	return r.setAt(idx, source.Interface())
}

func makeIntBinder(maxValue uint64) binder {
	load := func(r *Record, idx int, target reflect.Value) error {
		uintValue, err := r.uintAt(idx)
		if err != nil {
			return err
		}

		if uintValue > maxValue {
			return fmt.Errorf("invalid %s value %d: %w", target.Type(), uintValue, strconv.ErrRange)
		}

		if target.CanInt() {
			target.SetInt(int64(uintValue))
		} else {
			target.SetUint(uintValue)
		}

		return nil
	}

	return binder{load: load, store: storeAny}
}

func makePointerBinder(ty reflect.Type) (binder, error) {
	pointeeType := ty.Elem()

	pointee, err := binderOf(pointeeType)
	if err != nil {
		return binder{}, err
	}

	var b binder

	if pointee.load != nil {
		b.load = func(r *Record, idx int, target reflect.Value) error {
			// newValue is a pointer to a new instance of the pointeeType
			newValue := reflect.New(pointeeType)
			if err := pointee.load(r, idx, newValue.Elem()); err != nil {
				return err
			}

			target.Set(newValue)
			return nil
		}
	}

	if pointee.store != nil {
		b.store = func(r *Record, idx int, source reflect.Value) error {
			// nil pointers leave the record untouched
			if source.IsNil() {
				return nil
			}

			return pointee.store(r, idx, source.Elem())
		}
	}

	return b, nil
}

// makeTextBinder binds types implementing encoding.TextUnmarshaler and
// encoding.TextMarshaler. Numbers use their decimal representation,
// booleans "true" and "false".
func makeTextBinder(ty reflect.Type) binder {
	var b binder

	if reflect.PointerTo(ty).Implements(tyTextUnmarshaler) {
		b.load = func(r *Record, idx int, target reflect.Value) error {
			m := target.Addr().Interface().(encoding.TextUnmarshaler)
			return m.UnmarshalText([]byte(r.formatAt(idx)))
		}
	}

	if ty.Implements(tyTextMarshaler) {
		b.store = func(r *Record, idx int, source reflect.Value) error {
			m := source.Interface().(encoding.TextMarshaler)

			text, err := m.MarshalText()
			if err != nil {
				return fmt.Errorf("marshal text: %w", err)
			}

			if r.schema.fields[idx].Kind == KindBoolean {
				boolValue, err := strconv.ParseBool(string(text))
				if err != nil {
					_, err = handleSyntaxErr(string(text), false, err)
					return err
				}

				return r.setAt(idx, boolValue)
			}

			uintValue, err := ParseRaw(string(text))
			if err != nil {
				return err
			}

			return r.setAt(idx, uintValue)
		}
	}

	return b
}
