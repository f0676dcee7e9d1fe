package bitpack

import (
	"reflect"
	"slices"
	"strings"
)

// structTag names record fields on struct fields.
const structTag = "bitpack"

type structField struct {
	Name  string
	Type  reflect.Type
	Index []int
}

// structFields lists the exported fields of a struct type that can be bound
// to record fields, including fields promoted from embedded structs.
func structFields(ty reflect.Type) []structField {
	if ty.Kind() != reflect.Struct {
		panic("not a struct")
	}

	type queued struct {
		Type        reflect.Type
		ParentIndex []int
	}

	type candidate struct {
		Explicit bool
		Field    structField
	}

	// walk breadth first, so shallower fields are seen first
	queue := []queued{{Type: ty}}

	candidates := map[string][]candidate{}

	var order []string

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for idx := range item.Type.NumField() {
			fi := item.Type.Field(idx)
			if !fi.IsExported() {
				continue
			}

			name, explicit := tagName(fi)
			if name == "" {
				continue
			}

			// copy the parent index, siblings must not share a backing array
			parent := item.ParentIndex
			index := append(parent[:len(parent):len(parent)], fi.Index...)

			if fi.Anonymous && !explicit {
				if fi.Type.Kind() == reflect.Struct {
					queue = append(queue, queued{fi.Type, index})
				}

				continue
			}

			if len(candidates[name]) == 0 {
				order = append(order, name)
			}

			candidates[name] = append(candidates[name], candidate{
				Explicit: explicit,
				Field:    structField{Name: name, Type: fi.Type, Index: index},
			})
		}
	}

	var fields []structField

	for _, name := range order {
		found := candidates[name]

		// INVARIANT: bfs order sorts candidates by depth, shallowest first
		depth := len(found[0].Field.Index)
		visible := slices.DeleteFunc(slices.Clone(found), func(c candidate) bool {
			return len(c.Field.Index) != depth
		})

		if len(visible) == 1 {
			fields = append(fields, visible[0].Field)
			continue
		}

		explicit := slices.DeleteFunc(visible, func(c candidate) bool { return !c.Explicit })
		if len(explicit) == 1 {
			fields = append(fields, explicit[0].Field)
		}

		// ambiguous names at the same depth are dropped, as encoding/json does
	}

	return fields
}

// tagName returns the record field name of a struct field. An empty name
// means the field is skipped.
func tagName(fi reflect.StructField) (name string, explicit bool) {
	tag := fi.Tag.Get(structTag)

	switch {
	case tag == "":
		return fi.Name, false

	case tag == "-":
		return "", true
	}

	name, _, _ = strings.Cut(tag, ",")
	if name == "" {
		return fi.Name, false
	}

	return name, true
}
