package bitpack

// FieldKind describes how the bits of a field are interpreted.
type FieldKind string

const (
	// KindNumber fields decode to an unsigned integer right aligned at bit 0.
	KindNumber FieldKind = "number"

	// KindBoolean fields decode to true if any of their bits is set.
	KindBoolean FieldKind = "boolean"
)

func (k FieldKind) valid() bool {
	return k == KindNumber || k == KindBoolean
}

// ParseFieldKind resolves the name of a field kind. It returns an
// *InvalidFieldKindError for any name but "number" and "boolean".
func ParseFieldKind(name string) (FieldKind, error) {
	kind := FieldKind(name)
	if !kind.valid() {
		return "", &InvalidFieldKindError{Kind: name}
	}

	return kind, nil
}
