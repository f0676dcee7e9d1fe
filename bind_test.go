package bitpack

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type Mode string

func (m *Mode) UnmarshalText(text []byte) error {
	*m = Mode("mode-" + string(text))
	return nil
}

func (m Mode) MarshalText() ([]byte, error) {
	text, ok := strings.CutPrefix(string(m), "mode-")
	if !ok {
		return nil, errors.New("invalid mode")
	}

	return []byte(text), nil
}

// Level only implements encoding.TextMarshaler.
type Level uint8

func (l Level) MarshalText() ([]byte, error) {
	switch l {
	case 0:
		return []byte("low"), nil
	case 1:
		return []byte("medium"), nil
	default:
		return []byte("high"), nil
	}
}

func TestUnmarshal(t *testing.T) {
	//goland:noinspection ALL
	type Header struct {
		A    uint8 `bitpack:"a"`
		Flag bool  `bitpack:"b"`
		C    int
		Skip uint8 `bitpack:"-"`

		// not exported, must not be set
		note uint8
	}

	codec, err := New(func(b *Builder) {
		b.Number("a", 3)
		b.Boolean("b")
		b.Number("C", 4)
		b.Number("Skip", 4)
	}, WithRaw(0b101_1_0110_1111))
	require.NoError(t, err)

	var header Header
	require.NoError(t, codec.Decode().Unmarshal(&header))
	require.Equal(t, header, Header{A: 5, Flag: true, C: 6})
}

func TestUnmarshal_Embedded(t *testing.T) {
	type Flags struct {
		B bool `bitpack:"b"`
	}

	type Header struct {
		Flags
		A uint16 `bitpack:"a"`
	}

	var header Header
	require.NoError(t, newABC(t, WithRaw(0xB6)).Decode().Unmarshal(&header))
	require.Equal(t, header, Header{Flags: Flags{B: true}, A: 5})
}

func TestUnmarshal_ShallowFieldWins(t *testing.T) {
	type Inner struct {
		A uint8 `bitpack:"a"`
	}

	type Header struct {
		Inner
		C uint8 `bitpack:"a"`
	}

	var header Header
	require.NoError(t, newABC(t, WithRaw(0xB6)).Decode().Unmarshal(&header))
	require.Equal(t, header, Header{C: 5})
}

func TestUnmarshal_Pointer(t *testing.T) {
	type Header struct {
		A *uint16 `bitpack:"a"`
		B *bool   `bitpack:"b"`
		D *uint16 `bitpack:"d"`
	}

	var header Header
	require.NoError(t, newABC(t, WithRaw(0xB6)).Decode().Unmarshal(&header))

	require.NotNil(t, header.A)
	require.Equal(t, *header.A, uint16(5))
	require.NotNil(t, header.B)
	require.True(t, *header.B)

	// no record field
	require.Nil(t, header.D)
}

func TestUnmarshal_TextUnmarshaler(t *testing.T) {
	type Header struct {
		A Mode `bitpack:"a"`
		B Mode `bitpack:"b"`
	}

	var header Header
	require.NoError(t, newABC(t, WithRaw(0xB6)).Decode().Unmarshal(&header))
	require.Equal(t, header, Header{A: "mode-5", B: "mode-true"})
}

func TestUnmarshal_MarshalTextOnly(t *testing.T) {
	codec, err := New(func(b *Builder) {
		b.Number("level", 2)
		b.Number("next", 2)
	}, WithRaw(0b10_00))
	require.NoError(t, err)

	type Header struct {
		Level Level  `bitpack:"level"`
		Next  *Level `bitpack:"next"`
	}

	var header Header
	require.NoError(t, codec.Decode().Unmarshal(&header))
	require.Equal(t, header.Level, Level(2))
	require.NotNil(t, header.Next)
	require.Equal(t, *header.Next, Level(0))

	next := Level(1)
	require.NoError(t, codec.Decode().Marshal(&Header{Level: 3, Next: &next}))
	require.Equal(t, codec.Encode(), uint64(0b11_01))
}

func TestUnmarshal_PointerToTextUnmarshaler(t *testing.T) {
	var header struct {
		A *Mode `bitpack:"a"`
	}

	require.NoError(t, newABC(t, WithRaw(0xB6)).Decode().Unmarshal(&header))
	require.NotNil(t, header.A)
	require.Equal(t, *header.A, Mode("mode-5"))
}

func TestUnmarshal_Range(t *testing.T) {
	codec, err := New(func(b *Builder) {
		b.Number("large", 12)
	}, WithRaw(300))
	require.NoError(t, err)

	var small struct {
		Large int8 `bitpack:"large"`
	}

	err = codec.Decode().Unmarshal(&small)
	require.ErrorIs(t, err, strconv.ErrRange)

	var large struct {
		Large int16 `bitpack:"large"`
	}

	require.NoError(t, codec.Decode().Unmarshal(&large))
	require.Equal(t, large.Large, int16(300))
}

func TestUnmarshal_KindMismatch(t *testing.T) {
	var header struct {
		A bool  `bitpack:"a"`
		B uint8 `bitpack:"b"`
	}

	err := newABC(t, WithRaw(0xB6)).Decode().Unmarshal(&header)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestUnmarshal_NotSupported(t *testing.T) {
	record := newABC(t).Decode()

	var notSupported NotSupportedError

	var header struct {
		A float64 `bitpack:"a"`
	}

	err := record.Unmarshal(&header)
	require.ErrorAs(t, err, &notSupported)

	var nested struct {
		Inner struct{ A uint8 } `bitpack:"inner"`
	}

	err = record.Unmarshal(&nested)
	require.ErrorAs(t, err, &notSupported)

	for _, target := range []any{nil, header, &notSupported.Type, (*struct{})(nil)} {
		err = record.Unmarshal(target)
		require.ErrorAs(t, err, &notSupported, "%T", target)
	}
}

func TestMarshal(t *testing.T) {
	type Header struct {
		A    uint8 `bitpack:"a"`
		Flag bool  `bitpack:"b"`
		C    int   `bitpack:"c"`
		D    uint8 `bitpack:"d"`
	}

	codec := newABC(t)
	require.NoError(t, codec.Decode().Marshal(&Header{A: 2, Flag: true, C: 9, D: 1}))
	require.Equal(t, codec.Encode(), uint64(0b010_1_1001))

	var header Header
	require.NoError(t, codec.Decode().Unmarshal(&header))
	require.Equal(t, header, Header{A: 2, Flag: true, C: 9})
}

func TestMarshal_PointerAndText(t *testing.T) {
	type Header struct {
		A *uint8 `bitpack:"a"`
		B Mode   `bitpack:"b"`
		C Mode   `bitpack:"c"`
	}

	codec := newABC(t, WithRaw(0b111_0_0000))
	require.NoError(t, codec.Decode().Marshal(&Header{B: "mode-true", C: "mode-0xA"}))

	// nil pointers keep the current value
	require.Equal(t, codec.Decode().String(), "a=7 b=true c=10")
}

func TestMarshal_Atomic(t *testing.T) {
	type Header struct {
		A uint8 `bitpack:"a"`
		B uint8 `bitpack:"b"`
	}

	codec := newABC(t, WithRaw(0xB6))
	record := codec.Decode()

	err := record.Marshal(&Header{A: 1, B: 1})
	require.ErrorIs(t, err, ErrTypeMismatch)
	require.Equal(t, record.String(), "a=5 b=true c=6")

	type Bad struct {
		A Mode `bitpack:"a"`
	}

	err = record.Marshal(&Bad{A: "not a mode"})
	require.ErrorContains(t, err, "invalid mode")

	err = record.Marshal(&Bad{A: "mode-five"})
	require.ErrorIs(t, err, strconv.ErrSyntax)
	require.Equal(t, record.String(), "a=5 b=true c=6")
}
