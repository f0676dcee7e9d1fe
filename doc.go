// Package bitpack packs named bit fields into a single unsigned integer and
// unpacks them again.
//
// A [Schema] is declared as an ordered list of fields. Each field is either a
// number of a fixed width or a boolean flag. The first declared field holds
// the most significant bits of the raw value, the last declared field the
// least significant bits:
//
//	codec, err := bitpack.New(func(b *bitpack.Builder) {
//	    b.Number("a", 3)
//	    b.Boolean("b")
//	    b.Number("c", 4)
//	}, bitpack.WithRaw(0b101_1_0110))
//
// [Codec.Decode] unpacks the raw value into a [Record]. The record is cached
// and editable; [Codec.Encode] packs the current state of the record:
//
//	record := codec.Decode()
//	_ = record.SetBool("b", false)
//	raw := codec.Encode() // 0b101_0_0110
//
// Supplying a new raw value with [Codec.SetRaw] or [Codec.Push] drops the
// cached record, including any edits made to it.
//
// Records can be copied into and out of structs with [Record.Unmarshal] and
// [Record.Marshal], matching fields by their `bitpack` struct tag.
package bitpack
