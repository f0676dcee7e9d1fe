package bitpack

import (
	"errors"
	"fmt"
	"strconv"
)

// ParseRaw parses a raw value written as a Go integer literal, for example
// "182", "0xB6", "0o266" or "0b1011_0110".
func ParseRaw(text string) (uint64, error) {
	value, err := strconv.ParseUint(text, 0, 64)
	return handleSyntaxErr(text, value, err)
}

func handleSyntaxErr[T any](inputValue string, value T, err error) (T, error) {
	var zeroValue T
	if errors.Is(err, strconv.ErrSyntax) {
		err := fmt.Errorf("parse %q: %w", inputValue, err)
		return zeroValue, errors.Join(err, ErrTypeMismatch)
	}

	if err != nil {
		return zeroValue, err
	}

	return value, nil
}
