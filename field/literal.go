package field

import "github.com/soypat/glgl/math/ms3"

// LiteralFallback is the value of samples not covered by a Literal's digits.
const LiteralFallback = 1

// Literal fills the field from a string of decimal digits in field index order.
// Samples past the end of Digits, and bytes that are not decimal digits,
// take the value LiteralFallback.
type Literal struct {
	Digits string
}

// Generate fills dst from the digits. It never fails.
func (l Literal) Generate(dst *Field, _ ms3.Vec) error {
	for i := range dst.Data {
		dst.Data[i] = LiteralFallback
		if i < len(l.Digits) {
			if c := l.Digits[i]; c >= '0' && c <= '9' {
				dst.Data[i] = float32(c - '0')
			}
		}
	}
	return nil
}
