// Package cipher implements the shift substitution applied to message text
// before it is stored and reversed before it is delivered.
//
// This is obfuscation, not encryption: the shift is fixed and guessable and
// there is no key management. Only ASCII letters rotate; accented and
// non-Latin letters are left as they are.
//
// Text is expected to be valid UTF-8. Invalid bytes come back as U+FFFD
// and do not survive a round trip.
package cipher

import "strings"

// DefaultShift is the rotation used by the message protocol.
const DefaultShift = 3

const alphabetSize = 26

// Codec pairs Encode and Decode for a single shift value. The zero value
// rotates by 0. A Codec is immutable and safe for concurrent use.
type Codec struct {
	shift int
}

// NewCodec returns a Codec that rotates letters by shift positions.
func NewCodec(shift int) Codec {
	return Codec{shift: normalize(shift)}
}

// Shift returns the normalized rotation, always in [0,26).
func (c Codec) Shift() int {
	return c.shift
}

// Encode rotates ASCII letters in text forward by the codec's shift.
func (c Codec) Encode(text string) string {
	return rotate(text, c.shift)
}

// Decode rotates ASCII letters in text back by the codec's shift.
func (c Codec) Decode(text string) string {
	return rotate(text, alphabetSize-c.shift)
}

// Encode rotates every ASCII letter in text forward by shift, preserving case.
func Encode(text string, shift int) string {
	return NewCodec(shift).Encode(text)
}

// Decode is the inverse of Encode for the same shift.
func Decode(text string, shift int) string {
	return NewCodec(shift).Decode(text)
}

func normalize(shift int) int {
	shift %= alphabetSize
	if shift < 0 {
		shift += alphabetSize
	}
	return shift
}

func rotate(text string, shift int) string {
	shift = normalize(shift)
	if shift == 0 || text == "" {
		return text
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+rune(shift))%alphabetSize
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+rune(shift))%alphabetSize
		}
		return r
	}, text)
}
