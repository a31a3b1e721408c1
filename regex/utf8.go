package regex

import "unicode/utf8"

const (
	surrogateMin = 0xd800
	surrogateMax = 0xdfff
)

// byteRange is an inclusive range of bytes.
type byteRange struct {
	lo, hi byte
}

// utf8Sequence is a sequence of byte ranges that matches the UTF-8 encoding of a range of characters.
// The byte at position i of an encoding must lie in the i-th range.
type utf8Sequence []byteRange

// maxScalar contains the largest character, that is encoded with 1, 2 and 3 bytes.
var maxScalar = [...]rune{0x7f, 0x7ff, 0xffff}

// utf8Sequences splits the range of characters from `lo` to `hi` into sequences of byte ranges,
// so that the union of the sequences matches exactly the UTF-8 encodings of the characters in the range.
// Surrogates are never matched. The sequences are returned in ascending order.
func utf8Sequences(lo, hi rune) []utf8Sequence {
	if hi > utf8.MaxRune {
		hi = utf8.MaxRune
	}

	var res []utf8Sequence

	type runeRange struct{ lo, hi rune }
	stack := []runeRange{{lo, hi}}

outer:
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

	inner:
		for {
			// Surrogates have no UTF-8 encoding.
			if r.lo < surrogateMin && r.hi > surrogateMax {
				stack = append(stack, runeRange{surrogateMax + 1, r.hi})
				r.hi = surrogateMin - 1
			}
			if inRange(surrogateMin, surrogateMax, r.lo) {
				r.lo = surrogateMax + 1
			}
			if inRange(surrogateMin, surrogateMax, r.hi) {
				r.hi = surrogateMin - 1
			}
			if r.lo > r.hi {
				continue outer
			}

			// Split at the boundaries of the encoding length.
			for _, m := range maxScalar {
				if r.lo <= m && m < r.hi {
					stack = append(stack, runeRange{m + 1, r.hi})
					r.hi = m
					continue inner
				}
			}

			if r.hi < utf8.RuneSelf {
				res = append(res, utf8Sequence{{byte(r.lo), byte(r.hi)}})
				continue outer
			}

			// Split until all continuation bytes cover their full range.
			for i := 1; i < utf8.UTFMax; i++ {
				m := rune(1)<<(6*i) - 1
				if r.lo&^m != r.hi&^m {
					if r.lo&m != 0 {
						stack = append(stack, runeRange{(r.lo | m) + 1, r.hi})
						r.hi = r.lo | m
						continue inner
					}
					if r.hi&m != m {
						stack = append(stack, runeRange{r.hi &^ m, r.hi})
						r.hi = (r.hi &^ m) - 1
						continue inner
					}
				}
			}

			var los, his [utf8.UTFMax]byte
			n := utf8.EncodeRune(los[:], r.lo)
			m := utf8.EncodeRune(his[:], r.hi)
			if n != m {
				panic("regex: invalid UTF-8 range split")
			}

			seq := make(utf8Sequence, n)
			for i := range seq {
				seq[i] = byteRange{los[i], his[i]}
			}
			res = append(res, seq)

			continue outer
		}
	}

	return res
}

// inRange checks if `c` lies in the range from `lo` to `hi`.
func inRange(lo, hi, c rune) bool {
	return lo <= c && c <= hi
}
