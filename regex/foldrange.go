package regex

import (
	"slices"
	"unicode"
)

const (
	// minFold is the smallest character, that has a different case.
	minFold = 0x0041

	// maxFoldUnicode is the largest character, that has a different case.
	maxFoldUnicode = 0x1e943
)

// foldClass returns the character class of all cases of `r` as sorted pairs of ranges.
// If `ascii` is set to true, only the cases of ASCII letters are considered, as in byte patterns.
func foldClass(r rune, ascii bool) []rune {
	if r < minFold || r > maxFoldUnicode {
		return []rune{r, r}
	}

	var orbit []rune
	if ascii {
		orbit = append(orbit, r)
		if f := simpleFoldASCII(r); f != r {
			orbit = append(orbit, f)
		}
	} else {
		orbit = foldOrbit(r)
	}

	slices.Sort(orbit)

	// Merge neighbouring characters, e.g. the orbit of 'k' is [K k U+212A].
	class := make([]rune, 0, 2*len(orbit))
	for _, c := range orbit {
		if n := len(class); n > 0 && class[n-1]+1 == c {
			class[n-1] = c
			continue
		}
		class = append(class, c, c)
	}

	return class
}

// foldOrbit returns all characters, that are equal to `r` under simple case folding, including `r`.
func foldOrbit(r rune) []rune {
	orbit := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		orbit = append(orbit, f)
	}
	return orbit
}

// simpleFoldASCII is the equivalent function of `unicode.SimpleFold` limited to ASCII characters.
func simpleFoldASCII(c rune) rune {
	switch {
	case inRange('A', 'Z', c):
		return c - 'A' + 'a'
	case inRange('a', 'z', c):
		return c - 'a' + 'A'
	default:
		return c
	}
}

// clipClass restricts the ranges of a sorted class to characters not larger than `limit`.
func clipClass(r []rune, limit rune) []rune {
	res := make([]rune, 0, len(r))
	for i := 0; i+1 < len(r); i += 2 {
		lo, hi := r[i], r[i+1]
		if lo > limit {
			break
		}
		res = append(res, lo, min(hi, limit))
	}
	return res
}
