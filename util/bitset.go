package util

import (
	"iter"
	"math/bits"
)

const blockw = 32 // width of each block

// BitSet is a fixed-size set of small non-negative integers, used for sets of
// automaton states.
type BitSet struct {
	data []uint32
	len  uint
}

// NewBitSet returns an empty set that can hold the values 0 to `n-1`.
func NewBitSet(n int) *BitSet {
	return &BitSet{
		data: make([]uint32, divup(uint(n), blockw)),
		len:  uint(n),
	}
}

// divup performs the integer division (a / b) and rounds up the result.
func divup(a, b uint) uint {
	return (a + b - 1) / b
}

// Has reports whether `i` is an element of the set.
func (b *BitSet) Has(i int) bool {
	if i < 0 || uint(i) >= b.len {
		return false
	}
	return b.data[uint(i)/blockw]&mask(uint(i)) != 0
}

// Add inserts `i` into the set and reports whether it was not present before.
// The caller must ensure, that `i` is lower than the capacity, or else this function panics.
func (b *BitSet) Add(i int) bool {
	valindex := uint(i) / blockw
	m := mask(uint(i))

	if b.data[valindex]&m != 0 {
		return false
	}

	b.data[valindex] |= m

	return true
}

// Clear removes all elements without releasing memory.
func (b *BitSet) Clear() {
	clear(b.data)
}

// All returns an iterator over the elements in ascending order.
func (b *BitSet) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, v := range b.data {
			for v != 0 {
				lead := bits.LeadingZeros32(v)
				if !yield(i*blockw + lead) {
					return
				}
				v &^= 1 << (blockw - lead - 1)
			}
		}
	}
}

// mask returns the bit of `i` inside its block. Bits are stored from the most
// significant bit downwards.
func mask(i uint) uint32 {
	bitoff := i % blockw
	return uint32(1) << (blockw - bitoff - 1)
}
