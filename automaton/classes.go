package automaton

// ByteClasses partitions the 256 byte values into equivalence classes: bytes
// of the same class always lead to the same state. Classes are numbered
// contiguously from zero and every class is a contiguous range of bytes.
type ByteClasses struct {
	classes [256]uint8
	n       int
}

// SingletonClasses returns the trivial partition with one class per byte.
func SingletonClasses() ByteClasses {
	var c ByteClasses
	for i := range c.classes {
		c.classes[i] = uint8(i)
	}
	c.n = 256
	return c
}

// NewByteClasses builds a partition from a set of boundaries. A byte `b`
// with `bounds[b]` set starts a new class; byte 0 always does.
func NewByteClasses(bounds *[256]bool) ByteClasses {
	var c ByteClasses
	class := 0
	for b := 0; b < 256; b++ {
		if b > 0 && bounds[b] {
			class++
		}
		c.classes[b] = uint8(class)
	}
	c.n = class + 1
	return c
}

// Get returns the class of byte `b`.
func (c *ByteClasses) Get(b byte) int {
	return int(c.classes[b])
}

// Len returns the number of classes. The zero value has no classes.
func (c *ByteClasses) Len() int {
	return c.n
}

// IsSingleton reports whether every byte is its own class.
func (c *ByteClasses) IsSingleton() bool {
	return c.n == 256
}

// Representatives returns the smallest byte of every class, in ascending order.
func (c *ByteClasses) Representatives() []byte {
	reps := make([]byte, 0, c.n)
	for b := 0; b < 256; b++ {
		if b == 0 || c.classes[b] != c.classes[b-1] {
			reps = append(reps, byte(b))
		}
	}
	return reps
}
