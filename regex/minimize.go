package regex

import (
	"encoding/binary"

	"github.com/magnetde/starlark-regen/automaton"
)

// minimize merges equivalent states of the DFA.
// The states are split by partition refinement: initially, states are only distinguished
// by whether they accept at the end of the input. A block is split as long as its states have
// transitions into different blocks.
func minimize(d *DFA) *DFA {
	n := d.Len()

	block := make([]uint32, n)
	for s := firstState; s < n; s++ {
		if d.eoi[s] {
			block[s] = firstState
		} else {
			block[s] = firstState + 1
		}
	}
	count := -1

	var key []byte
	for {
		sigs := make(map[string]uint32)
		next := make([]uint32, n)

		for s := firstState; s < n; s++ {
			key = binary.LittleEndian.AppendUint32(key[:0], block[s])
			for c := 0; c < d.stride; c++ {
				key = binary.LittleEndian.AppendUint32(key, block[d.trans[s*d.stride+c]])
			}

			id, ok := sigs[string(key)]
			if !ok {
				id = uint32(firstState + len(sigs))
				sigs[string(key)] = id
			}
			next[s] = id
		}

		block = next
		if len(sigs) == count {
			break
		}
		count = len(sigs)
	}

	// The first state of every block represents the block.
	first := make(map[uint32]automaton.StateID)
	repr := make([]automaton.StateID, n)
	for s := firstState; s < n; s++ {
		r, ok := first[block[s]]
		if !ok {
			r = automaton.StateID(s)
			first[block[s]] = r
		}
		repr[s] = r
	}

	return d.remap(repr)
}
