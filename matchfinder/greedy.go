package matchfinder

import "encoding/binary"

const (
	greedyTableBits = 15
	greedyMinLength = 4
)

// Greedy is a MatchFinder that emits the first acceptable match it finds.
// It hashes 4-byte sequences into a single-entry table, so each position has
// at most one candidate. Each block is parsed independently.
type Greedy struct {
	// MaxDistance is the maximum distance (in bytes) to look back for
	// a match. The default is 65535.
	MaxDistance int

	table [1 << greedyTableBits]int32
}

func (g *Greedy) Reset() {
	g.table = [1 << greedyTableBits]int32{}
}

func greedyHash(u uint32) uint32 {
	return (u * 0x1E35A7BD) >> (32 - greedyTableBits)
}

func (g *Greedy) FindMatches(dst []Match, src []byte) []Match {
	if g.MaxDistance == 0 {
		g.MaxDistance = 65535
	}

	// Positions are stored as index + 1, so zero means an empty slot.
	for i := range g.table {
		g.table[i] = 0
	}

	if len(src) < 12 {
		return append(dst, Match{Unmatched: len(src)})
	}

	e := matchEmitter{Dst: dst}
	limit := len(src) - 8

	for i := 0; i <= limit; {
		h := greedyHash(binary.LittleEndian.Uint32(src[i:]))
		candidate := int(g.table[h]) - 1
		g.table[h] = int32(i + 1)
		if candidate < 0 || i-candidate > g.MaxDistance ||
			binary.LittleEndian.Uint32(src[candidate:]) != binary.LittleEndian.Uint32(src[i:]) {
			i++
			continue
		}

		m := extendMatch2(src, i, candidate, e.NextEmit)
		if m.End-m.Start < greedyMinLength {
			i++
			continue
		}

		e.emit(m)

		// Seed the table with a few positions covered by the match, so that
		// later data can refer into it.
		for j := i + 1; j < m.End && j <= limit; j += 3 {
			g.table[greedyHash(binary.LittleEndian.Uint32(src[j:]))] = int32(j + 1)
		}

		i = m.End
	}

	if e.NextEmit < len(src) {
		e.Dst = append(e.Dst, Match{
			Unmatched: len(src) - e.NextEmit,
		})
	}

	return e.Dst
}
