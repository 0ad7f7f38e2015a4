package matchfinder

import "encoding/binary"

const (
	chainTableBits = 16
	chainMinLength = 4
)

// HashChain is a MatchFinder that chains all previous occurrences of a hash
// bucket together, walks the chain looking for the longest match, and defers
// to the next position when it has a clearly longer match (lazy matching).
// Each block is parsed independently.
type HashChain struct {
	// MaxDistance is the maximum distance (in bytes) to look back for
	// a match. The default is 65535.
	MaxDistance int

	// Depth is the number of chain links to follow at each position.
	// The default is 16.
	Depth int

	head [1 << chainTableBits]int32
	prev []int32
}

func (q *HashChain) Reset() {
	q.head = [1 << chainTableBits]int32{}
	q.prev = q.prev[:0]
}

func chainHash(u uint32) uint32 {
	return (u * 2654435761) >> (32 - chainTableBits)
}

// bestAt returns the longest match for position i, following at most Depth
// chain links. min bounds the downward extension of the match.
func (q *HashChain) bestAt(src []byte, i int, min int) absoluteMatch {
	var best absoluteMatch
	cv := binary.LittleEndian.Uint32(src[i:])
	candidate := int(q.head[chainHash(cv)]) - 1
	if candidate == i {
		candidate = int(q.prev[i]) - 1
	}

	for depth := 0; candidate >= 0 && depth < q.Depth; depth++ {
		if i-candidate > q.MaxDistance {
			break
		}

		if binary.LittleEndian.Uint32(src[candidate:]) == cv {
			m := extendMatch2(src, i, candidate, min)
			if m.End-m.Start > best.End-best.Start {
				best = m
			}
		}

		candidate = int(q.prev[candidate]) - 1
	}

	return best
}

func (q *HashChain) FindMatches(dst []Match, src []byte) []Match {
	if q.MaxDistance == 0 {
		q.MaxDistance = 65535
	}

	if q.Depth == 0 {
		q.Depth = 16
	}

	// Positions are stored as index + 1, so zero means an empty slot.
	for i := range q.head {
		q.head[i] = 0
	}

	if cap(q.prev) < len(src) {
		q.prev = make([]int32, len(src))
	} else {
		q.prev = q.prev[:len(src)]
	}

	if len(src) < 12 {
		return append(dst, Match{Unmatched: len(src)})
	}

	e := matchEmitter{Dst: dst}
	limit := len(src) - 8

	// Every position up to (but not including) nextInsert is linked into
	// the chains.
	nextInsert := 0
	insertUpTo := func(end int) {
		for ; nextInsert < end && nextInsert <= limit; nextInsert++ {
			h := chainHash(binary.LittleEndian.Uint32(src[nextInsert:]))
			q.prev[nextInsert] = q.head[h]
			q.head[h] = int32(nextInsert + 1)
		}
	}

	for i := 0; i <= limit; {
		insertUpTo(i + 1)
		m := q.bestAt(src, i, e.NextEmit)
		if m.End-m.Start < chainMinLength {
			i++
			continue
		}

		// Lazy matching: when the next position holds a clearly longer
		// match, emit this byte as a literal instead.
		if i+1 <= limit {
			insertUpTo(i + 2)
			if m2 := q.bestAt(src, i+1, e.NextEmit); m2.End-m2.Start > m.End-m.Start+1 {
				i++
				m = m2
			}
		}

		e.emit(m)
		insertUpTo(m.End)
		i = m.End
	}

	if e.NextEmit < len(src) {
		e.Dst = append(e.Dst, Match{
			Unmatched: len(src) - e.NextEmit,
		})
	}

	return e.Dst
}
