package brotli

import "math/bits"

/* Copyright 2013 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Utilities for building Huffman decoding tables. */

const huffmanMaxCodeLength = 15

/* Maximum possible Huffman table size for an alphabet size of (index * 32),
   max code length 15 and root table bits 8. */
var kMaxHuffmanTableSize = []uint16{
	256,
	402,
	436,
	468,
	500,
	534,
	566,
	598,
	630,
	662,
	694,
	726,
	758,
	790,
	822,
	854,
	886,
	920,
	952,
	984,
	1016,
	1048,
	1080,
	1112,
	1144,
	1176,
	1208,
	1240,
	1272,
	1304,
	1336,
	1368,
	1400,
	1432,
	1464,
	1496,
	1528,
}

/* BROTLI_NUM_BLOCK_LEN_SYMBOLS == 26 */
const huffmanMaxSize26 = 396

/* MAX_BLOCK_TYPE_SYMBOLS == 258 */
const huffmanMaxSize258 = 632

/* MAX_CONTEXT_MAP_SYMBOLS == 272 */
const huffmanMaxSize272 = 646

const huffmanMaxCodeLengthCodeLength = 5

/* Do not create this struct directly - use the ConstructHuffmanCode
   constructor below! */
type huffmanCode struct {
	bits  byte
	value uint16
}

func constructHuffmanCode(bits byte, value uint16) huffmanCode {
	var h huffmanCode
	h.bits = bits
	h.value = value
	return h
}

/* Builds Huffman lookup table assuming code lengths are in symbol order.
   Returns size of resulting table. */

/* Builds a simple Huffman table. The |num_symbols| parameter is to be
   interpreted as follows: 0 means 1 symbol, 1 means 2 symbols,
   2 means 3 symbols, 3 means 4 symbols with lengths [2, 2, 2, 2],
   4 means 4 symbols with lengths [1, 2, 3, 3]. */

/* Contains a collection of Huffman trees with the same alphabet size. */
/* max_symbol is needed due to simple codes since log2(alphabet_size) could be
   greater than log2(max_symbol). */
type huffmanTreeGroup struct {
	htrees        [][]huffmanCode
	codes         []huffmanCode
	alphabet_size uint16
	max_symbol    uint16
	num_htrees    uint16
}

const reverseBitsMax = 8

const reverseBitsBase = 0

func reverseBits8(num uint64) uint64 {
	return uint64(bits.Reverse8(uint8(num)))
}

/* Most significant bit of the first processed key bit. */
const reverseBitsLowest = (uint64(1) << (reverseBitsMax - 1 + reverseBitsBase))

/* Stores code in table[0], table[step], table[2*step], ..., table[end-step] */
/* Assumes that end is an integer multiple of step */
func replicateValue(table []huffmanCode, step int, end int, code huffmanCode) {
	for {
		end -= step
		table[end] = code
		if end <= 0 {
			break
		}
	}
}

/* Returns the table width of the next 2nd level table. |count| is the histogram
   of bit lengths for the remaining symbols, |len| is the code length of the
   next processed symbol. */
func nextTableBitSize(count []uint16, len int, rootBits int) int {
	var left int = 1 << uint(len-rootBits)
	for len < huffmanMaxCodeLength {
		left -= int(count[len])
		if left <= 0 {
			break
		}

		len++
		left <<= 1
	}

	return len - rootBits
}

func buildCodeLengthsHuffmanTable(table []huffmanCode, codeLengths []byte, count []uint16) {
	var code huffmanCode /* current table entry */
	var symbol int       /* symbol index in original or sorted table */
	var key uint64       /* prefix code */
	var keyStep uint64   /* prefix code addend */
	var step int         /* step size to replicate values in current table */
	var tableSize int    /* size of current table */
	var sorted [codeLengthCodes]int
	/* offsets in sorted table for each length */
	var offset [huffmanMaxCodeLengthCodeLength + 1]int
	var bits int
	var bitsCount int

	/* Symbols sorted by code length. */
	/* Generate offsets into sorted symbol table by code length. */
	symbol = -1

	bits = 1
	var i int
	for i = 0; i < huffmanMaxCodeLengthCodeLength; i++ {
		symbol += int(count[bits])
		offset[bits] = symbol
		bits++
	}

	/* Symbols with code length 0 are placed after all other symbols. */
	offset[0] = codeLengthCodes - 1

	/* Sort symbols by length, by symbol order within each length. */
	symbol = codeLengthCodes

	for {
		var i int
		for i = 0; i < 6; i++ {
			symbol--
			sorted[offset[codeLengths[symbol]]] = symbol
			offset[codeLengths[symbol]]--
		}
		if symbol == 0 {
			break
		}
	}

	tableSize = 1 << huffmanMaxCodeLengthCodeLength

	/* Special case: all symbols but one have 0 code length. */
	if offset[0] == 0 {
		code = constructHuffmanCode(0, uint16(sorted[0]))
		for key = 0; key < uint64(tableSize); key++ {
			table[key] = code
		}

		return
	}

	/* Fill in table. */
	key = 0

	keyStep = reverseBitsLowest
	symbol = 0
	bits = 1
	step = 2
	for {
		for bitsCount = int(count[bits]); bitsCount != 0; bitsCount-- {
			code = constructHuffmanCode(byte(bits), uint16(sorted[symbol]))
			symbol++
			replicateValue(table[reverseBits8(key):], step, tableSize, code)
			key += keyStep
		}

		step <<= 1
		keyStep >>= 1
		bits++
		if bits > huffmanMaxCodeLengthCodeLength {
			break
		}
	}
}

func buildHuffmanTable(rootTable []huffmanCode, rootBits int, symbolLists symbolList, count []uint16) uint32 {
	var code huffmanCode /* current table entry */
	var table []huffmanCode
	var len int        /* current code length */
	var symbol int     /* symbol index in original or sorted table */
	var key uint64     /* prefix code */
	var keyStep uint64 /* prefix code addend */
	var subKey uint64  /* 2nd level table prefix code */
	var subKeyStep uint64
	var step int      /* step size to replicate values in current table */
	var tableBits int /* key length of current table */
	var tableSize int /* size of current table */
	var totalSize int /* sum of root table size and 2nd level table sizes */
	var maxLength int = -1
	var bits int
	var bitsCount int

	assert(rootBits <= reverseBitsMax)
	assert(huffmanMaxCodeLength-rootBits <= reverseBitsMax)

	for symbolListGet(symbolLists, maxLength) == 0xFFFF {
		maxLength--
	}

	maxLength += huffmanMaxCodeLength + 1

	table = rootTable
	tableBits = rootBits
	tableSize = 1 << uint(tableBits)
	totalSize = tableSize

	/* Fill in the root table. Reduce the table size to if possible,
	   and create the repetitions by memcpy. */
	if tableBits > maxLength {
		tableBits = maxLength
		tableSize = 1 << uint(tableBits)
	}

	key = 0
	keyStep = reverseBitsLowest
	bits = 1
	step = 2
	for {
		symbol = bits - (huffmanMaxCodeLength + 1)
		for bitsCount = int(count[bits]); bitsCount != 0; bitsCount-- {
			symbol = int(symbolListGet(symbolLists, symbol))
			code = constructHuffmanCode(byte(bits), uint16(symbol))
			replicateValue(table[reverseBits8(key):], step, tableSize, code)
			key += keyStep
		}

		step <<= 1
		keyStep >>= 1
		bits++
		if bits > tableBits {
			break
		}
	}

	/* If root_bits != table_bits then replicate to fill the remaining slots. */
	for totalSize != tableSize {
		copy(table[tableSize:], table[:uint(tableSize)])
		tableSize <<= 1
	}

	/* Fill in 2nd level tables and add pointers to root table. */
	keyStep = reverseBitsLowest >> uint(rootBits-1)

	subKey = reverseBitsLowest << 1
	subKeyStep = reverseBitsLowest
	len = rootBits + 1
	step = 2
	for ; len <= maxLength; len++ {
		symbol = len - (huffmanMaxCodeLength + 1)
		for ; count[len] != 0; count[len]-- {
			if subKey == reverseBitsLowest<<1 {
				table = table[tableSize:]
				tableBits = nextTableBitSize(count, int(len), rootBits)
				tableSize = 1 << uint(tableBits)
				totalSize += tableSize
				subKey = reverseBits8(key)
				key += keyStep
				rootTable[subKey].bits = byte(tableBits + rootBits)
				rootTable[subKey].value = uint16((cap(rootTable) - cap(table)) - int(subKey))
				subKey = 0
			}

			symbol = int(symbolListGet(symbolLists, symbol))
			code = constructHuffmanCode(byte(len-rootBits), uint16(symbol))
			replicateValue(table[reverseBits8(subKey):], step, tableSize, code)
			subKey += subKeyStep
		}

		step <<= 1
		subKeyStep >>= 1
	}

	return uint32(totalSize)
}

func buildSimpleHuffmanTable(table []huffmanCode, rootBits int, val []uint16, numSymbols uint32) uint32 {
	var tableSize uint32 = 1
	var goalSize uint32 = 1 << uint(rootBits)
	switch numSymbols {
	case 0:
		table[0] = constructHuffmanCode(0, val[0])

	case 1:
		if val[1] > val[0] {
			table[0] = constructHuffmanCode(1, val[0])
			table[1] = constructHuffmanCode(1, val[1])
		} else {
			table[0] = constructHuffmanCode(1, val[1])
			table[1] = constructHuffmanCode(1, val[0])
		}

		tableSize = 2

	case 2:
		table[0] = constructHuffmanCode(1, val[0])
		table[2] = constructHuffmanCode(1, val[0])
		if val[2] > val[1] {
			table[1] = constructHuffmanCode(2, val[1])
			table[3] = constructHuffmanCode(2, val[2])
		} else {
			table[1] = constructHuffmanCode(2, val[2])
			table[3] = constructHuffmanCode(2, val[1])
		}

		tableSize = 4

	case 3:
		var i int
		var k int
		for i = 0; i < 3; i++ {
			for k = i + 1; k < 4; k++ {
				if val[k] < val[i] {
					var t uint16 = val[k]
					val[k] = val[i]
					val[i] = t
				}
			}
		}

		table[0] = constructHuffmanCode(2, val[0])
		table[2] = constructHuffmanCode(2, val[1])
		table[1] = constructHuffmanCode(2, val[2])
		table[3] = constructHuffmanCode(2, val[3])
		tableSize = 4

	case 4:
		if val[3] < val[2] {
			var t uint16 = val[3]
			val[3] = val[2]
			val[2] = t
		}

		table[0] = constructHuffmanCode(1, val[0])
		table[1] = constructHuffmanCode(2, val[1])
		table[2] = constructHuffmanCode(1, val[0])
		table[3] = constructHuffmanCode(3, val[2])
		table[4] = constructHuffmanCode(1, val[0])
		table[5] = constructHuffmanCode(2, val[1])
		table[6] = constructHuffmanCode(1, val[0])
		table[7] = constructHuffmanCode(3, val[3])
		tableSize = 8
	}

	for tableSize != goalSize {
		copy(table[tableSize:], table[:uint(tableSize)])
		tableSize <<= 1
	}

	return goalSize
}

/* Represents the range of values belonging to a prefix code:
   [offset, offset + 2^nbits) */
type symbolList struct {
	storage []uint16
	offset  int
}

func symbolListGet(sl symbolList, i int) uint16 {
	return sl.storage[i+sl.offset]
}

func symbolListPut(sl symbolList, i int, val uint16) {
	sl.storage[i+sl.offset] = val
}
