package brotli

/* Copyright 2013 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Symbol and prefix-code reading for the decoder. */
const huffmanTableBits = 8

const huffmanTableMask = 0xFF

var kCodeLengthCodeOrder = [codeLengthCodes]byte{1, 2, 3, 4, 0, 5, 17, 6, 16, 7, 8, 9, 10, 11, 12, 13, 14, 15}

/* Static prefix code for the complex code length code lengths. */
var kCodeLengthPrefixLength = [16]byte{2, 2, 2, 3, 2, 2, 2, 4, 2, 2, 2, 3, 2, 2, 2, 4}

var kCodeLengthPrefixValue = [16]byte{0, 4, 3, 2, 0, 4, 3, 1, 0, 4, 3, 2, 0, 4, 3, 5}

/* Resolves one symbol against the root + second-level tables. Does not fetch
   input itself, but drops the consumed bits; the caller must have peeked at
   least 15 valid bits. */
func decodeSymbol(bits uint32, table []huffmanCode, br *bitReader) uint32 {
	table = table[bits&huffmanTableMask:]
	if table[0].bits > huffmanTableBits {
		var nbits uint32 = uint32(table[0].bits) - huffmanTableBits
		dropBits(br, huffmanTableBits)
		table = table[uint32(table[0].value)+((bits>>huffmanTableBits)&bitMask(nbits)):]
	}

	dropBits(br, uint32(table[0].bits))
	return uint32(table[0].value)
}

/* Peeks 16 bits and resolves one symbol, consuming 0 - 15 of them. */
func readSymbol(table []huffmanCode, br *bitReader) uint32 {
	return decodeSymbol(get16BitsUnmasked(br), table, br)
}

/* Like decodeSymbol when fewer than 15 bits may be buffered: probes each
   table level against the available bit count and backs out (returning
   false) instead of over-reading. */
func safeDecodeSymbol(table []huffmanCode, br *bitReader, status *uint32) bool {
	var raw uint32
	var avail uint32 = getAvailableBits(br)
	if avail == 0 {
		if table[0].bits == 0 {
			*status = uint32(table[0].value)
			return true
		}

		return false /* No valid bits at all. */
	}

	raw = uint32(getBitsUnmasked(br))
	table = table[raw&huffmanTableMask:]
	if table[0].bits <= huffmanTableBits {
		if uint32(table[0].bits) <= avail {
			dropBits(br, uint32(table[0].bits))
			*status = uint32(table[0].value)
			return true
		} else {
			return false /* Not enough bits for the first level. */
		}
	}

	if avail <= huffmanTableBits {
		return false /* Not enough bits to move to the second level. */
	}

	/* Speculatively drop HUFFMAN_TABLE_BITS. */
	raw = (raw & bitMask(uint32(table[0].bits))) >> huffmanTableBits

	avail -= huffmanTableBits
	table = table[uint32(table[0].value)+raw:]
	if avail < uint32(table[0].bits) {
		return false /* Not enough bits for the second level. */
	}

	dropBits(br, huffmanTableBits+uint32(table[0].bits))
	*status = uint32(table[0].value)
	return true
}

func safeReadSymbol(table []huffmanCode, br *bitReader, status *uint32) bool {
	var val uint32
	if safeGetBits(br, 15, &val) {
		*status = decodeSymbol(val, table, br)
		return true
	}

	return safeDecodeSymbol(table, br, status)
}

/* Peeks 8 bits and caches the root-table entry for the hot literal loop. */
func preloadSymbol(safe bool, table []huffmanCode, br *bitReader, bits *uint32, value *uint32) {
	if safe {
		return
	}

	table = table[getBits(br, huffmanTableBits):]
	*bits = uint32(table[0].bits)
	*value = uint32(table[0].value)
}

/* Completes a symbol from a preloaded root entry (descending to the second
   level if needed), then preloads the next one. Reads 0 - 15 bits and peeks
   8 more. */
func readPreloadedSymbol(table []huffmanCode, br *bitReader, bits *uint32, value *uint32) uint32 {
	var status uint32 = *value
	var second []huffmanCode
	if *bits > huffmanTableBits {
		var raw uint32 = get16BitsUnmasked(br)
		second = table[raw&huffmanTableMask:][*value:]
		var mask uint32 = bitMask((*bits - huffmanTableBits))
		dropBits(br, huffmanTableBits)
		second = second[(raw>>huffmanTableBits)&mask:]
		dropBits(br, uint32(second[0].bits))
		status = uint32(second[0].value)
	} else {
		dropBits(br, *bits)
	}

	preloadSymbol(false, table, br, bits, value)
	return status
}

func log2Floor(x uint32) uint32 {
	var status uint32 = 0
	for x != 0 {
		x >>= 1
		status++
	}

	return status
}

/* Reads the symbol list of a simple prefix code: s.symbol + 1 entries of
   1..11 bits each. Duplicate symbols make the code invalid. */
func readSimpleHuffmanSymbols(alphabetSize uint32, maxSymbol uint32, s *Reader) int {
	var br *bitReader = &s.br
	var symbolBits uint32 = log2Floor(alphabetSize - 1)
	var i uint32 = s.subLoopCounter
	/* symbolBits == 1..11; symbol == 0..3; 1..44 bits will be read. */

	var lastIndex uint32 = s.symbol
	for i <= lastIndex {
		var sym uint32
		if !safeReadBits(br, symbolBits, &sym) {
			s.subLoopCounter = i
			s.substateHuffman = stateHuffmanSimpleRead
			return decoderInputRequired
		}

		if sym >= maxSymbol {
			return decoderErrFormatSimpleHuffmanAlphabet
		}

		s.symbolChainStorage[i] = uint16(sym)
		i++
	}

	for i = 0; i < lastIndex; i++ {
		var k uint32 = i + 1
		for ; k <= lastIndex; k++ {
			if s.symbolChainStorage[i] == s.symbolChainStorage[k] {
				return decoderErrFormatSimpleHuffmanSame
			}
		}
	}

	return decoderSuccess
}

/* Accounts for one literal code length: breaks any repeat run, links the
   symbol into the per-length chain, charges the code space and updates the
   length histogram. */
func processSingleCodeLength(codeLen uint32, symbol *uint32, repeat *uint32, space *uint32, prevCodeLen *uint32, symbolChains symbolList, codeLengthHisto []uint16, nextSymbol []int) {
	*repeat = 0
	if codeLen != 0 { /* codeLen == 1..15 */
		symbolListPut(symbolChains, nextSymbol[codeLen], uint16(*symbol))
		nextSymbol[codeLen] = int(*symbol)
		*prevCodeLen = codeLen
		*space -= 32768 >> codeLen
		codeLengthHisto[codeLen]++
	}

	(*symbol)++
}

/* Accounts for a repeat code (16 or 17). Consecutive repeat codes of the
   same kind chain together base-4 / base-8; the freshly added count is
   applied like the single-length case, clamped to the alphabet. */
func processRepeatedCodeLength(codeLen uint32, repeatDelta uint32, alphabetSize uint32, symbol *uint32, repeat *uint32, space *uint32, prevCodeLen *uint32, repeatCodeLen *uint32, symbolChains symbolList, codeLengthHisto []uint16, nextSymbol []int) {
	var oldRepeat uint32 /* for BROTLI_REPEAT_ZERO_CODE_LENGTH */ /* for BROTLI_REPEAT_ZERO_CODE_LENGTH */
	var extraBits uint32 = 3
	var newLen uint32 = 0
	if codeLen == repeatPreviousCodeLength {
		newLen = *prevCodeLen
		extraBits = 2
	}

	if *repeatCodeLen != newLen {
		*repeat = 0
		*repeatCodeLen = newLen
	}

	oldRepeat = *repeat
	if *repeat > 0 {
		*repeat -= 2
		*repeat <<= extraBits
	}

	*repeat += repeatDelta + 3
	repeatDelta = *repeat - oldRepeat
	if *symbol+repeatDelta > alphabetSize {
		*symbol = alphabetSize
		*space = 0xFFFFF
		return
	}

	if *repeatCodeLen != 0 {
		var last uint = uint(*symbol + repeatDelta)
		var next int = nextSymbol[*repeatCodeLen]
		for {
			symbolListPut(symbolChains, next, uint16(*symbol))
			next = int(*symbol)
			(*symbol)++
			if (*symbol) == uint32(last) {
				break
			}
		}

		nextSymbol[*repeatCodeLen] = next
		*space -= repeatDelta << (15 - *repeatCodeLen)
		codeLengthHisto[*repeatCodeLen] = uint16(uint32(codeLengthHisto[*repeatCodeLen]) + repeatDelta)
	} else {
		*symbol += repeatDelta
	}
}

/* The main loop over RLE-compressed symbol code lengths (fast variant,
   requires buffered input). */
func readSymbolCodeLengths(alphabetSize uint32, s *Reader) int {
	var br *bitReader = &s.br
	var symbol uint32 = s.symbol
	var repeat uint32 = s.repeat
	var space uint32 = s.space
	var prevCodeLen uint32 = s.prevCodeLen
	var repeatCodeLen uint32 = s.repeatCodeLen
	var symbolChains symbolList = s.symbolChains
	var codeLengthHisto []uint16 = s.codeLengthHisto[:]
	var nextSymbol []int = s.nextSymbol[:]
	if !warmupBitReader(br) {
		return decoderInputRequired
	}
	var entry []huffmanCode
	for symbol < alphabetSize && space > 0 {
		entry = s.table[:]
		var codeLen uint32
		if !checkInputAmount(br, shortFillBitWindowRead) {
			s.symbol = symbol
			s.repeat = repeat
			s.prevCodeLen = prevCodeLen
			s.repeatCodeLen = repeatCodeLen
			s.space = space
			return decoderInputRequired
		}

		fillBitWindow16(br)
		entry = entry[getBitsUnmasked(br)&uint64(bitMask(huffmanMaxCodeLengthCodeLength)):]
		dropBits(br, uint32(entry[0].bits)) /* Use 1..5 bits. */
		codeLen = uint32(entry[0].value)   /* codeLen == 0..17 */
		if codeLen < repeatPreviousCodeLength {
			processSingleCodeLength(codeLen, &symbol, &repeat, &space, &prevCodeLen, symbolChains, codeLengthHisto, nextSymbol)
		} else { /* codeLen == 16..17, extraBits == 2..3 */
			var extraBits uint32
			if codeLen == repeatPreviousCodeLength {
				extraBits = 2
			} else {
				extraBits = 3
			}
			var repeatDelta uint32 = uint32(getBitsUnmasked(br)) & bitMask(extraBits)
			dropBits(br, extraBits)
			processRepeatedCodeLength(codeLen, repeatDelta, alphabetSize, &symbol, &repeat, &space, &prevCodeLen, &repeatCodeLen, symbolChains, codeLengthHisto, nextSymbol)
		}
	}

	s.space = space
	return decoderSuccess
}

func safeReadSymbolCodeLengths(alphabetSize uint32, s *Reader) int {
	var br *bitReader = &s.br
	var needByte bool = false
	var entry []huffmanCode
	for s.symbol < alphabetSize && s.space > 0 {
		entry = s.table[:]
		var codeLen uint32
		var availableBits uint32
		var bits uint32 = 0
		if needByte && !pullByte(br) {
			return decoderInputRequired
		}
		needByte = false
		availableBits = getAvailableBits(br)
		if availableBits != 0 {
			bits = uint32(getBitsUnmasked(br))
		}

		entry = entry[bits&bitMask(huffmanMaxCodeLengthCodeLength):]
		if uint32(entry[0].bits) > availableBits {
			needByte = true
			continue
		}

		codeLen = uint32(entry[0].value) /* codeLen == 0..17 */
		if codeLen < repeatPreviousCodeLength {
			dropBits(br, uint32(entry[0].bits))
			processSingleCodeLength(codeLen, &s.symbol, &s.repeat, &s.space, &s.prevCodeLen, s.symbolChains, s.codeLengthHisto[:], s.nextSymbol[:])
		} else { /* codeLen == 16..17, extraBits == 2..3 */
			var extraBits uint32 = codeLen - 14
			var repeatDelta uint32 = (bits >> entry[0].bits) & bitMask(extraBits)
			if availableBits < uint32(entry[0].bits)+extraBits {
				needByte = true
				continue
			}

			dropBits(br, uint32(entry[0].bits)+extraBits)
			processRepeatedCodeLength(codeLen, repeatDelta, alphabetSize, &s.symbol, &s.repeat, &s.space, &s.prevCodeLen, &s.repeatCodeLen, s.symbolChains, s.codeLengthHisto[:], s.nextSymbol[:])
		}
	}

	return decoderSuccess
}

/* The code-length-code lengths, read with the fixed 2..4-bit code from the
   RFC (15..18 entries, 30..72 bits). Stops early once the code space is
   exactly filled. */
func readCodeLengthCodeLengths(s *Reader) int {
	var br *bitReader = &s.br
	var nonzeroCodes uint32 = s.repeat
	var space uint32 = s.space
	var i uint32 = s.subLoopCounter
	for ; i < codeLengthCodes; i++ {
		var codeLenIdx byte = kCodeLengthCodeOrder[i]
		var probe uint32
		var codeLen uint32
		if !safeGetBits(br, 4, &probe) {
			var availableBits uint32 = getAvailableBits(br)
			if availableBits != 0 {
				probe = uint32(getBitsUnmasked(br) & 0xF)
			} else {
				probe = 0
			}

			if uint32(kCodeLengthPrefixLength[probe]) > availableBits {
				s.subLoopCounter = i
				s.repeat = nonzeroCodes
				s.space = space
				s.substateHuffman = stateHuffmanComplex
				return decoderInputRequired
			}
		}

		codeLen = uint32(kCodeLengthPrefixValue[probe])
		dropBits(br, uint32(kCodeLengthPrefixLength[probe]))
		s.codeLengthCodeLengths[codeLenIdx] = byte(codeLen)
		if codeLen != 0 {
			space = space - (32 >> codeLen)
			nonzeroCodes++
			s.codeLengthHisto[codeLen]++
			if space-1 >= 32 {
				/* space is 0 or wrapped around. */
				break
			}
		}
	}

	if nonzeroCodes != 1 && space != 0 {
		return decoderErrFormatClSpace
	}

	return decoderSuccess
}

/* Reads one prefix-code description and builds its lookup table. Simple
   codes list their 1..4 symbols directly (4 - 49 bits); complex codes first
   carry a small code over code lengths and then the RLE-compressed lengths
   themselves (up to 3520 bits for the largest alphabets). */
func readHuffmanCode(alphabetSize uint32, maxSymbol uint32, table []huffmanCode, optTableSize *uint32, s *Reader) int {
	var br *bitReader = &s.br

	/* Unnecessary masking, but might be good for safety. */
	alphabetSize &= 0x7FF

	/* State machine. */
	for {
		switch s.substateHuffman {
		case stateHuffmanNone:
			if !safeReadBits(br, 2, &s.subLoopCounter) {
				return decoderInputRequired
			}

			/* The value is used as follows:
			   1 for simple code;
			   0 for no skipping, 2 skips 2 code lengths, 3 skips 3 code lengths */
			if s.subLoopCounter != 1 {
				s.space = 32
				s.repeat = 0 /* numCodes */
				var i int
				for i = 0; i <= huffmanMaxCodeLengthCodeLength; i++ {
					s.codeLengthHisto[i] = 0
				}

				for i = 0; i < codeLengthCodes; i++ {
					s.codeLengthCodeLengths[i] = 0
				}

				s.substateHuffman = stateHuffmanComplex
				continue
			}
			fallthrough

			/* Read symbols, codes & code lengths directly. */
		case stateHuffmanSimpleSize:
			if !safeReadBits(br, 2, &s.symbol) { /* numSymbols */
				s.substateHuffman = stateHuffmanSimpleSize
				return decoderInputRequired
			}

			s.subLoopCounter = 0
			fallthrough

		case stateHuffmanSimpleRead:
			{
				var status int = readSimpleHuffmanSymbols(alphabetSize, maxSymbol, s)
				if status != decoderSuccess {
					return status
				}
			}
			fallthrough

		case stateHuffmanSimpleBuild:
			var builtSize uint32
			if s.symbol == 3 {
				var bits uint32
				if !safeReadBits(br, 1, &bits) {
					s.substateHuffman = stateHuffmanSimpleBuild
					return decoderInputRequired
				}

				s.symbol += bits
			}

			builtSize = buildSimpleHuffmanTable(table, huffmanTableBits, s.symbolChainStorage[:], s.symbol)
			if optTableSize != nil {
				*optTableSize = builtSize
			}

			s.substateHuffman = stateHuffmanNone
			return decoderSuccess

			/* Decode Huffman-coded code lengths. */
		case stateHuffmanComplex:
			{
				var i uint32
				var status int = readCodeLengthCodeLengths(s)
				if status != decoderSuccess {
					return status
				}

				buildCodeLengthsHuffmanTable(s.table[:], s.codeLengthCodeLengths[:], s.codeLengthHisto[:])
				for i = 0; i < 16; i++ {
					s.codeLengthHisto[i] = 0
				}

				for i = 0; i <= huffmanMaxCodeLength; i++ {
					s.nextSymbol[i] = int(i) - (huffmanMaxCodeLength + 1)
					symbolListPut(s.symbolChains, s.nextSymbol[i], 0xFFFF)
				}

				s.symbol = 0
				s.prevCodeLen = initialRepeatedCodeLength
				s.repeat = 0
				s.repeatCodeLen = 0
				s.space = 32768
				s.substateHuffman = stateHuffmanLengthSymbols
			}
			fallthrough

		case stateHuffmanLengthSymbols:
			var builtSize uint32
			var status int = readSymbolCodeLengths(maxSymbol, s)
			if status == decoderInputRequired {
				status = safeReadSymbolCodeLengths(maxSymbol, s)
			}

			if status != decoderSuccess {
				return status
			}

			if s.space != 0 {
				return decoderErrFormatHuffmanSpace
			}

			builtSize = buildHuffmanTable(table, huffmanTableBits, s.symbolChains, s.codeLengthHisto[:])
			if optTableSize != nil {
				*optTableSize = builtSize
			}

			s.substateHuffman = stateHuffmanNone
			return decoderSuccess

		default:
			return decoderErrUnreachable
		}
	}
}

/* Reads the num_htrees prefix codes of one tree group into its shared
   codes array. */
func huffmanTreeGroupDecode(group *huffmanTreeGroup, s *Reader) int {
	if s.substateTreeGroup != stateTreeGroupLoop {
		s.next = group.codes
		s.htreeIndex = 0
		s.substateTreeGroup = stateTreeGroupLoop
	}

	for s.htreeIndex < int(group.num_htrees) {
		var builtSize uint32
		var status int = readHuffmanCode(uint32(group.alphabet_size), uint32(group.max_symbol), s.next, &builtSize, s)
		if status != decoderSuccess {
			return status
		}
		group.htrees[s.htreeIndex] = s.next
		s.next = s.next[builtSize:]
		s.htreeIndex++
	}

	s.substateTreeGroup = stateTreeGroupNone
	return decoderSuccess
}
