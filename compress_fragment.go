package brotli

import "encoding/binary"

/* Copyright 2015 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* The quality-1 compressor: a single pass over an input fragment with no
   reference to earlier history. Commands are written to the bit stream the
   moment a match is found, with command/distance prefix codes carried over
   from block to block. The scan structure follows snappy's
   CompressFragment. */

const kMaxFragmentDistance = 262128

func hashFragment(p []byte, shift uint) uint32 {
	var h uint64 = (binary.LittleEndian.Uint64(p) << 24) * uint64(kHashMul32)
	return uint32(h >> shift)
}

func hashFragmentAt(v uint64, offset int, shift uint) uint32 {
	assert(offset >= 0)
	assert(offset <= 3)
	{
		var h uint64 = ((v >> uint(8*offset)) << 24) * uint64(kHashMul32)
		return uint32(h >> shift)
	}
}

func sameFiveBytes(p1 []byte, p2 []byte) bool {
	return binary.LittleEndian.Uint32(p1) == binary.LittleEndian.Uint32(p2) &&
		p1[4] == p2[4]
}

/*
Builds a literal prefix code into "depths" and "codes" based on the statistics

	of the "input" string and stores it into the bit stream.
	Note that the prefix code here is built from the pre-LZ77 input, therefore
	we can only approximate the statistics of the actual literal stream.
	Moreover, for long inputs we build a histogram from a sample of the input
	and thus have to assign a non-zero depths for each literal.
	Returns estimated compression ratio millibytes/char for encoding given input
	with generated code.
*/
func buildAndStoreLiteralPrefixCode(input []byte, inputSize uint, depths []byte, codes []uint16, storageIx *uint, storage []byte) uint {
	var histogram = [256]uint32{0}
	var histoTotal uint
	var i uint
	if inputSize < 1<<15 {
		for i = 0; i < inputSize; i++ {
			histogram[input[i]]++
		}

		histoTotal = inputSize
		for i = 0; i < 256; i++ {
			/* We weigh the first 11 samples with weight 3 to account for the
			   balancing effect of the LZ77 phase on the histogram. */
			var adjust uint32 = 2 * brotliMinUint32T(histogram[i], 11)
			histogram[i] += adjust
			histoTotal += uint(adjust)
		}
	} else {
		const kSampleRate uint = 29
		for i = 0; i < inputSize; i += kSampleRate {
			histogram[input[i]]++
		}

		histoTotal = (inputSize + kSampleRate - 1) / kSampleRate
		for i = 0; i < 256; i++ {
			/* We add 1 to each population count to avoid 0 bit depths (since this is
			   only a sample and we don't know if the symbol appears or not), and we
			   weigh the first 11 samples with weight 3 to account for the balancing
			   effect of the LZ77 phase on the histogram (more frequent symbols are
			   more likely to be in backward references instead as literals). */
			var adjust uint32 = 1 + 2*brotliMinUint32T(histogram[i], 11)
			histogram[i] += adjust
			histoTotal += uint(adjust)
		}
	}

	buildAndStoreHuffmanTreeFast(histogram[:], histoTotal, /* max_bits = */
		8, depths, codes, storageIx, storage)
	{
		var litRatio uint = 0
		for i = 0; i < 256; i++ {
			if histogram[i] != 0 {
				litRatio += uint(histogram[i] * uint32(depths[i]))
			}
		}

		/* Estimated encoding ratio, millibytes per symbol. */
		return (litRatio * 125) / histoTotal
	}
}

/*
Builds a command and distance prefix code (each 64 symbols) into "depths" and

	"codes" based on "histogram" and stores it into the bit stream.
*/
func buildAndStoreCommandPrefixCode(histogram []uint32, depths []byte, codes []uint16, storageIx *uint, storage []byte) {
	var tree [129]huffmanTree
	var cmdDepths = [numCommandSymbols]byte{0}
	/* Tree size for building a tree over 64 symbols is 2 * 64 + 1. */

	var cmdCodes [64]uint16

	createHuffmanTree(histogram, 64, 15, tree[:], depths)
	createHuffmanTree(histogram[64:], 64, 14, tree[:], depths[64:])

	/* We have to jump through a few hoops here in order to compute
	   the command codes because the symbols are in a different order than in
	   the full alphabet. This looks complicated, but having the symbols
	   in this order in the command codes saves a few branches in the Emit*
	   functions. */
	copy(cmdDepths[:], depths[:24])

	copy(cmdDepths[24:][:], depths[40:][:8])
	copy(cmdDepths[32:][:], depths[24:][:8])
	copy(cmdDepths[40:][:], depths[48:][:8])
	copy(cmdDepths[48:][:], depths[32:][:8])
	copy(cmdDepths[56:][:], depths[56:][:8])
	convertBitDepthsToSymbols(cmdDepths[:], 64, cmdCodes[:])
	copy(codes, cmdCodes[:24])
	copy(codes[24:], cmdCodes[32:][:8])
	copy(codes[32:], cmdCodes[48:][:8])
	copy(codes[40:], cmdCodes[24:][:8])
	copy(codes[48:], cmdCodes[40:][:8])
	copy(codes[56:], cmdCodes[56:][:8])
	convertBitDepthsToSymbols(depths[64:], 64, codes[64:])
	{
		/* Create the bit length array for the full command alphabet. */
		var i uint
		for i := 0; i < int(64); i++ {
			cmdDepths[i] = 0
		} /* only 64 first values were used */
		copy(cmdDepths[:], depths[:8])
		copy(cmdDepths[64:][:], depths[8:][:8])
		copy(cmdDepths[128:][:], depths[16:][:8])
		copy(cmdDepths[192:][:], depths[24:][:8])
		copy(cmdDepths[384:][:], depths[32:][:8])
		for i = 0; i < 8; i++ {
			cmdDepths[128+8*i] = depths[40+i]
			cmdDepths[256+8*i] = depths[48+i]
			cmdDepths[448+8*i] = depths[56+i]
		}

		storeHuffmanTree(cmdDepths[:], numCommandSymbols, tree[:], storageIx, storage)
	}

	storeHuffmanTree(depths[64:], 64, tree[:], storageIx, storage)
}

/* REQUIRES: insertlen < 6210 */
func emitInsertLen(insertlen uint, depths []byte, codes []uint16, counts []uint32, storageIx *uint, storage []byte) {
	if insertlen < 6 {
		var code uint = insertlen + 40
		writeBits(uint(depths[code]), uint64(codes[code]), storageIx, storage)
		counts[code]++
	} else if insertlen < 130 {
		var tail uint = insertlen - 2
		var nbits uint32 = log2FloorNonZero(tail) - 1
		var prefix uint = tail >> nbits
		var inscode uint = uint((nbits << 1) + uint32(prefix) + 42)
		writeBits(uint(depths[inscode]), uint64(codes[inscode]), storageIx, storage)
		writeBits(uint(nbits), uint64(tail)-(uint64(prefix)<<nbits), storageIx, storage)
		counts[inscode]++
	} else if insertlen < 2114 {
		var tail uint = insertlen - 66
		var nbits uint32 = log2FloorNonZero(tail)
		var code uint = uint(nbits + 50)
		writeBits(uint(depths[code]), uint64(codes[code]), storageIx, storage)
		writeBits(uint(nbits), uint64(tail)-(uint64(uint(1))<<nbits), storageIx, storage)
		counts[code]++
	} else {
		writeBits(uint(depths[61]), uint64(codes[61]), storageIx, storage)
		writeBits(12, uint64(insertlen)-2114, storageIx, storage)
		counts[61]++
	}
}

func emitLongInsertLen(insertlen uint, depths []byte, codes []uint16, counts []uint32, storage_ix *uint, storage []byte) {
	if insertlen < 22594 {
		writeBits(uint(depths[62]), uint64(codes[62]), storage_ix, storage)
		writeBits(14, uint64(insertlen)-6210, storage_ix, storage)
		counts[62]++
	} else {
		writeBits(uint(depths[63]), uint64(codes[63]), storage_ix, storage)
		writeBits(24, uint64(insertlen)-22594, storage_ix, storage)
		counts[63]++
	}
}

func emitCopyLen(copylen uint, depths []byte, codes []uint16, counts []uint32, storage_ix *uint, storage []byte) {
	if copylen < 10 {
		writeBits(uint(depths[copylen+14]), uint64(codes[copylen+14]), storage_ix, storage)
		counts[copylen+14]++
	} else if copylen < 134 {
		var tail uint = copylen - 6
		var nbits uint32 = log2FloorNonZero(tail) - 1
		var prefix uint = tail >> nbits
		var code uint = uint((nbits << 1) + uint32(prefix) + 20)
		writeBits(uint(depths[code]), uint64(codes[code]), storage_ix, storage)
		writeBits(uint(nbits), uint64(tail)-(uint64(prefix)<<nbits), storage_ix, storage)
		counts[code]++
	} else if copylen < 2118 {
		var tail uint = copylen - 70
		var nbits uint32 = log2FloorNonZero(tail)
		var code uint = uint(nbits + 28)
		writeBits(uint(depths[code]), uint64(codes[code]), storage_ix, storage)
		writeBits(uint(nbits), uint64(tail)-(uint64(uint(1))<<nbits), storage_ix, storage)
		counts[code]++
	} else {
		writeBits(uint(depths[39]), uint64(codes[39]), storage_ix, storage)
		writeBits(24, uint64(copylen)-2118, storage_ix, storage)
		counts[39]++
	}
}

func emitCopyLenLastDistance(copylen uint, depths []byte, codes []uint16, counts []uint32, storageIx *uint, storage []byte) {
	if copylen < 12 {
		writeBits(uint(depths[copylen-4]), uint64(codes[copylen-4]), storageIx, storage)
		counts[copylen-4]++
	} else if copylen < 72 {
		var tail uint = copylen - 8
		var nbits uint32 = log2FloorNonZero(tail) - 1
		var prefix uint = tail >> nbits
		var code uint = uint((nbits << 1) + uint32(prefix) + 4)
		writeBits(uint(depths[code]), uint64(codes[code]), storageIx, storage)
		writeBits(uint(nbits), uint64(tail)-(uint64(prefix)<<nbits), storageIx, storage)
		counts[code]++
	} else if copylen < 136 {
		var tail uint = copylen - 8
		var code uint = (tail >> 5) + 30
		writeBits(uint(depths[code]), uint64(codes[code]), storageIx, storage)
		writeBits(5, uint64(tail)&31, storageIx, storage)
		writeBits(uint(depths[64]), uint64(codes[64]), storageIx, storage)
		counts[code]++
		counts[64]++
	} else if copylen < 2120 {
		var tail uint = copylen - 72
		var nbits uint32 = log2FloorNonZero(tail)
		var code uint = uint(nbits + 28)
		writeBits(uint(depths[code]), uint64(codes[code]), storageIx, storage)
		writeBits(uint(nbits), uint64(tail)-(uint64(uint(1))<<nbits), storageIx, storage)
		writeBits(uint(depths[64]), uint64(codes[64]), storageIx, storage)
		counts[code]++
		counts[64]++
	} else {
		writeBits(uint(depths[39]), uint64(codes[39]), storageIx, storage)
		writeBits(24, uint64(copylen)-2120, storageIx, storage)
		writeBits(uint(depths[64]), uint64(codes[64]), storageIx, storage)
		counts[39]++
		counts[64]++
	}
}

func emitDistance(distance uint, depths []byte, codes []uint16, counts []uint32, storageIx *uint, storage []byte) {
	var d uint = distance + 3
	var nbits uint32 = log2FloorNonZero(d) - 1
	var prefix uint = (d >> nbits) & 1
	var offset uint = (2 + prefix) << nbits
	var distcode uint = uint(2*(nbits-1) + uint32(prefix) + 80)
	writeBits(uint(depths[distcode]), uint64(codes[distcode]), storageIx, storage)
	writeBits(uint(nbits), uint64(d)-uint64(offset), storageIx, storage)
	counts[distcode]++
}

func emitLiterals(input []byte, len uint, depths []byte, codes []uint16, storageIx *uint, storage []byte) {
	var j uint
	for j = 0; j < len; j++ {
		var lit byte = input[j]
		writeBits(uint(depths[lit]), uint64(codes[lit]), storageIx, storage)
	}
}

/* REQUIRES: len <= 1 << 24. */
func storeMetaBlockHeader(len uint, isUncompressed bool, storageIx *uint, storage []byte) {
	var nibbles uint = 6

	/* ISLAST */
	writeBits(1, 0, storageIx, storage)

	if len <= 1<<16 {
		nibbles = 4
	} else if len <= 1<<20 {
		nibbles = 5
	}

	writeBits(2, uint64(nibbles)-4, storageIx, storage)
	writeBits(nibbles*4, uint64(len)-1, storageIx, storage)

	/* ISUNCOMPRESSED */
	writeSingleBit(isUncompressed, storageIx, storage)
}

func updateBits(nbits uint, value uint32, pos uint, array []byte) {
	for nbits > 0 {
		var bytePos uint = pos >> 3
		var nUnchangedBits uint = pos & 7
		var nChangedBits uint = brotliMinSizeT(nbits, 8-nUnchangedBits)
		var totalBits uint = nUnchangedBits + nChangedBits
		var mask uint32 = (^((1 << totalBits) - 1)) | ((1 << nUnchangedBits) - 1)
		var unchangedBits uint32 = uint32(array[bytePos]) & mask
		var changedBits uint32 = value & ((1 << nChangedBits) - 1)
		array[bytePos] = byte(changedBits<<nUnchangedBits | unchangedBits)
		nbits -= nChangedBits
		value >>= nChangedBits
		pos += nChangedBits
	}
}

func rewindBitPosition(newStorageIx uint, storageIx *uint, storage []byte) {
	var bitpos uint = newStorageIx & 7
	var mask uint = (1 << bitpos) - 1
	storage[newStorageIx>>3] &= byte(mask)
	*storageIx = newStorageIx
}

var kMergeBlockSampleRate uint = 43

func shouldMergeBlock(data []byte, len uint, depths []byte) bool {
	var counts = [256]uint{0}
	var i uint
	for i = 0; i < len; i += kMergeBlockSampleRate {
		counts[data[i]]++
	}
	{
		var total uint = (len + kMergeBlockSampleRate - 1) / kMergeBlockSampleRate
		var r float64 = (fastLog2(total)+0.5)*float64(total) + 200
		for i = 0; i < 256; i++ {
			r -= float64(counts[i]) * (float64(depths[i]) + fastLog2(counts[i]))
		}

		return r >= 0.0
	}
}

func shouldUseUncompressedMode(blockBegin []byte, emitPos []byte, insertlen uint, litRatio uint) bool {
	var compressed uint = uint(-cap(emitPos) + cap(blockBegin))
	if compressed*50 > insertlen {
		return false
	} else {
		return litRatio > 980
	}
}

func emitUncompressedMetaBlock(begin []byte, end []byte, storageIxStart uint, storageIx *uint, storage []byte) {
	var len uint = uint(-cap(end) + cap(begin))
	rewindBitPosition(storageIxStart, storageIx, storage)
	storeMetaBlockHeader(uint(len), true, storageIx, storage)
	*storageIx = (*storageIx + 7) &^ 7
	copy(storage[*storageIx>>3:], begin[:len])
	*storageIx += uint(len << 3)
	storage[*storageIx>>3] = 0
}

var kCmdHistoSeed = [128]uint32{
	0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0,
}

var kFirstBlockSize uint = 3 << 15
var kMergeBlockSize uint = 1 << 16

func compressFragmentFastImpl(data []byte, inputSize uint, isLast bool, table []int, tableBits uint, cmdDepths []byte, cmdCodes []uint16, cmdCodeNumbits *uint, cmdCode []byte, storageIx *uint, storage []byte) {
	var cmdHisto [128]uint32
	var posEnd int
	var emitPos int = 0
	var inputStart int = 0
	var blockOffset int = 0
	const kInputMargin uint = windowGap
	const kMinMatch uint = 5
	var blockBegin int = blockOffset
	var blockSize uint = brotliMinSizeT(inputSize, kFirstBlockSize)
	var totalBlockSize uint = blockSize
	var mlenBitPos uint = *storageIx + 3
	var literalDepths [256]byte
	var literalCodes [256]uint16
	var litRatio uint
	var pos int
	var lastDistance int
	var shift uint = 64 - tableBits

	/* "next_emit" is a pointer to the first byte that is not covered by a
	   previous copy. Everything between "emitPos" and the start of the next copy
	   (or the end of the input) leaves as literals. */

	/* Save the start of the first block for position and distance computations.
	 */

	/* Save the bit position of the MLEN field of the meta-block header, so that
	   we can update it later if we decide to extend this meta-block. */
	storeMetaBlockHeader(blockSize, false, storageIx, storage)

	/* No block splits, no contexts. */
	writeBits(13, 0, storageIx, storage)

	litRatio = buildAndStoreLiteralPrefixCode(data[blockOffset:], blockSize, literalDepths[:], literalCodes[:], storageIx, storage)
	{
		/* Store the pre-compressed command and distance prefix codes. */
		var i uint
		for i = 0; i+7 < *cmdCodeNumbits; i += 8 {
			writeBits(8, uint64(cmdCode[i>>3]), storageIx, storage)
		}
	}

	writeBits(*cmdCodeNumbits&7, uint64(cmdCode[*cmdCodeNumbits>>3]), storageIx, storage)

	/* Initialize the command and distance histograms. We will gather
	   statistics of command and distance codes during the processing
	   of this block and use it to update the command and distance
	   prefix codes for the next block. */
emitCommands:
	copy(cmdHisto[:], kCmdHistoSeed[:])

	/* "pos" is the input pointer. */
	pos = blockOffset

	lastDistance = -1
	posEnd = int(uint(blockOffset) + blockSize)

	if blockSize >= kInputMargin {
		var lenLimit uint = brotliMinSizeT(blockSize-kMinMatch, inputSize-kInputMargin)
		var posLimit int = int(uint(blockOffset) + lenLimit)
		/* The final block keeps a 16-byte margin so distances stay within
		   window size - 16; other blocks only need 5 bytes so a copy cannot
		   overshoot the block. */

		var nextKey uint32
		pos++
		for nextKey = hashFragment(data[pos:], shift); ; {
			var skip uint32 = 32
			var nextPos int = pos
			/* Phase one: hunt for a 5-byte match, giving up when the block is
			   nearly exhausted. Positions are sampled more and more sparsely
			   the longer the scan goes without a match ("skip" counts the
			   misses; its top bits set the stride), so incompressible data is
			   crossed quickly at a small cost for compressible data. */

			var candidate int
			assert(emitPos < pos)

		trawl:
			for {
				var hash uint32 = nextKey
				var lookupStride uint32 = skip >> 5
				skip++
				assert(hash == hashFragment(data[nextPos:], shift))
				pos = nextPos
				nextPos = int(uint32(pos) + lookupStride)
				if nextPos > posLimit {
					goto emitRemainder
				}

				nextKey = hashFragment(data[nextPos:], shift)
				candidate = pos - lastDistance
				if sameFiveBytes(data[pos:], data[candidate:]) {
					if candidate < pos {
						table[hash] = int(pos - inputStart)
						break
					}
				}

				candidate = inputStart + table[hash]
				assert(candidate >= inputStart)
				assert(candidate < pos)

				table[hash] = int(pos - inputStart)
				if sameFiveBytes(data[pos:], data[candidate:]) {
					break
				}
			}

			/* Check copy distance. If candidate is not feasible, continue search.
			   Checking is done outside of hot loop to reduce overhead. */
			if pos-candidate > kMaxFragmentDistance {
				goto trawl
			}

			/* Phase two: extend the match, emit the pending literals and the
			   copy, then keep taking adjacent matches for as long as they
			   continue back to back. */
			{
				var base int = pos
				/* > 0 */
				var matched uint = 5 + findMatchLengthWithLimit(data[candidate+5:], data[pos+5:], uint(posEnd-pos)-5)
				var distance int = int(base - candidate)
				/* We have a 5-byte match at pos, and we need to emit bytes in
				   [next_emit, pos). */

				var insert uint = uint(base - emitPos)
				pos += int(matched)
				if insert < 6210 {
					emitInsertLen(insert, cmdDepths, cmdCodes, cmdHisto[:], storageIx, storage)
				} else if shouldUseUncompressedMode(data[blockBegin:], data[emitPos:], insert, litRatio) {
					emitUncompressedMetaBlock(data[blockBegin:], data[base:], mlenBitPos-3, storageIx, storage)
					inputSize -= uint(base - blockOffset)
					blockOffset = base
					emitPos = blockOffset
					goto nextBlock
				} else {
					emitLongInsertLen(insert, cmdDepths, cmdCodes, cmdHisto[:], storageIx, storage)
				}

				emitLiterals(data[emitPos:], insert, literalDepths[:], literalCodes[:], storageIx, storage)
				if distance == lastDistance {
					writeBits(uint(cmdDepths[64]), uint64(cmdCodes[64]), storageIx, storage)
					cmdHisto[64]++
				} else {
					emitDistance(uint(distance), cmdDepths, cmdCodes, cmdHisto[:], storageIx, storage)
					lastDistance = distance
				}

				emitCopyLenLastDistance(matched, cmdDepths, cmdCodes, cmdHisto[:], storageIx, storage)

				emitPos = pos
				if pos >= posLimit {
					goto emitRemainder
				}

				/* We could immediately start working at pos now, but to improve
				   compression we first update "table" with the hashes of some positions
				   within the last copy. */
				{
					var tailWord uint64 = binary.LittleEndian.Uint64(data[pos-3:])
					var prevKey uint32 = hashFragmentAt(tailWord, 0, shift)
					var curKey uint32 = hashFragmentAt(tailWord, 3, shift)
					table[prevKey] = int(pos - inputStart - 3)
					prevKey = hashFragmentAt(tailWord, 1, shift)
					table[prevKey] = int(pos - inputStart - 2)
					prevKey = hashFragmentAt(tailWord, 2, shift)
					table[prevKey] = int(pos - inputStart - 1)

					candidate = inputStart + table[curKey]
					table[curKey] = int(pos - inputStart)
				}
			}

			for sameFiveBytes(data[pos:], data[candidate:]) {
				var base int = pos
				/* We have a 5-byte match at pos, and no need to emit any literal bytes
				   prior to pos. */

				var matched uint = 5 + findMatchLengthWithLimit(data[candidate+5:], data[pos+5:], uint(posEnd-pos)-5)
				if pos-candidate > kMaxFragmentDistance {
					break
				}
				pos += int(matched)
				lastDistance = int(base - candidate) /* > 0 */
				emitCopyLen(matched, cmdDepths, cmdCodes, cmdHisto[:], storageIx, storage)
				emitDistance(uint(lastDistance), cmdDepths, cmdCodes, cmdHisto[:], storageIx, storage)

				emitPos = pos
				if pos >= posLimit {
					goto emitRemainder
				}

				/* We could immediately start working at pos now, but to improve
				   compression we first update "table" with the hashes of some positions
				   within the last copy. */
				{
					var tailWord uint64 = binary.LittleEndian.Uint64(data[pos-3:])
					var prevKey uint32 = hashFragmentAt(tailWord, 0, shift)
					var curKey uint32 = hashFragmentAt(tailWord, 3, shift)
					table[prevKey] = int(pos - inputStart - 3)
					prevKey = hashFragmentAt(tailWord, 1, shift)
					table[prevKey] = int(pos - inputStart - 2)
					prevKey = hashFragmentAt(tailWord, 2, shift)
					table[prevKey] = int(pos - inputStart - 1)

					candidate = inputStart + table[curKey]
					table[curKey] = int(pos - inputStart)
				}
			}

			pos++
			nextKey = hashFragment(data[pos:], shift)
		}
	}

emitRemainder:
	assert(emitPos <= posEnd)
	blockOffset += int(blockSize)
	inputSize -= blockSize
	blockSize = brotliMinSizeT(inputSize, kMergeBlockSize)

	/* Decide if we want to continue this meta-block instead of emitting the
	   last insert-only command. */
	if inputSize > 0 && totalBlockSize+blockSize <= 1<<20 && shouldMergeBlock(data[blockOffset:], blockSize, literalDepths[:]) {
		assert(totalBlockSize > 1<<16)

		/* Update the size of the current meta-block and continue emitting commands.
		   We can do this because the current size and the new size both have 5
		   nibbles. */
		totalBlockSize += blockSize

		updateBits(20, uint32(totalBlockSize-1), mlenBitPos, storage)
		goto emitCommands
	}

	/* Emit the remaining bytes as literals. */
	if emitPos < posEnd {
		var insert uint = uint(posEnd - emitPos)
		if insert < 6210 {
			emitInsertLen(insert, cmdDepths, cmdCodes, cmdHisto[:], storageIx, storage)
			emitLiterals(data[emitPos:], insert, literalDepths[:], literalCodes[:], storageIx, storage)
		} else if shouldUseUncompressedMode(data[blockBegin:], data[emitPos:], insert, litRatio) {
			emitUncompressedMetaBlock(data[blockBegin:], data[posEnd:], mlenBitPos-3, storageIx, storage)
		} else {
			emitLongInsertLen(insert, cmdDepths, cmdCodes, cmdHisto[:], storageIx, storage)
			emitLiterals(data[emitPos:], insert, literalDepths[:], literalCodes[:], storageIx, storage)
		}
	}

	emitPos = posEnd

	/* If we have more data, write a new meta-block header and prefix codes and
	   then continue emitting commands. */
nextBlock:
	if inputSize > 0 {
		blockBegin = blockOffset
		blockSize = brotliMinSizeT(inputSize, kFirstBlockSize)
		totalBlockSize = blockSize

		/* Save the bit position of the MLEN field of the meta-block header, so that
		   we can update it later if we decide to extend this meta-block. */
		mlenBitPos = *storageIx + 3

		storeMetaBlockHeader(blockSize, false, storageIx, storage)

		/* No block splits, no contexts. */
		writeBits(13, 0, storageIx, storage)

		litRatio = buildAndStoreLiteralPrefixCode(data[blockOffset:], blockSize, literalDepths[:], literalCodes[:], storageIx, storage)
		buildAndStoreCommandPrefixCode(cmdHisto[:], cmdDepths, cmdCodes, storageIx, storage)
		goto emitCommands
	}

	if !isLast {
		/* If this is not the last block, update the command and distance prefix
		   codes for the next block and store the compressed forms. */
		cmdCode[0] = 0

		*cmdCodeNumbits = 0
		buildAndStoreCommandPrefixCode(cmdHisto[:], cmdDepths, cmdCodes, cmdCodeNumbits, cmdCode)
	}
}

/*
Compresses "input" string to the "*storage" buffer as one or more complete

	meta-blocks, and updates the "*storage_ix" bit position.

	If "is_last" is 1, emits an additional empty last meta-block.

	"cmd_depth" and "cmd_bits" contain the command and distance prefix codes
	(see comment in encode.h) used for the encoding of this input fragment.
	If "is_last" is 0, they are updated to reflect the statistics
	of this input fragment, to be used for the encoding of the next fragment.

	"*cmd_code_numbits" is the number of codes of the compressed representation
	of the command and distance prefix codes, and "cmd_code" is an array of
	at least "(*cmd_code_numbits + 7) >> 3" size that contains the compressed
	command and distance prefix codes. If "is_last" is 0, these are also
	updated to represent the updated "cmd_depth" and "cmd_bits".

	REQUIRES: "input_size" is greater than zero, or "is_last" is 1.
	REQUIRES: "input_size" is less or equal to maximal metablock size (1 << 24).
	REQUIRES: All elements in "table[0..table_size-1]" are initialized to zero.
	REQUIRES: "table_size" is an odd (9, 11, 13, 15) power of two
	OUTPUT: maximal copy distance <= |input_size|
	OUTPUT: maximal copy distance <= BROTLI_MAX_BACKWARD_LIMIT(18)
*/
func compressFragmentFast(input []byte, inputSize uint, isLast bool, table []int, tableSize uint, cmdDepths []byte, cmdCodes []uint16, cmdCodeNumbits *uint, cmdCode []byte, storageIx *uint, storage []byte) {
	var startBitPos uint = *storageIx
	var tableBits uint = uint(log2FloorNonZero(tableSize))

	if inputSize == 0 {
		assert(isLast)
		writeBits(1, 1, storageIx, storage) /* islast */
		writeBits(1, 1, storageIx, storage) /* isempty */
		*storageIx = (*storageIx + 7) &^ 7
		return
	}

	compressFragmentFastImpl(input, inputSize, isLast, table, tableBits, cmdDepths, cmdCodes, cmdCodeNumbits, cmdCode, storageIx, storage)

	/* If output is larger than single uncompressed block, rewrite it. */
	if *storageIx-startBitPos > 31+(inputSize<<3) {
		emitUncompressedMetaBlock(input, input[inputSize:], startBitPos, storageIx, storage)
	}

	if isLast {
		writeBits(1, 1, storageIx, storage) /* islast */
		writeBits(1, 1, storageIx, storage) /* isempty */
		*storageIx = (*storageIx + 7) &^ 7
	}
}
