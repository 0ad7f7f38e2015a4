package brotli

import (
	"io"
	"math"
)

/* Copyright 2016 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Minimal value for lgwin. */
const minWindowBits = 10

/* Maximal value for lgwin; equal to maxDistanceBits. */
const maxWindowBits = 24

/* Maximal value for lgwin in "Large Window Brotli" (32-bit). */
const largeMaxWindowBits = 30

/* Minimal value for lgblock. */
const minInputBlockBits = 16

/* Maximal value for lgblock. */
const maxInputBlockBits = 24

const minQuality = 0

const maxQuality = 11

/* Modes. */
const (
	modeGeneric = 0
	modeText    = 1
	modeFont    = 2
)

const defaultQuality = 11

const defaultWindow = 22

const defaultMode = modeGeneric

/* Operations that can be performed by streaming encoder. */
const (
	operationProcess      = 0
	operationFlush        = 1
	operationFinish       = 2
	operationEmitMetadata = 3
)

const (
	streamProcessing     = 0
	streamFlushRequested = 1
	streamFinished       = 2
	streamMetadataHead   = 3
	streamMetadataBody   = 4
)

type Writer struct {
	dst     io.Writer
	options WriterOptions
	err     error

	/* Input tracking and the sliding window. */
	params           encoderParams
	hasher           hasherHandle
	ringBuf          ringBuffer
	inputPos         uint64
	lastFlushPos     uint64
	lastProcessedPos uint64

	/* Accumulated commands of the open metablock. */
	commands      []command
	numLiterals   uint
	lastInsertLen uint

	distanceCache      [numDistanceShortCodes]int
	savedDistanceCache [4]int

	/* Up to 7 bits of output that did not fill a byte yet, and the scratch
	   the metablock serializer renders into. */
	outTail     uint16
	outTailBits byte
	storage     []byte

	prevByte  byte
	prevByte2 byte

	/* Hash tables of the quality-1 fragment compressor, and its persistent
	   command code. */
	smallTable     [1 << 10]int
	largeTable     []int
	largeTableSize uint
	cmdDepths      [128]byte
	cmdBits        [128]uint16
	cmdCode        [512]byte
	cmdCodeNumbits uint

	tinyBuf struct {
		u64 [2]uint64
		u8  [16]byte
	}

	remainingMetadataBytes uint32
	streamState            int
	isLastBlockEmitted     bool
	isInitialized          bool
}

func (s *Writer) inputBlockSize() uint {
	return uint(1) << uint(s.params.lgblock)
}

func (s *Writer) unprocessedInputSize() uint64 {
	return s.inputPos - s.lastProcessedPos
}

func (s *Writer) remainingInputBlockSize() uint {
	var delta uint64 = s.unprocessedInputSize()
	var blockSize uint = s.inputBlockSize()
	if delta >= uint64(blockSize) {
		return 0
	}
	return blockSize - uint(delta)
}

/* Wraps 64-bit input position to 32-bit ring-buffer position preserving
   "not-a-first-lap" feature. */
func wrapPosition(position uint64) uint32 {
	var result uint32 = uint32(position)
	var gb uint64 = position >> 30
	if gb > 2 {
		/* Wrap every 2GiB; The first 3GB are continuous. */
		result = result&((1<<30)-1) | (uint32((gb-1)&1)+1)<<30
	}

	return result
}

func (s *Writer) getStorage(size int) []byte {
	if len(s.storage) < size {
		s.storage = make([]byte, size)
	}

	return s.storage
}

func hashTableSize(maxTableSize uint, inputSize uint) uint {
	var htsize uint = 256
	for htsize < maxTableSize && htsize < inputSize {
		htsize <<= 1
	}

	return htsize
}

func (s *Writer) hashTable(quality int, inputSize uint, tableSize *uint) []int {
	var maxTableSize uint = maxHashTableSize(quality)
	var htsize uint = hashTableSize(maxTableSize, inputSize)
	var table []int

	/* Use smaller hash table when input.size() is smaller, since we
	   fill the table, incurring O(hash table size) overhead for
	   compression, and if the input is short, we won't need that
	   many hash table entries anyway. */
	assert(maxTableSize >= 256)

	if quality == fastOnePassCompressionQuality {
		/* Only odd shifts are supported by fast-one-pass. */
		if htsize&0xAAAAA == 0 {
			htsize <<= 1
		}
	}

	if htsize <= uint(len(s.smallTable)) {
		table = s.smallTable[:]
	} else {
		if htsize > s.largeTableSize {
			s.largeTableSize = htsize
			s.largeTable = nil
			s.largeTable = make([]int, htsize)
		}

		table = s.largeTable
	}

	*tableSize = htsize
	for i := 0; i < int(htsize); i++ {
		table[i] = 0
	}
	return table
}

/* Renders the WBITS field of the stream header (spec section 9.1): one of
   the four short forms, or the 14-bit large-window form. */
func encodeWindowBits(lgwin int, largeWindow bool) (bits uint16, nbits byte) {
	if largeWindow {
		return uint16((lgwin&0x3F)<<8 | 0x11), 14
	}

	switch {
	case lgwin == 16:
		return 0, 1
	case lgwin == 17:
		return 1, 7
	case lgwin > 17:
		return uint16((lgwin-17)<<1 | 0x01), 4
	default:
		return uint16((lgwin-8)<<4 | 0x01), 7
	}
}

func shouldCompress(data []byte, mask uint, lastFlushPos uint64, bytes uint, numLiterals uint, numCommands uint) bool {
	/* TODO: find more precise minimal block overhead. */
	if bytes <= 2 {
		return false
	}
	if numCommands < (bytes>>8)+2 {
		if float64(numLiterals) > 0.99*float64(bytes) {
			var literalHisto = [256]uint32{0}
			const kSampleRate uint32 = 13
			const kMinEntropy float64 = 7.92
			var bitCostThreshold float64 = float64(bytes) * kMinEntropy / float64(kSampleRate)
			var t uint = uint((uint32(bytes) + kSampleRate - 1) / kSampleRate)
			var pos uint32 = uint32(lastFlushPos)
			var i uint
			for i = 0; i < t; i++ {
				literalHisto[data[pos&uint32(mask)]]++
				pos += kSampleRate
			}

			if bitsEntropy(literalHisto[:], 256) > bitCostThreshold {
				return false
			}
		}
	}

	return true
}

/* Serializes one metablock, choosing the cheapest representation the
   quality level allows; falls back to the uncompressed form whenever the
   compressed body would be larger. */
func writeMetaBlockInternal(data []byte, mask uint, lastFlushPos uint64, bytes uint, isLast bool, literalContextMode int, params *encoderParams, prevByte byte, prevByte2 byte, numLiterals uint, commands []command, savedDistanceCache []int, distanceCache []int, bitPos *uint, buf []byte) {
	var flushedPos uint32 = wrapPosition(lastFlushPos)
	var outTail uint16
	var outTailBits byte
	var literalContextLut contextLUT = getContextLUT(literalContextMode)
	var blockParams encoderParams = *params

	if bytes == 0 {
		/* Write the ISLAST and ISEMPTY bits. */
		writeBits(2, 3, bitPos, buf)

		*bitPos = (*bitPos + 7) &^ 7
		return
	}

	if !shouldCompress(data, mask, lastFlushPos, bytes, numLiterals, uint(len(commands))) {
		/* Restore the distance cache, as its last update by
		   CreateBackwardReferences is now unused. */
		copy(distanceCache, savedDistanceCache[:4])

		storeUncompressedMetaBlock(isLast, data, uint(flushedPos), mask, bytes, bitPos, buf)
		return
	}

	assert(*bitPos <= 14)
	outTail = uint16(buf[1])<<8 | uint16(buf[0])
	outTailBits = byte(*bitPos)
	if params.quality <= maxQualityForStaticEntropyCodes {
		storeMetaBlockFast(data, uint(flushedPos), bytes, mask, isLast, params, commands, bitPos, buf)
	} else if params.quality < minQualityForBlockSplit {
		storeMetaBlockTrivial(data, uint(flushedPos), bytes, mask, isLast, params, commands, bitPos, buf)
	} else {
		mb := getMetaBlockSplit()
		if params.quality < minQualityForHqBlockSplitting {
			var numLiteralContexts uint = 1
			var literalContextMap []uint32 = nil
			if !params.disableLiteralContextModeling {
				decideOverLiteralContextModeling(data, uint(flushedPos), bytes, mask, params.quality, params.sizeHint, &numLiteralContexts, &literalContextMap)
			}

			buildMetaBlockGreedy(data, uint(flushedPos), mask, prevByte, prevByte2, literalContextLut, numLiteralContexts, literalContextMap, commands, mb)
		} else {
			buildMetaBlock(data, uint(flushedPos), mask, &blockParams, prevByte, prevByte2, commands, literalContextMode, mb)
		}

		if params.quality >= minQualityForOptimizeHistograms {
			/* The number of distance symbols effectively used for distance
			   histograms. It might be less than distance alphabet size
			   for "Large Window Brotli" (32-bit). */
			var numEffectiveDistCodes uint32 = blockParams.dist.alphabetSize
			if numEffectiveDistCodes > numHistogramDistanceSymbols {
				numEffectiveDistCodes = numHistogramDistanceSymbols
			}

			optimizeHistograms(numEffectiveDistCodes, mb)
		}

		storeMetaBlock(data, uint(flushedPos), bytes, mask, prevByte, prevByte2, isLast, &blockParams, literalContextMode, commands, mb, bitPos, buf)
		freeMetaBlockSplit(mb)
	}

	if bytes+4 < *bitPos>>3 {
		/* Restore the distance cache and last byte. */
		copy(distanceCache, savedDistanceCache[:4])

		buf[0] = byte(outTail)
		buf[1] = byte(outTail >> 8)
		*bitPos = uint(outTailBits)
		storeUncompressedMetaBlock(isLast, data, uint(flushedPos), mask, bytes, bitPos, buf)
	}
}

func chooseDistanceParams(params *encoderParams) {
	var distancePostfixBits uint32 = 0
	var numDirectDistanceCodes uint32 = 0

	if params.quality >= minQualityForNonzeroDistanceParams {
		var ndirectMsb uint32
		if params.mode == modeFont {
			distancePostfixBits = 1
			numDirectDistanceCodes = 12
		} else {
			distancePostfixBits = params.dist.distancePostfixBits
			numDirectDistanceCodes = params.dist.numDirectDistanceCodes
		}

		ndirectMsb = (numDirectDistanceCodes >> distancePostfixBits) & 0x0F
		if distancePostfixBits > maxNpostfix || numDirectDistanceCodes > maxNdirect || ndirectMsb<<distancePostfixBits != numDirectDistanceCodes {
			distancePostfixBits = 0
			numDirectDistanceCodes = 0
		}
	}

	initDistanceParams(params, distancePostfixBits, numDirectDistanceCodes)
}

func (s *Writer) ensureInitialized() bool {
	if s.isInitialized {
		return true
	}

	s.outTailBits = 0
	s.outTail = 0
	s.remainingMetadataBytes = math.MaxUint32

	sanitizeParams(&s.params)
	s.params.lgblock = computeLgBlock(&s.params)
	chooseDistanceParams(&s.params)

	ringBufferSetup(&s.params, &s.ringBuf)

	/* Initialize last byte with stream header. */
	{
		var lgwin int = int(s.params.lgwin)
		if s.params.quality == uncompressedFramingQuality || s.params.quality == fastOnePassCompressionQuality {
			lgwin = brotliMaxInt(lgwin, 18)
		}

		s.outTail, s.outTailBits = encodeWindowBits(lgwin, s.params.largeWindow)
	}

	if s.params.quality == fastOnePassCompressionQuality {
		s.cmdDepths = [128]byte{
			0, 4, 4, 5, 6, 6, 7, 7,
			7, 7, 7, 8, 8, 8, 8, 8,
			0, 0, 0, 4, 4, 4, 4, 4,
			5, 5, 6, 6, 6, 6, 7, 7,
			7, 7, 10, 10, 10, 10, 10, 10,
			0, 4, 4, 5, 5, 5, 6, 6,
			7, 8, 8, 9, 10, 10, 10, 10,
			10, 10, 10, 10, 10, 10, 10, 10,
			5, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
			6, 6, 6, 6, 6, 6, 5, 5,
			5, 5, 5, 5, 4, 4, 4, 4,
			4, 4, 4, 5, 5, 5, 5, 5,
			5, 6, 6, 7, 7, 7, 8, 10,
			12, 12, 12, 12, 12, 12, 12, 12,
			12, 12, 12, 12,
		}
		s.cmdBits = [128]uint16{
			0, 0, 8, 9, 3, 35, 7, 71,
			39, 103, 23, 47, 175, 111, 239, 31,
			0, 0, 0, 4, 12, 2, 10, 6,
			13, 29, 11, 43, 27, 59, 87, 55,
			15, 79, 319, 831, 191, 703, 447, 959,
			0, 14, 1, 25, 5, 21, 19, 51,
			119, 159, 95, 223, 479, 991, 63, 575,
			127, 639, 383, 895, 255, 767, 511, 1023,
			14, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0,
			27, 59, 7, 39, 23, 55, 30, 1,
			17, 9, 25, 5, 0, 8, 4, 12,
			2, 10, 6, 21, 13, 29, 3, 19,
			11, 15, 47, 31, 95, 63, 127, 255,
			767, 2815, 1791, 3839, 511, 2559, 1535, 3583,
			1023, 3071, 2047, 4095,
		}
		s.cmdCode = [512]byte{
			0xff, 0x77, 0xd5, 0xbf, 0xe7, 0xde, 0xea, 0x9e,
			0x51, 0x5d, 0xde, 0xc6, 0x70, 0x57, 0xbc, 0x58,
			0x58, 0x58, 0xd8, 0xd8, 0x58, 0xd5, 0xcb, 0x8c,
			0xea, 0xe0, 0xc3, 0x87, 0x1f, 0x83, 0xc1, 0x60,
			0x1c, 0x67, 0xb2, 0xaa, 0x06, 0x83, 0xc1, 0x60,
			0x30, 0x18, 0xcc, 0xa1, 0xce, 0x88, 0x54, 0x94,
			0x46, 0xe1, 0xb0, 0xd0, 0x4e, 0xb2, 0xf7, 0x04,
			0x00,
		}
		s.cmdCodeNumbits = 448
	}

	s.isInitialized = true
	return true
}

func encoderInitParams(params *encoderParams) {
	params.mode = defaultMode
	params.largeWindow = false
	params.quality = defaultQuality
	params.lgwin = defaultWindow
	params.lgblock = 0
	params.sizeHint = 0
	params.disableLiteralContextModeling = false
	initEncoderDictionary(&params.dictionary)
	params.dist.distancePostfixBits = 0
	params.dist.numDirectDistanceCodes = 0
	params.dist.alphabetSize = uint32(distanceAlphabetSize(0, 0, maxDistanceBits))
	params.dist.maxDistance = maxDistance
}

func (s *Writer) initState() {
	encoderInitParams(&s.params)
	s.inputPos = 0
	s.commands = s.commands[:0]
	s.numLiterals = 0
	s.lastInsertLen = 0
	s.lastFlushPos = 0
	s.lastProcessedPos = 0
	s.prevByte = 0
	s.prevByte2 = 0
	if s.hasher != nil {
		s.hasher.Common().is_prepared_ = false
	}
	s.cmdCodeNumbits = 0
	s.streamState = streamProcessing
	s.isLastBlockEmitted = false
	s.isInitialized = false

	ringBufferInit(&s.ringBuf)

	/* Initialize distance cache. */
	s.distanceCache[0] = 4

	s.distanceCache[1] = 11
	s.distanceCache[2] = 15
	s.distanceCache[3] = 16

	/* Save the state of the distance cache in case we need to restore it for
	   emitting an uncompressed block. */
	copy(s.savedDistanceCache[:], s.distanceCache[:])
}

/* Appends input to the ring buffer without processing it. Can be called
   repeatedly until a full input block has accumulated; beyond that the next
   encodeData would fail. */
func (s *Writer) copyInputToRingBuffer(inputSize uint, inputBuffer []byte) {
	var rb *ringBuffer = &s.ringBuf
	ringBufferWrite(inputBuffer, inputSize, rb)
	s.inputPos += uint64(inputSize)

	/* Zero the 7 bytes after the newly written data on the first lap of the
	   ring buffer. The hashers read 8 bytes at a time and would otherwise see
	   uninitialized memory near the write frontier; the output would still
	   be valid, but not deterministic. On later laps the region already
	   holds data (the ring buffer keeps a tail copy of its beginning), so
	   zeroing would corrupt it. */
	if rb.pos_ <= rb.mask_ {
		for i := 0; i < 7; i++ {
			rb.buffer_[rb.pos_:][i] = 0
		}
	}
}

/* Marks all buffered input as processed; reports whether the 32-bit
   ring-buffer position wrapped (hashers must be reset then). */
func (s *Writer) updateLastProcessedPos() bool {
	var wrappedPos uint32 = wrapPosition(s.lastProcessedPos)
	var wrappedInputPos uint32 = wrapPosition(s.inputPos)
	s.lastProcessedPos = s.inputPos
	return wrappedInputPos < wrappedPos
}

func (s *Writer) extendLastCommand(bytes *uint32, wrappedPos *uint32) {
	var last *command = &s.commands[len(s.commands)-1]
	var data []byte = s.ringBuf.buffer_
	var mask uint32 = s.ringBuf.mask_
	var windowLimit uint64 = ((uint64(1)) << s.params.lgwin) - windowGap
	var tailCopyLen uint64 = uint64(last.copy_len_) & 0x1FFFFFF
	var copyStart uint64 = s.lastProcessedPos - tailCopyLen
	var reachable uint64
	if copyStart < windowLimit {
		reachable = copyStart
	} else {
		reachable = windowLimit
	}
	var lastDist uint64 = uint64(s.distanceCache[0])
	var distanceCode uint32 = commandRestoreDistanceCode(last, &s.params.dist)
	if distanceCode < numDistanceShortCodes || uint64(distanceCode-(numDistanceShortCodes-1)) == lastDist {
		if lastDist <= reachable {
			for *bytes != 0 && data[*wrappedPos&mask] == data[(uint64(*wrappedPos)-lastDist)&uint64(mask)] {
				last.copy_len_++
				*bytes--
				*wrappedPos++
			}
		}

		/* The copy length is at most the metablock size, and thus expressible. */
		getLengthCode(uint(last.insert_len_), uint(int(last.copy_len_&0x1FFFFFF)+int(last.copy_len_>>25)), last.dist_prefix_&0x3FF == 0, &last.cmd_prefix_)
	}
}

/* Turns the unprocessed ring-buffer bytes into commands and, when a
   metablock boundary is due (or is_last / force_flush demands one), streams
   the serialized metablock to the dst. Between boundaries the
   commands are simply accumulated. Up to 7 bits of the last output byte may
   stay buffered until the stream ends. Fails only when the caller overfilled
   the input block. */
func (s *Writer) encodeData(isLast bool, forceFlush bool) bool {
	var delta uint64 = s.unprocessedInputSize()
	var bytes uint32 = uint32(delta)
	var wrappedPos uint32 = wrapPosition(s.lastProcessedPos)
	var data []byte
	var mask uint32
	var literalContextMode int

	data = s.ringBuf.buffer_
	mask = s.ringBuf.mask_

	/* Adding more blocks after "last" block is forbidden. */
	if s.isLastBlockEmitted {
		return false
	}
	if isLast {
		s.isLastBlockEmitted = true
	}

	if delta > uint64(s.inputBlockSize()) {
		return false
	}

	if s.params.quality == uncompressedFramingQuality || s.params.quality == fastOnePassCompressionQuality {
		if delta == 0 && !isLast {
			/* No new input and the stream does not have to end here. */
			return true
		}

		s.encodeDataFast(isLast, data[wrappedPos&mask:], uint(bytes))
		return true
	}
	{
		/* Theoretical max number of commands is 1 per 2 bytes. */
		newsize := len(s.commands) + int(bytes)/2 + 1
		if newsize > cap(s.commands) {
			/* Reserve a bit more memory to allow merging with a next block
			   without reallocation: that would impact speed. */
			newsize += int(bytes/4) + 16

			newCommands := make([]command, len(s.commands), newsize)
			if s.commands != nil {
				copy(newCommands, s.commands)
			}

			s.commands = newCommands
		}
	}

	initOrStitchToPreviousBlock(&s.hasher, data, uint(mask), &s.params, uint(wrappedPos), uint(bytes), isLast)

	literalContextMode = chooseContextMode(&s.params, data, uint(wrapPosition(s.lastFlushPos)), uint(mask), uint(s.inputPos-s.lastFlushPos))

	if len(s.commands) != 0 && s.lastInsertLen == 0 {
		s.extendLastCommand(&bytes, &wrappedPos)
	}

	if s.params.quality == zopflificationQuality {
		assert(s.params.hasher.type_ == 10)
		createZopfliBackwardReferences(uint(bytes), uint(wrappedPos), data, uint(mask), &s.params, s.hasher.(*h10), s.distanceCache[:], &s.lastInsertLen, &s.commands, &s.numLiterals)
	} else if s.params.quality == hqZopflificationQuality {
		assert(s.params.hasher.type_ == 10)
		createHqZopfliBackwardReferences(uint(bytes), uint(wrappedPos), data, uint(mask), &s.params, s.hasher, s.distanceCache[:], &s.lastInsertLen, &s.commands, &s.numLiterals)
	} else {
		createBackwardReferences(uint(bytes), uint(wrappedPos), data, uint(mask), &s.params, s.hasher, s.distanceCache[:], &s.lastInsertLen, &s.commands, &s.numLiterals)
	}
	{
		var maxLength uint = maxMetablockSize(&s.params)
		var maxLiterals uint = maxLength / 8
		maxCommands := int(maxLength / 8)
		var processedBytes uint = uint(s.inputPos - s.lastFlushPos)
		var nextBlockFits bool = processedBytes+s.inputBlockSize() <= maxLength
		var shouldFlush bool = s.params.quality < minQualityForBlockSplit && s.numLiterals+uint(len(s.commands)) >= maxNumDelayedSymbols

		/* If maximal possible additional block doesn't fit metablock, flush now. */
		/* TODO: Postpone decision until next block arrives? */

		/* If block splitting is not used, then flush as soon as there is some
		   amount of commands / literals produced. */
		if !isLast && !forceFlush && !shouldFlush && nextBlockFits && s.numLiterals < maxLiterals && len(s.commands) < maxCommands {
			/* Merge with next input block. Everything will happen later. */
			if s.updateLastProcessedPos() {
				hasherReset(s.hasher)
			}

			return true
		}
	}

	/* Create the last insert-only command. */
	if s.lastInsertLen > 0 {
		s.commands = append(s.commands, makeInsertCommand(s.lastInsertLen))
		s.numLiterals += s.lastInsertLen
		s.lastInsertLen = 0
	}

	if !isLast && s.inputPos == s.lastFlushPos {
		/* We have no new input data and we don't have to finish the stream, so
		   nothing to do. */
		return true
	}

	assert(s.inputPos >= s.lastFlushPos)
	assert(s.inputPos > s.lastFlushPos || isLast)
	assert(s.inputPos-s.lastFlushPos <= 1<<24)
	{
		var metablockSize uint32 = uint32(s.inputPos - s.lastFlushPos)
		var buf []byte = s.getStorage(int(2*metablockSize + 503))
		var bitPos uint = uint(s.outTailBits)
		buf[0] = byte(s.outTail)
		buf[1] = byte(s.outTail >> 8)
		writeMetaBlockInternal(data, uint(mask), s.lastFlushPos, uint(metablockSize), isLast, literalContextMode, &s.params, s.prevByte, s.prevByte2, s.numLiterals, s.commands, s.savedDistanceCache[:], s.distanceCache[:], &bitPos, buf)
		s.outTail = uint16(buf[bitPos>>3])
		s.outTailBits = byte(bitPos & 7)
		s.lastFlushPos = s.inputPos
		if s.updateLastProcessedPos() {
			hasherReset(s.hasher)
		}

		if s.lastFlushPos > 0 {
			s.prevByte = data[(uint32(s.lastFlushPos)-1)&mask]
		}

		if s.lastFlushPos > 1 {
			s.prevByte2 = data[uint32(s.lastFlushPos-2)&mask]
		}

		s.commands = s.commands[:0]
		s.numLiterals = 0

		/* Save the state of the distance cache in case we need to restore it for
		   emitting an uncompressed block. */
		copy(s.savedDistanceCache[:], s.distanceCache[:])

		s.writeOutput(buf[:bitPos>>3])
		return true
	}
}

/* The quality 0/1 ring-buffer path: frames (quality 0) or single-pass
   compresses (quality 1) the unprocessed bytes straight to output. */
func (s *Writer) encodeDataFast(isLast bool, data []byte, bytes uint) {
	bitPos := uint(s.outTailBits)
	buf := s.getStorage(int(2*bytes + 503))
	buf[0] = byte(s.outTail)
	buf[1] = byte(s.outTail >> 8)

	if s.params.quality == fastOnePassCompressionQuality {
		var tableSize uint
		table := s.hashTable(s.params.quality, bytes, &tableSize)
		compressFragmentFast(data, bytes, isLast, table, tableSize, s.cmdDepths[:], s.cmdBits[:], &s.cmdCodeNumbits, s.cmdCode[:], &bitPos, buf)
	} else {
		emitUncompressedFrame(data, bytes, isLast, &bitPos, buf)
	}

	s.outTail = uint16(buf[bitPos>>3])
	s.outTailBits = byte(bitPos & 7)
	s.updateLastProcessedPos()
	s.writeOutput(buf[:bitPos>>3])
}

/* Frames the input bytes into one uncompressed metablock. Quality zero never
   inspects the data. */
func emitUncompressedFrame(input []byte, inputSize uint, isLast bool, bitPos *uint, buf []byte) {
	if inputSize == 0 {
		assert(isLast)
		writeBits(1, 1, bitPos, buf) /* islast */
		writeBits(1, 1, bitPos, buf) /* isempty */
		*bitPos = (*bitPos + 7) &^ 7
		return
	}

	storeUncompressedMetaBlock(isLast, input, 0, ^uint(0)>>1, inputSize, bitPos, buf)
}

/* Flushes the pending output bits and renders a metadata-block header into
   |header| (at least 16 aligned bytes). Returns the byte count. The block
   size is limited to 1 << 24. */
func (s *Writer) writeMetadataHeader(blockSize uint, header []byte) uint {
	bitPos := uint(s.outTailBits)
	header[0] = byte(s.outTail)
	header[1] = byte(s.outTail >> 8)
	s.outTail = 0
	s.outTailBits = 0

	writeBits(1, 0, &bitPos, header)
	writeBits(2, 3, &bitPos, header)
	writeBits(1, 0, &bitPos, header)
	if blockSize == 0 {
		writeBits(2, 0, &bitPos, header)
	} else {
		var nbits uint32
		if blockSize == 1 {
			nbits = 0
		} else {
			nbits = log2FloorNonZero(uint(uint32(blockSize)-1)) + 1
		}
		var nbytes uint32 = (nbits + 7) / 8
		writeBits(2, uint64(nbytes), &bitPos, header)
		writeBits(uint(8*nbytes), uint64(blockSize)-1, &bitPos, header)
	}

	return (bitPos + 7) >> 3
}

func (s *Writer) injectBytePaddingBlock() {
	var seal uint32 = uint32(s.outTail)
	var sealBits uint = uint(s.outTailBits)
	s.outTail = 0
	s.outTailBits = 0

	/* is_last = 0, data_nibbles = 11, reserved = 0, meta_nibbles = 00 */
	seal |= 0x6 << sealBits

	sealBits += 6

	dst := s.tinyBuf.u8[:]

	dst[0] = byte(seal)
	if sealBits > 8 {
		dst[1] = byte(seal >> 8)
	}
	if sealBits > 16 {
		dst[2] = byte(seal >> 16)
	}
	s.writeOutput(dst[:(sealBits+7)>>3])
}

func (s *Writer) checkFlushComplete() {
	if s.streamState == streamFlushRequested && s.err == nil {
		s.streamState = streamProcessing
	}
}

func (s *Writer) compressStreamFast(op int, availIn *uint, inNext *[]byte) bool {
	var blockSizeLimit uint = uint(1) << s.params.lgwin
	if s.params.quality != uncompressedFramingQuality && s.params.quality != fastOnePassCompressionQuality {
		return false
	}

	for {
		if s.streamState == streamFlushRequested && s.outTailBits != 0 {
			s.injectBytePaddingBlock()
			continue
		}

		/* Compress block only when stream is not
		   finished, there is no pending flush request, and there is either
		   additional input or pending operation. */
		if s.streamState == streamProcessing && (*availIn != 0 || op != int(operationProcess)) {
			var blockSize uint = brotliMinSizeT(blockSizeLimit, *availIn)
			var isLast bool = (*availIn == blockSize) && (op == int(operationFinish))
			var forceFlush bool = (*availIn == blockSize) && (op == int(operationFlush))
			var outCap uint = 2*blockSize + 503
			var buf []byte = nil
			var bitPos uint = uint(s.outTailBits)
			var tableSize uint
			var table []int

			if forceFlush && blockSize == 0 {
				s.streamState = streamFlushRequested
				continue
			}

			buf = s.getStorage(int(outCap))

			buf[0] = byte(s.outTail)
			buf[1] = byte(s.outTail >> 8)

			if s.params.quality == fastOnePassCompressionQuality {
				table = s.hashTable(s.params.quality, blockSize, &tableSize)
				compressFragmentFast(*inNext, blockSize, isLast, table, tableSize, s.cmdDepths[:], s.cmdBits[:], &s.cmdCodeNumbits, s.cmdCode[:], &bitPos, buf)
			} else {
				emitUncompressedFrame(*inNext, blockSize, isLast, &bitPos, buf)
			}

			*inNext = (*inNext)[blockSize:]
			*availIn -= blockSize
			var outBytes uint = bitPos >> 3
			s.writeOutput(buf[:outBytes])

			s.outTail = uint16(buf[bitPos>>3])
			s.outTailBits = byte(bitPos & 7)

			if forceFlush {
				s.streamState = streamFlushRequested
			}
			if isLast {
				s.streamState = streamFinished
			}
			continue
		}

		break
	}

	s.checkFlushComplete()
	return true
}

func (s *Writer) processMetadata(availIn *uint, inNext *[]byte) bool {
	if *availIn > 1<<24 {
		return false
	}

	/* Switch to metadata block workflow, if required. */
	if s.streamState == streamProcessing {
		s.remainingMetadataBytes = uint32(*availIn)
		s.streamState = streamMetadataHead
	}

	if s.streamState != streamMetadataHead && s.streamState != streamMetadataBody {
		return false
	}

	for {
		if s.streamState == streamFlushRequested && s.outTailBits != 0 {
			s.injectBytePaddingBlock()
			continue
		}

		if s.inputPos != s.lastFlushPos {
			var result bool = s.encodeData(false, true)
			if !result {
				return false
			}
			continue
		}

		if s.streamState == streamMetadataHead {
			n := s.writeMetadataHeader(uint(s.remainingMetadataBytes), s.tinyBuf.u8[:])
			s.writeOutput(s.tinyBuf.u8[:n])
			s.streamState = streamMetadataBody
			continue
		} else {
			/* Exit workflow only when there is no more input and no more output.
			   Otherwise client may continue producing empty metadata blocks. */
			if s.remainingMetadataBytes == 0 {
				s.remainingMetadataBytes = math.MaxUint32
				s.streamState = streamProcessing
				break
			}

			/* This guarantees progress in "TakeOutput" workflow. */
			var c uint32 = brotliMinUint32T(s.remainingMetadataBytes, 16)
			copy(s.tinyBuf.u8[:], (*inNext)[:c])
			*inNext = (*inNext)[c:]
			*availIn -= uint(c)
			s.remainingMetadataBytes -= c
			s.writeOutput(s.tinyBuf.u8[:c])

			continue
		}
	}

	return true
}

func (s *Writer) updateSizeHint(availIn uint) {
	if s.params.sizeHint == 0 {
		var delta uint64 = s.unprocessedInputSize()
		var tail uint64 = uint64(availIn)
		var limit uint32 = 1 << 30
		var total uint32
		if (delta >= uint64(limit)) || (tail >= uint64(limit)) || ((delta + tail) >= uint64(limit)) {
			total = limit
		} else {
			total = uint32(delta + tail)
		}

		s.params.sizeHint = uint(total)
	}
}

func (s *Writer) compressStream(op int, availIn *uint, inNext *[]byte) bool {
	if !s.ensureInitialized() {
		return false
	}

	/* Unfinished metadata block; check requirements. */
	if s.remainingMetadataBytes != math.MaxUint32 {
		if uint32(*availIn) != s.remainingMetadataBytes {
			return false
		}
		if op != int(operationEmitMetadata) {
			return false
		}
	}

	if op == int(operationEmitMetadata) {
		s.updateSizeHint(0) /* First data metablock might be emitted here. */
		return s.processMetadata(availIn, inNext)
	}

	if s.streamState == streamMetadataHead || s.streamState == streamMetadataBody {
		return false
	}

	if s.streamState != streamProcessing && *availIn != 0 {
		return false
	}

	if s.params.quality == uncompressedFramingQuality || s.params.quality == fastOnePassCompressionQuality {
		return s.compressStreamFast(op, availIn, inNext)
	}

	for {
		var roomInBlock uint = s.remainingInputBlockSize()

		if roomInBlock != 0 && *availIn != 0 {
			var take uint = brotliMinSizeT(roomInBlock, *availIn)
			s.copyInputToRingBuffer(take, *inNext)
			*inNext = (*inNext)[take:]
			*availIn -= take
			continue
		}

		if s.streamState == streamFlushRequested && s.outTailBits != 0 {
			s.injectBytePaddingBlock()
			continue
		}

		/* Compress data only when stream is not
		   finished and there is no pending flush request. */
		if s.streamState == streamProcessing {
			if roomInBlock == 0 || op != int(operationProcess) {
				var isLast bool = (*availIn == 0) && op == int(operationFinish)
				var forceFlush bool = (*availIn == 0) && op == int(operationFlush)
				var result bool
				s.updateSizeHint(*availIn)
				result = s.encodeData(isLast, forceFlush)
				if !result {
					return false
				}
				if forceFlush {
					s.streamState = streamFlushRequested
				}
				if isLast {
					s.streamState = streamFinished
				}
				continue
			}
		}

		break
	}

	s.checkFlushComplete()
	return true
}

func (w *Writer) writeOutput(data []byte) {
	if w.err != nil {
		return
	}

	_, w.err = w.dst.Write(data)
	if w.err == nil {
		w.checkFlushComplete()
	}
}
