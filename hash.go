package brotli

import (
	"encoding/binary"
	"fmt"
)

type hasherCommon struct {
	params           hasherParams
	is_prepared_     bool
	dict_num_lookups uint
	dict_num_matches uint
}

func (h *hasherCommon) Common() *hasherCommon {
	return h
}

type hasherHandle interface {
	Common() *hasherCommon
	Initialize(params *encoderParams)
	Prepare(oneShot bool, inputSize uint, data []byte)
	StitchToPreviousBlock(numBytes uint, position uint, ringbuffer []byte, ringbufferMask uint)
	HashTypeLength() uint
	StoreLookahead() uint
	PrepareDistanceCache(distanceCache []int)
	FindLongestMatch(dictionary *encoderDictionary, data []byte, ringBufferMask uint, distanceCache []int, curIx uint, maxLength uint, maxBackward uint, gap uint, maxDistance uint, out *hasherSearchResult)
	StoreRange(data []byte, mask uint, ixStart uint, ixEnd uint)
	Store(data []byte, mask uint, ix uint)
}

const kCutoffTransformsCount uint32 = 10

/*   0,  12,   27,    23,    42,    63,    56,    48,    59,    64 */
/* 0+0, 4+8, 8+19, 12+11, 16+26, 20+43, 24+32, 28+20, 32+27, 36+28 */
const kCutoffTransforms uint64 = 0x071B520ADA2D3200

type hasherSearchResult struct {
	len            uint
	distance       uint
	score          uint
	len_code_delta int
}

/* kHashMul32 multiplier has these properties:
   * The multiplier must be odd. Otherwise we may lose the highest bit.
   * No long streaks of ones or zeros.
   * There is no effort to ensure that it is a prime, the oddity is enough
     for this use.
   * The number has been tuned heuristically against compression benchmarks. */
const kHashMul32 uint32 = 0x1E35A7BD

const kHashMul64 uint64 = 0x1E35A7BD1E35A7BD

const kHashMul64Long uint64 = 0x1FE35A7BD3579BD3

func hash14(data []byte) uint32 {
	var h uint32 = binary.LittleEndian.Uint32(data) * kHashMul32

	/* The higher bits contain more mixture from the multiplication,
	   so we take our results from there. */
	return h >> (32 - 14)
}

func prepareDistanceCache(distanceCache []int, numDistances int) {
	if numDistances > 4 {
		var lastDistance int = distanceCache[0]
		distanceCache[4] = lastDistance - 1
		distanceCache[5] = lastDistance + 1
		distanceCache[6] = lastDistance - 2
		distanceCache[7] = lastDistance + 2
		distanceCache[8] = lastDistance - 3
		distanceCache[9] = lastDistance + 3
		if numDistances > 10 {
			var nextLastDistance int = distanceCache[1]
			distanceCache[10] = nextLastDistance - 1
			distanceCache[11] = nextLastDistance + 1
			distanceCache[12] = nextLastDistance - 2
			distanceCache[13] = nextLastDistance + 2
			distanceCache[14] = nextLastDistance - 3
			distanceCache[15] = nextLastDistance + 3
		}
	}
}

const literalByteScore = 135

const distanceBitPenalty = 30

/* Score must be positive after applying maximal penalty. */
const scoreBase = (distanceBitPenalty * 8 * 8)

/* Usually, we always choose the longest backward reference. This function
   allows for the exception of that rule.

   If we choose a backward reference that is further away, it will
   usually be coded with more bits. We approximate this by assuming
   log2(distance). If the distance can be expressed in terms of the
   last four distances, we use some heuristic constants to estimate
   the bits cost. For the first up to four literals we use the bit
   cost of the literals from the literal cost model, after that we
   use the average bit cost of the cost model.

   This function is used to sometimes discard a longer backward reference
   when it is not much longer and the bit cost for encoding it is more
   than the saved literals.

   backward_reference_offset MUST be positive. */
func backwardReferenceScore(copyLength uint, backwardReferenceOffset uint) uint {
	return scoreBase + literalByteScore*copyLength - distanceBitPenalty*uint(log2FloorNonZero(backwardReferenceOffset))
}

func backwardReferenceScoreUsingLastDistance(copyLength uint) uint {
	return literalByteScore*copyLength + scoreBase + 15
}

func backwardReferencePenaltyUsingLastDistance(distanceShortCode uint) uint {
	return uint(39) + ((0x1CA10 >> (distanceShortCode & 0xE)) & 0xE)
}

func testStaticDictionaryItem(dictionary *encoderDictionary, item uint, data []byte, maxLength uint, maxBackward uint, maxDistance uint, out *hasherSearchResult) bool {
	var len uint
	var wordIdx uint
	var offset uint
	var matchlen uint
	var backward uint
	var score uint
	len = item & 0x1F
	wordIdx = item >> 5
	offset = uint(dictionary.words.offsets_by_length[len]) + len*wordIdx
	if len > maxLength {
		return false
	}

	matchlen = findMatchLengthWithLimit(data, dictionary.words.data[offset:], uint(len))
	if matchlen+uint(dictionary.cutoffTransformsCount) <= len || matchlen == 0 {
		return false
	}
	{
		var cut uint = len - matchlen
		var transformID uint = (cut << 2) + uint((dictionary.cutoffTransforms>>(cut*6))&0x3F)
		backward = maxBackward + 1 + wordIdx + (transformID << dictionary.words.size_bits_by_length[len])
	}

	if backward > maxDistance {
		return false
	}

	score = backwardReferenceScore(matchlen, backward)
	if score < out.score {
		return false
	}

	out.len = matchlen
	out.len_code_delta = int(len) - int(matchlen)
	out.distance = backward
	out.score = score
	return true
}

func searchInStaticDictionary(dictionary *encoderDictionary, handle hasherHandle, data []byte, maxLength uint, maxBackward uint, maxDistance uint, out *hasherSearchResult, shallow bool) {
	var key uint
	var i uint
	var self *hasherCommon = handle.Common()
	if dictionary.hashTable == nil {
		return
	}

	if self.dict_num_matches < self.dict_num_lookups>>7 {
		return
	}

	key = uint(hash14(data) << 1)
	var count uint = 2
	if shallow {
		count = 1
	}
	for i = 0; i < count; (func() { i++; key++ })() {
		var item uint = uint(dictionary.hashTable[key])
		self.dict_num_lookups++
		if item != 0 {
			var itemMatches bool = testStaticDictionaryItem(dictionary, item, data, maxLength, maxBackward, maxDistance, out)
			if itemMatches {
				self.dict_num_matches++
			}
		}
	}
}

type backwardMatch struct {
	distance        uint32
	length_and_code uint32
}

func initBackwardMatch(self *backwardMatch, dist uint, len uint) {
	self.distance = uint32(dist)
	self.length_and_code = uint32(len << 5)
}

func initDictionaryBackwardMatch(self *backwardMatch, dist uint, len uint, lenCode uint) {
	self.distance = uint32(dist)
	var tmp uint
	if len == lenCode {
		tmp = 0
	} else {
		tmp = lenCode
	}
	self.length_and_code = uint32(len<<5 | tmp)
}

func backwardMatchLength(self *backwardMatch) uint {
	return uint(self.length_and_code >> 5)
}

func backwardMatchLengthCode(self *backwardMatch) uint {
	var code uint = uint(self.length_and_code) & 31
	if code != 0 {
		return code
	} else {
		return backwardMatchLength(self)
	}
}

func hasherReset(handle hasherHandle) {
	if handle == nil {
		return
	}
	handle.Common().is_prepared_ = false
}

func newHasher(typ int) hasherHandle {
	switch typ {
	case 2:
		return &hashLongestMatchQuickly{
			bucketBits:    16,
			bucketSweep:   1,
			hashLen:       5,
			useDictionary: true,
		}
	case 3:
		return &hashLongestMatchQuickly{
			bucketBits:    16,
			bucketSweep:   2,
			hashLen:       5,
			useDictionary: false,
		}
	case 4:
		return &hashLongestMatchQuickly{
			bucketBits:    17,
			bucketSweep:   4,
			hashLen:       5,
			useDictionary: false,
		}
	case 5:
		return new(h5)
	case 6:
		return new(h6)
	case 10:
		return new(h10)
	case 35:
		return &hashComposite{hasherA: 3, hasherB: hashRollingJumpFast}
	case 40:
		return &hashForgetfulChain{
			bucketBits:              15,
			numBanks:                1,
			bankBits:                16,
			numLastDistancesToCheck: 4,
		}
	case 41:
		return &hashForgetfulChain{
			bucketBits:              15,
			numBanks:                1,
			bankBits:                16,
			numLastDistancesToCheck: 10,
		}
	case 42:
		return &hashForgetfulChain{
			bucketBits:              15,
			numBanks:                512,
			bankBits:                9,
			numLastDistancesToCheck: 16,
		}
	case 54:
		return &hashLongestMatchQuickly{
			bucketBits:    20,
			bucketSweep:   4,
			hashLen:       7,
			useDictionary: false,
		}
	case 55:
		return &hashComposite{hasherA: 54, hasherB: hashRollingJumpFast}
	case 65:
		return &hashComposite{hasherA: 6, hasherB: hashRollingJump1}
	}

	panic(fmt.Sprintf("unknown hasher type: %d", typ))
}

func hasherSetup(handle *hasherHandle, params *encoderParams, data []byte, position uint, inputSize uint, isLast bool) {
	var self hasherHandle = nil
	var common *hasherCommon = nil
	var oneShot bool = (position == 0 && isLast)
	if *handle == nil {
		chooseHasher(params, &params.hasher)
		self = newHasher(params.hasher.type_)

		*handle = self
		common = self.Common()
		common.params = params.hasher
		self.Initialize(params)
		hasherReset(*handle)
	}

	self = *handle
	common = self.Common()
	if !common.is_prepared_ {
		self.Prepare(oneShot, inputSize, data)

		if position == 0 {
			common.dict_num_lookups = 0
			common.dict_num_matches = 0
		}

		common.is_prepared_ = true
	}
}

func initOrStitchToPreviousBlock(handle *hasherHandle, data []byte, mask uint, params *encoderParams, position uint, inputSize uint, isLast bool) {
	var self hasherHandle
	hasherSetup(handle, params, data, position, inputSize, isLast)
	self = *handle
	self.StitchToPreviousBlock(inputSize, position, data, mask)
}
