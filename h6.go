package brotli

import "encoding/binary"

/* Copyright 2010 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Like h5, but uses a longer hash (5-8 bytes) so that long matches hash to
   the same bucket even when the window is large. */
func (*h6) HashTypeLength() uint {
	return 8
}

func (*h6) StoreLookahead() uint {
	return 8
}

/* HashBytes is the function that chooses the bucket to place the address in. */
func hashBytesH6(data []byte, mask uint64, shift int) uint32 {
	var h uint64 = (binary.LittleEndian.Uint64(data) & mask) * kHashMul64Long

	/* The higher bits contain more mixture from the multiplication,
	   so we take our results from there. */
	return uint32(h >> uint(shift))
}

type h6 struct {
	hasherCommon
	bucket_size_ uint
	block_size_  uint
	hash_shift_  int
	hash_mask_   uint64
	block_mask_  uint32
	num          []uint16
	buckets      []uint32
}

func (h *h6) Initialize(params *encoderParams) {
	h.hash_shift_ = 64 - h.params.bucketBits
	h.hash_mask_ = (^(uint64(0))) >> uint(64-8*h.params.hashLen)
	h.bucket_size_ = uint(1) << uint(h.params.bucketBits)
	h.block_size_ = uint(1) << uint(h.params.blockBits)
	h.block_mask_ = uint32(h.block_size_ - 1)
	h.num = make([]uint16, h.bucket_size_)
	h.buckets = make([]uint32, h.block_size_*h.bucket_size_)
}

func (h *h6) Prepare(oneShot bool, inputSize uint, data []byte) {
	var num []uint16 = h.num
	var partialPrepareThreshold uint = h.bucket_size_ >> 6

	/* Partial preparation is 100 times slower (per socket). */
	if oneShot && inputSize <= partialPrepareThreshold {
		var i uint
		for i = 0; i < inputSize; i++ {
			var key uint32 = hashBytesH6(data[i:], h.hash_mask_, h.hash_shift_)
			num[key] = 0
		}
	} else {
		for i := 0; i < int(h.bucket_size_); i++ {
			num[i] = 0
		}
	}
}

/* Look at hashLen (5-8) bytes at &data[ix & mask].
   Compute a hash from these, and store the value of ix at that position. */
func (h *h6) Store(data []byte, mask uint, ix uint) {
	var num []uint16 = h.num
	var key uint32 = hashBytesH6(data[ix&mask:], h.hash_mask_, h.hash_shift_)
	var minorIx uint = uint(num[key]) & uint(h.block_mask_)
	var offset uint = minorIx + uint(key<<uint(h.params.blockBits))
	h.buckets[offset] = uint32(ix)
	num[key]++
}

func (h *h6) StoreRange(data []byte, mask uint, ixStart uint, ixEnd uint) {
	var i uint
	for i = ixStart; i < ixEnd; i++ {
		h.Store(data, mask, i)
	}
}

func (h *h6) StitchToPreviousBlock(numBytes uint, position uint, ringbuffer []byte, ringbufferMask uint) {
	if numBytes >= h.HashTypeLength()-1 && position >= 3 {
		/* Prepare the hashes for three last bytes of the last write.
		   These could not be calculated before, since they require knowledge
		   of both the previous and the current block. */
		h.Store(ringbuffer, ringbufferMask, position-3)

		h.Store(ringbuffer, ringbufferMask, position-2)
		h.Store(ringbuffer, ringbufferMask, position-1)
	}
}

func (h *h6) PrepareDistanceCache(distanceCache []int) {
	prepareDistanceCache(distanceCache, h.params.numLastDistancesToCheck)
}

/* Find a longest backward match of &data[cur_ix] up to the length of
   max_length and stores the position cur_ix in the hash table.

   REQUIRES: PrepareDistanceCache must be invoked for current distance cache
             values; if this method is invoked repeatedly with the same distance
             cache values, it is enough to invoke PrepareDistanceCache once.

   Does not look for matches longer than max_length.
   Does not look for matches further away than max_backward.
   Writes the best match into |out|.
   |out|->score is updated only if a better match is found. */
func (h *h6) FindLongestMatch(dictionary *encoderDictionary, data []byte, ringBufferMask uint, distanceCache []int, curIx uint, maxLength uint, maxBackward uint, gap uint, maxDistance uint, out *hasherSearchResult) {
	var num []uint16 = h.num
	var buckets []uint32 = h.buckets
	var curIxMasked uint = curIx & ringBufferMask
	var minScore uint = out.score
	var bestScore uint = out.score
	var bestLen uint = out.len
	var i uint
	out.len = 0

	out.len_code_delta = 0

	/* Try last distance first. */
	for i = 0; i < uint(h.params.numLastDistancesToCheck); i++ {
		var backward uint = uint(distanceCache[i])
		var prevIx uint = uint(curIx - backward)
		if prevIx >= curIx {
			continue
		}

		if backward > maxBackward {
			continue
		}

		prevIx &= ringBufferMask

		if curIxMasked+bestLen > ringBufferMask || prevIx+bestLen > ringBufferMask || data[curIxMasked+bestLen] != data[prevIx+bestLen] {
			continue
		}
		{
			var l uint = findMatchLengthWithLimit(data[prevIx:], data[curIxMasked:], maxLength)
			if l >= 3 || (l == 2 && i < 2) {
				/* Comparing for >= 2 does not change the semantics, but just saves for
				   a few unnecessary binary logarithms in backward reference score,
				   since we are not interested in such short matches. */
				var score uint = backwardReferenceScoreUsingLastDistance(l)
				if bestScore < score {
					if i != 0 {
						score -= backwardReferencePenaltyUsingLastDistance(i)
					}
					if bestScore < score {
						bestScore = score
						bestLen = l
						out.len = bestLen
						out.distance = backward
						out.score = bestScore
					}
				}
			}
		}
	}
	{
		var key uint32 = hashBytesH6(data[curIxMasked:], h.hash_mask_, h.hash_shift_)
		bucket := buckets[key<<uint(h.params.blockBits):]
		var down uint
		if uint(num[key]) > h.block_size_ {
			down = uint(num[key]) - h.block_size_
		} else {
			down = 0
		}
		for i = uint(num[key]); i > down; {
			var prevIx uint
			i--
			prevIx = uint(bucket[uint32(i)&h.block_mask_])
			var backward uint = curIx - prevIx
			if backward > maxBackward {
				break
			}

			prevIx &= ringBufferMask
			if curIxMasked+bestLen > ringBufferMask || prevIx+bestLen > ringBufferMask || data[curIxMasked+bestLen] != data[prevIx+bestLen] {
				continue
			}
			{
				var l uint = findMatchLengthWithLimit(data[prevIx:], data[curIxMasked:], maxLength)
				if l >= 4 {
					/* Comparing for >= 3 does not change the semantics, but just saves
					   for a few unnecessary binary logarithms in backward reference
					   score, since we are not interested in such short matches. */
					var score uint = backwardReferenceScore(l, backward)
					if bestScore < score {
						bestScore = score
						bestLen = l
						out.len = bestLen
						out.distance = backward
						out.score = bestScore
					}
				}
			}
		}

		bucket[uint32(uint(num[key]))&h.block_mask_] = uint32(curIx)
		num[key]++
	}

	if minScore == out.score {
		searchInStaticDictionary(dictionary, h, data[curIxMasked:], maxLength, maxBackward+gap, maxDistance, out, false)
	}
}
