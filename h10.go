package brotli

import "encoding/binary"

/* Copyright 2016 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

func (*h10) HashTypeLength() uint {
	return 4
}

func (*h10) StoreLookahead() uint {
	return maxTreeCompLength
}

/* HashBytes is the function that chooses the bucket to place the address in. */
func hashBytesH10(data []byte) uint32 {
	var h uint32 = binary.LittleEndian.Uint32(data) * kHashMul32

	/* The higher bits contain more mixture from the multiplication,
	   so we take our results from there. */
	return h >> (32 - bucketBitsH10)
}

const bucketBitsH10 = 17

const maxTreeSearchDepth uint = 64

const maxTreeCompLength uint = 128

/* A (forgetful) hash table where each hash bucket contains a binary tree of
   sequences whose first 4 bytes share the same hash code.
   Each sequence is maxTreeCompLength long and is identified by its starting
   position in the input data. The binary tree is sorted by the lexicographic
   order of the sequences, and it is also a max-heap with respect to the
   starting positions. */
type h10 struct {
	hasherCommon
	window_mask_ uint
	buckets_     [1 << bucketBitsH10]uint32
	invalid_pos_ uint32
	forest       []uint32
}

func (h *h10) Initialize(params *encoderParams) {
	h.window_mask_ = (1 << params.lgwin) - 1
	h.invalid_pos_ = uint32(0 - h.window_mask_)
	var numNodes uint = h.window_mask_ + 1
	h.forest = make([]uint32, 2*numNodes)
}

func (h *h10) Prepare(oneShot bool, inputSize uint, data []byte) {
	var invalidPos uint32 = h.invalid_pos_
	var i uint32
	for i = 0; i < 1<<bucketBitsH10; i++ {
		h.buckets_[i] = invalidPos
	}
}

func leftChildIndexH10(self *h10, pos uint) uint {
	return 2 * (pos & self.window_mask_)
}

func rightChildIndexH10(self *h10, pos uint) uint {
	return 2*(pos&self.window_mask_) + 1
}

/* Stores the hash of the next 4 bytes and in a single tree-traversal, the
   hash bucket's binary tree is searched for matches and is re-rooted at the
   current position.

   If less than maxTreeCompLength data is available, the hash bucket of the
   current position is searched for matches, but the state of the hash table
   is not changed, since we can not know the final sorting order of the
   current (incomplete) sequence.

   This function must be called with increasing cur_ix positions. */
func storeAndFindMatchesH10(self *h10, data []byte, curIx uint, ringBufferMask uint, maxLength uint, maxBackward uint, bestLen *uint, matches []backwardMatch, matchesCount *uint) {
	var curIxMasked uint = curIx & ringBufferMask
	var maxCompLen uint = brotliMinSizeT(maxLength, maxTreeCompLength)
	var shouldRerootTree bool = maxLength >= maxTreeCompLength
	var key uint32 = hashBytesH10(data[curIxMasked:])
	var forest []uint32 = self.forest
	var prevIx uint = uint(self.buckets_[key])
	var nodeLeft uint = leftChildIndexH10(self, curIx)
	var nodeRight uint = rightChildIndexH10(self, curIx)
	var bestLenLeft uint = 0
	var bestLenRight uint = 0
	var depthRemaining uint

	/* The forest index of the rightmost node of the left subtree of the new
	   root, updated as we traverse and re-root the tree of the hash bucket. */

	/* The forest index of the leftmost node of the right subtree of the new
	   root, updated as we traverse and re-root the tree of the hash bucket. */

	/* The match length of the rightmost node of the left subtree of the new
	   root, updated as we traverse and re-root the tree of the hash bucket. */

	/* The match length of the leftmost node of the right subtree of the new
	   root, updated as we traverse and re-root the tree of the hash bucket. */
	if shouldRerootTree {
		self.buckets_[key] = uint32(curIx)
	}

	for depthRemaining = maxTreeSearchDepth; ; depthRemaining-- {
		var backward uint = curIx - prevIx
		var prevIxMasked uint = prevIx & ringBufferMask
		if backward == 0 || backward > maxBackward || depthRemaining == 0 {
			if shouldRerootTree {
				forest[nodeLeft] = self.invalid_pos_
				forest[nodeRight] = self.invalid_pos_
			}

			break
		}
		{
			var curLen uint = brotliMinSizeT(bestLenLeft, bestLenRight)
			var l uint
			l = curLen + findMatchLengthWithLimit(data[curIxMasked+curLen:], data[prevIxMasked+curLen:], maxLength-curLen)
			if matches != nil && l > *bestLen {
				*bestLen = l
				initBackwardMatch(&matches[*matchesCount], backward, l)
				*matchesCount++
			}

			if l >= maxCompLen {
				if shouldRerootTree {
					forest[nodeLeft] = forest[leftChildIndexH10(self, prevIx)]
					forest[nodeRight] = forest[rightChildIndexH10(self, prevIx)]
				}

				break
			}

			if data[curIxMasked+l] > data[prevIxMasked+l] {
				bestLenLeft = l
				if shouldRerootTree {
					forest[nodeLeft] = uint32(prevIx)
				}

				nodeLeft = rightChildIndexH10(self, prevIx)
				prevIx = uint(forest[nodeLeft])
			} else {
				bestLenRight = l
				if shouldRerootTree {
					forest[nodeRight] = uint32(prevIx)
				}

				nodeRight = leftChildIndexH10(self, prevIx)
				prevIx = uint(forest[nodeRight])
			}
		}
	}
}

/* Finds all backward matches of &data[cur_ix & ring_buffer_mask] up to the
   length of max_length and stores the position cur_ix in the hash table.

   Returns the number n of matches found, and stores the found matches in
   matches[0] to matches[n - 1]. The matches will be
   sorted by strictly increasing length and (non-strictly) increasing
   distance. */
const maxNumMatchesH10 = 64 + maxTreeSearchDepth

func findAllMatchesH10(handle *h10, dictionary *encoderDictionary, data []byte, ringBufferMask uint, curIx uint, maxLength uint, maxBackward uint, gap uint, params *encoderParams, matches []backwardMatch) uint {
	var matchesCount uint = 0
	var curIxMasked uint = curIx & ringBufferMask
	var bestLen uint = 1
	var shortMatchMaxBackward uint
	if params.quality != hqZopflificationQuality {
		shortMatchMaxBackward = 16
	} else {
		shortMatchMaxBackward = 64
	}
	var stop uint = curIx - shortMatchMaxBackward
	var dictMatches [maxStaticDictionaryMatchLen + 1]uint32
	var i uint
	if curIx < shortMatchMaxBackward {
		stop = 0
	}
	for i = curIx - 1; i > stop && bestLen <= 2; i-- {
		var prevIx uint = i
		var backward uint = curIx - prevIx
		if backward > maxBackward {
			break
		}

		prevIx &= ringBufferMask
		if data[curIxMasked] != data[prevIx] || data[curIxMasked+1] != data[prevIx+1] {
			continue
		}
		{
			var l uint = findMatchLengthWithLimit(data[prevIx:], data[curIxMasked:], maxLength)
			if l > bestLen {
				bestLen = l
				initBackwardMatch(&matches[matchesCount], backward, l)
				matchesCount++
			}
		}
	}

	if bestLen < maxLength {
		storeAndFindMatchesH10(handle, data, curIx, ringBufferMask, maxLength, maxBackward, &bestLen, matches, &matchesCount)
	}

	for i = 0; i <= maxStaticDictionaryMatchLen; i++ {
		dictMatches[i] = kInvalidMatch
	}
	{
		var minlen uint = brotliMaxSizeT(4, bestLen+1)
		if findAllStaticDictionaryMatches(dictionary, data[curIxMasked:], minlen, maxLength, dictMatches[0:]) {
			var maxlen uint = brotliMinSizeT(maxStaticDictionaryMatchLen, maxLength)
			var l uint
			for l = minlen; l <= maxlen; l++ {
				var dictID uint32 = dictMatches[l]
				if dictID < kInvalidMatch {
					var distance uint = maxBackward + gap + uint(dictID>>5) + 1
					if distance <= params.dist.maxDistance {
						initDictionaryBackwardMatch(&matches[matchesCount], distance, l, uint(dictID&31))
						matchesCount++
					}
				}
			}
		}
	}

	return matchesCount
}

/* Stores the hash of the next 4 bytes and re-roots the binary tree at the
   current sequence, without returning any matches.
   REQUIRES: ix + maxTreeCompLength <= end-of-current-block */
func (h *h10) Store(data []byte, mask uint, ix uint) {
	var maxBackward uint = h.window_mask_ - windowGap + 1

	/* Maximum distance is window size - 16, see section 9.1. of the spec. */
	storeAndFindMatchesH10(h, data, ix, mask, maxTreeCompLength, maxBackward, nil, nil, nil)
}

func (h *h10) StoreRange(data []byte, mask uint, ixStart uint, ixEnd uint) {
	var i uint = ixStart
	var j uint = ixStart
	if ixStart+63 <= ixEnd {
		i = ixEnd - 63
	}

	if ixStart+512 <= i {
		for ; j < i; j += 8 {
			h.Store(data, mask, j)
		}
	}

	for ; i < ixEnd; i++ {
		h.Store(data, mask, i)
	}
}

func (h *h10) StitchToPreviousBlock(numBytes uint, position uint, ringbuffer []byte, ringbufferMask uint) {
	if numBytes >= h.HashTypeLength()-1 && position >= maxTreeCompLength {
		/* Store the last `maxTreeCompLength - 1` positions in the hasher.
		   These could not be calculated before, since they require knowledge
		   of both the previous and the current block. */
		var iStart uint = position - maxTreeCompLength + 1
		var iEnd uint = brotliMinSizeT(position, iStart+numBytes)
		var i uint
		for i = iStart; i < iEnd; i++ {
			/* Maximum distance is window size - 16, see section 9.1. of the spec.
			   Furthermore, we have to make sure than we don't look further back
			   from the start of the next block than the window size, otherwise we
			   could access already overwritten areas of the ring-buffer. */
			var maxBackward uint = h.window_mask_ - brotliMaxSizeT(windowGap-1, position-i)

			/* We know that i + maxTreeCompLength <= position + numBytes, i.e. the
			   end of the current block and that we have at least
			   maxTreeCompLength tail in the ring-buffer. */
			storeAndFindMatchesH10(h, ringbuffer, i, ringbufferMask, maxTreeCompLength, maxBackward, nil, nil, nil)
		}
	}
}

func (*h10) PrepareDistanceCache(distanceCache []int) {
}

func (*h10) FindLongestMatch(dictionary *encoderDictionary, data []byte, ringBufferMask uint, distanceCache []int, curIx uint, maxLength uint, maxBackward uint, gap uint, maxDistance uint, out *hasherSearchResult) {
	panic("unimplemented")
}
