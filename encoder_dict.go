package brotli

import "sync"

/* Dictionary data (words and transforms) for 1 possible context */
type encoderDictionary struct {
	words                 *dictionary
	cutoffTransformsCount uint32
	cutoffTransforms      uint64
	hashTable             []uint16
	buckets               []uint16
	dictWords             []dictWord
}

type dictWord struct {
	/* Highest bit of len is used to indicate end of bucket. */
	len       byte
	transform byte
	idx       uint16
}

var encoderDictionaryOnce sync.Once
var kStaticDictionaryHash []uint16
var kStaticDictionaryBuckets []uint16
var kStaticDictionaryWords []dictWord

func initEncoderDictionary(dict *encoderDictionary) {
	dict.words = getDictionary()

	/* The lookup structures are derived from the word blob, so they can only
	   exist once the blob has been installed. Without them the encoder simply
	   finds no static-dictionary matches. */
	if dict.words.data != nil {
		encoderDictionaryOnce.Do(buildEncoderDictionaryTables)
		dict.hashTable = kStaticDictionaryHash
		dict.buckets = kStaticDictionaryBuckets
		dict.dictWords = kStaticDictionaryWords
	}

	dict.cutoffTransformsCount = kCutoffTransformsCount
	dict.cutoffTransforms = kCutoffTransforms
}

/* Builds the two lookup structures over the installed word blob:

   - a table with two slots per 14-bit hash of the first bytes of a word,
     each slot holding (word_idx << 5 | len) of one word or 0;
   - hash buckets of dictWord lists for the exhaustive matcher, keyed by a
     kDictNumBits-bit hash of the first four bytes.

   Only identity forms are indexed; transformed matches are still produced by
   the matcher itself (cut-off and suffix transforms do not need their own
   index entries). */
func buildEncoderDictionaryTables() {
	words := getDictionary()

	type bucketEntry struct {
		len byte
		idx uint16
	}
	numBuckets := 1 << kDictNumBits
	bucketLists := make([][]bucketEntry, numBuckets)
	hashTable := make([]uint16, 1<<15)

	for l := minDictionaryWordLength; l <= maxDictionaryWordLength; l++ {
		sizeBits := words.size_bits_by_length[l]
		if sizeBits == 0 {
			continue
		}

		count := uint(1) << sizeBits
		offset := uint(words.offsets_by_length[l])
		for idx := uint(0); idx < count; idx++ {
			word := words.data[offset+idx*uint(l):]
			key := hashStaticDict(word) /* Upper bits of a 32-bit hash. */
			bucketLists[key] = append(bucketLists[key], bucketEntry{len: byte(l), idx: uint16(idx)})

			slot := hash14(word) << 1
			if hashTable[slot] != 0 {
				slot++
			}

			if hashTable[slot] == 0 {
				hashTable[slot] = uint16(idx<<5 | uint(l))
			}
		}
	}

	buckets := make([]uint16, numBuckets)
	dictWords := make([]dictWord, 1, 1<<15)
	for key, list := range bucketLists {
		if len(list) == 0 {
			continue
		}

		if len(dictWords)+len(list) > 0xFFFF {
			break
		}

		buckets[key] = uint16(len(dictWords))
		for i, e := range list {
			w := dictWord{len: e.len, transform: 0, idx: e.idx}
			if i == len(list)-1 {
				w.len |= 0x80
			}

			dictWords = append(dictWords, w)
		}
	}

	kStaticDictionaryHash = hashTable
	kStaticDictionaryBuckets = buckets
	kStaticDictionaryWords = dictWords
}
