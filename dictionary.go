package brotli

import "errors"

/* Copyright 2013 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Collection of static dictionary words.

   The number of bits for the index of a word of length i is
   size_bits_by_length[i], and words of that length start at
   offsets_by_length[i] in the data blob. The blob itself (122784 bytes of
   concatenated words, RFC 7932 Appendix A) is not baked into the library:
   it is installed by the embedding application through SetDictionaryData
   before the first reference into the static dictionary is decoded or
   before the encoder is asked to look for dictionary matches. */
type dictionary struct {
	size_bits_by_length [25]byte
	offsets_by_length   [25]uint32
	data                []byte
}

const minDictionaryWordLength = 4

const maxDictionaryWordLength = 24

/* Total size of the word blob, per RFC 7932 Appendix A. */
const dictionaryDataSize = 122784

var kBrotliDictionary = dictionary{
	size_bits_by_length: [25]byte{
		0, 0, 0, 0,
		10, 10, 11, 11,
		10, 10, 10, 10,
		10, 9, 9, 8,
		7, 7, 8, 7,
		7, 6, 6, 5,
		5,
	},
}

func init() {
	var pos uint32 = 0
	for i := 0; i < 25; i++ {
		kBrotliDictionary.offsets_by_length[i] = pos
		if kBrotliDictionary.size_bits_by_length[i] != 0 {
			pos += uint32(i) << kBrotliDictionary.size_bits_by_length[i]
		}
	}
}

func getDictionary() *dictionary {
	return &kBrotliDictionary
}

var errDictionaryDataSize = errors.New("brotli: dictionary data must be exactly 122784 bytes")

// SetDictionaryData installs the RFC 7932 static dictionary word blob.
// Decoding a stream that references the static dictionary fails unless the
// blob has been installed; the encoder only searches for dictionary matches
// once it is present. The blob is shared by all codec instances and must not
// be modified after this call.
func SetDictionaryData(data []byte) error {
	if len(data) != dictionaryDataSize {
		return errDictionaryDataSize
	}

	kBrotliDictionary.data = data
	return nil
}
