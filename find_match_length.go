package brotli

import (
	"encoding/binary"
	"math/bits"
)

/* Copyright 2010 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Function to find maximal matching prefixes of strings. */
func findMatchLengthWithLimit(s1 []byte, s2 []byte, limit uint) uint {
	var matched uint = 0

	/* Compare 8 bytes at a time until there is a mismatch. */
	for matched+8 <= limit && matched+8 <= uint(len(s1)) && matched+8 <= uint(len(s2)) {
		var w1 uint64 = binary.LittleEndian.Uint64(s1[matched:])
		var w2 uint64 = binary.LittleEndian.Uint64(s2[matched:])
		if w1 != w2 {
			return matched + uint(bits.TrailingZeros64(w1^w2)>>3)
		}

		matched += 8
	}

	for matched < limit && s1[matched] == s2[matched] {
		matched++
	}

	return matched
}
