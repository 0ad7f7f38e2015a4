package brotli

/* Copyright 2013 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Functions for encoding of integers into prefix codes the amount of extra
   bits, and the actual values of the extra bits. */

/* Here distance_code is an intermediate code, i.e. one of the special codes or
   the actual distance increased by BROTLI_NUM_DISTANCE_SHORT_CODES - 1. */
func prefixEncodeCopyDistance(distanceCode uint, numDirectCodes uint, postfixBits uint, code *uint16, extraBits *uint32) {
	if distanceCode < numDistanceShortCodes+numDirectCodes {
		*code = uint16(distanceCode)
		*extraBits = 0
		return
	} else {
		var dist uint = (uint(1) << (postfixBits + 2)) + (distanceCode - numDistanceShortCodes - numDirectCodes)
		var bucket uint = uint(log2FloorNonZero(dist) - 1)
		var postfixMask uint = (1 << postfixBits) - 1
		var postfix uint = dist & postfixMask
		var prefix uint = (dist >> bucket) & 1
		var offset uint = (2 + prefix) << bucket
		var nbits uint = bucket - postfixBits
		*code = uint16(nbits<<10 | (numDistanceShortCodes + numDirectCodes + ((2*(nbits-1) + prefix) << postfixBits) + postfix))
		*extraBits = uint32((dist - offset) >> postfixBits)
	}
}

/* Command decoding lookup table: insert/copy length bases and extra bit
   counts for each of the 704 command prefix codes, plus the distance context
   (or the "reuse last distance" marker for codes below 128). */
type cmdLutElement struct {
	insertLenExtraBits byte
	copyLenExtraBits   byte
	distanceCode       int8
	context            byte
	insertLenOffset    uint16
	copyLenOffset      uint16
}

var kCmdLut [numCommandSymbols]cmdLutElement

/* Insert and copy length code high parts per command cell, in the cell order
   produced by combineLengthCodes. */
var kInsertRangeLut = [9]uint16{0, 0, 8, 8, 0, 16, 8, 16, 16}

var kCopyRangeLut = [9]uint16{0, 8, 0, 8, 16, 0, 16, 8, 16}

func init() {
	for cmdCode := 0; cmdCode < numCommandSymbols; cmdCode++ {
		var cell int = cmdCode >> 6
		var insCode uint16
		var copyCode uint16
		var distCode int8
		if cell <= 1 {
			/* Codes 0..127 reuse the last distance. */
			insCode = uint16((cmdCode >> 3) & 7)

			copyCode = uint16(cell<<3 | cmdCode&7)
			distCode = 0
		} else {
			insCode = kInsertRangeLut[cell-2] + uint16((cmdCode>>3)&7)
			copyCode = kCopyRangeLut[cell-2] + uint16(cmdCode&7)
			distCode = -1
		}

		var v *cmdLutElement = &kCmdLut[cmdCode]
		v.insertLenExtraBits = byte(getInsertExtra(insCode))
		v.copyLenExtraBits = byte(getCopyExtra(copyCode))
		v.distanceCode = distCode
		v.context = byte(brotliMinUint32T(uint32(copyCode), 3))
		v.insertLenOffset = uint16(getInsertBase(insCode))
		v.copyLenOffset = uint16(getCopyBase(copyCode))
	}
}
