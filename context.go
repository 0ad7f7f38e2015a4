package brotli

/* Copyright 2013 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Lookup table to map the previous two bytes to a context id.

   There are four different context modeling modes defined here:
     contextLSB6: context id is the least significant 6 bits of the last byte,
     contextMSB6: context id is the most significant 6 bits of the last byte,
     contextUTF8: second-order context model tuned for UTF8-encoded text,
     contextSigned: second-order context model tuned for signed integers.

   If |p1| and |p2| are the previous two bytes, and |mode| is current context
   mode, we calculate the context as:

     context = kContextLookup[offset1(mode) + p1] |
               kContextLookup[offset2(mode) + p2].

   For contextUTF8 mode, if the last byte is ASCII characters, then:
     context = context1(last byte) + context2(second last byte),

   where context1 is based on the ASCII character class of the last byte:
     0 : non-ASCII control
     4 : tab, line feed, carriage return
     8 : space
     12 : other punctuation
     16 : " '
     20 : %
     24 : ( < [ {
     28 : ) > ] }
     32 : , ; :
     36 : .
     40 : =
     44 : number
     48 : upper-case vowel
     52 : upper-case consonant
     56 : lower-case vowel
     60 : lower-case consonant

   and context2 is based on the class of the second last byte:
     0 : control, space
     1 : punctuation
     2 : upper-case letter, number
     3 : lower-case letter

   If the last byte is a UTF8 lead byte (ASCII or lead/continuation), then the
   context is (straight from the RFC):
     0 or 4 : the second last byte is a continuation byte
     8 or 12 : the second last byte is a lead byte

   For contextSigned mode, the context ids are calculated as:

     context = (kSigned3BitRange[p1] << 3) | kSigned3BitRange[p2],

   where kSigned3BitRange maps the byte into one of eight buckets by
   magnitude: 0, 1..15, 16..63, 64..127, 128..191, 192..239, 240..254, 255. */
const (
	contextLSB6   = 0
	contextMSB6   = 1
	contextUTF8   = 2
	contextSigned = 3
)

/* Second-order context lookup table for UTF8 byte streams, last byte. */
var kUTF8ContextLut0 = [256]byte{
	/* ASCII range. */
	0, 0, 0, 0, 0, 0, 0, 0, 0, 4, 4, 0, 0, 4, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	8, 12, 16, 12, 12, 20, 12, 16, 24, 28, 12, 12, 32, 12, 36, 12,
	44, 44, 44, 44, 44, 44, 44, 44, 44, 44, 32, 32, 24, 40, 28, 12,
	12, 48, 52, 52, 52, 48, 52, 52, 52, 48, 52, 52, 52, 52, 52, 48,
	52, 52, 52, 52, 52, 48, 52, 52, 52, 52, 52, 24, 12, 28, 12, 12,
	12, 56, 60, 60, 60, 56, 60, 60, 60, 56, 60, 60, 60, 60, 60, 56,
	60, 60, 60, 60, 60, 56, 60, 60, 60, 60, 60, 24, 12, 28, 12, 0,
	/* UTF8 continuation byte range. */
	0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	/* UTF8 lead byte range. */
	2, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	2, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	2, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	2, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
}

/* Second-order context lookup table for UTF8 byte streams, second last byte. */
var kUTF8ContextLut1 = [256]byte{
	/* ASCII range. */
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 1, 1,
	1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 1,
	1, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 1, 1, 1, 1, 0,
	/* UTF8 continuation byte range. */
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	/* UTF8 lead byte range. */
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
}

/* Context lookup table for signed byte streams, 3-bit magnitude buckets. */
var kSigned3BitRange = [256]byte{
	0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 7,
}

type contextLUT []byte

/* One lookup table per context mode: 256 entries for p1 followed by 256
   entries for p2. */
var kContextLookup [2048]byte

func init() {
	lut := kContextLookup[:]

	/* contextLSB6, last byte. */
	for i := 0; i < 256; i++ {
		lut[i] = byte(i & 0x3F)
	}

	/* contextMSB6, last byte. */
	for i := 0; i < 256; i++ {
		lut[512+i] = byte(i >> 2)
	}

	/* contextUTF8, both bytes. */
	copy(lut[1024:], kUTF8ContextLut0[:])

	copy(lut[1024+256:], kUTF8ContextLut1[:])

	/* contextSigned: last byte shifted by 3, second last byte as is. */
	for i := 0; i < 256; i++ {
		lut[1536+i] = kSigned3BitRange[i] << 3
		lut[1536+256+i] = kSigned3BitRange[i]
	}
}

func getContextLUT(mode int) contextLUT {
	return kContextLookup[mode<<9:]
}

func getContext(p1 byte, p2 byte, lut contextLUT) byte {
	return lut[p1] | lut[256+int(p2)]
}
