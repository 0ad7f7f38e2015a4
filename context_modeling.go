package brotli

/* Copyright 2016 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Heuristics that pick the literal context model of a metablock: the context
   mode itself, and optionally one of the canned context maps that cost no
   per-block clustering work. */

var kStaticContextMapContinuation = [64]uint32{
	1, 1, 2, 2, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var kStaticContextMapSimpleUTF8 = [64]uint32{
	0, 0, 1, 1, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

/* Compares the Shannon entropy of the literal stream under no context, a
   one-bit UTF8-prefix context and a two-bit one (the prefix itself is paid
   for by the remaining 6 bits of the next byte, hence Shannon rather than
   bitsEntropy). Installs the cheapest canned map that saves at least 0.2
   bits per symbol. */
func chooseContextMap(quality int, bigramCounts []uint32, contextCount *uint, contextMap *[]uint32) {
	var marginalCounts = [3]uint32{0}
	var pairCounts = [6]uint32{0}
	var total uint
	var i uint
	var dummy uint
	var entropy [4]float64
	for i = 0; i < 9; i++ {
		marginalCounts[i%3] += bigramCounts[i]
		pairCounts[i%6] += bigramCounts[i]
	}

	entropy[1] = shannonEntropy(marginalCounts[:], 3, &dummy)
	entropy[2] = shannonEntropy(pairCounts[:], 3, &dummy) + shannonEntropy(pairCounts[3:], 3, &dummy)
	entropy[3] = 0
	for i = 0; i < 3; i++ {
		entropy[3] += shannonEntropy(bigramCounts[3*i:], 3, &dummy)
	}

	total = uint(marginalCounts[0] + marginalCounts[1] + marginalCounts[2])
	assert(total != 0)
	entropy[0] = 1.0 / float64(total)
	entropy[1] *= entropy[0]
	entropy[2] *= entropy[0]
	entropy[3] *= entropy[0]

	if quality < minQualityForHqContextModeling {
		/* 3 context models is a bit slower, don't use it at lower qualities. */
		entropy[3] = entropy[1] * 10
	}

	/* If expected savings by symbol are less than 0.2 bits, skip the
	   context modeling -- in exchange for faster decoding speed. */
	if entropy[1]-entropy[2] < 0.2 && entropy[1]-entropy[3] < 0.2 {
		*contextCount = 1
	} else if entropy[2]-entropy[3] < 0.02 {
		*contextCount = 2
		*contextMap = kStaticContextMapSimpleUTF8[:]
	} else {
		*contextCount = 3
		*contextMap = kStaticContextMapContinuation[:]
	}
}

/* The 13-value static context map is only worth its larger header on long,
   well-predicted data; the decision samples histograms over the top 5 bits
   of the literals. */

var kStaticContextMapComplexUTF8 = [64]uint32{
	11, 11, 12, 12, /* 0 special */
	0, 0, 0, 0, /* 4 lf */
	1, 1, 9, 9, /* 8 space */
	2, 2, 2, 2, /* !, first after space/lf and after something else. */
	1, 1, 1, 1, /* " */
	8, 3, 3, 3, /* % */
	1, 1, 1, 1, /* ({[ */
	2, 2, 2, 2, /* }]) */
	8, 4, 4, 4, /* :; */
	8, 7, 4, 4, /* . */
	8, 0, 0, 0, /* > */
	3, 3, 3, 3, /* [0..9] */
	5, 5, 10, 5, /* [A-Z] */
	5, 5, 10, 5,
	6, 6, 6, 6, /* [a-z] */
	6, 6, 6, 6,
}

func shouldUseComplexStaticContextMap(input []byte, from uint, length uint, mask uint, quality int, sizeHint uint, contextCount *uint, contextMap *[]uint32) bool {
	/* Try the more complex static context map only for long data. */
	if sizeHint < 1<<20 {
		return false
	} else {
		var to uint = from + length
		var pooledCounts = [32]uint32{0}
		var perContextCounts = [13][32]uint32{[32]uint32{0}}
		var total uint32 = 0
		var entropy [3]float64
		var dummy uint
		var i uint
		var utf8LUT contextLUT = getContextLUT(contextUTF8)

		/* One pooled histogram plus one per context value, all over the top 5
		   bits of each literal so everything fits on the stack. */
		for ; from+64 <= to; from += 4096 {
			var strideEnd uint = from + 64
			var p2 byte = input[from&mask]
			var p1 byte = input[(from+1)&mask]
			var pos uint

			/* Sample 64-byte strides every 4 KiB. */
			for pos = from + 2; pos < strideEnd; pos++ {
				var literal byte = input[pos&mask]
				var context byte = byte(kStaticContextMapComplexUTF8[getContext(p1, p2, utf8LUT)])
				total++
				pooledCounts[literal>>3]++
				perContextCounts[context][literal>>3]++
				p2 = p1
				p1 = literal
			}
		}

		entropy[1] = shannonEntropy(pooledCounts[:], 32, &dummy)
		entropy[2] = 0
		for i = 0; i < 13; i++ {
			entropy[2] += shannonEntropy(perContextCounts[i][0:], 32, &dummy)
		}

		entropy[0] = 1.0 / float64(total)
		entropy[1] *= entropy[0]
		entropy[2] *= entropy[0]

		/* Thresholds tuned on the silesia corpus: skip the map when the data
		   is barely compressible under it, or when the expected saving is
		   below 0.2 bits per literal. */
		if entropy[2] > 3.0 || entropy[1]-entropy[2] < 0.2 {
			return false
		} else {
			*contextCount = 13
			*contextMap = kStaticContextMapComplexUTF8[:]
			return true
		}
	}
}

func decideOverLiteralContextModeling(input []byte, from uint, length uint, mask uint, quality int, sizeHint uint, contextCount *uint, contextMap *[]uint32) {
	if quality < minQualityForContextModeling || length < 64 {
		return
	} else if shouldUseComplexStaticContextMap(input, from, length, mask, quality, sizeHint, contextCount, contextMap) {
		/* Context map was already set, nothing else to do. */
	} else {
		/* Bi-gram statistics of the UTF8 byte-prefix classes, sampled in
		   64-byte strides every 4 KiB. */
		var to uint = from + length
		var prefixBigrams = [9]uint32{0}
		for ; from+64 <= to; from += 4096 {
			var lut = [4]int{0, 0, 1, 2}
			var strideEnd uint = from + 64
			var prev int = lut[input[from&mask]>>6] * 3
			var pos uint
			for pos = from + 1; pos < strideEnd; pos++ {
				var literal byte = input[pos&mask]
				prefixBigrams[prev+lut[literal>>6]]++
				prev = lut[literal>>6] * 3
			}
		}

		chooseContextMap(quality, prefixBigrams[0:], contextCount, contextMap)
	}
}

/* Picks the literal context mode of a metablock: UTF8 unless a
   high-quality scan says the data is not mostly UTF8-encoded. */
func chooseContextMode(params *encoderParams, data []byte, pos uint, mask uint, length uint) int {
	/* We only do the computation for the option of something else than
	   CONTEXT_UTF8 for the highest qualities */
	if params.quality >= minQualityForHqBlockSplitting && !isMostlyUTF8(data, pos, mask, length, kMinUTF8Ratio) {
		return contextSigned
	}

	return contextUTF8
}
