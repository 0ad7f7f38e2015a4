package brotli

import "math"

/* Copyright 2013 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Computes the bit cost reduction by combining out[idx1] and out[idx2] and if
   it is below a threshold, stores the pair (idx1, idx2) in the *pairs queue. */
func compareAndPushToQueueDistance(out []histogramDistance, clusterSize []uint32, idx1 uint32, idx2 uint32, maxNumPairs uint, pairs []histogramPair, numPairs *uint) {
	var isGoodPair bool = false
	var p histogramPair
	p.idx2 = 0
	p.idx1 = p.idx2
	p.cost_combo = 0
	p.cost_diff = p.cost_combo
	if idx1 == idx2 {
		return
	}

	if idx2 < idx1 {
		var t uint32 = idx2
		idx2 = idx1
		idx1 = t
	}

	p.idx1 = idx1
	p.idx2 = idx2
	p.cost_diff = 0.5 * clusterCostDiff(uint(clusterSize[idx1]), uint(clusterSize[idx2]))
	p.cost_diff -= out[idx1].bit_cost_
	p.cost_diff -= out[idx2].bit_cost_

	if out[idx1].total_count_ == 0 {
		p.cost_combo = out[idx2].bit_cost_
		isGoodPair = true
	} else if out[idx2].total_count_ == 0 {
		p.cost_combo = out[idx1].bit_cost_
		isGoodPair = true
	} else {
		var threshold float64
		if *numPairs == 0 {
			threshold = 1e99
		} else {
			threshold = brotliMaxDouble(0.0, pairs[0].cost_diff)
		}
		var combo histogramDistance = out[idx1]
		var costCombo float64
		histogramAddHistogramDistance(&combo, &out[idx2])
		costCombo = populationCostDistance(&combo)
		if costCombo < threshold-p.cost_diff {
			p.cost_combo = costCombo
			isGoodPair = true
		}
	}

	if isGoodPair {
		p.cost_diff += p.cost_combo

		if *numPairs > 0 && histogramPairIsLess(&pairs[0], &p) {
			/* Replace the top of the queue if needed. */
			if *numPairs < maxNumPairs {
				pairs[*numPairs] = pairs[0]
				(*numPairs)++
			}

			pairs[0] = p
		} else if *numPairs < maxNumPairs {
			pairs[*numPairs] = p
			(*numPairs)++
		}
	}
}

func histogramCombineDistance(out []histogramDistance, clusterSize []uint32, symbols []uint32, clusters []uint32, pairs []histogramPair, numClusters uint, symbolsSize uint, maxClusters uint, maxNumPairs uint) uint {
	var costDiffThreshold float64 = 0.0
	var minClusterSize uint = 1
	var numPairs uint = 0
	{
		/* We maintain a vector of histogram pairs, with the property that the pair
		   with the maximum bit cost reduction is the first. */
		var idx1 uint32
		for idx1 = 0; uint(idx1) < numClusters; idx1++ {
			var idx2 uint32
			for idx2 = idx1 + 1; uint(idx2) < numClusters; idx2++ {
				compareAndPushToQueueDistance(out, clusterSize, clusters[idx1], clusters[idx2], maxNumPairs, pairs[0:], &numPairs)
			}
		}
	}

	for numClusters > minClusterSize {
		var bestIdx1 uint32
		var bestIdx2 uint32
		var i uint
		if pairs[0].cost_diff >= costDiffThreshold {
			costDiffThreshold = 1e99
			minClusterSize = maxClusters
			continue
		}

		/* Take the best pair from the top of heap. */
		bestIdx1 = pairs[0].idx1

		bestIdx2 = pairs[0].idx2
		histogramAddHistogramDistance(&out[bestIdx1], &out[bestIdx2])
		out[bestIdx1].bit_cost_ = pairs[0].cost_combo
		clusterSize[bestIdx1] += clusterSize[bestIdx2]
		for i = 0; i < symbolsSize; i++ {
			if symbols[i] == bestIdx2 {
				symbols[i] = bestIdx1
			}
		}

		for i = 0; i < numClusters; i++ {
			if clusters[i] == bestIdx2 {
				copy(clusters[i:], clusters[i+1:][:numClusters-i-1])
				break
			}
		}

		numClusters--
		{
			/* Remove pairs intersecting the just combined best pair. */
			var copyToIdx uint = 0
			for i = 0; i < numPairs; i++ {
				var p *histogramPair = &pairs[i]
				if p.idx1 == bestIdx1 || p.idx2 == bestIdx1 || p.idx1 == bestIdx2 || p.idx2 == bestIdx2 {
					/* Remove invalid pair from the queue. */
					continue
				}

				if histogramPairIsLess(&pairs[0], p) {
					/* Replace the top of the queue if needed. */
					var front histogramPair = pairs[0]
					pairs[0] = *p
					pairs[copyToIdx] = front
				} else {
					pairs[copyToIdx] = *p
				}

				copyToIdx++
			}

			numPairs = copyToIdx
		}

		/* Push new pairs formed with the combined histogram to the heap. */
		for i = 0; i < numClusters; i++ {
			compareAndPushToQueueDistance(out, clusterSize, bestIdx1, clusters[i], maxNumPairs, pairs[0:], &numPairs)
		}
	}

	return numClusters
}

/* What is the bit cost of moving histogram from cur_symbol to candidate. */
func histogramBitCostDistanceDistance(histogram *histogramDistance, candidate *histogramDistance) float64 {
	if histogram.total_count_ == 0 {
		return 0.0
	} else {
		var tmp histogramDistance = *histogram
		histogramAddHistogramDistance(&tmp, candidate)
		return populationCostDistance(&tmp) - candidate.bit_cost_
	}
}

/* Find the best 'out' histogram for each of the 'in' histograms.
   When called, clusters[0..num_clusters) contains the unique values from
   symbols[0..in_size), but this property is not preserved in this function.
   Note: we assume that out[]->bit_cost_ is already up-to-date. */
func histogramRemapDistance(in []histogramDistance, inSize uint, clusters []uint32, numClusters uint, out []histogramDistance, symbols []uint32) {
	var i uint
	for i = 0; i < inSize; i++ {
		var bestOut uint32
		if i == 0 {
			bestOut = symbols[0]
		} else {
			bestOut = symbols[i-1]
		}
		var bestBits float64 = histogramBitCostDistanceDistance(&in[i], &out[bestOut])
		var j uint
		for j = 0; j < numClusters; j++ {
			var bits float64 = histogramBitCostDistanceDistance(&in[i], &out[clusters[j]])
			if bits < bestBits {
				bestBits = bits
				bestOut = clusters[j]
			}
		}

		symbols[i] = bestOut
	}

	/* Recompute each out based on raw and symbols. */
	for i = 0; i < numClusters; i++ {
		histogramClearDistance(&out[clusters[i]])
	}

	for i = 0; i < inSize; i++ {
		histogramAddHistogramDistance(&out[symbols[i]], &in[i])
	}
}

/* Reorders elements of the out[0..length) array and changes values in
   symbols[0..length) array in the following way:
     * when called, symbols[] contains indexes into out[], and has N unique
       values (possibly N < length)
     * on return, symbols'[i] = f(symbols[i]) and
                  out'[symbols'[i]] = out[symbols[i]], for each 0 <= i < length,
       where f is a bijection between the range of symbols[] and [0..N), and
       the first occurrences of values in symbols'[i] come in consecutive
       increasing order.
   Returns N, the number of unique values in symbols[]. */

var histogramReindexDistance_kInvalidIndex uint32 = math.MaxUint32

func histogramReindexDistance(out []histogramDistance, symbols []uint32, length uint) uint {
	var newIndex []uint32 = make([]uint32, length)
	var nextIndex uint32
	var tmp []histogramDistance
	var i uint
	for i = 0; i < length; i++ {
		newIndex[i] = histogramReindexDistance_kInvalidIndex
	}

	nextIndex = 0
	for i = 0; i < length; i++ {
		if newIndex[symbols[i]] == histogramReindexDistance_kInvalidIndex {
			newIndex[symbols[i]] = nextIndex
			nextIndex++
		}
	}

	/* TODO: by using idea of "cycle-sort" we can avoid allocation of
	   tmp and reduce the number of copying by the factor of 2. */
	tmp = make([]histogramDistance, nextIndex)

	nextIndex = 0
	for i = 0; i < length; i++ {
		if newIndex[symbols[i]] == nextIndex {
			tmp[nextIndex] = out[symbols[i]]
			nextIndex++
		}

		symbols[i] = newIndex[symbols[i]]
	}

	for i = 0; uint32(i) < nextIndex; i++ {
		out[i] = tmp[i]
	}

	return uint(nextIndex)
}

func clusterHistogramsDistance(in []histogramDistance, inSize uint, maxHistograms uint, out []histogramDistance, outSize *uint, histogramSymbols []uint32) {
	var clusterSize []uint32 = make([]uint32, inSize)
	var clusters []uint32 = make([]uint32, inSize)
	var numClusters uint = 0
	var maxInputHistograms uint = 64
	var pairsCapacity uint = maxInputHistograms * maxInputHistograms / 2
	var pairs []histogramPair = make([]histogramPair, pairsCapacity+1)
	var i uint

	/* For the first pass of clustering, we allow all pairs. */
	for i = 0; i < inSize; i++ {
		clusterSize[i] = 1
	}

	for i = 0; i < inSize; i++ {
		out[i] = in[i]
		out[i].bit_cost_ = populationCostDistance(&in[i])
		histogramSymbols[i] = uint32(i)
	}

	for i = 0; i < inSize; i += maxInputHistograms {
		var numToCombine uint = brotliMinSizeT(inSize-i, maxInputHistograms)
		var numNewClusters uint
		var j uint
		for j = 0; j < numToCombine; j++ {
			clusters[numClusters+j] = uint32(i + j)
		}

		numNewClusters = histogramCombineDistance(out, clusterSize, histogramSymbols[i:], clusters[numClusters:], pairs, numToCombine, numToCombine, maxHistograms, pairsCapacity)
		numClusters += numNewClusters
	}
	{
		/* For the second pass, we limit the total number of histogram pairs.
		   After this limit is reached, we only keep searching for the best pair. */
		var maxNumPairs uint = brotliMinSizeT(64*numClusters, (numClusters/2)*numClusters)
		if pairsCapacity < maxNumPairs+1 {
			pairs = append(pairs, make([]histogramPair, maxNumPairs+1-pairsCapacity)...)
		}

		/* Collapse similar histograms. */
		numClusters = histogramCombineDistance(out, clusterSize, histogramSymbols, clusters, pairs, numClusters, inSize, maxHistograms, maxNumPairs)
	}

	pairs = nil
	clusterSize = nil

	/* Find the optimal map from original histograms to the final ones. */
	histogramRemapDistance(in, inSize, clusters, numClusters, out, histogramSymbols)

	/* Convert the context map to a canonical form. */
	*outSize = histogramReindexDistance(out, histogramSymbols, inSize)
}
