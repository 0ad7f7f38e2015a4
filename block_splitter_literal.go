package brotli

import "math"

/* Copyright 2013 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

func initialEntropyCodesLiteral(data []byte, length uint, stride uint, numHistograms uint, histograms []histogramLiteral) {
	var seed uint32 = 7
	var blockLength uint = length / numHistograms
	var i uint
	clearHistogramsLiteral(histograms, numHistograms)
	for i = 0; i < numHistograms; i++ {
		var pos uint = length * i / numHistograms
		if i != 0 {
			pos += uint(myRand(&seed) % uint32(blockLength))
		}

		if pos+stride >= length {
			pos = length - stride - 1
		}

		histogramAddVectorLiteral(&histograms[i], data[pos:], stride)
	}
}

func randomSampleLiteral(seed *uint32, data []byte, length uint, stride uint, sample *histogramLiteral) {
	var pos uint = 0
	if stride >= length {
		stride = length
	} else {
		pos = uint(myRand(seed) % uint32(length-stride+1))
	}

	histogramAddVectorLiteral(sample, data[pos:], stride)
}

func refineEntropyCodesLiteral(data []byte, length uint, stride uint, numHistograms uint, histograms []histogramLiteral) {
	var iters uint = kIterMulForRefining*length/stride + kMinItersForRefining
	var seed uint32 = 7
	var iter uint
	iters = ((iters + numHistograms - 1) / numHistograms) * numHistograms
	for iter = 0; iter < iters; iter++ {
		var sample histogramLiteral
		histogramClearLiteral(&sample)
		randomSampleLiteral(&seed, data, length, stride, &sample)
		histogramAddHistogramLiteral(&histograms[iter%numHistograms], &sample)
	}
}

/* Assigns a block id from the range [0, num_histograms) to each data element
   in data[0..length) and fills in block_id[0..length) with the assigned values.
   Returns the number of blocks, i.e. one plus the number of block switches. */
func findBlocksLiteral(data []byte, length uint, blockSwitchBitcost float64, numHistograms uint, histograms []histogramLiteral, insertCost []float64, cost []float64, switchSignal []byte, blockID []byte) uint {
	var dataSize uint = histogramDataSizeLiteral()
	var bitmaplen uint = (numHistograms + 7) >> 3
	var numBlocks uint = 1
	var i uint
	var j uint
	assert(numHistograms <= 256)
	if numHistograms <= 1 {
		for i = 0; i < length; i++ {
			blockID[i] = 0
		}

		return 1
	}

	for i := 0; i < int(dataSize*numHistograms); i++ {
		insertCost[i] = 0
	}
	for i = 0; i < numHistograms; i++ {
		insertCost[i] = fastLog2(uint(uint32(histograms[i].total_count_)))
	}

	for i = dataSize; i != 0; {
		i--
		for j = 0; j < numHistograms; j++ {
			insertCost[i*numHistograms+j] = insertCost[j] - bitCost(uint(histograms[j].data_[i]))
		}
	}

	for i := 0; i < int(numHistograms); i++ {
		cost[i] = 0
	}
	for i := 0; i < int(length*bitmaplen); i++ {
		switchSignal[i] = 0
	}

	/* After each iteration of this loop, cost[k] will contain the difference
	   between the minimum cost of arriving at the current byte position using
	   entropy code k, and the minimum cost of arriving at the current byte
	   position. This difference is capped at the block switch cost, and if it
	   reaches block switch cost, it means that when we trace back from the last
	   position, we need to switch here. */
	for i = 0; i < length; i++ {
		var byteIx uint = i
		var ix uint = byteIx * bitmaplen
		var insertCostIx uint = uint(data[byteIx]) * numHistograms
		var minCost float64 = 1e99
		var blockSwitchCost float64 = blockSwitchBitcost
		var k uint
		for k = 0; k < numHistograms; k++ {
			/* We are coding the symbol in data[byte_ix] with entropy code k. */
			cost[k] += insertCost[insertCostIx+k]

			if cost[k] < minCost {
				minCost = cost[k]
				blockID[byteIx] = byte(k)
			}
		}

		/* More blocks for the beginning. */
		if byteIx < 2000 {
			blockSwitchCost *= 0.77 + 0.07*float64(byteIx)/2000
		}

		for k = 0; k < numHistograms; k++ {
			cost[k] -= minCost
			if cost[k] >= blockSwitchCost {
				var mask byte = byte(1 << (k & 7))
				cost[k] = blockSwitchCost
				assert(k>>3 < bitmaplen)
				switchSignal[ix+(k>>3)] |= mask
			}
		}
	}

	/* Trace back from the last position and switch at the marked places. */
	{
		var byteIx uint = length - 1
		var ix uint = byteIx * bitmaplen
		var curID byte = blockID[byteIx]
		for byteIx > 0 {
			var mask byte = byte(1 << (curID & 7))
			assert(uint(curID)>>3 < bitmaplen)
			byteIx--
			ix -= bitmaplen
			if switchSignal[ix+uint(curID>>3)]&mask != 0 {
				if curID != blockID[byteIx] {
					curID = blockID[byteIx]
					numBlocks++
				}
			}

			blockID[byteIx] = curID
		}
	}

	return numBlocks
}

var remapBlockIdsLiteral_kInvalidId uint16 = 256

func remapBlockIdsLiteral(blockIds []byte, length uint, newId []uint16, numHistograms uint) uint {
	var nextId uint16 = 0
	var i uint
	for i = 0; i < numHistograms; i++ {
		newId[i] = remapBlockIdsLiteral_kInvalidId
	}

	for i = 0; i < length; i++ {
		assert(uint(blockIds[i]) < numHistograms)
		if newId[blockIds[i]] == remapBlockIdsLiteral_kInvalidId {
			newId[blockIds[i]] = nextId
			nextId++
		}
	}

	for i = 0; i < length; i++ {
		blockIds[i] = byte(newId[blockIds[i]])
		assert(uint(blockIds[i]) < numHistograms)
	}

	assert(uint(nextId) <= numHistograms)
	return uint(nextId)
}

func buildBlockHistogramsLiteral(data []byte, length uint, blockIds []byte, numHistograms uint, histograms []histogramLiteral) {
	var i uint
	clearHistogramsLiteral(histograms, numHistograms)
	for i = 0; i < length; i++ {
		histogramAddLiteral(&histograms[blockIds[i]], uint(data[i]))
	}
}

var clusterBlocksLiteral_kInvalidIndex uint32 = math.MaxUint32

func clusterBlocksLiteral(data []byte, length uint, numBlocks uint, blockIds []byte, split *blockSplit) {
	var histogramSymbols []uint32 = make([]uint32, numBlocks)
	var blockLengths []uint32 = make([]uint32, numBlocks)
	var expectedNumClusters uint = clustersPerBatch * (numBlocks + histogramsPerBatch - 1) / histogramsPerBatch
	var allHistogramsSize uint = 0
	var allHistogramsCapacity uint = expectedNumClusters
	var allHistograms []histogramLiteral = make([]histogramLiteral, allHistogramsCapacity)
	var clusterSizeSize uint = 0
	var clusterSizeCapacity uint = expectedNumClusters
	var clusterSize []uint32 = make([]uint32, clusterSizeCapacity)
	var numClusters uint = 0
	var histograms []histogramLiteral = make([]histogramLiteral, brotliMinSizeT(numBlocks, histogramsPerBatch))
	var maxNumPairs uint = histogramsPerBatch * histogramsPerBatch / 2
	var pairsCapacity uint = maxNumPairs + 1
	var pairs []histogramPair = make([]histogramPair, pairsCapacity)
	var pos uint = 0
	var clusterings []uint32
	var numFinalClusters uint
	var newIndex []uint32
	var i uint
	var sizes = [histogramsPerBatch]uint32{0}
	var newClusters = [histogramsPerBatch]uint32{0}
	var symbols = [histogramsPerBatch]uint32{0}
	var remap = [histogramsPerBatch]uint32{0}

	for i := 0; i < int(numBlocks); i++ {
		blockLengths[i] = 0
	}
	{
		var blockIdx uint = 0
		for i = 0; i < length; i++ {
			assert(blockIdx < numBlocks)
			blockLengths[blockIdx]++
			if i+1 == length || blockIds[i] != blockIds[i+1] {
				blockIdx++
			}
		}

		assert(blockIdx == numBlocks)
	}

	for i = 0; i < numBlocks; i += histogramsPerBatch {
		var numToCombine uint = brotliMinSizeT(numBlocks-i, histogramsPerBatch)
		var numNewClusters uint
		var j uint
		for j = 0; j < numToCombine; j++ {
			var k uint
			histogramClearLiteral(&histograms[j])
			for k = 0; uint32(k) < blockLengths[i+j]; k++ {
				histogramAddLiteral(&histograms[j], uint(data[pos]))
				pos++
			}

			histograms[j].bit_cost_ = populationCostLiteral(&histograms[j])
			newClusters[j] = uint32(j)
			symbols[j] = uint32(j)
			sizes[j] = 1
		}

		numNewClusters = histogramCombineLiteral(histograms, sizes[:], symbols[:], newClusters[:], pairs, numToCombine, numToCombine, histogramsPerBatch, maxNumPairs)
		if allHistogramsCapacity < allHistogramsSize+numNewClusters {
			var newSize uint
			if allHistogramsCapacity == 0 {
				newSize = allHistogramsSize + numNewClusters
			} else {
				newSize = allHistogramsCapacity
			}
			var newArray []histogramLiteral
			for newSize < allHistogramsSize+numNewClusters {
				newSize *= 2
			}
			newArray = make([]histogramLiteral, newSize)
			if allHistogramsCapacity != 0 {
				copy(newArray, allHistograms[:allHistogramsCapacity])
			}

			allHistograms = newArray
			allHistogramsCapacity = newSize
		}

		brotliEnsureCapacityUint32T(&clusterSize, &clusterSizeCapacity, clusterSizeSize+numNewClusters)
		for j = 0; j < numNewClusters; j++ {
			allHistograms[allHistogramsSize] = histograms[newClusters[j]]
			allHistogramsSize++
			clusterSize[clusterSizeSize] = sizes[newClusters[j]]
			clusterSizeSize++
			remap[symbols[j]] = uint32(j)
		}

		for j = 0; j < numToCombine; j++ {
			histogramSymbols[i+j] = uint32(numClusters) + remap[symbols[j]]
		}

		numClusters += numNewClusters
		assert(numClusters == clusterSizeSize)
		assert(numClusters == allHistogramsSize)
	}

	histograms = nil

	maxNumPairs = brotliMinSizeT(64*numClusters, (numClusters/2)*numClusters)
	if pairsCapacity < maxNumPairs+1 {
		pairs = nil
		pairs = make([]histogramPair, maxNumPairs+1)
	}

	clusterings = make([]uint32, numClusters)
	for i = 0; i < numClusters; i++ {
		clusterings[i] = uint32(i)
	}

	numFinalClusters = histogramCombineLiteral(allHistograms, clusterSize, histogramSymbols, clusterings, pairs, numClusters, numBlocks, maxNumberOfBlockTypes, maxNumPairs)
	pairs = nil
	clusterSize = nil

	newIndex = make([]uint32, numClusters)
	for i = 0; i < numClusters; i++ {
		newIndex[i] = clusterBlocksLiteral_kInvalidIndex
	}

	pos = 0
	{
		var nextIndex uint32 = 0
		for i = 0; i < numBlocks; i++ {
			var histo histogramLiteral
			var j uint
			var bestOut uint32
			var bestBits float64
			histogramClearLiteral(&histo)
			for j = 0; uint32(j) < blockLengths[i]; j++ {
				histogramAddLiteral(&histo, uint(data[pos]))
				pos++
			}

			if i == 0 {
				bestOut = histogramSymbols[0]
			} else {
				bestOut = histogramSymbols[i-1]
			}
			bestBits = histogramBitCostDistanceLiteral(&histo, &allHistograms[bestOut])
			for j = 0; j < numFinalClusters; j++ {
				var histoIx uint32 = clusterings[j]
				var bits float64 = histogramBitCostDistanceLiteral(&histo, &allHistograms[histoIx])
				if bits < bestBits {
					bestBits = bits
					bestOut = histoIx
				}
			}

			histogramSymbols[i] = bestOut
			if newIndex[bestOut] == clusterBlocksLiteral_kInvalidIndex {
				newIndex[bestOut] = nextIndex
				nextIndex++
			}
		}
	}

	clusterings = nil
	allHistograms = nil
	brotliEnsureCapacityUint8T(&split.types, &split.types_alloc_size, numBlocks)
	brotliEnsureCapacityUint32T(&split.lengths, &split.lengths_alloc_size, numBlocks)
	{
		var curLength uint32 = 0
		var blockIdx uint = 0
		var maxType byte = 0
		for i = 0; i < numBlocks; i++ {
			curLength += blockLengths[i]
			if i+1 == numBlocks || histogramSymbols[i] != histogramSymbols[i+1] {
				var id byte = byte(newIndex[histogramSymbols[i]])
				split.types[blockIdx] = id
				split.lengths[blockIdx] = curLength
				maxType = brotliMaxUint8T(maxType, id)
				curLength = 0
				blockIdx++
			}
		}

		split.num_blocks = blockIdx
		split.num_types = uint(maxType) + 1
	}
}

func splitByteVectorLiteral(data []byte, length uint, literalsPerHistogram uint, maxHistograms uint, samplingStrideLength uint, blockSwitchCost float64, params *encoderParams, split *blockSplit) {
	var dataSize uint = histogramDataSizeLiteral()
	var numHistograms uint = length/literalsPerHistogram + 1
	var histograms []histogramLiteral
	if numHistograms > maxHistograms {
		numHistograms = maxHistograms
	}

	if length == 0 {
		split.num_types = 1
		return
	}

	if length < kMinLengthForBlockSplitting {
		brotliEnsureCapacityUint8T(&split.types, &split.types_alloc_size, split.num_blocks+1)
		brotliEnsureCapacityUint32T(&split.lengths, &split.lengths_alloc_size, split.num_blocks+1)
		split.num_types = 1
		split.types[split.num_blocks] = 0
		split.lengths[split.num_blocks] = uint32(length)
		split.num_blocks++
		return
	}

	histograms = make([]histogramLiteral, numHistograms)

	/* Find good entropy codes. */
	initialEntropyCodesLiteral(data, length, samplingStrideLength, numHistograms, histograms)

	refineEntropyCodesLiteral(data, length, samplingStrideLength, numHistograms, histograms)
	{
		var blockIds []byte = make([]byte, length)
		var numBlocks uint = 0
		var bitmaplen uint = (numHistograms + 7) >> 3
		var insertCost []float64 = make([]float64, dataSize*numHistograms)
		var cost []float64 = make([]float64, numHistograms)
		var switchSignal []byte = make([]byte, length*bitmaplen)
		var newId []uint16 = make([]uint16, numHistograms)
		var iters uint
		if params.quality < hqZopflificationQuality {
			iters = 3
		} else {
			iters = 10
		}
		var i uint

		/* Find a good path through literals and block switches. */
		for i = 0; i < iters; i++ {
			numBlocks = findBlocksLiteral(data, length, blockSwitchCost, numHistograms, histograms, insertCost, cost, switchSignal, blockIds)
			numHistograms = remapBlockIdsLiteral(blockIds, length, newId, numHistograms)
			buildBlockHistogramsLiteral(data, length, blockIds, numHistograms, histograms)
		}

		clusterBlocksLiteral(data, length, numBlocks, blockIds, split)
	}
}
