package brotli

import "sync"

/* Copyright 2014 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Algorithms for distributing the literals and commands of a metablock between
   block types and contexts. */
type metaBlockSplit struct {
	literal_split             blockSplit
	command_split             blockSplit
	distance_split            blockSplit
	literal_context_map       []uint32
	literal_context_map_size  uint
	distance_context_map      []uint32
	distance_context_map_size uint
	literal_histograms        []histogramLiteral
	literal_histograms_size   uint
	command_histograms        []histogramCommand
	command_histograms_size   uint
	distance_histograms       []histogramDistance
	distance_histograms_size  uint
}

var metaBlockPool sync.Pool

func getMetaBlockSplit() *metaBlockSplit {
	mb, _ := metaBlockPool.Get().(*metaBlockSplit)

	if mb == nil {
		mb = &metaBlockSplit{}
	} else {
		initBlockSplit(&mb.literal_split)
		initBlockSplit(&mb.command_split)
		initBlockSplit(&mb.distance_split)
		mb.literal_context_map = mb.literal_context_map[:0]
		mb.literal_context_map_size = 0
		mb.distance_context_map = mb.distance_context_map[:0]
		mb.distance_context_map_size = 0
		mb.literal_histograms = mb.literal_histograms[:0]
		mb.command_histograms = mb.command_histograms[:0]
		mb.distance_histograms = mb.distance_histograms[:0]
	}
	return mb
}

func freeMetaBlockSplit(mb *metaBlockSplit) {
	metaBlockPool.Put(mb)
}

func initDistanceParams(params *encoderParams, npostfix uint32, ndirect uint32) {
	var distParams *distanceParams = &params.dist
	var alphabetSize uint32
	var maxDistanceVal uint

	distParams.distancePostfixBits = npostfix
	distParams.numDirectDistanceCodes = ndirect

	alphabetSize = uint32(distanceAlphabetSize(uint(npostfix), uint(ndirect), maxDistanceBits))
	maxDistanceVal = uint(ndirect) + (1 << (maxDistanceBits + npostfix + 2)) - (1 << (npostfix + 2))

	if params.largeWindow {
		var bound = [maxNpostfix + 1]uint32{0, 4, 12, 28}
		var postfix uint32 = 1 << npostfix
		alphabetSize = uint32(distanceAlphabetSize(uint(npostfix), uint(ndirect), largeMaxDistanceBits))

		/* The maximum distance up to which we can decode large distances. */
		if ndirect < bound[npostfix] {
			maxDistanceVal = maxAllowedDistance - uint(bound[npostfix]-ndirect)
		} else if ndirect >= bound[npostfix]+postfix {
			maxDistanceVal = (3 << 29) - 4 + uint(ndirect-bound[npostfix])
		} else {
			maxDistanceVal = maxAllowedDistance
		}
	}

	distParams.alphabetSize = alphabetSize
	distParams.maxDistance = maxDistanceVal
}

func recomputeDistancePrefixes(cmds []command, origParams *distanceParams, newParams *distanceParams) {
	if origParams.distancePostfixBits == newParams.distancePostfixBits && origParams.numDirectDistanceCodes == newParams.numDirectDistanceCodes {
		return
	}

	for i := range cmds {
		var cmd *command = &cmds[i]
		if commandCopyLen(cmd) != 0 && cmd.cmd_prefix_ >= 128 {
			prefixEncodeCopyDistance(uint(commandRestoreDistanceCode(cmd, origParams)), uint(newParams.numDirectDistanceCodes), uint(newParams.distancePostfixBits), &cmd.dist_prefix_, &cmd.dist_extra_)
		}
	}
}

func computeDistanceCost(cmds []command, origParams *distanceParams, newParams *distanceParams, cost *float64) bool {
	var equalParams bool = false
	var distPrefix uint16
	var distExtra uint32
	var extraBits float64 = 0.0
	var histo histogramDistance
	histogramClearDistance(&histo)

	if origParams.distancePostfixBits == newParams.distancePostfixBits && origParams.numDirectDistanceCodes == newParams.numDirectDistanceCodes {
		equalParams = true
	}

	for i := range cmds {
		var cmd *command = &cmds[i]
		if commandCopyLen(cmd) != 0 && cmd.cmd_prefix_ >= 128 {
			if equalParams {
				distPrefix = cmd.dist_prefix_
			} else {
				var distance uint32 = commandRestoreDistanceCode(cmd, origParams)
				if uint(distance) > newParams.maxDistance {
					return false
				}

				prefixEncodeCopyDistance(uint(distance), uint(newParams.numDirectDistanceCodes), uint(newParams.distancePostfixBits), &distPrefix, &distExtra)
			}

			histogramAddDistance(&histo, uint(distPrefix)&0x3FF)
			extraBits += float64(distPrefix >> 10)
		}
	}

	*cost = populationCostDistance(&histo) + extraBits
	return true
}

func buildMetaBlock(ringbuffer []byte, pos uint, mask uint, params *encoderParams, prevByte byte, prevByte2 byte, cmds []command, literalContextMode int, mb *metaBlockSplit) {
	/* Histogram ids need to fit in one byte. */
	var kMaxNumberOfHistograms uint = 256
	var distanceHistograms []histogramDistance
	var literalHistograms []histogramLiteral
	var literalContextModes []int = nil
	var literalHistogramsSize uint
	var distanceHistogramsSize uint
	var i uint
	var literalContextMultiplier uint = 1
	var npostfix uint32
	var ndirectMsb uint32 = 0
	var checkOrig bool = true
	var bestDistCost float64 = 1e99
	var origParams encoderParams = *params
	var newParams encoderParams = *params

	for npostfix = 0; npostfix <= maxNpostfix; npostfix++ {
		for ; ndirectMsb < 16; ndirectMsb++ {
			var ndirect uint32 = ndirectMsb << npostfix
			var skip bool
			var distCost float64
			initDistanceParams(&newParams, npostfix, ndirect)
			if npostfix == origParams.dist.distancePostfixBits && ndirect == origParams.dist.numDirectDistanceCodes {
				checkOrig = false
			}

			skip = !computeDistanceCost(cmds, &origParams.dist, &newParams.dist, &distCost)
			if skip || (distCost > bestDistCost) {
				break
			}

			bestDistCost = distCost
			params.dist = newParams.dist
		}

		if ndirectMsb > 0 {
			ndirectMsb--
		}
		ndirectMsb /= 2
	}

	if checkOrig {
		var distCost float64
		computeDistanceCost(cmds, &origParams.dist, &origParams.dist, &distCost)
		if distCost < bestDistCost {
			/* NB: currently unreachable. */
			bestDistCost = distCost
			params.dist = origParams.dist
		}
	}

	recomputeDistancePrefixes(cmds, &origParams.dist, &params.dist)

	splitBlock(cmds, ringbuffer, pos, mask, params, &mb.literal_split, &mb.command_split, &mb.distance_split)

	if !params.disableLiteralContextModeling {
		literalContextMultiplier = 1 << literalContextBits
		literalContextModes = make([]int, mb.literal_split.num_types)
		for i = 0; i < mb.literal_split.num_types; i++ {
			literalContextModes[i] = literalContextMode
		}
	}

	literalHistogramsSize = mb.literal_split.num_types * literalContextMultiplier
	literalHistograms = make([]histogramLiteral, literalHistogramsSize)
	clearHistogramsLiteral(literalHistograms, literalHistogramsSize)

	distanceHistogramsSize = mb.distance_split.num_types << distanceContextBits
	distanceHistograms = make([]histogramDistance, distanceHistogramsSize)
	clearHistogramsDistance(distanceHistograms, distanceHistogramsSize)

	mb.command_histograms_size = mb.command_split.num_types
	if cap(mb.command_histograms) < int(mb.command_histograms_size) {
		mb.command_histograms = make([]histogramCommand, mb.command_histograms_size)
	} else {
		mb.command_histograms = mb.command_histograms[:mb.command_histograms_size]
	}
	clearHistogramsCommand(mb.command_histograms, mb.command_histograms_size)

	buildHistogramsWithContext(cmds, &mb.literal_split, &mb.command_split, &mb.distance_split, ringbuffer, pos, mask, prevByte, prevByte2, literalContextModes, literalHistograms, mb.command_histograms, distanceHistograms)
	literalContextModes = nil

	mb.literal_context_map_size = mb.literal_split.num_types << literalContextBits
	if cap(mb.literal_context_map) < int(mb.literal_context_map_size) {
		mb.literal_context_map = make([]uint32, mb.literal_context_map_size)
	} else {
		mb.literal_context_map = mb.literal_context_map[:mb.literal_context_map_size]
	}

	mb.literal_histograms_size = mb.literal_context_map_size
	if cap(mb.literal_histograms) < int(mb.literal_histograms_size) {
		mb.literal_histograms = make([]histogramLiteral, mb.literal_histograms_size)
	} else {
		mb.literal_histograms = mb.literal_histograms[:mb.literal_histograms_size]
	}

	clusterHistogramsLiteral(literalHistograms, literalHistogramsSize, kMaxNumberOfHistograms, mb.literal_histograms, &mb.literal_histograms_size, mb.literal_context_map)
	literalHistograms = nil

	if params.disableLiteralContextModeling {
		/* Distribute assignment to all contexts. */
		for i = mb.literal_split.num_types; i != 0; {
			var j uint = 0
			i--
			for ; j < 1<<literalContextBits; j++ {
				mb.literal_context_map[i<<literalContextBits+j] = mb.literal_context_map[i]
			}
		}
	}

	mb.distance_context_map_size = mb.distance_split.num_types << distanceContextBits
	if cap(mb.distance_context_map) < int(mb.distance_context_map_size) {
		mb.distance_context_map = make([]uint32, mb.distance_context_map_size)
	} else {
		mb.distance_context_map = mb.distance_context_map[:mb.distance_context_map_size]
	}

	mb.distance_histograms_size = mb.distance_context_map_size
	if cap(mb.distance_histograms) < int(mb.distance_histograms_size) {
		mb.distance_histograms = make([]histogramDistance, mb.distance_histograms_size)
	} else {
		mb.distance_histograms = mb.distance_histograms[:mb.distance_histograms_size]
	}

	clusterHistogramsDistance(distanceHistograms, mb.distance_context_map_size, kMaxNumberOfHistograms, mb.distance_histograms, &mb.distance_histograms_size, mb.distance_context_map)
	distanceHistograms = nil
}

func mapStaticContexts(numContexts uint, staticContextMap []uint32, mb *metaBlockSplit) {
	var i uint
	mb.literal_context_map_size = mb.literal_split.num_types << literalContextBits
	if cap(mb.literal_context_map) < int(mb.literal_context_map_size) {
		mb.literal_context_map = make([]uint32, mb.literal_context_map_size)
	} else {
		mb.literal_context_map = mb.literal_context_map[:mb.literal_context_map_size]
	}

	for i = 0; i < mb.literal_split.num_types; i++ {
		var offset uint32 = uint32(i * numContexts)
		var j uint
		for j = 0; j < 1<<literalContextBits; j++ {
			mb.literal_context_map[(i<<literalContextBits)+j] = offset + staticContextMap[j]
		}
	}
}

func buildMetaBlockGreedyInternal(ringbuffer []byte, pos uint, mask uint, prevByte byte, prevByte2 byte, literalContextLut contextLUT, numContexts uint, staticContextMap []uint32, commands []command, mb *metaBlockSplit) {
	var litBlocks struct {
		plain blockSplitterLiteral
		ctx   contextBlockSplitter
	}
	var cmdBlocks blockSplitterCommand
	var distBlocks blockSplitterDistance
	var numLiterals uint = 0
	for i := range commands {
		numLiterals += uint(commands[i].insert_len_)
	}

	if numContexts == 1 {
		initBlockSplitterLiteral(&litBlocks.plain, 256, 512, 400.0, numLiterals, &mb.literal_split, &mb.literal_histograms, &mb.literal_histograms_size)
	} else {
		initContextBlockSplitter(&litBlocks.ctx, 256, numContexts, 512, 400.0, numLiterals, &mb.literal_split, &mb.literal_histograms, &mb.literal_histograms_size)
	}

	initBlockSplitterCommand(&cmdBlocks, numCommandSymbols, 1024, 500.0, uint(len(commands)), &mb.command_split, &mb.command_histograms, &mb.command_histograms_size)
	initBlockSplitterDistance(&distBlocks, 64, 512, 100.0, uint(len(commands)), &mb.distance_split, &mb.distance_histograms, &mb.distance_histograms_size)

	for i := range commands {
		var cmd command = commands[i]
		var j uint
		blockSplitterAddSymbolCommand(&cmdBlocks, uint(cmd.cmd_prefix_))
		for j = uint(cmd.insert_len_); j != 0; j-- {
			var literal byte = ringbuffer[pos&mask]
			if numContexts == 1 {
				blockSplitterAddSymbolLiteral(&litBlocks.plain, uint(literal))
			} else {
				var context uint = uint(getContext(prevByte, prevByte2, literalContextLut))
				contextBlockSplitterAddSymbol(&litBlocks.ctx, uint(literal), uint(staticContextMap[context]))
			}

			prevByte2 = prevByte
			prevByte = literal
			pos++
		}

		pos += uint(commandCopyLen(&cmd))
		if commandCopyLen(&cmd) != 0 {
			prevByte2 = ringbuffer[(pos-2)&mask]
			prevByte = ringbuffer[(pos-1)&mask]
			if cmd.cmd_prefix_ >= 128 {
				blockSplitterAddSymbolDistance(&distBlocks, uint(cmd.dist_prefix_)&0x3FF)
			}
		}
	}

	if numContexts == 1 {
		blockSplitterFinishBlockLiteral(&litBlocks.plain, true) /* is_final = true */
	} else {
		contextBlockSplitterFinishBlock(&litBlocks.ctx, true) /* is_final = true */
	}

	blockSplitterFinishBlockCommand(&cmdBlocks, true) /* is_final = true */
	blockSplitterFinishBlockDistance(&distBlocks, true)

	if numContexts > 1 {
		mapStaticContexts(numContexts, staticContextMap, mb)
	}
}

func buildMetaBlockGreedy(ringbuffer []byte, pos uint, mask uint, prevByte byte, prevByte2 byte, literalContextLut contextLUT, numContexts uint, staticContextMap []uint32, commands []command, mb *metaBlockSplit) {
	if numContexts == 1 {
		buildMetaBlockGreedyInternal(ringbuffer, pos, mask, prevByte, prevByte2, literalContextLut, 1, nil, commands, mb)
	} else {
		buildMetaBlockGreedyInternal(ringbuffer, pos, mask, prevByte, prevByte2, literalContextLut, numContexts, staticContextMap, commands, mb)
	}
}

func optimizeHistograms(numDistanceCodes uint32, mb *metaBlockSplit) {
	var goodForRle [numCommandSymbols]byte
	var i uint
	for i = 0; i < mb.literal_histograms_size; i++ {
		optimizeHuffmanCountsForRle(256, mb.literal_histograms[i].data_[:], goodForRle[:])
	}

	for i = 0; i < mb.command_histograms_size; i++ {
		optimizeHuffmanCountsForRle(numCommandSymbols, mb.command_histograms[i].data_[:], goodForRle[:])
	}

	for i = 0; i < mb.distance_histograms_size; i++ {
		optimizeHuffmanCountsForRle(uint(numDistanceCodes), mb.distance_histograms[i].data_[:], goodForRle[:])
	}
}
