package brotli

import "errors"

/* A compound dictionary is a sequence of caller-supplied byte chunks that are
   attached to a decoder before decompression starts. The chunks occupy the
   distance range just beyond the sliding window: a distance of
   max_distance + k (1 <= k <= total size) addresses the byte k positions
   before the end of the concatenated chunk data. Distances beyond that range
   fall through to the static dictionary. */

const maxCompoundDictionaryChunks = 15

type compoundDictionary struct {
	numChunks    int
	totalSize    int
	chunks       [maxCompoundDictionaryChunks][]byte
	chunkOffsets [maxCompoundDictionaryChunks + 1]int
}

var errTooManyDictionaryChunks = errors.New("brotli: too many compound dictionary chunks")
var errEmptyDictionaryChunk = errors.New("brotli: empty compound dictionary chunk")

func attachCompoundDictionary(pd *compoundDictionary, data []byte) error {
	if pd.numChunks == maxCompoundDictionaryChunks {
		return errTooManyDictionaryChunks
	}

	if len(data) == 0 {
		return errEmptyDictionaryChunk
	}

	pd.chunks[pd.numChunks] = data
	pd.numChunks++
	pd.totalSize += len(data)
	pd.chunkOffsets[pd.numChunks] = pd.totalSize
	return nil
}

/* Locates the chunk containing the given absolute offset into the
   concatenated chunk data. The chunk count is bounded by
   maxCompoundDictionaryChunks, so the scan is constant time. */
func compoundDictionaryChunkIndex(pd *compoundDictionary, offset int) int {
	var index int = 0
	for offset >= pd.chunkOffsets[index+1] {
		index++
	}

	return index
}

/* Copies up to |length| bytes starting at absolute |offset| into dst.
   Returns the number of bytes copied, limited by the end of the containing
   chunk; the caller loops until the requested length is exhausted. */
func copyFromCompoundDictionary(pd *compoundDictionary, dst []byte, offset int, length int) int {
	var index int = compoundDictionaryChunkIndex(pd, offset)
	var chunk []byte = pd.chunks[index]
	var chunkPos int = offset - pd.chunkOffsets[index]
	var n int = brotliMinInt(length, len(chunk)-chunkPos)
	copy(dst[:n], chunk[chunkPos:])
	return n
}
