package brotli

import "io"

/* Copyright 2015 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Decoder state machine. The main states drive decoderDecompressStream; each
   multi-step phase additionally keeps a sub-state so that it can suspend on
   input shortage and resume where it left off. */
const (
	stateUninited = iota
	stateLargeWindowBits
	stateInitialize
	stateMetablockBegin
	stateMetablockHeader
	stateMetablockHeader2
	stateContextModes
	stateCommandBegin
	stateCommandInner
	stateCommandPostDecodeLiterals
	stateCommandPostWrapCopy
	stateUncompressed
	stateMetadata
	stateCommandInnerWrite
	stateMetablockDone
	stateCommandPostWrite1
	stateCommandPostWrite2
	stateCommandCompoundCopy
	stateCommandCompoundWrite
	stateHuffmanCode0
	stateHuffmanCode1
	stateHuffmanCode2
	stateHuffmanCode3
	stateContextMap1
	stateContextMap2
	stateTreeGroup
	stateDone
)

const (
	stateMetablockHeaderNone = iota
	stateMetablockHeaderEmpty
	stateMetablockHeaderNibbles
	stateMetablockHeaderSize
	stateMetablockHeaderUncompressed
	stateMetablockHeaderReserved
	stateMetablockHeaderBytes
	stateMetablockHeaderMetadata
)

const (
	stateUncompressedNone = iota
	stateUncompressedWrite
)

const (
	stateTreeGroupNone = iota
	stateTreeGroupLoop
)

const (
	stateContextMapNone = iota
	stateContextMapReadPrefix
	stateContextMapHuffman
	stateContextMapDecode
	stateContextMapTransform
)

const (
	stateHuffmanNone = iota
	stateHuffmanSimpleSize
	stateHuffmanSimpleRead
	stateHuffmanSimpleBuild
	stateHuffmanComplex
	stateHuffmanLengthSymbols
)

const (
	stateDecodeUint8None = iota
	stateDecodeUint8Short
	stateDecodeUint8Long
)

const (
	stateReadBlockLengthNone = iota
	stateReadBlockLengthSuffix
)

type Reader struct {
	src io.Reader
	buf []byte // scratch space for reading from src
	in  []byte // current chunk to decode; usually aliases buf

	/* Main state machine position and the error the stream was poisoned
	   with, if any. */
	state       int
	errorCode   int
	loopCounter int

	/* Bit input. buffer/bufferLength stitch input chunks together when a
	   read transaction crosses a chunk boundary. */
	br     bitReader
	buffer struct {
		u64 uint64
		u8  [8]byte
	}
	bufferLength uint32

	/* Output ring buffer. The allocation carries write-ahead slack so that
	   the copy loops may run past the logical end. */
	pos            int
	rb             []byte
	rbEnd          []byte
	rbSize         int
	rbMask         int
	rbPendingSize  int
	rbRoundtrips   uint
	outputFlushed  uint
	rbWrapPending  uint
	rbConservative uint

	/* Stream header. */
	windowBits  uint32
	largeWindow bool

	/* Current metablock header. */
	metablockRemaining int
	isLastMetablock    uint
	isUncompressed     uint
	isMetadata         uint
	sizeNibbles        uint

	/* Distances. */
	maxBackwardDistance    int
	maxDistance            int
	distRing               [4]int
	distRingIdx            int
	distanceCode           int
	distanceContext        int
	copyLen                int
	distancePostfixBits    uint32
	numDirectDistanceCodes uint32
	distancePostfixMask    int

	/* Block types and lengths for the three stream categories. */
	blockLen       [3]uint32
	blockTypeCount [3]uint32
	blockTypeRing  [6]uint32
	blockLenIndex  uint32
	blockTypeTrees []huffmanCode
	blockLenTrees  []huffmanCode

	/* Context maps and the literal context state of the current block. */
	contextLookup          []byte
	contextMap             []byte
	contextMapSlice        []byte
	contextModes           []byte
	distContextMap         []byte
	distContextMapSlice    []byte
	trivialLiteralContext  int
	trivialLiteralContexts [8]uint32
	numLiteralTrees        uint32
	numDistanceTrees       uint32
	distTreeIdx            byte

	/* Prefix code groups for literals, commands and distances. */
	literalGroup  huffmanTreeGroup
	commandGroup  huffmanTreeGroup
	distanceGroup huffmanTreeGroup
	literalTree   []huffmanCode
	commandTree   []huffmanCode

	/* Scratch for reading a single prefix code (simple or complex). */
	subLoopCounter        uint32
	symbol                uint32
	repeat                uint32
	space                 uint32
	repeatCodeLen         uint32
	prevCodeLen           uint32
	table                 [32]huffmanCode
	symbolChains       symbolList
	symbolChainStorage [huffmanMaxCodeLength + 1 + numCommandSymbols]uint16
	nextSymbol            [32]int
	codeLengthCodeLengths [codeLengthCodes]byte
	codeLengthHisto       [16]uint16
	htreeIndex            int
	next                  []huffmanCode

	/* Scratch for decoding a context map. */
	contextIndex       uint32
	maxRunLengthPrefix uint32
	code               uint32
	contextMapTable    [huffmanMaxSize272]huffmanCode

	/* Sub-states of the resumable phases. */
	substateMetablockHeader int
	substateTreeGroup       int
	substateContextMap      int
	substateUncompressed    int
	substateHuffman         int
	substateDecodeUint8     int
	substateReadBlockLength int

	/* Shared static data and the attached compound dictionary. */
	dictionary     *dictionary
	transforms     *transforms
	compoundDict   compoundDictionary
	compoundOffset int
}

func decoderStateInit(s *Reader) bool {
	s.errorCode = 0 /* BROTLI_DECODER_NO_ERROR */
	s.state = stateUninited
	s.loopCounter = 0
	s.largeWindow = false

	initBitReader(&s.br)
	s.bufferLength = 0

	s.substateMetablockHeader = stateMetablockHeaderNone
	s.substateTreeGroup = stateTreeGroupNone
	s.substateContextMap = stateContextMapNone
	s.substateUncompressed = stateUncompressedNone
	s.substateHuffman = stateHuffmanNone
	s.substateDecodeUint8 = stateDecodeUint8None
	s.substateReadBlockLength = stateReadBlockLengthNone

	s.pos = 0
	s.rbRoundtrips = 0
	s.outputFlushed = 0
	s.rbSize = 0
	s.rbPendingSize = 0
	s.rbMask = 0
	s.rbWrapPending = 0
	s.rbConservative = 1

	s.blockTypeTrees = nil
	s.blockLenTrees = nil
	s.contextMap = nil
	s.contextModes = nil
	s.distContextMap = nil
	s.contextMapSlice = nil
	s.distContextMapSlice = nil
	s.subLoopCounter = 0

	s.literalGroup = huffmanTreeGroup{}
	s.commandGroup = huffmanTreeGroup{}
	s.distanceGroup = huffmanTreeGroup{}

	s.isLastMetablock = 0
	s.isUncompressed = 0
	s.isMetadata = 0

	s.windowBits = 0
	s.maxDistance = 0

	/* RFC 7932, section 4: initial values of the distance ring buffer. */
	s.distRing[0] = 16
	s.distRing[1] = 15
	s.distRing[2] = 11
	s.distRing[3] = 4
	s.distRingIdx = 0

	s.symbolChains.storage = s.symbolChainStorage[:]
	s.symbolChains.offset = huffmanMaxCodeLength + 1

	s.dictionary = getDictionary()
	s.transforms = getTransforms()

	return true
}

func decoderStateMetablockBegin(s *Reader) {
	s.metablockRemaining = 0

	/* Unbounded virtual block lengths for streams with a single block type. */
	s.blockLen[0] = 1 << 24
	s.blockLen[1] = 1 << 24
	s.blockLen[2] = 1 << 24
	s.blockTypeCount[0] = 1
	s.blockTypeCount[1] = 1
	s.blockTypeCount[2] = 1

	s.blockTypeRing[0] = 1
	s.blockTypeRing[1] = 0
	s.blockTypeRing[2] = 1
	s.blockTypeRing[3] = 0
	s.blockTypeRing[4] = 1
	s.blockTypeRing[5] = 0

	s.contextMap = nil
	s.contextModes = nil
	s.distContextMap = nil
	s.contextMapSlice = nil
	s.distContextMapSlice = nil
	s.contextLookup = nil
	s.literalTree = nil
	s.distTreeIdx = 0

	s.literalGroup.codes = nil
	s.literalGroup.htrees = nil
	s.commandGroup.codes = nil
	s.commandGroup.htrees = nil
	s.distanceGroup.codes = nil
	s.distanceGroup.htrees = nil
}

func decoderStateCleanupAfterMetablock(s *Reader) {
	s.contextModes = nil
	s.contextMap = nil
	s.distContextMap = nil
	s.literalGroup.htrees = nil
	s.commandGroup.htrees = nil
	s.distanceGroup.htrees = nil
}

func decoderHuffmanTreeGroupInit(s *Reader, group *huffmanTreeGroup, alphabetSize uint32, maxSymbol uint32, ntrees uint32) bool {
	maxTableSize := uint(kMaxHuffmanTableSize[(alphabetSize+31)>>5])
	group.alphabet_size = uint16(alphabetSize)
	group.max_symbol = uint16(maxSymbol)
	group.num_htrees = uint16(ntrees)
	group.htrees = make([][]huffmanCode, ntrees)
	group.codes = make([]huffmanCode, uint(ntrees)*maxTableSize)
	return group.codes != nil
}
