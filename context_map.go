package brotli

/* Copyright 2013 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Context-map decoding: prefix-coded symbols, zero-run RLE and an optional
   inverse move-to-front pass. */
/* Inverse move-to-front: L starts as 0..255; each input symbol X outputs
   L[X] and moves that value to the front of L. Almost all context-map values
   are tiny, so only the touched prefix of L ever changes. */
func inverseMoveToFrontTransform(v []byte, vLen uint32, state *Reader) {
	var mtf [256]byte
	var i int
	for i = 1; i < 256; i++ {
		mtf[i] = byte(i)
	}
	var mtf1 byte

	/* Transform the input. */
	for i = 0; uint32(i) < vLen; i++ {
		var index int = int(v[i])
		var value byte = mtf[index]
		v[i] = value
		mtf1 = value
		for index >= 1 {
			index--
			mtf[index+1] = mtf[index]
		}

		mtf[0] = mtf1
	}
}

/* Reads one context map. The map is decoded in up to four resumable steps:
   the tree count (trivial maps stop here), the prefix code over map symbols
   plus zero-run codes, the symbol/run stream itself, and the optional
   inverse move-to-front pass. */
func decodeContextMap(contextMapSize uint32, numHtrees *uint32, contextMapArg *[]byte, s *Reader) int {
	var br *bitReader = &s.br
	var status int = decoderSuccess

	switch int(s.substateContextMap) {
	case stateContextMapNone:
		status = decodeVarLenUint8(s, br, numHtrees)
		if status != decoderSuccess {
			return status
		}

		(*numHtrees)++
		s.contextIndex = 0
		*contextMapArg = make([]byte, uint(contextMapSize))
		if *contextMapArg == nil {
			return decoderErrAllocContextMap
		}

		if *numHtrees <= 1 {
			for i := 0; i < int(contextMapSize); i++ {
				(*contextMapArg)[i] = 0
			}
			return decoderSuccess
		}

		s.substateContextMap = stateContextMapReadPrefix
		fallthrough
	/* Fall through. */
	case stateContextMapReadPrefix:
		{
			var bits uint32

			/* In next stage ReadHuffmanCode uses at least 4 bits, so it is safe
			   to peek 4 bits ahead. */
			if !safeGetBits(br, 5, &bits) {
				return decoderInputRequired
			}

			if bits&1 != 0 { /* Use RLE for zeros. */
				s.maxRunLengthPrefix = (bits >> 1) + 1
				dropBits(br, 5)
			} else {
				s.maxRunLengthPrefix = 0
				dropBits(br, 1)
			}

			s.substateContextMap = stateContextMapHuffman
		}
		fallthrough

		/* Fall through. */
	case stateContextMapHuffman:
		{
			var alphabetSize uint32 = *numHtrees + s.maxRunLengthPrefix
			status = readHuffmanCode(alphabetSize, alphabetSize, s.contextMapTable[:], nil, s)
			if status != decoderSuccess {
				return status
			}
			s.code = 0xFFFF
			s.substateContextMap = stateContextMapDecode
		}
		fallthrough

		/* Fall through. */
	case stateContextMapDecode:
		{
			var mapPos uint32 = s.contextIndex
			var maxRunPrefix uint32 = s.maxRunLengthPrefix
			var cmap []byte = *contextMapArg
			var sym uint32 = s.code
			var resumingRun bool = (sym != 0xFFFF)
			for mapPos < contextMapSize || resumingRun {
				if !resumingRun {
					if !safeReadSymbol(s.contextMapTable[:], br, &sym) {
						s.code = 0xFFFF
						s.contextIndex = mapPos
						return decoderInputRequired
					}

					if sym == 0 {
						cmap[mapPos] = 0
						mapPos++
						continue
					}

					if sym > maxRunPrefix {
						cmap[mapPos] = byte(sym - maxRunPrefix)
						mapPos++
						continue
					}
				} else {
					resumingRun = false
				}

				/* RLE sub-stage. */
				{
					var runLen uint32
					if !safeReadBits(br, sym, &runLen) {
						s.code = sym
						s.contextIndex = mapPos
						return decoderInputRequired
					}

					runLen += 1 << sym
					if mapPos+runLen > contextMapSize {
						return decoderErrFormatContextMapRepeat
					}

					for {
						cmap[mapPos] = 0
						mapPos++
						runLen--
						if runLen == 0 {
							break
						}
					}
				}
			}
		}
		fallthrough

	case stateContextMapTransform:
		var bits uint32
		if !safeReadBits(br, 1, &bits) {
			s.substateContextMap = stateContextMapTransform
			return decoderInputRequired
		}

		if bits != 0 {
			inverseMoveToFrontTransform(*contextMapArg, contextMapSize, s)
		}

		s.substateContextMap = stateContextMapNone
		return decoderSuccess

	default:
		return decoderErrUnreachable
	}
}
