package brotli

/* Copyright 2013 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

func utf8Position(last uint, c uint, clamp uint) uint {
	if c < 128 {
		return 0 /* Next one is the 'Byte 1' again. */
	} else if c >= 192 { /* Next one is the 'Byte 2' of utf-8 encoding. */
		return brotliMinSizeT(1, clamp)
	} else {
		/* Let's decide over the last byte if this ends the sequence. */
		if last < 0xE0 {
			return 0 /* Completed two or three byte coding. */
		} else { /* Next one is the 'Byte 3' of utf-8 encoding. */
			return brotliMinSizeT(2, clamp)
		}
	}
}

func decideMultiByteStatsLevel(pos uint, len uint, mask uint, data []byte) uint {
	var counts = [3]uint{0}
	var maxUtf8 uint = 1 /* should be 2, but 1 compresses better. */
	var lastC uint = 0
	var i uint
	for i = 0; i < len; i++ {
		var c uint = uint(data[(pos+i)&mask])
		counts[utf8Position(lastC, c, 2)]++
		lastC = c
	}

	if counts[2] < 500 {
		maxUtf8 = 1
	}

	if counts[1]+counts[2] < 25 {
		maxUtf8 = 0
	}

	return maxUtf8
}

func estimateBitCostsForLiteralsUTF8(pos uint, len uint, mask uint, data []byte, cost []float32) {
	var maxUtf8 uint = decideMultiByteStatsLevel(pos, uint(len), mask, data)
	/* Bootstrap histograms. */
	var histogram = [3][256]uint{[256]uint{0}}
	var windowHalf uint = 495
	var inWindow uint = brotliMinSizeT(windowHalf, uint(len))
	var inWindowUtf8 = [3]uint{0}

	var i uint
	{
		var lastC uint = 0
		var utf8Pos uint = 0
		for i = 0; i < inWindow; i++ {
			var c uint = uint(data[(pos+i)&mask])
			histogram[utf8Pos][c]++
			inWindowUtf8[utf8Pos]++
			utf8Pos = utf8Position(lastC, c, maxUtf8)
			lastC = c
		}
	}

	/* Compute bit costs with sliding window. */
	for i = 0; i < len; i++ {
		if i >= windowHalf {
			/* Remove a byte in the past. */
			var c uint
			var lastC uint
			if i < windowHalf+1 {
				c = 0
			} else {
				c = uint(data[(pos+i-windowHalf-1)&mask])
			}

			if i < windowHalf+2 {
				lastC = 0
			} else {
				lastC = uint(data[(pos+i-windowHalf-2)&mask])
			}
			{
				var utf8Pos2 uint = utf8Position(lastC, c, maxUtf8)
				histogram[utf8Pos2][data[(pos+i-windowHalf)&mask]]--
				inWindowUtf8[utf8Pos2]--
			}
		}

		if i+windowHalf < len {
			/* Add a byte in the future. */
			var c uint = uint(data[(pos+i+windowHalf-1)&mask])
			var lastC uint = uint(data[(pos+i+windowHalf-2)&mask])
			var utf8Pos2 uint = utf8Position(lastC, c, maxUtf8)
			histogram[utf8Pos2][data[(pos+i+windowHalf)&mask]]++
			inWindowUtf8[utf8Pos2]++
		}
		{
			var c uint
			var lastC uint
			if i < 1 {
				c = 0
			} else {
				c = uint(data[(pos+i-1)&mask])
			}

			if i < 2 {
				lastC = 0
			} else {
				lastC = uint(data[(pos+i-2)&mask])
			}
			var utf8Pos uint = utf8Position(lastC, c, maxUtf8)
			var maskedPos uint = (pos + i) & mask
			var histo uint = histogram[utf8Pos][data[maskedPos]]
			var litCost float64
			if histo == 0 {
				histo = 1
			}

			litCost = fastLog2(inWindowUtf8[utf8Pos]) - fastLog2(histo)
			litCost += 0.02905
			if litCost < 1.0 {
				litCost *= 0.5
				litCost += 0.5
			}

			/* Make the first bytes more expensive -- seems to help, not sure why.
			   Perhaps because the entropy source is changing its properties
			   rapidly in the beginning of the file, perhaps because the beginning
			   of the data is a statistical "anomaly". */
			if i < 2000 {
				litCost += 0.7 - (float64(2000-i) / 2000.0 * 0.35)
			}

			cost[i] = float32(litCost)
		}
	}
}

/* Estimates how many bits the literals in the interval [pos, pos + len) in the
   ring-buffer (data, mask) will take entropy coded and writes these estimates
   to the cost[0..len) array. */
func estimateBitCostsForLiterals(pos uint, len uint, mask uint, data []byte, cost []float32) {
	if isMostlyUTF8(data, pos, mask, uint(len), kMinUTF8Ratio) {
		estimateBitCostsForLiteralsUTF8(pos, uint(len), mask, data, cost)
		return
	} else {
		var histogram = [256]uint{0}
		var windowHalf uint = 2000
		var inWindow uint = brotliMinSizeT(windowHalf, uint(len))

		/* Bootstrap histogram. */
		var i uint
		for i = 0; i < inWindow; i++ {
			histogram[data[(pos+i)&mask]]++
		}

		/* Compute bit costs with sliding window. */
		for i = 0; i < len; i++ {
			var histo uint
			if i >= windowHalf {
				/* Remove a byte in the past. */
				histogram[data[(pos+i-windowHalf)&mask]]--

				inWindow--
			}

			if i+windowHalf < len {
				/* Add a byte in the future. */
				histogram[data[(pos+i+windowHalf)&mask]]++

				inWindow++
			}

			histo = histogram[data[(pos+i)&mask]]
			if histo == 0 {
				histo = 1
			}
			{
				var litCost float64 = fastLog2(inWindow) - fastLog2(histo)
				litCost += 0.029
				if litCost < 1.0 {
					litCost *= 0.5
					litCost += 0.5
				}

				cost[i] = float32(litCost)
			}
		}
	}
}
