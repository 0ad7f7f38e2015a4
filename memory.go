package brotli

/* Copyright 2016 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Dynamically grows array capacity to at least the requested size. */
func brotliEnsureCapacityUint8T(a *[]byte, c *uint, r uint) {
	if *c < r {
		var newSize uint = *c
		if newSize == 0 {
			newSize = r
		}

		for newSize < r {
			newSize *= 2
		}

		var newArray []byte = make([]byte, newSize)
		if *c != 0 {
			copy(newArray, (*a)[:*c])
		}

		*a = newArray
		*c = newSize
	}
}

func brotliEnsureCapacityUint32T(a *[]uint32, c *uint, r uint) {
	var newArray []uint32
	if *c < r {
		var newSize uint = *c
		if newSize == 0 {
			newSize = r
		}

		for newSize < r {
			newSize *= 2
		}

		newArray = make([]uint32, newSize)
		if *c != 0 {
			copy(newArray, (*a)[:*c])
		}

		*a = newArray
		*c = newSize
	}
}
