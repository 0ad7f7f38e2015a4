package brotli

/* Copyright 2017 Google Inc. All Rights Reserved.

   Distributed under MIT license.
   See file LICENSE for detail or copy at https://opensource.org/licenses/MIT
*/

/* Encoding parameters, resolved once per encoder from the caller-visible
   options by sanitizeParams / computeLgBlock / chooseDistanceParams. */
type encoderParams struct {
	mode    int
	quality int
	lgwin   uint
	lgblock int

	/* An estimate of the total input size, used to pick hasher and context
	   model sizes; zero until the first metablock is cut. */
	sizeHint uint

	disableLiteralContextModeling bool
	largeWindow                   bool

	hasher     hasherParams
	dist       distanceParams
	dictionary encoderDictionary
}

/* Layout of the distance code alphabet, derived from NPOSTFIX / NDIRECT. */
type distanceParams struct {
	distancePostfixBits    uint32
	numDirectDistanceCodes uint32

	/* Number of distance symbols and the largest representable distance
	   under this layout. */
	alphabetSize uint32
	maxDistance  uint
}

/* Configuration of the hasher picked by chooseHasher for the quality level. */
type hasherParams struct {
	type_                   int
	bucketBits              int
	blockBits               int
	hashLen                 int
	numLastDistancesToCheck int
}
