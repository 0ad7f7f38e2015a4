package brotli

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/xyproto/randomstring"
)

func checkCompressedData(compressedData, wantOriginalData []byte) error {
	uncompressed, err := Decode(compressedData)
	if err != nil {
		return fmt.Errorf("brotli decompress failed: %v", err)
	}

	if !bytes.Equal(uncompressed, wantOriginalData) {
		if len(wantOriginalData) != len(uncompressed) {
			return fmt.Errorf(""+
				"Data doesn't uncompress to the original value.\n"+
				"Length of original: %v\n"+
				"Length of uncompressed: %v",
				len(wantOriginalData), len(uncompressed))
		}

		for i := range wantOriginalData {
			if wantOriginalData[i] != uncompressed[i] {
				return fmt.Errorf(""+
					"Data doesn't uncompress to the original value.\n"+
					"Original at %v is %v\n"+
					"Uncompressed at %v is %v",
					i, wantOriginalData[i], i, uncompressed[i])
			}
		}
	}

	return nil
}

func TestEncoderEmptyWrite(t *testing.T) {
	compressed := new(bytes.Buffer)
	e := NewWriterOptions(compressed, WriterOptions{Quality: 5})
	n, err := e.Write([]byte(""))
	if n != 0 || err != nil {
		t.Errorf("Write()=%v,%v, want 0, nil", n, err)
	}

	if err := e.Close(); err != nil {
		t.Errorf("Close()=%v, want nil", err)
	}
}

func TestWriter(t *testing.T) {
	// Test basic encoder usage.
	input := []byte("<html><body><H1>Hello world</H1></body></html>")
	out := bytes.Buffer{}
	e := NewWriterOptions(&out, WriterOptions{Quality: 1})
	in := bytes.NewReader([]byte(input))
	n, err := io.Copy(e, in)
	if err != nil {
		t.Errorf("Copy Error: %v", err)
	}

	if int(n) != len(input) {
		t.Errorf("Copy() n=%v, want %v", n, len(input))
	}

	if err := e.Close(); err != nil {
		t.Errorf("Close Error after copied %d bytes: %v", n, err)
	}

	if err := checkCompressedData(out.Bytes(), input); err != nil {
		t.Error(err)
	}

	out2 := bytes.Buffer{}
	e.Reset(&out2)
	n2, err := e.Write(input)
	if err != nil {
		t.Errorf("Write error after Reset: %v", err)
	}

	if n2 != len(input) {
		t.Errorf("Write() after Reset n=%d, want %d", n2, len(input))
	}

	if err := e.Close(); err != nil {
		t.Errorf("Close error after Reset (copied %d) bytes: %v", n2, err)
	}

	if !bytes.Equal(out.Bytes(), out2.Bytes()) {
		t.Error("Compressed data after Reset doesn't equal first time")
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, test := range []struct {
		data    []byte
		repeats int
	}{
		{nil, 0},
		{[]byte("A"), 1},
		{[]byte("<html><body><H1>Hello world</H1></body></html>"), 10},
		{[]byte("The quick brown fox jumps over the lazy dog"), 100},
	} {
		t.Logf("case %q x %d", test.data, test.repeats)
		input := bytes.Repeat(test.data, test.repeats)
		for quality := 0; quality <= 11; quality++ {
			enc, err := Encode(input, WriterOptions{Quality: quality})
			if err != nil {
				t.Errorf("quality=%d: Encode: %v", quality, err)
				continue
			}

			dec, err := Decode(enc)
			if err != nil {
				t.Errorf("quality=%d: Decode: %v", quality, err)
				continue
			}

			if !bytes.Equal(dec, input) {
				t.Errorf("quality=%d: roundtrip mismatch (%d in, %d out)", quality, len(input), len(dec))
			}
		}
	}
}

func TestEncodeDecodeText(t *testing.T) {
	s := randomstring.HumanFriendlyString(1 << 16)
	input := []byte(s)
	for _, quality := range []int{1, 5, 9, 10, 11} {
		enc, err := Encode(input, WriterOptions{Quality: quality, Mode: ModeText})
		if err != nil {
			t.Fatalf("quality=%d: Encode: %v", quality, err)
		}

		if err := checkCompressedData(enc, input); err != nil {
			t.Errorf("quality=%d: %v", quality, err)
		}
	}
}

func TestEncodeDecodeRamp(t *testing.T) {
	ramp := make([]byte, 256)
	for i := range ramp {
		ramp[i] = byte(i)
	}

	for quality := 0; quality <= 11; quality++ {
		enc, err := Encode(ramp, WriterOptions{Quality: quality})
		if err != nil {
			t.Fatalf("quality=%d: Encode: %v", quality, err)
		}

		if err := checkCompressedData(enc, ramp); err != nil {
			t.Errorf("quality=%d: %v", quality, err)
		}
	}
}

func TestEncodeDecodeRandomSizes(t *testing.T) {
	// A small linear congruential generator keeps the corpus deterministic.
	seed := uint32(0x5DEECE66)
	next := func() byte {
		seed = seed*1664525 + 1013904223
		return byte(seed >> 24)
	}

	sizes := []int{0, 1, 2, 3, 4, 7, 15, 31, 63, 64, 65, 127, 255, 256, 257, 511, 1024, 2048}
	for _, size := range sizes {
		random := make([]byte, size)
		ramp := make([]byte, size)
		for i := range random {
			random[i] = next()
			ramp[i] = byte(i)
		}

		for _, quality := range []int{0, 1, 2, 4, 5, 9, 10, 11} {
			for _, input := range [][]byte{random, ramp} {
				enc, err := Encode(input, WriterOptions{Quality: quality})
				if err != nil {
					t.Fatalf("size=%d quality=%d: Encode: %v", size, quality, err)
				}

				dec, err := Decode(enc)
				if err != nil {
					t.Fatalf("size=%d quality=%d: Decode: %v", size, quality, err)
				}

				if !bytes.Equal(dec, input) {
					t.Errorf("size=%d quality=%d: roundtrip mismatch", size, quality)
				}
			}
		}
	}
}

func TestCompressionRatio(t *testing.T) {
	input := bytes.Repeat([]byte("abcdefghij"), 1000)
	enc, err := Encode(input, WriterOptions{Quality: 5})
	if err != nil {
		t.Fatal(err)
	}

	if err := checkCompressedData(enc, input); err != nil {
		t.Error(err)
	}

	if len(enc) >= len(input)/5 {
		t.Errorf("compressed size %d, want less than %d", len(enc), len(input)/5)
	}
}

func TestEncoderStreams(t *testing.T) {
	// Test that output is streamed.
	// Adjust window size to ensure the encoder outputs at least enough bytes
	// to fill the window.
	const lgWin = 16
	windowSize := int(1 << lgWin)
	input := make([]byte, 8*windowSize)
	out := bytes.Buffer{}
	e := NewWriterOptions(&out, WriterOptions{Quality: 11, LGWin: lgWin})
	halfInput := input[:len(input)/2]
	in := bytes.NewReader(halfInput)

	n, err := io.Copy(e, in)
	if err != nil {
		t.Errorf("Copy Error: %v", err)
	}

	// We do not expect output for every bytes written by the caller, but
	// the encoder must have started to emit metablocks by now.
	if out.Len() == 0 {
		t.Errorf("Output length is 0 after %d bytes written", n)
	}

	if err := e.Close(); err != nil {
		t.Errorf("Close Error after copied %d bytes: %v", n, err)
	}

	if err := checkCompressedData(out.Bytes(), halfInput); err != nil {
		t.Error(err)
	}
}

func TestEncoderFlush(t *testing.T) {
	input := []byte("Hello, World!")
	out := bytes.Buffer{}
	e := NewWriterOptions(&out, WriterOptions{Quality: 5})
	if _, err := e.Write(input); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if out.Len() == 0 {
		t.Fatalf("0 bytes written after Flush()")
	}

	// The flushed output must already decode to the full input.
	decompressed := make([]byte, 1000)
	reader := NewReader(bytes.NewReader(out.Bytes()))
	n, _ := reader.Read(decompressed)
	if !bytes.Equal(decompressed[:n], input) {
		t.Errorf("Decompress after flush: %q, want %q", decompressed[:n], input)
	}

	if err := e.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestStreamingEquivalence(t *testing.T) {
	// For any chunking of the input, the concatenated streaming output must
	// decode to the same bytes as one-shot encoding.
	input := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 500))
	for _, chunkSize := range []int{1, 7, 100, 1 << 12} {
		out := bytes.Buffer{}
		w := NewWriterOptions(&out, WriterOptions{Quality: 5})
		for pos := 0; pos < len(input); pos += chunkSize {
			end := pos + chunkSize
			if end > len(input) {
				end = len(input)
			}

			if _, err := w.Write(input[pos:end]); err != nil {
				t.Fatalf("chunkSize=%d: Write: %v", chunkSize, err)
			}
		}

		if err := w.Close(); err != nil {
			t.Fatalf("chunkSize=%d: Close: %v", chunkSize, err)
		}

		if err := checkCompressedData(out.Bytes(), input); err != nil {
			t.Errorf("chunkSize=%d: %v", chunkSize, err)
		}
	}
}

func TestReader(t *testing.T) {
	content := bytes.Repeat([]byte("hello world!"), 10000)
	encoded, _ := Encode(content, WriterOptions{Quality: 5})
	r := NewReader(bytes.NewReader(encoded))
	var decodedOutput bytes.Buffer
	n, err := io.Copy(&decodedOutput, r)
	if err != nil {
		t.Fatalf("Copy(): n=%v, err=%v", n, err)
	}

	if got := decodedOutput.Bytes(); !bytes.Equal(got, content) {
		t.Errorf(""+
			"Reader output:\n"+
			"%q\n"+
			"want:\n"+
			"<%d bytes>",
			got, len(content))
	}

	if err := r.Reset(bytes.NewReader(encoded)); err != nil {
		t.Errorf("Reset(): %v", err)
	}

	decodedOutput.Reset()
	n, err = io.Copy(&decodedOutput, r)
	if err != nil {
		t.Fatalf("After Reset: Copy(): n=%v, err=%v", n, err)
	}

	if got := decodedOutput.Bytes(); !bytes.Equal(got, content) {
		t.Errorf("After Reset: decoded output mismatch")
	}
}

func TestDecode(t *testing.T) {
	content := bytes.Repeat([]byte("hello world!"), 10000)
	encoded, _ := Encode(content, WriterOptions{Quality: 5})
	decoded, err := Decode(encoded)
	if err != nil {
		t.Errorf("Decode: %v", err)
	}

	if !bytes.Equal(decoded, content) {
		t.Errorf(""+
			"Decode content:\n"+
			"%q\n"+
			"want:\n"+
			"<%d bytes>",
			decoded, len(content))
	}
}

func TestDecodeUncompressedMetaBlock(t *testing.T) {
	// A handcrafted stream: WBITS for window 16 (a single 0 bit), one
	// uncompressed metablock holding "abc", then the empty last metablock.
	var ix uint
	storage := make([]byte, 64)
	writeBits(1, 0, &ix, storage)
	storeUncompressedMetaBlock(true, []byte("abc"), 0, ^uint(0)>>1, 3, &ix, storage)

	decoded, err := Decode(storage[:(ix+7)>>3])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if string(decoded) != "abc" {
		t.Errorf("Decode = %q, want %q", decoded, "abc")
	}
}

func TestDecodeTrivialPrefixStream(t *testing.T) {
	// A handcrafted compressed metablock containing a single insert-only
	// command.
	text := []byte("The quick brown fox jumps over the lazy dog")
	var params encoderParams
	encoderInitParams(&params)

	cmds := []command{makeInsertCommand(uint(len(text)))}
	var ix uint
	storage := make([]byte, 1024)
	writeBits(1, 0, &ix, storage)
	storeMetaBlockTrivial(text, 0, uint(len(text)), ^uint(0)>>1, true, &params, cmds, &ix, storage)

	decoded, err := Decode(storage[:(ix+7)>>3])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !bytes.Equal(decoded, text) {
		t.Errorf("Decode = %q, want %q", decoded, text)
	}
}

func TestDecodeNonZeroPadding(t *testing.T) {
	// ISLAST + ISEMPTY with a non-zero padding bit must be rejected.
	if _, err := Decode([]byte{0x16}); err == nil {
		t.Error("expected padding error, got nil")
	}

	// The same stream with clean padding decodes to an empty output.
	out, err := Decode([]byte{0x06})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(out) != 0 {
		t.Errorf("Decode = %q, want empty", out)
	}
}

func TestDecodeTruncated(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Error("expected error for empty input")
	}

	content := []byte("truncation test payload payload payload")
	encoded, _ := Encode(content, WriterOptions{Quality: 5})
	for _, n := range []int{1, len(encoded) / 2, len(encoded) - 1} {
		if _, err := Decode(encoded[:n]); err == nil {
			t.Errorf("expected error decoding %d of %d bytes", n, len(encoded))
		}
	}
}

func TestDecodedSize(t *testing.T) {
	// Single-metablock streams carry the exact decompressed size. The input
	// must compress: an input that falls back to an uncompressed metablock
	// is followed by a separate empty last metablock.
	content := bytes.Repeat([]byte("Hello, World! "), 10)
	encoded, _ := Encode(content, WriterOptions{Quality: 5})
	size, err := DecodedSize(encoded)
	if err != nil {
		t.Fatalf("DecodedSize: %v", err)
	}

	if size != len(content) {
		t.Errorf("DecodedSize = %d, want %d", size, len(content))
	}

	// The empty stream is a single empty metablock.
	emptyEncoded, _ := Encode(nil, WriterOptions{Quality: 5})
	size, err = DecodedSize(emptyEncoded)
	if err != nil {
		t.Fatalf("DecodedSize(empty): %v", err)
	}

	if size != 0 {
		t.Errorf("DecodedSize(empty) = %d, want 0", size)
	}

	// Multi-metablock streams do not; a flush forces a metablock boundary.
	var buf bytes.Buffer
	w := NewWriterOptions(&buf, WriterOptions{Quality: 5})
	w.Write([]byte("first half, "))
	w.Flush()
	w.Write([]byte("second half"))
	w.Close()

	size, err = DecodedSize(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodedSize(multi): %v", err)
	}

	if size != -1 {
		t.Errorf("DecodedSize(multi) = %d, want -1", size)
	}

	decoded, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode(multi): %v", err)
	}

	if string(decoded) != "first half, second half" {
		t.Errorf("Decode(multi) = %q", decoded)
	}
}

func TestMaxOutputSize(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789"), 100)
	encoded, _ := Encode(content, WriterOptions{Quality: 5})

	if _, err := DecodeWithOptions(encoded, DecoderOptions{MaxOutputSize: len(content) - 1}); err != errOutputTooLarge {
		t.Errorf("MaxOutputSize too small: err=%v, want %v", err, errOutputTooLarge)
	}

	decoded, err := DecodeWithOptions(encoded, DecoderOptions{MaxOutputSize: len(content)})
	if err != nil {
		t.Fatalf("MaxOutputSize exact: %v", err)
	}

	if !bytes.Equal(decoded, content) {
		t.Error("MaxOutputSize exact: decoded mismatch")
	}
}

func TestCompoundDictionaryReference(t *testing.T) {
	// A handcrafted stream whose only command copies the whole attached
	// dictionary chunk from the distance range beyond the window.
	dict := []byte("hello compound dictionary")
	var params encoderParams
	encoderInitParams(&params)

	distanceCode := uint(len(dict)) + numDistanceShortCodes - 1
	cmds := []command{makeCommand(&params.dist, 0, uint(len(dict)), 0, distanceCode)}
	var ix uint
	storage := make([]byte, 1024)
	writeBits(1, 0, &ix, storage)
	storeMetaBlockTrivial(make([]byte, len(dict)), 0, uint(len(dict)), ^uint(0)>>1, true, &params, cmds, &ix, storage)
	compressed := storage[:(ix+7)>>3]

	// Without the dictionary the back-reference is invalid.
	if _, err := Decode(compressed); err == nil {
		t.Error("expected error decoding without the dictionary")
	}

	decoded, err := DecodeWithOptions(compressed, DecoderOptions{CustomDictionary: dict})
	if err != nil {
		t.Fatalf("DecodeWithOptions: %v", err)
	}

	if !bytes.Equal(decoded, dict) {
		t.Errorf("Decode = %q, want %q", decoded, dict)
	}
}

func TestAttachDictionaryAfterRead(t *testing.T) {
	content := []byte("some compressed payload")
	encoded, _ := Encode(content, WriterOptions{Quality: 5})
	r := NewReader(bytes.NewReader(encoded))
	buf := make([]byte, 4)
	r.Read(buf)
	if err := r.AttachDictionary([]byte("late")); err != errDictionaryAfterRead {
		t.Errorf("AttachDictionary after Read: err=%v, want %v", err, errDictionaryAfterRead)
	}
}

func TestSetDictionaryDataSize(t *testing.T) {
	if err := SetDictionaryData(make([]byte, 100)); err != errDictionaryDataSize {
		t.Errorf("SetDictionaryData: err=%v, want %v", err, errDictionaryDataSize)
	}
}

func TestQuality(t *testing.T) {
	// Each quality in the list round-trips and compresses this input to no
	// more bytes than the quality listed before it.
	input := bytes.Repeat([]byte("abcdefghijklmnopqrstuvwxyz "), 500)
	prevSize := 1 << 30
	for _, quality := range []int{0, 5, 11} {
		enc, err := Encode(input, WriterOptions{Quality: quality})
		if err != nil {
			t.Fatalf("quality=%d: %v", quality, err)
		}

		if err := checkCompressedData(enc, input); err != nil {
			t.Fatalf("quality=%d: %v", quality, err)
		}

		if len(enc) > prevSize {
			t.Errorf("quality=%d compressed to %d bytes, worse than lower quality (%d)", quality, len(enc), prevSize)
		}

		prevSize = len(enc)
	}
}

func TestWriterV2(t *testing.T) {
	for level := 0; level < 8; level++ {
		input := bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog. "), 300)
		var buf bytes.Buffer
		w := NewWriterV2(&buf, level)
		if _, err := w.Write(input); err != nil {
			t.Fatalf("level=%d: Write: %v", level, err)
		}

		if err := w.Close(); err != nil {
			t.Fatalf("level=%d: Close: %v", level, err)
		}

		if err := checkCompressedData(buf.Bytes(), input); err != nil {
			t.Errorf("level=%d: %v", level, err)
		}
	}
}

func TestEncodeDecodeLargeRandom(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large input test in short mode")
	}

	s := randomstring.HumanFriendlyString(1 << 20)
	input := []byte(s)
	for _, quality := range []int{5, 11} {
		enc, err := Encode(input, WriterOptions{Quality: quality})
		if err != nil {
			t.Fatalf("quality=%d: Encode: %v", quality, err)
		}

		if err := checkCompressedData(enc, input); err != nil {
			t.Errorf("quality=%d: %v", quality, err)
		}
	}
}

func TestModeFont(t *testing.T) {
	// FONT mode switches the distance alphabet layout (NPOSTFIX=1,
	// NDIRECT=12) at quality >= 4.
	input := bytes.Repeat([]byte{0, 1, 0, 2, 0, 3, 7, 0, 1, 0, 2, 9, 9, 9, 0}, 400)
	for _, quality := range []int{4, 5, 11} {
		enc, err := Encode(input, WriterOptions{Quality: quality, Mode: ModeFont})
		if err != nil {
			t.Fatalf("quality=%d: Encode: %v", quality, err)
		}

		if err := checkCompressedData(enc, input); err != nil {
			t.Errorf("quality=%d: %v", quality, err)
		}
	}
}
