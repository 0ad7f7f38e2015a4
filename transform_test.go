package brotli

import (
	"bytes"
	"testing"
)

func applyTransform(t *testing.T, word string, transformIdx int) []byte {
	t.Helper()
	dst := make([]byte, len(word)+16)
	n := transformDictionaryWord(dst, []byte(word), len(word), getTransforms(), transformIdx)
	return dst[:n]
}

func TestTransformIdentity(t *testing.T) {
	trans := getTransforms()
	idx := int(trans.cutOffTransforms[0])
	if got := applyTransform(t, "hello", idx); string(got) != "hello" {
		t.Errorf("identity transform = %q, want %q", got, "hello")
	}
}

func TestTransformTypes(t *testing.T) {
	trans := getTransforms()
	word := "testing"

	sawUppercaseFirst := false
	sawOmitLast := false
	sawPrefixed := false
	for idx := 0; idx < int(trans.numTransforms); idx++ {
		got := applyTransform(t, word, idx)
		typ := transformType(trans, idx)
		prefix := transformPrefix(trans, idx)
		suffix := transformSuffix(trans, idx)
		prefixLen := int(prefix[0])
		suffixLen := int(suffix[0])

		// The output always carries the declared prefix and suffix.
		if !bytes.HasPrefix(got, prefix[1:1+prefixLen]) {
			t.Errorf("transform %d: output %q lacks prefix %q", idx, got, prefix[1:1+prefixLen])
		}

		if !bytes.HasSuffix(got, suffix[1:1+suffixLen]) {
			t.Errorf("transform %d: output %q lacks suffix %q", idx, got, suffix[1:1+suffixLen])
		}

		body := got[prefixLen : len(got)-suffixLen]
		switch {
		case typ == transformIdentity:
			if string(body) != word {
				t.Errorf("transform %d: body %q, want %q", idx, body, word)
			}

		case typ == transformUppercaseFirst:
			if string(body) != "Testing" {
				t.Errorf("transform %d: body %q, want %q", idx, body, "Testing")
			}
			sawUppercaseFirst = true

		case typ == transformUppercaseAll:
			if string(body) != "TESTING" {
				t.Errorf("transform %d: body %q, want %q", idx, body, "TESTING")
			}

		case typ >= transformOmitLast1 && typ <= transformOmitLast9:
			omit := int(typ)
			if omit < len(word) && string(body) != word[:len(word)-omit] {
				t.Errorf("transform %d: body %q, want %q", idx, body, word[:len(word)-omit])
			}
			sawOmitLast = true

		case typ >= transformOmitFirst1 && typ <= transformOmitFirst9:
			omit := int(typ) - (transformOmitFirst1 - 1)
			if omit < len(word) && string(body) != word[omit:] {
				t.Errorf("transform %d: body %q, want %q", idx, body, word[omit:])
			}
		}

		if prefixLen > 0 {
			sawPrefixed = true
		}
	}

	if !sawUppercaseFirst || !sawOmitLast || !sawPrefixed {
		t.Error("transform table is missing expected transform classes")
	}
}

func TestTransformCount(t *testing.T) {
	trans := getTransforms()
	if trans.numTransforms != 121 {
		t.Errorf("numTransforms = %d, want 121", trans.numTransforms)
	}
}

func TestContextModes(t *testing.T) {
	lsb6 := getContextLUT(contextLSB6)
	msb6 := getContextLUT(contextMSB6)
	for i := 0; i < 256; i++ {
		if got := getContext(byte(i), byte(255-i), lsb6); got != byte(i&0x3F) {
			t.Fatalf("LSB6 context of %d = %d, want %d", i, got, i&0x3F)
		}

		if got := getContext(byte(i), byte(255-i), msb6); got != byte(i>>2) {
			t.Fatalf("MSB6 context of %d = %d, want %d", i, got, i>>2)
		}
	}

	signed := getContextLUT(contextSigned)
	for _, c := range []struct {
		p1, p2 byte
		want   byte
	}{
		{0, 0, 0},
		{1, 0, 1 << 3},
		{255, 255, 7<<3 | 7},
		{16, 64, 2<<3 | 3},
	} {
		if got := getContext(c.p1, c.p2, signed); got != c.want {
			t.Errorf("signed context(%d, %d) = %d, want %d", c.p1, c.p2, got, c.want)
		}
	}

	// UTF8 contexts are bounded by 6 bits and treat vowels and consonants
	// differently.
	utf8 := getContextLUT(contextUTF8)
	if getContext('e', 'h', utf8) == getContext('x', 'h', utf8) {
		t.Error("UTF8 context does not separate vowels from consonants")
	}

	for i := 0; i < 256; i++ {
		for j := 0; j < 256; j += 51 {
			if got := getContext(byte(i), byte(j), utf8); got >= 64 {
				t.Fatalf("UTF8 context(%d, %d) = %d, out of range", i, j, got)
			}
		}
	}
}
