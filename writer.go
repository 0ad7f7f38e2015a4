package brotli

import (
	"bytes"
	"errors"
	"io"

	"github.com/packbit/brotli/matchfinder"
)

// Mode selects the compression mode: a hint about the nature of the input.
type Mode int

const (
	// ModeGeneric is the default; no assumptions about the input.
	ModeGeneric Mode = iota
	// ModeText tunes the encoder for UTF-8 formatted text input.
	ModeText
	// ModeFont tunes the encoder for WOFF 2.0 font data.
	ModeFont
)

// WriterOptions configures Writer.
type WriterOptions struct {
	// Quality controls the compression-speed vs compression-density trade-offs.
	// The higher the quality, the slower the compression. Range is 0 to 11.
	// 0 frames the input into uncompressed metablocks; 1 is the fast
	// single-pass compressor.
	Quality int
	// LGWin is the base 2 logarithm of the sliding window size.
	// Range is 10 to 24. 0 selects the default window of 22 bits.
	LGWin int
	// Mode is the compression mode.
	Mode Mode
}

var (
	errEncode       = errors.New("brotli: encode error")
	errWriterClosed = errors.New("brotli: Writer is closed")
)

// NewWriter initializes new Writer instance.
// Close MUST be called to free resources.
func NewWriter(dst io.Writer) *Writer {
	return NewWriterLevel(dst, defaultQuality)
}

// NewWriterLevel initializes new Writer instance with specified quality level.
// Close MUST be called to free resources.
func NewWriterLevel(dst io.Writer, level int) *Writer {
	return NewWriterOptions(dst, WriterOptions{Quality: level})
}

// NewWriterOptions initializes new Writer instance with specified options.
// Close MUST be called to free resources.
func NewWriterOptions(dst io.Writer, options WriterOptions) *Writer {
	w := new(Writer)
	w.options = options
	w.Reset(dst)
	return w
}

// Reset discards the Writer's state and makes it equivalent to the result of
// its original state from NewWriter or NewWriterLevel, but writing to dst
// instead. This permits reusing a Writer rather than allocating a new one.
func (w *Writer) Reset(dst io.Writer) {
	w.initState()
	w.params.quality = w.options.Quality
	if w.options.LGWin > 0 {
		w.params.lgwin = uint(w.options.LGWin)
	}
	w.params.mode = int(w.options.Mode)
	w.dst = dst
	w.err = nil
}

func (w *Writer) writeChunk(p []byte, op int) (n int, err error) {
	if w.dst == nil {
		return 0, errWriterClosed
	}

	if w.err != nil {
		return 0, w.err
	}

	for {
		availableIn := uint(len(p))
		nextIn := p
		success := w.compressStream(op, &availableIn, &nextIn)
		bytesConsumed := len(p) - int(availableIn)
		p = p[bytesConsumed:]
		n += bytesConsumed
		if !success {
			return n, errEncode
		}

		if len(p) == 0 || w.err != nil {
			return n, w.err
		}
	}
}

// Flush outputs encoded data for all input provided to Write. The resulting
// output can be decoded to match all input before Flush, but the stream is
// not yet complete until after Close.
// Flush has a negative impact on compression.
func (w *Writer) Flush() error {
	_, err := w.writeChunk(nil, operationFlush)
	return err
}

// Close flushes remaining data to the decorated writer.
func (w *Writer) Close() error {
	// If stream is already closed, it is reported by `writeChunk`.
	_, err := w.writeChunk(nil, operationFinish)
	w.dst = nil
	return err
}

// Write implements io.Writer. Flush or Close must be called to ensure that the
// encoded bytes are actually flushed to the underlying Writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	return w.writeChunk(p, operationProcess)
}

// Encode compresses a complete buffer into a Brotli stream in one shot.
func Encode(data []byte, options WriterOptions) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriterOptions(&buf, options)
	_, err := w.Write(data)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	return buf.Bytes(), err
}

// NewWriterV2 is like NewWriterLevel, but uses the new implementation based on
// the matchfinder package. Lower levels use the greedy parser, higher levels
// the lazy hash-chain parser with a deeper search.
func NewWriterV2(dst io.Writer, level int) *matchfinder.Writer {
	var mf matchfinder.MatchFinder
	if level < 4 {
		mf = &matchfinder.Greedy{}
	} else {
		depth := 1 << uint(level-2)
		if depth > 256 {
			depth = 256
		}

		mf = &matchfinder.HashChain{Depth: depth}
	}

	return &matchfinder.Writer{
		Dest:        dst,
		MatchFinder: mf,
		Encoder:     &FastEncoder{},
		BlockSize:   1 << 16,
	}
}
