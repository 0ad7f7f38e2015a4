package brotli

import (
	"errors"
	"io"
)

type decodeError int

func (err decodeError) Error() string {
	return "brotli: " + decoderErrorString(int(err))
}

var errExcessiveInput = errors.New("brotli: excessive input")
var errInvalidState = errors.New("brotli: invalid state")
var errOutputTooLarge = errors.New("brotli: decoded output exceeds size limit")
var errDictionaryAfterRead = errors.New("brotli: dictionary attached after decoding started")

// readBufSize is a "good" buffer size that avoids excessive calls to the
// source reader but doesn't waste too much memory on buffering.
// It is arbitrarily chosen to be equal to the constant used in io.Copy.
const readBufSize = 32 * 1024

// NewReader creates a new Reader reading the given reader.
func NewReader(src io.Reader) *Reader {
	r := new(Reader)
	r.Reset(src)
	return r
}

// Reset discards the Reader's state and makes it equivalent to the result
// of its original state from NewReader, but reading from src instead.
// This permits reusing a Reader rather than allocating a new one.
// Error is always nil.
func (r *Reader) Reset(src io.Reader) error {
	if r.errorCode < 0 {
		// There was an unrecoverable error, leaving the Reader's state
		// undefined. Clear out everything but the buffer.
		*r = Reader{buf: r.buf}
	}

	decoderStateInit(r)
	r.src = src
	if r.buf == nil {
		r.buf = make([]byte, readBufSize)
	}
	r.compoundDict = compoundDictionary{}
	return nil
}

// AttachDictionary attaches a compound-dictionary chunk to the Reader.
// Back-references into the attached bytes occupy the distance range just
// beyond the sliding window. Up to 15 chunks may be attached, all before the
// first call to Read.
func (r *Reader) AttachDictionary(chunk []byte) error {
	if r.state != stateUninited || r.bufferLength != 0 {
		return errDictionaryAfterRead
	}

	return attachCompoundDictionary(&r.compoundDict, chunk)
}

func (r *Reader) Read(p []byte) (n int, err error) {
	if !decoderHasMoreOutput(r) && len(r.in) == 0 {
		m, readErr := r.src.Read(r.buf)
		if m == 0 {
			// If readErr is `nil`, we just proxy underlying stream behavior.
			return 0, readErr
		}
		r.in = r.buf[:m]
	}

	if len(p) == 0 {
		return 0, nil
	}

	for {
		var written uint
		in_len := uint(len(r.in))
		out_len := uint(len(p))
		in_remaining := in_len
		out_remaining := out_len
		status := decoderDecompressStream(r, &in_remaining, &r.in, &out_remaining, &p)
		written = out_len - out_remaining
		n = int(written)

		switch status {
		case decoderResultSuccess:
			if len(r.in) > 0 {
				return n, errExcessiveInput
			}
			return n, nil
		case decoderResultError:
			return n, decodeError(decoderGetErrorCode(r))
		case decoderResultOutputRequired:
			if n == 0 {
				return 0, io.ErrShortBuffer
			}
			return n, nil
		case decoderInputRequired:
		}

		if len(r.in) != 0 {
			return 0, errInvalidState
		}

		// Calling r.src.Read may block. Don't block if we have data to return.
		if n > 0 {
			return n, nil
		}

		// Top off the buffer.
		encN, err := r.src.Read(r.buf)
		if encN == 0 {
			// Not enough data to complete decoding.
			if err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		r.in = r.buf[:encN]
	}
}

// DecoderOptions configures one-shot decoding.
type DecoderOptions struct {
	// MaxOutputSize limits the size of the decoded output. Decoding fails
	// with an error as soon as the output would grow beyond it.
	// Zero means no limit.
	MaxOutputSize int
	// CustomDictionary is attached as a compound-dictionary chunk before
	// decoding starts.
	CustomDictionary []byte
	// LargeWindow enables the large-window extension (window bits up to 30).
	LargeWindow bool
}

// Decode decodes a complete Brotli-compressed stream held in memory.
func Decode(data []byte) ([]byte, error) {
	return DecodeWithOptions(data, DecoderOptions{})
}

// DecodeWithOptions is like Decode with explicit decoder options.
func DecodeWithOptions(data []byte, opts DecoderOptions) ([]byte, error) {
	var s = new(Reader)
	decoderStateInit(s)
	s.largeWindow = opts.LargeWindow
	if opts.CustomDictionary != nil {
		if err := attachCompoundDictionary(&s.compoundDict, opts.CustomDictionary); err != nil {
			return nil, err
		}
	}

	if opts.MaxOutputSize > 0 {
		// Cheap pre-check: for single-metablock streams the header names the
		// exact output size.
		if size, status := decoderGetDecodedSize(data); status == decoderSuccess && size > opts.MaxOutputSize {
			return nil, errOutputTooLarge
		}
	}

	var out []byte
	buf := make([]byte, readBufSize)
	availableIn := uint(len(data))
	nextIn := data
	for {
		availableOut := uint(len(buf))
		nextOut := buf
		status := decoderDecompressStream(s, &availableIn, &nextIn, &availableOut, &nextOut)
		out = append(out, buf[:uint(len(buf))-availableOut]...)
		if opts.MaxOutputSize > 0 && len(out) > opts.MaxOutputSize {
			return nil, errOutputTooLarge
		}

		switch status {
		case decoderResultSuccess:
			if availableIn != 0 {
				return nil, errExcessiveInput
			}
			return out, nil
		case decoderResultOutputRequired:
		case decoderResultInputRequired:
			return nil, io.ErrUnexpectedEOF
		default:
			return nil, decodeError(decoderGetErrorCode(s))
		}
	}
}

// DecodedSize returns the decompressed size of a stream without decoding it.
// The size is only present in the header of single-metablock streams; -1 is
// returned when the stream has more than one metablock or starts with a
// metadata block.
func DecodedSize(data []byte) (int, error) {
	size, status := decoderGetDecodedSize(data)
	switch status {
	case decoderSuccess:
		return size, nil
	case decoderInputRequired:
		return 0, io.ErrUnexpectedEOF
	default:
		return 0, decodeError(status)
	}
}
