// Package lvstream converts between a sequence of byte
// slices and a byte stream where every slice is framed by
// its length.
//
//	msg,msg,msg -> [length|msg|length|msg...]
//	[length|msg|length|msg...] -> msg,msg,msg
//
// Lengths are 4 byte big-endian unsigned integers.
package lvstream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

const lengthSize = 4

// MaxValueSize is the largest value a Decoder accepts (10 MB)
var MaxValueSize = 10 * 1024 * 1024

var (
	// ErrClosed is returned by reads and writes after Close
	ErrClosed = errors.New("Closed")
	// ErrTruncated is returned by Decoder.Close if the stream
	// ended in the middle of a frame
	ErrTruncated = errors.New("Stream ended in the middle of a frame")
)

var _ io.ReadCloser = (*Encoder)(nil)

// Encoder is an io.Reader that frames the values
// returned by nextValue. nextValue returns io.EOF
// to end the stream.
type Encoder struct {
	nextValue func() ([]byte, error)
	cleanup   func()
	isLength  bool
	length    []byte
	value     []byte
	chunk     []byte
	err       error
}

// NewEncoder creates an Encoder. cleanup, if not nil, is
// called once when the stream ends or the encoder is closed.
func NewEncoder(nextValue func() ([]byte, error), cleanup func()) *Encoder {
	return &Encoder{
		length:    make([]byte, lengthSize),
		nextValue: nextValue,
		cleanup:   cleanup,
	}
}

// Read implements io.Reader
func (encoder *Encoder) Read(p []byte) (int, error) {
	if encoder.err != nil {
		return 0, encoder.err
	}

	n := 0

	for len(p) > 0 {
		if len(encoder.chunk) == 0 {
			if encoder.isLength {
				encoder.isLength = false
				encoder.chunk = encoder.value

				continue
			}

			value, err := encoder.nextValue()

			if err != nil {
				encoder.close(err)

				return n, encoder.err
			}

			if len(value) > MaxValueSize {
				encoder.close(fmt.Errorf("Value length is too large: %d > max(%d)", len(value), MaxValueSize))

				return n, encoder.err
			}

			encoder.isLength = true
			encoder.value = value
			binary.BigEndian.PutUint32(encoder.length, uint32(len(value)))
			encoder.chunk = encoder.length
		}

		c := copy(p, encoder.chunk)
		encoder.chunk = encoder.chunk[c:]
		p = p[c:]
		n += c
	}

	return n, nil
}

func (encoder *Encoder) close(err error) {
	if encoder.err != nil {
		return
	}

	encoder.err = err

	if encoder.cleanup != nil {
		encoder.cleanup()
	}
}

// Close implements io.Closer
func (encoder *Encoder) Close() error {
	encoder.close(ErrClosed)

	return nil
}

var _ io.WriteCloser = (*Decoder)(nil)

// Decoder is an io.Writer that splits the framed stream
// written to it and passes every value to nextValue.
// Each value is a new slice that nextValue may keep.
type Decoder struct {
	nextValue func([]byte) error
	isLength  bool
	chunkSize int
	chunk     []byte
	mu        sync.Mutex
	err       error
}

// NewDecoder creates a Decoder
func NewDecoder(nextValue func([]byte) error) *Decoder {
	return &Decoder{
		chunkSize: lengthSize,
		chunk:     make([]byte, 0, lengthSize),
		isLength:  true,
		nextValue: nextValue,
	}
}

// Write implements io.Writer
func (decoder *Decoder) Write(p []byte) (int, error) {
	decoder.mu.Lock()
	defer decoder.mu.Unlock()

	if decoder.err != nil {
		return 0, decoder.err
	}

	n := len(p)

	for {
		// zero length values complete without any input
		for len(decoder.chunk) == decoder.chunkSize {
			if err := decoder.complete(); err != nil {
				decoder.err = err

				return 0, err
			}
		}

		if len(p) == 0 {
			break
		}

		c := min(decoder.chunkSize-len(decoder.chunk), len(p))
		decoder.chunk = append(decoder.chunk, p[:c]...)
		p = p[c:]
	}

	return n, nil
}

// complete handles a chunk that has been filled
func (decoder *Decoder) complete() error {
	if decoder.isLength {
		length := binary.BigEndian.Uint32(decoder.chunk)

		if uint64(length) > uint64(MaxValueSize) {
			return fmt.Errorf("Encoded value length is too large: %d > max(%d)", length, MaxValueSize)
		}

		decoder.chunkSize = int(length)
		decoder.chunk = make([]byte, 0, decoder.chunkSize)
		decoder.isLength = false

		return nil
	}

	if err := decoder.nextValue(decoder.chunk); err != nil {
		return err
	}

	decoder.chunkSize = lengthSize
	decoder.chunk = make([]byte, 0, lengthSize)
	decoder.isLength = true

	return nil
}

// Close implements io.Closer. It returns ErrTruncated if
// the bytes written so far end inside a frame.
func (decoder *Decoder) Close() error {
	decoder.mu.Lock()
	defer decoder.mu.Unlock()

	if decoder.err != nil {
		if decoder.err == ErrClosed {
			return nil
		}

		return decoder.err
	}

	if !decoder.isLength || len(decoder.chunk) > 0 {
		decoder.err = ErrTruncated

		return decoder.err
	}

	decoder.err = ErrClosed

	return nil
}

func min(a, b int) int {
	if a > b {
		return b
	}

	return a
}
