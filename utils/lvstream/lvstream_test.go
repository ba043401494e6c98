package lvstream_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/kvbucket/utils/lvstream"
)

func encoder(values [][]byte) (*lvstream.Encoder, *bool) {
	cleanedUp := false

	return lvstream.NewEncoder(func() ([]byte, error) {
		if len(values) == 0 {
			return nil, io.EOF
		}

		next := values[0]
		values = values[1:]

		return next, nil
	}, func() {
		cleanedUp = true
	}), &cleanedUp
}

// smallWriter forces the decoder to see the stream
// a few bytes at a time
type smallWriter struct {
	w    io.Writer
	size int
}

func (writer smallWriter) Write(p []byte) (int, error) {
	n := 0

	for len(p) > 0 {
		c := writer.size

		if c > len(p) {
			c = len(p)
		}

		m, err := writer.w.Write(p[:c])
		n += m

		if err != nil {
			return n, err
		}

		p = p[c:]
	}

	return n, nil
}

func TestLVStream(t *testing.T) {
	testCases := map[string]struct {
		values    [][]byte
		chunkSize int
	}{
		"empty": {
			values:    [][]byte{},
			chunkSize: 1024,
		},
		"single-byte-writes": {
			values:    [][]byte{[]byte("a"), []byte("bc"), []byte("def")},
			chunkSize: 1,
		},
		"three-byte-writes": {
			values:    [][]byte{[]byte("hello"), []byte("world")},
			chunkSize: 3,
		},
		"zero-length-values": {
			values:    [][]byte{{}, []byte("x"), {}, {}},
			chunkSize: 2,
		},
		"large-value": {
			values:    [][]byte{bytes.Repeat([]byte("z"), 100000), []byte("tail")},
			chunkSize: 4096,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			output := [][]byte{}
			enc, cleanedUp := encoder(testCase.values)
			dec := lvstream.NewDecoder(func(value []byte) error {
				output = append(output, value)

				return nil
			})

			if _, err := io.Copy(smallWriter{dec, testCase.chunkSize}, enc); err != nil {
				t.Fatalf("expected no error, got %#v", err)
			}

			if err := dec.Close(); err != nil {
				t.Fatalf("expected no error, got %#v", err)
			}

			if !*cleanedUp {
				t.Fatal("expected cleanup to be called")
			}

			if diff := cmp.Diff(testCase.values, output); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestDecoderTruncated(t *testing.T) {
	var buf bytes.Buffer

	enc, _ := encoder([][]byte{[]byte("abcdef")})

	if _, err := io.Copy(&buf, enc); err != nil {
		t.Fatalf("expected no error, got %#v", err)
	}

	dec := lvstream.NewDecoder(func(value []byte) error { return nil })

	if _, err := dec.Write(buf.Bytes()[:buf.Len()-2]); err != nil {
		t.Fatalf("expected no error, got %#v", err)
	}

	if err := dec.Close(); !errors.Is(err, lvstream.ErrTruncated) {
		t.Fatalf("expected %#v, got %#v", lvstream.ErrTruncated, err)
	}
}

func TestDecoderTooLarge(t *testing.T) {
	dec := lvstream.NewDecoder(func(value []byte) error { return nil })

	if _, err := dec.Write([]byte{0xff, 0xff, 0xff, 0xff}); err == nil {
		t.Fatal("expected an error for an oversized frame")
	}
}

func TestDecoderCallbackError(t *testing.T) {
	fail := errors.New("rejected")
	enc, _ := encoder([][]byte{[]byte("a"), []byte("b")})
	dec := lvstream.NewDecoder(func(value []byte) error { return fail })

	if _, err := io.Copy(dec, enc); !errors.Is(err, fail) {
		t.Fatalf("expected %#v, got %#v", fail, err)
	}

	if err := dec.Close(); !errors.Is(err, fail) {
		t.Fatalf("expected %#v, got %#v", fail, err)
	}
}

func TestEncoderClose(t *testing.T) {
	enc, cleanedUp := encoder([][]byte{[]byte("a")})

	if err := enc.Close(); err != nil {
		t.Fatalf("expected no error, got %#v", err)
	}

	if !*cleanedUp {
		t.Fatal("expected cleanup to be called")
	}

	if _, err := enc.Read(make([]byte, 8)); !errors.Is(err, lvstream.ErrClosed) {
		t.Fatalf("expected %#v, got %#v", lvstream.ErrClosed, err)
	}
}
