package stream_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/kvbucket/utils/stream"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func ints(n int) stream.Stream {
	return &intStream{n: n}
}

type intStream struct {
	n   int
	v   int
	err error
}

func (stream *intStream) Next() bool {
	if stream.v < stream.n {
		stream.v++

		return true
	}

	return false
}

func (stream *intStream) Value() interface{} {
	return stream.v
}

func (stream *intStream) Error() error {
	return stream.err
}

func record(record *[]int) stream.Processor {
	*record = []int{}

	return func(stream stream.Stream) stream.Stream {
		return &streamRecorder{stream, record}
	}
}

type streamRecorder struct {
	stream.Stream
	record *[]int
}

func (stream *streamRecorder) Next() bool {
	if !stream.Stream.Next() {
		return false
	}

	*stream.record = append(*stream.record, stream.Value().(int))

	return true
}

func Drain(stream stream.Stream) {
	for stream.Next() {
	}
}

func TestLimit(t *testing.T) {
	testCases := map[string]struct {
		n        int
		limit    int
		expected []int
	}{
		"under-limit": {n: 3, limit: 5, expected: []int{1, 2, 3}},
		"at-limit":    {n: 3, limit: 3, expected: []int{1, 2, 3}},
		"over-limit":  {n: 10, limit: 2, expected: []int{1, 2}},
		"no-limit":    {n: 4, limit: 0, expected: []int{1, 2, 3, 4}},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			output := []int{}
			Drain(stream.Pipeline(ints(testCase.n), stream.Limit(testCase.limit), record(&output)))

			if diff := cmp.Diff(testCase.expected, output); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestLimitStopsReadingSource(t *testing.T) {
	input := []int{}
	Drain(stream.Pipeline(ints(100), record(&input), stream.Limit(3)))

	if diff := cmp.Diff([]int{1, 2, 3}, input); diff != "" {
		t.Fatal(diff)
	}
}

func TestPipelineSkipsNilProcessors(t *testing.T) {
	output := []int{}
	Drain(stream.Pipeline(ints(2), nil, record(&output), nil))

	if diff := cmp.Diff([]int{1, 2}, output); diff != "" {
		t.Fatal(diff)
	}
}

func TestCollect(t *testing.T) {
	values, err := stream.Collect(stream.Pipeline(ints(5), stream.Limit(3)))

	if err != nil {
		t.Fatalf("expected no error, got %#v", err)
	}

	if diff := cmp.Diff([]interface{}{1, 2, 3}, values); diff != "" {
		t.Fatal(diff)
	}

	if _, err := stream.Collect(&intStream{n: 1, err: errors.New("broken")}); err == nil {
		t.Fatal("expected the source error")
	}
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	source := &intStream{n: 2, err: errors.New("broken")}
	s := stream.Pipeline(source, stream.Log(zap.New(core), "int"))
	Drain(s)

	if s.Error() == nil {
		t.Fatal("expected the source error to pass through")
	}

	entries := logs.AllUntimed()

	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}

	if entries[1].Message != "int" || entries[1].ContextMap()["n"] != int64(2) {
		t.Fatalf("unexpected entry %#v", entries[1])
	}

	if entries[2].Message != "int ended" || entries[2].ContextMap()["count"] != int64(2) {
		t.Fatalf("unexpected entry %#v", entries[2])
	}

	// a drained stream only reports its end once
	s.Next()

	if logs.Len() != 3 {
		t.Fatalf("expected 3 log entries, got %d", logs.Len())
	}
}
