// Package stream chains lazy transformations over
// a sequence of values.
package stream

// Stream is a lazily evaluated sequence of values.
// Next must be called before the first Value. Once
// Next returns false, Error tells whether the stream
// ended or failed.
type Stream interface {
	Next() bool
	// Value returns the current value
	Value() interface{}
	Error() error
}

// Processor derives one stream from another
type Processor func(Stream) Stream

// Pipeline applies processors to source in order.
// nil processors are skipped.
func Pipeline(source Stream, processors ...Processor) Stream {
	for _, processor := range processors {
		if processor != nil {
			source = processor(source)
		}
	}

	return source
}

// Collect drains s and returns every value it produced
func Collect(s Stream) ([]interface{}, error) {
	values := []interface{}{}

	for s.Next() {
		values = append(values, s.Value())
	}

	if err := s.Error(); err != nil {
		return nil, err
	}

	return values, nil
}
