package stream

import "go.uber.org/zap"

// Log writes a debug entry with message for every value
// that passes through, numbered from 1, and a final entry
// with the total when the source ends.
func Log(logger *zap.Logger, message string) Processor {
	return func(source Stream) Stream {
		return &loggedStream{Stream: source, logger: logger, message: message}
	}
}

type loggedStream struct {
	Stream
	logger  *zap.Logger
	message string
	count   int
	ended   bool
}

func (s *loggedStream) Next() bool {
	if !s.Stream.Next() {
		if !s.ended {
			s.ended = true
			s.logger.Debug(s.message+" ended", zap.Int("count", s.count), zap.Error(s.Stream.Error()))
		}

		return false
	}

	s.count++
	s.logger.Debug(s.message, zap.Int("n", s.count), zap.Any("value", s.Value()))

	return true
}
