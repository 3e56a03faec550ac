package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// errReadTimeout means the deadline passed without the response finishing.
var errReadTimeout = errors.New("timeout waiting for response")

// stream accumulates shell output in the background so reads never block
// the caller past its deadline.
type stream struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	err    error // terminal read error, io.EOF when the channel closed
	notify chan struct{}
}

func newStream(r io.Reader) *stream {
	s := &stream{notify: make(chan struct{}, 1)}
	go s.pump(r)
	return s
}

func (s *stream) pump(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)

		s.mu.Lock()
		if n > 0 {
			s.buf.Write(buf[:n])
		}
		if err != nil {
			s.err = err
		}
		s.mu.Unlock()

		select {
		case s.notify <- struct{}{}:
		default:
		}

		if err != nil {
			return
		}
	}
}

// discard drops buffered output, such as unsolicited events.
func (s *stream) discard() {
	s.mu.Lock()
	s.buf.Reset()
	s.mu.Unlock()
}

// closed reports whether the underlying reader has failed.
func (s *stream) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err != nil
}

func (s *stream) snapshot() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String(), s.err
}

// take consumes the first n buffered bytes.
func (s *stream) take(n int) {
	s.mu.Lock()
	s.buf.Next(n)
	s.mu.Unlock()
}

// collect waits for output and returns it once done reports completion, the
// output has been quiet for idle, or timeout elapses (errReadTimeout). A nil
// done and zero idle wait for the full timeout.
func (s *stream) collect(ctx context.Context, timeout, idle time.Duration, done func(string) (bool, error)) (string, error) {
	deadline := time.Now().Add(timeout)

	for {
		data, readErr := s.snapshot()

		if done != nil {
			finished, err := done(data)
			if err != nil {
				s.take(len(data))
				return data, err
			}
			if finished {
				s.take(len(data))
				return data, nil
			}
		}
		if readErr != nil {
			s.take(len(data))
			return data, readErr
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			s.take(len(data))
			return data, errReadTimeout
		}
		quiet := idle > 0 && data != "" && idle < wait
		if quiet {
			wait = idle
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-s.notify:
			timer.Stop()
		case <-timer.C:
			if quiet {
				if current, _ := s.snapshot(); len(current) == len(data) {
					s.take(len(data))
					return data, nil
				}
			}
		}
	}
}
