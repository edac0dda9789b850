package http

import (
	"errors"
	"net/http"
)

// streamWriter sends the response headers on the first write. With flush
// set every write is pushed to the client right away.
type streamWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	flush   bool
	prepare func(http.Header)

	written   int64
	committed bool
}

func newStreamWriter(w http.ResponseWriter, flush bool, prepare func(http.Header)) *streamWriter {
	return &streamWriter{
		w:       w,
		rc:      http.NewResponseController(w),
		flush:   flush,
		prepare: prepare,
	}
}

func (s *streamWriter) Write(p []byte) (int, error) {
	s.commit()

	n, err := s.w.Write(p)
	s.written += int64(n)
	if err != nil {
		return n, err
	}

	if s.flush {
		if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return n, err
		}
	}
	return n, nil
}

// commit writes the headers once
func (s *streamWriter) commit() {
	if s.committed {
		return
	}
	s.committed = true
	s.prepare(s.w.Header())
	s.w.WriteHeader(http.StatusOK)
}

func (s *streamWriter) started() bool {
	return s.committed
}
