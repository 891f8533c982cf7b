package transportcore

import (
	"net/http"
)

// ResponseWriter records the status code and whether the header has been
// sent, so later stages can tell if a response is already under way.
type ResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	bytes       int
}

// Track wraps w in a ResponseWriter. A w that is already tracking is
// returned as is.
func Track(w http.ResponseWriter) *ResponseWriter {
	if tw, ok := w.(*ResponseWriter); ok {
		return tw
	}
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// HeaderWritten reports whether w is a tracking writer whose header has been sent.
func HeaderWritten(w http.ResponseWriter) bool {
	tw, ok := w.(*ResponseWriter)
	return ok && tw.wroteHeader
}

// WriteHeader records code and forwards it once.
func (rw *ResponseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write sends an implicit 200 header on first use.
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Status returns the status code sent, or 200 if none was sent yet.
func (rw *ResponseWriter) Status() int { return rw.status }

// Written reports whether the header has been sent.
func (rw *ResponseWriter) Written() bool { return rw.wroteHeader }

// BytesWritten returns the number of body bytes written.
func (rw *ResponseWriter) BytesWritten() int { return rw.bytes }

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *ResponseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
