package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
	apperrors "tms/pkg/errors"
)

// deadlineWriter serializes the handler and the deadline; whichever writes
// the header first owns the response.
type deadlineWriter struct {
	http.ResponseWriter
	mu          sync.Mutex
	expired     bool
	wroteHeader bool
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired || dw.wroteHeader {
		return
	}
	dw.wroteHeader = true
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	dw.wroteHeader = true
	return dw.ResponseWriter.Write(b)
}

// expire claims the response for the timeout answer. It reports false when
// the handler already started writing.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	dw.expired = true
	return !dw.wroteHeader
}

// RequestTimeout bounds a request by d. The handler keeps running until it
// observes ctx.Done; repositories and transactions do.
func RequestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			dw := &deadlineWriter{ResponseWriter: w}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(dw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case p := <-panicked:
				// Re-raise on the serving goroutine so Recovery sees it.
				panic(p)
			case <-ctx.Done():
				if dw.expire() {
					writeError(w, http.StatusServiceUnavailable, apperrors.CodeUnavailable, "Request timeout")
				}
			}
		})
	}
}
