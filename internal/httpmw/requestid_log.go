package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/agentext/simhost/internal/logging"
	"github.com/agentext/simhost/internal/metrics"
)

// RequestIDHeader is the header a caller may supply to correlate a request
// end-to-end; when absent the server mints one.
const RequestIDHeader = "X-Request-ID"

var requestLogOut = os.Stderr

// RequestID attaches a request id to the context and echoes it back on the
// response, minting a new uuid when the caller didn't supply one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		ctx := logging.WithRequestID(r.Context(), reqID)
		w.Header().Set(RequestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusWriter captures the status code written so logging middleware can
// observe it after the handler runs.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Hijack forwards to the underlying ResponseWriter when it supports
// hijacking.
func (sw *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := sw.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, fmt.Errorf("response writer does not support hijacking")
}

// StructuredLog logs each request as one JSON line and records it in the
// metrics registry: requests_received, per-endpoint counter, errors, and
// latency.
func StructuredLog(extension string, reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := logging.FromContext(r.Context())

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			duration := time.Since(start)
			errMsg := ""
			if sw.status >= 400 {
				errMsg = http.StatusText(sw.status)
			}
			logging.RequestLog(requestLogOut, reqID, extension, r.Method, r.URL.Path, sw.status, duration, errMsg)

			if reg != nil {
				reg.IncRequestsReceived()
				reg.IncEndpoint(r.Method + " " + r.URL.Path)
				reg.ObserveLatency(float64(duration.Microseconds()) / 1000.0)
				if sw.status >= 500 {
					reg.IncErrors()
				}
			}
		})
	}
}
