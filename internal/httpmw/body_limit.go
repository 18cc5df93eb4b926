package middleware

import "net/http"

// DefaultMaxBodyBytes caps POST bodies at 512KB; scene-batch and keyframe
// payloads are small JSON objects, so a generous flat cap is enough to stop
// a misbehaving client from holding a connection open on a giant body.
const DefaultMaxBodyBytes = 512 * 1024

// MaxBodySize limits request bodies to maxBytes. Every non-nil body is
// wrapped, whatever the method; an empty GET/HEAD body reads EOF at once.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
