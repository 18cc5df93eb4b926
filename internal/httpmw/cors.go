package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/agentext/simhost/internal/config"
)

// CORS builds the cross-origin wrapper from the loaded HTTPConfig and the
// extension's configured allowed origins: OPTIONS requests
// get a 200 with the configured allow-origin/methods/headers, a max-age,
// and `Vary: Origin`.
func CORS(allowedOrigins []string, httpCfg config.HTTPConfig) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   httpCfg.CORS.AllowMethods,
		AllowedHeaders:   httpCfg.CORS.AllowHeaders,
		MaxAge:           httpCfg.CORS.MaxAgeSec,
		AllowCredentials: false,
		// rs/cors answers preflights with 204 unless told otherwise.
		OptionsSuccessStatus: http.StatusOK,
	})
	return c.Handler
}

// WriteVaryOrigin adds `Vary: Origin`; SecureHeaders calls it so the
// header is present on every response, not only the ones rs/cors itself
// rewrites.
func WriteVaryOrigin(w http.ResponseWriter) {
	w.Header().Add("Vary", "Origin")
}
