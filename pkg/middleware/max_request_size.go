package middleware

import "net/http"

// MaxRequestSize caps request bodies at maxBytes. Paths listed in
// overrides carry their own cap, so the upload relay can accept
// multipart bodies larger than the general JSON limit. Oversized reads
// without a Content-Length fail inside the handler's decoder with a
// *http.MaxBytesError rather than up front, so streaming endpoints
// still work.
func MaxRequestSize(maxBytes int64, overrides map[string]int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := maxBytes
			if n, ok := overrides[r.URL.Path]; ok {
				limit = n
			}

			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(`{"error":"Request body too large"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
