package aliasserver

import "net/http"

// URILengthLimit returns middleware that answers 414 when the request URI is
// maxLength characters or longer. This reproduces the server-side rejection
// that alias-aware clients fall back from by creating an alias.
func URILengthLimit(maxLength int) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.RequestURI()) >= maxLength {
				writeError(w, http.StatusRequestURITooLong, "request URI too long")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
