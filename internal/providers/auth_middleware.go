package providers

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const AdminPasswordHeader = "X-Admin-Password"

// AdminAuthMiddleware lets a request through only when it carries the admin
// password in the X-Admin-Password header or the "password" form field.
// Request bodies are capped at maxBody bytes before the form is parsed.
func AdminAuthMiddleware(password string, maxBody int64, logger Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && maxBody > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}

		given := r.Header.Get(AdminPasswordHeader)
		if given == "" && r.Method == http.MethodPost {
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				_ = r.ParseMultipartForm(maxBody)
			}
			given = r.PostFormValue("password")
		}

		if password == "" || subtle.ConstantTimeCompare([]byte(given), []byte(password)) != 1 {
			logger.Warnf(GetLogTypeByRequestType(r.Method), "Rejected admin request %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
