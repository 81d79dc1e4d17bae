package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"attendance-service/internal/i18n"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs every request with status and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// LocaleMiddleware resolves the request locale (?lang= first, then the
// first Accept-Language tag) and stores it in the context for message
// localisation.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := r.URL.Query().Get("lang")
		if locale == "" {
			if al := r.Header.Get("Accept-Language"); al != "" {
				locale = strings.TrimSpace(strings.SplitN(al, ",", 2)[0])
				if i := strings.IndexByte(locale, '-'); i > 0 {
					locale = locale[:i]
				}
				if i := strings.IndexByte(locale, ';'); i > 0 {
					locale = locale[:i]
				}
			}
		}
		if locale != "" {
			r = r.WithContext(i18n.WithLocale(r.Context(), locale))
		}
		next.ServeHTTP(w, r)
	})
}
