package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type contextKey string

// LocaleKey is the context key for the negotiated locale.
const LocaleKey = contextKey("locale")

// LocalhostOnly rejects requests that don't originate from localhost.
// The admin surface has no authentication of its own, so it must never be
// reachable from the network.
func LocalhostOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isLocalhost(r) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isLocalhost(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if host == "127.0.0.1" || host == "::1" || host == "localhost" {
		return true
	}

	// Trust X-Forwarded-For only when the first hop is localhost
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			firstIP := strings.TrimSpace(ips[0])
			if firstIP == "127.0.0.1" || firstIP == "::1" {
				return true
			}
		}
	}

	return false
}

// Locale injects the negotiated locale into the request context. The match
// function is supplied by the i18n package; a ?lang= query parameter takes
// precedence over Accept-Language.
func Locale(match func(acceptLanguage string) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accept := r.Header.Get("Accept-Language")
			if q := r.URL.Query().Get("lang"); q != "" {
				accept = q
			}

			ctx := context.WithValue(r.Context(), LocaleKey, match(accept))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLocale extracts the locale from the context. Returns "ko" (the site
// default) if no locale was negotiated.
func GetLocale(ctx context.Context) string {
	if ctx == nil {
		return "ko"
	}
	if locale, ok := ctx.Value(LocaleKey).(string); ok {
		return locale
	}
	return "ko"
}

// DefaultStack applies the default middleware stack to a router.
func DefaultStack(r chi.Router) {
	r.Use(LocalhostOnly)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
}
