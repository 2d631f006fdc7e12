package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"carpool/internal/mylogger"
	"carpool/internal/observability"
)

// Observability wraps handlers with panic recovery, prometheus metrics
// and an access log line per request.
type Observability struct {
	log mylogger.Logger
}

func NewObservability(log mylogger.Logger) *Observability {
	return &Observability{log: log}
}

func (o *Observability) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if rec := recover(); rec != nil {
				o.log.Error("panic recovered", errFromRecover(rec), "path", r.URL.Path)
				http.Error(ww, "internal error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(ww, r)

		route := routeTemplate(r)
		status := strconv.Itoa(ww.status)

		observability.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		observability.HTTPRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())

		o.log.Info("http_request",
			"method", r.Method,
			"route", route,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", remoteIP(r),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (r *responseWriter) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func routeTemplate(r *http.Request) string {
	if current := mux.CurrentRoute(r); current != nil {
		if tmpl, err := current.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}

func remoteIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		parts := strings.Split(ip, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type recoveredPanic struct{ v any }

func (p recoveredPanic) Error() string { return fmt.Sprintf("panic: %v", p.v) }

func errFromRecover(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return recoveredPanic{v: rec}
}
