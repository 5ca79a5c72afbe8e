package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers to responses and records request metrics.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "X-Merge-Job, X-Merge-Pages, X-Page-Count")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next(rw, r)
		duration := time.Since(start)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, http.StatusText(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration.Seconds())
	}
}

// rateLimitMiddleware enforces per-client request rates and daily quotas.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil {
			next(w, r)
			return
		}

		var size int64
		if r.ContentLength > 0 {
			size = r.ContentLength
		}

		if err := s.rateLimiter.CheckRateLimit(getClientIP(r), size); err != nil {
			s.handleRateLimitError(w, err)
			return
		}
		next(w, r)
	}
}

// handleRateLimitError writes a 429 with headers describing the exceeded limit.
func (s *Server) handleRateLimitError(w http.ResponseWriter, err error) {
	var rateErr *RateLimitError
	var quotaErr *QuotaExceededError

	switch {
	case errors.As(err, &rateErr):
		rateLimitHits.WithLabelValues(rateErr.Type).Inc()
		w.Header().Set("X-RateLimit-Type", rateErr.Type)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rateErr.Limit))
		w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rateErr.RetryAfter.Seconds()))
		s.writeErrorResponse(w, rateErr.Error(), http.StatusTooManyRequests)
	case errors.As(err, &quotaErr):
		rateLimitHits.WithLabelValues(quotaErr.Type).Inc()
		w.Header().Set("X-Quota-Type", quotaErr.Type)
		w.Header().Set("X-Quota-Limit", strconv.FormatInt(quotaErr.Limit, 10))
		w.Header().Set("X-Quota-Used", strconv.FormatInt(quotaErr.Used, 10))
		w.Header().Set("X-Quota-Resets", quotaErr.Resets.UTC().Format(http.TimeFormat))
		s.writeErrorResponse(w, quotaErr.Error(), http.StatusTooManyRequests)
	default:
		s.writeErrorResponse(w, "Rate limiting check failed", http.StatusInternalServerError)
	}
}

// getClientIP extracts the client IP address from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
