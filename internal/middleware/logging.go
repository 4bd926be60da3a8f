// internal/middleware/logging.go

package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware is an HTTP middleware that logs incoming requests using
// Logrus. It wraps the WebSocket mux; for an upgraded connection the logged
// duration spans the whole session.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP request")
		})
	}
}

// LogConnect records a client attaching over either transport.
func LogConnect(logger *logrus.Logger, transport, remote string) {
	logger.WithFields(logrus.Fields{
		"transport": transport,
		"remote":    remote,
	}).Info("client connected")
}

// LogDisconnect records a client detaching. err is nil for a clean close.
func LogDisconnect(logger *logrus.Logger, transport, remote string, err error) {
	fields := logrus.Fields{
		"transport": transport,
		"remote":    remote,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("client disconnected")
}
