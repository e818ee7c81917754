package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/campus-market/internal/session"
)

// userSinkKey carries a pointer the session middleware fills so the request
// logger can report who made the request.
type userSinkKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Logging logs method, path, status, duration and the session user, if any.
// It must wrap Session to see the user.
func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			var userID int64
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), userSinkKey{}, &userID)))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			}
			if userID != 0 {
				fields = append(fields, zap.Int64("user_id", userID))
			}
			if rec.status >= http.StatusInternalServerError {
				log.Warn("request", fields...)
				return
			}
			log.Info("request", fields...)
		})
	}
}

// Session resolves the signed session cookie and stores the principal in the
// request context. Missing, tampered or expired sessions leave the request
// anonymous.
func Session(mgr *session.Manager, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := mgr.FromRequest(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := mgr.Resolve(r.Context(), id)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					log.Error("resolve session failed", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}
			if sink, ok := r.Context().Value(userSinkKey{}).(*int64); ok {
				*sink = userID
			}
			next.ServeHTTP(w, r.WithContext(session.WithPrincipal(r.Context(), id, userID)))
		})
	}
}
