package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const (
	ownerKey ctxKey = iota
	logOwnerKey
)

// logOwner возвращает id пользователя обратно в requestLogger.
type logOwner struct{ id int64 }

// ownerID - id авторизованного пользователя; все запросы /materiais и
// /estoque ограничены им.
func ownerID(ctx context.Context) int64 {
	id, _ := ctx.Value(ownerKey).(int64)
	return id
}

func authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "Token não fornecido")
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "Token mal formatado")
				return
			}
			id, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Token inválido")
				return
			}
			if lo, ok := r.Context().Value(logOwnerKey).(*logOwner); ok {
				lo.id = id
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, id)))
		})
	}
}

// requestLogger пишет строку лога на запрос и наполняет гистограмму задержек.
func requestLogger(log *slog.Logger, m Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lo := &logOwner{}
			r = r.WithContext(context.WithValue(r.Context(), logOwnerKey, lo))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			dur := time.Since(start)
			if m != nil {
				m.ObserveRequest(r.Method, route, status, dur)
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(r.Context(), level, "http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", status,
				"owner_id", lo.id,
				"bytes", ww.BytesWritten(),
				"duration_ms", dur.Milliseconds(),
			)
		})
	}
}
