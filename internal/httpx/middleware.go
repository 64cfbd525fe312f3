// internal/httpx/middleware.go
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"

	"local.dev/oshi-engine/internal/blob"
	"local.dev/oshi-engine/internal/config"
	"local.dev/oshi-engine/internal/engine"
)

type ctxKey string

const uidKey ctxKey = "uid"

// TokenVerifier checks Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type AppCtx struct {
	Engine     *engine.Engine
	AuthClient TokenVerifier
	Paths      config.Paths
	// NoAuth lets every request act as UserID without a token.
	NoAuth bool
	// UserID owns the engine. A verified token must resolve to it.
	UserID string
	Logger *slog.Logger
}

func (app *AppCtx) logger() *slog.Logger {
	if app.Logger == nil {
		return slog.Default()
	}
	return app.Logger
}

// pickKey prefers the lower-cased email over the uid.
func pickKey(email, uid string) string {
	e := strings.TrimSpace(strings.ToLower(email))
	u := strings.TrimSpace(uid)
	if e != "" {
		return e
	}
	return u
}

func currentUID(r *http.Request) string {
	if v := r.Context().Value(uidKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func WithAuth(app *AppCtx, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.NoAuth {
			ctx := context.WithValue(r.Context(), uidKey, app.UserID)
			next(w, r.WithContext(ctx))
			return
		}

		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") || app.AuthClient == nil {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		idToken := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		tok, err := app.AuthClient.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
			return
		}
		email, _ := tok.Claims["email"].(string)
		key := pickKey(email, tok.UID)
		if key != app.UserID && tok.UID != app.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), uidKey, key)
		next(w, r.WithContext(ctx))
	}
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// WithLogging logs one line per request.
func WithLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"took", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

// statusOf maps engine and blob errors onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, engine.ErrNameRequired),
		errors.Is(err, engine.ErrInvalidCompanion),
		errors.Is(err, engine.ErrEmptyPost),
		errors.Is(err, engine.ErrEmptyMessage),
		errors.Is(err, engine.ErrNotCompanionPost),
		errors.Is(err, engine.ErrUnknownTick),
		errors.Is(err, blob.ErrImageEncoding):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrCompanionNotFound),
		errors.Is(err, engine.ErrPostNotFound),
		errors.Is(err, engine.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrTickSkipped):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNoBlobStore):
		return http.StatusNotImplemented
	case errors.Is(err, engine.ErrSyncFailed):
		return http.StatusAccepted
	}
	return http.StatusInternalServerError
}

func writeError(app *AppCtx, w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		app.logger().Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeResult writes v, or v with a sync warning when only persisting
// failed. Other errors replace v.
func writeResult(app *AppCtx, w http.ResponseWriter, status int, v any, err error) {
	switch {
	case err == nil:
		writeJSON(w, status, v)
	case errors.Is(err, engine.ErrSyncFailed):
		app.logger().Warn("applied locally, persist failed", "error", err)
		writeJSON(w, http.StatusAccepted, map[string]any{"data": v, "warning": err.Error()})
	default:
		writeError(app, w, err)
	}
}
