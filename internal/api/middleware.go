package api

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"toeic-web/internal/auth"
	"toeic-web/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// requestData is filled in as the request travels down the middleware chain
// and read back by RequestLogger once the handler returns.
type requestData struct {
	RequestID string
	UserID    string
}

type requestDataKey struct{}

func withRequestData(ctx context.Context, rd *requestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func getRequestData(ctx context.Context) *requestData {
	rd, _ := ctx.Value(requestDataKey{}).(*requestData)
	return rd
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// RequestLogger tags every request with an id and logs method, route template,
// status and duration once the handler is done.
func RequestLogger(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rd := &requestData{RequestID: strings.TrimSpace(r.Header.Get(requestIDHeader))}
			if rd.RequestID == "" {
				rd.RequestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, rd.RequestID)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(withRequestData(r.Context(), rd)))

			if log == nil {
				return
			}
			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					path = tpl
				}
			}

			fields := []interface{}{
				"method", strings.ToUpper(r.Method),
				"path", path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", rd.RequestID,
			}
			if rd.UserID != "" {
				fields = append(fields, "user_id", rd.UserID)
			}

			switch {
			case status >= 500:
				log.Error("HTTP request", fields...)
			case status >= 400:
				log.Warn("HTTP request", fields...)
			default:
				log.Info("HTTP request", fields...)
			}
		})
	}
}

// Recoverer turns a handler panic into a 500 instead of a dropped connection.
func Recoverer(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic in handler", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
					respondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate resolves the bearer token into an auth.Principal. Requests
// without an Authorization header continue as anonymous; a header that is
// present but malformed, invalid or expired is rejected.
func Authenticate(tokens *auth.Tokens) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			headerParts := strings.Fields(authHeader)
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "Bearer") {
				respondWithError(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			principal, err := tokens.Parse(headerParts[1])
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					respondWithError(w, http.StatusUnauthorized, "token has expired")
				} else {
					respondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if rd := getRequestData(r.Context()); rd != nil {
				rd.UserID = principal.UserID
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// require guards a handler with a capability check against the caller.
func require(c auth.Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.Authorize(auth.FromContext(r.Context()), c); err != nil {
			respondWithServiceError(w, nil, err)
			return
		}
		next(w, r)
	}
}
