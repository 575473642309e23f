package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"toeic-web/internal/apierr"
	"toeic-web/internal/auth"
	"toeic-web/internal/logger"
	"toeic-web/internal/service"
)

const maxBodyBytes = 1 << 20

// ApiHandler holds the services the HTTP endpoints call into.
type ApiHandler struct {
	svc *service.Services
	log *logger.Logger
}

func NewApiHandler(cfg Config) *ApiHandler {
	return &ApiHandler{svc: cfg.Services, log: cfg.Log.With("component", "api")}
}

// envelope is the success body shared by every endpoint.
type envelope struct {
	Message string `json:"message,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Data    any    `json:"data"`
}

func withData(message string, data any) envelope {
	return envelope{Message: message, Data: data}
}

func withList[T any](message string, items []T) envelope {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return envelope{Message: message, Total: &n, Data: items}
}

// errorBody is what clients get on failure. Error carries the cause of internal failures only.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func statusFor(kind apierr.Kind) int {
	switch kind {
	case apierr.KindNotFound:
		return http.StatusNotFound
	case apierr.KindValidation:
		return http.StatusBadRequest
	case apierr.KindUnauthorized:
		return http.StatusUnauthorized
	case apierr.KindForbidden:
		return http.StatusForbidden
	case apierr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError maps a service error onto its status code.
func respondWithServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	var e *apierr.Error
	if !errors.As(err, &e) {
		e = apierr.Internal("internal server error", err)
	}
	code := statusFor(e.Kind)
	body := errorBody{Message: e.Message}
	if body.Message == "" {
		body.Message = http.StatusText(code)
	}
	if code >= http.StatusInternalServerError {
		if e.Err != nil {
			body.Error = e.Err.Error()
		}
		if log != nil {
			log.Error("request failed", "error", err)
		}
	}
	respondWithJSON(w, code, body)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorBody{Message: message})
}

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	respondWithError(w, http.StatusBadRequest, "invalid request payload")
	return false
}

func principal(r *http.Request) auth.Principal {
	return auth.FromContext(r.Context())
}

func (h *ApiHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.svc.Accounts.Register(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, withData("user registered successfully", user))
}

func (h *ApiHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}
	session, err := h.svc.Accounts.Login(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

func (h *ApiHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Accounts.Me(r.Context(), principal(r).UserID)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, withData("", user))
}

func (h *ApiHandler) GetPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := h.svc.Lessons.Paths(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, withList("learning paths", paths))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}
