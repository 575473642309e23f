package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"toeic-web/internal/auth"
	"toeic-web/internal/service"
)

// NewRouter mounts every endpoint under /api.
func NewRouter(cfg Config) *mux.Router {
	h := NewApiHandler(cfg)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(RequestLogger(cfg.Log), Recoverer(cfg.Log), Authenticate(cfg.Tokens))

	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", h.RegisterUser).Methods("POST")
	authRouter.HandleFunc("/login", h.LoginUser).Methods("POST")
	authRouter.HandleFunc("/me", require(auth.CapLearner, h.Me)).Methods("GET")

	apiRouter.HandleFunc("/paths", h.GetPaths).Methods("GET")

	lessons := apiRouter.PathPrefix("/lessons").Subrouter()
	lessons.HandleFunc("", h.GetLessons).Methods("GET")
	lessons.HandleFunc("/status", require(auth.CapLearner, h.GetAllLessonStatus)).Methods("GET")
	lessons.HandleFunc("/path/{pathId}", h.GetLessonsByPath).Methods("GET")
	lessons.HandleFunc("/admin", require(auth.CapAdmin, h.CreateLesson)).Methods("POST")
	lessons.HandleFunc("/admin/{id}", require(auth.CapAdmin, h.UpdateLesson)).Methods("PUT")
	lessons.HandleFunc("/admin/{id}", require(auth.CapAdmin, h.DeleteLesson)).Methods("DELETE")
	lessons.HandleFunc("/admin/{id}/videos", require(auth.CapAdmin, h.AddLessonVideo)).Methods("POST")
	lessons.HandleFunc("/{id}/status", require(auth.CapLearner, h.GetLessonStatus)).Methods("GET")
	lessons.HandleFunc("/{id}/progress", require(auth.CapLearner, h.SaveProgress)).Methods("POST")
	lessons.HandleFunc("/{id}", h.GetLesson).Methods("GET")

	mountExercises(apiRouter.PathPrefix("/passages").Subrouter(), h, cfg.Services.Reading)
	mountExercises(apiRouter.PathPrefix("/listening").Subrouter(), h, cfg.Services.Listening)

	writing := apiRouter.PathPrefix("/writing").Subrouter()
	writing.HandleFunc("/history", require(auth.CapLearner, h.GetWritingHistory)).Methods("GET")
	writing.HandleFunc("/{id}/submit", require(auth.CapLearner, h.SubmitWriting)).Methods("POST")
	writing.HandleFunc("/{id}", h.GetWritingPrompt).Methods("GET")

	stats := apiRouter.PathPrefix("/stats").Subrouter()
	stats.HandleFunc("/admin-overview", h.GetAdminOverview).Methods("GET")
	stats.HandleFunc("/users/count", h.GetUserCount).Methods("GET")
	stats.HandleFunc("/lessons/count", h.GetLessonCount).Methods("GET")

	return r
}

// mountExercises registers the passage routes for one skill. The fixed
// history and submit paths come before /{id} so they are not taken as ids.
func mountExercises(s *mux.Router, h *ApiHandler, ex service.ExerciseService) {
	s.HandleFunc("", h.ListPassages(ex)).Methods("GET")
	s.HandleFunc("/", h.ListPassages(ex)).Methods("GET")
	s.HandleFunc("/history/stats/summary", require(auth.CapLearner, h.GetHistorySummary(ex))).Methods("GET")
	s.HandleFunc("/history", require(auth.CapLearner, h.GetHistory(ex))).Methods("GET")
	s.HandleFunc("/history/{id}", require(auth.CapLearner, h.GetPassageHistory(ex))).Methods("GET")
	s.HandleFunc("/submit/{id}", require(auth.CapLearner, h.SubmitPassage(ex))).Methods("POST")
	s.HandleFunc("/path/{pathId}", h.GetPassagesByPath(ex)).Methods("GET")
	s.HandleFunc("/{id}/admin/questions", require(auth.CapAdmin, h.CreateQuestion(ex))).Methods("POST")
	s.HandleFunc("/{id}/admin/questions/{qid}", require(auth.CapAdmin, h.DeleteQuestion(ex))).Methods("DELETE")
	s.HandleFunc("/{id}", h.GetPassage(ex)).Methods("GET")
}
