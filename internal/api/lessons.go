package api

import (
	"net/http"

	"toeic-web/internal/models"
	"toeic-web/internal/service"
)

type pathLessonsResponse struct {
	Message    string                `json:"message"`
	PathID     string                `json:"pathId"`
	PathName   string                `json:"pathName"`
	Track      string                `json:"track"`
	Level      string                `json:"level"`
	SkillFocus *string               `json:"skillFocus"`
	Topics     *string               `json:"topics"`
	Total      int                   `json:"total"`
	Data       []*service.LessonView `json:"data"`
}

type progressRequest struct {
	Completed bool `json:"completed"`
}

func (h *ApiHandler) GetLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.svc.Lessons.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, withList("lessons", lessons))
}

func (h *ApiHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Lessons.Detail(r.Context(), pathVar(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, withData("lesson detail", view))
}

// GetLessonsByPath is public; completion flags are filled in when the caller is signed in.
func (h *ApiHandler) GetLessonsByPath(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Lessons.ByPath(r.Context(), pathVar(r, "pathId"), principal(r).UserID)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	lessons := out.Lessons
	if lessons == nil {
		lessons = []*service.LessonView{}
	}
	respondWithJSON(w, http.StatusOK, pathLessonsResponse{
		Message:    "lessons in learning path",
		PathID:     out.Path.ID,
		PathName:   out.Path.Name,
		Track:      out.Path.Track,
		Level:      out.Path.Level,
		SkillFocus: out.Path.SkillFocus,
		Topics:     out.Path.Topics,
		Total:      len(lessons),
		Data:       lessons,
	})
}

func (h *ApiHandler) GetLessonStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Lessons.Status(r.Context(), pathVar(r, "id"), principal(r).UserID)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, withData("lesson status", view))
}

func (h *ApiHandler) GetAllLessonStatus(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.Lessons.AllStatus(r.Context(), principal(r).UserID)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, withList("lesson status", views))
}

func (h *ApiHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var in service.CreateLessonInput
	if !decodeJSON(w, r, &in) {
		return
	}
	view, err := h.svc.Lessons.Create(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, withData("lesson created", view))
}

func (h *ApiHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateLessonInput
	if !decodeJSON(w, r, &in) {
		return
	}
	view, err := h.svc.Lessons.Update(r.Context(), pathVar(r, "id"), in)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, withData("lesson updated", view))
}

func (h *ApiHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id := pathVar(r, "id")
	if err := h.svc.Lessons.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "lesson " + id + " deleted"})
}

func (h *ApiHandler) AddLessonVideo(w http.ResponseWriter, r *http.Request) {
	var in service.VideoInput
	if !decodeJSON(w, r, &in) {
		return
	}
	video, err := h.svc.Lessons.AddVideo(r.Context(), pathVar(r, "id"), in)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, withData("video added", video))
}

// SaveProgress records the caller's progress on a lesson.
func (h *ApiHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	progress, err := h.svc.Lessons.SaveProgress(r.Context(), principal(r).UserID, pathVar(r, "id"), req.Completed)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	message := "progress saved"
	if progress.Status == models.ProgressCompleted {
		message = "lesson completed"
	}
	respondWithJSON(w, http.StatusOK, withData(message, progress))
}
