package api

import (
	"fmt"
	"net/http"

	"toeic-web/internal/service"
)

// The passage endpoints are mounted once per scored skill, so each handler
// is built for the exercise service it serves.

type pathPassagesResponse struct {
	Message    string                    `json:"message"`
	PathID     string                    `json:"pathId"`
	PathName   string                    `json:"pathName"`
	Track      string                    `json:"track"`
	SkillFocus *string                   `json:"skillFocus"`
	Topics     *string                   `json:"topics"`
	Total      int                       `json:"total"`
	Data       []*service.PassageSummary `json:"data"`
}

type submitResponse struct {
	Message string `json:"message"`
	*service.SubmitResult
}

type summaryResponse struct {
	Message string `json:"message"`
	*service.Summary
}

func (h *ApiHandler) ListPassages(ex service.ExerciseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		passages, err := ex.List(r.Context())
		if err != nil {
			respondWithServiceError(w, h.log, err)
			return
		}
		respondWithJSON(w, http.StatusOK, withList(fmt.Sprintf("%s passages", ex.Skill()), passages))
	}
}

func (h *ApiHandler) GetPassage(ex service.ExerciseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := ex.Detail(r.Context(), pathVar(r, "id"))
		if err != nil {
			respondWithServiceError(w, h.log, err)
			return
		}
		respondWithJSON(w, http.StatusOK, withData(fmt.Sprintf("%s passage detail", ex.Skill()), detail))
	}
}

func (h *ApiHandler) GetPassagesByPath(ex service.ExerciseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := ex.ByPath(r.Context(), pathVar(r, "pathId"))
		if err != nil {
			respondWithServiceError(w, h.log, err)
			return
		}
		passages := out.Passages
		if passages == nil {
			passages = []*service.PassageSummary{}
		}
		respondWithJSON(w, http.StatusOK, pathPassagesResponse{
			Message:    fmt.Sprintf("%s passages in learning path", ex.Skill()),
			PathID:     out.Path.ID,
			PathName:   out.Path.Name,
			Track:      out.Path.Track,
			SkillFocus: out.Path.SkillFocus,
			Topics:     out.Path.Topics,
			Total:      len(passages),
			Data:       passages,
		})
	}
}

func (h *ApiHandler) CreateQuestion(ex service.ExerciseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.QuestionInput
		if !decodeJSON(w, r, &in) {
			return
		}
		question, err := ex.CreateQuestion(r.Context(), pathVar(r, "id"), in)
		if err != nil {
			respondWithServiceError(w, h.log, err)
			return
		}
		respondWithJSON(w, http.StatusOK, withData("question created", question))
	}
}

func (h *ApiHandler) DeleteQuestion(ex service.ExerciseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ex.DeleteQuestion(r.Context(), pathVar(r, "id"), pathVar(r, "qid")); err != nil {
			respondWithServiceError(w, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *ApiHandler) SubmitPassage(ex service.ExerciseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.SubmitInput
		if !decodeJSON(w, r, &in) {
			return
		}
		result, err := ex.Submit(r.Context(), principal(r).UserID, pathVar(r, "id"), in)
		if err != nil {
			respondWithServiceError(w, h.log, err)
			return
		}
		respondWithJSON(w, http.StatusOK, submitResponse{Message: "submitted", SubmitResult: result})
	}
}

func (h *ApiHandler) GetHistory(ex service.ExerciseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := ex.History(r.Context(), principal(r).UserID)
		if err != nil {
			respondWithServiceError(w, h.log, err)
			return
		}
		message := fmt.Sprintf("%s history", ex.Skill())
		if len(history.Entries) == 0 {
			message = fmt.Sprintf("no %s attempts yet", ex.Skill())
		}
		respondWithJSON(w, http.StatusOK, withList(message, history.Entries))
	}
}

func (h *ApiHandler) GetPassageHistory(ex service.ExerciseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := ex.PassageHistory(r.Context(), principal(r).UserID, pathVar(r, "id"))
		if err != nil {
			respondWithServiceError(w, h.log, err)
			return
		}
		message := fmt.Sprintf("history for '%s'", history.Passage.Title)
		if len(history.Entries) == 0 {
			message = fmt.Sprintf("no attempts yet for '%s'", history.Passage.Title)
		}
		respondWithJSON(w, http.StatusOK, withList(message, history.Entries))
	}
}

func (h *ApiHandler) GetHistorySummary(ex service.ExerciseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := ex.Summary(r.Context(), principal(r).UserID)
		if err != nil {
			respondWithServiceError(w, h.log, err)
			return
		}
		if summary.Entries == nil {
			summary.Entries = []*service.HistoryEntry{}
		}
		message := fmt.Sprintf("%s history summary", ex.Skill())
		if summary.Attempts == 0 {
			message = fmt.Sprintf("no %s attempts yet", ex.Skill())
		}
		respondWithJSON(w, http.StatusOK, summaryResponse{Message: message, Summary: summary})
	}
}
