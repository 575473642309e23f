package api

import "net/http"

func (h *ApiHandler) GetAdminOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Stats.AdminOverview(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, overview)
}

func (h *ApiHandler) GetUserCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Stats.UserCount(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, count)
}

func (h *ApiHandler) GetLessonCount(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Stats.LessonCount(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, counts)
}
