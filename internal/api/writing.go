package api

import (
	"net/http"

	"toeic-web/internal/service"
)

func (h *ApiHandler) GetWritingPrompt(w http.ResponseWriter, r *http.Request) {
	prompt, err := h.svc.Writing.Prompt(r.Context(), pathVar(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, withData("writing prompt", prompt))
}

func (h *ApiHandler) SubmitWriting(w http.ResponseWriter, r *http.Request) {
	var in service.WritingSubmitInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sub, err := h.svc.Writing.Submit(r.Context(), principal(r).UserID, pathVar(r, "id"), in)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, withData("writing submitted", sub))
}

func (h *ApiHandler) GetWritingHistory(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.Writing.History(r.Context(), principal(r).UserID)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	message := "writing history"
	if len(subs) == 0 {
		message = "no writing submissions yet"
	}
	respondWithJSON(w, http.StatusOK, withList(message, subs))
}
