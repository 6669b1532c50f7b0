package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/metron/internal/models"
)

// ListHistory handles GET /api/history.
//
//	@Summary		List the signed-in user's conversions, newest first
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Max records (default 50, max 500)"
//	@Success		200		{object}	HistoryResponse
//	@Failure		401		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sess := SessionFromContext(r.Context())
	items, err := h.conv.History(r.Context(), sess.UserID, limit)
	if err != nil {
		writeError(w, r, "list history", err)
		return
	}
	if items == nil {
		items = []models.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Items: items})
}

// SaveHistory handles POST /api/history.
//
//	@Summary		Convert and save the result to history
//	@Tags			history
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ConvertRequest	true	"Conversion to save"
//	@Success		201		{object}	models.HistoryRecord
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history [post]
func (h *Handler) SaveHistory(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "save history", err)
		return
	}
	sess := SessionFromContext(r.Context())
	rec, err := h.conv.SaveConversion(r.Context(), sess.UserID, req.engineRequest())
	if err != nil {
		writeError(w, r, "save history", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// DeleteHistory handles DELETE /api/history/{id}.
//
//	@Summary		Delete one of the signed-in user's records
//	@Tags			history
//	@Param			id	path	string	true	"Record id"
//	@Success		204	"Record deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history/{id} [delete]
func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if err := h.conv.DeleteHistory(r.Context(), sess.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, "delete history", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Events handles GET /api/events.
//
//	@Summary		Stream the signed-in user's history and session events
//	@Tags			events
//	@Produce		text/event-stream
//	@Success		200	"SSE stream"
//	@Security		BearerAuth
//	@Router			/events [get]
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	h.events.ServeUser(w, r, SessionFromContext(r.Context()).UserID)
}
