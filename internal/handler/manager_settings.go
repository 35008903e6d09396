package handler

import (
	"database/sql"
	"errors"
	"net/http"
)

func (h *Handler) GetManagerSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetManagerSettings()
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusNotFound, "经理设置不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.writeJSON(w, r, http.StatusOK, settings)
}
