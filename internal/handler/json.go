package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/roster-board/internal/web"
)

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := web.WriteJSON(w, status, v); err != nil {
		web.LogInternalServerError(r, err)
	}
}

// 班表存储直接返回资源本身，出错时返回 {"error": "..."} 以及非 2xx 状态码
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, ErrorResponse{Error: msg})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusBadRequest, web.Message(err, h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	web.LogInternalServerError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, "服务器内部错误")
}
