package boardhandler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/roster-board/internal/web"
)

// readValidJSON 解析并校验请求体，失败时已经写好了响应
func (h *Handler) readValidJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := web.ReadJSON(r, v); err != nil {
		h.badRequest(w, r, err)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		h.badRequest(w, r, err)
		return false
	}
	return true
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	if err := web.WriteJSON(w, status, resp); err != nil {
		web.LogInternalServerError(r, err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeResponse(w, r, status, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusBadRequest, web.Message(err, h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	web.LogInternalServerError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, "服务器内部错误")
}

// viewResponse 返回排班板的最新状态。ok 为 false 表示这次事件没有产生任何效果
func (h *Handler) viewResponse(w http.ResponseWriter, r *http.Request, ok bool, msg string, data any) {
	h.writeResponse(w, r, http.StatusOK, Response{
		Success: ok,
		Message: msg,
		Data:    data,
	})
}
