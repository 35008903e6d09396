package boardhandler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/roster-board/internal/board"
)

type shiftRequest struct {
	DayID   string `json:"dayID" validate:"required"`
	ShiftID string `json:"shiftID" validate:"required"`
}

type assignmentRequest struct {
	DayID        string `json:"dayID" validate:"required"`
	ShiftID      string `json:"shiftID" validate:"required"`
	AssignmentID string `json:"assignmentID" validate:"required"`
}

func (h *Handler) OpenAddEditor(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	var req shiftRequest
	if !h.readValidJSON(w, r, &req) {
		return
	}

	h.viewResponse(w, r, b.OpenAdd(req.DayID, req.ShiftID), "已打开新增排班弹窗", b.View())
}

func (h *Handler) OpenEditEditor(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	var req assignmentRequest
	if !h.readValidJSON(w, r, &req) {
		return
	}

	h.viewResponse(w, r, b.OpenEdit(req.DayID, req.ShiftID, req.AssignmentID), "已打开编辑排班弹窗", b.View())
}

func (h *Handler) SelectEmployee(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	var req struct {
		EmployeeID string `json:"employeeID" validate:"required"`
	}
	if !h.readValidJSON(w, r, &req) {
		return
	}

	h.viewResponse(w, r, b.SelectEmployee(req.EmployeeID), "已选择员工", b.View())
}

func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	var req struct {
		Role string `json:"role" validate:"required"`
	}
	if !h.readValidJSON(w, r, &req) {
		return
	}

	h.viewResponse(w, r, b.SetRole(req.Role), "已选择岗位", b.View())
}

// 开始和结束时间允许暂时是不完整的输入，保存时才会校验格式
func (h *Handler) SetStart(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	var req struct {
		Start string `json:"start"`
	}
	if !h.readValidJSON(w, r, &req) {
		return
	}

	h.viewResponse(w, r, b.SetStart(req.Start), "已设置开始时间", b.View())
}

func (h *Handler) SetEnd(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	var req struct {
		End string `json:"end"`
	}
	if !h.readValidJSON(w, r, &req) {
		return
	}

	h.viewResponse(w, r, b.SetEnd(req.End), "已设置结束时间", b.View())
}

func (h *Handler) SaveEditor(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	id, ok := b.SaveEditor()
	if !ok {
		h.viewResponse(w, r, false, "排班信息不完整", b.View())
		return
	}

	h.saveDraft(r, b)
	h.viewResponse(w, r, true, "保存排班成功", struct {
		AssignmentID string     `json:"assignmentID"`
		Board        board.View `json:"board"`
	}{AssignmentID: id, Board: b.View()})
}

func (h *Handler) CancelEditor(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	b.CancelEditor()
	h.viewResponse(w, r, true, "已关闭弹窗", b.View())
}
