package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
	"github.com/sysu-ecnc-dev/roster-board/internal/scheduler"
)

// GenerateSchedule 根据经理设置和员工名单自动生成候选班表，结果不会被保存。
// 某个岗位没有员工可以胜任时返回 400，错误信息会原样展示给经理
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetManagerSettings()
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusBadRequest, "经理设置不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	employees, err := h.store.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	parameters := &scheduler.Parameters{
		PopulationSize: h.config.Scheduler.PopulationSize,
		MaxGenerations: h.config.Scheduler.MaxGenerations,
		CrossoverRate:  h.config.Scheduler.CrossoverRate,
		MutationRate:   h.config.Scheduler.MutationRate,
		EliteCount:     h.config.Scheduler.EliteCount,
		FairnessWeight: h.config.Scheduler.FairnessWeight,
	}

	s, err := scheduler.New(parameters, settings, employees)
	if err != nil {
		var infeasible *scheduler.InfeasibleError
		switch {
		case errors.As(err, &infeasible):
			h.errorResponse(w, r, http.StatusBadRequest, infeasible.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	result := s.Schedule()

	// solution 是 JSON 编码后的 Day 数组字符串
	days := result.Days
	if days == nil {
		days = make([]domain.Day, 0)
	}
	solution, err := json.Marshal(days)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, struct {
		Solution string   `json:"solution"`
		Text     []string `json:"text"`
	}{Solution: string(solution), Text: result.Text})
}
