package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
	"github.com/sysu-ecnc-dev/roster-board/internal/events"
	"github.com/sysu-ecnc-dev/roster-board/internal/session"
	"github.com/sysu-ecnc-dev/roster-board/internal/utils"
	"github.com/sysu-ecnc-dev/roster-board/internal/web"
)

// pgerrcode invalid_text_representation，id 不是合法的 uuid 时返回
const pgInvalidTextRepresentation = "22P02"

type scheduleRequest struct {
	Days []struct {
		ID     string `json:"id" validate:"required"`
		Name   string `json:"name" validate:"required"`
		Shifts []struct {
			ID        string `json:"id" validate:"required"`
			Time      string `json:"time" validate:"required"`
			Color     string `json:"color"`
			Employees []struct {
				ID    string `json:"id" validate:"required"`
				Name  string `json:"name" validate:"required"`
				Role  string `json:"role"`
				Hours string `json:"hours"`
			} `json:"employees" validate:"dive"`
		} `json:"shifts" validate:"dive"`
	} `json:"days" validate:"required,dive"`
}

// toDays 把请求转换为 Day 树，shortages 只用于展示，不会被存储
func (req *scheduleRequest) toDays() []domain.Day {
	days := make([]domain.Day, len(req.Days))
	for i, d := range req.Days {
		days[i] = domain.Day{ID: d.ID, Name: d.Name, Shifts: make([]domain.Shift, len(d.Shifts))}
		for j, s := range d.Shifts {
			shift := domain.Shift{
				ID:          s.ID,
				Time:        s.Time,
				Color:       s.Color,
				Assignments: make([]domain.Assignment, len(s.Employees)),
			}
			for k, e := range s.Employees {
				shift.Assignments[k] = domain.Assignment{ID: e.ID, Employee: e.Name, Role: e.Role, Hours: e.Hours}
			}
			days[i].Shifts[j] = shift
		}
	}
	return days
}

func (h *Handler) readScheduleRequest(w http.ResponseWriter, r *http.Request) ([]domain.Day, bool) {
	var req scheduleRequest
	if err := web.ReadJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	days := req.toDays()
	if err := utils.ValidateDays(days); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	return days, true
}

func (h *Handler) GetAllSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.store.GetAllSchedules()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, schedules)
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	days, ok := h.readScheduleRequest(w, r)
	if !ok {
		return
	}

	s := &domain.Schedule{Days: days}
	if err := h.store.CreateSchedule(s); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.publishEvent(r, domain.ScheduleEventPublished, s.ID, days)

	h.writeJSON(w, r, http.StatusCreated, struct {
		ID string `json:"_id"`
	}{ID: s.ID})
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	days, ok := h.readScheduleRequest(w, r)
	if !ok {
		return
	}

	if err := h.store.ReplaceScheduleDays(id, days); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusNotFound, "班表不存在")
		case errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation:
			h.errorResponse(w, r, http.StatusNotFound, "班表不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.publishEvent(r, domain.ScheduleEventUpdated, id, days)

	h.writeJSON(w, r, http.StatusOK, struct {
		ID string `json:"_id"`
	}{ID: id})
}

// publishEvent 在写入成功之后发送事件，发送失败只记录日志，不影响本次写入的结果
func (h *Handler) publishEvent(r *http.Request, kind, scheduleID string, days []domain.Day) {
	if h.events == nil {
		return
	}

	actor := ""
	if s, ok := session.FromContext(r.Context()); ok {
		actor = s.Subject
	}

	ev := events.NewScheduleEvent(kind, scheduleID, actor, days)
	if err := h.events.Publish(context.WithoutCancel(r.Context()), ev); err != nil {
		slog.Error("无法发送班表事件", "type", kind, "schedule", scheduleID, "error", err)
	}
}
