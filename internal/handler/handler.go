package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/roster-board/internal/config"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
	"github.com/sysu-ecnc-dev/roster-board/internal/session"
	"github.com/sysu-ecnc-dev/roster-board/internal/web"
)

// Store 是班表存储，*repository.Repository 实现了这个接口
type Store interface {
	GetManagerSettings() (*domain.ManagerSettings, error)
	GetAllEmployees() ([]*domain.Employee, error)
	GetAllSchedules() ([]*domain.Schedule, error)
	CreateSchedule(s *domain.Schedule) error
	ReplaceScheduleDays(id string, days []domain.Day) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev domain.ScheduleEvent) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	store      Store
	translator ut.Translator
	events     EventPublisher

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, store Store, events EventPublisher) (*Handler, error) {
	validate, trans, err := web.NewValidator()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		store:      store,
		translator: trans,
		events:     events,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(middleware.RequestID)
	h.Mux.Use(web.Logger)
	h.Mux.Use(web.Recoverer(h.errorResponse))

	h.Mux.Route("/api", func(r chi.Router) {
		r.Use(web.Auth([]byte(h.config.JWT.Secret), h.errorResponse))

		r.Get("/manager-settings/", h.GetManagerSettings)
		r.Get("/user/employees", h.GetAllEmployees)

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/all", h.GetAllSchedules)
			r.With(h.RequiredRole([]session.Role{session.RoleManager})).Post("/add", h.CreateSchedule)
			r.With(h.RequiredRole([]session.Role{session.RoleManager})).Put("/update/{id}", h.UpdateSchedule)
		})

		r.With(h.RequiredRole([]session.Role{session.RoleManager})).Get("/csp/generate-schedule", h.GenerateSchedule)
	})
}
