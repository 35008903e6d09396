package boardhandler

import (
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/roster-board/internal/board"
	"github.com/sysu-ecnc-dev/roster-board/internal/config"
	"github.com/sysu-ecnc-dev/roster-board/internal/draftstore"
	"github.com/sysu-ecnc-dev/roster-board/internal/web"
)

// BackendFactory 为某个会话创建携带其令牌的远程服务
type BackendFactory func(token string) board.Backend

type entry struct {
	board *board.Board
	token string
}

// Handler 为每个登录的用户维护一个排班板，每个 HTTP 请求对应排班板上的一次 UI 事件
type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	translator ut.Translator
	backend    BackendFactory
	drafts     draftstore.Store

	mu     sync.Mutex
	boards map[string]*entry // subject -> 排班板

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, backend BackendFactory, drafts draftstore.Store) (*Handler, error) {
	validate, trans, err := web.NewValidator()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		translator: trans,
		backend:    backend,
		drafts:     drafts,
		boards:     make(map[string]*entry),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(middleware.RequestID)
	h.Mux.Use(middleware.RealIP)
	h.Mux.Use(web.Logger)
	h.Mux.Use(web.Recoverer(h.errorResponse))

	h.Mux.Group(func(r chi.Router) {
		r.Use(web.Auth([]byte(h.config.JWT.Secret), h.errorResponse))

		r.Post("/session/sign-out", h.SignOut)

		r.Route("/board", func(r chi.Router) {
			r.Use(h.board)

			r.Get("/", h.GetBoard)
			r.Post("/load", h.LoadBoard)
			r.Post("/edit-mode", h.ToggleEditMode)
			r.Post("/drag", h.DragEnd)
			r.Delete("/assignments/{dayID}/{shiftID}/{assignmentID}", h.RemoveAssignment)
			r.Delete("/notices/{id}", h.DismissNotice)

			r.Route("/history", func(r chi.Router) {
				r.Post("/back", h.HistoryBack)
				r.Post("/forward", h.HistoryForward)
				r.Post("/latest", h.HistoryLatest)
			})

			r.Route("/editor", func(r chi.Router) {
				r.Post("/add", h.OpenAddEditor)
				r.Post("/edit", h.OpenEditEditor)
				r.Post("/employee", h.SelectEmployee)
				r.Post("/role", h.SetRole)
				r.Post("/start", h.SetStart)
				r.Post("/end", h.SetEnd)
				r.Post("/save", h.SaveEditor)
				r.Post("/cancel", h.CancelEditor)
			})

			r.Post("/generate", h.Generate)
			r.Post("/publish", h.PublishCandidate)
			r.Delete("/candidate", h.DiscardCandidate)
		})
	})
}
