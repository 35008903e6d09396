package boardhandler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sysu-ecnc-dev/roster-board/internal/board"
	"github.com/sysu-ecnc-dev/roster-board/internal/session"
)

type boardCtxKey struct{}

// board 找到当前会话的排班板，令牌变化时（重新登录）会创建新的排班板
func (h *Handler) board(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		if !ok {
			h.errorResponse(w, r, http.StatusUnauthorized, "用户未登录")
			return
		}

		ctx := context.WithValue(r.Context(), boardCtxKey{}, h.boardFor(s))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) boardFor(s *session.Session) *board.Board {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.boards[s.Subject]; ok && e.token == s.Token {
		return e.board
	}

	b := board.New(h.backend(s.Token), board.Options{
		AllowEdit:      s.IsManager(),
		HistoryEnabled: h.config.Board.HistoryEnabled,
	}, slog.Default().With("subject", s.Subject))
	h.boards[s.Subject] = &entry{board: b, token: s.Token}

	return b
}

func boardFromContext(ctx context.Context) *board.Board {
	return ctx.Value(boardCtxKey{}).(*board.Board)
}
