package boardhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/roster-board/internal/board"
	"github.com/sysu-ecnc-dev/roster-board/internal/draftstore"
	"github.com/sysu-ecnc-dev/roster-board/internal/session"
)

// syncContext 限制一次远程同步的时间
func (h *Handler) syncContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), time.Duration(h.config.Board.SyncTimeout)*time.Second)
}

// saveDraft 在编辑模式下把草稿写入草稿存储，使得刷新页面或服务重启后还能恢复
func (h *Handler) saveDraft(r *http.Request, b *board.Board) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return
	}
	draft := b.Draft()
	if draft == nil {
		return
	}
	if err := h.drafts.Save(r.Context(), s.Subject, draft); err != nil {
		slog.Warn("无法保存草稿", "subject", s.Subject, "error", err)
	}
}

func (h *Handler) dropDraft(r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return
	}
	if err := h.drafts.Delete(r.Context(), s.Subject); err != nil {
		slog.Warn("无法删除草稿", "subject", s.Subject, "error", err)
	}
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())
	h.viewResponse(w, r, true, "获取排班板成功", b.View())
}

func (h *Handler) LoadBoard(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	ctx, cancel := h.syncContext(r)
	defer cancel()

	if err := b.Load(ctx); err != nil {
		h.viewResponse(w, r, false, "加载排班数据失败", b.View())
		return
	}

	s, _ := session.FromContext(r.Context())
	draft, err := h.drafts.Load(r.Context(), s.Subject)
	switch {
	case err == nil:
		if !b.ResumeDraft(draft) {
			// 草稿对应的版本已经不是最新版本，不再恢复
			h.dropDraft(r)
		}
	case errors.Is(err, draftstore.ErrNotFound):
	default:
		slog.Warn("无法读取草稿", "subject", s.Subject, "error", err)
	}

	h.viewResponse(w, r, true, "加载排班数据成功", b.View())
}

func (h *Handler) ToggleEditMode(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	if b.Mode() == board.ViewMode {
		if err := b.ToggleEditMode(r.Context()); err != nil {
			h.internalServerError(w, r, err)
			return
		}
		ok := b.Mode() == board.EditMode
		if ok {
			h.saveDraft(r, b)
		}
		h.viewResponse(w, r, ok, "已进入编辑模式", b.View())
		return
	}

	ctx, cancel := h.syncContext(r)
	defer cancel()

	if err := b.ToggleEditMode(ctx); err != nil {
		// 草稿保留在排班板和草稿存储中，提示已经记录在排班板上
		h.viewResponse(w, r, false, "同步班表失败", b.View())
		return
	}
	if b.Mode() == board.EditMode {
		// 上一次保存还没有返回，草稿仍然保留
		h.viewResponse(w, r, false, "上一次保存还没有完成", b.View())
		return
	}

	h.dropDraft(r)
	h.viewResponse(w, r, true, "已退出编辑模式", b.View())
}

func (h *Handler) DragEnd(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	var req board.DragResult
	if !h.readValidJSON(w, r, &req) {
		return
	}

	changed := b.DragEnd(req)
	if changed {
		h.saveDraft(r, b)
	}
	h.viewResponse(w, r, changed, "拖拽已处理", b.View())
}

func (h *Handler) RemoveAssignment(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	changed := b.RemoveAssignment(
		chi.URLParam(r, "dayID"),
		chi.URLParam(r, "shiftID"),
		chi.URLParam(r, "assignmentID"),
	)
	if changed {
		h.saveDraft(r, b)
	}
	h.viewResponse(w, r, changed, "删除排班成功", b.View())
}

func (h *Handler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "提示ID无效")
		return
	}

	h.viewResponse(w, r, b.Dismiss(id), "提示已关闭", b.View())
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request, move func(*board.Board) bool) {
	b := boardFromContext(r.Context())

	moved := move(b)
	if moved {
		// 切换版本会丢弃当前草稿
		h.dropDraft(r)
	}
	h.viewResponse(w, r, moved, "切换版本成功", b.View())
}

func (h *Handler) HistoryBack(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*board.Board).Back)
}

func (h *Handler) HistoryForward(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*board.Board).Forward)
}

func (h *Handler) HistoryLatest(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*board.Board).ToLatest)
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	ctx, cancel := h.syncContext(r)
	defer cancel()

	candidate, err := b.Generate(ctx)
	if err != nil || candidate == nil {
		h.viewResponse(w, r, false, "自动排班失败", b.View())
		return
	}

	h.viewResponse(w, r, true, "自动排班成功", b.View())
}

func (h *Handler) PublishCandidate(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())

	ctx, cancel := h.syncContext(r)
	defer cancel()

	before := b.View().Versions
	if err := b.PublishCandidate(ctx); err != nil {
		h.viewResponse(w, r, false, "发布班表失败", b.View())
		return
	}

	view := b.View()
	published := view.Versions > before
	if published {
		h.dropDraft(r)
	}
	h.viewResponse(w, r, published, "发布班表成功", view)
}

func (h *Handler) DiscardCandidate(w http.ResponseWriter, r *http.Request) {
	b := boardFromContext(r.Context())
	h.viewResponse(w, r, b.DiscardCandidate(), "已放弃候选班表", b.View())
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())

	h.mu.Lock()
	delete(h.boards, s.Subject)
	h.mu.Unlock()

	h.dropDraft(r)
	s.Clear()

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.config.Environment == "production",
	})

	h.viewResponse(w, r, true, "已退出登录", nil)
}
