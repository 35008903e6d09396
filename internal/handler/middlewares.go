package handler

import (
	"net/http"
	"slices"

	"github.com/sysu-ecnc-dev/roster-board/internal/session"
)

func (h *Handler) RequiredRole(roles []session.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok || !slices.Contains(roles, s.Role) {
				h.errorResponse(w, r, http.StatusForbidden, "权限不足")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
