package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-authix/internal/application/user"
	"github.com/go-authix/internal/transport/http/middleware"
)

const (
	defaultPageSize = 20
	// maxPage keeps the listing offset (page-1)*page_size from overflowing.
	maxPage = math.MaxInt / user.MaxPageSize
)

// UserHandler handles the caller's profile and online-user endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, p)
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), userID); err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, nil)
}

func (h *UserHandler) OnlineCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.OnlineCount(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, n)
}

// Online lists online users. page defaults to 1 and is clamped to
// [1, maxPage]; page_size defaults to 20 and is clamped to [1, user.MaxPageSize].
func (h *UserHandler) Online(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = min(max(n, 1), maxPage)
	}
	pageSize := defaultPageSize
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		pageSize = min(max(n, 1), user.MaxPageSize)
	}
	res, err := h.svc.Online(r.Context(), page, pageSize)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, res)
}
