package handler

import (
	"net/http"

	"medportal/internal/app/service"
	"medportal/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	userService *service.UserService
	log         logrus.FieldLogger
}

func NewUserHandler(us *service.UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{userService: us, log: log}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.listUsers) // GET /api/users?user_type=doctor&search=smith
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.userService.List(r.Context(), service.ListUsersRequest{
		UserType:      q.Get("user_type"),
		IsActive:      q.Get("is_active"),
		CreatedAfter:  q.Get("created_after"),
		CreatedBefore: q.Get("created_before"),
		Search:        q.Get("search"),
		Ordering:      q.Get("ordering"),
		Page:          q.Get("page"),
		PageSize:      q.Get("page_size"),
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, page)
}
