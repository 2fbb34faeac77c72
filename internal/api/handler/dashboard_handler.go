package handler

import (
	"fmt"
	"net/http"

	"medportal/internal/api/middleware"
	"medportal/internal/app/service"
	"medportal/internal/common"
	"medportal/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	log              logrus.FieldLogger
}

func NewDashboardHandler(ds *service.DashboardService, log logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{dashboardService: ds, log: log}
}

// RegisterRoutes expects to be mounted behind middleware.Authenticator.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/patient/dashboard", h.dashboard(model.RolePatient))
	r.Get("/doctor/dashboard", h.dashboard(model.RoleDoctor))
}

type dashboardResponse struct {
	Message  string                `json:"message"`
	UserData *model.UserProjection `json:"user_data"`
}

func (h *DashboardHandler) dashboard(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFromContext(r.Context())

		view, err := h.dashboardService.View(r.Context(), user, role)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, dashboardResponse{
			Message:  fmt.Sprintf("Welcome to %s Dashboard", role.Title()),
			UserData: view,
		})
	}
}
