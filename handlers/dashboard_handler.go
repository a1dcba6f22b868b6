package handlers

import (
	"net/http"

	"github.com/daniel-lerner/lerners-game-tournament/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(ds services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: ds}
}

// GetDashboard godoc
// @Summary Подиум, последние матчи и чемпион прошлого издания
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.Dashboard
// @Router /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard := h.dashboardService.GetDashboard(r.Context())
	if err := writeJSON(w, http.StatusOK, dashboard, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetRankings godoc
// @Summary Рейтинг издания
// @Tags dashboard
// @Produce json
// @Param edition query string false "Edition (по умолчанию текущее)"
// @Success 200 {object} map[string]interface{}
// @Router /api/rankings [get]
func (h *DashboardHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	edition := r.URL.Query().Get("edition")
	standings := h.dashboardService.Rankings(r.Context(), edition)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStatus godoc
// @Summary Состояние синхронизации
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/status [get]
func (h *DashboardHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	d := h.dashboardService.GetDashboard(r.Context())
	response := jsonResponse{
		"status":          d.SyncStatus,
		"syncedAt":        d.SyncedAt,
		"edition":         d.EditionID,
		"previousEdition": d.PreviousEdition,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
