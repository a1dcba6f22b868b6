package handlers

import (
	"net/http"

	"github.com/daniel-lerner/lerners-game-tournament/services"
)

type AdminHandler struct {
	syncer services.Resyncer
}

func NewAdminHandler(syncer services.Resyncer) *AdminHandler {
	return &AdminHandler{syncer: syncer}
}

// Sync godoc
// @Summary Перечитать данные из хранилища
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string "Хранилище недоступно, кэш прежний"
// @Security BearerAuth
// @Router /api/admin/sync [post]
func (h *AdminHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if err := h.syncer.Resync(r.Context()); err != nil {
		unavailableResponse(w, r, err.Error())
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"synced": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
