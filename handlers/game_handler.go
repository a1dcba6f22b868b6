package handlers

import (
	"net/http"

	"github.com/daniel-lerner/lerners-game-tournament/models"
	"github.com/daniel-lerner/lerners-game-tournament/services"
)

type GameHandler struct {
	gameService services.GameService
}

func NewGameHandler(gs services.GameService) *GameHandler {
	return &GameHandler{gameService: gs}
}

// ListGames godoc
// @Summary Каталог игр с таблицами очков
// @Tags games
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/games [get]
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games := h.gameService.List(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReplaceCatalog godoc
// @Summary Перезаписать каталог игр
// @Tags admin
// @Description Пустой список загружает каталог по умолчанию.
// @Accept json
// @Produce json
// @Param body body []models.Game true "Игры"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /api/admin/games [put]
func (h *GameHandler) ReplaceCatalog(w http.ResponseWriter, r *http.Request) {
	var games []models.Game
	if err := readJSON(w, r, &games); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	n, err := h.gameService.ReplaceCatalog(r.Context(), games)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": n}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
