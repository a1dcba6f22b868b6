package handlers

import (
	"errors"
	"net/http"

	"github.com/daniel-lerner/lerners-game-tournament/services"
	"github.com/go-chi/chi/v5"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// ListMatches godoc
// @Summary История матчей текущего издания
// @Tags matches
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/matches [get]
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	history := h.matchService.MatchHistory(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CommitMatch godoc
// @Summary Записать матч
// @Tags matches
// @Accept json
// @Produce json
// @Param body body services.CommitMatchInput true "Игра и места участников"
// @Success 201 {object} map[string]interface{} "Матч записан"
// @Success 200 {object} map[string]interface{} "Матч записан, часть рейтинга не обновлена"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Игра не найдена"
// @Failure 422 {object} map[string]string "Ошибки формы"
// @Router /api/matches [post]
func (h *MatchHandler) CommitMatch(w http.ResponseWriter, r *http.Request) {
	var input services.CommitMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.matchService.CommitMatch(r.Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrPartialApply) && outcome != nil {
			// Матч сохранён, но не все агрегаты записаны.
			h.writeOutcome(w, r, http.StatusOK, outcome, err.Error())
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOutcome(w, r, http.StatusCreated, outcome, "")
}

// PreviewMatch godoc
// @Summary Посчитать очки и рейтинг без записи
// @Tags matches
// @Accept json
// @Produce json
// @Param body body services.CommitMatchInput true "Игра и места участников"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string "Ошибки формы"
// @Router /api/matches/preview [post]
func (h *MatchHandler) PreviewMatch(w http.ResponseWriter, r *http.Request) {
	var input services.CommitMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	preview, err := h.matchService.PreviewMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"preview": preview}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RetractMatch godoc
// @Summary Отменить матч
// @Tags admin
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]interface{} "Матч не удалён, отчёт о применённых шагах"
// @Security BearerAuth
// @Router /api/admin/matches/{matchID} [delete]
func (h *MatchHandler) RetractMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.matchService.RetractMatch(r.Context(), matchID)
	switch {
	case err == nil:
		h.writeOutcome(w, r, http.StatusOK, outcome, "")
	case errors.Is(err, services.ErrPartialApply) && outcome != nil:
		h.writeOutcome(w, r, http.StatusOK, outcome, err.Error())
	case errors.Is(err, services.ErrMatchDeleteFailed) && outcome != nil:
		if werr := writeJSON(w, http.StatusInternalServerError, jsonResponse{
			"error":  err.Error(),
			"report": outcome.Report,
		}, nil); werr != nil {
			serverErrorResponse(w, r, werr)
		}
	default:
		mapServiceErrorToHTTP(w, r, err)
	}
}

// ResetEdition godoc
// @Summary Удалить матчи издания и обнулить очки
// @Tags admin
// @Produce json
// @Param edition path string true "Edition"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/admin/editions/{edition}/reset [post]
func (h *MatchHandler) ResetEdition(w http.ResponseWriter, r *http.Request) {
	edition := chi.URLParam(r, "edition")

	outcome, err := h.matchService.ResetEdition(r.Context(), edition)
	if err != nil {
		if errors.Is(err, services.ErrResetIncomplete) && outcome != nil {
			if werr := writeJSON(w, http.StatusInternalServerError, jsonResponse{"error": err.Error(), "reset": outcome}, nil); werr != nil {
				serverErrorResponse(w, r, werr)
			}
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"reset": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) writeOutcome(w http.ResponseWriter, r *http.Request, status int, outcome *services.MatchOutcome, warning string) {
	response := jsonResponse{
		"match":  outcome.Match,
		"report": outcome.Report,
	}
	if len(outcome.Skipped) > 0 {
		response["skipped"] = outcome.Skipped
	}
	if warning != "" {
		response["warning"] = warning
	}
	if err := writeJSON(w, status, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
