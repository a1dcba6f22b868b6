package handlers

import (
	"errors"
	"net/http"

	"github.com/daniel-lerner/lerners-game-tournament/services"
	"github.com/daniel-lerner/lerners-game-tournament/storage"
	"github.com/go-chi/chi/v5"
)

const (
	maxMultipartMemory = 32 << 20
	maxLegacyImport    = 5 << 20
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

// ListPlayers godoc
// @Summary Игроки издания, по имени
// @Tags players
// @Produce json
// @Param edition query string false "Edition (по умолчанию текущее)"
// @Success 200 {object} map[string]interface{}
// @Router /api/players [get]
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	edition := r.URL.Query().Get("edition")
	players := h.playerService.List(r.Context(), edition)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegisterPlayer godoc
// @Summary Зарегистрировать игрока в текущем издании
// @Tags admin
// @Accept json
// @Produce json
// @Param body body services.RegisterPlayerInput true "Имя"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /api/admin/players [post]
func (h *PlayerHandler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterPlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeletePlayer godoc
// @Summary Удалить игрока
// @Tags admin
// @Param playerID path string true "Player ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/admin/players/{playerID} [delete]
func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.Delete(r.Context(), playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatar godoc
// @Summary Загрузить аватар игрока
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param playerID path string true "Player ID"
// @Param avatar formData file true "Картинка"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /api/admin/players/{playerID}/avatar [post]
func (h *PlayerHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxAvatarSize+1<<20)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	player, err := h.playerService.UploadAvatar(r.Context(), playerID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClearEdition godoc
// @Summary Удалить всех игроков издания
// @Tags admin
// @Produce json
// @Param edition path string true "Edition"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/admin/editions/{edition}/players [delete]
func (h *PlayerHandler) ClearEdition(w http.ResponseWriter, r *http.Request) {
	edition := chi.URLParam(r, "edition")

	deleted, err := h.playerService.ClearEdition(r.Context(), edition)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"edition": edition, "deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ImportLegacy godoc
// @Summary Импорт таблицы прошлого издания (CSV через ';')
// @Tags admin
// @Accept text/csv
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /api/admin/import/legacy [post]
func (h *PlayerHandler) ImportLegacy(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxLegacyImport)
	imported, err := h.playerService.ImportLegacy(r.Context(), body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"imported": imported}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
