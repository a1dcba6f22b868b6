package handlers

import (
	"errors"
	"net/http"

	"github.com/daniel-lerner/lerners-game-tournament/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary Обменять пароль администратора на токен
// @Tags admin
// @Accept json
// @Produce json
// @Param body body object true "{\"passcode\": \"...\"}"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 503 {object} map[string]string "Доступ администратора не настроен"
// @Router /api/admin/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Passcode string `json:"passcode"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Passcode == "" {
		badRequestResponse(w, r, errors.New("passcode is required"))
		return
	}

	token, expiresAt, err := h.authService.Login(r.Context(), input.Passcode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"token":     token,
		"expiresAt": expiresAt,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
