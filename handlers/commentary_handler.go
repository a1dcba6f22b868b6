package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/daniel-lerner/lerners-game-tournament/services"
)

type CommentaryHandler struct {
	commentaryService services.CommentaryService
}

func NewCommentaryHandler(cs services.CommentaryService) *CommentaryHandler {
	return &CommentaryHandler{commentaryService: cs}
}

// Generate godoc
// @Summary Новый комментарий ведущего
// @Tags commentary
// @Description При сбое ИИ возвращается текст-извинение и поле warning.
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/commentary [post]
func (h *CommentaryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	commentary, err := h.commentaryService.Generate(r.Context())
	if err != nil && (commentary == nil || !errors.Is(err, services.ErrNarratorUnavailable)) {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"commentary": commentary}
	if err != nil {
		response["warning"] = err.Error()
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Latest godoc
// @Summary Последний комментарий
// @Tags commentary
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/commentary [get]
func (h *CommentaryHandler) Latest(w http.ResponseWriter, r *http.Request) {
	commentary, ok := h.commentaryService.Latest(r.Context())
	if !ok {
		notFoundResponse(w, r, "no commentary yet")
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"commentary": commentary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Audio godoc
// @Summary Речь последнего комментария
// @Tags commentary
// @Produce audio/wav
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /api/commentary/audio [get]
func (h *CommentaryHandler) Audio(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.commentaryService.WriteSpeech(&buf); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// Playback godoc
// @Summary Управление воспроизведением на всех экранах
// @Tags commentary
// @Accept json
// @Produce json
// @Param body body object true "{\"action\": \"toggle|play|pause|resume|stop\"}"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Речи ещё нет"
// @Router /api/commentary/playback [post]
func (h *CommentaryHandler) Playback(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Action services.PlaybackAction `json:"action"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status, err := h.commentaryService.Playback(r.Context(), input.Action)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"playback": status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
