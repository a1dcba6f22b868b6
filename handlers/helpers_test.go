package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/daniel-lerner/lerners-game-tournament/repositories"
	"github.com/daniel-lerner/lerners-game-tournament/scoring"
	"github.com/daniel-lerner/lerners-game-tournament/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrMatchNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: %w", services.ErrValidationFailed, &scoring.ValidationError{Problems: map[string]string{"entries": "x"}}), http.StatusUnprocessableEntity},
		{services.ErrPlayerNameTooLong, http.StatusUnprocessableEntity},
		{services.ErrInvalidEdition, http.StatusBadRequest},
		{repositories.ErrPlayerNameConflict, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: %w", services.ErrNarratorUnavailable, errors.New("quota")), http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		if rec.Code != tt.want {
			t.Errorf("%v: status %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

func TestValidationProblemsAreReturned(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("%w: %w", services.ErrValidationFailed, &scoring.ValidationError{Problems: map[string]string{"entries[1]": "player is required"}})
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/matches", nil), err)

	var body struct {
		Error map[string]string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error["entries[1]"] != "player is required" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		body    string
		wantErr string
	}{
		{`{"gameId":"ek","entries":[]}`, ""},
		{``, "body must not be empty"},
		{`{"gameId":`, "badly-formed"},
		{`{"gameId":"ek","extra":1}`, "unknown key"},
		{`{"gameId":"ek"}{}`, "single JSON value"},
	}
	for _, tt := range tests {
		var input services.CommitMatchInput
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
		err := readJSON(httptest.NewRecorder(), req, &input)
		switch {
		case tt.wantErr == "" && err != nil:
			t.Errorf("%q: unexpected error %v", tt.body, err)
		case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
			t.Errorf("%q: error %v, want %q", tt.body, err, tt.wantErr)
		}
	}
}
