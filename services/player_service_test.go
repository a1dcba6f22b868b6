package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/daniel-lerner/lerners-game-tournament/importer"
	"github.com/daniel-lerner/lerners-game-tournament/models"
	"github.com/daniel-lerner/lerners-game-tournament/storage"
)

func newPlayerService(env *testEnv) PlayerService {
	return NewPlayerService(env.store.Players(), storage.NewInlineUploader(), env.cache, env.syncer, PlayerServiceConfig{
		Edition:         testEdition,
		PreviousEdition: testPrevEdition,
		PointsColumn:    importer.DefaultPointsColumn,
	}, env.logger)
}

func TestValidatePlayerName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		err  error
	}{
		{"  Ana Clara ", "Ana Clara", nil},
		{"   ", "", ErrPlayerNameRequired},
		{strings.Repeat("é", MaxPlayerNameLength), strings.Repeat("é", MaxPlayerNameLength), nil},
		{strings.Repeat("a", MaxPlayerNameLength+1), "", ErrPlayerNameTooLong},
	}
	for _, tt := range tests {
		got, err := ValidatePlayerName(tt.raw)
		if !errors.Is(err, tt.err) || got != tt.want {
			t.Errorf("ValidatePlayerName(%q) = %q, %v; want %q, %v", tt.raw, got, err, tt.want, tt.err)
		}
	}
}

func TestRegisterAndDeletePlayer(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	svc := newPlayerService(env)

	p, err := svc.Register(env.ctx, RegisterPlayerInput{Name: " Bruno "})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if p.Name != "Bruno" || p.EditionID != testEdition || p.TotalPoints != 0 {
		t.Fatalf("unexpected player %+v", p)
	}
	if got := svc.List(env.ctx, testEdition); len(got) != 1 || got[0].ID != p.ID {
		t.Fatalf("registered player not visible: %+v", got)
	}

	if err := svc.Delete(env.ctx, p.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(env.ctx, p.ID); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	svc := newPlayerService(env)
	p, _ := svc.Register(env.ctx, RegisterPlayerInput{Name: "Ana"})

	if _, err := svc.UploadAvatar(env.ctx, p.ID, "application/pdf", strings.NewReader("%PDF")); !errors.Is(err, ErrUnsupportedAvatarType) {
		t.Fatalf("expected ErrUnsupportedAvatarType, got %v", err)
	}
	if _, err := svc.UploadAvatar(env.ctx, "missing", "image/png", strings.NewReader("png")); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}

	updated, err := svc.UploadAvatar(env.ctx, p.ID, "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.HasPrefix(updated.AvatarURL, "data:image/png;base64,") {
		t.Fatalf("unexpected avatar url %q", updated.AvatarURL)
	}
	if cached, _ := env.cache.Player(p.ID); cached.AvatarURL != updated.AvatarURL {
		t.Fatal("cache not refreshed after avatar upload")
	}
}

func TestImportLegacyAndClearEdition(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	svc := newPlayerService(env)

	csv := "Nome;a;b;c;d;e;f;g;h;i;j;k;Pontos\n" +
		"Ana;;;;;;;;;;;;120\n" +
		"Bruno;;;;;;;;;;;;85\n"
	n, err := svc.ImportLegacy(env.ctx, strings.NewReader(csv))
	if err != nil || n != 2 {
		t.Fatalf("import = %d, %v", n, err)
	}

	champ := NewDashboardService(env.cache, testEdition, testPrevEdition).GetDashboard(env.ctx).PreviousChamp
	if champ == nil || champ.Name != "Ana" || champ.TotalPoints != 120 {
		t.Fatalf("unexpected previous champion %+v", champ)
	}

	if _, err := svc.ImportLegacy(env.ctx, strings.NewReader("Nome;Pontos\n")); !errors.Is(err, ErrEmptyImport) {
		t.Fatalf("expected ErrEmptyImport, got %v", err)
	}

	deleted, err := svc.ClearEdition(env.ctx, testPrevEdition)
	if err != nil || deleted != 2 {
		t.Fatalf("clear = %d, %v", deleted, err)
	}
	if got := svc.List(env.ctx, testPrevEdition); len(got) != 0 {
		t.Fatalf("edition not cleared: %+v", got)
	}
	if _, err := svc.ClearEdition(env.ctx, " "); !errors.Is(err, ErrInvalidEdition) {
		t.Fatalf("expected ErrInvalidEdition, got %v", err)
	}
}

func TestReplaceCatalog(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	svc := NewGameService(env.store.Games(), env.cache, env.syncer, env.logger)

	n, err := svc.ReplaceCatalog(env.ctx, []models.Game{{
		ID: " dm ", Name: "Dominion", Scoring: models.ScoringTable{2: {1: 5}},
	}})
	if err != nil || n != 1 {
		t.Fatalf("replace = %d, %v", n, err)
	}
	if _, ok := env.cache.Game("dm"); !ok {
		t.Fatal("new game not visible after replace")
	}

	bad := []struct {
		name  string
		games []models.Game
	}{
		{"no id", []models.Game{{Name: "X", Scoring: models.ScoringTable{2: {1: 1}}}}},
		{"no table", []models.Game{{ID: "x", Name: "X"}}},
		{"negative points", []models.Game{{ID: "x", Name: "X", Scoring: models.ScoringTable{2: {1: -1}}}}},
		{"duplicate", []models.Game{
			{ID: "x", Name: "X", Scoring: models.ScoringTable{2: {1: 1}}},
			{ID: "x", Name: "Y", Scoring: models.ScoringTable{2: {1: 1}}},
		}},
	}
	for _, tt := range bad {
		if _, err := svc.ReplaceCatalog(env.ctx, tt.games); !errors.Is(err, ErrInvalidGame) {
			t.Errorf("%s: expected ErrInvalidGame, got %v", tt.name, err)
		}
	}

	n, err = svc.ReplaceCatalog(env.ctx, nil)
	if err != nil || n != 15 {
		t.Fatalf("default catalog replace = %d, %v", n, err)
	}
}
