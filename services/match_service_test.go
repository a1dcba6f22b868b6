package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/daniel-lerner/lerners-game-tournament/models"
	"github.com/daniel-lerner/lerners-game-tournament/repositories"
	"github.com/daniel-lerner/lerners-game-tournament/scoring"
)

const (
	testEdition     = "2026"
	testPrevEdition = "2025"
)

type testEnv struct {
	ctx     context.Context
	store   *repositories.MemoryStore
	cache   *StateCache
	syncer  *Syncer
	matches MatchService
	logger  *slog.Logger
}

type envOptions struct {
	wrapPlayers func(repositories.PlayerRepository) repositories.PlayerRepository
	wrapMatches func(repositories.MatchRepository) repositories.MatchRepository
	compensate  bool
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := discardLogger()
	store := repositories.NewMemoryStore()
	if err := store.Games().UpsertAll(ctx, scoring.DefaultCatalog()); err != nil {
		t.Fatalf("seed games: %v", err)
	}

	playerRepo := store.Players()
	if opts.wrapPlayers != nil {
		playerRepo = opts.wrapPlayers(playerRepo)
	}
	matchRepo := store.Matches()
	if opts.wrapMatches != nil {
		matchRepo = opts.wrapMatches(matchRepo)
	}

	cache := NewStateCache()
	syncer := NewSyncer(store.Games(), playerRepo, matchRepo, cache, testEdition, nil, logger)
	svc := NewMatchService(matchRepo, playerRepo, cache, syncer, MatchServiceConfig{Edition: testEdition, Compensate: opts.compensate}, logger)

	clock := time.Date(2026, 2, 1, 19, 0, 0, 0, time.UTC)
	svc.(*matchService).now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	return &testEnv{ctx: ctx, store: store, cache: cache, syncer: syncer, matches: svc, logger: logger}
}

func (e *testEnv) addPlayers(t *testing.T, edition string, names ...string) []models.ID {
	t.Helper()
	ids := make([]models.ID, len(names))
	for i, name := range names {
		p := &models.Player{Name: name, EditionID: edition}
		if err := e.store.Players().Create(e.ctx, p); err != nil {
			t.Fatalf("create player: %v", err)
		}
		ids[i] = p.ID
	}
	if err := e.syncer.Resync(e.ctx); err != nil {
		t.Fatalf("resync: %v", err)
	}
	return ids
}

func (e *testEnv) player(t *testing.T, id models.ID) *models.Player {
	t.Helper()
	p, err := e.store.Players().GetByID(e.ctx, id)
	if err != nil {
		t.Fatalf("get player %s: %v", id, err)
	}
	return p
}

func entries(ids []models.ID, positions ...int) []scoring.Entry {
	out := make([]scoring.Entry, len(ids))
	for i, id := range ids {
		out[i] = scoring.Entry{PlayerID: id, Position: positions[i]}
	}
	return out
}

func TestCommitExplodingKittens(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ids := env.addPlayers(t, testEdition, "Ana", "Bruno", "Caio", "Duda")

	outcome, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "ek", Entries: entries(ids, 1, 2, 3, 4)})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if outcome.Match.ID.IsZero() || len(outcome.Report.Applied) != 5 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	winner := env.player(t, ids[0])
	if winner.TotalPoints != 12 || winner.MatchesPlayed != 1 || winner.Wins != 1 {
		t.Fatalf("unexpected winner aggregates %+v", winner.Aggregates())
	}
	for _, id := range ids[1:] {
		p := env.player(t, id)
		if p.TotalPoints != 0 || p.MatchesPlayed != 1 || p.Wins != 0 {
			t.Fatalf("unexpected aggregates for %s: %+v", p.Name, p.Aggregates())
		}
	}

	history := env.matches.MatchHistory(env.ctx)
	if len(history) != 1 || history[0].GameName != "Exploding Kittens" || history[0].Winners[0] != "Ana" {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestCommitTimesUpPlusRule(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ids := env.addPlayers(t, testEdition, "A", "B", "C", "D", "E")

	if _, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "tu", Entries: entries(ids, 1, 1, 2, 2, 2)}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	for i, id := range ids {
		p := env.player(t, id)
		want := 0
		if i < 2 {
			want = 30
		}
		if p.TotalPoints != want {
			t.Fatalf("%s earned %d, want %d", p.Name, p.TotalPoints, want)
		}
	}
}

func TestCommitRejectsInvalidParticipantCount(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ids := env.addPlayers(t, testEdition, "A", "B", "C")

	_, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "so", Entries: entries(ids, 1, 2, 3)})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	var verr *scoring.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected the validation details to be wrapped, got %v", err)
	}
	if stored, _ := env.store.Matches().ListByEdition(env.ctx, testEdition); len(stored) != 0 {
		t.Fatalf("rejected match must not be stored")
	}
	for _, id := range ids {
		if env.player(t, id).MatchesPlayed != 0 {
			t.Fatal("rejected match changed aggregates")
		}
	}

	if _, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "nope", Entries: entries(ids, 1, 2, 3)}); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestCommitRejectsPlayersFromAnotherEdition(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	current := env.addPlayers(t, testEdition, "Now")
	old := env.addPlayers(t, testPrevEdition, "Then")

	_, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "so", Entries: entries([]models.ID{current[0], old[0]}, 1, 2)})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestRetractMatchRestoresStandings(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ids := env.addPlayers(t, testEdition, "Ana", "Bruno", "Caio", "Duda")

	outcome, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "ek", Entries: entries(ids, 1, 2, 3, 4)})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if _, err := env.matches.RetractMatch(env.ctx, outcome.Match.ID); err != nil {
		t.Fatalf("retract failed: %v", err)
	}

	for _, id := range ids {
		if agg := env.player(t, id).Aggregates(); agg != (models.Aggregates{}) {
			t.Fatalf("player %s not restored: %+v", id, agg)
		}
	}
	if len(env.matches.ListMatches(env.ctx)) != 0 {
		t.Fatal("retracted match still listed")
	}
	if _, err := env.matches.RetractMatch(env.ctx, outcome.Match.ID); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound on second retract, got %v", err)
	}
}

func TestRetractClampsDriftedAggregates(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ids := env.addPlayers(t, testEdition, "Ana", "Bruno", "Caio")

	outcome, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "ttr", Entries: entries(ids, 1, 2, 3)})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	// someone edited the winner by hand after the match
	if err := env.store.Players().UpdateAggregates(env.ctx, ids[0], models.Aggregates{TotalPoints: 5}); err != nil {
		t.Fatalf("manual update: %v", err)
	}
	env.syncer.Resync(env.ctx)

	if _, err := env.matches.RetractMatch(env.ctx, outcome.Match.ID); err != nil {
		t.Fatalf("retract failed: %v", err)
	}
	if agg := env.player(t, ids[0]).Aggregates(); agg != (models.Aggregates{}) {
		t.Fatalf("expected clamped zero aggregates, got %+v", agg)
	}
}

func TestRetractSkipsDeletedPlayers(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ids := env.addPlayers(t, testEdition, "Ana", "Bruno")

	outcome, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "so", Entries: entries(ids, 1, 2)})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	env.store.Players().Delete(env.ctx, ids[1])
	env.syncer.Resync(env.ctx)

	history := env.matches.MatchHistory(env.ctx)
	if history[0].Results[1].PlayerName != unknownPlayerName {
		t.Fatalf("expected dangling id to render as unknown, got %+v", history[0].Results)
	}

	retracted, err := env.matches.RetractMatch(env.ctx, outcome.Match.ID)
	if err != nil {
		t.Fatalf("retract failed: %v", err)
	}
	if len(retracted.Skipped) != 1 || retracted.Skipped[0] != ids[1] {
		t.Fatalf("expected the deleted player to be skipped, got %+v", retracted.Skipped)
	}
}

func TestResetEditionIsolation(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ids := env.addPlayers(t, testEdition, "Ana", "Bruno")
	if err := env.store.Players().CreateBatch(env.ctx, []models.Player{{Name: "Champ", EditionID: testPrevEdition, TotalPoints: 300}}); err != nil {
		t.Fatalf("batch: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "fm", Entries: entries(ids, 1, 2)}); err != nil {
			t.Fatalf("commit %d failed: %v", i, err)
		}
	}

	outcome, err := env.matches.ResetEdition(env.ctx, testEdition)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if outcome.MatchesDeleted != 3 {
		t.Fatalf("expected 3 deleted matches, got %d", outcome.MatchesDeleted)
	}
	for _, id := range ids {
		if agg := env.player(t, id).Aggregates(); agg != (models.Aggregates{}) {
			t.Fatalf("player %s not reset: %+v", id, agg)
		}
	}
	for _, p := range env.cache.PlayersOf(testPrevEdition) {
		if p.TotalPoints != 300 {
			t.Fatalf("reset reached the previous edition: %+v", p)
		}
	}
}

type flakyPlayers struct {
	repositories.PlayerRepository
	failFor models.ID
}

func (f flakyPlayers) UpdateAggregates(ctx context.Context, id models.ID, agg models.Aggregates) error {
	if id == f.failFor {
		return errors.New("connection reset")
	}
	return f.PlayerRepository.UpdateAggregates(ctx, id, agg)
}

func TestCommitPartialApplyIsReported(t *testing.T) {
	flaky := &flakyPlayers{}
	env := newTestEnv(t, envOptions{wrapPlayers: func(r repositories.PlayerRepository) repositories.PlayerRepository {
		flaky.PlayerRepository = r
		return flaky
	}})
	ids := env.addPlayers(t, testEdition, "Ana", "Bruno", "Caio")
	flaky.failFor = ids[1]

	outcome, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "ttr", Entries: entries(ids, 1, 2, 3)})
	if !errors.Is(err, ErrPartialApply) {
		t.Fatalf("expected ErrPartialApply, got %v", err)
	}
	if outcome == nil || len(outcome.Report.Failed) != 1 {
		t.Fatalf("expected one failed step, got %+v", outcome)
	}
	if env.player(t, ids[0]).TotalPoints != 60 || env.player(t, ids[2]).TotalPoints != 20 {
		t.Fatal("failure of one player rolled back the others")
	}
	if env.player(t, ids[1]).MatchesPlayed != 0 {
		t.Fatal("failed player should not have been updated")
	}
	if stored, _ := env.store.Matches().ListByEdition(env.ctx, testEdition); len(stored) != 1 {
		t.Fatal("match should stay stored after a partial apply")
	}
}

type brokenDeletes struct {
	repositories.MatchRepository
}

func (brokenDeletes) Delete(ctx context.Context, id models.ID) error {
	return errors.New("backend offline")
}

func TestRetractDeleteFailure(t *testing.T) {
	for _, compensate := range []bool{false, true} {
		env := newTestEnv(t, envOptions{
			wrapMatches: func(r repositories.MatchRepository) repositories.MatchRepository { return brokenDeletes{r} },
			compensate:  compensate,
		})
		ids := env.addPlayers(t, testEdition, "Ana", "Bruno")

		outcome, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "so", Entries: entries(ids, 1, 2)})
		if err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		retracted, err := env.matches.RetractMatch(env.ctx, outcome.Match.ID)
		if !errors.Is(err, ErrMatchDeleteFailed) {
			t.Fatalf("compensate=%v: expected ErrMatchDeleteFailed, got %v", compensate, err)
		}
		winner := env.player(t, ids[0])
		if compensate {
			if winner.TotalPoints != 3 || len(retracted.Report.Compensated) != 2 {
				t.Fatalf("expected compensation to restore the winner, got %+v / %+v", winner.Aggregates(), retracted.Report)
			}
		} else if winner.TotalPoints != 0 {
			t.Fatalf("without compensation the reversal stays applied, got %+v", winner.Aggregates())
		}
	}
}

type brokenCreates struct {
	repositories.MatchRepository
}

func (brokenCreates) Create(ctx context.Context, m *models.Match) error {
	return errors.New("backend offline")
}

func TestCommitInsertFailureAppliesNothing(t *testing.T) {
	env := newTestEnv(t, envOptions{
		wrapMatches: func(r repositories.MatchRepository) repositories.MatchRepository { return brokenCreates{r} },
	})
	ids := env.addPlayers(t, testEdition, "Ana", "Bruno", "Caio")

	outcome, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "ttr", Entries: entries(ids, 1, 2, 3)})
	if !errors.Is(err, ErrMatchCreationFailed) || outcome != nil {
		t.Fatalf("expected ErrMatchCreationFailed and no outcome, got %v / %+v", err, outcome)
	}
	for _, id := range ids {
		if agg := env.player(t, id).Aggregates(); agg != (models.Aggregates{}) {
			t.Fatalf("aggregates changed after a failed insert: %+v", agg)
		}
	}
	if stored, _ := env.store.Matches().ListByEdition(env.ctx, testEdition); len(stored) != 0 {
		t.Fatalf("no match should be stored, got %d", len(stored))
	}
}

// cancelAfterCreate cancels the request context once the match row is written.
type cancelAfterCreate struct {
	repositories.MatchRepository
	cancel context.CancelFunc
}

func (c cancelAfterCreate) Create(ctx context.Context, m *models.Match) error {
	err := c.MatchRepository.Create(ctx, m)
	c.cancel()
	return err
}

func TestCommitCompletesWhenRequestCancelledAfterInsert(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(t, envOptions{
		wrapMatches: func(r repositories.MatchRepository) repositories.MatchRepository {
			return cancelAfterCreate{MatchRepository: r, cancel: cancel}
		},
	})
	ids := env.addPlayers(t, testEdition, "Ana", "Bruno", "Caio")

	outcome, err := env.matches.CommitMatch(ctx, CommitMatchInput{GameID: "ttr", Entries: entries(ids, 1, 2, 3)})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if outcome == nil || len(outcome.Report.Applied) != 4 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if env.player(t, ids[0]).TotalPoints != 60 || env.player(t, ids[2]).TotalPoints != 20 {
		t.Fatal("standings were not applied after the stored insert")
	}
	if len(env.matches.ListMatches(env.ctx)) != 1 {
		t.Fatal("cache should hold the stored match")
	}
}

func TestPreviewMatchDoesNotWrite(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ids := env.addPlayers(t, testEdition, "Ana", "Bruno", "Caio")

	preview, err := env.matches.PreviewMatch(env.ctx, CommitMatchInput{GameID: "ttr", Entries: entries(ids, 2, 1, 3)})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview.Standings[0].PlayerID != ids[1] || preview.Standings[0].TotalPoints != 60 {
		t.Fatalf("unexpected preview standings %+v", preview.Standings)
	}
	if env.player(t, ids[1]).TotalPoints != 0 || len(env.matches.ListMatches(env.ctx)) != 0 {
		t.Fatal("preview must not write")
	}
}
