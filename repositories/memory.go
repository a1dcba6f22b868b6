package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/daniel-lerner/lerners-game-tournament/models"
	"github.com/google/uuid"
)

// MemoryStore держит данные в памяти процесса (STORAGE=memory, тесты).
// Каждая запись в players/matches посылает сигнал в Changes, как это делают
// триггеры в Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	games   map[models.ID]models.Game
	players map[models.ID]models.Player
	matches map[models.ID]models.Match
	changes chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:   make(map[models.ID]models.Game),
		players: make(map[models.ID]models.Player),
		matches: make(map[models.ID]models.Match),
		changes: make(chan struct{}, 1),
	}
}

func (s *MemoryStore) Changes() <-chan struct{} { return s.changes }

func (s *MemoryStore) Games() GameRepository     { return memoryGameRepository{s} }
func (s *MemoryStore) Players() PlayerRepository { return memoryPlayerRepository{s} }
func (s *MemoryStore) Matches() MatchRepository  { return memoryMatchRepository{s} }

func (s *MemoryStore) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

type memoryGameRepository struct{ s *MemoryStore }

func (r memoryGameRepository) List(ctx context.Context) ([]models.Game, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	games := make([]models.Game, 0, len(r.s.games))
	for _, g := range r.s.games {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Name < games[j].Name })
	return games, nil
}

func (r memoryGameRepository) UpsertAll(ctx context.Context, games []models.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range games {
		r.s.games[g.ID] = g
	}
	return nil
}

type memoryPlayerRepository struct{ s *MemoryStore }

func (r memoryPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	players := make([]models.Player, 0, len(r.s.players))
	for _, p := range r.s.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].TotalPoints != players[j].TotalPoints {
			return players[i].TotalPoints > players[j].TotalPoints
		}
		return players[i].ID < players[j].ID
	})
	return players, nil
}

func (r memoryPlayerRepository) GetByID(ctx context.Context, id models.ID) (*models.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return &p, nil
}

func (r memoryPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = models.ID(uuid.NewString())
	r.s.players[p.ID] = *p
	r.s.notify()
	return nil
}

func (r memoryPlayerRepository) CreateBatch(ctx context.Context, players []models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range players {
		p.ID = models.ID(uuid.NewString())
		r.s.players[p.ID] = p
	}
	r.s.notify()
	return nil
}

func (r memoryPlayerRepository) UpdateAggregates(ctx context.Context, id models.ID, agg models.Aggregates) error {
	return r.update(id, func(p *models.Player) { p.SetAggregates(agg) })
}

func (r memoryPlayerRepository) ResetAggregates(ctx context.Context, edition string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.players {
		if p.EditionID == edition {
			p.SetAggregates(models.Aggregates{})
			r.s.players[id] = p
		}
	}
	r.s.notify()
	return nil
}

func (r memoryPlayerRepository) UpdateAvatar(ctx context.Context, id models.ID, avatarURL string) error {
	return r.update(id, func(p *models.Player) { p.AvatarURL = avatarURL })
}

func (r memoryPlayerRepository) update(id models.ID, fn func(*models.Player)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	fn(&p)
	r.s.players[id] = p
	r.s.notify()
	return nil
}

func (r memoryPlayerRepository) Delete(ctx context.Context, id models.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.players[id]; !ok {
		return ErrPlayerNotFound
	}
	delete(r.s.players, id)
	r.s.notify()
	return nil
}

func (r memoryPlayerRepository) DeleteByEdition(ctx context.Context, edition string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.players {
		if p.EditionID == edition {
			delete(r.s.players, id)
			n++
		}
	}
	r.s.notify()
	return n, nil
}

type memoryMatchRepository struct{ s *MemoryStore }

func (r memoryMatchRepository) Create(ctx context.Context, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = models.ID(uuid.NewString())
	stored := *m
	stored.Results = append([]models.MatchResult(nil), m.Results...)
	r.s.matches[m.ID] = stored
	r.s.notify()
	return nil
}

func (r memoryMatchRepository) ListByEdition(ctx context.Context, edition string) ([]models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matches := make([]models.Match, 0)
	for _, m := range r.s.matches {
		if m.EditionID == edition {
			m.Results = append([]models.MatchResult(nil), m.Results...)
			matches = append(matches, m)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Timestamp.After(matches[j].Timestamp) })
	return matches, nil
}

func (r memoryMatchRepository) Delete(ctx context.Context, id models.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.matches[id]; !ok {
		return ErrMatchNotFound
	}
	delete(r.s.matches, id)
	r.s.notify()
	return nil
}

func (r memoryMatchRepository) DeleteByEdition(ctx context.Context, edition string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, m := range r.s.matches {
		if m.EditionID == edition {
			delete(r.s.matches, id)
			n++
		}
	}
	r.s.notify()
	return n, nil
}
