package services

import (
	"sync"
	"time"

	"github.com/daniel-lerner/lerners-game-tournament/models"
)

// Snapshot это последняя загруженная копия данных. Игроки всех изданий,
// матчи только текущего издания, новые первыми.
type Snapshot struct {
	Games          []models.Game
	Players        []models.Player
	Matches        []models.Match
	SyncedAt       time.Time
	Status         models.SyncStatus
	DefaultCatalog bool
}

type StateCache struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewStateCache() *StateCache {
	return &StateCache{snap: Snapshot{Status: models.SyncSyncing}}
}

// Snapshot возвращает глубокую копию.
func (c *StateCache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.clone()
}

func (c *StateCache) Replace(s Snapshot) {
	s = s.clone()
	c.mu.Lock()
	c.snap = s
	c.mu.Unlock()
}

func (c *StateCache) SetStatus(status models.SyncStatus) {
	c.mu.Lock()
	c.snap.Status = status
	c.mu.Unlock()
}

func (c *StateCache) Status() (models.SyncStatus, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Status, c.snap.SyncedAt
}

func (c *StateCache) Game(id models.ID) (models.Game, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, g := range c.snap.Games {
		if g.ID == id {
			return g, true
		}
	}
	return models.Game{}, false
}

func (c *StateCache) Player(id models.ID) (models.Player, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.snap.Players {
		if p.ID == id {
			return p, true
		}
	}
	return models.Player{}, false
}

func (c *StateCache) Match(id models.ID) (models.Match, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.snap.Matches {
		if m.ID == id {
			return cloneMatch(m), true
		}
	}
	return models.Match{}, false
}

// PlayersOf возвращает копии игроков издания.
func (c *StateCache) PlayersOf(edition string) []models.Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	players := make([]models.Player, 0, len(c.snap.Players))
	for _, p := range c.snap.Players {
		if p.EditionID == edition {
			players = append(players, p)
		}
	}
	return players
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Games = make([]models.Game, len(s.Games))
	for i, g := range s.Games {
		out.Games[i] = cloneGame(g)
	}
	out.Players = append([]models.Player(nil), s.Players...)
	out.Matches = make([]models.Match, len(s.Matches))
	for i, m := range s.Matches {
		out.Matches[i] = cloneMatch(m)
	}
	return out
}

func cloneMatch(m models.Match) models.Match {
	m.Results = append([]models.MatchResult(nil), m.Results...)
	return m
}

func cloneGame(g models.Game) models.Game {
	if g.Scoring == nil {
		return g
	}
	table := make(models.ScoringTable, len(g.Scoring))
	for count, row := range g.Scoring {
		copied := make(map[int]int, len(row))
		for pos, pts := range row {
			copied[pos] = pts
		}
		table[count] = copied
	}
	g.Scoring = table
	return g
}
