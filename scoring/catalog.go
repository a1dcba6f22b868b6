package scoring

import "github.com/daniel-lerner/lerners-game-tournament/models"

// DefaultCatalog is the catalog the tournament started with. It is served when the
// games table is empty and uploaded by the "replace catalog" admin action.
func DefaultCatalog() []models.Game {
	topThree := func(a, b, c int) map[int]int { return map[int]int{1: a, 2: b, 3: c} }
	winner := func(points int) map[int]int { return map[int]int{1: points} }

	return []models.Game{
		{ID: "ek", Name: "Exploding Kittens", Scoring: models.ScoringTable{3: winner(10), 4: winner(12), 5: winner(15)}},
		{ID: "hg", Name: "Halli Galli", Scoring: models.ScoringTable{4: winner(10), 5: winner(12), 6: winner(15)}},
		{ID: "so", Name: "Saco de Ossos", Scoring: models.ScoringTable{2: winner(3)}},
		{ID: "fm", Name: "Futebol de Moeda", Scoring: models.ScoringTable{2: winner(3)}},
		{ID: "cp", Name: "Coup", Scoring: models.ScoringTable{4: winner(20), 5: winner(22), 6: winner(25)}},
		{ID: "ttr", Name: "Ticket to Ride", Scoring: models.ScoringTable{
			3: topThree(60, 30, 20), 4: topThree(70, 35, 23), 5: topThree(80, 40, 26),
		}},
		{ID: "kot", Name: "King of Tokyo", Scoring: models.ScoringTable{
			6: topThree(80, 40, 26), 7: topThree(90, 45, 30), 8: topThree(100, 50, 33),
		}},
		{ID: "pt", Name: "Paper Town", Scoring: models.ScoringTable{3: topThree(40, 20, 0), 4: topThree(50, 25, 13)}},
		{ID: "qz", Name: "Quartz", Scoring: models.ScoringTable{3: topThree(40, 20, 0), 4: topThree(50, 25, 13)}},
		{ID: "ab", Name: "Abstratus", Scoring: models.ScoringTable{3: topThree(40, 20, 0), 4: topThree(50, 25, 13)}},
		{ID: "im", Name: "Imagine", Scoring: models.ScoringTable{
			6: topThree(40, 20, 13), 7: topThree(50, 25, 16), 8: topThree(60, 30, 20),
		}},
		{ID: "dx", Name: "Dixit", Scoring: models.ScoringTable{
			6: topThree(40, 20, 13), 7: topThree(50, 25, 16), 8: topThree(60, 30, 20),
		}},
		{ID: "tu", Name: "Times Up", IsPlusRule: true, Scoring: models.ScoringTable{4: winner(30)}},
		{ID: "mf", Name: "Mille Fiori", Scoring: models.ScoringTable{4: topThree(100, 50, 33)}},
		{ID: "7w", Name: "7 Wonders", Scoring: models.ScoringTable{
			5: topThree(70, 35, 23), 6: topThree(85, 42, 28), 7: topThree(100, 50, 33),
		}},
	}
}
