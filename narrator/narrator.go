// Package narrator produces the tournament host's commentary and its speech.
package narrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daniel-lerner/lerners-game-tournament/models"
)

const DefaultPersona = "You are Master Lerner, the sharp-tongued and charismatic host of a board game " +
	"tournament. Talk fast, be sarcastic, use gamer slang and focus on the rivalries. Give the " +
	"leader a funny nickname and tease whoever is last. Keep it to 2 or 3 short sentences."

// RecentLimit is how many of the latest matches the host is told about.
const RecentLimit = 3

var (
	ErrNotConfigured = errors.New("narrator is not configured")
	ErrNoAudio       = errors.New("speech response carried no audio")
)

type Narrator interface {
	// Comment returns the host's text for prompt.
	Comment(ctx context.Context, prompt string) (string, error)
	// Speak returns text read aloud as raw 16-bit little-endian PCM, mono, 24 kHz.
	Speak(ctx context.Context, text string) ([]byte, error)
}

// Prompt describes the standings and the most recent matches to the host.
// standings are expected in ranking order and recent newest first.
func Prompt(standings []models.Standing, recent []models.MatchView) string {
	stats := make([]string, 0, len(standings))
	for _, s := range standings {
		stats = append(stats, fmt.Sprintf("%s: %d pts (%d wins)", s.Name, s.TotalPoints, s.Wins))
	}

	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	matches := make([]string, 0, len(recent))
	for _, m := range recent {
		winner := "nobody"
		if len(m.Winners) > 0 {
			winner = strings.Join(m.Winners, " & ")
		}
		matches = append(matches, fmt.Sprintf("%s (won by %s)", m.GameName, winner))
	}

	return fmt.Sprintf("Analyze this tournament: Ranking: %s. Latest matches: %s.",
		strings.Join(stats, ", "), strings.Join(matches, "; "))
}

// Disabled is used when no AI key is configured.
type Disabled struct{}

func (Disabled) Comment(context.Context, string) (string, error) { return "", ErrNotConfigured }

func (Disabled) Speak(context.Context, string) ([]byte, error) { return nil, ErrNotConfigured }
