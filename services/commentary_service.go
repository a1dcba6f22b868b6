package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/daniel-lerner/lerners-game-tournament/audio"
	"github.com/daniel-lerner/lerners-game-tournament/narrator"
	"github.com/daniel-lerner/lerners-game-tournament/ranking"
	"github.com/daniel-lerner/lerners-game-tournament/realtime"
)

const (
	NoMatchesText = "Play at least one match so I have something to talk about!"
	EmptyText     = "No comments for such a shameful table."
	ApologyText   = "Master Lerner went out for a coffee. Check the narrator API key."
)

type Commentary struct {
	Text        string        `json:"text"`
	HasAudio    bool          `json:"hasAudio"`
	Duration    time.Duration `json:"duration"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

type PlaybackAction string

const (
	PlaybackToggle PlaybackAction = "toggle"
	PlaybackPlay   PlaybackAction = "play"
	PlaybackPause  PlaybackAction = "pause"
	PlaybackResume PlaybackAction = "resume"
	PlaybackStop   PlaybackAction = "stop"
)

type CommentaryService interface {
	Generate(ctx context.Context) (*Commentary, error)
	Latest(ctx context.Context) (*Commentary, bool)
	WriteSpeech(w io.Writer) error
	Playback(ctx context.Context, action PlaybackAction) (audio.Status, error)
}

type commentaryService struct {
	narrator narrator.Narrator
	cache    *StateCache
	edition  string
	playback *audio.Playback
	notifier ChangeNotifier
	logger   *slog.Logger
	now      func() time.Time

	genMu  sync.Mutex
	mu     sync.RWMutex
	latest *Commentary
}

func NewCommentaryService(n narrator.Narrator, cache *StateCache, edition string, notifier ChangeNotifier, logger *slog.Logger) CommentaryService {
	return &commentaryService{
		narrator: n,
		cache:    cache,
		edition:  edition,
		playback: audio.NewPlayback(time.Now),
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate просит у комментатора текст по текущему рейтингу и последним матчам,
// затем озвучивает его. Одновременно идёт только одна генерация.
func (s *commentaryService) Generate(ctx context.Context) (*Commentary, error) {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	snap := s.cache.Snapshot()
	if len(snap.Matches) == 0 {
		return s.store(&Commentary{Text: NoMatchesText, GeneratedAt: s.now()}, nil), nil
	}

	prompt := narrator.Prompt(ranking.Rank(snap.Players, s.edition), buildHistory(snap, snap.Matches))
	text, err := s.narrator.Comment(ctx, prompt)
	if err != nil {
		return s.fail(err)
	}
	if text == "" {
		text = EmptyText
	}

	speech, err := s.narrator.Speak(ctx, text)
	switch {
	case errors.Is(err, narrator.ErrNoAudio):
		s.logger.Warn("narrator returned no audio", "error", err)
		return s.store(&Commentary{Text: text, GeneratedAt: s.now()}, nil), nil
	case err != nil:
		return s.fail(err)
	}

	buf, err := audio.DecodePCM16LE(speech, audio.SpeechSampleRate, audio.SpeechChannels)
	if err != nil {
		return s.fail(err)
	}
	return s.store(&Commentary{Text: text, HasAudio: true, Duration: buf.Duration(), GeneratedAt: s.now()}, buf), nil
}

func (s *commentaryService) fail(err error) (*Commentary, error) {
	s.logger.Error("narrator failed", "error", err)
	c := s.store(&Commentary{Text: ApologyText, GeneratedAt: s.now()}, nil)
	return c, fmt.Errorf("%w: %w", ErrNarratorUnavailable, err)
}

// store запоминает комментарий; новая речь заменяет старую, без речи плеер очищается.
func (s *commentaryService) store(c *Commentary, buf *audio.Buffer) *Commentary {
	s.mu.Lock()
	s.latest = c
	s.mu.Unlock()
	s.playback.Load(buf)
	return c
}

func (s *commentaryService) Latest(ctx context.Context) (*Commentary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, false
	}
	c := *s.latest
	return &c, true
}

func (s *commentaryService) WriteSpeech(w io.Writer) error {
	buf := s.playback.Buffer()
	if buf == nil {
		return ErrNoSpeech
	}
	return audio.EncodeWAV(w, buf)
}

// Playback управляет общим воспроизведением; состояние рассылается всем экранам.
func (s *commentaryService) Playback(ctx context.Context, action PlaybackAction) (audio.Status, error) {
	var (
		status audio.Status
		err    error
	)
	switch action {
	case PlaybackToggle, "":
		status, err = s.playback.Toggle()
	case PlaybackPlay:
		status, err = s.playback.Play()
	case PlaybackPause:
		status = s.playback.Pause()
	case PlaybackResume:
		status = s.playback.Resume()
	case PlaybackStop:
		status = s.playback.Stop()
	default:
		return audio.Status{}, fmt.Errorf("%w: unknown playback action %q", ErrValidationFailed, action)
	}
	if errors.Is(err, audio.ErrNothingLoaded) {
		return status, ErrNoSpeech
	}
	if err != nil {
		return status, err
	}

	if s.notifier != nil {
		s.notifier.Broadcast(realtime.MessagePlayback, s.edition, status)
	}
	return status, nil
}
