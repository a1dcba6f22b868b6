package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/daniel-lerner/lerners-game-tournament/audio"
	"github.com/daniel-lerner/lerners-game-tournament/narrator"
)

type fakeNarrator struct {
	text      string
	speech    []byte
	commentEr error
	speakErr  error
	prompts   []string
}

func (f *fakeNarrator) Comment(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.commentEr
}

func (f *fakeNarrator) Speak(ctx context.Context, text string) ([]byte, error) {
	return f.speech, f.speakErr
}

// tenthOfSecond is 0.1s of silence at the speech sample rate.
var tenthOfSecond = make([]byte, audio.SpeechSampleRate/10*2)

func commentaryEnv(t *testing.T, n narrator.Narrator, withMatch bool) (*testEnv, CommentaryService) {
	t.Helper()
	env := newTestEnv(t, envOptions{})
	ids := env.addPlayers(t, testEdition, "Ana", "Bruno")
	if withMatch {
		if _, err := env.matches.CommitMatch(env.ctx, CommitMatchInput{GameID: "so", Entries: entries(ids, 1, 2)}); err != nil {
			t.Fatalf("commit failed: %v", err)
		}
	}
	return env, NewCommentaryService(n, env.cache, testEdition, nil, env.logger)
}

func TestCommentaryWithoutMatches(t *testing.T) {
	fake := &fakeNarrator{text: "unused"}
	env, svc := commentaryEnv(t, fake, false)

	c, err := svc.Generate(env.ctx)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if c.Text != NoMatchesText || c.HasAudio {
		t.Fatalf("unexpected commentary %+v", c)
	}
	if len(fake.prompts) != 0 {
		t.Fatal("narrator must not be called without matches")
	}
}

func TestCommentaryWithSpeech(t *testing.T) {
	fake := &fakeNarrator{text: "Ana is on fire!", speech: tenthOfSecond}
	env, svc := commentaryEnv(t, fake, true)

	c, err := svc.Generate(env.ctx)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if c.Text != "Ana is on fire!" || !c.HasAudio || c.Duration.Milliseconds() != 100 {
		t.Fatalf("unexpected commentary %+v", c)
	}
	if !strings.Contains(fake.prompts[0], "Saco de Ossos (won by Ana)") {
		t.Fatalf("prompt is missing the latest match: %q", fake.prompts[0])
	}

	latest, ok := svc.Latest(env.ctx)
	if !ok || latest.Text != c.Text {
		t.Fatalf("latest commentary not kept: %+v", latest)
	}

	var wav bytes.Buffer
	if err := svc.WriteSpeech(&wav); err != nil {
		t.Fatalf("write speech failed: %v", err)
	}
	if wav.Len() != 44+len(tenthOfSecond) || !bytes.HasPrefix(wav.Bytes(), []byte("RIFF")) {
		t.Fatalf("unexpected wav of %d bytes", wav.Len())
	}

	status, err := svc.Playback(env.ctx, PlaybackToggle)
	if err != nil || status.State != audio.Playing {
		t.Fatalf("expected playing, got %+v, %v", status, err)
	}
	status, _ = svc.Playback(env.ctx, PlaybackStop)
	if status.State != audio.Idle {
		t.Fatalf("expected idle after stop, got %+v", status)
	}
	if _, err := svc.Playback(env.ctx, "rewind"); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected unknown action to fail validation, got %v", err)
	}
}

func TestCommentaryEmptyTextAndMissingAudio(t *testing.T) {
	fake := &fakeNarrator{speakErr: narrator.ErrNoAudio}
	env, svc := commentaryEnv(t, fake, true)

	c, err := svc.Generate(env.ctx)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if c.Text != EmptyText || c.HasAudio {
		t.Fatalf("unexpected commentary %+v", c)
	}
	if err := svc.WriteSpeech(&bytes.Buffer{}); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
	if _, err := svc.Playback(env.ctx, PlaybackPlay); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestCommentaryNarratorFailure(t *testing.T) {
	for name, fake := range map[string]*fakeNarrator{
		"comment": {commentEr: errors.New("quota exceeded")},
		"speak":   {text: "hello", speakErr: errors.New("tts down")},
	} {
		env, svc := commentaryEnv(t, fake, true)
		c, err := svc.Generate(env.ctx)
		if !errors.Is(err, ErrNarratorUnavailable) {
			t.Fatalf("%s: expected ErrNarratorUnavailable, got %v", name, err)
		}
		if c == nil || c.Text != ApologyText {
			t.Fatalf("%s: expected the apology text, got %+v", name, c)
		}
	}
}

func TestCommentaryDisabledNarrator(t *testing.T) {
	env, svc := commentaryEnv(t, narrator.Disabled{}, true)
	if _, err := svc.Generate(env.ctx); !errors.Is(err, narrator.ErrNotConfigured) {
		t.Fatalf("expected the disabled narrator error to be wrapped, got %v", err)
	}
}
