package narrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultTextModel = "gemini-3-pro-preview"
	DefaultTTSModel  = "gemini-2.5-flash-preview-tts"
	DefaultVoice     = "Puck"
)

type GeminiConfig struct {
	APIKey    string
	TextModel string
	TTSModel  string
	Voice     string
	Persona   string
}

type Gemini struct {
	client *genai.Client
	cfg    GeminiConfig
	logger *slog.Logger
}

func NewGemini(ctx context.Context, cfg GeminiConfig, logger *slog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = DefaultTTSModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.Persona == "" {
		cfg.Persona = DefaultPersona
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, cfg: cfg, logger: logger}, nil
}

func (g *Gemini) Comment(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.TextModel, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.cfg.Persona, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("generate commentary: %w", err)
	}

	var sb strings.Builder
	for _, part := range firstParts(resp) {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (g *Gemini) Speak(ctx context.Context, text string) ([]byte, error) {
	prompt := "Say it in a sarcastic, excited tone: " + text
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.TTSModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.cfg.Voice},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate speech: %w", err)
	}

	for _, part := range firstParts(resp) {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			g.logger.Debug("Speech generated", "bytes", len(part.InlineData.Data), "mime", part.InlineData.MIMEType)
			return part.InlineData.Data, nil
		}
	}
	return nil, ErrNoAudio
}

func firstParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}
