package speech

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/TerrellBlash/solace-vite/internal/media"
)

// Synthesizer produces a spoken-audio clip for the given text. An empty clip
// with a nil error means the provider answered but returned no audio; playback
// treats that as a silent failure.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (media.Clip, error)
}

const (
	defaultModel = "gemini-2.5-flash-preview-tts"
	defaultVoice = "Kore"
)

// Gemini synthesizes speech through the Gemini TTS model with a fixed
// prebuilt voice.
type Gemini struct {
	client *genai.Client
	model  string
	voice  string
}

func NewGemini(client *genai.Client) *Gemini {
	return &Gemini{client: client, model: defaultModel, voice: defaultVoice}
}

func (g *Gemini) Synthesize(ctx context.Context, text string) (media.Clip, error) {
	if text == "" {
		return media.Clip{}, nil
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	}
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return media.Clip{}, fmt.Errorf("speech: %w", err)
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return media.Clip{MIME: part.InlineData.MIMEType, Data: part.InlineData.Data}, nil
			}
		}
	}
	return media.Clip{}, nil
}

// Stub stands in when no synthesis provider is configured; it always reports
// no audio.
type Stub struct{}

func (Stub) Synthesize(ctx context.Context, text string) (media.Clip, error) {
	return media.Clip{}, nil
}
