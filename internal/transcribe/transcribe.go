package transcribe

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/TerrellBlash/solace-vite/internal/media"
)

// Transcriber turns a recorded audio clip into best-effort text. An empty
// string with a nil error means the provider answered but produced no usable
// text; callers treat both that and an error as "couldn't transcribe" and
// never fail the conversation over it.
type Transcriber interface {
	Transcribe(ctx context.Context, clip media.Clip) (string, error)
}

const (
	defaultModel = "gemini-2.5-flash"

	// mime applied when the capture stream did not declare one
	fallbackMIME = "audio/webm"

	instruction = "Transcribe the spoken audio exactly."
)

// Gemini transcribes audio clips with a single inline-audio generate call.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(client *genai.Client) *Gemini {
	return &Gemini{client: client, model: defaultModel}
}

func (g *Gemini) Transcribe(ctx context.Context, clip media.Clip) (string, error) {
	if clip.Empty() {
		return "", nil
	}
	mime := clip.MIME
	if mime == "" {
		mime = fallbackMIME
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(clip.Data, mime),
		genai.NewPartFromText(instruction),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// Stub stands in when no API key is configured.
type Stub struct{}

func (Stub) Transcribe(ctx context.Context, clip media.Clip) (string, error) {
	if clip.Empty() {
		return "", nil
	}
	return "I recorded a voice note while offline.", nil
}
