package chat

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/TerrellBlash/solace-vite/internal/transcript"
)

const systemInstruction = `You are a compassionate, gentle, and supportive grief companion.
Your goal is to listen, validate feelings, and offer gentle comfort.
Keep responses warm, human, and concise (under 3 sentences unless asked for more).
Never offer medical advice. Use a soothing tone.
Address the user with care.`

const (
	defaultFastModel = "gemini-2.5-flash-lite"
	defaultDeepModel = "gemini-3-pro-preview"

	// thinking budget used when the deep-reflection profile is selected
	deepThinkingBudget = 32768
)

// Gemini streams companion replies from the Gemini API. The fast model is the
// low-latency default; deep mode switches to the pro model with a thinking
// budget.
type Gemini struct {
	client    *genai.Client
	fastModel string
	deepModel string
}

func NewGemini(client *genai.Client, fastModel, deepModel string) *Gemini {
	if fastModel == "" {
		fastModel = defaultFastModel
	}
	if deepModel == "" {
		deepModel = defaultDeepModel
	}
	return &Gemini{client: client, fastModel: fastModel, deepModel: deepModel}
}

// StreamReply opens a streaming chat request carrying the prior transcript and
// the new message, and forwards each text fragment in delivery order.
func (g *Gemini) StreamReply(ctx context.Context, history []transcript.Turn, message string, deep bool) (<-chan string, <-chan error) {
	frags := make(chan string, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(frags)
		defer close(errCh)

		model := g.fastModel
		cfg := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		}
		if deep {
			model = g.deepModel
			cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(deepThinkingBudget))}
		}

		prior := make([]*genai.Content, 0, len(history))
		for _, t := range history {
			var role genai.Role = genai.RoleUser
			if t.Role == transcript.RoleModel {
				role = genai.RoleModel
			}
			prior = append(prior, genai.NewContentFromText(t.Text, role))
		}

		session, err := g.client.Chats.Create(ctx, model, cfg, prior)
		if err != nil {
			errCh <- fmt.Errorf("chat: create session: %w", err)
			return
		}

		for resp, err := range session.SendMessageStream(ctx, genai.Part{Text: message}) {
			if err != nil {
				errCh <- fmt.Errorf("chat: stream: %w", err)
				return
			}
			txt := resp.Text()
			if txt == "" {
				continue
			}
			select {
			case frags <- txt:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return frags, errCh
}
