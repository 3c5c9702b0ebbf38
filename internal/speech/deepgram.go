package speech

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/websocket/interfaces"
	clientinterfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces/v1"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/speak"

	"github.com/TerrellBlash/solace-vite/internal/media"
)

// Deepgram is an alternative synthesizer. It speaks the text over Deepgram's
// websocket API and collects the streamed linear16 frames into a single clip.
type Deepgram struct {
	apiKey     string
	model      string
	sampleRate int
}

func NewDeepgram(apiKey, model string) *Deepgram {
	if model == "" {
		model = "aura-2-thalia-en"
	}
	return &Deepgram{apiKey: apiKey, model: model, sampleRate: 48000}
}

func (d *Deepgram) Synthesize(ctx context.Context, text string) (media.Clip, error) {
	if d.apiKey == "" {
		return media.Clip{}, fmt.Errorf("speech: deepgram api key missing")
	}
	if text == "" {
		return media.Clip{}, nil
	}

	options := &clientinterfaces.WSSpeakOptions{
		Model:      d.model,
		Encoding:   "linear16",
		SampleRate: d.sampleRate,
	}

	var (
		mu       sync.Mutex
		buf      bytes.Buffer
		lastRecv time.Time
	)
	cb := &collectCallback{onBinary: func(data []byte) error {
		if len(data) == 0 {
			return nil
		}
		mu.Lock()
		buf.Write(data)
		lastRecv = time.Now()
		mu.Unlock()
		return nil
	}}

	dg, err := speak.NewWSUsingCallback(ctx, d.apiKey, &clientinterfaces.ClientOptions{}, options, cb)
	if err != nil {
		return media.Clip{}, fmt.Errorf("speech: deepgram ws client: %w", err)
	}
	defer dg.Stop()

	if ok := dg.Connect(); !ok {
		return media.Clip{}, fmt.Errorf("speech: deepgram connect failed")
	}
	if err := dg.SpeakWithText(text); err != nil {
		return media.Clip{}, fmt.Errorf("speech: deepgram speak: %w", err)
	}
	if err := dg.Flush(); err != nil {
		log.Printf("speech: deepgram flush: %v", err)
	}

	// Synthesis is complete once audio has arrived and then gone quiet for an
	// idle window, or the overall deadline passes.
	idleWindow := 400 * time.Millisecond
	deadline := time.Now().Add(12 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return media.Clip{}, ctx.Err()
		case <-ticker.C:
			mu.Lock()
			got := buf.Len() > 0
			quiet := got && time.Since(lastRecv) > idleWindow
			mu.Unlock()
			if quiet || time.Now().After(deadline) {
				mu.Lock()
				data := make([]byte, buf.Len())
				copy(data, buf.Bytes())
				mu.Unlock()
				if len(data) == 0 {
					return media.Clip{}, nil
				}
				mime := fmt.Sprintf("audio/pcm;rate=%d", d.sampleRate)
				return media.Clip{MIME: mime, Data: data}, nil
			}
		}
	}
}

type collectCallback struct{ onBinary func([]byte) error }

func (c *collectCallback) Open(*msginterfaces.OpenResponse) error         { return nil }
func (c *collectCallback) Metadata(*msginterfaces.MetadataResponse) error { return nil }
func (c *collectCallback) Flush(*msginterfaces.FlushedResponse) error     { return nil }
func (c *collectCallback) Clear(*msginterfaces.ClearedResponse) error     { return nil }
func (c *collectCallback) Close(*msginterfaces.CloseResponse) error       { return nil }
func (c *collectCallback) Warning(*msginterfaces.WarningResponse) error   { return nil }
func (c *collectCallback) Error(*msginterfaces.ErrorResponse) error       { return nil }
func (c *collectCallback) UnhandledEvent([]byte) error                    { return nil }
func (c *collectCallback) Binary(byMsg []byte) error {
	if c.onBinary != nil {
		return c.onBinary(byMsg)
	}
	return nil
}
