package mediagen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/TerrellBlash/solace-vite/internal/media"
)

// videoBackend isolates the Veo operation surface so the poll loop can be
// exercised with fakes.
type videoBackend interface {
	start(ctx context.Context, img media.Clip, prompt string) (*genai.GenerateVideosOperation, error)
	poll(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
	download(ctx context.Context, uri string) ([]byte, error)
}

// fixed output profile for image animation
const (
	videoAspect     = "9:16"
	videoResolution = "720p"
)

type geminiVideo struct {
	client *genai.Client
	apiKey string
	http   *http.Client
}

func newGeminiVideo(client *genai.Client, apiKey string) *geminiVideo {
	return &geminiVideo{
		client: client,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *geminiVideo) start(ctx context.Context, img media.Clip, prompt string) (*genai.GenerateVideosOperation, error) {
	mime := img.MIME
	if mime == "" {
		mime = defaultImageMIME
	}
	image := &genai.Image{ImageBytes: img.Data, MIMEType: mime}
	cfg := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    videoAspect,
		Resolution:     videoResolution,
	}
	return g.client.Models.GenerateVideos(ctx, videoModel, prompt, image, cfg)
}

func (g *geminiVideo) poll(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return g.client.Operations.GetVideosOperation(ctx, op, nil)
}

// download fetches the finished video from its result location. The file
// endpoint expects the API key as a query parameter.
func (g *geminiVideo) download(ctx context.Context, uri string) ([]byte, error) {
	sep := "&"
	if !strings.Contains(uri, "?") {
		sep = "?"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri+sep+"key="+g.apiKey, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("video fetch status=%d body=%s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}
