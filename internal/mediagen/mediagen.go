package mediagen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/TerrellBlash/solace-vite/internal/media"
	"github.com/TerrellBlash/solace-vite/internal/storage"
)

// ErrTimedOut is returned by AnimateImage when MaxPolls is set and the
// operation did not finish in time.
var ErrTimedOut = errors.New("mediagen: animation timed out")

// Generator is the media-job surface the API layer consumes. Edit and
// generate resolve with a single request; animate is the long-running case
// that polls an operation and also returns a storage handle for the
// materialized video.
type Generator interface {
	EditImage(ctx context.Context, img media.Clip, prompt string) (media.Clip, error)
	GenerateImage(ctx context.Context, prompt, aspect string) (media.Clip, error)
	AnimateImage(ctx context.Context, img media.Clip, prompt string) (media.Clip, string, error)
}

const (
	editModel  = "gemini-2.5-flash-image"
	imageModel = "gemini-3-pro-image-preview"
	videoModel = "veo-3.1-fast-generate-preview"

	defaultAnimatePrompt = "Animate this image gently and naturally"
	defaultImageMIME     = "image/png"
	defaultEditMIME      = "image/jpeg"
	defaultVideoMIME     = "video/mp4"

	defaultPollInterval = 5 * time.Second
)

var aspectRatios = map[string]struct{}{
	"1:1": {}, "3:4": {}, "4:3": {}, "9:16": {}, "16:9": {},
}

// ValidAspectRatio reports whether the given ratio is one the image model
// accepts.
func ValidAspectRatio(r string) bool {
	_, ok := aspectRatios[r]
	return ok
}

// Client issues image and video generation jobs against the Gemini API.
// It keeps no job history beyond the in-flight request.
type Client struct {
	client *genai.Client
	video  videoBackend
	store  storage.Store

	pollInterval time.Duration
	maxPolls     int
	wait         func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithPollInterval overrides the fixed wait between animation status fetches.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithMaxPolls bounds the animation poll loop. Zero keeps it unbounded, which
// is the default.
func WithMaxPolls(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxPolls = n
		}
	}
}

func New(gc *genai.Client, apiKey string, store storage.Store, opts ...Option) *Client {
	c := &Client{
		client:       gc,
		video:        newGeminiVideo(gc, apiKey),
		store:        store,
		pollInterval: defaultPollInterval,
		wait:         sleepCtx,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EditImage applies the prompt to the given image and returns the edited
// image, or an error when the response carries no media payload.
func (c *Client) EditImage(ctx context.Context, img media.Clip, prompt string) (media.Clip, error) {
	if img.Empty() {
		return media.Clip{}, fmt.Errorf("mediagen: edit: no source image")
	}
	mime := img.MIME
	if mime == "" {
		mime = defaultEditMIME
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(img.Data, mime),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, editModel, contents, nil)
	if err != nil {
		return media.Clip{}, fmt.Errorf("mediagen: edit: %w", err)
	}
	out, ok := firstInlineClip(resp)
	if !ok {
		return media.Clip{}, fmt.Errorf("mediagen: edit: response carries no image")
	}
	return out, nil
}

// GenerateImage renders the prompt at the requested aspect ratio.
func (c *Client) GenerateImage(ctx context.Context, prompt, aspect string) (media.Clip, error) {
	if aspect == "" {
		aspect = "1:1"
	}
	if !ValidAspectRatio(aspect) {
		return media.Clip{}, fmt.Errorf("mediagen: generate: unsupported aspect ratio %q", aspect)
	}
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: aspect},
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, imageModel, contents, cfg)
	if err != nil {
		return media.Clip{}, fmt.Errorf("mediagen: generate: %w", err)
	}
	out, ok := firstInlineClip(resp)
	if !ok {
		return media.Clip{}, fmt.Errorf("mediagen: generate: response carries no image")
	}
	return out, nil
}

// AnimateImage starts a video animation job and polls its operation at a
// fixed interval until the provider reports completion. The finished video is
// fetched, materialized through the store, and returned along with its
// handle. With MaxPolls zero the loop is bounded only by the provider or the
// caller's context.
func (c *Client) AnimateImage(ctx context.Context, img media.Clip, prompt string) (media.Clip, string, error) {
	if img.Empty() {
		return media.Clip{}, "", fmt.Errorf("mediagen: animate: no source image")
	}
	if prompt == "" {
		prompt = defaultAnimatePrompt
	}

	job := uuid.NewString()[:8]
	op, err := c.video.start(ctx, img, prompt)
	if err != nil {
		return media.Clip{}, "", fmt.Errorf("mediagen: animate: start: %w", err)
	}

	polls := 0
	for !op.Done {
		if c.maxPolls > 0 && polls >= c.maxPolls {
			return media.Clip{}, "", fmt.Errorf("mediagen: animate [%s]: %w", job, ErrTimedOut)
		}
		if err := c.wait(ctx, c.pollInterval); err != nil {
			return media.Clip{}, "", fmt.Errorf("mediagen: animate [%s]: %w", job, err)
		}
		op, err = c.video.poll(ctx, op)
		if err != nil {
			return media.Clip{}, "", fmt.Errorf("mediagen: animate [%s]: poll: %w", job, err)
		}
		polls++
		log.Printf("[%s] animation pending (poll %d)", job, polls)
	}

	uri, mime := videoResult(op)
	if uri == "" {
		return media.Clip{}, "", fmt.Errorf("mediagen: animate [%s]: operation finished without a video", job)
	}
	data, err := c.video.download(ctx, uri)
	if err != nil {
		return media.Clip{}, "", fmt.Errorf("mediagen: animate [%s]: fetch result: %w", job, err)
	}
	if mime == "" {
		mime = defaultVideoMIME
	}
	ref, err := c.store.Put(job+extForMIME(mime), mime, data)
	if err != nil {
		return media.Clip{}, "", fmt.Errorf("mediagen: animate [%s]: %w", job, err)
	}
	log.Printf("[%s] animation ready: %s (%d bytes)", job, ref, len(data))
	return media.Clip{MIME: mime, Data: data}, ref, nil
}

func videoResult(op *genai.GenerateVideosOperation) (uri, mime string) {
	if op == nil || op.Response == nil {
		return "", ""
	}
	for _, gv := range op.Response.GeneratedVideos {
		if gv != nil && gv.Video != nil && gv.Video.URI != "" {
			return gv.Video.URI, gv.Video.MIMEType
		}
	}
	return "", ""
}

func firstInlineClip(resp *genai.GenerateContentResponse) (media.Clip, bool) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return media.Clip{MIME: part.InlineData.MIMEType, Data: part.InlineData.Data}, true
			}
		}
	}
	return media.Clip{}, false
}

func extForMIME(mime string) string {
	switch mime {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".bin"
	}
}
