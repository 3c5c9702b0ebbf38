package mediagen

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	"github.com/TerrellBlash/solace-vite/internal/media"
	"github.com/TerrellBlash/solace-vite/internal/storage"
)

// 1x1 transparent PNG
const placeholderPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// Stub serves placeholder media when no API key is configured, so the UI's
// media flows stay exercisable offline. Animation is reported as unavailable.
type Stub struct {
	store storage.Store
}

func NewStub(store storage.Store) *Stub { return &Stub{store: store} }

func (s *Stub) placeholder() media.Clip {
	data, _ := base64.StdEncoding.DecodeString(placeholderPNG)
	return media.Clip{MIME: "image/png", Data: data}
}

func (s *Stub) EditImage(ctx context.Context, img media.Clip, prompt string) (media.Clip, error) {
	if img.Empty() {
		return media.Clip{}, fmt.Errorf("mediagen: edit: no source image")
	}
	return s.placeholder(), nil
}

func (s *Stub) GenerateImage(ctx context.Context, prompt, aspect string) (media.Clip, error) {
	if aspect != "" && !ValidAspectRatio(aspect) {
		return media.Clip{}, fmt.Errorf("mediagen: generate: unsupported aspect ratio %q", aspect)
	}
	return s.placeholder(), nil
}

func (s *Stub) AnimateImage(ctx context.Context, img media.Clip, prompt string) (media.Clip, string, error) {
	if img.Empty() {
		return media.Clip{}, "", fmt.Errorf("mediagen: animate: no source image")
	}
	clip := s.placeholder()
	ref, err := s.store.Put(uuid.NewString()[:8]+".png", clip.MIME, clip.Data)
	if err != nil {
		return media.Clip{}, "", err
	}
	return clip, ref, nil
}
