package mediagen

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/TerrellBlash/solace-vite/internal/media"
)

type fakeVideo struct {
	ops      []*genai.GenerateVideosOperation // results of successive polls
	started  int
	polled   int
	startErr error
	pollErr  error
	payload  []byte
	fetched  []string
}

func (f *fakeVideo) start(ctx context.Context, img media.Clip, prompt string) (*genai.GenerateVideosOperation, error) {
	f.started++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &genai.GenerateVideosOperation{Done: false}, nil
}

func (f *fakeVideo) poll(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	next := f.ops[f.polled]
	f.polled++
	return next, nil
}

func (f *fakeVideo) download(ctx context.Context, uri string) ([]byte, error) {
	f.fetched = append(f.fetched, uri)
	return f.payload, nil
}

type memStore struct {
	key  string
	mime string
	data []byte
}

func (m *memStore) Put(key, contentType string, data []byte) (string, error) {
	m.key, m.mime, m.data = key, contentType, data
	return "/media/" + key, nil
}

func doneOp(uri, mime string) *genai.GenerateVideosOperation {
	return &genai.GenerateVideosOperation{
		Done: true,
		Response: &genai.GenerateVideosResponse{
			GeneratedVideos: []*genai.GeneratedVideo{
				{Video: &genai.Video{URI: uri, MIMEType: mime}},
			},
		},
	}
}

func newTestClient(v videoBackend, store *memStore, opts ...Option) *Client {
	c := New(nil, "key", store, opts...)
	c.video = v
	return c
}

func TestAnimate_PollsUntilDoneWithFixedWaits(t *testing.T) {
	fv := &fakeVideo{
		ops: []*genai.GenerateVideosOperation{
			{Done: false},
			doneOp("https://files.example/video?alt=media", "video/mp4"),
		},
		payload: []byte("mp4-bytes"),
	}
	store := &memStore{}
	var waits []time.Duration
	c := newTestClient(fv, store)
	c.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	clip, ref, err := c.AnimateImage(context.Background(), media.Clip{MIME: "image/png", Data: []byte{1}}, "")
	if err != nil {
		t.Fatalf("animate: %v", err)
	}
	if fv.polled != 2 {
		t.Fatalf("expected exactly 2 status fetches, got %d", fv.polled)
	}
	if len(waits) != 2 {
		t.Fatalf("expected a wait before each fetch, got %d", len(waits))
	}
	for _, d := range waits {
		if d != defaultPollInterval {
			t.Fatalf("wait interval: got %v want %v", d, defaultPollInterval)
		}
	}
	if !bytes.Equal(clip.Data, []byte("mp4-bytes")) || clip.MIME != "video/mp4" {
		t.Fatalf("clip mismatch: %+v", clip)
	}
	if ref != "/media/"+store.key {
		t.Fatalf("handle mismatch: %q vs stored key %q", ref, store.key)
	}
	if store.mime != "video/mp4" {
		t.Fatalf("stored mime: got %q", store.mime)
	}
}

func TestAnimate_MaxPollsTimesOut(t *testing.T) {
	fv := &fakeVideo{ops: []*genai.GenerateVideosOperation{
		{Done: false}, {Done: false}, {Done: false},
	}}
	c := newTestClient(fv, &memStore{}, WithMaxPolls(1))
	c.wait = func(ctx context.Context, d time.Duration) error { return nil }

	_, _, err := c.AnimateImage(context.Background(), media.Clip{Data: []byte{1}}, "go")
	if !errors.Is(err, ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
	if fv.polled != 1 {
		t.Fatalf("expected a single poll before timing out, got %d", fv.polled)
	}
}

func TestAnimate_ContextCancelDuringWait(t *testing.T) {
	fv := &fakeVideo{ops: []*genai.GenerateVideosOperation{{Done: false}}}
	c := newTestClient(fv, &memStore{})
	c.wait = func(ctx context.Context, d time.Duration) error { return context.Canceled }

	_, _, err := c.AnimateImage(context.Background(), media.Clip{Data: []byte{1}}, "go")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAnimate_DoneWithoutVideoFails(t *testing.T) {
	fv := &fakeVideo{ops: []*genai.GenerateVideosOperation{{Done: true}}}
	c := newTestClient(fv, &memStore{})
	c.wait = func(ctx context.Context, d time.Duration) error { return nil }

	if _, _, err := c.AnimateImage(context.Background(), media.Clip{Data: []byte{1}}, "go"); err == nil {
		t.Fatalf("expected error when operation finishes without a video")
	}
}

func TestAnimate_EmptyImageRejected(t *testing.T) {
	c := newTestClient(&fakeVideo{}, &memStore{})
	if _, _, err := c.AnimateImage(context.Background(), media.Clip{}, "go"); err == nil {
		t.Fatalf("expected error for empty source image")
	}
}

func TestGenerateImage_AspectValidation(t *testing.T) {
	c := New(nil, "key", &memStore{})
	if _, err := c.GenerateImage(context.Background(), "a candle", "2:7"); err == nil {
		t.Fatalf("expected unsupported aspect ratio error")
	}
	for _, r := range []string{"1:1", "3:4", "4:3", "9:16", "16:9"} {
		if !ValidAspectRatio(r) {
			t.Fatalf("ratio %q should be valid", r)
		}
	}
}

func TestStub_ServesPlaceholders(t *testing.T) {
	store := &memStore{}
	s := NewStub(store)
	img, err := s.GenerateImage(context.Background(), "a garden", "")
	if err != nil || img.Empty() || img.MIME != "image/png" {
		t.Fatalf("generate: clip=%+v err=%v", img, err)
	}
	if _, err := s.EditImage(context.Background(), media.Clip{}, "warmer"); err == nil {
		t.Fatalf("edit without image must fail")
	}
	_, ref, err := s.AnimateImage(context.Background(), img, "")
	if err != nil || ref == "" {
		t.Fatalf("animate: ref=%q err=%v", ref, err)
	}
}
