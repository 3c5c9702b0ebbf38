package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/TerrellBlash/solace-vite/internal/chat"
	"github.com/TerrellBlash/solace-vite/internal/media"
	"github.com/TerrellBlash/solace-vite/internal/speech"
	"github.com/TerrellBlash/solace-vite/internal/transcribe"
)

type fakeGenerator struct {
	clip media.Clip
	ref  string
	err  error
}

func (f fakeGenerator) EditImage(ctx context.Context, img media.Clip, prompt string) (media.Clip, error) {
	return f.clip, f.err
}
func (f fakeGenerator) GenerateImage(ctx context.Context, prompt, aspect string) (media.Clip, error) {
	return f.clip, f.err
}
func (f fakeGenerator) AnimateImage(ctx context.Context, img media.Clip, prompt string) (media.Clip, string, error) {
	return f.clip, f.ref, f.err
}

func testDeps(gen fakeGenerator) Deps {
	return Deps{
		Streamer:    chat.Stub{},
		Transcriber: transcribe.Stub{},
		Synthesizer: speech.Stub{},
		Media:       gen,
	}
}

func TestHealthz(t *testing.T) {
	e := New(testDeps(fakeGenerator{}))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status: %d", rec.Code)
	}
}

func TestGenerateImage_ReturnsDataURL(t *testing.T) {
	gen := fakeGenerator{clip: media.Clip{MIME: "image/png", Data: []byte{1, 2, 3}}}
	e := New(testDeps(gen))
	body := `{"prompt":"a quiet garden","aspectRatio":"3:4"}`
	req := httptest.NewRequest(http.MethodPost, "/api/media/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", rec.Code, rec.Body.String())
	}
	var resp mediaResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := media.ParseDataURL(resp.Media, "")
	if err != nil || got.MIME != "image/png" {
		t.Fatalf("media round trip failed: %v %+v", err, got)
	}
}

func TestGenerateImage_MissingPrompt(t *testing.T) {
	e := New(testDeps(fakeGenerator{}))
	req := httptest.NewRequest(http.MethodPost, "/api/media/generate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEditImage_RejectsBadPayload(t *testing.T) {
	e := New(testDeps(fakeGenerator{}))
	body := `{"image":"data:image/png;base64,%%%","prompt":"warmer light"}`
	req := httptest.NewRequest(http.MethodPost, "/api/media/edit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnimateImage_FailureIsBadGateway(t *testing.T) {
	gen := fakeGenerator{err: errors.New("veo unavailable")}
	e := New(testDeps(gen))
	img := media.Clip{MIME: "image/png", Data: []byte{9}}
	body := `{"image":"` + img.DataURL() + `","prompt":"animate"}`
	req := httptest.NewRequest(http.MethodPost, "/api/media/animate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp mediaResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error == "" {
		t.Fatalf("expected error body")
	}
}

func TestSessionSocket_GreetingAndMessageFlow(t *testing.T) {
	e := New(testDeps(fakeGenerator{}))
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// greeting replay
	var ev wsEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	if ev.Type != "turn-created" || ev.Role != "model" {
		t.Fatalf("unexpected greeting frame %+v", ev)
	}

	if err := conn.WriteJSON(wsMessage{Type: "message", Text: "I had a rough day"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var last wsEvent
	for {
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read events: %v", err)
		}
		if ev.Type == "turn-closed" {
			last = ev
			break
		}
	}
	if last.Role != "model" || last.Text == "" {
		t.Fatalf("expected closed model turn with text, got %+v", last)
	}
}
