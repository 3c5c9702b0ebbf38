package httpserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/TerrellBlash/solace-vite/internal/capture"
	"github.com/TerrellBlash/solace-vite/internal/companion"
	"github.com/TerrellBlash/solace-vite/internal/media"
	"github.com/TerrellBlash/solace-vite/internal/playback"
	"github.com/TerrellBlash/solace-vite/internal/transcript"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  65536,
	WriteBufferSize: 65536,
	CheckOrigin: func(r *http.Request) bool {
		// the UI is served from arbitrary dev origins
		return true
	},
}

// wsMessage is a control frame from the UI. Binary frames carry audio chunks
// while a recording is active.
type wsMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Deep bool   `json:"deep,omitempty"`
	Turn *int   `json:"turn,omitempty"`
}

// wsEvent is a frame to the UI.
type wsEvent struct {
	Type  string `json:"type"`
	Index int    `json:"index,omitempty"`
	Role  string `json:"role,omitempty"`
	Text  string `json:"text,omitempty"`
	Turn  int    `json:"turn,omitempty"`
	Media string `json:"media,omitempty"`
	Error string `json:"error,omitempty"`
}

// wsWriter serializes writes; gorilla permits one concurrent writer only.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) send(ev wsEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(ev)
}

// session runs one conversation over a websocket: transcript events out,
// control messages and recorded audio chunks in.
func (h *handlers) session(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &wsWriter{conn: conn}
	device := capture.NewPushDevice("")
	recorder := capture.NewRecorder(device)
	sink := &wsSink{w: w}
	player := playback.NewController(h.deps.Synthesizer, sink)
	defer player.Stop()
	defer recorder.Cancel()

	opts := []companion.SessionOption{}
	if h.deps.Greeting != "" {
		opts = append(opts, companion.WithGreeting(h.deps.Greeting))
	}
	sess := companion.NewSession(h.deps.Streamer, h.deps.Transcriber, func(ev companion.Event) {
		if err := w.send(eventFrame(ev)); err != nil {
			log.Printf("ws event write: %v", err)
		}
	}, opts...)

	// replay the seeded transcript so the UI renders the opening turn
	for i, t := range sess.Transcript() {
		_ = w.send(wsEvent{Type: string(companion.EventTurnCreated), Index: i, Role: string(t.Role), Text: t.Text})
	}

	for {
		mt, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return nil
		}
		switch mt {
		case websocket.BinaryMessage:
			device.PushChunk(data)
		case websocket.TextMessage:
			var m wsMessage
			if jerr := json.Unmarshal(data, &m); jerr != nil {
				continue
			}
			h.dispatch(ctx, w, sess, recorder, player, sink, m)
		}
	}
}

func (h *handlers) dispatch(ctx context.Context, w *wsWriter, sess *companion.Session, recorder *capture.Recorder, player *playback.Controller, sink *wsSink, m wsMessage) {
	switch strings.ToLower(m.Type) {
	case "message":
		if strings.TrimSpace(m.Text) == "" {
			return
		}
		go func() {
			if err := sess.Submit(ctx, m.Text, m.Deep); err != nil {
				log.Printf("submission ended with stream error: %v", err)
			}
		}()
	case "record-start":
		if err := recorder.Start(ctx); err != nil {
			log.Printf("recording start failed: %v", err)
			_ = w.send(wsEvent{Type: "recording-error", Error: "Could not access microphone. Please allow permissions."})
			return
		}
		_ = w.send(wsEvent{Type: "recording-started"})
	case "record-stop":
		clip, ok := recorder.Stop()
		if !ok {
			return
		}
		go func() { _ = sess.SubmitVoice(ctx, clip, m.Deep) }()
	case "record-cancel":
		recorder.Cancel()
	case "speak":
		if m.Turn == nil {
			return
		}
		turn, ok := sess.Turn(*m.Turn)
		if !ok || turn.Role != transcript.RoleModel {
			return
		}
		player.Toggle(ctx, turn.Text, *m.Turn)
	case "audio-ended":
		sink.Ack()
	}
}

func eventFrame(ev companion.Event) wsEvent {
	return wsEvent{
		Type:  string(ev.Kind),
		Index: ev.Index,
		Role:  string(ev.Turn.Role),
		Text:  ev.Turn.Text,
	}
}

// wsSink delivers synthesized clips to the browser and treats the client's
// audio-ended message as end of natural playback.
type wsSink struct {
	w *wsWriter

	mu  sync.Mutex
	ack chan struct{}
}

func (s *wsSink) Play(ctx context.Context, turn int, clip media.Clip) error {
	ack := make(chan struct{})
	s.mu.Lock()
	s.ack = ack
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.ack == ack {
			s.ack = nil
		}
		s.mu.Unlock()
	}()

	if err := s.w.send(wsEvent{Type: "speak-start", Turn: turn, Media: clip.DataURL()}); err != nil {
		return err
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		_ = s.w.send(wsEvent{Type: "speak-stop", Turn: turn})
		return ctx.Err()
	}
}

// Ack signals that the client finished playing the current clip.
func (s *wsSink) Ack() {
	s.mu.Lock()
	ack := s.ack
	s.ack = nil
	s.mu.Unlock()
	if ack != nil {
		close(ack)
	}
}
