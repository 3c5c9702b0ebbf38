package companion

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/TerrellBlash/solace-vite/internal/chat"
	"github.com/TerrellBlash/solace-vite/internal/media"
	"github.com/TerrellBlash/solace-vite/internal/transcribe"
	"github.com/TerrellBlash/solace-vite/internal/transcript"
)

// EventKind labels transcript notifications delivered to the consumer.
type EventKind string

const (
	EventTurnCreated      EventKind = "turn-created"
	EventTurnUpdated      EventKind = "turn-updated"
	EventTurnClosed       EventKind = "turn-closed"
	EventTranscriptFailed EventKind = "transcript-failed"
)

// Event is one transcript notification. Turn carries the entry's current
// state so consumers can re-render by index.
type Event struct {
	Kind  EventKind
	Index int
	Turn  transcript.Turn
}

// apologyText is appended as the model's reply when the stream fails.
const apologyText = "I'm having a little trouble connecting right now. Please try again in a moment."

// DefaultGreeting opens every conversation.
const DefaultGreeting = "Hello. How is your heart feeling today?"

// Session ties the transcript store, the reply streamer and the transcriber
// into one conversation. Submissions are serialized: a second Submit waits
// for the first to reach a terminal state. The session is the only writer of
// its transcript store.
type Session struct {
	streamer    chat.Streamer
	transcriber transcribe.Transcriber
	onEvent     func(Event)
	store       *transcript.Store

	// serializes submissions end to end
	submitMu sync.Mutex

	mu   sync.Mutex
	busy bool
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	greeting string
}

// WithGreeting overrides the opening model turn; empty disables it.
func WithGreeting(text string) SessionOption {
	return func(c *sessionConfig) { c.greeting = text }
}

// NewSession constructs a Session. onEvent may be nil.
func NewSession(streamer chat.Streamer, transcriber transcribe.Transcriber, onEvent func(Event), opts ...SessionOption) *Session {
	cfg := sessionConfig{greeting: DefaultGreeting}
	for _, o := range opts {
		o(&cfg)
	}
	s := &Session{
		streamer:    streamer,
		transcriber: transcriber,
		onEvent:     onEvent,
		store:       transcript.NewStore(),
	}
	if cfg.greeting != "" {
		s.store.Append(transcript.RoleModel, cfg.greeting)
	}
	return s
}

// Busy reports whether a submission is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Transcript returns a snapshot of the conversation.
func (s *Session) Transcript() []transcript.Turn {
	return s.store.Turns()
}

// Turn returns the transcript entry at index i.
func (s *Session) Turn(i int) (transcript.Turn, bool) {
	return s.store.Turn(i)
}

func (s *Session) setBusy(v bool) {
	s.mu.Lock()
	s.busy = v
	s.mu.Unlock()
}

func (s *Session) emit(kind EventKind, idx int) {
	if s.onEvent == nil {
		return
	}
	turn, _ := s.store.Turn(idx)
	s.onEvent(Event{Kind: kind, Index: idx, Turn: turn})
}

// Submit appends a user turn and streams the model's reply into a new model
// turn, emitting one TurnCreated on the first fragment and TurnUpdated per
// fragment after that. Empty or whitespace-only text is a no-op. If the
// stream fails at any point the partial reply (if any) is preserved as-is and
// a fixed apology turn is appended; the transcript is always left consistent.
// Submit blocks until the submission reaches a terminal state.
func (s *Session) Submit(ctx context.Context, text string, deep bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.submitMu.Lock()
	defer s.submitMu.Unlock()
	s.setBusy(true)
	defer s.setBusy(false)

	// prior transcript excludes the user turn being submitted
	history := s.store.Turns()
	idx := s.store.Append(transcript.RoleUser, text)
	s.emit(EventTurnCreated, idx)

	frags, errCh := s.streamer.StreamReply(ctx, history, text, deep)

	var open *transcript.OpenTurn
	var streamErr error
	openFrags, openErrs := true, true
	for openFrags || openErrs {
		select {
		case f, ok := <-frags:
			if !ok {
				openFrags = false
				frags = nil
				continue
			}
			if f == "" {
				continue
			}
			if open == nil {
				open = s.store.OpenModel(f)
				s.emit(EventTurnCreated, open.Index())
			} else {
				open.Append(f)
				s.emit(EventTurnUpdated, open.Index())
			}
		case e, ok := <-errCh:
			if !ok {
				openErrs = false
				errCh = nil
				continue
			}
			if e != nil && streamErr == nil {
				streamErr = e
			}
		}
	}

	if open != nil {
		open.Close()
		s.emit(EventTurnClosed, open.Index())
	}
	if streamErr != nil {
		log.Printf("companion: reply stream failed: %v", streamErr)
		aidx := s.store.Append(transcript.RoleModel, apologyText)
		s.emit(EventTurnCreated, aidx)
		s.emit(EventTurnClosed, aidx)
		return streamErr
	}
	return nil
}

// SubmitVoice transcribes the clip and feeds the text through Submit. A clip
// that yields no usable text emits a TranscriptFailed event and leaves the
// transcript untouched; transcription problems are never fatal.
func (s *Session) SubmitVoice(ctx context.Context, clip media.Clip, deep bool) error {
	text, err := s.transcriber.Transcribe(ctx, clip)
	if err != nil {
		log.Printf("companion: transcription failed: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		if s.onEvent != nil {
			s.onEvent(Event{Kind: EventTranscriptFailed, Index: -1})
		}
		return nil
	}
	return s.Submit(ctx, text, deep)
}
