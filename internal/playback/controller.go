package playback

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/TerrellBlash/solace-vite/internal/media"
	"github.com/TerrellBlash/solace-vite/internal/speech"
)

// TicketState is the lifecycle of one playback request.
type TicketState int

const (
	StateRequesting TicketState = iota
	StatePlaying
)

// Sink delivers a synthesized clip to the listener and blocks until playback
// finishes naturally or ctx is cancelled.
type Sink interface {
	Play(ctx context.Context, turn int, clip media.Clip) error
}

type ticket struct {
	turn   int
	state  TicketState
	cancel context.CancelFunc
}

// Controller manages single-flight speech playback. At most one ticket is
// active at a time: toggling the active turn stops it, toggling a different
// turn supersedes the active ticket before the new one reaches PLAYING, and a
// synthesis result with no audio clears the ticket silently.
type Controller struct {
	synth speech.Synthesizer
	sink  Sink

	mu     sync.Mutex
	active *ticket
}

func NewController(synth speech.Synthesizer, sink Sink) *Controller {
	return &Controller{synth: synth, sink: sink}
}

// Toggle starts speaking the given turn, or stops it when it is already the
// active one.
func (c *Controller) Toggle(ctx context.Context, text string, turn int) {
	c.mu.Lock()
	if t := c.active; t != nil {
		c.active = nil
		c.mu.Unlock()
		t.cancel()
		if t.turn == turn {
			return
		}
		c.mu.Lock()
	}
	tctx, cancel := context.WithCancel(ctx)
	tk := &ticket{turn: turn, state: StateRequesting, cancel: cancel}
	c.active = tk
	c.mu.Unlock()

	go c.run(tctx, tk, text)
}

// Stop clears whatever ticket is active.
func (c *Controller) Stop() {
	c.mu.Lock()
	t := c.active
	c.active = nil
	c.mu.Unlock()
	if t != nil {
		t.cancel()
	}
}

// Active reports the active ticket's turn, if any.
func (c *Controller) Active() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return 0, false
	}
	return c.active.turn, true
}

// Playing reports the turn currently being played back, if any.
func (c *Controller) Playing() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.state != StatePlaying {
		return 0, false
	}
	return c.active.turn, true
}

func (c *Controller) run(ctx context.Context, tk *ticket, text string) {
	defer c.clear(tk)

	clip, err := c.synth.Synthesize(ctx, text)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("playback: synthesis failed for turn %d: %v", tk.turn, err)
		}
		return
	}
	if clip.Empty() {
		return
	}

	c.mu.Lock()
	if c.active != tk {
		// superseded while the request was in flight
		c.mu.Unlock()
		return
	}
	tk.state = StatePlaying
	c.mu.Unlock()

	if err := c.sink.Play(ctx, tk.turn, clip); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("playback: turn %d: %v", tk.turn, err)
	}
}

func (c *Controller) clear(tk *ticket) {
	c.mu.Lock()
	if c.active == tk {
		c.active = nil
	}
	c.mu.Unlock()
	tk.cancel()
}
