package capture

import (
	"context"
	"errors"
	"sync"

	"github.com/TerrellBlash/solace-vite/internal/media"
)

// ErrPermissionDenied is returned by Start when the capture device cannot be
// acquired.
var ErrPermissionDenied = errors.New("capture: permission denied")

// ErrActive is returned by Start while a recording is already in progress.
var ErrActive = errors.New("capture: recording already in progress")

// State is the recorder lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateFinalizing
)

// Stream is an acquired capture source. Chunks closes when the stream is
// closed; MIME reports the stream's native encoding.
type Stream interface {
	Chunks() <-chan []byte
	MIME() string
	Close() error
}

// Device acquires the capture source. Acquire fails with ErrPermissionDenied
// when the source is unavailable or already held.
type Device interface {
	Acquire(ctx context.Context) (Stream, error)
}

// Recorder accumulates one recording session's chunks and finalizes them into
// a single clip. At most one session exists at a time; the device is released
// on every path out of a session.
type Recorder struct {
	device Device

	mu     sync.Mutex
	state  State
	stream Stream
	chunks [][]byte
	done   chan struct{}
}

func NewRecorder(device Device) *Recorder {
	return &Recorder{device: device}
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool { return r.State() == StateRecording }

// Start acquires the device and begins accumulating chunks.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return ErrActive
	}
	// claim the session before acquiring so concurrent Starts cannot race
	r.state = StateRecording
	r.mu.Unlock()

	stream, err := r.device.Acquire(ctx)
	if err != nil {
		r.mu.Lock()
		r.state = StateIdle
		r.mu.Unlock()
		return err
	}

	done := make(chan struct{})
	r.mu.Lock()
	r.stream = stream
	r.chunks = nil
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		for chunk := range stream.Chunks() {
			if len(chunk) == 0 {
				continue
			}
			b := make([]byte, len(chunk))
			copy(b, chunk)
			r.mu.Lock()
			r.chunks = append(r.chunks, b)
			r.mu.Unlock()
		}
	}()
	return nil
}

// Stop finalizes the session into one clip tagged with the stream's native
// MIME type. Calling Stop while idle is a no-op and reports ok=false.
func (r *Recorder) Stop() (media.Clip, bool) {
	stream, done, ok := r.finalize()
	if !ok {
		return media.Clip{}, false
	}
	_ = stream.Close()
	<-done

	r.mu.Lock()
	var total int
	for _, c := range r.chunks {
		total += len(c)
	}
	data := make([]byte, 0, total)
	for _, c := range r.chunks {
		data = append(data, c...)
	}
	r.reset()
	r.mu.Unlock()
	return media.Clip{MIME: stream.MIME(), Data: data}, true
}

// Cancel discards the session and releases the device. A no-op while idle.
func (r *Recorder) Cancel() {
	stream, done, ok := r.finalize()
	if !ok {
		return
	}
	_ = stream.Close()
	<-done
	r.mu.Lock()
	r.reset()
	r.mu.Unlock()
}

// finalize moves RECORDING to FINALIZING and hands back the stream to close.
func (r *Recorder) finalize() (Stream, chan struct{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRecording {
		return nil, nil, false
	}
	r.state = StateFinalizing
	return r.stream, r.done, true
}

// reset must be called with r.mu held.
func (r *Recorder) reset() {
	r.state = StateIdle
	r.stream = nil
	r.chunks = nil
	r.done = nil
}
