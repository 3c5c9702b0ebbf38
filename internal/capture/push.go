package capture

import (
	"context"
	"sync"
)

const defaultMIME = "audio/webm"

// PushDevice is a Device fed by an external producer: the session socket
// pushes browser-recorded chunks into it. Acquire fails while a prior stream
// is still open, so the device is exclusively owned by one recording.
type PushDevice struct {
	mu     sync.Mutex
	mime   string
	active *pushStream
}

func NewPushDevice(mime string) *PushDevice {
	if mime == "" {
		mime = defaultMIME
	}
	return &PushDevice{mime: mime}
}

func (d *PushDevice) Acquire(ctx context.Context) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != nil {
		return nil, ErrPermissionDenied
	}
	s := &pushStream{device: d, mime: d.mime, ch: make(chan []byte, 256)}
	d.active = s
	return s, nil
}

// PushChunk delivers one captured chunk. Chunks arriving while no stream is
// open, or faster than the buffer drains, are dropped.
func (d *PushDevice) PushChunk(b []byte) {
	d.mu.Lock()
	s := d.active
	d.mu.Unlock()
	if s == nil || len(b) == 0 {
		return
	}
	s.push(b)
}

func (d *PushDevice) detach(s *pushStream) {
	d.mu.Lock()
	if d.active == s {
		d.active = nil
	}
	d.mu.Unlock()
}

type pushStream struct {
	device *PushDevice
	mime   string

	mu     sync.Mutex
	closed bool
	ch     chan []byte
}

func (s *pushStream) Chunks() <-chan []byte { return s.ch }
func (s *pushStream) MIME() string          { return s.mime }

func (s *pushStream) push(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- b:
	default:
	}
}

func (s *pushStream) Close() error {
	s.device.detach(s)
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	s.mu.Unlock()
	return nil
}
