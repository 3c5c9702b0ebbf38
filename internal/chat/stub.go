package chat

import (
	"context"

	"github.com/TerrellBlash/solace-vite/internal/transcript"
)

var stubFragments = []string{
	"I'm here with you. ",
	"I can't reach the companion service right now, ",
	"but whatever you're carrying, you don't have to hold it alone.",
}

// Stub stands in when no API key is configured. It streams a fixed gentle
// reply so the conversation loop keeps working offline.
type Stub struct{}

func (Stub) StreamReply(ctx context.Context, _ []transcript.Turn, _ string, _ bool) (<-chan string, <-chan error) {
	frags := make(chan string, len(stubFragments))
	errCh := make(chan error, 1)
	go func() {
		defer close(frags)
		defer close(errCh)
		for _, f := range stubFragments {
			select {
			case frags <- f:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()
	return frags, errCh
}
