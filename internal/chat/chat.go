package chat

import (
	"context"

	"github.com/TerrellBlash/solace-vite/internal/transcript"
)

// Streamer produces the model's reply to one message as an ordered stream of
// text fragments. Both channels are closed when the stream reaches a terminal
// state; an error sent on the second channel means the stream failed at that
// point and no further fragments will arrive.
type Streamer interface {
	StreamReply(ctx context.Context, history []transcript.Turn, message string, deep bool) (<-chan string, <-chan error)
}
