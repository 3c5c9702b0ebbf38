package speech

import (
	"context"
	"testing"
	"time"
)

// Smoke test without an API key; Synthesize should fail fast.
func TestDeepgram_NoKey(t *testing.T) {
	d := NewDeepgram("", "")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := d.Synthesize(ctx, "hello"); err == nil {
		t.Fatalf("expected error when api key missing")
	}
}

func TestDeepgram_EmptyTextIsNoAudio(t *testing.T) {
	d := NewDeepgram("key", "")
	clip, err := d.Synthesize(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !clip.Empty() {
		t.Fatalf("expected empty clip for empty text")
	}
}

func TestStub_AlwaysSilent(t *testing.T) {
	clip, err := Stub{}.Synthesize(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !clip.Empty() {
		t.Fatalf("stub should never produce audio")
	}
}
