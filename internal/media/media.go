package media

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Clip is a self-describing media payload: the MIME type the bytes were
// captured or generated with, plus the raw bytes themselves. It is a value
// type with no identity; everything that crosses the provider boundary
// (audio clips, images, videos) travels as a Clip.
type Clip struct {
	MIME string
	Data []byte
}

// Empty reports whether the clip carries no payload.
func (c Clip) Empty() bool { return len(c.Data) == 0 }

// DataURL encodes the clip as a base64 data URL, the form the browser UI
// produces and consumes.
func (c Clip) DataURL() string {
	return "data:" + c.MIME + ";base64," + base64.StdEncoding.EncodeToString(c.Data)
}

// ParseDataURL decodes a data URL back into a Clip. A bare base64 payload
// without the data: header is accepted; fallbackMIME is applied when the
// header is missing or carries no type.
func ParseDataURL(s, fallbackMIME string) (Clip, error) {
	mime := fallbackMIME
	payload := s
	if strings.HasPrefix(s, "data:") {
		rest := s[len("data:"):]
		sep := strings.Index(rest, ";base64,")
		if sep < 0 {
			return Clip{}, fmt.Errorf("media: data url missing base64 marker")
		}
		if m := rest[:sep]; m != "" {
			mime = m
		}
		payload = rest[sep+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Clip{}, fmt.Errorf("media: decode payload: %w", err)
	}
	return Clip{MIME: mime, Data: data}, nil
}
