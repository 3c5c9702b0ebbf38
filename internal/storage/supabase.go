package storage

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/supabase-community/supabase-go"
)

// Supabase uploads media to a Supabase storage bucket and hands back the
// public object URL.
type Supabase struct {
	client  *supabase.Client
	baseURL string
	bucket  string
}

func NewSupabase(url, serviceKey, bucket string) (*Supabase, error) {
	client, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("storage: create supabase client: %w", err)
	}
	return &Supabase{client: client, baseURL: strings.TrimRight(url, "/"), bucket: bucket}, nil
}

func (s *Supabase) Put(key, contentType string, data []byte) (string, error) {
	if _, err := s.client.Storage.UploadFile(s.bucket, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("storage: upload to supabase: %w", err)
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key), nil
}
