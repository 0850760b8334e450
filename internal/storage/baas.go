package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// BaaSStore talks to the hosted object-storage REST API. Objects live in a
// single bucket; paths are bucket-relative.
type BaaSStore struct {
	baseURL string
	bucket  string
	token   string
	client  *http.Client
}

// NewBaaSStore constructs a client targeting the provided base URL.
func NewBaaSStore(baseURL, bucket, token string) *BaaSStore {
	return &BaaSStore{
		baseURL: baseURL,
		bucket:  bucket,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Put uploads the object. The store rejects duplicate paths, matching the
// unique-path contract of BlobStore.
func (s *BaaSStore) Put(ctx context.Context, path string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(path), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "storage upload")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.Errorf("storage upload failed: %s: %s", resp.Status, readBody(resp.Body))
	}
	return nil
}

// Delete removes the object from the bucket.
func (s *BaaSStore) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "storage delete")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return errors.Errorf("storage delete failed: %s", resp.Status)
	}
	return nil
}

func (s *BaaSStore) objectURL(path string) string {
	// Paths are generated (request id + uuid) and contain no characters
	// needing escape beyond the segment separator.
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, path)
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(b)
}
