package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/movilworks/portfolio-backend/blobstore"
)

// DocumentBackend is one storage medium for a persisted JSON document.
// Fetch returns (nil, nil) when the document does not exist yet; persistence
// is always a full overwrite.
type DocumentBackend interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
	Persist(ctx context.Context, payload []byte) error
}

// FileBackend stores the document as a local JSON file.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Name() string { return "file:" + b.path }

func (b *FileBackend) Fetch(_ context.Context) ([]byte, error) {
	payload, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return payload, nil
}

func (b *FileBackend) Persist(_ context.Context, payload []byte) error {
	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(b.path, payload, 0o644)
}

// BlobBackend stores the document as a remote blob under a fixed logical key.
type BlobBackend struct {
	client *blobstore.Client
	key    string
}

func NewBlobBackend(client *blobstore.Client, key string) *BlobBackend {
	return &BlobBackend{client: client, key: key}
}

func (b *BlobBackend) Name() string { return "blob:" + b.key }

func (b *BlobBackend) Fetch(ctx context.Context) ([]byte, error) {
	return b.client.FetchDocument(ctx, b.key)
}

func (b *BlobBackend) Persist(ctx context.Context, payload []byte) error {
	return b.client.PersistDocument(ctx, b.key, payload)
}
