package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/movilworks/portfolio-backend/blobstore"
	"github.com/movilworks/portfolio-backend/errs"
	"github.com/movilworks/portfolio-backend/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		filename string
		mimeType string
		want     string
	}{
		{"clip.mp4", "video/mp4", models.MediaTypeVideo},
		{"photo.jpg", "image/jpeg", models.MediaTypeImage},
		{"clip.mov", "", models.MediaTypeVideo},
		{"clip.MP4", "", models.MediaTypeVideo},
		{"photo.png", "", models.MediaTypeImage},
		{"mystery.bin", "", models.MediaTypeImage},
		{"clip.mp4", "application/octet-stream", models.MediaTypeVideo},
		{"photo.jpg", "video/quicktime", models.MediaTypeVideo},
	}

	for _, tt := range tests {
		if got := Classify(tt.filename, tt.mimeType); got != tt.want {
			t.Errorf("Classify(%q, %q) = %q, want %q", tt.filename, tt.mimeType, got, tt.want)
		}
	}
}

// writeTestImage renders a small PNG at path.
func writeTestImage(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write test image: %v", err)
	}
}

func newLocalProcessor(t *testing.T) (*AssetProcessor, string, string) {
	t.Helper()
	uploadDir := t.TempDir()
	tempRoot := t.TempDir()
	return NewAssetProcessor(nil, nil, uploadDir, tempRoot), uploadDir, tempRoot
}

func TestProcessImageLocal(t *testing.T) {
	processor, uploadDir, tempRoot := newLocalProcessor(t)

	source := filepath.Join(tempRoot, "photo.png")
	writeTestImage(t, source, 64, 48)

	descriptor, err := processor.Process(context.Background(), Upload{
		Path:     source,
		Filename: "photo.png",
		MIMEType: "image/png",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if descriptor.Type != models.MediaTypeImage {
		t.Errorf("type = %q", descriptor.Type)
	}
	if !strings.HasPrefix(descriptor.URL, "/uploads/") {
		t.Errorf("url = %q", descriptor.URL)
	}
	if descriptor.Thumbnail == "" {
		t.Error("thumbnail missing")
	}
	if descriptor.OriginalFilename != "photo.png" {
		t.Errorf("originalFilename = %q", descriptor.OriginalFilename)
	}

	stored := filepath.Join(uploadDir, strings.TrimPrefix(descriptor.URL, "/uploads/"))
	if info, err := os.Stat(stored); err != nil || info.Size() == 0 {
		t.Errorf("stored rendition missing: %v", err)
	}

	// The temp copy is gone after processing.
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Errorf("temp file not cleaned up: %v", err)
	}
}

func TestProcessUndecodableImageFails(t *testing.T) {
	processor, _, tempRoot := newLocalProcessor(t)

	source := filepath.Join(tempRoot, "broken.jpg")
	if err := os.WriteFile(source, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := processor.Process(context.Background(), Upload{
		Path:     source,
		Filename: "broken.jpg",
		MIMEType: "image/jpeg",
	})
	if err == nil || !errs.IsProcessing(err) {
		t.Errorf("err = %v, want a processing error", err)
	}
	if _, statErr := os.Stat(source); !os.IsNotExist(statErr) {
		t.Error("temp file must be removed on failure too")
	}
}

func TestProcessVideoLocalWithoutExtractor(t *testing.T) {
	processor, uploadDir, tempRoot := newLocalProcessor(t)

	source := filepath.Join(tempRoot, "clip.mp4")
	if err := os.WriteFile(source, []byte("fake video bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	descriptor, err := processor.Process(context.Background(), Upload{
		Path:     source,
		Filename: "clip.mp4",
		MIMEType: "video/mp4",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if descriptor.Type != models.MediaTypeVideo {
		t.Errorf("type = %q", descriptor.Type)
	}
	// Without an extractor the video itself stands in for the thumbnail.
	if descriptor.Thumbnail != descriptor.URL {
		t.Errorf("thumbnail = %q, want %q", descriptor.Thumbnail, descriptor.URL)
	}

	stored := filepath.Join(uploadDir, strings.TrimPrefix(descriptor.URL, "/uploads/"))
	if _, err := os.Stat(stored); err != nil {
		t.Errorf("stored video missing: %v", err)
	}
}

// stubRemote fails uploads for filenames containing "bad".
type stubRemote struct {
	mu      sync.Mutex
	uploads []string
}

func (s *stubRemote) Upload(_ context.Context, r io.Reader, opts blobstore.UploadOptions) (blobstore.Asset, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return blobstore.Asset{}, err
	}
	if strings.Contains(opts.Filename, "bad") {
		return blobstore.Asset{}, errors.New("bucket rejected object")
	}
	s.mu.Lock()
	s.uploads = append(s.uploads, opts.Filename)
	s.mu.Unlock()
	return blobstore.Asset{
		ID:  "movil/projects/" + opts.Filename,
		URL: "https://cdn.example.com/" + opts.Filename,
	}, nil
}

func (s *stubRemote) TransformURL(assetID string, t blobstore.Transform) string {
	return fmt.Sprintf("https://cdn.example.com/t/w_%d,h_%d/%s", t.Width, t.Height, assetID)
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	remote := &stubRemote{}
	tempRoot := t.TempDir()
	processor := NewAssetProcessor(remote, nil, t.TempDir(), tempRoot)

	good := filepath.Join(tempRoot, "good.png")
	writeTestImage(t, good, 32, 32)
	bad := filepath.Join(tempRoot, "bad.png")
	writeTestImage(t, bad, 32, 32)
	broken := filepath.Join(tempRoot, "broken.jpg")
	if err := os.WriteFile(broken, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	results := processor.ProcessBatch(context.Background(), []Upload{
		{Path: good, Filename: "good.png", MIMEType: "image/png"},
		{Path: bad, Filename: "bad.png", MIMEType: "image/png"},
		{Path: broken, Filename: "broken.jpg", MIMEType: "image/jpeg"},
	})

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].Err != nil || results[0].Media == nil {
		t.Errorf("good item failed: %v", results[0].Err)
	}
	if results[1].Err == nil || !errs.IsUpload(results[1].Err) {
		t.Errorf("bad item err = %v, want an upload error", results[1].Err)
	}
	if results[2].Err == nil || !errs.IsProcessing(results[2].Err) {
		t.Errorf("broken item err = %v, want a processing error", results[2].Err)
	}

	// One sibling failing never blocks the others.
	if len(remote.uploads) != 1 || remote.uploads[0] != "good.png" {
		t.Errorf("uploads = %v", remote.uploads)
	}
}

func TestProcessRemoteImageDescriptor(t *testing.T) {
	remote := &stubRemote{}
	tempRoot := t.TempDir()
	processor := NewAssetProcessor(remote, nil, t.TempDir(), tempRoot)

	source := filepath.Join(tempRoot, "photo.png")
	writeTestImage(t, source, 32, 32)

	descriptor, err := processor.Process(context.Background(), Upload{
		Path:     source,
		Filename: "photo.png",
		MIMEType: "image/png",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if descriptor.AssetID == "" {
		t.Error("assetId missing on remote upload")
	}
	if !strings.HasPrefix(descriptor.URL, "https://cdn.example.com/") {
		t.Errorf("url = %q", descriptor.URL)
	}
	if !strings.Contains(descriptor.Thumbnail, "w_720,h_480") {
		t.Errorf("thumbnail = %q, want a 720x480 transform", descriptor.Thumbnail)
	}
}

func TestCleanupTempStaysInsideRoot(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "precious.txt")
	if err := os.WriteFile(outside, []byte("keep me"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tempRoot := t.TempDir()
	processor := NewAssetProcessor(nil, nil, t.TempDir(), tempRoot)

	processor.cleanupTemp(outside)
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside temp root was removed: %v", err)
	}

	inside := filepath.Join(tempRoot, "spooled.bin")
	if err := os.WriteFile(inside, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	processor.cleanupTemp(inside)
	if _, err := os.Stat(inside); !os.IsNotExist(err) {
		t.Errorf("file inside temp root survived: %v", err)
	}

	// Traversal out of the root is refused.
	escape := filepath.Join(tempRoot, "..", filepath.Base(outside))
	processor.cleanupTemp(escape)
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("traversal escaped the temp root: %v", err)
	}
}

func TestPathWithin(t *testing.T) {
	tests := []struct {
		root string
		path string
		want bool
	}{
		{"/tmp/uploads", "/tmp/uploads/a.bin", true},
		{"/tmp/uploads", "/tmp/uploads/nested/a.bin", true},
		{"/tmp/uploads", "/tmp/uploads", true},
		{"/tmp/uploads", "/tmp/other/a.bin", false},
		{"/tmp/uploads", "/tmp/uploads/../other/a.bin", false},
		{"/tmp/uploads", "/tmp/uploads-evil/a.bin", false},
	}

	for _, tt := range tests {
		if got := pathWithin(tt.root, tt.path); got != tt.want {
			t.Errorf("pathWithin(%q, %q) = %v, want %v", tt.root, tt.path, got, tt.want)
		}
	}
}
