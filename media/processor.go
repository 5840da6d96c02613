// Package media turns uploaded files into canonical media descriptors: images
// are optimized and thumbnailed, videos get a derived poster frame, and every
// asset ends up either in the remote blob store or under the local upload dir.
package media

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/movilworks/portfolio-backend/blobstore"
	"github.com/movilworks/portfolio-backend/models"
)

const batchConcurrency = 3

// RemoteStore is the slice of the blob collaborator the processor needs.
type RemoteStore interface {
	Upload(ctx context.Context, r io.Reader, opts blobstore.UploadOptions) (blobstore.Asset, error)
	TransformURL(assetID string, t blobstore.Transform) string
}

// Upload is one file handed over by the request layer, already spooled to a
// temp path under the processor's temp root.
type Upload struct {
	Path     string
	Filename string
	MIMEType string
}

// Result pairs one upload with its outcome. Err is typed: an UploadError
// means the bytes never reached the store, a ProcessingError means a local
// transform failed.
type Result struct {
	Media *models.MediaDescriptor
	Err   error
}

// AssetProcessor dispatches uploads to the image or video pipeline.
type AssetProcessor struct {
	remote    RemoteStore // nil in local-only mode
	extractor *ThumbnailExtractor
	uploadDir string
	publicDir string
	tempRoot  string
	logger    zerolog.Logger
}

// NewAssetProcessor builds a processor. remote may be nil, which forces the
// local pipelines for every upload.
func NewAssetProcessor(remote RemoteStore, extractor *ThumbnailExtractor, uploadDir, tempRoot string) *AssetProcessor {
	return &AssetProcessor{
		remote:    remote,
		extractor: extractor,
		uploadDir: uploadDir,
		publicDir: "/uploads",
		tempRoot:  tempRoot,
		logger:    log.With().Str("component", "assetProcessor").Logger(),
	}
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".avi": true, ".m4v": true,
}

// Classify decides image vs. video from the declared MIME type, falling back
// to the filename extension.
func Classify(filename, mimeType string) string {
	lower := strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(lower, "video/"):
		return models.MediaTypeVideo
	case strings.HasPrefix(lower, "image/"):
		return models.MediaTypeImage
	}
	if videoExtensions[strings.ToLower(filepath.Ext(filename))] {
		return models.MediaTypeVideo
	}
	return models.MediaTypeImage
}

// Process runs one upload through the matching pipeline. The local temp copy
// is always deleted afterwards, success or failure.
func (p *AssetProcessor) Process(ctx context.Context, upload Upload) (*models.MediaDescriptor, error) {
	defer p.cleanupTemp(upload.Path)

	var (
		media *models.MediaDescriptor
		err   error
	)
	if Classify(upload.Filename, upload.MIMEType) == models.MediaTypeVideo {
		media, err = p.processVideo(ctx, upload)
	} else {
		media, err = p.processImage(ctx, upload)
	}
	if err != nil {
		return nil, err
	}

	media.OriginalFilename = upload.Filename
	return media, nil
}

// ProcessBatch processes sibling uploads independently: one item failing
// never prevents processing of the others. Results keep the input order.
func (p *AssetProcessor) ProcessBatch(ctx context.Context, uploads []Upload) []Result {
	results := make([]Result, len(uploads))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(batchConcurrency)
	for i, upload := range uploads {
		i, upload := i, upload
		group.Go(func() error {
			media, err := p.Process(groupCtx, upload)
			if err != nil {
				p.logger.Error().Err(err).Str("filename", upload.Filename).Msg("media processing failed")
			}
			results[i] = Result{Media: media, Err: err}
			return nil
		})
	}
	// Workers never return errors; Wait only fences completion.
	_ = group.Wait()

	return results
}

// TempRoot is the directory uploads must be spooled into before Process.
func (p *AssetProcessor) TempRoot() string {
	return p.tempRoot
}

func (p *AssetProcessor) publicURL(name string) string {
	return p.publicDir + "/" + name
}
