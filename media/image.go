package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/movilworks/portfolio-backend/blobstore"
	"github.com/movilworks/portfolio-backend/errs"
	"github.com/movilworks/portfolio-backend/models"
)

const (
	remoteImageMaxWidth = 1600
	remoteImageQuality  = 82
	localImageMaxWidth  = 1080
	localImageQuality   = 80
	localThumbWidth     = 300
	localThumbQuality   = 70
)

func (p *AssetProcessor) processImage(ctx context.Context, upload Upload) (*models.MediaDescriptor, error) {
	img, err := imaging.Open(upload.Path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errs.NewProcessingError("decode", upload.Filename, err)
	}

	if p.remote != nil {
		return p.uploadImage(ctx, img, upload)
	}
	return p.storeImageLocally(img, upload)
}

func (p *AssetProcessor) uploadImage(ctx context.Context, img image.Image, upload Upload) (*models.MediaDescriptor, error) {
	encoded, err := encodeJPEG(fitWidth(img, remoteImageMaxWidth), remoteImageQuality)
	if err != nil {
		return nil, errs.NewProcessingError("encode", upload.Filename, err)
	}

	asset, err := p.remote.Upload(ctx, bytes.NewReader(encoded), blobstore.UploadOptions{
		Filename:     upload.Filename,
		ContentType:  "image/jpeg",
		ResourceType: models.MediaTypeImage,
	})
	if err != nil {
		return nil, errs.NewUploadError(upload.Filename, err)
	}

	return &models.MediaDescriptor{
		URL:          asset.URL,
		Type:         models.MediaTypeImage,
		Thumbnail:    p.remote.TransformURL(asset.ID, blobstore.Transform{Width: 720, Height: 480, Format: "jpg"}),
		AssetID:      asset.ID,
		ResourceType: models.MediaTypeImage,
	}, nil
}

func (p *AssetProcessor) storeImageLocally(img image.Image, upload Upload) (*models.MediaDescriptor, error) {
	if err := os.MkdirAll(p.uploadDir, 0o755); err != nil {
		return nil, errs.NewProcessingError("store", upload.Filename, err)
	}

	base := localBaseName(upload.Filename)
	mainName := base + "-compressed.jpg"
	thumbName := base + "-thumb.jpg"

	if err := saveJPEG(fitWidth(img, localImageMaxWidth), filepath.Join(p.uploadDir, mainName), localImageQuality); err != nil {
		return nil, errs.NewProcessingError("encode", upload.Filename, err)
	}
	thumbnail := p.publicURL(mainName)
	if err := saveJPEG(fitWidth(img, localThumbWidth), filepath.Join(p.uploadDir, thumbName), localThumbQuality); err != nil {
		// The full-size rendition stands in for a missing thumbnail.
		p.logger.Warn().Err(err).Str("filename", upload.Filename).Msg("thumbnail generation failed")
	} else {
		thumbnail = p.publicURL(thumbName)
	}

	return &models.MediaDescriptor{
		URL:          p.publicURL(mainName),
		Type:         models.MediaTypeImage,
		Thumbnail:    thumbnail,
		ResourceType: models.MediaTypeImage,
	}, nil
}

// fitWidth shrinks img to at most maxWidth, never upscaling.
func fitWidth(img image.Image, maxWidth int) image.Image {
	if img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func saveJPEG(img image.Image, path string, quality int) error {
	return imaging.Save(img, path, imaging.JPEGQuality(quality))
}

// localBaseName derives a collision-resistant, filesystem-safe stem from the
// original filename.
func localBaseName(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	var b strings.Builder
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		cleaned = "upload"
	}
	return fmt.Sprintf("%s-%s", cleaned, uuid.NewString()[:8])
}
