package media

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/movilworks/portfolio-backend/blobstore"
	"github.com/movilworks/portfolio-backend/errs"
	"github.com/movilworks/portfolio-backend/models"
)

func (p *AssetProcessor) processVideo(ctx context.Context, upload Upload) (*models.MediaDescriptor, error) {
	if p.remote != nil {
		return p.uploadVideo(ctx, upload)
	}
	return p.storeVideoLocally(ctx, upload)
}

func (p *AssetProcessor) uploadVideo(ctx context.Context, upload Upload) (*models.MediaDescriptor, error) {
	file, err := os.Open(upload.Path)
	if err != nil {
		return nil, errs.NewProcessingError("read", upload.Filename, err)
	}
	defer file.Close()

	contentType := upload.MIMEType
	if contentType == "" {
		contentType = "video/mp4"
	}
	asset, err := p.remote.Upload(ctx, file, blobstore.UploadOptions{
		Filename:     upload.Filename,
		ContentType:  contentType,
		ResourceType: models.MediaTypeVideo,
	})
	if err != nil {
		return nil, errs.NewUploadError(upload.Filename, err)
	}

	return &models.MediaDescriptor{
		URL:          asset.URL,
		Type:         models.MediaTypeVideo,
		Thumbnail:    p.remote.TransformURL(asset.ID, blobstore.Transform{Width: 640, Height: 360, Format: "jpg"}),
		AssetID:      asset.ID,
		ResourceType: models.MediaTypeVideo,
	}, nil
}

func (p *AssetProcessor) storeVideoLocally(ctx context.Context, upload Upload) (*models.MediaDescriptor, error) {
	if err := os.MkdirAll(p.uploadDir, 0o755); err != nil {
		return nil, errs.NewProcessingError("store", upload.Filename, err)
	}

	base := localBaseName(upload.Filename)
	name := base + filepath.Ext(upload.Filename)
	destination := filepath.Join(p.uploadDir, name)
	if err := copyFile(upload.Path, destination); err != nil {
		return nil, errs.NewProcessingError("store", upload.Filename, err)
	}

	thumbnail := p.publicURL(name)
	if p.extractor != nil {
		thumb := p.extractor.Extract(ctx, destination, base)
		if thumb.URL != "" {
			thumbnail = thumb.URL
		}
	}

	return &models.MediaDescriptor{
		URL:          p.publicURL(name),
		Type:         models.MediaTypeVideo,
		Thumbnail:    thumbnail,
		ResourceType: models.MediaTypeVideo,
	}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
