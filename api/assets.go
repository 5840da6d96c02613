package api

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/movilworks/portfolio-backend/models"
)

// removeStoredAsset deletes the backing store of one media entry: the remote
// asset when it carries an id, otherwise the locally served file and its
// derived thumbnail under the upload dir. A missing local file is not an
// error.
func removeStoredAsset(ctx context.Context, assets AssetRemover, uploadDir string, entry models.MediaDescriptor) error {
	if entry.AssetID != "" && assets != nil {
		return assets.Delete(ctx, entry.AssetID)
	}

	if uploadDir == "" || !strings.HasPrefix(entry.URL, "/uploads/") {
		return nil
	}

	name := path.Base(entry.URL)
	if err := os.Remove(filepath.Join(uploadDir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	// The derived thumbnail shares the file's stem.
	if entry.Thumbnail != "" && entry.Thumbnail != entry.URL && strings.HasPrefix(entry.Thumbnail, "/uploads/") {
		thumbName := path.Base(entry.Thumbnail)
		if err := os.Remove(filepath.Join(uploadDir, thumbName)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
