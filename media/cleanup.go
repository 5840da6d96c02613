package media

import (
	"os"
	"path/filepath"
	"strings"
)

// cleanupTemp removes a spooled upload, but only when it actually lives under
// the processor's temp root. Anything outside that directory is left alone.
func (p *AssetProcessor) cleanupTemp(path string) {
	if path == "" || p.tempRoot == "" {
		return
	}
	if !pathWithin(p.tempRoot, path) {
		p.logger.Warn().Str("path", path).Msg("refusing to remove file outside temp root")
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.Warn().Err(err).Str("path", path).Msg("temp file cleanup failed")
	}
}

func pathWithin(root, path string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
