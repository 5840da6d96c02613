package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	extractTimeout      = 15 * time.Second
	defaultSeekSeconds  = 0.5
	seekFloorSeconds    = 0.05
	seekTailMargin      = 0.15
	thumbnailWidth      = 640
	placeholderFilename = "default-video-thumb.jpg"
)

// Thumbnail is the outcome of a poster-frame extraction. Placeholder is set
// when the real frame could not be produced and the generic card is used.
type Thumbnail struct {
	Path        string
	URL         string
	Placeholder bool
}

// ThumbnailExtractor derives a single poster frame from a video file via
// ffmpeg, probing the duration first to pick a seek point near the midpoint.
type ThumbnailExtractor struct {
	ffmpegBinary  string
	ffprobeBinary string
	outputDir     string
	publicDir     string
	timeout       time.Duration
	logger        zerolog.Logger

	placeholderOnce sync.Once
	placeholderPath string
}

// NewThumbnailExtractor writes frames (and the shared placeholder) under
// outputDir, exposed to clients at publicDir.
func NewThumbnailExtractor(outputDir, publicDir string) *ThumbnailExtractor {
	return &ThumbnailExtractor{
		ffmpegBinary:  "ffmpeg",
		ffprobeBinary: "ffprobe",
		outputDir:     outputDir,
		publicDir:     publicDir,
		timeout:       extractTimeout,
		logger:        log.With().Str("component", "thumbnailExtractor").Logger(),
	}
}

// Extract grabs one frame from videoPath and stores it as <baseName>-thumb.jpg.
// It never fails hard: any probe, seek, or encode problem degrades to the
// lazily generated placeholder card.
func (e *ThumbnailExtractor) Extract(ctx context.Context, videoPath, baseName string) Thumbnail {
	thumbName := baseName + "-thumb.jpg"
	thumbPath := filepath.Join(e.outputDir, thumbName)

	duration := e.probeDuration(ctx, videoPath)
	seek := SeekTarget(duration)

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.ffmpegBinary,
		"-v", "error",
		"-ss", formatSeconds(seek),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "4",
		"-vf", fmt.Sprintf("scale=%d:-2", thumbnailWidth),
		"-y", thumbPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		e.logger.Warn().Err(err).
			Str("video", videoPath).
			Str("output", strings.TrimSpace(string(output))).
			Msg("frame extraction failed")
		return e.placeholder()
	}

	// ffmpeg can exit zero and still leave nothing usable behind.
	info, err := os.Stat(thumbPath)
	if err != nil || info.Size() == 0 {
		os.Remove(thumbPath)
		return e.placeholder()
	}

	return Thumbnail{Path: thumbPath, URL: e.publicDir + "/" + thumbName}
}

type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// probeDuration returns the container duration in seconds, or 0 when ffprobe
// cannot tell.
func (e *ThumbnailExtractor) probeDuration(ctx context.Context, path string) float64 {
	probeCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, e.ffprobeBinary,
		"-v", "error", "-show_format", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		e.logger.Debug().Err(err).Str("video", path).Msg("duration probe failed")
		return 0
	}

	var parsed probeFormat
	if err := json.Unmarshal(output, &parsed); err != nil {
		return 0
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64)
	if err != nil || duration <= 0 {
		return 0
	}
	return duration
}

// SeekTarget picks the frame timestamp: the midpoint of the clip, kept off
// both the very first frame and the final fade-out. Unknown durations fall
// back to half a second in.
func SeekTarget(duration float64) float64 {
	if duration <= 0 {
		return defaultSeekSeconds
	}
	target := duration / 2
	ceiling := duration - seekTailMargin
	if ceiling < seekFloorSeconds {
		ceiling = seekFloorSeconds
	}
	if target > ceiling {
		target = ceiling
	}
	if target < seekFloorSeconds {
		target = seekFloorSeconds
	}
	return target
}

// placeholder renders the generic video card once per process and reuses it.
func (e *ThumbnailExtractor) placeholder() Thumbnail {
	e.placeholderOnce.Do(func() {
		path := filepath.Join(e.outputDir, placeholderFilename)
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			e.placeholderPath = path
			return
		}
		if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
			e.logger.Error().Err(err).Msg("placeholder directory creation failed")
			return
		}

		genCtx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		cmd := exec.CommandContext(genCtx, e.ffmpegBinary,
			"-v", "error",
			"-f", "lavfi",
			"-i", "testsrc=duration=1:size=640x360:rate=30",
			"-frames:v", "1",
			"-q:v", "7",
			"-y", path,
		)
		if output, err := cmd.CombinedOutput(); err != nil {
			e.logger.Error().Err(err).
				Str("output", strings.TrimSpace(string(output))).
				Msg("placeholder generation failed")
			return
		}
		e.placeholderPath = path
	})

	if e.placeholderPath == "" {
		return Thumbnail{Placeholder: true}
	}
	return Thumbnail{
		Path:        e.placeholderPath,
		URL:         e.publicDir + "/" + placeholderFilename,
		Placeholder: true,
	}
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 2, 64)
}
