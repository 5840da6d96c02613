package models

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"
)

// Overlay treatments the frontend can layer over the hero video.
var HeroOverlayModes = []string{"aurora", "ember", "midnight", "prism", "nebula", "lumen", "noir"}

const (
	HeroOverlayDefault = "aurora"

	heroZoomMin = 0.8
	heroZoomMax = 2.2

	heroOverlayOpacityMin     = 0.2
	heroOverlayOpacityMax     = 1.0
	HeroOverlayOpacityDefault = 0.85

	HeroForegroundOpacityDefault = 1.0
	HeroBackgroundOpacityDefault = 0.6
)

// ErrHeroVideoNotVideo rejects non-video assets as hero backgrounds.
var ErrHeroVideoNotVideo = errors.New("hero background requires a video file")

// NewHeroVideo returns an empty record carrying the default presentation.
func NewHeroVideo() *HeroVideo {
	return &HeroVideo{
		Display: HeroVideoDisplay{
			Desktop: DefaultHeroDesktopDisplay,
			Mobile:  DefaultHeroMobileDisplay,
		},
		OverlayMode:       HeroOverlayDefault,
		OverlayOpacity:    HeroOverlayOpacityDefault,
		ForegroundOpacity: HeroForegroundOpacityDefault,
		BackgroundOpacity: HeroBackgroundOpacityDefault,
	}
}

// HeroDisplay positions the hero video within its viewport.
type HeroDisplay struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// HeroVideoDisplay carries independent desktop and mobile placements.
type HeroVideoDisplay struct {
	Desktop HeroDisplay `json:"desktop"`
	Mobile  HeroDisplay `json:"mobile"`
}

var (
	DefaultHeroDesktopDisplay = HeroDisplay{X: 50, Y: 50, Zoom: 1}
	DefaultHeroMobileDisplay  = HeroDisplay{X: 50, Y: 35, Zoom: 1.05}
)

// HeroVideo is the singleton ambient-background video configuration.
type HeroVideo struct {
	Media             MediaDescriptor
	UpdatedAt         string
	Display           HeroVideoDisplay
	OverlayMode       string
	OverlayOpacity    float64
	ForegroundOpacity float64
	BackgroundOpacity float64
}

// The persisted form is flat: media fields and display settings share one
// object, matching the documents older deployments wrote. Display components
// are pointers so an absent value can fall back to its default instead of
// clamping a phantom zero.
type heroDisplayJSON struct {
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Zoom *float64 `json:"zoom"`
}

type heroVideoDisplayJSON struct {
	Desktop *heroDisplayJSON `json:"desktop"`
	Mobile  *heroDisplayJSON `json:"mobile"`
}

type heroVideoJSON struct {
	URL               string                `json:"url"`
	Type              string                `json:"type"`
	Thumbnail         string                `json:"thumbnail"`
	AssetID           string                `json:"assetId,omitempty"`
	ResourceType      string                `json:"resourceType,omitempty"`
	OriginalFilename  string                `json:"originalFilename,omitempty"`
	Focus             *Focus                `json:"focus,omitempty"`
	UpdatedAt         string                `json:"updatedAt"`
	Display           *heroVideoDisplayJSON `json:"display"`
	OverlayMode       string                `json:"overlayMode"`
	OverlayOpacity    *float64              `json:"overlayOpacity"`
	ForegroundOpacity *float64              `json:"foregroundOpacity"`
	BackgroundOpacity *float64              `json:"backgroundOpacity"`
}

func (h HeroVideo) MarshalJSON() ([]byte, error) {
	overlay := h.OverlayOpacity
	foreground := h.ForegroundOpacity
	background := h.BackgroundOpacity
	return json.Marshal(struct {
		URL               string           `json:"url"`
		Type              string           `json:"type"`
		Thumbnail         string           `json:"thumbnail"`
		AssetID           string           `json:"assetId,omitempty"`
		ResourceType      string           `json:"resourceType,omitempty"`
		OriginalFilename  string           `json:"originalFilename,omitempty"`
		Focus             *Focus           `json:"focus,omitempty"`
		UpdatedAt         string           `json:"updatedAt"`
		Display           HeroVideoDisplay `json:"display"`
		OverlayMode       string           `json:"overlayMode"`
		OverlayOpacity    float64          `json:"overlayOpacity"`
		ForegroundOpacity float64          `json:"foregroundOpacity"`
		BackgroundOpacity float64          `json:"backgroundOpacity"`
	}{
		URL:               h.Media.URL,
		Type:              h.Media.Type,
		Thumbnail:         h.Media.Thumbnail,
		AssetID:           h.Media.AssetID,
		ResourceType:      h.Media.ResourceType,
		OriginalFilename:  h.Media.OriginalFilename,
		Focus:             h.Media.Focus,
		UpdatedAt:         h.UpdatedAt,
		Display:           h.Display,
		OverlayMode:       h.OverlayMode,
		OverlayOpacity:    overlay,
		ForegroundOpacity: foreground,
		BackgroundOpacity: background,
	})
}

func (h *HeroVideo) UnmarshalJSON(data []byte) error {
	var media MediaDescriptor
	if err := json.Unmarshal(data, &media); err != nil {
		return err
	}
	var aux heroVideoJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	h.Media = media
	h.UpdatedAt = aux.UpdatedAt
	h.Display = HeroVideoDisplay{
		Desktop: resolveDisplay(displayEntry(aux.Display, true), DefaultHeroDesktopDisplay),
		Mobile:  resolveDisplay(displayEntry(aux.Display, false), DefaultHeroMobileDisplay),
	}
	h.OverlayMode = aux.OverlayMode
	h.OverlayOpacity = valueOr(aux.OverlayOpacity, HeroOverlayOpacityDefault)
	h.ForegroundOpacity = valueOr(aux.ForegroundOpacity, HeroForegroundOpacityDefault)
	h.BackgroundOpacity = valueOr(aux.BackgroundOpacity, HeroBackgroundOpacityDefault)
	return nil
}

func displayEntry(display *heroVideoDisplayJSON, desktop bool) *heroDisplayJSON {
	if display == nil {
		return nil
	}
	if desktop {
		return display.Desktop
	}
	return display.Mobile
}

// resolveDisplay clamps present components and fills absent ones from the
// defaults.
func resolveDisplay(entry *heroDisplayJSON, defaults HeroDisplay) HeroDisplay {
	result := defaults
	if entry == nil {
		return result
	}
	if entry.X != nil {
		if x := clampHeroPercent(*entry.X); x != nil {
			result.X = *x
		}
	}
	if entry.Y != nil {
		if y := clampHeroPercent(*entry.Y); y != nil {
			result.Y = *y
		}
	}
	if entry.Zoom != nil {
		if zoom := clampHeroZoom(*entry.Zoom); zoom != nil {
			result.Zoom = *zoom
		}
	}
	return result
}

func valueOr(value *float64, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	return *value
}

func clampHeroPercent(value float64) *float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	if value < 0 {
		value = 0
	} else if value > 100 {
		value = 100
	}
	rounded := math.Round(value*100) / 100
	return &rounded
}

func clampHeroZoom(value float64) *float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	if value < heroZoomMin {
		value = heroZoomMin
	} else if value > heroZoomMax {
		value = heroZoomMax
	}
	rounded := math.Round(value*100) / 100
	return &rounded
}

func clampOpacity(value, min, max, fallback float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return math.Round(value*100) / 100
}

// NormalizeHeroVideoDisplay clamps a fully specified placement pair. Zero
// values are treated as unset and replaced by defaults.
func NormalizeHeroVideoDisplay(display HeroVideoDisplay) HeroVideoDisplay {
	return HeroVideoDisplay{
		Desktop: normalizeDisplayEntry(display.Desktop, DefaultHeroDesktopDisplay),
		Mobile:  normalizeDisplayEntry(display.Mobile, DefaultHeroMobileDisplay),
	}
}

func normalizeDisplayEntry(entry HeroDisplay, defaults HeroDisplay) HeroDisplay {
	if entry == (HeroDisplay{}) {
		return defaults
	}
	result := defaults
	if x := clampHeroPercent(entry.X); x != nil {
		result.X = *x
	}
	if y := clampHeroPercent(entry.Y); y != nil {
		result.Y = *y
	}
	if zoom := clampHeroZoom(entry.Zoom); zoom != nil {
		result.Zoom = *zoom
	}
	return result
}

// NormalizeOverlayMode coerces unknown modes to the default treatment.
func NormalizeOverlayMode(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, mode := range HeroOverlayModes {
		if mode == normalized {
			return mode
		}
	}
	return HeroOverlayDefault
}

// NormalizeHeroVideo validates and clamps the singleton record. A nil input
// stays nil (no hero configured); a non-video asset is an error.
func NormalizeHeroVideo(entry *HeroVideo) (*HeroVideo, error) {
	if entry == nil {
		return nil, nil
	}
	sanitized := SanitizeMediaEntry(entry.Media)
	if sanitized == nil {
		return nil, nil
	}
	if sanitized.Type != MediaTypeVideo {
		return nil, ErrHeroVideoNotVideo
	}

	updatedAt := entry.UpdatedAt
	if updatedAt == "" {
		updatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	return &HeroVideo{
		Media:             *sanitized,
		UpdatedAt:         updatedAt,
		Display:           NormalizeHeroVideoDisplay(entry.Display),
		OverlayMode:       NormalizeOverlayMode(entry.OverlayMode),
		OverlayOpacity:    clampOpacity(entry.OverlayOpacity, heroOverlayOpacityMin, heroOverlayOpacityMax, HeroOverlayOpacityDefault),
		ForegroundOpacity: clampOpacity(entry.ForegroundOpacity, 0, 1, HeroForegroundOpacityDefault),
		BackgroundOpacity: clampOpacity(entry.BackgroundOpacity, 0, 1, HeroBackgroundOpacityDefault),
	}, nil
}

// SiteSettings is the persisted layout of the hero-settings document.
type SiteSettings struct {
	HeroVideo *HeroVideo `json:"heroVideo"`
}
