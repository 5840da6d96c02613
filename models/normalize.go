package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultCategory   = "General"
	maxCategoryLength = 64
	maxClientLength   = 120
	MaxTags           = 8
	MaxTagLength      = 32
)

var whitespaceCollapser = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func collapseWhitespace(value string) string {
	return strings.Join(strings.Fields(whitespaceCollapser.Replace(value)), " ")
}

// truncate caps value at limit runes. The cut can land just after an
// internal space, so the result is re-trimmed to keep normalization
// idempotent across repeated load/save cycles.
func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit]))
}

// NormalizeCategory collapses whitespace, caps length, and defaults blanks.
func NormalizeCategory(value string) string {
	cleaned := collapseWhitespace(strings.TrimSpace(value))
	if cleaned == "" {
		return DefaultCategory
	}
	return truncate(cleaned, maxCategoryLength)
}

// NormalizeClient trims and caps the client label.
func NormalizeClient(value string) string {
	return truncate(strings.TrimSpace(value), maxClientLength)
}

// NormalizeStatus coerces any input to the two-valued enum. Anything that is
// not recognizably "draft" becomes published.
func NormalizeStatus(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), StatusDraft) {
		return StatusDraft
	}
	return StatusPublished
}

// NormalizeTags dedupes case-insensitively preserving first-seen casing,
// collapses internal whitespace, and caps count and length. Normalizing an
// already-normalized list returns an identical list.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, MaxTags)
	for _, raw := range tags {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		cleaned := truncate(collapseWhitespace(trimmed), MaxTagLength)
		key := strings.ToLower(cleaned)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, cleaned)
		if len(result) >= MaxTags {
			break
		}
	}
	return result
}

// ParseBool interprets booleans, numbers, and common string spellings.
func ParseBool(value any, fallback bool) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

// ParseOrder parses the numeric sort key, or nil when absent/unparseable.
func ParseOrder(value any) *float64 {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	case int:
		f := float64(v)
		return &f
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return nil
		}
		return &parsed
	}
	return nil
}

// SanitizeMediaEntry validates one media descriptor, returning nil when it
// has no resolvable URL. Type defaults to image, thumbnail to the asset URL,
// and the resource kind is derived from the type.
func SanitizeMediaEntry(entry MediaDescriptor) *MediaDescriptor {
	url := strings.TrimSpace(entry.URL)
	if url == "" {
		return nil
	}

	mediaType := MediaTypeImage
	if strings.EqualFold(strings.TrimSpace(entry.Type), MediaTypeVideo) {
		mediaType = MediaTypeVideo
	}

	thumbnail := strings.TrimSpace(entry.Thumbnail)
	if thumbnail == "" {
		thumbnail = url
	}

	resourceType := MediaTypeImage
	if entry.ResourceType == MediaTypeVideo || mediaType == MediaTypeVideo {
		resourceType = MediaTypeVideo
	}

	return &MediaDescriptor{
		URL:              url,
		Type:             mediaType,
		Thumbnail:        thumbnail,
		AssetID:          strings.TrimSpace(entry.AssetID),
		ResourceType:     resourceType,
		OriginalFilename: strings.TrimSpace(entry.OriginalFilename),
		Focus:            entry.Focus,
	}
}

// NormalizeMediaList drops entries without a resolvable URL.
func NormalizeMediaList(media []MediaDescriptor) []MediaDescriptor {
	result := make([]MediaDescriptor, 0, len(media))
	for _, entry := range media {
		if sanitized := SanitizeMediaEntry(entry); sanitized != nil {
			result = append(result, *sanitized)
		}
	}
	return result
}

// PickHeroMediaURL recomputes the hero selection deterministically:
// requested match, else first non-video item, else first item with a
// thumbnail, else the first item with a URL.
func PickHeroMediaURL(media []MediaDescriptor, preferred string) string {
	if len(media) == 0 {
		return ""
	}
	preferred = strings.TrimSpace(preferred)
	if preferred != "" {
		for _, entry := range media {
			if entry.URL == preferred {
				return entry.URL
			}
		}
	}
	for _, entry := range media {
		if !strings.EqualFold(entry.Type, MediaTypeVideo) && entry.URL != "" {
			return entry.URL
		}
	}
	for _, entry := range media {
		if entry.Thumbnail != "" && entry.URL != "" {
			return entry.URL
		}
	}
	for _, entry := range media {
		if entry.URL != "" {
			return entry.URL
		}
	}
	return ""
}

// PickShareImageURL selects the preview image for a shared project link:
// the hero entry when set, else the first image, else the first entry with
// a thumbnail, else the first entry. The thumbnail is preferred over the
// raw asset so video projects preview as a still. Empty when the project
// has no usable media.
func PickShareImageURL(project ProjectRecord) string {
	var candidates []MediaDescriptor
	for _, entry := range project.Media {
		if entry.URL != "" || entry.Thumbnail != "" {
			candidates = append(candidates, entry)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	primary := candidates[0]
	picked := false
	if hero := strings.TrimSpace(project.HeroMediaURL); hero != "" {
		for _, entry := range candidates {
			if entry.URL == hero {
				primary, picked = entry, true
				break
			}
		}
	}
	if !picked {
		for _, entry := range candidates {
			if !strings.EqualFold(entry.Type, MediaTypeVideo) {
				primary, picked = entry, true
				break
			}
		}
	}
	if !picked {
		for _, entry := range candidates {
			if entry.Thumbnail != "" {
				primary = entry
				break
			}
		}
	}

	if primary.Thumbnail != "" {
		return primary.Thumbnail
	}
	return primary.URL
}

// NormalizeProject enforces every field-level invariant on one record so
// legacy and partial data is upgraded transparently on both read and write.
func NormalizeProject(project ProjectRecord) ProjectRecord {
	media := NormalizeMediaList(project.Media)
	status := NormalizeStatus(project.Status)

	normalized := ProjectRecord{
		Title:        strings.TrimSpace(project.Title),
		Description:  strings.TrimSpace(project.Description),
		Category:     NormalizeCategory(project.Category),
		Client:       NormalizeClient(project.Client),
		Media:        media,
		HeroMediaURL: PickHeroMediaURL(media, project.HeroMediaURL),
		Status:       status,
		Featured:     project.Featured && status == StatusPublished,
		Tags:         NormalizeTags(project.Tags),
		CreatedAt:    project.CreatedAt,
		Order:        project.Order,
	}
	if normalized.CreatedAt == "" {
		normalized.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return normalized
}

// NormalizeProjects normalizes the whole collection in order.
func NormalizeProjects(projects []ProjectRecord) []ProjectRecord {
	result := make([]ProjectRecord, len(projects))
	for i, project := range projects {
		result[i] = NormalizeProject(project)
	}
	return result
}
