// Package shareid derives stable, human-readable external identifiers for
// project records and resolves inbound identifiers back to records through an
// ordered chain of backward-compatible matching strategies.
package shareid

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/movilworks/portfolio-backend/models"
)

// DefaultSlug is used when a title yields nothing slug-worthy.
const DefaultSlug = "movil-project"

const (
	maxSlugLength   = 60
	keySuffixLength = 12
)

var (
	nonSlugRuns  = regexp.MustCompile(`[^a-z0-9]+`)
	nonAlnumRuns = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// Slugify lowercases, collapses non-alphanumeric runs to hyphens, trims, and
// caps the slug.
func Slugify(value string) string {
	cleaned := nonSlugRuns.ReplaceAllString(strings.ToLower(value), "-")
	cleaned = strings.Trim(cleaned, "-")
	if len(cleaned) > maxSlugLength {
		cleaned = strings.Trim(cleaned[:maxSlugLength], "-")
	}
	if cleaned == "" {
		return DefaultSlug
	}
	return cleaned
}

func sanitizeAlnum(value string) string {
	return strings.ToLower(nonAlnumRuns.ReplaceAllString(value, ""))
}

func lastN(value string, n int) string {
	if len(value) <= n {
		return value
	}
	return value[len(value)-n:]
}

// BuildKey computes the short stable key for a record. Priority order:
// creation timestamp, any media asset id, any media URL, the title slug, and
// finally the positional index. Each source carries a distinct prefix so the
// resolver can tell them apart.
func BuildKey(project models.ProjectRecord, index int) string {
	if index < 0 {
		index = 0
	}

	if project.CreatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, project.CreatedAt); err == nil {
			return "t" + strconv.FormatInt(parsed.UnixMilli(), 36)
		}
	}

	for _, media := range project.Media {
		if strings.TrimSpace(media.AssetID) == "" {
			continue
		}
		if cleaned := sanitizeAlnum(media.AssetID); cleaned != "" {
			return "m" + lastN(cleaned, keySuffixLength)
		}
	}

	for _, media := range project.Media {
		if strings.TrimSpace(media.URL) == "" {
			continue
		}
		base := path.Base(strings.TrimSpace(media.URL))
		base = strings.TrimSuffix(base, path.Ext(base))
		if cleaned := sanitizeAlnum(base); cleaned != "" {
			return "u" + lastN(cleaned, keySuffixLength)
		}
	}

	if slug := Slugify(project.Title); slug != DefaultSlug {
		if len(slug) > keySuffixLength {
			slug = slug[:keySuffixLength]
		}
		return "s" + slug
	}

	return "i" + strconv.Itoa(index)
}

// BuildID concatenates the stable key with the slugified title to form the
// public identifier.
func BuildID(project models.ProjectRecord, index int) string {
	return BuildKey(project, index) + "-" + Slugify(project.Title)
}
