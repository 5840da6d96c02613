package shareid

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/movilworks/portfolio-backend/models"
)

// Match is a successful resolution. Canonical carries the identifier the
// record resolves to today; when it differs from the requested one the caller
// must redirect rather than serve content directly.
type Match struct {
	Index     int
	Project   models.ProjectRecord
	Canonical string
}

// matcher is one layer of the resolution chain. Returns nil when the layer
// has no opinion about the identifier.
type matcher func(projects []models.ProjectRecord, first, slug string) *Match

var legacyPrefixedIndex = regexp.MustCompile(`^[a-z](\d+)$`)

// The ordered chain. Every layer is retained indefinitely: each one keeps a
// previously shared link format alive, and removing any of them breaks URLs
// already in the wild.
var matchers = []matcher{
	matchExact,
	matchPlainIndex,
	matchLegacyPrefixedIndex,
	matchStableKey,
	matchTitleSlug,
}

// Resolve walks the matcher chain, first success wins.
func Resolve(projects []models.ProjectRecord, shareID string) *Match {
	shareID = strings.TrimSpace(shareID)
	if shareID == "" || len(projects) == 0 {
		return nil
	}

	first, slug := splitShareID(shareID)
	for _, match := range matchers {
		if result := match(projects, first, slug); result != nil {
			return result
		}
	}
	return nil
}

func splitShareID(shareID string) (first, slug string) {
	parts := strings.SplitN(shareID, "-", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

func found(projects []models.ProjectRecord, index int) *Match {
	return &Match{
		Index:     index,
		Project:   projects[index],
		Canonical: BuildID(projects[index], index),
	}
}

// matchExact recomputes every current record's identifier and compares
// directly. Covers current-format ids and avoids ambiguity after edits.
func matchExact(projects []models.ProjectRecord, first, slug string) *Match {
	requested := first
	if slug != "" {
		requested = first + "-" + slug
	}
	for i := range projects {
		if BuildID(projects[i], i) == requested {
			return found(projects, i)
		}
	}
	return nil
}

func positional(projects []models.ProjectRecord, index int, slug string) *Match {
	if index < 0 || index >= len(projects) {
		return nil
	}
	if slug != "" && slug != Slugify(projects[index].Title) {
		return nil
	}
	return found(projects, index)
}

// matchPlainIndex treats a bare integer first segment as a positional index,
// the oldest link format.
func matchPlainIndex(projects []models.ProjectRecord, first, slug string) *Match {
	index, err := strconv.Atoi(first)
	if err != nil {
		return nil
	}
	return positional(projects, index, slug)
}

// matchLegacyPrefixedIndex handles the single-letter-prefixed integer form
// (e.g. "i3") with the same positional check.
func matchLegacyPrefixedIndex(projects []models.ProjectRecord, first, slug string) *Match {
	groups := legacyPrefixedIndex.FindStringSubmatch(first)
	if groups == nil {
		return nil
	}
	index, err := strconv.Atoi(groups[1])
	if err != nil {
		return nil
	}
	return positional(projects, index, slug)
}

// matchStableKey compares the first segment against every record's stable key,
// so an id survives reordering of the collection.
func matchStableKey(projects []models.ProjectRecord, first, _ string) *Match {
	for i := range projects {
		if BuildKey(projects[i], i) == first {
			return found(projects, i)
		}
	}
	return nil
}

// matchTitleSlug is the last resort: match the trailing slug against every
// record's title slug.
func matchTitleSlug(projects []models.ProjectRecord, _, slug string) *Match {
	if slug == "" || slug == DefaultSlug {
		return nil
	}
	for i := range projects {
		if Slugify(projects[i].Title) == slug {
			return found(projects, i)
		}
	}
	return nil
}
