package shareid

import (
	"testing"

	"github.com/movilworks/portfolio-backend/models"
)

func testProjects() []models.ProjectRecord {
	return []models.ProjectRecord{
		{
			Title:     "Night Market Launch",
			CreatedAt: "2025-04-01T12:00:00Z",
		},
		{
			Title: "Harbor Lights",
			Media: []models.MediaDescriptor{{URL: "https://cdn.example.com/xyz123.mp4"}},
		},
		{
			Title: "Untitled Draft",
		},
	}
}

func TestResolveExact(t *testing.T) {
	projects := testProjects()
	id := BuildID(projects[1], 1)

	match := Resolve(projects, id)
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Index != 1 {
		t.Errorf("index = %d, want 1", match.Index)
	}
	if match.Canonical != id {
		t.Errorf("canonical = %q, want %q", match.Canonical, id)
	}
}

func TestResolvePlainIndex(t *testing.T) {
	projects := testProjects()

	match := Resolve(projects, "1")
	if match == nil || match.Index != 1 {
		t.Fatalf("match = %+v, want index 1", match)
	}
	// Resolution succeeded through a legacy layer, so the canonical id
	// differs and the caller must redirect.
	if match.Canonical == "1" {
		t.Error("canonical must be the current-format id")
	}
}

func TestResolvePlainIndexSlugMismatch(t *testing.T) {
	projects := testProjects()

	if match := Resolve(projects, "1-wrong-title"); match != nil {
		t.Errorf("stale slug must not match positionally, got %+v", match)
	}
	if match := Resolve(projects, "1-harbor-lights"); match == nil || match.Index != 1 {
		t.Errorf("matching slug must resolve, got %+v", match)
	}
}

func TestResolveLegacyPrefixedIndex(t *testing.T) {
	projects := testProjects()

	match := Resolve(projects, "p2")
	if match == nil || match.Index != 2 {
		t.Fatalf("match = %+v, want index 2", match)
	}
}

func TestResolveStableKeySurvivesReordering(t *testing.T) {
	projects := testProjects()
	id := BuildID(projects[1], 1)

	// Move the record to the front of the collection.
	reordered := []models.ProjectRecord{projects[1], projects[0], projects[2]}

	match := Resolve(reordered, id)
	if match == nil {
		t.Fatal("expected a match after reordering")
	}
	if match.Index != 0 {
		t.Errorf("index = %d, want 0", match.Index)
	}
	if match.Project.Title != "Harbor Lights" {
		t.Errorf("resolved wrong record: %q", match.Project.Title)
	}
}

func TestResolveTitleSlugFallback(t *testing.T) {
	projects := testProjects()

	match := Resolve(projects, "zzzz-night-market-launch")
	if match == nil || match.Index != 0 {
		t.Fatalf("match = %+v, want index 0 via title slug", match)
	}
}

func TestResolveNotFound(t *testing.T) {
	projects := testProjects()

	if match := Resolve(projects, "does-not-exist-anywhere"); match != nil {
		t.Errorf("match = %+v, want nil", match)
	}
	if match := Resolve(projects, "99"); match != nil {
		t.Errorf("out-of-range index matched: %+v", match)
	}
	if match := Resolve(nil, "0"); match != nil {
		t.Errorf("empty collection matched: %+v", match)
	}
	if match := Resolve(projects, ""); match != nil {
		t.Errorf("empty id matched: %+v", match)
	}
}

func TestResolveDefaultSlugNeverMatchesByTitle(t *testing.T) {
	projects := testProjects()

	// The fallback slug is shared by every untitled record and must not
	// resolve through the title-slug layer.
	if match := Resolve(projects, "zzzz-"+DefaultSlug); match != nil {
		t.Errorf("default slug matched: %+v", match)
	}
}
