package models

import (
	"encoding/json"
	"strings"
)

// Publication states for a project.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// ProjectRecord is one portfolio entry with metadata, media list, and
// publication state.
type ProjectRecord struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	Client       string            `json:"client"`
	Media        []MediaDescriptor `json:"media"`
	HeroMediaURL string            `json:"heroMediaUrl"`
	Featured     bool              `json:"featured"`
	Status       string            `json:"status"`
	Tags         []string          `json:"tags"`
	CreatedAt    string            `json:"createdAt"`
	Order        *float64          `json:"order"`
}

// projectRecordJSON tolerates the loose typing of historical documents:
// boolean statuses, delimited tag strings, "spotlight" instead of
// "featured", and order under several names.
type projectRecordJSON struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	Client       string            `json:"client"`
	Media        []MediaDescriptor `json:"media"`
	HeroMediaURL string            `json:"heroMediaUrl"`
	Featured     json.RawMessage   `json:"featured"`
	Spotlight    json.RawMessage   `json:"spotlight"`
	Status       json.RawMessage   `json:"status"`
	Tags         json.RawMessage   `json:"tags"`
	CreatedAt    string            `json:"createdAt"`
	Order        json.RawMessage   `json:"order"`
	Sort         json.RawMessage   `json:"sort"`
	DisplayOrder json.RawMessage   `json:"displayOrder"`
}

func (p *ProjectRecord) UnmarshalJSON(data []byte) error {
	var aux projectRecordJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.Title = aux.Title
	p.Description = aux.Description
	p.Category = aux.Category
	p.Client = aux.Client
	p.Media = aux.Media
	p.HeroMediaURL = aux.HeroMediaURL
	p.CreatedAt = aux.CreatedAt

	p.Status = coerceStatus(rawToAny(aux.Status))

	featuredRaw := aux.Featured
	if len(featuredRaw) == 0 {
		featuredRaw = aux.Spotlight
	}
	p.Featured = ParseBool(rawToAny(featuredRaw), false)

	p.Tags = coerceTags(rawToAny(aux.Tags))

	p.Order = nil
	for _, raw := range []json.RawMessage{aux.Order, aux.Sort, aux.DisplayOrder} {
		if parsed := ParseOrder(rawToAny(raw)); parsed != nil {
			p.Order = parsed
			break
		}
	}
	return nil
}

func rawToAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return value
}

// coerceStatus maps loosely typed status values onto the enum without
// applying defaults; NormalizeStatus owns those.
func coerceStatus(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return StatusDraft
		}
		return StatusPublished
	}
	return ""
}

// coerceTags accepts an array of strings or a single delimited string.
func coerceTags(value any) []string {
	switch v := value.(type) {
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
		return tags
	case string:
		return SplitTags(v)
	}
	return nil
}

// SplitTags breaks a delimited tag string on commas and semicolons.
func SplitTags(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	return parts
}
