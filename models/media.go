package models

import "encoding/json"

// Media types recognized by the asset pipeline.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Focus is a crop/zoom hint for rendering a media item. X and Y are
// percentages in [0,100]; Zoom is a scale factor in [1,2].
type Focus struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// MediaDescriptor is the canonical record of one uploaded asset.
type MediaDescriptor struct {
	URL              string `json:"url"`
	Type             string `json:"type"`
	Thumbnail        string `json:"thumbnail"`
	AssetID          string `json:"assetId,omitempty"`
	ResourceType     string `json:"resourceType,omitempty"`
	OriginalFilename string `json:"originalFilename,omitempty"`
	Focus            *Focus `json:"focus,omitempty"`
}

// mediaDescriptorJSON accepts the historical field names older documents
// carry alongside the canonical ones.
type mediaDescriptorJSON struct {
	URL              string `json:"url"`
	Type             string `json:"type"`
	Thumbnail        string `json:"thumbnail"`
	AssetID          string `json:"assetId"`
	LegacyAssetID    string `json:"cloudinaryId"`
	ResourceType     string `json:"resourceType"`
	LegacyResource   string `json:"cloudinaryResourceType"`
	OriginalFilename string `json:"originalFilename"`
}

func (m *MediaDescriptor) UnmarshalJSON(data []byte) error {
	var aux mediaDescriptorJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.URL = aux.URL
	m.Type = aux.Type
	m.Thumbnail = aux.Thumbnail
	m.AssetID = aux.AssetID
	if m.AssetID == "" {
		m.AssetID = aux.LegacyAssetID
	}
	m.ResourceType = aux.ResourceType
	if m.ResourceType == "" {
		m.ResourceType = aux.LegacyResource
	}
	m.OriginalFilename = aux.OriginalFilename

	// Focus is parsed from the generic form so legacy variants
	// (focusX, focus_x, focusZoom, zoom, focus.scale) survive.
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	m.Focus = ExtractFocus(entry)
	return nil
}
