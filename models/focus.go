package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	focusZoomMin = 1.0
	focusZoomMax = 2.0
)

func clampFocusValue(value float64) *float64 {
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

func clampFocusZoom(value float64) *float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	if value < focusZoomMin {
		value = focusZoomMin
	} else if value > focusZoomMax {
		value = focusZoomMax
	}
	rounded := math.Round(value*1000) / 1000
	return &rounded
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		return parsed, err == nil
	}
	return 0, false
}

func parseFocusComponent(value any) *float64 {
	if num, ok := toFloat(value); ok {
		return clampFocusValue(num)
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return clampFocusValue(parsed)
		}
	}
	return nil
}

func parseZoomComponent(value any) *float64 {
	if num, ok := toFloat(value); ok {
		return clampFocusZoom(num)
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
		normalized := strings.TrimSpace(s)
		percentLike := strings.HasSuffix(normalized, "%")
		stripped := strings.TrimSuffix(normalized, "%")
		parsed, err := strconv.ParseFloat(stripped, 64)
		if err == nil {
			candidate := parsed
			if percentLike || parsed > 10 {
				candidate = parsed / 100
			}
			return clampFocusZoom(candidate)
		}
	}
	return nil
}

// focusCandidate reads one possible location of a focus component.
type focusCandidate func(entry, focus map[string]any) any

func fromFocus(key string) focusCandidate {
	return func(_, focus map[string]any) any {
		if focus == nil {
			return nil
		}
		return focus[key]
	}
}

func fromEntry(key string) focusCandidate {
	return func(entry, _ map[string]any) any {
		if entry == nil {
			return nil
		}
		return entry[key]
	}
}

// Ordered extraction strategies: later entries cover historical field
// names still present in old documents. Order matters.
var (
	focusXCandidates    = []focusCandidate{fromFocus("x"), fromEntry("focusX"), fromEntry("focus_x")}
	focusYCandidates    = []focusCandidate{fromFocus("y"), fromEntry("focusY"), fromEntry("focus_y")}
	focusZoomCandidates = []focusCandidate{
		fromFocus("zoom"), fromFocus("scale"), fromEntry("focusZoom"), fromEntry("zoom"),
	}
)

func firstComponent(entry, focus map[string]any, candidates []focusCandidate, parse func(any) *float64) *float64 {
	for _, candidate := range candidates {
		if parsed := parse(candidate(entry, focus)); parsed != nil {
			return parsed
		}
	}
	return nil
}

// ExtractFocus folds every historical focus representation into the canonical
// form. Returns nil when no component is present at all; missing components
// otherwise default to a centered, unzoomed focus.
func ExtractFocus(entry map[string]any) *Focus {
	if entry == nil {
		return nil
	}
	focusObj, _ := entry["focus"].(map[string]any)

	x := firstComponent(entry, focusObj, focusXCandidates, parseFocusComponent)
	y := firstComponent(entry, focusObj, focusYCandidates, parseFocusComponent)
	zoom := firstComponent(entry, focusObj, focusZoomCandidates, parseZoomComponent)

	if x == nil && y == nil && zoom == nil {
		return nil
	}

	result := Focus{X: 50, Y: 50, Zoom: 1}
	if x != nil {
		result.X = *x
	}
	if y != nil {
		result.Y = *y
	}
	if zoom != nil {
		result.Zoom = *zoom
	}
	return &result
}
