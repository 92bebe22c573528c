package qa

import (
	"fmt"
	"time"

	"kbchat-backend/internal/model"
)

// Field-name variants observed across backend revisions, in priority order.
// The German names are the oldest contract and still win when present.
var (
	textKeys   = []string{"Inhalt (Auszug)", "content", "text", "excerpt"}
	sourceKeys = []string{"Quelle", "source", "filename", "document"}
)

const (
	fallbackText   = "no content available"
	fallbackSource = "unknown source"
)

// NormalizeSources maps raw backend source records into the internal
// citation shape. Output order matches input order; ranking is the
// backend's business. Records missing every known field variant get the
// explicit placeholders so the UI never renders a blank citation.
func NormalizeSources(sources []SourceRecord) []model.Citation {
	if len(sources) == 0 {
		return nil
	}

	stamp := time.Now().UnixMilli()
	citations := make([]model.Citation, 0, len(sources))

	for i, source := range sources {
		citation := model.Citation{
			ID:     fmt.Sprintf("citation-%d-%d", stamp, i),
			Text:   firstString(source, textKeys, fallbackText),
			Source: firstString(source, sourceKeys, fallbackSource),
		}
		citation.URL = extractURL(source)

		citations = append(citations, citation)
	}

	return citations
}

func firstString(source SourceRecord, keys []string, fallback string) string {
	for _, key := range keys {
		if value, ok := source[key].(string); ok && value != "" {
			return value
		}
	}
	return fallback
}

// extractURL carries a URL through if the record has one, either top-level
// or nested under metadata. Absent means absent, not "".
func extractURL(source SourceRecord) string {
	if value, ok := source["url"].(string); ok {
		return value
	}

	if meta, ok := source["metadata"].(map[string]interface{}); ok {
		if value, ok := meta["url"].(string); ok {
			return value
		}
	}

	return ""
}
