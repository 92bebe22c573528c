package export

import (
	"encoding/json"
	"io"

	"kbchat-backend/internal/model"
)

// JSONExporter writes the complete session as pretty-printed JSON. The
// output uses the same field layout as persisted storage, so an exported
// session reloads without loss.
type JSONExporter struct{}

func (e *JSONExporter) Export(session *model.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(session)
}

func (e *JSONExporter) Extension() string {
	return "json"
}
