package export

import (
	"errors"
	"fmt"
	"io"

	"kbchat-backend/internal/model"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Exporter writes a full session in one output format.
type Exporter interface {
	Export(session *model.Session, w io.Writer) error
	Extension() string
}

// NewExporter creates an exporter for the given format. The pdf format is
// part of the declared interface but has no implementation yet; asking for
// it fails loudly instead of silently dropping data.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "txt", "text":
		return &TextExporter{}, nil
	case "pdf":
		return nil, fmt.Errorf("%w: pdf export is not implemented", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: %s (supported: json, txt)", ErrUnsupportedFormat, format)
	}
}
