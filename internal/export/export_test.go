package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbchat-backend/internal/model"
)

func sampleSession() *model.Session {
	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return &model.Session{
		ID:        "1700000000000000001",
		Title:     "Pump maintenance",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
		Messages: []model.Message{
			{
				ID:        "m1",
				Content:   "How often do we service the pumps?",
				Sender:    model.SenderUser,
				Timestamp: created,
			},
			{
				ID:        "m2",
				Content:   "Every six months.",
				Sender:    model.SenderBot,
				Timestamp: created.Add(time.Minute),
				Citations: []model.Citation{
					{ID: "citation-1-0", Text: "Service interval: 6 months", Source: "manual.pdf"},
				},
			},
		},
	}
}

func TestNewExporter(t *testing.T) {
	for _, format := range []string{"json", "txt", "text"} {
		exporter, err := NewExporter(format)
		require.NoError(t, err, "format %s", format)
		require.NotNil(t, exporter)
	}

	_, err := NewExporter("pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "not implemented")

	_, err = NewExporter("csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestJSONExportRoundTrip(t *testing.T) {
	session := sampleSession()

	var buf bytes.Buffer
	exporter := &JSONExporter{}
	require.NoError(t, exporter.Export(session, &buf))
	assert.Equal(t, "json", exporter.Extension())

	var reloaded model.Session
	require.NoError(t, json.Unmarshal(buf.Bytes(), &reloaded))

	assert.Equal(t, session.ID, reloaded.ID)
	assert.Equal(t, session.Title, reloaded.Title)
	assert.True(t, session.CreatedAt.Equal(reloaded.CreatedAt))
	assert.True(t, session.UpdatedAt.Equal(reloaded.UpdatedAt))
	require.Len(t, reloaded.Messages, 2)
	assert.Equal(t, session.Messages[0].Content, reloaded.Messages[0].Content)
	assert.Equal(t, session.Messages[1].Citations, reloaded.Messages[1].Citations)
}

func TestTextExport(t *testing.T) {
	var buf bytes.Buffer
	exporter := &TextExporter{}
	require.NoError(t, exporter.Export(sampleSession(), &buf))
	assert.Equal(t, "txt", exporter.Extension())

	out := buf.String()
	assert.Contains(t, out, "Pump maintenance")
	assert.Contains(t, out, "You: How often do we service the pumps?")
	assert.Contains(t, out, "Bot: Every six months.")
	assert.Contains(t, out, "[1] manual.pdf - Service interval: 6 months")
}

func TestTextExportErrorMessage(t *testing.T) {
	session := sampleSession()
	session.Messages = append(session.Messages, model.Message{
		ID:        "m3",
		Content:   "Error: overloaded",
		Sender:    model.SenderBot,
		Timestamp: session.UpdatedAt,
		IsError:   true,
	})

	var buf bytes.Buffer
	require.NoError(t, (&TextExporter{}).Export(session, &buf))
	assert.Contains(t, buf.String(), "Bot (error): Error: overloaded")
}
