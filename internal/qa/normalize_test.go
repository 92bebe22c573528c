package qa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSourcesFieldVariants(t *testing.T) {
	tests := []struct {
		name       string
		record     SourceRecord
		wantText   string
		wantSource string
	}{
		{
			name:       "legacy german fields",
			record:     SourceRecord{"Inhalt (Auszug)": "Der Auszug", "Quelle": "handbuch.pdf"},
			wantText:   "Der Auszug",
			wantSource: "handbuch.pdf",
		},
		{
			name:       "content and source",
			record:     SourceRecord{"content": "the excerpt", "source": "doc.pdf"},
			wantText:   "the excerpt",
			wantSource: "doc.pdf",
		},
		{
			name:       "text and filename",
			record:     SourceRecord{"text": "snippet", "filename": "report.docx"},
			wantText:   "snippet",
			wantSource: "report.docx",
		},
		{
			name:       "excerpt and document",
			record:     SourceRecord{"excerpt": "passage", "document": "spec v2"},
			wantText:   "passage",
			wantSource: "spec v2",
		},
		{
			name:       "german fields win over newer names",
			record:     SourceRecord{"Inhalt (Auszug)": "alt", "content": "neu", "Quelle": "alt.pdf", "source": "neu.pdf"},
			wantText:   "alt",
			wantSource: "alt.pdf",
		},
		{
			name:       "all variants missing yields placeholders",
			record:     SourceRecord{"score": 0.92},
			wantText:   "no content available",
			wantSource: "unknown source",
		},
		{
			name:       "non-string values are skipped",
			record:     SourceRecord{"content": 42, "text": "fallback text", "source": nil, "filename": "f.txt"},
			wantText:   "fallback text",
			wantSource: "f.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			citations := NormalizeSources([]SourceRecord{tt.record})
			require.Len(t, citations, 1)

			assert.Equal(t, tt.wantText, citations[0].Text)
			assert.Equal(t, tt.wantSource, citations[0].Source)
			assert.NotEmpty(t, citations[0].ID)
		})
	}
}

func TestNormalizeSourcesURL(t *testing.T) {
	citations := NormalizeSources([]SourceRecord{
		{"content": "a", "source": "a.pdf", "url": "https://example.com/a"},
		{"content": "b", "source": "b.pdf", "metadata": map[string]interface{}{"url": "https://example.com/b"}},
		{"content": "c", "source": "c.pdf"},
	})
	require.Len(t, citations, 3)

	assert.Equal(t, "https://example.com/a", citations[0].URL)
	assert.Equal(t, "https://example.com/b", citations[1].URL)
	assert.Empty(t, citations[2].URL)
}

func TestNormalizeSourcesOrderAndIDs(t *testing.T) {
	citations := NormalizeSources([]SourceRecord{
		{"content": "first"},
		{"content": "second"},
		{"content": "third"},
	})
	require.Len(t, citations, 3)

	assert.Equal(t, "first", citations[0].Text)
	assert.Equal(t, "second", citations[1].Text)
	assert.Equal(t, "third", citations[2].Text)

	// ids only need to be unique within the message
	seen := map[string]bool{}
	for _, c := range citations {
		assert.False(t, seen[c.ID], "duplicate citation id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestNormalizeSourcesEmpty(t *testing.T) {
	assert.Nil(t, NormalizeSources(nil))
	assert.Nil(t, NormalizeSources([]SourceRecord{}))
}
