package export

import (
	"fmt"
	"io"

	"kbchat-backend/internal/model"
)

// TextExporter writes a plain-text transcript of the conversation.
type TextExporter struct{}

func (e *TextExporter) Export(session *model.Session, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "%s\n", session.Title)
	_, _ = fmt.Fprintf(w, "Created: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "Updated: %s\n\n", session.UpdatedAt.Format("2006-01-02 15:04:05"))

	for _, msg := range session.Messages {
		label := "You"
		if msg.Sender == model.SenderBot {
			label = "Bot"
		}
		if msg.IsError {
			label = "Bot (error)"
		}

		_, _ = fmt.Fprintf(w, "[%s] %s: %s\n", msg.Timestamp.Format("2006-01-02 15:04:05"), label, msg.Content)

		for i, citation := range msg.Citations {
			if citation.URL != "" {
				_, _ = fmt.Fprintf(w, "    [%d] %s - %s (%s)\n", i+1, citation.Source, citation.Text, citation.URL)
			} else {
				_, _ = fmt.Fprintf(w, "    [%d] %s - %s\n", i+1, citation.Source, citation.Text)
			}
		}

		_, _ = fmt.Fprintln(w)
	}

	return nil
}

func (e *TextExporter) Extension() string {
	return "txt"
}
