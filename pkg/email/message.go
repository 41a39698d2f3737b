package email

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"go-contact-backend/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/jhillyerd/enmime"
)

// buildMessage encodes msg as RFC 5322 bytes and returns them with the Message-Id used.
func buildMessage(msg *domain.OutboundMessage) ([]byte, string, error) {
	builder := enmime.Builder().
		From(msg.Sender.Name, msg.Sender.Address).
		To(msg.Recipient.Name, msg.Recipient.Address).
		Subject(msg.Subject).
		HTML([]byte(msg.BodyHTML))

	for _, att := range msg.Attachments {
		data, err := os.ReadFile(att.StoredPath)
		if err != nil {
			return nil, "", fmt.Errorf("cannot read attachment %s: %w", att.Filename, err)
		}
		contentType := att.ContentType
		if contentType == "" {
			contentType = mimetype.Detect(data).String()
		}
		builder = builder.AddAttachment(data, contentType, att.Filename)
	}

	root, err := builder.Build()
	if err != nil {
		return nil, "", fmt.Errorf("cannot build outbound email: %w", err)
	}

	messageID := root.Header.Get("Message-Id")
	if messageID == "" {
		messageID = newMessageID(msg.Sender.Address)
		root.Header.Set("Message-Id", messageID)
	}

	var envelope bytes.Buffer
	if err := root.Encode(&envelope); err != nil {
		return nil, "", fmt.Errorf("cannot encode outbound email: %w", err)
	}
	return envelope.Bytes(), messageID, nil
}

func newMessageID(sender string) string {
	host := "localhost"
	if at := strings.LastIndex(sender, "@"); at >= 0 && at < len(sender)-1 {
		host = sender[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), host)
}
