// ABOUTME: Chat protocol message shapes: text messages and acknowledgements.
// ABOUTME: Mirrors the agent chat protocol: uuid msg ids, timestamps, typed content items.

package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentTypeText is the only content item type the agent produces or
// understands; other types are ignored on receipt.
const ContentTypeText = "text"

// Content is one typed content item inside a message.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Message is one chat protocol message.
type Message struct {
	MsgID     uuid.UUID `json:"msg_id"`
	Timestamp time.Time `json:"timestamp"`
	Content   []Content `json:"content"`
}

// NewTextMessage builds an outbound message with a fresh id carrying one
// text content item.
func NewTextMessage(text string) Message {
	return Message{
		MsgID:     uuid.New(),
		Timestamp: time.Now().UTC(),
		Content:   []Content{{Type: ContentTypeText, Text: text}},
	}
}

// Text joins the message's text content items with spaces.
func (m Message) Text() string {
	var parts []string
	for _, c := range m.Content {
		if c.Type == ContentTypeText && c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Acknowledgement confirms receipt of a message.
type Acknowledgement struct {
	Timestamp         time.Time `json:"timestamp"`
	AcknowledgedMsgID uuid.UUID `json:"acknowledged_msg_id"`
}
