package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MessageType kind of chat message
type MessageType string

const (
	MessageTypeText       MessageType = "message"
	MessageTypeImage      MessageType = "image"
	MessageTypeQuote      MessageType = "quote"
	MessageTypeQuoteImage MessageType = "quote_image"
)

// ImagePlaceholder replaces image payloads in conversation previews
const ImagePlaceholder = "Image..."

// IsValid reports whether t is one of the known message types
func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeQuote, MessageTypeQuoteImage:
		return true
	}
	return false
}

// HasImage reports whether the message body is an image payload
func (t MessageType) HasImage() bool {
	return t == MessageTypeImage || t == MessageTypeQuoteImage
}

// Message a single chat message (messages table)
type Message struct {
	CreatedAt time.Time   `gorm:"column:created_at;index:idx_messages_room_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time   `gorm:"column:updated_at" json:"updatedAt"`
	Quote     *string     `gorm:"column:quote;type:text" json:"quote,omitempty"`
	MessageID string      `gorm:"column:message_id;size:64;uniqueIndex;not null" json:"id"`
	Room      string      `gorm:"column:room;size:64;not null;index:idx_messages_room_created,priority:1" json:"room"`
	Type      MessageType `gorm:"column:type;size:16;not null" json:"type"`
	Content   string      `gorm:"column:message;type:text;not null" json:"message"`
	Seq       uint64      `gorm:"column:seq;primaryKey;autoIncrement" json:"-"`
	IDUser    int64       `gorm:"column:id_user;not null" json:"id_user"`
	IDUserTo  int64       `gorm:"column:id_user_to;not null" json:"id_user_to"`
	Read      bool        `gorm:"column:is_read;not null;default:false" json:"read"`
}

func (Message) TableName() string {
	return "messages"
}

// Validate checks the invariants the store enforces on create
func (m *Message) Validate() error {
	var problems []string
	if strings.TrimSpace(m.MessageID) == "" {
		problems = append(problems, "id is required")
	}
	if m.Content == "" {
		problems = append(problems, "message is required")
	}
	if m.Room == "" {
		problems = append(problems, "room is required")
	}
	if !m.Type.IsValid() {
		problems = append(problems, fmt.Sprintf("invalid type %q", m.Type))
	}
	if m.IDUser < 1 || m.IDUserTo < 1 {
		problems = append(problems, "id_user and id_user_to must be positive")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// DisplayContent is what conversation rows show as last_message
func (m *Message) DisplayContent() string {
	if m.Type.HasImage() {
		return ImagePlaceholder
	}
	return m.Content
}

// QuotedMessage the message being replied to
type QuotedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CreateMessageRequest body of POST /api/message.
// Pointer fields distinguish "missing" from "empty".
type CreateMessageRequest struct {
	ID       *string        `json:"id" validate:"required,notblank"`
	Message  *string        `json:"message" validate:"required,notblank"`
	Type     *string        `json:"type" validate:"required,notblank,message_type"`
	Room     *string        `json:"room" validate:"required,notblank"`
	IDUser   *int64         `json:"id_user" validate:"required,min=1"`
	IDUserTo *int64         `json:"id_user_to" validate:"required,min=1"`
	Quote    json.RawMessage `json:"quote" swaggertype:"object"`
}

// quoted reports whether a quote was sent and, when it is an object, its
// content. Any non-null quote marks the message as a quote.
func (r *CreateMessageRequest) quoted() (*QuotedMessage, bool) {
	raw := bytes.TrimSpace(r.Quote)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	var q QuotedMessage
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, true
	}
	return &q, true
}

// ToMessage builds the Message to persist. A quote forces the type to
// quote, or quote_image when the quoted message is an image.
func (r *CreateMessageRequest) ToMessage() *Message {
	msgType := MessageType(strings.ToLower(strings.TrimSpace(*r.Type)))
	var quote *string
	if q, ok := r.quoted(); ok {
		msgType = MessageTypeQuote
		if q != nil {
			if MessageType(q.Type) == MessageTypeImage {
				msgType = MessageTypeQuoteImage
			}
			if q.Message != "" {
				quote = &q.Message
			}
		}
	}

	return &Message{
		MessageID: *r.ID,
		Content:   *r.Message,
		Room:      *r.Room,
		Type:      msgType,
		IDUser:    *r.IDUser,
		IDUserTo:  *r.IDUserTo,
		Quote:     quote,
	}
}

// ReadReceiptRequest body of POST /api/chat/read
type ReadReceiptRequest struct {
	Room     string `json:"room" validate:"required"`
	IDUser   int64  `json:"id_user" validate:"required,min=1"`
	IDUserTo int64  `json:"id_user_to" validate:"required,min=1"`
}
