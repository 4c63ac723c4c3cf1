package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation is one participant's view of a room (conversations table).
// Every room has two rows: (A, B) and (B, A).
type Conversation struct {
	CreatedAt   time.Time      `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"column:updated_at" json:"updatedAt"`
	User        datatypes.JSON `gorm:"column:user_profile" json:"user"`
	UserTo      datatypes.JSON `gorm:"column:user_to_profile" json:"user_to"`
	Room        string         `gorm:"column:room;size:64;not null;uniqueIndex:idx_conversations_owner,priority:1" json:"room"`
	LastMessage string         `gorm:"column:last_message;type:text;not null" json:"last_message"`
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"_id"`
	IDUser      int64          `gorm:"column:id_user;not null;uniqueIndex:idx_conversations_owner,priority:2;index" json:"id_user"`
	IDUserTo    int64          `gorm:"column:id_user_to;not null;uniqueIndex:idx_conversations_owner,priority:3" json:"id_user_to"`
	UnreadCount int            `gorm:"column:unread_count;not null;default:0" json:"unread_count"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ProfilePair denormalized display data of both participants, as returned
// by the user service. Either side may be absent.
type ProfilePair struct {
	User   datatypes.JSON `json:"user,omitempty"`
	UserTo datatypes.JSON `json:"user_to,omitempty"`
}

// Normalized maps JSON null to an absent snapshot
func (p *ProfilePair) Normalized() *ProfilePair {
	return &ProfilePair{User: nullToNil(p.User), UserTo: nullToNil(p.UserTo)}
}

func nullToNil(j datatypes.JSON) datatypes.JSON {
	if len(j) == 0 || string(j) == "null" {
		return nil
	}
	return j
}

// Swapped returns the pair seen from the other participant
func (p *ProfilePair) Swapped() *ProfilePair {
	return &ProfilePair{User: p.UserTo, UserTo: p.User}
}

// OpenConversationRequest body of POST /api/conversation
type OpenConversationRequest struct {
	IDUser   int64 `json:"id_user" validate:"required,min=1"`
	IDUserTo int64 `json:"id_user_to" validate:"required,min=1"`
}
