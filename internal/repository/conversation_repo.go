package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sincelove/chat-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationUpsert one side of a conversation write, keyed by
// (Room, IDUser, IDUserTo). UnreadIncrement is added to the stored count,
// or used as the initial count when the row does not exist yet.
type ConversationUpsert struct {
	Profiles        *domain.ProfilePair
	Room            string
	LastMessage     string
	IDUser          int64
	IDUserTo        int64
	UnreadIncrement int
}

// ConversationRepository conversation data access interface
type ConversationRepository interface {
	UpsertPair(ctx context.Context, sender, recipient *ConversationUpsert) error
	Reset(ctx context.Context, row *ConversationUpsert) (*domain.Conversation, error)
	MarkRead(ctx context.Context, room string, idUser, idUserTo int64) error
	FindByKey(ctx context.Context, room string, idUser, idUserTo int64) (*domain.Conversation, error)
	FindByID(ctx context.Context, id uint64) (*domain.Conversation, error)
	FindLatestByUser(ctx context.Context, idUser int64) (*domain.Conversation, error)
	PaginateByUser(ctx context.Context, idUser int64, opts domain.PageOptions) ([]*domain.Conversation, int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

var conversationKey = []clause.Column{{Name: "room"}, {Name: "id_user"}, {Name: "id_user_to"}}

func (u *ConversationUpsert) row(now time.Time) *domain.Conversation {
	profiles := u.Profiles.Normalized()
	return &domain.Conversation{
		Room:        u.Room,
		IDUser:      u.IDUser,
		IDUserTo:    u.IDUserTo,
		LastMessage: u.LastMessage,
		UnreadCount: u.UnreadIncrement,
		User:        profiles.User,
		UserTo:      profiles.UserTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// upsert creates the row or refreshes it, adding to unread_count
func upsert(tx *gorm.DB, u *ConversationUpsert, now time.Time) error {
	updates := clause.AssignmentColumns([]string{"last_message", "user_profile", "user_to_profile", "updated_at"})
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "unread_count"},
		Value:  gorm.Expr("unread_count + ?", u.UnreadIncrement),
	})

	return tx.Clauses(clause.OnConflict{
		Columns:   conversationKey,
		DoUpdates: updates,
	}).Create(u.row(now)).Error
}

// UpsertPair writes the sender and recipient rows of one message in a single transaction
func (r *conversationRepository) UpsertPair(ctx context.Context, sender, recipient *ConversationUpsert) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, sender, now); err != nil {
			return err
		}
		return upsert(tx, recipient, now)
	})
}

// Reset overwrites one row with the given values, unread_count included, and returns it
func (r *conversationRepository) Reset(ctx context.Context, u *ConversationUpsert) (*domain.Conversation, error) {
	now := time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   conversationKey,
		DoUpdates: clause.AssignmentColumns([]string{"last_message", "unread_count", "user_profile", "user_to_profile", "updated_at"}),
	}).Create(u.row(now)).Error
	if err != nil {
		return nil, err
	}
	return r.FindByKey(ctx, u.Room, u.IDUser, u.IDUserTo)
}

// MarkRead flags the matching messages as read and zeroes the viewer's unread count
func (r *conversationRepository) MarkRead(ctx context.Context, room string, idUser, idUserTo int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Message{}).
			Where("room = ? AND id_user = ? AND id_user_to = ?", room, idUser, idUserTo).
			Updates(map[string]interface{}{"is_read": true, "updated_at": time.Now()}).Error; err != nil {
			return err
		}

		return tx.Model(&domain.Conversation{}).
			Where("room = ? AND id_user = ? AND id_user_to = ?", room, idUser, idUserTo).
			Update("unread_count", 0).Error
	})
}

// FindByKey finds the row of one viewer in a room, nil when absent
func (r *conversationRepository) FindByKey(ctx context.Context, room string, idUser, idUserTo int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("room = ? AND id_user = ? AND id_user_to = ?", room, idUser, idUserTo).
		First(&conv).Error
	return nilIfNotFound(&conv, err)
}

// FindByID finds a row by its internal id, nil when absent
func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	return nilIfNotFound(&conv, err)
}

// FindLatestByUser returns the user's most recently created row, nil when none
func (r *conversationRepository) FindLatestByUser(ctx context.Context, idUser int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("id_user = ?", idUser).
		Order("created_at DESC").Order("id DESC").
		First(&conv).Error
	return nilIfNotFound(&conv, err)
}

// PaginateByUser lists the rows a user sees, skipping rows without both profiles
func (r *conversationRepository) PaginateByUser(ctx context.Context, idUser int64, opts domain.PageOptions) ([]*domain.Conversation, int64, error) {
	var conversations []*domain.Conversation
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Conversation{}).
		Where("id_user = ?", idUser).
		Where("user_profile IS NOT NULL AND user_to_profile IS NOT NULL")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*domain.Conversation{}, 0, nil
	}

	err := applySort(query, opts.Sort, "id").
		Offset(opts.Offset()).Limit(opts.Limit).
		Find(&conversations).Error
	return conversations, total, err
}

func nilIfNotFound(conv *domain.Conversation, err error) (*domain.Conversation, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}
