package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/sincelove/chat-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageFilter selects messages of one room, optionally by full-text search
type MessageFilter struct {
	Room string
	Text string
}

// MessageRepository message data access interface
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	Paginate(ctx context.Context, filter MessageFilter, opts domain.PageOptions) ([]*domain.Message, int64, error)
	FindByMessageIDs(ctx context.Context, ids []string) ([]*domain.Message, error)
	DeleteByMessageID(ctx context.Context, id string) (*domain.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts a message
func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// Paginate returns one page of a room's messages and the total match count
func (r *messageRepository) Paginate(ctx context.Context, filter MessageFilter, opts domain.PageOptions) ([]*domain.Message, int64, error) {
	var messages []*domain.Message
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Message{}).Where("room = ?", filter.Room)
	if filter.Text != "" {
		query = r.textSearch(query, filter.Text)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*domain.Message{}, 0, nil
	}

	err := applySort(query, opts.Sort, "seq").
		Offset(opts.Offset()).Limit(opts.Limit).
		Find(&messages).Error
	return messages, total, err
}

// textSearch uses the FULLTEXT index on MySQL and LIKE elsewhere
func (r *messageRepository) textSearch(query *gorm.DB, text string) *gorm.DB {
	if r.db.Dialector.Name() == "mysql" {
		return query.Where("MATCH(message) AGAINST (? IN NATURAL LANGUAGE MODE)", text)
	}

	var clauses []string
	var args []interface{}
	for _, word := range strings.Fields(text) {
		clauses = append(clauses, "message LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(word)+"%")
	}
	if len(clauses) == 0 {
		return query
	}
	// natural language mode matches any word
	return query.Where(strings.Join(clauses, " OR "), args...)
}

// FindByMessageIDs loads messages by their public ids, in no particular order
func (r *messageRepository) FindByMessageIDs(ctx context.Context, ids []string) ([]*domain.Message, error) {
	var messages []*domain.Message
	if len(ids) == 0 {
		return messages, nil
	}
	err := r.db.WithContext(ctx).Where("message_id IN ?", ids).Find(&messages).Error
	return messages, err
}

// DeleteByMessageID hard-deletes a message and returns it, or nil when absent
func (r *messageRepository) DeleteByMessageID(ctx context.Context, id string) (*domain.Message, error) {
	var deleted *domain.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg domain.Message
		if err := tx.Where("message_id = ?", id).First(&msg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Delete(&domain.Message{}, msg.Seq).Error; err != nil {
			return err
		}
		deleted = &msg
		return nil
	})
	return deleted, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
