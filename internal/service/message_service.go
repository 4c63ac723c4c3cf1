package service

import (
	"context"
	"fmt"

	"github.com/sincelove/chat-backend/internal/common"
	"github.com/sincelove/chat-backend/internal/domain"
	"github.com/sincelove/chat-backend/internal/repository"
	pkglogger "github.com/sincelove/chat-backend/pkg/logger"
)

// MessageService business logic for chat messages
type MessageService interface {
	Create(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	List(ctx context.Context, room string, opts domain.PageOptions) (*domain.Page[*domain.Message], error)
	Search(ctx context.Context, room, text string, opts domain.PageOptions) (*domain.Page[*domain.Message], error)
	Delete(ctx context.Context, messageID string) (*domain.Message, error)
}

type messageService struct {
	repo          repository.MessageRepository
	conversations ConversationService
	index         MessageIndex
}

// NewMessageService creates a new MessageService. index may be nil, in which
// case search runs against the database.
func NewMessageService(repo repository.MessageRepository, conversations ConversationService, index MessageIndex) MessageService {
	return &messageService{
		repo:          repo,
		conversations: conversations,
		index:         index,
	}
}

// Create stores the message and then updates both conversation rows.
// The message stays stored when the conversation update fails.
func (s *messageService) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: create message: %w", common.ErrStore, err)
	}
	messagesCreatedTotal.WithLabelValues(string(msg.Type)).Inc()

	if s.index != nil {
		if err := s.index.Index(ctx, msg); err != nil {
			searchIndexErrorsTotal.WithLabelValues("index").Inc()
			pkglogger.GetLogger().Warn().Err(err).Str("message_id", msg.MessageID).Msg("message not indexed")
		}
	}

	if err := s.conversations.ApplyMessage(ctx, msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// List returns one page of a room's messages
func (s *messageService) List(ctx context.Context, room string, opts domain.PageOptions) (*domain.Page[*domain.Message], error) {
	messages, total, err := s.repo.Paginate(ctx, repository.MessageFilter{Room: room}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %w", common.ErrStore, err)
	}
	return domain.NewPage(messages, total, opts), nil
}

// Search runs a full-text search within a room. The search index is used
// when configured, with the database as fallback.
func (s *messageService) Search(ctx context.Context, room, text string, opts domain.PageOptions) (*domain.Page[*domain.Message], error) {
	if s.index != nil {
		page, err := s.searchIndex(ctx, room, text, opts)
		if err == nil {
			return page, nil
		}
		searchIndexErrorsTotal.WithLabelValues("search").Inc()
		pkglogger.GetLogger().Warn().Err(err).Str("room", room).Msg("index search failed, using database")
	}

	messages, total, err := s.repo.Paginate(ctx, repository.MessageFilter{Room: room, Text: text}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: search messages: %w", common.ErrStore, err)
	}
	return domain.NewPage(messages, total, opts), nil
}

func (s *messageService) searchIndex(ctx context.Context, room, text string, opts domain.PageOptions) (*domain.Page[*domain.Message], error) {
	ids, total, err := s.index.Search(ctx, room, text, opts)
	if err != nil {
		return nil, err
	}

	found, err := s.repo.FindByMessageIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Message, len(found))
	for _, m := range found {
		byID[m.MessageID] = m
	}

	// keep index rank order, skip hits deleted from the store. Stale hits
	// seen on this page are taken off the total; ones on other pages are not.
	messages := make([]*domain.Message, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok && m.Room == room {
			messages = append(messages, m)
		}
	}
	total -= int64(len(ids) - len(messages))
	if total < int64(len(messages)) {
		total = int64(len(messages))
	}
	return domain.NewPage(messages, total, opts), nil
}

// Delete hard-deletes a message; nil when it did not exist
func (s *messageService) Delete(ctx context.Context, messageID string) (*domain.Message, error) {
	deleted, err := s.repo.DeleteByMessageID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("%w: delete message: %w", common.ErrStore, err)
	}
	if deleted == nil {
		return nil, nil
	}
	messagesDeletedTotal.Inc()

	if s.index != nil {
		if err := s.index.Remove(ctx, messageID); err != nil {
			searchIndexErrorsTotal.WithLabelValues("delete").Inc()
			pkglogger.GetLogger().Warn().Err(err).Str("message_id", messageID).Msg("message not removed from index")
		}
	}
	return deleted, nil
}
