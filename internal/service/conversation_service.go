package service

import (
	"context"
	"fmt"

	"github.com/sincelove/chat-backend/internal/common"
	"github.com/sincelove/chat-backend/internal/domain"
	"github.com/sincelove/chat-backend/internal/gateway"
	"github.com/sincelove/chat-backend/internal/repository"
	pkglogger "github.com/sincelove/chat-backend/pkg/logger"
)

// ConversationService keeps the per-participant conversation rows in sync
// with the message stream
type ConversationService interface {
	ApplyMessage(ctx context.Context, msg *domain.Message) error
	MarkRead(ctx context.Context, room string, idUser, idUserTo int64) error
	OpenConversation(ctx context.Context, idUser, idUserTo int64) (*domain.Conversation, error)
	ListForUser(ctx context.Context, idUser int64, opts domain.PageOptions) (*domain.Page[*domain.Conversation], error)
	LastForUser(ctx context.Context, idUser int64) (*domain.Conversation, error)
	GetByID(ctx context.Context, id uint64) (*domain.Conversation, error)
}

type conversationService struct {
	repo     repository.ConversationRepository
	profiles gateway.ProfileGateway
}

// NewConversationService creates a new ConversationService
func NewConversationService(repo repository.ConversationRepository, profiles gateway.ProfileGateway) ConversationService {
	return &conversationService{repo: repo, profiles: profiles}
}

// ApplyMessage projects a stored message onto the sender and recipient rows.
// A message whose room does not belong to its participants is dropped.
func (s *conversationService) ApplyMessage(ctx context.Context, msg *domain.Message) error {
	profiles, err := s.fetchProfiles(ctx, msg.IDUser, msg.IDUserTo)
	if err != nil {
		return err
	}

	if domain.RoomOf(msg.IDUser, msg.IDUserTo) != msg.Room {
		projectionDroppedTotal.Inc()
		log := pkglogger.WithRoom(msg.Room)
		log.Warn().
			Str("message_id", msg.MessageID).
			Int64("id_user", msg.IDUser).
			Int64("id_user_to", msg.IDUserTo).
			Msg("room does not match participants, conversation not updated")
		return nil
	}

	last := msg.DisplayContent()
	sender := &repository.ConversationUpsert{
		Profiles:        profiles,
		Room:            msg.Room,
		LastMessage:     last,
		IDUser:          msg.IDUser,
		IDUserTo:        msg.IDUserTo,
		UnreadIncrement: 0,
	}
	recipient := &repository.ConversationUpsert{
		Profiles:        profiles.Swapped(),
		Room:            msg.Room,
		LastMessage:     last,
		IDUser:          msg.IDUserTo,
		IDUserTo:        msg.IDUser,
		UnreadIncrement: 1,
	}

	if err := s.repo.UpsertPair(ctx, sender, recipient); err != nil {
		return fmt.Errorf("%w: update conversations of %s: %w", common.ErrStore, msg.Room, err)
	}
	return nil
}

// MarkRead marks the messages of the triple as read and clears the viewer's unread count
func (s *conversationService) MarkRead(ctx context.Context, room string, idUser, idUserTo int64) error {
	if err := s.repo.MarkRead(ctx, room, idUser, idUserTo); err != nil {
		return fmt.Errorf("%w: mark %s read: %w", common.ErrStore, room, err)
	}
	return nil
}

// OpenConversation creates or resets the viewer's row with fresh profiles
func (s *conversationService) OpenConversation(ctx context.Context, idUser, idUserTo int64) (*domain.Conversation, error) {
	room := domain.RoomOf(idUser, idUserTo)

	profiles, err := s.fetchProfiles(ctx, idUser, idUserTo)
	if err != nil {
		return nil, err
	}

	conv, err := s.repo.Reset(ctx, &repository.ConversationUpsert{
		Profiles: profiles,
		Room:     room,
		IDUser:   idUser,
		IDUserTo: idUserTo,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open conversation %s: %w", common.ErrStore, room, err)
	}
	return conv, nil
}

// ListForUser returns one page of the user's conversations
func (s *conversationService) ListForUser(ctx context.Context, idUser int64, opts domain.PageOptions) (*domain.Page[*domain.Conversation], error) {
	rows, total, err := s.repo.PaginateByUser(ctx, idUser, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: list conversations: %w", common.ErrStore, err)
	}
	return domain.NewPage(rows, total, opts), nil
}

// LastForUser returns the user's most recently created conversation, nil when none
func (s *conversationService) LastForUser(ctx context.Context, idUser int64) (*domain.Conversation, error) {
	conv, err := s.repo.FindLatestByUser(ctx, idUser)
	if err != nil {
		return nil, fmt.Errorf("%w: last conversation: %w", common.ErrStore, err)
	}
	return conv, nil
}

// GetByID returns a conversation, nil when absent
func (s *conversationService) GetByID(ctx context.Context, id uint64) (*domain.Conversation, error) {
	conv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get conversation: %w", common.ErrStore, err)
	}
	return conv, nil
}

func (s *conversationService) fetchProfiles(ctx context.Context, idUser, idUserTo int64) (*domain.ProfilePair, error) {
	profiles, err := s.profiles.Fetch(ctx, idUser, idUserTo)
	if err != nil {
		profileFetchFailuresTotal.Inc()
		return nil, err
	}
	if profiles == nil {
		profiles = &domain.ProfilePair{}
	}
	return profiles, nil
}
