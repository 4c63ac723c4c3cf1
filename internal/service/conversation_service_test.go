package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/sincelove/chat-backend/internal/common"
	"github.com/sincelove/chat-backend/internal/domain"
	"github.com/sincelove/chat-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newConversationFixture(t *testing.T) (*gorm.DB, ConversationService, *MockProfileGateway) {
	t.Helper()
	db := newTestDB(t)
	profiles := new(MockProfileGateway)
	svc := NewConversationService(repository.NewConversationRepository(db), profiles)
	return db, svc, profiles
}

func findConversation(t *testing.T, db *gorm.DB, idUser, idUserTo int64) *domain.Conversation {
	t.Helper()
	var conv domain.Conversation
	require.NoError(t, db.Where("id_user = ? AND id_user_to = ?", idUser, idUserTo).First(&conv).Error)
	return &conv
}

func countConversations(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.Conversation{}).Count(&n).Error)
	return n
}

func textMessage(id string, from, to int64, content string) *domain.Message {
	return &domain.Message{
		MessageID: id,
		Room:      domain.RoomOf(from, to),
		Type:      domain.MessageTypeText,
		Content:   content,
		IDUser:    from,
		IDUserTo:  to,
	}
}

func TestConversationService_ApplyFirstMessage(t *testing.T) {
	db, svc, profiles := newConversationFixture(t)
	profiles.On("Fetch", mock.Anything, int64(3), int64(8)).Return(profilesFor(3, 8), nil)

	require.NoError(t, svc.ApplyMessage(context.Background(), textMessage("m1", 3, 8, "hi")))

	assert.Equal(t, int64(2), countConversations(t, db))

	sender := findConversation(t, db, 3, 8)
	assert.Equal(t, "chat8_3", sender.Room)
	assert.Equal(t, 0, sender.UnreadCount)
	assert.Equal(t, "hi", sender.LastMessage)
	assert.JSONEq(t, `{"id":3}`, string(sender.User))
	assert.JSONEq(t, `{"id":8}`, string(sender.UserTo))

	recipient := findConversation(t, db, 8, 3)
	assert.Equal(t, "chat8_3", recipient.Room)
	assert.Equal(t, 1, recipient.UnreadCount)
	assert.Equal(t, "hi", recipient.LastMessage)
	assert.JSONEq(t, `{"id":8}`, string(recipient.User))
	assert.JSONEq(t, `{"id":3}`, string(recipient.UserTo))
}

func TestConversationService_ApplySecondMessage(t *testing.T) {
	db, svc, profiles := newConversationFixture(t)
	profiles.On("Fetch", mock.Anything, int64(3), int64(8)).Return(profilesFor(3, 8), nil)
	ctx := context.Background()

	require.NoError(t, svc.ApplyMessage(ctx, textMessage("m1", 3, 8, "hi")))
	require.NoError(t, svc.ApplyMessage(ctx, textMessage("m2", 3, 8, "there")))

	assert.Equal(t, int64(2), countConversations(t, db))
	assert.Equal(t, 0, findConversation(t, db, 3, 8).UnreadCount)
	recipient := findConversation(t, db, 8, 3)
	assert.Equal(t, 2, recipient.UnreadCount)
	assert.Equal(t, "there", recipient.LastMessage)
}

func TestConversationService_ApplyReply(t *testing.T) {
	db, svc, profiles := newConversationFixture(t)
	profiles.On("Fetch", mock.Anything, int64(3), int64(8)).Return(profilesFor(3, 8), nil)
	profiles.On("Fetch", mock.Anything, int64(8), int64(3)).Return(profilesFor(8, 3), nil)
	ctx := context.Background()

	require.NoError(t, svc.ApplyMessage(ctx, textMessage("m1", 3, 8, "hi")))
	require.NoError(t, svc.ApplyMessage(ctx, textMessage("m2", 8, 3, "hello")))

	assert.Equal(t, 1, findConversation(t, db, 3, 8).UnreadCount)
	assert.Equal(t, 1, findConversation(t, db, 8, 3).UnreadCount)
	assert.Equal(t, "hello", findConversation(t, db, 3, 8).LastMessage)
}

func TestConversationService_ImagePlaceholder(t *testing.T) {
	for _, msgType := range []domain.MessageType{domain.MessageTypeImage, domain.MessageTypeQuoteImage} {
		t.Run(string(msgType), func(t *testing.T) {
			db, svc, profiles := newConversationFixture(t)
			profiles.On("Fetch", mock.Anything, int64(3), int64(8)).Return(profilesFor(3, 8), nil)

			msg := textMessage("img", 3, 8, "https://cdn.example.com/a.png")
			msg.Type = msgType
			require.NoError(t, svc.ApplyMessage(context.Background(), msg))

			assert.Equal(t, domain.ImagePlaceholder, findConversation(t, db, 3, 8).LastMessage)
			assert.Equal(t, domain.ImagePlaceholder, findConversation(t, db, 8, 3).LastMessage)
		})
	}
}

func TestConversationService_RoomMismatchDropped(t *testing.T) {
	db, svc, profiles := newConversationFixture(t)
	profiles.On("Fetch", mock.Anything, int64(3), int64(8)).Return(profilesFor(3, 8), nil)
	ctx := context.Background()

	require.NoError(t, svc.ApplyMessage(ctx, textMessage("m1", 3, 8, "hi")))

	bad := textMessage("m2", 3, 8, "wrong room")
	bad.Room = "chat3_8"
	require.NoError(t, svc.ApplyMessage(ctx, bad))

	assert.Equal(t, int64(2), countConversations(t, db))
	assert.Equal(t, 1, findConversation(t, db, 8, 3).UnreadCount)
	assert.Equal(t, "hi", findConversation(t, db, 8, 3).LastMessage)
}

func TestConversationService_ApplyUpstreamFailure(t *testing.T) {
	db, svc, profiles := newConversationFixture(t)
	profiles.On("Fetch", mock.Anything, int64(3), int64(8)).
		Return(nil, fmt.Errorf("%w: profile service returned 503", common.ErrUpstream))

	err := svc.ApplyMessage(context.Background(), textMessage("m1", 3, 8, "hi"))
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.Equal(t, int64(0), countConversations(t, db))
}

func TestConversationService_MarkRead(t *testing.T) {
	db, svc, profiles := newConversationFixture(t)
	profiles.On("Fetch", mock.Anything, int64(3), int64(8)).Return(profilesFor(3, 8), nil)
	ctx := context.Background()
	messages := repository.NewMessageRepository(db)

	for i := 0; i < 3; i++ {
		msg := textMessage(fmt.Sprintf("m%d", i), 3, 8, "hi")
		require.NoError(t, messages.Create(ctx, msg))
		require.NoError(t, svc.ApplyMessage(ctx, msg))
	}
	assert.Equal(t, 3, findConversation(t, db, 8, 3).UnreadCount)

	require.NoError(t, svc.MarkRead(ctx, "chat8_3", 8, 3))

	assert.Equal(t, 0, findConversation(t, db, 8, 3).UnreadCount)
	assert.Equal(t, 0, findConversation(t, db, 3, 8).UnreadCount)
	assert.Equal(t, "hi", findConversation(t, db, 3, 8).LastMessage)
}

func TestConversationService_MarkReadFlagsMatchingMessages(t *testing.T) {
	db, svc, _ := newConversationFixture(t)
	ctx := context.Background()
	messages := repository.NewMessageRepository(db)

	require.NoError(t, messages.Create(ctx, textMessage("from-8", 8, 3, "a")))
	require.NoError(t, messages.Create(ctx, textMessage("from-3", 3, 8, "b")))

	require.NoError(t, svc.MarkRead(ctx, "chat8_3", 8, 3))

	var read []string
	require.NoError(t, db.Model(&domain.Message{}).Where("is_read = ?", true).Pluck("message_id", &read).Error)
	assert.Equal(t, []string{"from-8"}, read)
}

func TestConversationService_OpenConversation(t *testing.T) {
	db, svc, profiles := newConversationFixture(t)
	profiles.On("Fetch", mock.Anything, int64(3), int64(8)).Return(profilesFor(3, 8), nil)
	profiles.On("Fetch", mock.Anything, int64(8), int64(3)).Return(profilesFor(8, 3), nil)
	ctx := context.Background()

	conv, err := svc.OpenConversation(ctx, 8, 3)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, "chat8_3", conv.Room)
	assert.Equal(t, "", conv.LastMessage)
	assert.Equal(t, 0, conv.UnreadCount)
	assert.Equal(t, int64(1), countConversations(t, db))

	require.NoError(t, svc.ApplyMessage(ctx, textMessage("m1", 3, 8, "hi")))
	assert.Equal(t, 1, findConversation(t, db, 8, 3).UnreadCount)

	conv, err = svc.OpenConversation(ctx, 8, 3)
	require.NoError(t, err)
	assert.Equal(t, "", conv.LastMessage)
	assert.Equal(t, 0, conv.UnreadCount)
	// the counterpart row is untouched
	assert.Equal(t, "hi", findConversation(t, db, 3, 8).LastMessage)
}

func TestConversationService_OpenConversationUpstreamFailure(t *testing.T) {
	db, svc, profiles := newConversationFixture(t)
	profiles.On("Fetch", mock.Anything, int64(1), int64(2)).Return(nil, common.ErrUpstream)

	_, err := svc.OpenConversation(context.Background(), 1, 2)
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.Equal(t, int64(0), countConversations(t, db))
}

func TestConversationService_ReadSide(t *testing.T) {
	_, svc, profiles := newConversationFixture(t)
	profiles.On("Fetch", mock.Anything, int64(3), int64(8)).Return(profilesFor(3, 8), nil)
	profiles.On("Fetch", mock.Anything, int64(3), int64(9)).Return(profilesFor(3, 9), nil)
	ctx := context.Background()

	last, err := svc.LastForUser(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, svc.ApplyMessage(ctx, textMessage("m1", 3, 8, "hi")))
	require.NoError(t, svc.ApplyMessage(ctx, textMessage("m2", 3, 9, "yo")))

	page, err := svc.ListForUser(ctx, 3, domain.PageOptions{Limit: 1, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "chat9_3", page.Items[0].Room)

	last, err = svc.LastForUser(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "chat9_3", last.Room)

	byID, err := svc.GetByID(ctx, last.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, last.ID, byID.ID)

	missing, err := svc.GetByID(ctx, 424242)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
