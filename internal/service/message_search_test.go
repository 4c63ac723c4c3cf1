package service

import (
	"context"
	"testing"

	"github.com/sincelove/chat-backend/internal/domain"
	"github.com/sincelove/chat-backend/pkg/elasticsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSearchBackend is a mock implementation of SearchBackend
type MockSearchBackend struct {
	mock.Mock
}

func (m *MockSearchBackend) IndexDocument(ctx context.Context, index, docID string, body interface{}) error {
	return m.Called(ctx, index, docID, body).Error(0)
}

func (m *MockSearchBackend) DeleteDocument(ctx context.Context, index, docID string) error {
	return m.Called(ctx, index, docID).Error(0)
}

func (m *MockSearchBackend) Search(ctx context.Context, index string, query map[string]interface{}, from, size int) (*elasticsearch.SearchResponse, error) {
	args := m.Called(ctx, index, query, from, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elasticsearch.SearchResponse), args.Error(1)
}

func TestMessageIndex_Index(t *testing.T) {
	backend := new(MockSearchBackend)
	backend.On("IndexDocument", mock.Anything, "chat_messages", "m1", mock.MatchedBy(func(doc messageDocument) bool {
		return doc.Room == "chat8_3" && doc.Message == "hi" && doc.IDUser == 3
	})).Return(nil)

	err := NewMessageIndex(backend, "chat_messages").Index(context.Background(), textMessage("m1", 3, 8, "hi"))
	require.NoError(t, err)
	backend.AssertExpectations(t)
}

func TestMessageIndex_Remove(t *testing.T) {
	backend := new(MockSearchBackend)
	backend.On("DeleteDocument", mock.Anything, "chat_messages", "m1").Return(nil)

	require.NoError(t, NewMessageIndex(backend, "chat_messages").Remove(context.Background(), "m1"))
	backend.AssertExpectations(t)
}

func TestMessageIndex_Search(t *testing.T) {
	backend := new(MockSearchBackend)
	var captured map[string]interface{}
	backend.On("Search", mock.Anything, "chat_messages", mock.Anything, 10, 5).
		Run(func(args mock.Arguments) { captured = args.Get(2).(map[string]interface{}) }).
		Return(&elasticsearch.SearchResponse{
			Hits:  []elasticsearch.SearchHit{{ID: "m9", Score: 3}, {ID: "m4", Score: 1}},
			Total: 12,
		}, nil)

	opts := domain.PageOptions{Limit: 5, Page: 3, Sort: []domain.SortField{{Column: "created_at", Desc: true}}}
	ids, total, err := NewMessageIndex(backend, "chat_messages").Search(context.Background(), "chat8_3", "lunch", opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"m9", "m4"}, ids)
	assert.Equal(t, int64(12), total)

	require.NotNil(t, captured)
	boolQuery := captured["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Equal(t, []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"room": "chat8_3"}},
	}, boolQuery["filter"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
	}, captured["sort"])
}

func TestSearchSort_IgnoresUnindexedColumns(t *testing.T) {
	assert.Empty(t, searchSort([]domain.SortField{{Column: "message_id"}}))
}
