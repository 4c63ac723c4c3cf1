package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/sincelove/chat-backend/internal/domain"
	"github.com/sincelove/chat-backend/internal/migration"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MockProfileGateway is a mock implementation of gateway.ProfileGateway
type MockProfileGateway struct {
	mock.Mock
}

func (m *MockProfileGateway) Fetch(ctx context.Context, idUser, idUserTo int64) (*domain.ProfilePair, error) {
	args := m.Called(ctx, idUser, idUserTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfilePair), args.Error(1)
}

// MockMessageIndex is a mock implementation of MessageIndex
type MockMessageIndex struct {
	mock.Mock
}

func (m *MockMessageIndex) Index(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMessageIndex) Remove(ctx context.Context, messageID string) error {
	return m.Called(ctx, messageID).Error(0)
}

func (m *MockMessageIndex) Search(ctx context.Context, room, text string, opts domain.PageOptions) ([]string, int64, error) {
	args := m.Called(ctx, room, text, opts)
	ids, _ := args.Get(0).([]string)
	return ids, args.Get(1).(int64), args.Error(2)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.Run(db))
	return db
}

// profilesFor returns a pair whose snapshots carry the user ids
func profilesFor(idUser, idUserTo int64) *domain.ProfilePair {
	return &domain.ProfilePair{
		User:   datatypes.JSON(`{"id":` + strconv.FormatInt(idUser, 10) + `}`),
		UserTo: datatypes.JSON(`{"id":` + strconv.FormatInt(idUserTo, 10) + `}`),
	}
}
