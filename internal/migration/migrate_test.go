package migration

import (
	"testing"

	"github.com/sincelove/chat-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRun_CreatesChatTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Run(db))
	// idempotent
	require.NoError(t, Run(db))

	assert.True(t, db.Migrator().HasTable(&domain.Message{}))
	assert.True(t, db.Migrator().HasTable(&domain.Conversation{}))
	assert.True(t, db.Migrator().HasIndex(&domain.Conversation{}, "idx_conversations_owner"))
	assert.True(t, db.Migrator().HasIndex(&domain.Message{}, "idx_messages_room_created"))
}
