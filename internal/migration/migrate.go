package migration

import (
	"fmt"
	"log"

	"github.com/sincelove/chat-backend/internal/domain"
	"gorm.io/gorm"
)

const messageFulltextIndex = "ft_messages_message"

// Run creates or updates the chat tables. Safe to run multiple times.
func Run(db *gorm.DB) error {
	// 1. AutoMigrate - 테이블 없으면 생성, 있으면 컬럼/인덱스만 보강
	if err := db.AutoMigrate(&domain.Message{}, &domain.Conversation{}); err != nil {
		return fmt.Errorf("failed to migrate chat tables: %w", err)
	}

	// 2. FULLTEXT 인덱스 - MySQL 전용 (검색 API)
	if db.Dialector.Name() == "mysql" {
		return AddMessageFulltextIndex(db)
	}
	return nil
}

// AddMessageFulltextIndex adds the FULLTEXT index used by message search
func AddMessageFulltextIndex(db *gorm.DB) error {
	var count int64
	if err := db.Raw(`
		SELECT COUNT(*) FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE()
		AND TABLE_NAME = 'messages'
		AND INDEX_NAME = ?
	`, messageFulltextIndex).Scan(&count).Error; err != nil {
		return fmt.Errorf("failed to inspect message indexes: %w", err)
	}

	if count > 0 {
		// Index already exists, skip
		return nil
	}

	sql := fmt.Sprintf("ALTER TABLE messages ADD FULLTEXT INDEX %s (message)", messageFulltextIndex)
	if err := db.Exec(sql).Error; err != nil {
		return fmt.Errorf("failed to add fulltext index: %w", err)
	}

	log.Printf("[Migration] Added FULLTEXT index %s on messages(message)", messageFulltextIndex)
	return nil
}
