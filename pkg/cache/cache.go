package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL 상수 정의
const (
	TTLProfile = 1 * time.Minute
	TTLDefault = 5 * time.Minute
)

// 캐시 키 접두사
const (
	PrefixProfile = "profile:"
)

// Service Redis 캐시 서비스 인터페이스
type Service interface {
	// 기본 캐시 연산
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// 프로필 캐시 (참여자 쌍 단위)
	GetProfilePair(ctx context.Context, idUser, idUserTo int64, dest interface{}) error
	SetProfilePair(ctx context.Context, idUser, idUserTo int64, data interface{}, ttl time.Duration) error

	// 유틸리티
	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Redis 기반 캐시 구현
type redisCache struct {
	client *redis.Client
}

// NewService 새로운 캐시 서비스 생성
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable Redis 연결 가능 여부
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping Redis 연결 테스트
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get 캐시에서 값 조회
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set 캐시에 값 저장
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Redis 없으면 무시
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// ========================================
// 프로필 캐시
// ========================================

// ProfileKey is ordered: the pair (3, 8) and (8, 3) hold swapped snapshots
func ProfileKey(idUser, idUserTo int64) string {
	return fmt.Sprintf("%s%d:%d", PrefixProfile, idUser, idUserTo)
}

func (c *redisCache) GetProfilePair(ctx context.Context, idUser, idUserTo int64, dest interface{}) error {
	return c.Get(ctx, ProfileKey(idUser, idUserTo), dest)
}

func (c *redisCache) SetProfilePair(ctx context.Context, idUser, idUserTo int64, data interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLProfile
	}
	return c.Set(ctx, ProfileKey(idUser, idUserTo), data, ttl)
}
