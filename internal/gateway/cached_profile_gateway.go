package gateway

import (
	"context"
	"time"

	"github.com/sincelove/chat-backend/internal/domain"
	"github.com/sincelove/chat-backend/pkg/cache"
	pkglogger "github.com/sincelove/chat-backend/pkg/logger"
)

// CachedProfileGateway keeps profile pairs in Redis for a bounded time.
// Cache errors never fail a fetch: they fall through to the upstream call.
type CachedProfileGateway struct {
	next  ProfileGateway
	cache cache.Service
	ttl   time.Duration
}

// NewCachedProfileGateway wraps next with a Redis cache
func NewCachedProfileGateway(next ProfileGateway, c cache.Service, ttl time.Duration) *CachedProfileGateway {
	return &CachedProfileGateway{next: next, cache: c, ttl: ttl}
}

// Fetch returns the cached pair or calls the wrapped gateway
func (g *CachedProfileGateway) Fetch(ctx context.Context, idUser, idUserTo int64) (*domain.ProfilePair, error) {
	var pair domain.ProfilePair
	if err := g.cache.GetProfilePair(ctx, idUser, idUserTo, &pair); err == nil {
		return &pair, nil
	}

	fetched, err := g.next.Fetch(ctx, idUser, idUserTo)
	if err != nil {
		return nil, err
	}

	if err := g.cache.SetProfilePair(ctx, idUser, idUserTo, fetched, g.ttl); err != nil {
		pkglogger.GetLogger().Warn().Err(err).
			Int64("id_user", idUser).Int64("id_user_to", idUserTo).
			Msg("profile cache write failed")
	}
	return fetched, nil
}
