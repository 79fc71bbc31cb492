package redis

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minimart/storefront-sync/internal/core/domain"
)

const guardTTL = 2 * time.Minute

// PlacementGuard provides idempotency checks for order placement backed by
// Redis. A placement of the same cart contents by the same user within the
// TTL counts as a replay.
// Key format: placement:<user_id>:<cart fingerprint>
type PlacementGuard struct {
	client *redis.Client
}

// NewPlacementGuard creates a PlacementGuard wrapping the given Redis client.
func NewPlacementGuard(client *redis.Client) *PlacementGuard {
	return &PlacementGuard{client: client}
}

// IsDuplicate reports whether this exact placement was already submitted.
func (g *PlacementGuard) IsDuplicate(ctx context.Context, userID int64, items []domain.CartItem) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(userID, items)).Result()
	if err != nil {
		return false, fmt.Errorf("placement guard: %w", err)
	}
	return n > 0, nil
}

// Mark records that this placement was submitted (expires after guardTTL).
func (g *PlacementGuard) Mark(ctx context.Context, userID int64, items []domain.CartItem) error {
	return g.client.Set(ctx, g.key(userID, items), "1", guardTTL).Err()
}

// key fingerprints the cart contents deterministically; entry order matters,
// which is fine because the cart preserves insertion order.
func (g *PlacementGuard) key(userID int64, items []domain.CartItem) string {
	h := fnv.New64a()
	for _, it := range items {
		fmt.Fprintf(h, "%s:%d;", it.Product.ID, it.Quantity)
	}
	return fmt.Sprintf("placement:%d:%x", userID, h.Sum64())
}
