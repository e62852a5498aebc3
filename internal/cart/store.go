package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chocobliss/storefront-backend/pkg/config"
	"github.com/chocobliss/storefront-backend/pkg/redis"
)

// Item is one stored cart line. Lines are keyed by (ProductID, Size); prices
// are never stored here, they are resolved from the catalog on read.
type Item struct {
	ProductID uuid.UUID `json:"productId"`
	Size      *string   `json:"size,omitempty"`
	Quantity  int       `json:"quantity"`
}

// Document is the durable cart payload kept in Redis per user.
type Document struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists cart documents and serializes mutations per user.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) (*Document, error)
	Save(ctx context.Context, userID uuid.UUID, doc *Document) error
	Clear(ctx context.Context, userID uuid.UUID) error
	WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error
}

type redisStore struct {
	client *redis.Client
	cfg    config.CartConfig
}

// NewStore builds a Redis-backed cart store.
func NewStore(client *redis.Client, cfg config.CartConfig) (Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &redisStore{client: client, cfg: cfg}, nil
}

// Load returns the stored cart, or an empty document when none exists.
func (s *redisStore) Load(ctx context.Context, userID uuid.UUID) (*Document, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(userID.String()))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &Document{Items: []Item{}}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	return &doc, nil
}

func (s *redisStore) Save(ctx context.Context, userID uuid.UUID, doc *Document) error {
	doc.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	// Carts are durable; no TTL.
	if err := s.client.Set(ctx, s.client.CartKey(userID.String()), payload, 0); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, s.client.CartKey(userID.String())); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// WithUserLock serializes read-modify-write cycles on a single user's cart so
// concurrent mutations cannot drop each other's writes.
func (s *redisStore) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error {
	return s.client.WithLock(
		ctx,
		s.client.CartKey(userID.String()),
		s.cfg.LockTTL,
		s.cfg.LockRetries,
		s.cfg.LockRetryWait,
		fn,
	)
}
