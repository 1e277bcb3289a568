package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "storefront:session:"

// セッションIDをキーにカート / 決済待ちをJSONで置く。
// 書き込みのたびにTTLを延長する。
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// 接続確認まで行う
func NewRedisStore(cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, "", ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisStore) cartKey(sessionID string) string    { return s.keyPrefix + sessionID + ":cart" }
func (s *RedisStore) pendingKey(sessionID string) string { return s.keyPrefix + sessionID + ":pending" }

func (s *RedisStore) LoadCart(ctx context.Context, sessionID string) (model.Cart, error) {
	var cart model.Cart
	found, err := s.getJSON(ctx, s.cartKey(sessionID), &cart)
	if err != nil {
		return model.Cart{}, err
	}
	if !found || cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return cart, nil
}

func (s *RedisStore) SaveCart(ctx context.Context, sessionID string, cart model.Cart) error {
	return s.setJSON(ctx, s.cartKey(sessionID), cart)
}

func (s *RedisStore) LoadPending(ctx context.Context, sessionID string) (model.PendingCheckout, bool, error) {
	var p model.PendingCheckout
	found, err := s.getJSON(ctx, s.pendingKey(sessionID), &p)
	if err != nil || !found {
		return model.PendingCheckout{}, false, err
	}
	return p, true, nil
}

func (s *RedisStore) SavePending(ctx context.Context, sessionID string, p model.PendingCheckout) error {
	return s.setJSON(ctx, s.pendingKey(sessionID), p)
}

func (s *RedisStore) ClearPending(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.pendingKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete pending checkout: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

var _ repo.CartStore = (*RedisStore)(nil)
