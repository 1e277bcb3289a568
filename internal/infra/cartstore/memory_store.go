package cartstore

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 単一プロセス用（開発・テスト）
// 値はコピーで出し入れする。ttl>0 なら保存から ttl 経過で消える（Redis版と同じ）。
type MemoryStore struct {
	mu        sync.RWMutex
	carts     map[string]cartEntry
	pending   map[string]pendingEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type cartEntry struct {
	items     []model.CartItem
	expiresAt time.Time
}

type pendingEntry struct {
	checkout  model.PendingCheckout
	expiresAt time.Time
}

type MemoryStoreOption func(*MemoryStore)

// 0 なら期限なし
func WithTTL(ttl time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		carts:   make(map[string]cartEntry),
		pending: make(map[string]pendingEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

func (s *MemoryStore) LoadCart(ctx context.Context, sessionID string) (model.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.carts[sessionID]
	if !ok || s.expired(e.expiresAt) {
		return model.Cart{Items: []model.CartItem{}}, nil
	}
	out := make([]model.CartItem, len(e.items))
	copy(out, e.items)
	return model.Cart{Items: out}, nil
}

func (s *MemoryStore) SaveCart(ctx context.Context, sessionID string, cart model.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.carts[sessionID] = cartEntry{items: cart.Get(), expiresAt: s.expiry()}
	return nil
}

func (s *MemoryStore) LoadPending(ctx context.Context, sessionID string) (model.PendingCheckout, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.pending[sessionID]
	if !ok || s.expired(e.expiresAt) {
		return model.PendingCheckout{}, false, nil
	}
	return e.checkout, true, nil
}

func (s *MemoryStore) SavePending(ctx context.Context, sessionID string, p model.PendingCheckout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.pending[sessionID] = pendingEntry{checkout: p, expiresAt: s.expiry()}
	return nil
}

func (s *MemoryStore) ClearPending(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, sessionID)
	return nil
}

// 保持件数（期限切れ未回収を含む）
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts) + len(s.pending)
}

func (s *MemoryStore) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

func (s *MemoryStore) expired(at time.Time) bool {
	return !at.IsZero() && !s.now().Before(at)
}

// 期限切れの回収はttlに1回、書き込み時に行う
func (s *MemoryStore) sweepLocked() {
	if s.ttl <= 0 || s.now().Sub(s.lastSweep) < s.ttl {
		return
	}
	for id, e := range s.carts {
		if s.expired(e.expiresAt) {
			delete(s.carts, id)
		}
	}
	for id, e := range s.pending {
		if s.expired(e.expiresAt) {
			delete(s.pending, id)
		}
	}
	s.lastSweep = s.now()
}

var _ repo.CartStore = (*MemoryStore)(nil)
