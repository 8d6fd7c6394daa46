package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"acp-checkout/internal/core/cache"
	"acp-checkout/internal/features/checkout/domain"
	"acp-checkout/internal/features/checkout/ports"

	"github.com/shopspring/decimal"
)

const (
	sessionKeyPrefix     = "checkout_session:"
	idempotencyKeyPrefix = "checkout_idem:"
)

// RedisSessionRepository implements ports.SessionRepository on top of the cache port.
// Sessions are stored without expiry.
type RedisSessionRepository struct {
	cache cache.Cache
}

var _ ports.SessionRepository = (*RedisSessionRepository)(nil)

// NewRedisSessionRepository creates a new RedisSessionRepository.
func NewRedisSessionRepository(c cache.Cache) *RedisSessionRepository {
	return &RedisSessionRepository{
		cache: c,
	}
}

// sessionRecord carries the fields the API view hides.
type sessionRecord struct {
	Session    *domain.Session `json:"session"`
	Tax        decimal.Decimal `json:"tax"`
	Version    int             `json:"version"`
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`
	// RequestPriced holds LineItem.RequestPriced by line index.
	RequestPriced []bool `json:"request_priced,omitempty"`
}

// Save stores the session and indexes its idempotency key.
func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(sessionRecord{
		Session:    session,
		Tax:        session.Tax,
		Version:    session.Version,
		RawPayload: session.RawPayload,

		RequestPriced: requestPriced(session.LineItems),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.cache.Set(ctx, sessionKeyPrefix+session.ID, data, 0); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}

	if session.IdempotencyKey != "" {
		if err := r.cache.Set(ctx, idempotencyKeyPrefix+session.IdempotencyKey, []byte(session.ID), 0); err != nil {
			return fmt.Errorf("failed to index idempotency key: %w", err)
		}
	}

	return nil
}

// Get retrieves a session by id.
func (r *RedisSessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := r.cache.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ports.ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
	}
	if rec.Session == nil {
		return nil, fmt.Errorf("%w: %s", ports.ErrSessionNotFound, sessionID)
	}

	rec.Session.Tax = rec.Tax
	rec.Session.Version = rec.Version
	rec.Session.RawPayload = rec.RawPayload
	for i := range rec.Session.LineItems {
		if i < len(rec.RequestPriced) {
			rec.Session.LineItems[i].RequestPriced = rec.RequestPriced[i]
		}
	}
	return rec.Session, nil
}

func requestPriced(items []domain.LineItem) []bool {
	var flags []bool
	for i, item := range items {
		if item.RequestPriced {
			if flags == nil {
				flags = make([]bool, len(items))
			}
			flags[i] = true
		}
	}
	return flags
}

// FindByIdempotencyKey resolves the session created with key.
func (r *RedisSessionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Session, error) {
	id, err := r.cache.Get(ctx, idempotencyKeyPrefix+key)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, fmt.Errorf("%w: idempotency key %s", ports.ErrSessionNotFound, key)
		}
		return nil, fmt.Errorf("failed to resolve idempotency key: %w", err)
	}
	return r.Get(ctx, string(id))
}
