package adapters

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"acp-checkout/internal/features/checkout/domain"
	"acp-checkout/internal/features/checkout/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *domain.Session {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Session{
		ID:       "checkout_session_77",
		Status:   domain.StatusReadyForPayment,
		Currency: "USD",
		LineItems: []domain.LineItem{{
			ProductID:  "42",
			Quantity:   2,
			UnitPrice:  decimal.RequireFromString("10"),
			InStock:    true,
			BaseAmount: decimal.RequireFromString("20"),
		}, {
			ProductID:     "43",
			Quantity:      1,
			UnitPrice:     decimal.RequireFromString("0"),
			InStock:       true,
			BaseAmount:    decimal.RequireFromString("0"),
			RequestPriced: true,
		}},
		FulfillmentAddress: &domain.Address{Name: "Ana", LineOne: "1 Main St"},
		Totals: []domain.Total{
			{Type: domain.TotalTypeTotal, DisplayText: "Total", Amount: decimal.RequireFromString("21.60")},
		},
		Messages:       []domain.Message{},
		OrderID:        "77",
		IdempotencyKey: "idem-1",
		RawPayload:     json.RawMessage(`{"items":[{"product_id":"42"}]}`),
		Tax:            decimal.RequireFromString("1.60"),
		Version:        3,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestRedisSessionRepository_SaveAndGet(t *testing.T) {
	mr, c := newTestCache(t)
	repo := NewRedisSessionRepository(c)
	ctx := context.Background()

	session := testSession()
	require.NoError(t, repo.Save(ctx, session))

	assert.True(t, mr.Exists("checkout_session:checkout_session_77"))
	assert.Equal(t, time.Duration(0), mr.TTL("checkout_session:checkout_session_77"))

	loaded, err := repo.Get(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, session.Status, loaded.Status)
	assert.Equal(t, 3, loaded.Version)
	assert.True(t, loaded.Tax.Equal(decimal.RequireFromString("1.6")))
	assert.JSONEq(t, string(session.RawPayload), string(loaded.RawPayload))
	assert.True(t, loaded.Total(domain.TotalTypeTotal).Equal(decimal.RequireFromString("21.6")))
	require.NotNil(t, loaded.FulfillmentAddress)
	assert.Equal(t, "1 Main St", loaded.FulfillmentAddress.LineOne)
	assert.True(t, loaded.CreatedAt.Equal(session.CreatedAt))

	require.Len(t, loaded.LineItems, 2)
	assert.False(t, loaded.LineItems[0].RequestPriced)
	assert.True(t, loaded.LineItems[1].RequestPriced)
}

func TestRedisSessionRepository_FindByIdempotencyKey(t *testing.T) {
	_, c := newTestCache(t)
	repo := NewRedisSessionRepository(c)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testSession()))

	found, err := repo.FindByIdempotencyKey(ctx, "idem-1")
	require.NoError(t, err)
	assert.Equal(t, "checkout_session_77", found.ID)

	_, err = repo.FindByIdempotencyKey(ctx, "other")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestRedisSessionRepository_GetUnknown(t *testing.T) {
	_, c := newTestCache(t)
	repo := NewRedisSessionRepository(c)

	_, err := repo.Get(context.Background(), "checkout_session_nope")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestRedisSessionRepository_Overwrite(t *testing.T) {
	_, c := newTestCache(t)
	repo := NewRedisSessionRepository(c)
	ctx := context.Background()

	session := testSession()
	require.NoError(t, repo.Save(ctx, session))

	session.Status = domain.StatusCanceled
	session.Version++
	require.NoError(t, repo.Save(ctx, session))

	loaded, err := repo.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, loaded.Status)
	assert.Equal(t, 4, loaded.Version)
}

func TestRedisSessionRepository_CacheDown(t *testing.T) {
	mr, c := newTestCache(t)
	repo := NewRedisSessionRepository(c)
	mr.Close()

	err := repo.Save(context.Background(), testSession())
	assert.Error(t, err)

	_, err = repo.Get(context.Background(), "checkout_session_77")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrSessionNotFound)
}
