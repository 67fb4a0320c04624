package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
	"github.com/tmarowa/zimcart-backend/pkg/redis"
)

const defaultCartTTL = 30 * 24 * time.Hour

// kvStore is the slice of the redis client the cart store needs.
type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

// Store keeps a signed-in customer's cart server-side so it survives
// devices and sessions. Guests carry their cart in the request body.
type Store struct {
	kv  kvStore
	ttl time.Duration
}

// NewStore builds a cart store over the shared redis client.
func NewStore(client *redis.Client) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return &Store{kv: client, ttl: defaultCartTTL}, nil
}

// Load returns the saved cart lines, or an empty cart when none exist.
func (s *Store) Load(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(userID.String()))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	var lines []CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart")
	}
	return lines, nil
}

// Save replaces the customer's cart.
func (s *Store) Save(ctx context.Context, userID uuid.UUID, lines []CartLine) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart")
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(userID.String()), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return nil
}

// Clear drops the cart. Checkout calls this exactly once, after the
// whole batch has succeeded.
func (s *Store) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}
