package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type stubKV struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newStubKV() *stubKV {
	return &stubKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubKV) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *stubKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	}
	s.ttls[key] = ttl
	return nil
}

func (s *stubKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubKV) CartKey(userID string) string {
	return "zc:cart:" + userID
}

func TestStoreRoundTrip(t *testing.T) {
	kv := newStubKV()
	store := &Store{kv: kv, ttl: defaultCartTTL}
	userID := uuid.New()

	lines := []CartLine{{
		ProductID:   uuid.New(),
		ProductName: "mazoe orange crush",
		VendorID:    uuid.New(),
		UnitPrice:   decimal.RequireFromString("3.50"),
		Quantity:    2,
	}}

	if err := store.Save(context.Background(), userID, lines); err != nil {
		t.Fatalf("save: %v", err)
	}
	if kv.ttls["zc:cart:"+userID.String()] != defaultCartTTL {
		t.Fatal("cart TTL not applied")
	}

	loaded, err := store.Load(context.Background(), userID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ProductName != "mazoe orange crush" {
		t.Fatalf("unexpected cart %+v", loaded)
	}
	if !loaded[0].UnitPrice.Equal(lines[0].UnitPrice) {
		t.Fatal("unit price did not survive the round trip")
	}
}

func TestStoreLoadMissingCartIsEmpty(t *testing.T) {
	store := &Store{kv: newStubKV(), ttl: defaultCartTTL}

	lines, err := store.Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lines != nil {
		t.Fatalf("expected empty cart, got %+v", lines)
	}
}

func TestStoreClear(t *testing.T) {
	kv := newStubKV()
	store := &Store{kv: kv, ttl: defaultCartTTL}
	userID := uuid.New()

	if err := store.Save(context.Background(), userID, []CartLine{{ProductID: uuid.New(), Quantity: 1}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(context.Background(), userID); err != nil {
		t.Fatalf("clear: %v", err)
	}

	lines, err := store.Load(context.Background(), userID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lines) != 0 {
		t.Fatal("cart not cleared")
	}
}
