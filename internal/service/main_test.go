package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store *memStore
	bus   *recordingBus
	cache *memStatsCache
	svc   *orderService
	carts CartService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithLogger(t, zap.NewNop())
}

func newFixtureWithLogger(t *testing.T, log *zap.Logger) *fixture {
	t.Helper()
	f := &fixture{
		store: newMemStore(),
		bus:   &recordingBus{},
		cache: newMemStatsCache(),
	}
	f.svc = NewOrderService(f.store, f.bus, f.cache, log).(*orderService)
	f.svc.now = func() time.Time { return fixedNow }
	var seq atomic.Int64
	f.svc.genNumber = func(now time.Time) (string, error) {
		return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102150405"), seq.Add(1)), nil
	}
	f.carts = NewCartService(f.store, log)
	return f
}

func customer(id uuid.UUID) context.Context {
	return WithIdentity(context.Background(), id, RoleCustomer)
}

func admin() context.Context {
	return WithIdentity(context.Background(), uuid.New(), RoleAdmin)
}

func partner() context.Context {
	return WithIdentity(context.Background(), uuid.New(), RolePartner)
}

func testAddress() Address {
	return Address{FullName: "Nguyen Van A", Phone: "0901234567", AddressLine: "12 Le Loi", City: "Ho Chi Minh"}
}

const (
	testShippingFee = 30000
	testTax         = 10000
)

// checkout builds a well-formed placement input from product/quantity pairs.
func checkout(lines ...LineItemInput) PlaceOrderInput {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitPrice * int64(l.Quantity)
	}
	return PlaceOrderInput{
		Items:           lines,
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
		ShippingMethod:  "standard",
		Subtotal:        subtotal,
		ShippingFee:     testShippingFee,
		Tax:             testTax,
		Total:           subtotal + testShippingFee + testTax,
	}
}

func line(productID uuid.UUID, price int64, qty int32) LineItemInput {
	return LineItemInput{ProductID: productID, UnitPrice: price, Quantity: qty}
}
