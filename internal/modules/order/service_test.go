package order

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/georgemunganga/mascotas-backend/internal/modules/cart"
	"github.com/georgemunganga/mascotas-backend/internal/modules/catalog"
	"github.com/georgemunganga/mascotas-backend/internal/modules/user"
	"github.com/georgemunganga/mascotas-backend/internal/platform/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *log.Logger { return log.New(io.Discard, "", 0) }

var (
	customer = user.User{ID: 2, Email: "cliente@ejemplo.com", Role: user.RoleCustomer, Address: "Avenida Secundaria 456"}
	other    = user.User{ID: 3, Email: "otro@ejemplo.com", Role: user.RoleCustomer, Address: "Calle Falsa 123"}
	admin    = user.User{ID: 1, Email: "admin@tienda.com", Role: user.RoleAdmin}
)

func toy() catalog.Product {
	return catalog.Product{ID: 7, Name: "Pelota de Goma", Price: decimal.RequireFromString("5.50"), Category: catalog.CategoryToy, Stock: 40}
}

type fixture struct {
	svc  Service
	cart *cart.Store
	st   storage.Storage
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st := storage.NewMemory()
	c := cart.NewStore(ctx, st, discardLogger())
	svc := NewService(NewStorageRepository(ctx, st, discardLogger()), c, discardLogger())
	return fixture{svc: svc, cart: c, st: st}
}

func (f fixture) checkout(t *testing.T, u user.User, qty int) *Order {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.cart.Add(ctx, toy(), qty))
	o, err := f.svc.Checkout(ctx, u, CheckoutRequest{})
	require.NoError(t, err)
	return o
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.cart.Add(ctx, toy(), 3))

	o, err := f.svc.Checkout(ctx, customer, CheckoutRequest{Notes: "Dejar en portería"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, customer.ID, o.UserID)
	assert.Equal(t, "16.5", o.Total.String())
	assert.Equal(t, 3, o.Count)
	assert.Equal(t, customer.Address, o.DeliveryAddress)
	assert.Regexp(t, `^PED-\d{8}-[0-9A-F]{4}$`, o.Number)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 7, o.Items[0].ProductID)

	assert.Empty(t, f.cart.Snapshot().Items)

	got, err := f.svc.GetOrder(ctx, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, o.Number, got.Number)

	byNumber, err := f.svc.GetOrderByNumber(ctx, o.Number)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byNumber.ID)
}

func TestCheckout_Rejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Checkout(ctx, customer, CheckoutRequest{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	homeless := user.User{ID: 4, Email: "nuevo@ejemplo.com", Role: user.RoleCustomer}
	require.NoError(t, f.cart.Add(ctx, toy(), 1))
	_, err = f.svc.Checkout(ctx, homeless, CheckoutRequest{})
	assert.ErrorIs(t, err, ErrAddressRequired)
	assert.Len(t, f.cart.Snapshot().Items, 1)

	o, err := f.svc.Checkout(ctx, homeless, CheckoutRequest{DeliveryAddress: "Calle 5"})
	require.NoError(t, err)
	assert.Equal(t, "Calle 5", o.DeliveryAddress)
}

type rejectingRepository struct{ Repository }

func (rejectingRepository) Create(context.Context, *Order) error {
	return errors.New("disk full")
}

func TestCheckout_FailedSaveKeepsCart(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	c := cart.NewStore(ctx, st, discardLogger())
	svc := NewService(rejectingRepository{NewStorageRepository(ctx, st, discardLogger())}, c, discardLogger())
	require.NoError(t, c.Add(ctx, toy(), 2))

	_, err := svc.Checkout(ctx, customer, CheckoutRequest{})
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 2, c.QuantityOf(7))
}

func TestOrders_PersistAcrossRestart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.checkout(t, customer, 2)

	restarted := NewService(NewStorageRepository(ctx, f.st, discardLogger()), f.cart, discardLogger())
	got, err := restarted.GetOrder(ctx, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "11", got.Total.String())
	assert.Equal(t, catalog.KindGood, got.Items[0].Product.Kind())
}

func TestListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f.svc.(*service).now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first := f.checkout(t, customer, 1)
	f.checkout(t, other, 1)
	latest := f.checkout(t, customer, 2)

	mine, err := f.svc.ListForUser(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, latest.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	all, err := f.svc.ListAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := f.svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = f.svc.UpdateStatus(ctx, first.ID.String(), UpdateStatusRequest{Status: "procesando"})
	require.NoError(t, err)
	processing, err := f.svc.ListAll(ctx, "PROCESSING")
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, first.ID, processing[0].ID)

	_, err = f.svc.ListAll(ctx, "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_StateMachine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.checkout(t, customer, 1)
	id := o.ID.String()

	_, err := f.svc.UpdateStatus(ctx, id, UpdateStatusRequest{Status: "delivered"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for _, next := range []string{"processing", "shipped", "delivered"} {
		o, err = f.svc.UpdateStatus(ctx, id, UpdateStatusRequest{Status: next})
		require.NoError(t, err)
	}
	assert.Equal(t, StatusDelivered, o.Status)

	_, err = f.svc.Cancel(ctx, id, customer)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.UpdateStatus(ctx, id, UpdateStatusRequest{Status: "teleported"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, "not-a-uuid", UpdateStatusRequest{Status: "shipped"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.checkout(t, customer, 1)

	_, err := f.svc.Cancel(ctx, o.ID.String(), other)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := f.svc.Cancel(ctx, o.ID.String(), customer)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	second := f.checkout(t, customer, 1)
	cancelled, err = f.svc.Cancel(ctx, second.ID.String(), admin)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"pendiente": StatusPending, "Enviado": StatusShipped, " delivered ": StatusDelivered, "canceled": StatusCancelled,
	} {
		got, ok := ParseStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseStatus("refunded")
	assert.False(t, ok)
}
