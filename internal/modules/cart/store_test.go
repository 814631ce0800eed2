package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/georgemunganga/mascotas-backend/internal/modules/catalog"
	"github.com/georgemunganga/mascotas-backend/internal/platform/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func golden() catalog.Product {
	return catalog.Product{
		ID:       1,
		Name:     "Golden Retriever Cachorro",
		Price:    decimal.NewFromInt(800),
		Category: catalog.CategoryPet,
		Stock:    2,
		Pet:      &catalog.PetProfile{Breed: "Golden Retriever", Age: "3 meses", Sex: catalog.SexMale, Size: catalog.SizeLarge},
	}
}

func kibble() catalog.Product {
	sale := decimal.RequireFromString("20")
	return catalog.Product{
		ID:        3,
		Name:      "Pienso Premium para Perros",
		Price:     decimal.RequireFromString("25"),
		Category:  catalog.CategoryFood,
		Stock:     50,
		OnSale:    true,
		SalePrice: &sale,
	}
}

func TestAdd_MergesLines(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, storage.NewMemory(), discardLogger())

	require.NoError(t, s.Add(ctx, golden(), 1))
	require.NoError(t, s.Add(ctx, golden(), 2))

	c := s.Snapshot()
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "2400", c.Items[0].Subtotal.String())
	assert.Equal(t, "2400", c.Total.String())
	assert.Equal(t, 3, c.Count)
}

func TestAdd_UsesSalePrice(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, storage.NewMemory(), discardLogger())

	require.NoError(t, s.Add(ctx, kibble(), 2))
	require.NoError(t, s.Add(ctx, golden(), 1))

	c := s.Snapshot()
	assert.Equal(t, "40", c.Items[0].Subtotal.String())
	assert.Equal(t, "840", c.Total.String())
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, []int{3, 1}, []int{c.Items[0].ProductID, c.Items[1].ProductID})
	assert.NotEqual(t, c.Items[0].ID, c.Items[1].ID)
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, storage.NewMemory(), discardLogger())

	assert.ErrorIs(t, s.Add(ctx, golden(), 0), ErrInvalidQuantity)
	assert.ErrorIs(t, s.Add(ctx, golden(), -2), ErrInvalidQuantity)
	assert.Empty(t, s.Snapshot().Items)
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, storage.NewMemory(), discardLogger())
	require.NoError(t, s.Add(ctx, golden(), 1))
	require.NoError(t, s.Add(ctx, kibble(), 1))

	s.SetQuantity(ctx, 3, 4)
	assert.Equal(t, 4, s.QuantityOf(3))
	assert.Equal(t, "880", s.Snapshot().Total.String())

	s.SetQuantity(ctx, 99, 5)
	assert.False(t, s.Contains(99))

	s.SetQuantity(ctx, 1, 0)
	assert.False(t, s.Contains(1))
	assert.Equal(t, 0, s.QuantityOf(1))
	assert.Equal(t, 4, s.Snapshot().Count)
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, storage.NewMemory(), discardLogger())
	require.NoError(t, s.Add(ctx, golden(), 1))
	require.NoError(t, s.Add(ctx, kibble(), 1))

	s.Remove(ctx, 1)
	s.Remove(ctx, 1)
	assert.Equal(t, []int{3}, []int{s.Snapshot().Items[0].ProductID})

	s.Clear(ctx)
	c := s.Snapshot()
	assert.Empty(t, c.Items)
	assert.True(t, c.Total.IsZero())
	assert.Equal(t, 0, c.Count)
}

func TestStore_PersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	st, err := storage.NewFile(t.TempDir())
	require.NoError(t, err)

	s := NewStore(ctx, st, discardLogger())
	require.NoError(t, s.Add(ctx, golden(), 2))
	require.NoError(t, s.Add(ctx, kibble(), 1))

	restored := NewStore(ctx, st, discardLogger())
	c := restored.Snapshot()
	require.Len(t, c.Items, 2)
	assert.Equal(t, "1620", c.Total.String())
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, catalog.KindPet, c.Items[0].Product.Kind())
	assert.Equal(t, s.Snapshot().Items[0].ID, c.Items[0].ID)
}

func TestNewStore_CorruptStorageStartsEmpty(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	require.NoError(t, st.SetItem(ctx, StorageKey, []byte("{broken")))

	s := NewStore(ctx, st, discardLogger())
	assert.Empty(t, s.Snapshot().Items)
	assert.Equal(t, 0, s.Snapshot().Count)
}

func TestSubscribe_ReceivesEveryChange(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, storage.NewMemory(), discardLogger())

	var counts []int
	unsubscribe := s.Subscribe(func(c Cart) { counts = append(counts, c.Count) })
	require.NoError(t, s.Add(ctx, golden(), 1))
	require.NoError(t, s.Add(ctx, kibble(), 2))
	s.Clear(ctx)
	unsubscribe()
	require.NoError(t, s.Add(ctx, golden(), 1))

	assert.Equal(t, []int{0, 1, 3, 0}, counts)
}

func TestItemCount_StreamsLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStore(ctx, storage.NewMemory(), discardLogger())

	counts := s.ItemCount(ctx)
	assert.Equal(t, 0, <-counts)

	require.NoError(t, s.Add(ctx, golden(), 2))
	assert.Equal(t, 2, <-counts)

	cancel()
	for range counts {
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, storage.NewMemory(), discardLogger())
	require.NoError(t, s.Add(ctx, golden(), 1))

	c := s.Snapshot()
	c.Items[0].Quantity = 50
	c.Items[0].Product.Pet.Breed = "Mestizo"

	again := s.Snapshot()
	assert.Equal(t, 1, again.Items[0].Quantity)
	assert.Equal(t, "Golden Retriever", again.Items[0].Product.Pet.Breed)
}

func TestDrain_ClearsOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	s := NewStore(ctx, st, discardLogger())
	require.NoError(t, s.Add(ctx, kibble(), 2))

	failure := errors.New("order rejected")
	err := s.Drain(ctx, func(c Cart) error {
		assert.Equal(t, "40", c.Total.String())
		return failure
	})
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 2, s.QuantityOf(3))

	var drained Cart
	require.NoError(t, s.Drain(ctx, func(c Cart) error {
		drained = c
		return nil
	}))
	assert.Equal(t, 2, drained.Count)
	assert.Empty(t, s.Snapshot().Items)
	assert.Empty(t, NewStore(ctx, st, discardLogger()).Snapshot().Items)
}

func TestDrain_HoldsWritersUntilDone(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, storage.NewMemory(), discardLogger())
	require.NoError(t, s.Add(ctx, kibble(), 1))

	started := make(chan struct{})
	release := make(chan struct{})
	drainDone := make(chan error, 1)
	go func() {
		drainDone <- s.Drain(ctx, func(c Cart) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	addDone := make(chan error, 1)
	go func() { addDone <- s.Add(ctx, golden(), 1) }()

	select {
	case <-addDone:
		t.Fatal("add finished while the cart was being drained")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-drainDone)
	require.NoError(t, <-addDone)

	c := s.Snapshot()
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].ProductID)
	assert.Equal(t, 1, c.Count)
}
