package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacabane/commandes/internal/orders"
	"github.com/lacabane/commandes/internal/repository"
)

func TestMemoryCRUD(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	id, err := mem.AddOrder(ctx, orders.Order{
		ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-01", Status: orders.StatusActive,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := mem.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.ClientName)
	assert.False(t, got.CreatedAt.IsZero())

	name := "Robert"
	require.NoError(t, mem.UpdateOrder(ctx, id, orders.Patch{ClientName: &name}))
	got, err = mem.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Robert", got.ClientName)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	require.NoError(t, mem.DeleteOrder(ctx, id))
	_, err = mem.GetOrder(ctx, id)
	assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	assert.ErrorIs(t, mem.UpdateOrder(ctx, id, orders.Patch{}), repository.ErrObjectNotFound)
	assert.ErrorIs(t, mem.DeleteOrder(ctx, id), repository.ErrObjectNotFound)
}

func TestMatches(t *testing.T) {
	o := orders.Order{
		Status:     orders.StatusActive,
		CreatorID:  "seller-1",
		Location:   orders.LocationCabane,
		PickupDate: "2024-06-15",
	}

	tests := []struct {
		name string
		f    orders.Filter
		want bool
	}{
		{"empty filter", orders.Filter{}, true},
		{"status match", orders.Filter{Status: orders.StatusActive}, true},
		{"status mismatch", orders.Filter{Status: orders.StatusCancelled}, false},
		{"creator match", orders.Filter{CreatorID: "seller-1"}, true},
		{"creator mismatch", orders.Filter{CreatorID: "seller-2"}, false},
		{"location mismatch", orders.Filter{Location: orders.LocationMarcheCabreton}, false},
		{"day match", orders.Filter{PickupDate: "2024-06-15"}, true},
		{"day mismatch", orders.Filter{PickupDate: "2024-06-16"}, false},
		{"in range", orders.Filter{From: "2024-06-01", To: "2024-06-30"}, true},
		{"range bounds inclusive", orders.Filter{From: "2024-06-15", To: "2024-06-15"}, true},
		{"before range", orders.Filter{From: "2024-06-16"}, false},
		{"after range", orders.Filter{To: "2024-06-14"}, false},
		{"combined", orders.Filter{Status: orders.StatusActive, Location: orders.LocationCabane}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, matches(o, tc.f))
		})
	}
}

func TestMemoryListSorted(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	add := func(name, date, at string) {
		_, err := mem.AddOrder(ctx, orders.Order{
			ClientName: name, Quantity: 1, PickupDate: date, PickupTime: at,
		})
		require.NoError(t, err)
	}
	add("late", "2024-06-02", "08:00")
	add("early", "2024-06-01", "09:00")
	add("mid", "2024-06-01", "14:00")

	list, err := mem.ListOrders(ctx, orders.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "early", list[0].ClientName)
	assert.Equal(t, "mid", list[1].ClientName)
	assert.Equal(t, "late", list[2].ClientName)
}

func TestMemoryWatchCoalescesSlowConsumer(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	w, err := mem.WatchOrders(ctx, orders.Filter{})
	require.NoError(t, err)
	defer w.Stop()

	// Overflow the watch buffer without consuming; the watch must not block
	// mutations, and the newest snapshot must survive.
	for i := 0; i < 40; i++ {
		_, err := mem.AddOrder(ctx, orders.Order{
			ClientName: "c", Quantity: 1, PickupDate: "2024-06-01",
		})
		require.NoError(t, err)
	}

	var last []orders.Order
	for {
		select {
		case snap := <-w.Updates():
			last = snap
			continue
		default:
		}
		break
	}
	assert.Len(t, last, 40, "newest snapshot is retained")
}
