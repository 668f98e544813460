package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/lacabane/commandes/internal/orders"
	mock_orders "github.com/lacabane/commandes/internal/orders/mocks"
	"github.com/lacabane/commandes/internal/store"
)

func recvSnapshot(t *testing.T, sub *orders.Subscription) []orders.Order {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		require.True(t, ok, "snapshot channel closed unexpectedly")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func waitClosed(t *testing.T, sub *orders.Subscription) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Snapshots():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for subscription to close")
		}
	}
}

func TestSessionCreateDeliversSnapshot(t *testing.T) {
	mem := store.NewMemory()
	session := orders.NewSession(mem, zap.NewNop())
	ctx := context.Background()

	sub, err := session.Subscribe(ctx, orders.Filter{})
	require.NoError(t, err)
	defer sub.Close()

	assert.Empty(t, recvSnapshot(t, sub))

	id, err := session.Create(ctx, orders.Order{
		ClientName: "Bob Martin",
		OysterType: orders.GradeN3,
		Quantity:   1.5,
		PickupDate: "2024-06-01",
		PickupTime: "10:00",
		Location:   orders.LocationCabane,
		Status:     orders.StatusCancelled, // must be overridden
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	snap := recvSnapshot(t, sub)
	require.Len(t, snap, 1)
	got := snap[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, orders.StatusActive, got.Status)
	assert.Equal(t, "Bob Martin", got.ClientName)
	assert.Equal(t, orders.GradeN3, got.OysterType)
	assert.InDelta(t, 1.5, got.Quantity, 1e-9)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestSessionFilteredSubscription(t *testing.T) {
	mem := store.NewMemory()
	session := orders.NewSession(mem, zap.NewNop())
	ctx := context.Background()

	sub, err := session.Subscribe(ctx, orders.Filter{PickupDate: "2024-06-01"})
	require.NoError(t, err)
	defer sub.Close()

	assert.Empty(t, recvSnapshot(t, sub))

	_, err = session.Create(ctx, orders.Order{
		ClientName: "Hors jour", Quantity: 1, PickupDate: "2024-06-02",
	})
	require.NoError(t, err)
	// The mutation still produces a snapshot; the off-day order is filtered out.
	assert.Empty(t, recvSnapshot(t, sub))

	id, err := session.Create(ctx, orders.Order{
		ClientName: "Du jour", Quantity: 2, PickupDate: "2024-06-01", PickupTime: "09:30",
	})
	require.NoError(t, err)

	snap := recvSnapshot(t, sub)
	require.Len(t, snap, 1)
	assert.Equal(t, id, snap[0].ID)
}

func TestSessionSnapshotsSortedByPickup(t *testing.T) {
	mem := store.NewMemory()
	session := orders.NewSession(mem, zap.NewNop())
	ctx := context.Background()

	mk := func(name, date, at string) {
		_, err := session.Create(ctx, orders.Order{
			ClientName: name, Quantity: 1, PickupDate: date, PickupTime: at,
		})
		require.NoError(t, err)
	}
	mk("c", "2024-06-02", "09:00")
	mk("a", "2024-06-01", "09:00")
	mk("b", "2024-06-01", "11:00")

	sub, err := session.Subscribe(ctx, orders.Filter{})
	require.NoError(t, err)
	defer sub.Close()

	snap := recvSnapshot(t, sub)
	require.Len(t, snap, 3)
	assert.Equal(t, "a", snap[0].ClientName)
	assert.Equal(t, "b", snap[1].ClientName)
	assert.Equal(t, "c", snap[2].ClientName)
}

func TestSessionUpdateAndRemove(t *testing.T) {
	mem := store.NewMemory()
	session := orders.NewSession(mem, zap.NewNop())
	ctx := context.Background()

	id, err := session.Create(ctx, orders.Order{
		ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-01",
	})
	require.NoError(t, err)

	sub, err := session.Subscribe(ctx, orders.Filter{})
	require.NoError(t, err)
	defer sub.Close()
	before := recvSnapshot(t, sub)
	require.Len(t, before, 1)

	qty := 2.5
	status := orders.StatusReceived
	err = session.Update(ctx, id, orders.Patch{Quantity: &qty, Status: &status})
	require.NoError(t, err)

	snap := recvSnapshot(t, sub)
	require.Len(t, snap, 1)
	assert.InDelta(t, 2.5, snap[0].Quantity, 1e-9)
	assert.Equal(t, orders.StatusReceived, snap[0].Status)
	assert.False(t, snap[0].UpdatedAt.Before(before[0].UpdatedAt))

	require.NoError(t, session.Remove(ctx, id))
	assert.Empty(t, recvSnapshot(t, sub))

	err = session.Update(ctx, "missing", orders.Patch{Quantity: &qty})
	assert.Error(t, err)
}

func TestSubscriptionCloseIdempotent(t *testing.T) {
	mem := store.NewMemory()
	session := orders.NewSession(mem, zap.NewNop())

	sub, err := session.Subscribe(context.Background(), orders.Filter{})
	require.NoError(t, err)

	// Close before the first snapshot was ever consumed, then again.
	sub.Close()
	sub.Close()

	waitClosed(t, sub)
	assert.NoError(t, sub.Err())
}

func TestSubscriptionStoreFailure(t *testing.T) {
	mem := store.NewMemory()
	session := orders.NewSession(mem, zap.NewNop())

	sub, err := session.Subscribe(context.Background(), orders.Filter{})
	require.NoError(t, err)

	boom := errors.New("live channel broken")
	mem.FailWatchers(boom)

	waitClosed(t, sub)
	assert.ErrorIs(t, sub.Err(), boom)
}

func TestSubscribeFailsWhenStoreRejectsWatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock_orders.NewMockStoreClient(ctrl)
	client.EXPECT().
		WatchOrders(gomock.Any(), orders.Filter{}).
		Return(nil, errors.New("store unavailable"))

	session := orders.NewSession(client, zap.NewNop())
	_, err := session.Subscribe(context.Background(), orders.Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open live query")
}

func TestSubscriptionContextCancel(t *testing.T) {
	mem := store.NewMemory()
	session := orders.NewSession(mem, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := session.Subscribe(ctx, orders.Filter{})
	require.NoError(t, err)

	cancel()
	waitClosed(t, sub)
	assert.NoError(t, sub.Err())
}
