//go:generate mockgen -source ./session.go -destination=./mocks/store_client.go -package=mock_orders
package orders

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lacabane/commandes/internal/metrics"
)

// Filter narrows a live order query. Zero-valued fields are not applied, so
// filters compose freely; an empty Filter matches every order. Results are
// always sorted by (pickup_date asc, pickup_time asc) regardless of filters.
type Filter struct {
	Status     Status
	CreatorID  string
	Location   Location
	PickupDate string
	From       string
	To         string
}

// Patch carries a partial edit. Nil fields are left untouched; the store
// refreshes updated_at on every applied patch.
type Patch struct {
	ClientName  *string
	ClientPhone *string
	OysterType  *Grade
	Origin      *Origin
	Quantity    *float64
	PickupDate  *string
	PickupTime  *string
	Location    *Location
	Notes       *string
	Status      *Status
}

// Watch is a live query handle produced by a StoreClient. Updates carries
// full result sets, one per store-side change, in commit order. The channel
// closes when the watch stops; Err is meaningful only after that.
type Watch interface {
	Updates() <-chan []Order
	Err() error
	Stop()
}

// StoreClient is the document-store capability the session writes through to.
// Implementations assign ids and the created_at/updated_at timestamps.
type StoreClient interface {
	AddOrder(ctx context.Context, o Order) (string, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	UpdateOrder(ctx context.Context, id string, p Patch) error
	DeleteOrder(ctx context.Context, id string) error
	ListOrders(ctx context.Context, f Filter) ([]Order, error)
	WatchOrders(ctx context.Context, f Filter) (Watch, error)
}

// Session bridges the UI's need for a continuously fresh order list and the
// store's live-query primitive. It never caches writes: a mutation goes to
// the store and is confirmed by the next snapshot, not by a local echo.
type Session struct {
	client StoreClient
	logger *zap.Logger
}

func NewSession(client StoreClient, logger *zap.Logger) *Session {
	return &Session{client: client, logger: logger}
}

// Subscription is one live view over the order list. Snapshots delivers the
// entire current result set after every matching change, in order. Close is
// idempotent and safe to call before the first snapshot arrives.
type Subscription struct {
	watch     Watch
	snapshots chan []Order

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
	done      chan struct{}
}

func (s *Subscription) Snapshots() <-chan []Order { return s.snapshots }

// Err reports why the subscription ended. It is nil after a plain Close and
// non-nil when the store's live channel failed.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.watch.Stop()
	})
}

// Subscribe opens a live query and starts delivering snapshots. The store
// connection stays open until Close is called or ctx is cancelled. Errors on
// the live channel end the subscription; there is no automatic retry.
func (s *Session) Subscribe(ctx context.Context, f Filter) (*Subscription, error) {
	watch, err := s.client.WatchOrders(ctx, f)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("subscribe").Inc()
		return nil, fmt.Errorf("failed to open live query: %w", err)
	}

	sub := &Subscription{
		watch:     watch,
		snapshots: make(chan []Order),
		done:      make(chan struct{}),
	}

	metrics.ActiveSubscriptions.Inc()
	go sub.pump(ctx, s.logger)
	return sub, nil
}

// pump is the only writer of sub.snapshots, which is what guarantees the
// in-order delivery contract.
func (sub *Subscription) pump(ctx context.Context, logger *zap.Logger) {
	defer func() {
		metrics.ActiveSubscriptions.Dec()
		close(sub.snapshots)
	}()

	for {
		select {
		case snap, ok := <-sub.watch.Updates():
			if !ok {
				if err := sub.watch.Err(); err != nil {
					logger.Error("live query failed", zap.Error(err))
					metrics.OperationErrorsTotal.WithLabelValues("snapshot").Inc()
					sub.mu.Lock()
					sub.err = err
					sub.mu.Unlock()
				}
				sub.Close()
				return
			}
			select {
			case sub.snapshots <- snap:
				metrics.SnapshotsDeliveredTotal.Inc()
			case <-sub.done:
				return
			case <-ctx.Done():
				sub.Close()
				return
			}
		case <-sub.done:
			return
		case <-ctx.Done():
			sub.Close()
			return
		}
	}
}

// Create writes one new order. Status is forced to active and timestamps are
// store-assigned. The caller validates beforehand; confirmation comes from
// the next snapshot, not from this call.
func (s *Session) Create(ctx context.Context, o Order) (string, error) {
	o.Status = StatusActive
	id, err := s.client.AddOrder(ctx, o)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("create").Inc()
		return "", fmt.Errorf("failed to create order: %w", err)
	}
	metrics.OrdersCreatedTotal.Inc()
	s.logger.Info("order created", zap.String("order_id", id))
	return id, nil
}

// Update merges the patch into the stored order and refreshes updated_at.
// The cancelled-order edit block is enforced by the caller layer, not here.
func (s *Session) Update(ctx context.Context, id string, p Patch) error {
	if err := s.client.UpdateOrder(ctx, id, p); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("update").Inc()
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	metrics.OrdersUpdatedTotal.Inc()
	return nil
}

// Remove permanently deletes an order. Kept for completeness; the normal
// flows cancel instead of deleting.
func (s *Session) Remove(ctx context.Context, id string) error {
	if err := s.client.DeleteOrder(ctx, id); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("delete").Inc()
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	return nil
}
