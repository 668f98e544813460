package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lacabane/commandes/internal/db"
	"github.com/lacabane/commandes/internal/orders"
	"github.com/lacabane/commandes/internal/repository"
)

// OrderRepository is the slice of the order repo the store needs.
type OrderRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, order *repository.Order) error
	GetByID(ctx context.Context, id string) (*repository.Order, error)
	GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Order, error)
	UpdateTx(ctx context.Context, tx db.Tx, order *repository.Order) error
	DeleteTx(ctx context.Context, tx db.Tx, id string) error
	List(ctx context.Context, f repository.OrderFilter) ([]*repository.Order, error)
}

// OutboxTaskRepository enqueues order events inside the mutation transaction.
type OutboxTaskRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
}

// Postgres implements orders.StoreClient on top of the relational schema.
// Live queries are poll-based: a ticker re-runs the filtered query and a
// fingerprint of the result suppresses deliveries when nothing changed.
type Postgres struct {
	db           db.DB
	orderRepo    OrderRepository
	outboxRepo   OutboxTaskRepository
	topic        string
	pollInterval time.Duration
	logger       *zap.Logger
}

var _ orders.StoreClient = (*Postgres)(nil)

func NewPostgres(database db.DB, orderRepo OrderRepository, outboxRepo OutboxTaskRepository, topic string, pollInterval time.Duration, logger *zap.Logger) *Postgres {
	return &Postgres{
		db:           database,
		orderRepo:    orderRepo,
		outboxRepo:   outboxRepo,
		topic:        topic,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

func (s *Postgres) AddOrder(ctx context.Context, o orders.Order) (string, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	now := time.Now().UTC()
	o.ID = uuid.NewString()
	o.CreatedAt = now
	o.UpdatedAt = now

	row := toRow(o)
	if err := s.orderRepo.CreateTx(ctx, tx, &row); err != nil {
		return "", fmt.Errorf("failed to add order: %w", err)
	}

	if err := s.enqueueEvent(ctx, tx, "order_created", o); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit order creation: %w", err)
	}
	return o.ID, nil
}

func (s *Postgres) GetOrder(ctx context.Context, id string) (*orders.Order, error) {
	row, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o := fromRow(row)
	return &o, nil
}

func (s *Postgres) UpdateOrder(ctx context.Context, id string, p orders.Patch) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	row, err := s.orderRepo.GetByIDTx(ctx, tx, id)
	if err != nil {
		return err
	}

	o := fromRow(row)
	event := "order_updated"
	if p.Status != nil && *p.Status != o.Status {
		event = "order_status_changed"
	}
	applyPatch(&o, p)
	o.UpdatedAt = time.Now().UTC()

	updated := toRow(o)
	if err := s.orderRepo.UpdateTx(ctx, tx, &updated); err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	if err := s.enqueueEvent(ctx, tx, event, o); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order update: %w", err)
	}
	return nil
}

func (s *Postgres) DeleteOrder(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	row, err := s.orderRepo.GetByIDTx(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := s.orderRepo.DeleteTx(ctx, tx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if err := s.enqueueEvent(ctx, tx, "order_deleted", fromRow(row)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order deletion: %w", err)
	}
	return nil
}

func (s *Postgres) ListOrders(ctx context.Context, f orders.Filter) ([]orders.Order, error) {
	rows, err := s.orderRepo.List(ctx, toRowFilter(f))
	if err != nil {
		return nil, err
	}
	list := make([]orders.Order, len(rows))
	for i, row := range rows {
		list[i] = fromRow(row)
	}
	return list, nil
}

// WatchOrders opens a poll-based live query. The first poll always delivers
// a snapshot, even an empty one, so subscribers leave the pending state.
func (s *Postgres) WatchOrders(ctx context.Context, f orders.Filter) (orders.Watch, error) {
	w := &pollWatch{
		updates: make(chan []orders.Order),
		stopped: make(chan struct{}),
	}
	go w.run(ctx, s, f)
	return w, nil
}

func (s *Postgres) enqueueEvent(ctx context.Context, tx db.Tx, event string, o orders.Order) error {
	payload, err := json.Marshal(repository.OrderEventPayload{
		Event:      event,
		OrderID:    o.ID,
		CreatorID:  o.CreatorID,
		Status:     string(o.Status),
		PickupDate: o.PickupDate,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	task := &repository.OutboxTask{Topic: s.topic, Payload: payload}
	if err := s.outboxRepo.CreateTx(ctx, tx, task); err != nil {
		return fmt.Errorf("failed to enqueue order event: %w", err)
	}
	return nil
}

type pollWatch struct {
	updates  chan []orders.Order
	err      error
	stopOnce sync.Once
	stopped  chan struct{}
}

func (w *pollWatch) Updates() <-chan []orders.Order { return w.updates }

func (w *pollWatch) Err() error { return w.err }

func (w *pollWatch) Stop() {
	w.stopOnce.Do(func() { close(w.stopped) })
}

func (w *pollWatch) run(ctx context.Context, s *Postgres, f orders.Filter) {
	defer close(w.updates)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var last string
	first := true

	poll := func() bool {
		list, err := s.ListOrders(ctx, f)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			s.logger.Error("live query poll failed", zap.Error(err))
			w.err = err
			return false
		}

		fp := fingerprint(list)
		if !first && fp == last {
			return true
		}
		first = false
		last = fp

		select {
		case w.updates <- list:
			return true
		case <-w.stopped:
			return false
		case <-ctx.Done():
			return false
		}
	}

	if !poll() {
		return
	}
	for {
		select {
		case <-ticker.C:
			if !poll() {
				return
			}
		case <-w.stopped:
			return
		case <-ctx.Done():
			return
		}
	}
}

// fingerprint condenses a result set into a comparable key: ids plus their
// update times, in result order. Equal keys mean nothing worth delivering.
func fingerprint(list []orders.Order) string {
	var b strings.Builder
	for _, o := range list {
		b.WriteString(o.ID)
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(o.UpdatedAt.UnixNano(), 10))
		b.WriteByte(';')
	}
	return b.String()
}
