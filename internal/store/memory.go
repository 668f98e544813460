package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lacabane/commandes/internal/orders"
	"github.com/lacabane/commandes/internal/repository"
)

// Memory is an in-process StoreClient used by tests and local development.
// Watchers are notified synchronously on every mutation, which makes snapshot
// sequences deterministic in tests.
type Memory struct {
	mu       sync.RWMutex
	byID     map[string]orders.Order
	watchers map[*memoryWatch]struct{}
}

var _ orders.StoreClient = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		byID:     make(map[string]orders.Order),
		watchers: make(map[*memoryWatch]struct{}),
	}
}

func (m *Memory) AddOrder(_ context.Context, o orders.Order) (string, error) {
	m.mu.Lock()
	now := time.Now().UTC()
	o.ID = uuid.NewString()
	o.CreatedAt = now
	o.UpdatedAt = now
	m.byID[o.ID] = o
	m.mu.Unlock()

	m.notify()
	return o.ID, nil
}

func (m *Memory) GetOrder(_ context.Context, id string) (*orders.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	return &o, nil
}

func (m *Memory) UpdateOrder(_ context.Context, id string, p orders.Patch) error {
	m.mu.Lock()
	o, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return repository.ErrObjectNotFound
	}
	applyPatch(&o, p)
	o.UpdatedAt = time.Now().UTC()
	m.byID[id] = o
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *Memory) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.byID[id]; !ok {
		m.mu.Unlock()
		return repository.ErrObjectNotFound
	}
	delete(m.byID, id)
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *Memory) ListOrders(_ context.Context, f orders.Filter) ([]orders.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot(f), nil
}

func (m *Memory) WatchOrders(ctx context.Context, f orders.Filter) (orders.Watch, error) {
	w := &memoryWatch{
		store:   m,
		filter:  f,
		updates: make(chan []orders.Order, 16),
		stopped: make(chan struct{}),
	}

	m.mu.Lock()
	m.watchers[w] = struct{}{}
	w.updates <- m.snapshot(f)
	m.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.stopped:
		}
	}()
	return w, nil
}

// FailWatchers closes every open watch with the given error, simulating a
// broken live channel.
func (m *Memory) FailWatchers(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for w := range m.watchers {
		w.fail(err)
		delete(m.watchers, w)
	}
}

func (m *Memory) snapshot(f orders.Filter) []orders.Order {
	var list []orders.Order
	for _, o := range m.byID {
		if matches(o, f) {
			list = append(list, o)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].PickupDate != list[j].PickupDate {
			return list[i].PickupDate < list[j].PickupDate
		}
		return list[i].PickupTime < list[j].PickupTime
	})
	return list
}

func (m *Memory) notify() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for w := range m.watchers {
		select {
		case <-w.stopped:
			delete(m.watchers, w)
			continue
		default:
		}
		snap := m.snapshot(w.filter)
		select {
		case w.updates <- snap:
		default:
			// Coalesce: a slow consumer gets the newest snapshot only.
			select {
			case <-w.updates:
			default:
			}
			w.updates <- snap
		}
	}
}

func matches(o orders.Order, f orders.Filter) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.CreatorID != "" && o.CreatorID != f.CreatorID {
		return false
	}
	if f.Location != "" && o.Location != f.Location {
		return false
	}
	if f.PickupDate != "" && o.PickupDate != f.PickupDate {
		return false
	}
	if f.From != "" && o.PickupDate < f.From {
		return false
	}
	if f.To != "" && o.PickupDate > f.To {
		return false
	}
	return true
}

type memoryWatch struct {
	store  *Memory
	filter orders.Filter

	updates  chan []orders.Order
	stopOnce sync.Once
	stopped  chan struct{}

	mu  sync.Mutex
	err error
}

func (w *memoryWatch) Updates() <-chan []orders.Order { return w.updates }

func (w *memoryWatch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *memoryWatch) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopped)
		w.store.drop(w)
		close(w.updates)
	})
}

func (w *memoryWatch) fail(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
	w.stopOnce.Do(func() {
		close(w.stopped)
		close(w.updates)
	})
}

func (m *Memory) drop(w *memoryWatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.watchers, w)
}
