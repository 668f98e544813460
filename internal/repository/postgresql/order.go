package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/lacabane/commandes/internal/db"
	"github.com/lacabane/commandes/internal/repository"
)

const orderColumns = `id, client_name, client_phone, oyster_type, origin, quantity,
        pickup_date, pickup_time, location, notes, status, creator_id, created_at, updated_at`

type OrderRepo struct {
	db db.DB
}

func NewOrderRepo(db db.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Create(ctx context.Context, order *repository.Order) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO orders (`+orderColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `, order.ID, order.ClientName, order.ClientPhone, order.OysterType, order.Origin,
		order.Quantity, order.PickupDate, order.PickupTime, order.Location, order.Notes,
		order.Status, order.CreatorID, order.CreatedAt, order.UpdatedAt)
	return err
}

func (r *OrderRepo) CreateTx(ctx context.Context, tx db.Tx, order *repository.Order) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO orders (`+orderColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `, order.ID, order.ClientName, order.ClientPhone, order.OysterType, order.Origin,
		order.Quantity, order.PickupDate, order.PickupTime, order.Location, order.Notes,
		order.Status, order.CreatorID, order.CreatedAt, order.UpdatedAt)
	return err
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*repository.Order, error) {
	var order repository.Order
	err := r.db.Get(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Order, error) {
	var order repository.Order
	err := tx.Get(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) UpdateTx(ctx context.Context, tx db.Tx, order *repository.Order) error {
	tag, err := tx.Exec(ctx, `
        UPDATE orders
        SET
            client_name = $1,
            client_phone = $2,
            oyster_type = $3,
            origin = $4,
            quantity = $5,
            pickup_date = $6,
            pickup_time = $7,
            location = $8,
            notes = $9,
            status = $10,
            updated_at = $11
        WHERE id = $12
    `, order.ClientName, order.ClientPhone, order.OysterType, order.Origin, order.Quantity,
		order.PickupDate, order.PickupTime, order.Location, order.Notes, order.Status,
		order.UpdatedAt, order.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}

func (r *OrderRepo) DeleteTx(ctx context.Context, tx db.Tx, id string) error {
	tag, err := tx.Exec(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}

// List returns the orders matching the filter, always sorted by pickup day
// then pickup time. That ordering is part of the subscription contract.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*repository.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders"
	var (
		conds []string
		args  []interface{}
	)

	addCond := func(cond, value string) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		addCond("status = $%d", f.Status)
	}
	if f.CreatorID != "" {
		addCond("creator_id = $%d", f.CreatorID)
	}
	if f.Location != "" {
		addCond("location = $%d", f.Location)
	}
	if f.PickupDate != "" {
		addCond("pickup_date = $%d", f.PickupDate)
	}
	if f.From != "" {
		addCond("pickup_date >= $%d", f.From)
	}
	if f.To != "" {
		addCond("pickup_date <= $%d", f.To)
	}

	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY pickup_date ASC, pickup_time ASC"

	var orders []*repository.Order
	err := r.db.Select(ctx, &orders, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
