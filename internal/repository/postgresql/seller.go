package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"github.com/lacabane/commandes/internal/db"
	"github.com/lacabane/commandes/internal/repository"
)

type SellerRepo struct {
	db db.DB
}

func NewSellerRepo(db db.DB) *SellerRepo {
	return &SellerRepo{db: db}
}

// GetByPinHash looks up the active seller whose stored digest matches the
// one computed from the PIN the operator typed.
func (r *SellerRepo) GetByPinHash(ctx context.Context, pinHash string) (*repository.Seller, error) {
	var seller repository.Seller
	err := r.db.Get(ctx, &seller, `
        SELECT id, display_name, pin_hash, is_active, type
        FROM sellers
        WHERE pin_hash = $1 AND is_active = TRUE
    `, pinHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &seller, nil
}

func (r *SellerRepo) GetByID(ctx context.Context, id string) (*repository.Seller, error) {
	var seller repository.Seller
	err := r.db.Get(ctx, &seller, `
        SELECT id, display_name, pin_hash, is_active, type
        FROM sellers
        WHERE id = $1
    `, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &seller, nil
}

func (r *SellerRepo) ListActive(ctx context.Context) ([]*repository.Seller, error) {
	var sellers []*repository.Seller
	err := r.db.Select(ctx, &sellers, `
        SELECT id, display_name, pin_hash, is_active, type
        FROM sellers
        WHERE is_active = TRUE
        ORDER BY display_name ASC
    `)
	return sellers, err
}
