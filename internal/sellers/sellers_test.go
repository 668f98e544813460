package sellers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lacabane/commandes/internal/repository"
	"github.com/lacabane/commandes/internal/sellers"
)

type fakeRepo struct {
	byHash map[string]*repository.Seller
	err    error
}

func (f *fakeRepo) GetByPinHash(_ context.Context, pinHash string) (*repository.Seller, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.byHash[pinHash]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	return s, nil
}

func TestHashPIN(t *testing.T) {
	assert.Equal(t,
		"03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4",
		sellers.HashPIN("1234"))
	assert.NotEqual(t, sellers.HashPIN("1234"), sellers.HashPIN("4321"))
}

func TestVerifyPIN(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{byHash: map[string]*repository.Seller{
		sellers.HashPIN("1234"): {
			ID:          "seller-1",
			DisplayName: "Marie",
			PinHash:     sellers.HashPIN("1234"),
			IsActive:    true,
			Type:        "vendeur",
		},
	}}
	svc := sellers.NewService(repo, zap.NewNop())

	t.Run("known pin", func(t *testing.T) {
		got, err := svc.VerifyPIN(ctx, "1234")
		require.NoError(t, err)
		assert.Equal(t, "seller-1", got.ID)
		assert.Equal(t, "Marie", got.DisplayName)
		assert.Equal(t, "vendeur", got.Type)
	})

	t.Run("unknown pin", func(t *testing.T) {
		_, err := svc.VerifyPIN(ctx, "9999")
		assert.ErrorIs(t, err, sellers.ErrNotFound)
	})

	t.Run("malformed pins are rejected before lookup", func(t *testing.T) {
		for _, pin := range []string{"", "123", "123456789", "12a4", "12 4"} {
			_, err := svc.VerifyPIN(ctx, pin)
			assert.ErrorIs(t, err, sellers.ErrInvalidPIN, "pin %q", pin)
		}
	})

	t.Run("repository failure is not a bad pin", func(t *testing.T) {
		broken := sellers.NewService(&fakeRepo{err: errors.New("db down")}, zap.NewNop())
		_, err := broken.VerifyPIN(ctx, "1234")
		require.Error(t, err)
		assert.NotErrorIs(t, err, sellers.ErrNotFound)
		assert.NotErrorIs(t, err, sellers.ErrInvalidPIN)
	})
}
