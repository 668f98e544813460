package sellers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode"

	"go.uber.org/zap"

	"github.com/lacabane/commandes/internal/repository"
)

var (
	ErrNotFound   = errors.New("seller not found or inactive")
	ErrInvalidPIN = errors.New("invalid pin")
)

type Seller struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type,omitempty"`
}

type Repository interface {
	GetByPinHash(ctx context.Context, pinHash string) (*repository.Seller, error)
}

// Service resolves a seller from their numeric PIN. The PIN gate is a
// convenience lock on a shared tablet, not an authentication boundary; it
// still uses a proper SHA-256 digest so PINs are never stored in clear.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// HashPIN returns the hex SHA-256 digest of a PIN, the form stored in the
// sellers table.
func HashPIN(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// VerifyPIN hashes the PIN and looks up the matching active seller.
func (s *Service) VerifyPIN(ctx context.Context, pin string) (*Seller, error) {
	if !validPIN(pin) {
		return nil, ErrInvalidPIN
	}

	row, err := s.repo.GetByPinHash(ctx, HashPIN(pin))
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up seller: %w", err)
	}

	s.logger.Info("seller signed in", zap.String("seller_id", row.ID))
	return &Seller{
		ID:          row.ID,
		DisplayName: row.DisplayName,
		Type:        row.Type,
	}, nil
}

func validPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 8 {
		return false
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
