// Package wallets resolves destination wallets and strict-token requirements
// for the collections in a cart.
package wallets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minthouse/storefront-backend/pkg/db/models"
	pkgerrors "github.com/minthouse/storefront-backend/pkg/errors"
	"github.com/minthouse/storefront-backend/pkg/money"
)

// CollectionInfo is the routing data checkout needs per collection: where
// the money goes and whether the collection demands a specific token.
type CollectionInfo struct {
	CollectionID  uuid.UUID
	WalletAddress string
	StrictToken   *money.TokenRef
}

// Repository reads collection and platform wallet routing data.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CollectionInfo resolves a collection's destination wallet, falling back to
// the platform's main active wallet when the collection has none of its own.
func (r *Repository) CollectionInfo(ctx context.Context, collectionID uuid.UUID) (CollectionInfo, error) {
	var collection models.Collection
	err := r.db.WithContext(ctx).
		Where("id = ?", collectionID).
		First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CollectionInfo{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "collection %s not found", collectionID)
	}
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("load collection %s: %w", collectionID, err)
	}

	info := CollectionInfo{CollectionID: collection.ID}
	if collection.StrictToken != nil {
		info.StrictToken = &money.TokenRef{
			Address:  collection.StrictToken.Address,
			Symbol:   collection.StrictToken.Symbol,
			Decimals: collection.StrictToken.Decimals,
		}
	}

	if collection.WalletAddress != nil && *collection.WalletAddress != "" {
		info.WalletAddress = *collection.WalletAddress
		return info, nil
	}

	main, err := r.MainActiveWallet(ctx)
	if err != nil {
		return CollectionInfo{}, err
	}
	info.WalletAddress = main
	return info, nil
}

// MainActiveWallet returns the platform's main active wallet address.
func (r *Repository) MainActiveWallet(ctx context.Context) (string, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("is_main = true AND is_active = true").
		First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "no main active wallet configured")
	}
	if err != nil {
		return "", fmt.Errorf("load main wallet: %w", err)
	}
	return wallet.Address, nil
}
