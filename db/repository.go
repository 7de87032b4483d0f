package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository defines decoupled operations for credential persistence.
type TokenRepository interface {
	Get(ctx context.Context) (*Token, error)
	Upsert(ctx context.Context, token *Token) error
	Clear(ctx context.Context) error
}

// TransactionRepository caches the transactions of a view.
type TransactionRepository interface {
	Replace(ctx context.Context, view string, txs []Transaction) error
	List(ctx context.Context, view string) ([]Transaction, error)
	Clear(ctx context.Context) error
}

// gormTokenRepo is a GORM-backed implementation of TokenRepository.
// Use constructor NewTokenRepository to obtain an instance.
type gormTokenRepo struct{ db *gorm.DB }

// gormTransactionRepo is a GORM-backed implementation of TransactionRepository.
// Use constructor NewTransactionRepository to obtain an instance.
type gormTransactionRepo struct{ db *gorm.DB }

// NewTokenRepository creates a TokenRepository. Accepts *gorm.DB to avoid global access.
func NewTokenRepository(db *gorm.DB) TokenRepository { return &gormTokenRepo{db: db} }

// NewTransactionRepository creates a TransactionRepository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &gormTransactionRepo{db: db}
}

var errNotInitialized = fmt.Errorf("repository not initialized")

func (r *gormTokenRepo) Get(ctx context.Context) (*Token, error) {
	if r.db == nil {
		return nil, errNotInitialized
	}
	var token Token
	err := r.db.WithContext(ctx).First(&token, "id = ?", tokenRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Upsert writes both tokens in a single statement so a reader never sees a
// half-updated pair.
func (r *gormTokenRepo) Upsert(ctx context.Context, token *Token) error {
	if r.db == nil {
		return errNotInitialized
	}
	token.ID = tokenRowID
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_key", "refresh_token_key", "updated_at"}),
	}).Create(token).Error
}

func (r *gormTokenRepo) Clear(ctx context.Context) error {
	if r.db == nil {
		return errNotInitialized
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Token{}).Error
}

// Replace swaps the cached transactions of a view inside one transaction.
func (r *gormTransactionRepo) Replace(ctx context.Context, view string, txs []Transaction) error {
	if r.db == nil {
		return errNotInitialized
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("view_name = ?", view).Delete(&Transaction{}).Error; err != nil {
			return err
		}
		if len(txs) == 0 {
			return nil
		}
		for i := range txs {
			txs[i].View = view
			txs[i].Position = i
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&txs).Error
	})
}

func (r *gormTransactionRepo) List(ctx context.Context, view string) ([]Transaction, error) {
	if r.db == nil {
		return nil, errNotInitialized
	}
	var txs []Transaction
	if err := r.db.WithContext(ctx).Where("view_name = ?", view).Order("position").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *gormTransactionRepo) Clear(ctx context.Context) error {
	if r.db == nil {
		return errNotInitialized
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&Transaction{}).Error
}
