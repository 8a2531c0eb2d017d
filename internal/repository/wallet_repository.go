package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/apperror"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository/common"
)

// WalletKind выбирает таблицу кошельков: клиентскую или фрилансерскую.
type WalletKind string

const (
	WalletKindClient     WalletKind = "client"
	WalletKindFreelancer WalletKind = "freelancer"
)

func (k WalletKind) table() string {
	if k == WalletKindFreelancer {
		return "freelancer_wallets"
	}
	return "client_wallets"
}

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Get возвращает кошелёк владельца.
func (r *WalletRepository) Get(ctx context.Context, kind WalletKind, ownerID uuid.UUID) (*models.Wallet, error) {
	return common.GetByField[models.Wallet](ctx, r.db, kind.table(), "owner_id", ownerID, common.ErrNotFound)
}

// Credit зачисляет сумму на кошелёк владельца.
func (r *WalletRepository) Credit(ctx context.Context, kind WalletKind, ownerID uuid.UUID, amount float64, currency string, now time.Time) error {
	return creditWallet(ctx, r.db, kind, ownerID, amount, currency, now)
}

// creditWallet выполняет идемпотентное зачисление одним запросом:
// кошелёк создаётся при первом зачислении, существующий пополняется
// атомарным инкрементом. Зачисление в чужой валюте не применяется
// вообще — строка не обновляется, возвращается ErrCurrencyMismatch.
func creditWallet(ctx context.Context, ext sqlx.ExtContext, kind WalletKind, ownerID uuid.UUID, amount float64, currency string, now time.Time) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, balance, currency, created_at, updated_at)
		VALUES ($1, ROUND($2::numeric, 2), $3, $4, $4)
		ON CONFLICT (owner_id) DO UPDATE
		SET balance = ROUND((%s.balance + EXCLUDED.balance)::numeric, 2),
		    updated_at = EXCLUDED.updated_at
		WHERE %s.currency = EXCLUDED.currency
	`, kind.table(), kind.table(), kind.table())

	res, err := ext.ExecContext(ctx, query, ownerID, amount, currency, now)
	if err != nil {
		return fmt.Errorf("wallet repository: credit %s %w", kind, err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperror.ErrCurrencyMismatch
	}
	return nil
}
