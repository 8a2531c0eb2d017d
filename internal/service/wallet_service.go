package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/apperror"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/money"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository"
)

// WalletService — бухгалтерия кошельков. Зачисление идемпотентно на
// уровне вызывающих (выплата создаётся не более одного раза), здесь же
// действует жёсткий отказ при несовпадении валют: ничего не применяется.
type WalletService struct {
	wallets WalletRepository
	now     func() time.Time
}

func NewWalletService(wallets WalletRepository) *WalletService {
	return &WalletService{wallets: wallets, now: time.Now}
}

// Credit зачисляет сумму на кошелёк владельца. Кошелёк создаётся лениво
// при первом зачислении. Ошибка означает, что денежный эффект не
// произошёл — вызывающий не должен помечать платёж разрешённым.
func (s *WalletService) Credit(ctx context.Context, kind repository.WalletKind, ownerID uuid.UUID, amount float64, currency string) error {
	rounded := money.Round2(amount)
	if rounded <= 0 {
		return apperror.New(apperror.ErrCodeValidation, "сумма зачисления должна быть положительной")
	}
	if currency == "" {
		return apperror.New(apperror.ErrCodeValidation, "валюта зачисления обязательна")
	}
	return s.wallets.Credit(ctx, kind, ownerID, rounded, currency, s.now())
}

// GetWallet возвращает кошелёк владельца указанного типа.
func (s *WalletService) GetWallet(ctx context.Context, kind repository.WalletKind, ownerID uuid.UUID) (*models.Wallet, error) {
	return s.wallets.Get(ctx, kind, ownerID)
}
