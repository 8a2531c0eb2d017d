package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository/common"
)

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ReleaseParams описывает перевод удержанного платежа в released.
type ReleaseParams struct {
	PaymentID    uuid.UUID
	MilestoneID  uuid.UUID
	ContractID   uuid.UUID
	FreelancerID uuid.UUID
	NetAmount    float64
	Currency     string
	Now          time.Time
	// StampApprovalNow: ручное одобрение ставит approved_at = now и
	// снимает rejected_at; свип сохраняет существующий approved_at.
	StampApprovalNow bool
}

// RefundParams описывает возврат удержанного платежа клиенту.
type RefundParams struct {
	PaymentID   uuid.UUID
	MilestoneID uuid.UUID
	ClientID    uuid.UUID
	Now         time.Time
}

// CountByContract возвращает число платежей контракта.
func (r *PaymentRepository) CountByContract(ctx context.Context, contractID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM payments WHERE contract_id = $1`
	if err := r.db.GetContext(ctx, &count, query, contractID); err != nil {
		return 0, fmt.Errorf("payment repository: count by contract %w", err)
	}
	return count, nil
}

// CreateHeldBatch создаёт по одному held-платежу на каждый этап —
// на полную брутто-сумму, комиссия удерживается только при release.
func (r *PaymentRepository) CreateHeldBatch(ctx context.Context, contract *models.Contract, milestones []models.Milestone, capturedAt time.Time) (int, error) {
	if len(milestones) == 0 {
		return 0, nil
	}

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		inserter := common.NewBatchInserter(tx, `
			INSERT INTO payments (id, contract_id, milestone_id, amount, currency, status, captured_at)
		`, 7, len(milestones))

		for _, m := range milestones {
			if err := inserter.Add(ctx,
				uuid.New(), contract.ID, m.ID, m.Amount, contract.Currency, models.PaymentStatusHeld, capturedAt,
			); err != nil {
				return err
			}
		}

		return inserter.Flush(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("payment repository: create held batch %w", err)
	}
	return len(milestones), nil
}

// GetByMilestone возвращает платёж, обеспечивающий этап.
func (r *PaymentRepository) GetByMilestone(ctx context.Context, milestoneID uuid.UUID) (*models.Payment, error) {
	return common.GetByField[models.Payment](ctx, r.db, "payments", "milestone_id", milestoneID, common.ErrNotFound)
}

// ListHeld возвращает удержанные платежи для свипа, старые первыми.
func (r *PaymentRepository) ListHeld(ctx context.Context, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	query := `SELECT * FROM payments WHERE status = $1 ORDER BY created_at ASC LIMIT $2`
	if err := r.db.SelectContext(ctx, &payments, query, models.PaymentStatusHeld, limit); err != nil {
		return nil, fmt.Errorf("payment repository: list held %w", err)
	}
	return payments, nil
}

// ResolveRelease атомарно завершает этап выплатой фрилансеру:
// выплата, зачисление на кошелёк и смена статусов идут одной транзакцией.
// Повторный вызов безопасен: выплата вставляется через ON CONFLICT по
// milestone_id, зачисление происходит только когда строка реально создана.
func (r *PaymentRepository) ResolveRelease(ctx context.Context, p ReleaseParams) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var payment models.Payment
		err := tx.GetContext(ctx, &payment, `SELECT * FROM payments WHERE id = $1 FOR UPDATE`, p.PaymentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrNotFound
			}
			return err
		}

		// Возвращённый платёж трогать нельзя: этап уже разрешён в другую сторону.
		if payment.Status == models.PaymentStatusRefunded {
			return common.ErrAlreadyResolved
		}

		// Не более одной выплаты на этап; при гонке вставка тихо проигрывает.
		if p.NetAmount > 0 {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO payouts (id, milestone_id, contract_id, freelancer_id, amount, currency, status, sent_at, settled_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
				ON CONFLICT (milestone_id) DO NOTHING
			`, uuid.New(), p.MilestoneID, p.ContractID, p.FreelancerID, p.NetAmount, p.Currency, models.PayoutStatusSettled, p.Now)
			if err != nil {
				return fmt.Errorf("insert payout: %w", err)
			}

			if created, _ := res.RowsAffected(); created > 0 {
				if err := creditWallet(ctx, tx, WalletKindFreelancer, p.FreelancerID, p.NetAmount, p.Currency, p.Now); err != nil {
					return err
				}
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3
		`, p.PaymentID, models.PaymentStatusReleased, models.PaymentStatusHeld); err != nil {
			return fmt.Errorf("release payment: %w", err)
		}

		if p.StampApprovalNow {
			_, err = tx.ExecContext(ctx, `
				UPDATE milestones
				SET status = $2, approved_at = $3, rejected_at = NULL, updated_at = NOW()
				WHERE id = $1
			`, p.MilestoneID, models.MilestoneStatusReleased, p.Now)
		} else {
			_, err = tx.ExecContext(ctx, `
				UPDATE milestones
				SET status = $2, approved_at = COALESCE(approved_at, $3), updated_at = NOW()
				WHERE id = $1
			`, p.MilestoneID, models.MilestoneStatusReleased, p.Now)
		}
		if err != nil {
			return fmt.Errorf("release milestone: %w", err)
		}

		return nil
	})
}

// ResolveRefund атомарно возвращает клиенту полную брутто-сумму холда.
// Комиссия при возврате не удерживается.
func (r *PaymentRepository) ResolveRefund(ctx context.Context, p RefundParams) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var payment models.Payment
		err := tx.GetContext(ctx, &payment, `SELECT * FROM payments WHERE id = $1 FOR UPDATE`, p.PaymentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrNotFound
			}
			return err
		}

		if payment.Status == models.PaymentStatusReleased {
			return common.ErrAlreadyResolved
		}

		// Зачисляем клиенту только при первом переходе held -> refunded.
		if payment.Status == models.PaymentStatusHeld {
			if err := creditWallet(ctx, tx, WalletKindClient, p.ClientID, payment.Amount, payment.Currency, p.Now); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3
		`, p.PaymentID, models.PaymentStatusRefunded, models.PaymentStatusHeld); err != nil {
			return fmt.Errorf("refund payment: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE milestones
			SET status = $2, rejected_at = COALESCE(rejected_at, $3), updated_at = NOW()
			WHERE id = $1
		`, p.MilestoneID, models.MilestoneStatusRefunded, p.Now); err != nil {
			return fmt.Errorf("refund milestone: %w", err)
		}

		return nil
	})
}
