package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository"
)

// Интерфейсы хранилища, через которые сервисы расчётов ходят в базу.
// Реализации живут в internal/repository, в тестах подменяются моками.

type ContractRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	ListProposalMilestones(ctx context.Context, proposalID uuid.UUID) ([]models.ProposalMilestone, error)
}

type MilestoneRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Milestone, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.Milestone, error)
	CountByContract(ctx context.Context, contractID uuid.UUID) (int, error)
	InsertBatch(ctx context.Context, milestones []models.Milestone) error
	MarkSubmitted(ctx context.Context, milestoneID uuid.UUID, now time.Time) error
	MarkRejected(ctx context.Context, milestoneID uuid.UUID, now time.Time) error
	GetSubmission(ctx context.Context, id uuid.UUID) (*models.MilestoneSubmission, error)
	ListSubmissions(ctx context.Context, milestoneID uuid.UUID) ([]models.MilestoneSubmission, error)
	NextSubmissionVersion(ctx context.Context, milestoneID uuid.UUID) (int, error)
	CreateSubmission(ctx context.Context, s *models.MilestoneSubmission) error
	DecideSubmission(ctx context.Context, id uuid.UUID, status, decidedBy string, reason *string, now time.Time) error
}

type PaymentRepository interface {
	CountByContract(ctx context.Context, contractID uuid.UUID) (int, error)
	CreateHeldBatch(ctx context.Context, contract *models.Contract, milestones []models.Milestone, capturedAt time.Time) (int, error)
	GetByMilestone(ctx context.Context, milestoneID uuid.UUID) (*models.Payment, error)
	ListHeld(ctx context.Context, limit int) ([]models.Payment, error)
	ResolveRelease(ctx context.Context, p repository.ReleaseParams) error
	ResolveRefund(ctx context.Context, p repository.RefundParams) error
}

type WalletRepository interface {
	Get(ctx context.Context, kind repository.WalletKind, ownerID uuid.UUID) (*models.Wallet, error)
	Credit(ctx context.Context, kind repository.WalletKind, ownerID uuid.UUID, amount float64, currency string, now time.Time) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Notifier доставляет письмо с готовым телом. Ошибка доставки логируется
// вызывающей стороной и никогда не блокирует операцию по этапу.
type Notifier interface {
	Send(ctx context.Context, to, subject, text, html string) error
}
