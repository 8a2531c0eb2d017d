package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/logger"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/apperror"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/money"
)

const (
	// Расписание стартует через сутки после подтверждения контракта.
	scheduleStartGrace = 24 * time.Hour

	defaultGraceDays = 3
	maxGraceDays     = 30
)

// ScheduleResult — итог построения расписания.
type ScheduleResult struct {
	Inserted        int  `json:"inserted"`
	PaymentsCreated int  `json:"payments_created"`
	AlreadyPresent  bool `json:"-"`
}

// ScheduleService строит расписание этапов подтверждённого контракта
// из условий принятого предложения и открывает escrow-холды.
type ScheduleService struct {
	contracts  ContractRepository
	milestones MilestoneRepository
	payments   PaymentRepository
	now        func() time.Time
}

func NewScheduleService(contracts ContractRepository, milestones MilestoneRepository, payments PaymentRepository) *ScheduleService {
	return &ScheduleService{
		contracts:  contracts,
		milestones: milestones,
		payments:   payments,
		now:        time.Now,
	}
}

// Build создаёт этапы и холды для контракта. Повторный вызов на уже
// расписанном контракте — no-op, кроме случая, когда первый запуск успел
// вставить этапы, но упал до создания платежей: тогда досоздаются холды.
func (s *ScheduleService) Build(ctx context.Context, contractID uuid.UUID) (*ScheduleResult, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	existing, err := s.milestones.CountByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return s.retryMissingPayments(ctx, contract)
	}

	if contract.ProposalID == nil {
		return nil, apperror.ErrMissingProposalLink
	}

	terms, err := s.contracts.ListProposalMilestones(ctx, *contract.ProposalID)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, apperror.ErrNoProposalTerms
	}

	confirmedAt := s.confirmedAt(contract)
	milestones := buildMilestones(contract, terms, confirmedAt)

	// Проверяем непосредственно перед вставкой: параллельный запуск мог
	// успеть расписать контракт, дублировать этапы нельзя.
	existing, err = s.milestones.CountByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return &ScheduleResult{AlreadyPresent: true}, nil
	}

	if err := s.milestones.InsertBatch(ctx, milestones); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить этапы расписания")
	}

	result := &ScheduleResult{Inserted: len(milestones)}

	paymentCount, err := s.payments.CountByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if paymentCount == 0 {
		created, err := s.payments.CreateHeldBatch(ctx, contract, milestones, confirmedAt)
		if err != nil {
			// Этапы уже сохранены; недостающие холды досоздаст повторный запуск.
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "этапы созданы, но не удалось открыть escrow-холды")
		}
		result.PaymentsCreated = created
	}

	logger.WithComponent("schedule").WithField("contract_id", contractID).
		WithField("inserted", result.Inserted).Info("расписание контракта построено")

	return result, nil
}

// retryMissingPayments обрабатывает повторный запуск: этапы есть, но если
// платежей нет вообще, первый запуск упал на второй фазе — досоздаём их.
func (s *ScheduleService) retryMissingPayments(ctx context.Context, contract *models.Contract) (*ScheduleResult, error) {
	paymentCount, err := s.payments.CountByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}
	if paymentCount > 0 {
		return &ScheduleResult{AlreadyPresent: true}, nil
	}

	milestones, err := s.milestones.ListByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}

	created, err := s.payments.CreateHeldBatch(ctx, contract, milestones, s.confirmedAt(contract))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось досоздать escrow-холды")
	}

	return &ScheduleResult{AlreadyPresent: true, PaymentsCreated: created}, nil
}

// confirmedAt возвращает момент подтверждения контракта с откатом на
// момент создания, затем на текущее время.
func (s *ScheduleService) confirmedAt(contract *models.Contract) time.Time {
	if contract.ConfirmedAt != nil {
		return *contract.ConfirmedAt
	}
	if !contract.CreatedAt.IsZero() {
		return contract.CreatedAt
	}
	return s.now()
}

// buildMilestones детерминированно превращает условия предложения в этапы.
// Смещения считаются в днях от baseStart; явные смещения из условия имеют
// приоритет, иначе курсор бежит по концам предыдущих этапов.
func buildMilestones(contract *models.Contract, terms []models.ProposalMilestone, confirmedAt time.Time) []models.Milestone {
	baseStart := confirmedAt.Add(scheduleStartGrace)

	graceDays := defaultGraceDays
	if contract.GraceDays != nil {
		graceDays = money.ClampInt(*contract.GraceDays, 0, maxGraceDays)
	}

	milestones := make([]models.Milestone, 0, len(terms))
	rollingEnd := 0

	for i, term := range terms {
		startOffset := rollingEnd
		if term.StartDayOffset != nil {
			startOffset = *term.StartDayOffset
		}

		endOffset := startOffset + term.DurationDays
		if term.EndDayOffset != nil {
			endOffset = *term.EndDayOffset
		}
		if endOffset < startOffset {
			endOffset = startOffset
		}
		rollingEnd = endOffset

		dueAt := baseStart.AddDate(0, 0, endOffset)
		dueDate := time.Date(dueAt.Year(), dueAt.Month(), dueAt.Day(), 0, 0, 0, 0, dueAt.Location())
		confirmDeadline := dueAt.AddDate(0, 0, graceDays)

		position := term.Position
		if position <= 0 {
			position = i + 1
		}

		milestones = append(milestones, models.Milestone{
			ID:                      uuid.New(),
			ContractID:              contract.ID,
			Position:                position,
			Title:                   term.Title,
			Amount:                  money.ToMoney(term.Amount),
			StartDayOffset:          startOffset,
			EndDayOffset:            endOffset,
			DueDate:                 &dueDate,
			DueAt:                   &dueAt,
			ClientConfirmDeadlineAt: &confirmDeadline,
			Status:                  models.MilestoneStatusPending,
		})
	}

	return milestones
}
