package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/logger"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/money"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository"
)

const (
	// Пределы батча свипа.
	DefaultSweepLimit = 200
	MaxSweepLimit     = 1000

	// Дефолтный срок подтверждения клиентом после дедлайна этапа.
	fallbackConfirmDays = 3
)

// SweepSummary — агрегированный итог одного прохода свипа.
// Отдельные сбои не всплывают: проблемный платёж попадает в Skipped
// и будет обработан следующим проходом.
type SweepSummary struct {
	Released int `json:"released"`
	Refunded int `json:"refunded"`
	Skipped  int `json:"skipped"`
}

// sweepAction — решение по одному удержанному платежу.
type sweepAction int

const (
	actionSkip sweepAction = iota
	actionRelease
	actionRefund
)

// SettlementService — периодический свип: перебирает удержанные платежи
// и доводит каждый до терминального исхода, когда сроки это позволяют.
type SettlementService struct {
	contracts  ContractRepository
	milestones MilestoneRepository
	payments   PaymentRepository
	now        func() time.Time
}

func NewSettlementService(contracts ContractRepository, milestones MilestoneRepository, payments PaymentRepository) *SettlementService {
	return &SettlementService{
		contracts:  contracts,
		milestones: milestones,
		payments:   payments,
		now:        time.Now,
	}
}

// Run выполняет один проход свипа над батчем удержанных платежей.
func (s *SettlementService) Run(ctx context.Context, limit int) (*SweepSummary, error) {
	if limit <= 0 {
		limit = DefaultSweepLimit
	}
	limit = money.ClampInt(limit, 1, MaxSweepLimit)

	payments, err := s.payments.ListHeld(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &SweepSummary{}
	log := logger.WithComponent("settlement")

	// Контракты запрашиваются один раз на contract_id за весь проход.
	contractCache := make(map[uuid.UUID]*models.Contract)

	for i := range payments {
		payment := &payments[i]

		if payment.Amount <= 0 {
			summary.Skipped++
			continue
		}

		milestone, err := s.milestones.GetByID(ctx, payment.MilestoneID)
		if err != nil {
			summary.Skipped++
			continue
		}

		submissions, err := s.milestones.ListSubmissions(ctx, milestone.ID)
		if err != nil {
			summary.Skipped++
			continue
		}

		contract, ok := contractCache[payment.ContractID]
		if !ok {
			contract, err = s.contracts.GetByID(ctx, payment.ContractID)
			if err != nil {
				summary.Skipped++
				continue
			}
			contractCache[payment.ContractID] = contract
		}

		switch decideSettlement(now, payment, milestone, submissions) {
		case actionRelease:
			net := money.Net(payment.Amount, contract.FeePercent)
			err := s.payments.ResolveRelease(ctx, repository.ReleaseParams{
				PaymentID:    payment.ID,
				MilestoneID:  milestone.ID,
				ContractID:   contract.ID,
				FreelancerID: contract.FreelancerID,
				NetAmount:    net,
				Currency:     payment.Currency,
				Now:          now,
			})
			if err != nil {
				log.WithError(err).WithField("payment_id", payment.ID).Warn("release не применён, платёж пропущен")
				summary.Skipped++
				continue
			}
			summary.Released++

		case actionRefund:
			err := s.payments.ResolveRefund(ctx, repository.RefundParams{
				PaymentID:   payment.ID,
				MilestoneID: milestone.ID,
				ClientID:    contract.ClientID,
				Now:         now,
			})
			if err != nil {
				log.WithError(err).WithField("payment_id", payment.ID).Warn("refund не применён, платёж пропущен")
				summary.Skipped++
				continue
			}
			summary.Refunded++

		default:
			summary.Skipped++
		}
	}

	log.WithField("released", summary.Released).
		WithField("refunded", summary.Refunded).
		WithField("skipped", summary.Skipped).
		Info("проход свипа завершён")

	return summary, nil
}

// decideSettlement — чистая функция решения по одному платежу.
// Все побочные эффекты применяются после, что позволяет тестировать
// ветвление без часов и без базы.
func decideSettlement(now time.Time, payment *models.Payment, milestone *models.Milestone, submissions []models.MilestoneSubmission) sweepAction {
	if payment.Amount <= 0 || milestone == nil {
		return actionSkip
	}

	dueAt := milestoneDueAt(milestone)
	latest := latestSubmission(submissions)

	submittedAt := milestone.SubmittedAt
	if latest != nil {
		submittedAt = &latest.SubmittedAt
	}

	approved := milestone.ApprovedAt != nil
	if latest != nil && (latest.Status == models.SubmissionStatusApproved || latest.Status == "accepted") {
		approved = true
	}

	submittedOnTime := dueAt == nil
	if dueAt != nil {
		submittedOnTime = submittedAt != nil && !submittedAt.After(*dueAt)
	}

	confirmDeadline := milestone.ClientConfirmDeadlineAt
	if confirmDeadline == nil && dueAt != nil {
		d := dueAt.AddDate(0, 0, fallbackConfirmDays)
		confirmDeadline = &d
	}

	// Release намеренно откладывается до наступления дедлайна, даже если
	// клиент одобрил работу раньше: сроки выплат выравниваются по расписанию.
	if approved && submittedOnTime && (dueAt == nil || !now.Before(*dueAt)) {
		return actionRelease
	}

	// Возврат за отсутствие сдачи: дедлайн прошёл, работы нет либо она
	// пришла после срока.
	if dueAt != nil && !now.Before(*dueAt) && (submittedAt == nil || submittedAt.After(*dueAt)) {
		return actionRefund
	}

	// Возврат за молчание клиента: работа сдана, срок подтверждения прошёл,
	// одобрения так и нет.
	if confirmDeadline != nil && submittedAt != nil && !now.Before(*confirmDeadline) && !approved {
		return actionRefund
	}

	return actionSkip
}

// milestoneDueAt возвращает точный дедлайн этапа, либо конец дня
// календарной даты, либо nil.
func milestoneDueAt(m *models.Milestone) *time.Time {
	if m.DueAt != nil {
		return m.DueAt
	}
	if m.DueDate != nil {
		d := *m.DueDate
		endOfDay := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999999999, d.Location())
		return &endOfDay
	}
	return nil
}

// latestSubmission выбирает авторитетную сдачу: позднейшая по времени,
// при равенстве — с наибольшей версией.
func latestSubmission(submissions []models.MilestoneSubmission) *models.MilestoneSubmission {
	var latest *models.MilestoneSubmission
	for i := range submissions {
		s := &submissions[i]
		if latest == nil ||
			s.SubmittedAt.After(latest.SubmittedAt) ||
			(s.SubmittedAt.Equal(latest.SubmittedAt) && s.Version > latest.Version) {
			latest = s
		}
	}
	return latest
}
