package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository"
)

func heldPayment(contractID, milestoneID uuid.UUID, amount float64) models.Payment {
	return models.Payment{
		ID:          uuid.New(),
		ContractID:  contractID,
		MilestoneID: milestoneID,
		Amount:      amount,
		Currency:    "USD",
		Status:      models.PaymentStatusHeld,
	}
}

func TestDecideSettlement_ReleaseAfterDue(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	dueAt := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	submittedAt := dueAt.Add(-24 * time.Hour)
	approvedAt := submittedAt.Add(time.Hour)
	deadline := dueAt.AddDate(0, 0, 3)

	payment := heldPayment(uuid.New(), uuid.New(), 1000)
	milestone := &models.Milestone{
		Status:                  models.MilestoneStatusSubmitted,
		DueAt:                   &dueAt,
		ClientConfirmDeadlineAt: &deadline,
		SubmittedAt:             &submittedAt,
		ApprovedAt:              &approvedAt,
	}

	assert.Equal(t, actionRelease, decideSettlement(now, &payment, milestone, nil))
}

func TestDecideSettlement_ReleaseWithheldUntilDue(t *testing.T) {
	// Одобрено заранее, но дедлайн ещё не наступил: выплата ждёт расписания.
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	dueAt := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
	submittedAt := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)
	approvedAt := submittedAt.Add(time.Hour)

	payment := heldPayment(uuid.New(), uuid.New(), 1000)
	milestone := &models.Milestone{
		Status:      models.MilestoneStatusSubmitted,
		DueAt:       &dueAt,
		SubmittedAt: &submittedAt,
		ApprovedAt:  &approvedAt,
	}

	assert.Equal(t, actionSkip, decideSettlement(now, &payment, milestone, nil))
}

func TestDecideSettlement_RefundNoDelivery(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	dueAt := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	payment := heldPayment(uuid.New(), uuid.New(), 500)
	milestone := &models.Milestone{Status: models.MilestoneStatusPending, DueAt: &dueAt}

	assert.Equal(t, actionRefund, decideSettlement(now, &payment, milestone, nil))
}

func TestDecideSettlement_RefundLateDelivery(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	dueAt := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	submittedAt := dueAt.Add(6 * time.Hour)

	payment := heldPayment(uuid.New(), uuid.New(), 500)
	milestone := &models.Milestone{
		Status:      models.MilestoneStatusSubmitted,
		DueAt:       &dueAt,
		SubmittedAt: &submittedAt,
	}

	assert.Equal(t, actionRefund, decideSettlement(now, &payment, milestone, nil))
}

func TestDecideSettlement_RefundClientSilence(t *testing.T) {
	// Работа сдана вовремя, клиент не принял решение до дедлайна
	// подтверждения: деньги возвращаются клиенту. Фрилансер при споре
	// идёт через отдельный процесс, автоматика сторону не выбирает
	// в его пользу.
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	dueAt := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	deadline := dueAt.AddDate(0, 0, 3)
	submittedAt := dueAt.Add(-24 * time.Hour)

	payment := heldPayment(uuid.New(), uuid.New(), 750)
	milestone := &models.Milestone{
		Status:                  models.MilestoneStatusSubmitted,
		DueAt:                   &dueAt,
		ClientConfirmDeadlineAt: &deadline,
		SubmittedAt:             &submittedAt,
	}

	assert.Equal(t, actionRefund, decideSettlement(now, &payment, milestone, nil))
}

func TestDecideSettlement_SkipBeforeConfirmDeadline(t *testing.T) {
	now := time.Date(2026, 6, 11, 12, 0, 0, 0, time.UTC)
	dueAt := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	deadline := dueAt.AddDate(0, 0, 3)
	submittedAt := dueAt.Add(-24 * time.Hour)

	payment := heldPayment(uuid.New(), uuid.New(), 750)
	milestone := &models.Milestone{
		Status:                  models.MilestoneStatusSubmitted,
		DueAt:                   &dueAt,
		ClientConfirmDeadlineAt: &deadline,
		SubmittedAt:             &submittedAt,
	}

	assert.Equal(t, actionSkip, decideSettlement(now, &payment, milestone, nil))
}

func TestDecideSettlement_LatestSubmissionWins(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	dueAt := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	firstAt := dueAt.Add(-48 * time.Hour)
	secondAt := dueAt.Add(-12 * time.Hour)

	payment := heldPayment(uuid.New(), uuid.New(), 1000)
	milestone := &models.Milestone{Status: models.MilestoneStatusSubmitted, DueAt: &dueAt}

	submissions := []models.MilestoneSubmission{
		{Version: 1, Status: models.SubmissionStatusRejected, SubmittedAt: firstAt},
		{Version: 2, Status: models.SubmissionStatusApproved, SubmittedAt: secondAt},
	}

	assert.Equal(t, actionRelease, decideSettlement(now, &payment, milestone, submissions))
}

func TestDecideSettlement_DueDateFallbackEndOfDay(t *testing.T) {
	// Без точного дедлайна берётся конец календарного дня.
	dueDate := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	submittedAt := time.Date(2026, 6, 10, 18, 0, 0, 0, time.UTC)
	approvedAt := submittedAt.Add(time.Minute)

	payment := heldPayment(uuid.New(), uuid.New(), 1000)
	milestone := &models.Milestone{
		Status:      models.MilestoneStatusSubmitted,
		DueDate:     &dueDate,
		SubmittedAt: &submittedAt,
		ApprovedAt:  &approvedAt,
	}

	// До конца дня сдача в 18:00 не просрочена.
	now := time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, actionRelease, decideSettlement(now, &payment, milestone, nil))
}

func TestDecideSettlement_ZeroAmountSkipped(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	dueAt := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	payment := heldPayment(uuid.New(), uuid.New(), 0)
	milestone := &models.Milestone{Status: models.MilestoneStatusPending, DueAt: &dueAt}

	assert.Equal(t, actionSkip, decideSettlement(now, &payment, milestone, nil))
}

func TestSettlementService_Run_MixedBatch(t *testing.T) {
	contracts := new(mockContractRepo)
	milestones := new(mockMilestoneRepo)
	payments := new(mockPaymentRepo)
	svc := NewSettlementService(contracts, milestones, payments)

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	contract := &models.Contract{
		ID:           uuid.New(),
		ClientID:     uuid.New(),
		FreelancerID: uuid.New(),
		Currency:     "USD",
		FeePercent:   12,
	}

	pastDue := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	futureDue := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
	submittedAt := pastDue.Add(-24 * time.Hour)
	approvedAt := submittedAt.Add(time.Hour)

	releaseMilestone := &models.Milestone{
		ID:          uuid.New(),
		ContractID:  contract.ID,
		Status:      models.MilestoneStatusSubmitted,
		DueAt:       &pastDue,
		SubmittedAt: &submittedAt,
		ApprovedAt:  &approvedAt,
	}
	refundMilestone := &models.Milestone{
		ID:         uuid.New(),
		ContractID: contract.ID,
		Status:     models.MilestoneStatusPending,
		DueAt:      &pastDue,
	}
	waitingMilestone := &models.Milestone{
		ID:         uuid.New(),
		ContractID: contract.ID,
		Status:     models.MilestoneStatusPending,
		DueAt:      &futureDue,
	}

	releasePayment := heldPayment(contract.ID, releaseMilestone.ID, 1000)
	refundPayment := heldPayment(contract.ID, refundMilestone.ID, 500)
	waitingPayment := heldPayment(contract.ID, waitingMilestone.ID, 300)

	payments.On("ListHeld", ctx, DefaultSweepLimit).
		Return([]models.Payment{releasePayment, refundPayment, waitingPayment}, nil)

	milestones.On("GetByID", ctx, releaseMilestone.ID).Return(releaseMilestone, nil)
	milestones.On("GetByID", ctx, refundMilestone.ID).Return(refundMilestone, nil)
	milestones.On("GetByID", ctx, waitingMilestone.ID).Return(waitingMilestone, nil)
	milestones.On("ListSubmissions", ctx, releaseMilestone.ID).Return([]models.MilestoneSubmission{}, nil)
	milestones.On("ListSubmissions", ctx, refundMilestone.ID).Return([]models.MilestoneSubmission{}, nil)
	milestones.On("ListSubmissions", ctx, waitingMilestone.ID).Return([]models.MilestoneSubmission{}, nil)

	// Контракт общий: кэш должен сходить в базу ровно один раз.
	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil).Once()

	// 1000 при комиссии 12% -> 880.00 нетто.
	payments.On("ResolveRelease", ctx, repository.ReleaseParams{
		PaymentID:    releasePayment.ID,
		MilestoneID:  releaseMilestone.ID,
		ContractID:   contract.ID,
		FreelancerID: contract.FreelancerID,
		NetAmount:    880,
		Currency:     "USD",
		Now:          now,
	}).Return(nil)

	payments.On("ResolveRefund", ctx, repository.RefundParams{
		PaymentID:   refundPayment.ID,
		MilestoneID: refundMilestone.ID,
		ClientID:    contract.ClientID,
		Now:         now,
	}).Return(nil)

	summary, err := svc.Run(ctx, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Released)
	assert.Equal(t, 1, summary.Refunded)
	assert.Equal(t, 1, summary.Skipped)

	contracts.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestSettlementService_Run_ResolveFailureCountsSkipped(t *testing.T) {
	contracts := new(mockContractRepo)
	milestones := new(mockMilestoneRepo)
	payments := new(mockPaymentRepo)
	svc := NewSettlementService(contracts, milestones, payments)

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	contract := &models.Contract{ID: uuid.New(), FreelancerID: uuid.New(), FeePercent: 10}

	pastDue := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	submittedAt := pastDue.Add(-time.Hour)
	approvedAt := submittedAt.Add(time.Minute)
	milestone := &models.Milestone{
		ID:          uuid.New(),
		ContractID:  contract.ID,
		Status:      models.MilestoneStatusSubmitted,
		DueAt:       &pastDue,
		SubmittedAt: &submittedAt,
		ApprovedAt:  &approvedAt,
	}
	payment := heldPayment(contract.ID, milestone.ID, 100)

	payments.On("ListHeld", ctx, 50).Return([]models.Payment{payment}, nil)
	milestones.On("GetByID", ctx, milestone.ID).Return(milestone, nil)
	milestones.On("ListSubmissions", ctx, milestone.ID).Return([]models.MilestoneSubmission{}, nil)
	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	payments.On("ResolveRelease", ctx, mock.Anything).Return(errors.New("deadlock"))

	summary, err := svc.Run(ctx, 50)
	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Released)
	assert.Equal(t, 1, summary.Skipped)
}

func TestSettlementService_Run_LimitClamped(t *testing.T) {
	contracts := new(mockContractRepo)
	milestones := new(mockMilestoneRepo)
	payments := new(mockPaymentRepo)
	svc := NewSettlementService(contracts, milestones, payments)
	ctx := context.Background()

	payments.On("ListHeld", ctx, MaxSweepLimit).Return([]models.Payment{}, nil)

	summary, err := svc.Run(ctx, 5000)
	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Released+summary.Refunded+summary.Skipped)
	payments.AssertExpectations(t)
}
