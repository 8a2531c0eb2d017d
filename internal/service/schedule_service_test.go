package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/apperror"
)

func intPtr(v int) *int { return &v }

func TestBuildMilestones_RollingOffsets(t *testing.T) {
	confirmedAt := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	contract := &models.Contract{ID: uuid.New(), Currency: "USD"}

	terms := []models.ProposalMilestone{
		{Position: 1, Title: "Дизайн", Amount: 300, DurationDays: 10},
		{Position: 2, Title: "Разработка", Amount: 700, DurationDays: 20},
	}

	milestones := buildMilestones(contract, terms, confirmedAt)
	assert.Len(t, milestones, 2)

	// Старт расписания — через сутки после подтверждения.
	baseStart := confirmedAt.Add(24 * time.Hour)

	first := milestones[0]
	assert.Equal(t, 0, first.StartDayOffset)
	assert.Equal(t, 10, first.EndDayOffset)
	assert.Equal(t, baseStart.AddDate(0, 0, 10), *first.DueAt)
	assert.Equal(t, models.MilestoneStatusPending, first.Status)
	assert.Equal(t, 300.0, first.Amount)

	second := milestones[1]
	assert.Equal(t, 10, second.StartDayOffset)
	assert.Equal(t, 30, second.EndDayOffset)
	assert.Equal(t, baseStart.AddDate(0, 0, 30), *second.DueAt)

	// Дедлайн подтверждения = дедлайн этапа + дефолтные 3 дня.
	assert.Equal(t, first.DueAt.AddDate(0, 0, 3), *first.ClientConfirmDeadlineAt)

	// Календарная дата — полночь дня дедлайна.
	assert.Equal(t, 0, first.DueDate.Hour())
	assert.Equal(t, first.DueAt.Day(), first.DueDate.Day())
}

func TestBuildMilestones_ExplicitOffsetsWin(t *testing.T) {
	confirmedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	contract := &models.Contract{ID: uuid.New()}

	terms := []models.ProposalMilestone{
		{Position: 1, Title: "A", Amount: 100, DurationDays: 99, StartDayOffset: intPtr(5), EndDayOffset: intPtr(8)},
		{Position: 2, Title: "B", Amount: 100, DurationDays: 4},
	}

	milestones := buildMilestones(contract, terms, confirmedAt)

	assert.Equal(t, 5, milestones[0].StartDayOffset)
	assert.Equal(t, 8, milestones[0].EndDayOffset)

	// Курсор продолжает с конца предыдущего этапа.
	assert.Equal(t, 8, milestones[1].StartDayOffset)
	assert.Equal(t, 12, milestones[1].EndDayOffset)
}

func TestBuildMilestones_EndBeforeStartClamped(t *testing.T) {
	contract := &models.Contract{ID: uuid.New()}
	terms := []models.ProposalMilestone{
		{Position: 1, Title: "A", Amount: 100, StartDayOffset: intPtr(10), EndDayOffset: intPtr(7)},
	}

	milestones := buildMilestones(contract, terms, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 10, milestones[0].StartDayOffset)
	assert.Equal(t, 10, milestones[0].EndDayOffset)
}

func TestBuildMilestones_GraceDaysFromContract(t *testing.T) {
	confirmedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	contract := &models.Contract{ID: uuid.New(), GraceDays: intPtr(7)}
	terms := []models.ProposalMilestone{{Position: 1, Title: "A", Amount: 100, DurationDays: 5}}

	milestones := buildMilestones(contract, terms, confirmedAt)
	assert.Equal(t, milestones[0].DueAt.AddDate(0, 0, 7), *milestones[0].ClientConfirmDeadlineAt)

	// Отрицательный grace клампится к нулю.
	contract.GraceDays = intPtr(-5)
	milestones = buildMilestones(contract, terms, confirmedAt)
	assert.Equal(t, *milestones[0].DueAt, *milestones[0].ClientConfirmDeadlineAt)
}

func TestBuildMilestones_Deterministic(t *testing.T) {
	confirmedAt := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	contract := &models.Contract{ID: uuid.New(), GraceDays: intPtr(4)}
	terms := []models.ProposalMilestone{
		{Position: 1, Title: "A", Amount: 150.555, DurationDays: 3},
		{Position: 2, Title: "B", Amount: 849.444, DurationDays: 11},
	}

	a := buildMilestones(contract, terms, confirmedAt)
	b := buildMilestones(contract, terms, confirmedAt)

	for i := range a {
		assert.Equal(t, a[i].Position, b[i].Position)
		assert.Equal(t, a[i].Amount, b[i].Amount)
		assert.Equal(t, a[i].StartDayOffset, b[i].StartDayOffset)
		assert.Equal(t, a[i].EndDayOffset, b[i].EndDayOffset)
		assert.Equal(t, *a[i].DueAt, *b[i].DueAt)
		assert.Equal(t, *a[i].ClientConfirmDeadlineAt, *b[i].ClientConfirmDeadlineAt)
	}
}

func TestScheduleService_Build_Success(t *testing.T) {
	contracts := new(mockContractRepo)
	milestones := new(mockMilestoneRepo)
	payments := new(mockPaymentRepo)
	svc := NewScheduleService(contracts, milestones, payments)
	ctx := context.Background()

	proposalID := uuid.New()
	confirmedAt := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	contract := &models.Contract{
		ID:           uuid.New(),
		ProposalID:   &proposalID,
		ClientID:     uuid.New(),
		FreelancerID: uuid.New(),
		Currency:     "USD",
		FeePercent:   10,
		ConfirmedAt:  &confirmedAt,
	}

	terms := []models.ProposalMilestone{
		{Position: 1, Title: "Дизайн", Amount: 300, DurationDays: 10},
		{Position: 2, Title: "Разработка", Amount: 700, DurationDays: 20},
	}

	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	milestones.On("CountByContract", ctx, contract.ID).Return(0, nil)
	contracts.On("ListProposalMilestones", ctx, proposalID).Return(terms, nil)
	milestones.On("InsertBatch", ctx, mock.AnythingOfType("[]models.Milestone")).Return(nil)
	payments.On("CountByContract", ctx, contract.ID).Return(0, nil)
	payments.On("CreateHeldBatch", ctx, contract, mock.AnythingOfType("[]models.Milestone"), confirmedAt).Return(2, nil)

	result, err := svc.Build(ctx, contract.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 2, result.PaymentsCreated)
	assert.False(t, result.AlreadyPresent)

	contracts.AssertExpectations(t)
	milestones.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestScheduleService_Build_AlreadyScheduled(t *testing.T) {
	contracts := new(mockContractRepo)
	milestones := new(mockMilestoneRepo)
	payments := new(mockPaymentRepo)
	svc := NewScheduleService(contracts, milestones, payments)
	ctx := context.Background()

	contract := &models.Contract{ID: uuid.New()}

	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	milestones.On("CountByContract", ctx, contract.ID).Return(3, nil)
	payments.On("CountByContract", ctx, contract.ID).Return(3, nil)

	result, err := svc.Build(ctx, contract.ID)
	assert.NoError(t, err)
	assert.True(t, result.AlreadyPresent)
	assert.Equal(t, 0, result.Inserted)

	milestones.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
	payments.AssertNotCalled(t, "CreateHeldBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduleService_Build_RetriesMissingPayments(t *testing.T) {
	contracts := new(mockContractRepo)
	milestones := new(mockMilestoneRepo)
	payments := new(mockPaymentRepo)
	svc := NewScheduleService(contracts, milestones, payments)
	ctx := context.Background()

	confirmedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	contract := &models.Contract{ID: uuid.New(), ConfirmedAt: &confirmedAt}
	existing := []models.Milestone{{ID: uuid.New(), ContractID: contract.ID, Amount: 500}}

	// Этапы есть, платежей нет: первый запуск упал между фазами.
	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	milestones.On("CountByContract", ctx, contract.ID).Return(1, nil)
	payments.On("CountByContract", ctx, contract.ID).Return(0, nil)
	milestones.On("ListByContract", ctx, contract.ID).Return(existing, nil)
	payments.On("CreateHeldBatch", ctx, contract, existing, confirmedAt).Return(1, nil)

	result, err := svc.Build(ctx, contract.ID)
	assert.NoError(t, err)
	assert.True(t, result.AlreadyPresent)
	assert.Equal(t, 1, result.PaymentsCreated)

	payments.AssertExpectations(t)
}

func TestScheduleService_Build_MissingProposalLink(t *testing.T) {
	contracts := new(mockContractRepo)
	milestones := new(mockMilestoneRepo)
	payments := new(mockPaymentRepo)
	svc := NewScheduleService(contracts, milestones, payments)
	ctx := context.Background()

	contract := &models.Contract{ID: uuid.New(), ProposalID: nil}

	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	milestones.On("CountByContract", ctx, contract.ID).Return(0, nil)

	_, err := svc.Build(ctx, contract.ID)
	assert.ErrorIs(t, err, apperror.ErrMissingProposalLink)
}

func TestScheduleService_Build_NoProposalTerms(t *testing.T) {
	contracts := new(mockContractRepo)
	milestones := new(mockMilestoneRepo)
	payments := new(mockPaymentRepo)
	svc := NewScheduleService(contracts, milestones, payments)
	ctx := context.Background()

	proposalID := uuid.New()
	contract := &models.Contract{ID: uuid.New(), ProposalID: &proposalID}

	contracts.On("GetByID", ctx, contract.ID).Return(contract, nil)
	milestones.On("CountByContract", ctx, contract.ID).Return(0, nil)
	contracts.On("ListProposalMilestones", ctx, proposalID).Return([]models.ProposalMilestone{}, nil)

	_, err := svc.Build(ctx, contract.ID)
	assert.ErrorIs(t, err, apperror.ErrNoProposalTerms)
}
