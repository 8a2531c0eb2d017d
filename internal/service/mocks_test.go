package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository"
)

type mockContractRepo struct {
	mock.Mock
}

func (m *mockContractRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) ListProposalMilestones(ctx context.Context, proposalID uuid.UUID) ([]models.ProposalMilestone, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProposalMilestone), args.Error(1)
}

type mockMilestoneRepo struct {
	mock.Mock
}

func (m *mockMilestoneRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Milestone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Milestone), args.Error(1)
}

func (m *mockMilestoneRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.Milestone, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Milestone), args.Error(1)
}

func (m *mockMilestoneRepo) CountByContract(ctx context.Context, contractID uuid.UUID) (int, error) {
	args := m.Called(ctx, contractID)
	return args.Int(0), args.Error(1)
}

func (m *mockMilestoneRepo) InsertBatch(ctx context.Context, milestones []models.Milestone) error {
	args := m.Called(ctx, milestones)
	return args.Error(0)
}

func (m *mockMilestoneRepo) MarkSubmitted(ctx context.Context, milestoneID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, milestoneID, now)
	return args.Error(0)
}

func (m *mockMilestoneRepo) MarkRejected(ctx context.Context, milestoneID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, milestoneID, now)
	return args.Error(0)
}

func (m *mockMilestoneRepo) GetSubmission(ctx context.Context, id uuid.UUID) (*models.MilestoneSubmission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MilestoneSubmission), args.Error(1)
}

func (m *mockMilestoneRepo) ListSubmissions(ctx context.Context, milestoneID uuid.UUID) ([]models.MilestoneSubmission, error) {
	args := m.Called(ctx, milestoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MilestoneSubmission), args.Error(1)
}

func (m *mockMilestoneRepo) NextSubmissionVersion(ctx context.Context, milestoneID uuid.UUID) (int, error) {
	args := m.Called(ctx, milestoneID)
	return args.Int(0), args.Error(1)
}

func (m *mockMilestoneRepo) CreateSubmission(ctx context.Context, s *models.MilestoneSubmission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockMilestoneRepo) DecideSubmission(ctx context.Context, id uuid.UUID, status, decidedBy string, reason *string, now time.Time) error {
	args := m.Called(ctx, id, status, decidedBy, reason, now)
	return args.Error(0)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) CountByContract(ctx context.Context, contractID uuid.UUID) (int, error) {
	args := m.Called(ctx, contractID)
	return args.Int(0), args.Error(1)
}

func (m *mockPaymentRepo) CreateHeldBatch(ctx context.Context, contract *models.Contract, milestones []models.Milestone, capturedAt time.Time) (int, error) {
	args := m.Called(ctx, contract, milestones, capturedAt)
	return args.Int(0), args.Error(1)
}

func (m *mockPaymentRepo) GetByMilestone(ctx context.Context, milestoneID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, milestoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListHeld(ctx context.Context, limit int) ([]models.Payment, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ResolveRelease(ctx context.Context, p repository.ReleaseParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymentRepo) ResolveRefund(ctx context.Context, p repository.RefundParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type mockWalletRepo struct {
	mock.Mock
}

func (m *mockWalletRepo) Get(ctx context.Context, kind repository.WalletKind, ownerID uuid.UUID) (*models.Wallet, error) {
	args := m.Called(ctx, kind, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletRepo) Credit(ctx context.Context, kind repository.WalletKind, ownerID uuid.UUID, amount float64, currency string, now time.Time) error {
	args := m.Called(ctx, kind, ownerID, amount, currency, now)
	return args.Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, to, subject, text, html string) error {
	args := m.Called(ctx, to, subject, text, html)
	return args.Error(0)
}
