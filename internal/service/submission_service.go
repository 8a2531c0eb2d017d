package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/logger"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/apperror"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/money"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository/common"
)

// DecisionResult — итог ручного решения по сдаче работы.
type DecisionResult struct {
	Approved   bool    `json:"approved"`
	NetAmount  float64 `json:"net_amount"`
	FeePercent float64 `json:"fee_percent"`
}

// SubmissionService обслуживает ручной путь разрешения этапа:
// фрилансер сдаёт работу, клиент (или админ) одобряет либо отклоняет.
type SubmissionService struct {
	contracts  ContractRepository
	milestones MilestoneRepository
	payments   PaymentRepository
	users      UserRepository
	notifier   Notifier
	now        func() time.Time
}

func NewSubmissionService(contracts ContractRepository, milestones MilestoneRepository, payments PaymentRepository, users UserRepository, notifier Notifier) *SubmissionService {
	return &SubmissionService{
		contracts:  contracts,
		milestones: milestones,
		payments:   payments,
		users:      users,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Submit регистрирует сдачу работы по этапу. Версии растут монотонно,
// этап переводится в submitted, клиент получает письмо (сбой доставки
// логируется и не влияет на результат).
func (s *SubmissionService) Submit(ctx context.Context, milestoneID, callerID uuid.UUID, submissionURL, notes *string) (*models.MilestoneSubmission, error) {
	milestone, err := s.milestones.GetByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}

	contract, err := s.contracts.GetByID(ctx, milestone.ContractID)
	if err != nil {
		return nil, err
	}

	if callerID != contract.FreelancerID {
		return nil, apperror.ErrForbidden
	}

	if milestone.IsFinal() {
		return nil, apperror.ErrMilestoneFinal
	}

	if isEmpty(submissionURL) && isEmpty(notes) {
		return nil, apperror.ErrEmptySubmission
	}

	version, err := s.milestones.NextSubmissionVersion(ctx, milestoneID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	submission := &models.MilestoneSubmission{
		ID:            uuid.New(),
		MilestoneID:   milestoneID,
		Version:       version,
		SubmissionURL: submissionURL,
		Notes:         notes,
		Status:        models.SubmissionStatusSubmitted,
		SubmittedAt:   now,
	}

	if err := s.milestones.CreateSubmission(ctx, submission); err != nil {
		return nil, err
	}

	if err := s.milestones.MarkSubmitted(ctx, milestoneID, now); err != nil {
		return nil, err
	}

	s.notifySubmissionReceived(ctx, contract, milestone, submission)

	return submission, nil
}

// Decide фиксирует решение клиента или админа по конкретной сдаче.
// Одобрение запускает денежную цепочку: payment released, одна выплата,
// зачисление на кошелёк фрилансера. Отклонение денег не двигает.
func (s *SubmissionService) Decide(ctx context.Context, milestoneID, submissionID, callerID uuid.UUID, callerRole string, approve bool, reason *string) (*DecisionResult, error) {
	milestone, err := s.milestones.GetByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}

	contract, err := s.contracts.GetByID(ctx, milestone.ContractID)
	if err != nil {
		return nil, err
	}

	if callerID != contract.ClientID && callerRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	if milestone.IsFinal() {
		return nil, apperror.ErrMilestoneFinal
	}

	submission, err := s.milestones.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.MilestoneID != milestoneID {
		return nil, apperror.ErrSubmissionMismatch
	}

	now := s.now()

	if !approve {
		if err := s.milestones.DecideSubmission(ctx, submissionID, models.SubmissionStatusRejected, "client", reason, now); err != nil {
			return nil, err
		}
		if err := s.milestones.MarkRejected(ctx, milestoneID, now); err != nil {
			return nil, err
		}
		s.notifyDecision(ctx, contract, milestone, false)
		return &DecisionResult{Approved: false}, nil
	}

	if err := s.milestones.DecideSubmission(ctx, submissionID, models.SubmissionStatusApproved, "client", nil, now); err != nil {
		return nil, err
	}

	payment, err := s.payments.GetByMilestone(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "у этапа нет escrow-платежа")
		}
		return nil, err
	}

	feePercent := money.ToPercent(contract.FeePercent)
	net := money.Net(payment.Amount, feePercent)

	err = s.payments.ResolveRelease(ctx, repository.ReleaseParams{
		PaymentID:        payment.ID,
		MilestoneID:      milestoneID,
		ContractID:       contract.ID,
		FreelancerID:     contract.FreelancerID,
		NetAmount:        net,
		Currency:         payment.Currency,
		Now:              now,
		StampApprovalNow: true,
	})
	if err != nil {
		// Свип мог успеть раньше: released-платёж означает, что деньги
		// уже ушли, решение клиента при этом не теряется.
		if errors.Is(err, common.ErrAlreadyResolved) {
			return nil, apperror.ErrMilestoneFinal
		}
		return nil, err
	}

	s.notifyDecision(ctx, contract, milestone, true)

	return &DecisionResult{Approved: true, NetAmount: net, FeePercent: feePercent}, nil
}

// notifySubmissionReceived отправляет клиенту письмо о новой сдаче.
func (s *SubmissionService) notifySubmissionReceived(ctx context.Context, contract *models.Contract, milestone *models.Milestone, submission *models.MilestoneSubmission) {
	client, err := s.users.GetByID(ctx, contract.ClientID)
	if err != nil {
		logger.WithComponent("submission").WithError(err).Warn("не удалось найти клиента для уведомления")
		return
	}

	subject := fmt.Sprintf("Сдана работа по этапу «%s»", milestone.Title)
	text := fmt.Sprintf("Фрилансер сдал работу по этапу «%s» (версия %d). Проверьте результат и примите решение.",
		milestone.Title, submission.Version)
	html := fmt.Sprintf("<p>Фрилансер сдал работу по этапу «<strong>%s</strong>» (версия %d).</p><p>Проверьте результат и примите решение.</p>",
		milestone.Title, submission.Version)

	if err := s.notifier.Send(ctx, client.Email, subject, text, html); err != nil {
		logger.WithComponent("submission").WithError(err).
			WithField("milestone_id", milestone.ID).Warn("не удалось отправить уведомление о сдаче")
	}
}

// notifyDecision отправляет фрилансеру письмо о решении по этапу.
func (s *SubmissionService) notifyDecision(ctx context.Context, contract *models.Contract, milestone *models.Milestone, approved bool) {
	freelancer, err := s.users.GetByID(ctx, contract.FreelancerID)
	if err != nil {
		logger.WithComponent("submission").WithError(err).Warn("не удалось найти фрилансера для уведомления")
		return
	}

	var subject, text string
	if approved {
		subject = fmt.Sprintf("Этап «%s» принят", milestone.Title)
		text = fmt.Sprintf("Клиент принял работу по этапу «%s». Выплата зачислена на ваш кошелёк.", milestone.Title)
	} else {
		subject = fmt.Sprintf("Этап «%s» отклонён", milestone.Title)
		text = fmt.Sprintf("Клиент отклонил работу по этапу «%s». Вы можете сдать исправленную версию.", milestone.Title)
	}

	if err := s.notifier.Send(ctx, freelancer.Email, subject, text, "<p>"+text+"</p>"); err != nil {
		logger.WithComponent("submission").WithError(err).
			WithField("milestone_id", milestone.ID).Warn("не удалось отправить уведомление о решении")
	}
}

func isEmpty(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
