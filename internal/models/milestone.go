package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы этапа
const (
	MilestoneStatusPending   = "pending"
	MilestoneStatusSubmitted = "submitted"
	MilestoneStatusReleased  = "released"
	MilestoneStatusRefunded  = "refunded"
)

// Статусы сдачи работы
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusApproved  = "approved"
	SubmissionStatusRejected  = "rejected"
)

// Milestone представляет этап контракта с рассчитанными сроками.
// Сроки считаются в днях от старта расписания (confirmed_at + 24h).
type Milestone struct {
	ID                      uuid.UUID  `db:"id" json:"id"`
	ContractID              uuid.UUID  `db:"contract_id" json:"contract_id"`
	Position                int        `db:"position" json:"position"`
	Title                   string     `db:"title" json:"title"`
	Amount                  float64    `db:"amount" json:"amount"`
	StartDayOffset          int        `db:"start_day_offset" json:"start_day_offset"`
	EndDayOffset            int        `db:"end_day_offset" json:"end_day_offset"`
	DueDate                 *time.Time `db:"due_date" json:"due_date,omitempty"`
	DueAt                   *time.Time `db:"due_at" json:"due_at,omitempty"`
	ClientConfirmDeadlineAt *time.Time `db:"client_confirm_deadline_at" json:"client_confirm_deadline_at,omitempty"`
	Status                  string     `db:"status" json:"status"`
	SubmittedAt             *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	ApprovedAt              *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	RejectedAt              *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	CreatedAt               time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at" json:"updated_at"`
}

// IsFinal сообщает, достиг ли этап терминального статуса.
func (m *Milestone) IsFinal() bool {
	return m.Status == MilestoneStatusReleased || m.Status == MilestoneStatusRefunded
}

// MilestoneSubmission — версионированная сдача работы по этапу.
// Версии монотонно растут начиная с 1; повторная сдача после отклонения
// создаёт новую версию.
type MilestoneSubmission struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	MilestoneID    uuid.UUID  `db:"milestone_id" json:"milestone_id"`
	Version        int        `db:"version" json:"version"`
	SubmissionURL  *string    `db:"submission_url" json:"submission_url,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	Status         string     `db:"status" json:"status"`
	SubmittedAt    time.Time  `db:"submitted_at" json:"submitted_at"`
	DecidedAt      *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	DecidedBy      *string    `db:"decided_by" json:"decided_by,omitempty"`
	DecisionReason *string    `db:"decision_reason" json:"decision_reason,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
