package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы контракта
const (
	ContractStatusDraft     = "draft"
	ContractStatusConfirmed = "confirmed"
	ContractStatusCompleted = "completed"
	ContractStatusCancelled = "cancelled"
)

// Contract представляет контракт между клиентом и фрилансером,
// созданный из принятого предложения.
type Contract struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ProposalID   *uuid.UUID `db:"proposal_id" json:"proposal_id,omitempty"`
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	FreelancerID uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	Currency     string     `db:"currency" json:"currency"`
	FeePercent   float64    `db:"fee_percent" json:"fee_percent"`
	GraceDays    *int       `db:"grace_days" json:"grace_days,omitempty"`
	Status       string     `db:"status" json:"status"`
	ConfirmedAt  *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ProposalMilestone — условие этапа из принятого предложения.
// Служит исходными данными для построения расписания контракта.
type ProposalMilestone struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProposalID     uuid.UUID `db:"proposal_id" json:"proposal_id"`
	Position       int       `db:"position" json:"position"`
	Title          string    `db:"title" json:"title"`
	Amount         float64   `db:"amount" json:"amount"`
	DurationDays   int       `db:"duration_days" json:"duration_days"`
	StartDayOffset *int      `db:"start_day_offset" json:"start_day_offset,omitempty"`
	EndDayOffset   *int      `db:"end_day_offset" json:"end_day_offset,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
