package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы escrow-платежа
const (
	PaymentStatusHeld     = "held"
	PaymentStatusReleased = "released"
	PaymentStatusRefunded = "refunded"
)

// Статусы выплаты
const (
	PayoutStatusSettled = "settled"
)

// Payment — escrow-холд, обеспечивающий ровно один этап.
// Создаётся на полную брутто-сумму этапа, комиссия удерживается
// только при release.
type Payment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	ContractID  uuid.UUID  `db:"contract_id" json:"contract_id"`
	MilestoneID uuid.UUID  `db:"milestone_id" json:"milestone_id"`
	Amount      float64    `db:"amount" json:"amount"`
	Currency    string     `db:"currency" json:"currency"`
	Status      string     `db:"status" json:"status"`
	CapturedAt  *time.Time `db:"captured_at" json:"captured_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Payout — выплата фрилансеру после release этапа.
// На этап приходится не более одной выплаты (UNIQUE по milestone_id).
type Payout struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	MilestoneID  uuid.UUID  `db:"milestone_id" json:"milestone_id"`
	ContractID   uuid.UUID  `db:"contract_id" json:"contract_id"`
	FreelancerID uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	Amount       float64    `db:"amount" json:"amount"`
	Currency     string     `db:"currency" json:"currency"`
	Status       string     `db:"status" json:"status"`
	SentAt       *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	SettledAt    *time.Time `db:"settled_at" json:"settled_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}
