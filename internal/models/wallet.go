package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet представляет кошелёк владельца (клиента или фрилансера).
// Создаётся лениво при первом зачислении. Валюта фиксируется при создании;
// зачисление в другой валюте отклоняется целиком, без конвертации.
type Wallet struct {
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Balance   float64   `db:"balance" json:"balance"`
	Currency  string    `db:"currency" json:"currency"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
