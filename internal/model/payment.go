package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRecordMethod string

const (
	PaymentRecordCash    PaymentRecordMethod = "Cash"
	PaymentRecordGateway PaymentRecordMethod = "Gateway"
)

// Payment is the single settlement record of an order, written lazily by the first
// payment-confirming event and upserted by order afterwards.
type Payment struct {
	ID        uint                `gorm:"primaryKey" json:"id"`
	OrderID   uint                `gorm:"not null;uniqueIndex" json:"order_id"`
	Method    PaymentRecordMethod `gorm:"type:varchar(20);not null" json:"method"`
	Amount    decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status    PaymentStatus       `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
