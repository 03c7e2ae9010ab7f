package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderCompleted  OrderStatus = "Completed"
	OrderCancelled  OrderStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentPaid      PaymentStatus = "Paid"
	PaymentCancelled PaymentStatus = "Cancelled"
)

type OrderSource string

const (
	SourceCounter OrderSource = "counter"
	SourceQRScan  OrderSource = "qr_scan"
)

type PaymentMethod string

const (
	MethodCash                  PaymentMethod = "cash"
	MethodGatewayQRIS           PaymentMethod = "gateway_qris"
	MethodGatewayVirtualAccount PaymentMethod = "gateway_virtual_account"
	MethodGatewayEWallet        PaymentMethod = "gateway_ewallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodGatewayQRIS, MethodGatewayVirtualAccount, MethodGatewayEWallet:
		return true
	}
	return false
}

func (m PaymentMethod) IsGateway() bool {
	return m.Valid() && m != MethodCash
}

// Order is immutable once created except for Status, PaymentStatus and KasirID.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	PlacedByID    *uuid.UUID      `gorm:"type:uuid;index" json:"placed_by_id,omitempty"`
	KasirID       *uuid.UUID      `gorm:"type:uuid;index" json:"kasir_id,omitempty"`
	Kasir         *User           `gorm:"foreignKey:KasirID" json:"kasir,omitempty"`
	TableID       *uint           `gorm:"index" json:"table_id,omitempty"`
	Table         *Table          `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Lines         []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	Source        OrderSource     `gorm:"type:varchar(10);not null" json:"source"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(30);not null" json:"payment_method"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	PhoneNumber   string          `gorm:"type:varchar(20);index" json:"phone_number,omitempty"`
	CustomerName  string          `gorm:"type:varchar(100)" json:"customer_name,omitempty"`
	Payment       *Payment        `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderLine is a snapshot of a product at order time. ProductID is deliberately not a
// foreign key so lines outlive product deletion.
type OrderLine struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(100);not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LinesTotal sums the line subtotals exactly.
func LinesTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentPaid
}

func (o *Order) TableLabel() string {
	if o.Table == nil {
		return "Takeaway"
	}
	return o.Table.TableNumber
}
