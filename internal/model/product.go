package model

import "github.com/shopspring/decimal"

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Image       string          `gorm:"type:varchar(255)" json:"image,omitempty"`
	Category    string          `gorm:"type:varchar(50);index" json:"category" validate:"required,max=50"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock" validate:"gte=0"`
	Audit
}

// Table is a physical table in the outlet. QRCode references the generated QR image;
// generating it is someone else's job.
type Table struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TableNumber string `gorm:"type:varchar(10);uniqueIndex;not null" json:"table_number" validate:"required,max=10"`
	QRCode      string `gorm:"type:varchar(255)" json:"qr_code,omitempty"`
}
