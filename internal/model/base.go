package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit carries timestamps, soft delete and the acting user for catalog records.
type Audit struct {
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedBy string `json:"created_by,omitempty"`
	UpdatedBy string `json:"updated_by,omitempty"`
	DeletedBy string `json:"-"`
}

// BaseModel handles ID (UUID) and standard Audit Trails
type BaseModel struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Audit
}

// Hook Before Create untuk generate UUID otomatis
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}
