package model

import "time"

type CustomerOTPSession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PhoneNumber  string    `gorm:"type:varchar(20);not null;index:idx_otp_phone_created" json:"phone_number"`
	Code         string    `gorm:"type:varchar(6);not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null;index:idx_otp_phone_created" json:"created_at"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	IsVerified   bool      `gorm:"not null;default:false" json:"is_verified"`
	SessionToken string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
}

func (s *CustomerOTPSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
