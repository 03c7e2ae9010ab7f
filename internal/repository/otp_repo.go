package repository

import (
	"context"
	"time"

	"warkop-pos/internal/model"

	"gorm.io/gorm"
)

type OTPRepository interface {
	CountSince(ctx context.Context, phone string, since time.Time) (int64, error)
	Create(ctx context.Context, session *model.CustomerOTPSession) error
	FindByToken(ctx context.Context, token string) (*model.CustomerOTPSession, error)
	MarkVerified(ctx context.Context, id uint) error
}

type otpRepo struct {
	db *gorm.DB
}

func NewOTPRepo(db *gorm.DB) OTPRepository {
	return &otpRepo{db}
}

func (r *otpRepo) CountSince(ctx context.Context, phone string, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CustomerOTPSession{}).
		Where("phone_number = ? AND created_at >= ?", phone, since).
		Count(&n).Error
	return n, err
}

func (r *otpRepo) Create(ctx context.Context, session *model.CustomerOTPSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *otpRepo) FindByToken(ctx context.Context, token string) (*model.CustomerOTPSession, error) {
	var session model.CustomerOTPSession
	if err := r.db.WithContext(ctx).First(&session, "session_token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// MarkVerified only ever flips the flag to true, so repeating it is harmless.
func (r *otpRepo) MarkVerified(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.CustomerOTPSession{}).
		Where("id = ?", id).
		Update("is_verified", true).Error
}
