package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"warkop-pos/internal/model"
	"warkop-pos/internal/redisx"
	"warkop-pos/internal/repository"

	"github.com/google/uuid"
)

// OTPSender delivers a code out of band. Failures are logged, never rolled back.
type OTPSender interface {
	Send(ctx context.Context, phone, code string) error
}

// LogSender stands in for an SMS/WhatsApp notifier during development.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(_ context.Context, phone, code string) error {
	s.Log.Info("otp code issued", "phone", phone, "code", code)
	return nil
}

type OTPConfig struct {
	TTL          time.Duration
	Window       time.Duration
	MaxPerWindow int
}

type RequestCodeInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"required,phone"`
}

type OTPService interface {
	RequestCode(ctx context.Context, in RequestCodeInput) (*model.CustomerOTPSession, error)
	Verify(ctx context.Context, sessionToken, code string) (*model.CustomerOTPSession, error)
}

type otpService struct {
	repo   repository.OTPRepository
	locker redisx.Locker
	sender OTPSender
	cfg    OTPConfig
	log    *slog.Logger
	now    func() time.Time
}

func NewOTPService(repo repository.OTPRepository, locker redisx.Locker, sender OTPSender, cfg OTPConfig, log *slog.Logger) OTPService {
	return &otpService{
		repo:   repo,
		locker: locker,
		sender: sender,
		cfg:    cfg,
		log:    log.With("component", "otp_service"),
		now:    time.Now,
	}
}

func (s *otpService) RequestCode(ctx context.Context, in RequestCodeInput) (*model.CustomerOTPSession, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validate(&in); err != nil {
		return nil, err
	}

	session, err := s.issue(ctx, in.Phone)
	if err != nil {
		return nil, err
	}

	if err := s.sender.Send(ctx, session.PhoneNumber, session.Code); err != nil {
		s.log.Warn("otp delivery failed", "phone", session.PhoneNumber, "error", err)
	}
	return session, nil
}

// issue counts and inserts under a per-phone lock so concurrent requests can't both
// slip under the limit.
func (s *otpService) issue(ctx context.Context, phone string) (*model.CustomerOTPSession, error) {
	unlock, err := s.locker.Lock(ctx, fmt.Sprintf(redisx.KeyOTPLock, phone))
	if err != nil {
		return nil, fmt.Errorf("lock otp issuance: %w", err)
	}
	defer unlock()

	now := s.now()
	n, err := s.repo.CountSince(ctx, phone, now.Add(-s.cfg.Window))
	if err != nil {
		return nil, err
	}
	if n >= int64(s.cfg.MaxPerWindow) {
		s.log.Info("otp rate limited", "phone", phone, "recent", n)
		return nil, ErrRateLimited
	}

	code, err := newCode()
	if err != nil {
		return nil, err
	}
	session := &model.CustomerOTPSession{
		PhoneNumber:  phone,
		Code:         code,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.cfg.TTL),
		SessionToken: uuid.NewString(),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *otpService) Verify(ctx context.Context, sessionToken, code string) (*model.CustomerOTPSession, error) {
	if sessionToken == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.repo.FindByToken(ctx, sessionToken)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if session.Expired(s.now()) {
		return nil, ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(session.Code), []byte(code)) != 1 {
		return nil, ErrOTPInvalid
	}

	if !session.IsVerified {
		if err := s.repo.MarkVerified(ctx, session.ID); err != nil {
			return nil, err
		}
		session.IsVerified = true
	}
	return session, nil
}

var codeSpace = big.NewInt(1000000)

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
