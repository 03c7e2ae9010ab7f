package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

const issuer = "warkop-pos"

// Claims is carried by staff tokens.
type Claims struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	TokenVersion string    `json:"token_version"`
	jwt.RegisteredClaims
}

// CustomerClaims is the signed customer session: the OTP session token plus the
// identity it was issued for. Verified flips to true only after a correct code.
type CustomerClaims struct {
	SessionToken string `json:"session_token"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Verified     bool   `json:"verified"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret      []byte
	staffTTL    time.Duration
	customerTTL time.Duration
	now         func() time.Time
}

func NewManager(secret string, staffTTL, customerTTL time.Duration) *Manager {
	return &Manager{
		secret:      []byte(secret),
		staffTTL:    staffTTL,
		customerTTL: customerTTL,
		now:         time.Now,
	}
}

func (m *Manager) registered(ttl time.Duration, subject string) jwt.RegisteredClaims {
	now := m.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    issuer,
	}
}

// GenerateToken creates a new JWT token for a staff user
func (m *Manager) GenerateToken(userID uuid.UUID, username, name, role, tokenVersion string) (string, error) {
	claims := &Claims{
		UserID:           userID,
		Username:         username,
		Name:             name,
		Role:             role,
		TokenVersion:     tokenVersion,
		RegisteredClaims: m.registered(m.staffTTL, userID.String()),
	}
	return m.sign(claims)
}

func (m *Manager) GenerateCustomerToken(sessionToken, name, phone string, verified bool) (string, error) {
	claims := &CustomerClaims{
		SessionToken:     sessionToken,
		Name:             name,
		Phone:            phone,
		Verified:         verified,
		RegisteredClaims: m.registered(m.customerTTL, phone),
	}
	return m.sign(claims)
}

func (m *Manager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a staff JWT token
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) ValidateCustomerToken(tokenString string) (*CustomerClaims, error) {
	claims := &CustomerClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.SessionToken == "" || claims.Phone == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) parse(tokenString string, claims jwt.Claims) error {
	if tokenString == "" {
		return ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
