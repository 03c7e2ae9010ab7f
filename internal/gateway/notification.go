package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformedNotification = errors.New("malformed notification")
	ErrBadSignature          = errors.New("notification signature mismatch")
)

type EventKind int

const (
	EventNone EventKind = iota
	EventSettled
	EventCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventSettled:
		return "settled"
	case EventCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Notification is the subset of the Midtrans HTTP notification we act on.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

func ParseNotification(body []byte) (*Notification, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedNotification)
	}
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
	}
	if n.OrderID == "" {
		return nil, fmt.Errorf("%w: no order_id", ErrMalformedNotification)
	}
	return &n, nil
}

// Kind maps the provider vocabulary onto the two events the order engine knows.
func (n *Notification) Kind() EventKind {
	switch n.TransactionStatus {
	case "settlement", "capture":
		return EventSettled
	case "cancel", "expire":
		return EventCancelled
	default:
		return EventNone
	}
}

// Signature computes sha512(order_id + status_code + gross_amount + server_key).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (n *Notification) Verify(serverKey string) error {
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	if subtle.ConstantTimeCompare([]byte(want), []byte(n.SignatureKey)) != 1 {
		return ErrBadSignature
	}
	return nil
}
