package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotification(t *testing.T) {
	n, err := ParseNotification([]byte(`{"order_id":"12","transaction_status":"settlement","status_code":"200","gross_amount":"20000.00"}`))
	require.NoError(t, err)
	assert.Equal(t, "12", n.OrderID)
	assert.Equal(t, EventSettled, n.Kind())

	for _, body := range []string{``, `{`, `{"transaction_status":"settlement"}`} {
		_, err := ParseNotification([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedNotification, body)
	}
}

func TestNotificationKind(t *testing.T) {
	tests := map[string]EventKind{
		"settlement": EventSettled,
		"capture":    EventSettled,
		"cancel":     EventCancelled,
		"expire":     EventCancelled,
		"pending":    EventNone,
		"deny":       EventNone,
		"":           EventNone,
	}
	for status, want := range tests {
		n := Notification{OrderID: "1", TransactionStatus: status}
		assert.Equal(t, want, n.Kind(), status)
	}
}

func TestVerifySignature(t *testing.T) {
	n := Notification{OrderID: "12", StatusCode: "200", GrossAmount: "20000.00"}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, "server-key")

	assert.Len(t, n.SignatureKey, 128)
	assert.NoError(t, n.Verify("server-key"))
	assert.ErrorIs(t, n.Verify("other-key"), ErrBadSignature)

	n.GrossAmount = "1.00"
	assert.ErrorIs(t, n.Verify("server-key"), ErrBadSignature)
}
