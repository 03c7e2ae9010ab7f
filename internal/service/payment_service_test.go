package service

import (
	"context"
	"encoding/json"
	"testing"

	"warkop-pos/internal/auth"
	"warkop-pos/internal/gateway"
	"warkop-pos/internal/model"
	"warkop-pos/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverKey = "SB-Mid-server-test"

type fakeSnap struct {
	last  gateway.SnapRequest
	calls int
	err   error
}

func (f *fakeSnap) CreateTransaction(_ context.Context, req gateway.SnapRequest) (string, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return "snap-token-1", nil
}

func newPaymentFixture(t *testing.T, verify bool) (*orderFixture, *fakeSnap, PaymentService) {
	t.Helper()
	f := newOrderFixture(t)
	snap := &fakeSnap{}
	svc := NewPaymentService(fakeOrderRepo{f.store}, f.svc, snap, WebhookConfig{
		ServerKey:       serverKey,
		VerifySignature: verify,
	}, logger.Discard())
	return f, snap, svc
}

func notification(t *testing.T, orderID, status string) []byte {
	t.Helper()
	body, err := json.Marshal(gateway.Notification{
		OrderID:           orderID,
		TransactionStatus: status,
		StatusCode:        "200",
		GrossAmount:       "20000.00",
		SignatureKey:      gateway.Signature(orderID, "200", "20000.00", serverKey),
	})
	require.NoError(t, err)
	return body
}

func TestCheckoutToken(t *testing.T) {
	f, snap, svc := newPaymentFixture(t, true)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, f.cashier, CreateOrderInput{
		Lines: []OrderLineInput{{ProductID: 2, Quantity: 2}},
	})
	require.NoError(t, err)

	token, err := svc.CheckoutToken(ctx, f.cashier, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "snap-token-1", token)
	// 4500.50 rounds to 4501 before multiplying
	assert.Equal(t, int64(9002), snap.last.TransactionDetails.GrossAmount)

	_, err = svc.CheckoutToken(ctx, f.budi, order.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.CheckoutToken(ctx, f.cashier, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutChannels(t *testing.T) {
	f, snap, svc := newPaymentFixture(t, true)
	ctx := context.Background()

	counter, err := f.svc.CreateOrder(ctx, f.cashier, CreateOrderInput{
		Lines:         []OrderLineInput{{ProductID: 1, Quantity: 1}},
		PaymentMethod: model.MethodGatewayQRIS,
	})
	require.NoError(t, err)
	_, err = svc.CheckoutToken(ctx, f.cashier, counter.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.EnabledPayments(model.MethodCash), snap.last.EnabledPayments)

	online, err := f.svc.CreateOrder(ctx, f.budi, CreateOrderInput{
		Lines:         []OrderLineInput{{ProductID: 1, Quantity: 1}},
		PaymentMethod: model.MethodGatewayQRIS,
	})
	require.NoError(t, err)
	_, err = svc.InitiateCheckout(ctx, online)
	require.NoError(t, err)
	assert.Equal(t, []string{"qris"}, snap.last.EnabledPayments)
}

func TestCheckoutTokenGatewayFailure(t *testing.T) {
	f, snap, svc := newPaymentFixture(t, true)
	snap.err = &gateway.Error{StatusCode: 401, Body: `{"error_messages":["Access denied"]}`}

	order, err := f.svc.CreateOrder(context.Background(), f.cashier, CreateOrderInput{
		Lines: []OrderLineInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.CheckoutToken(context.Background(), f.cashier, order.ID)
	assert.ErrorIs(t, err, gateway.ErrGateway)
	var gerr *gateway.Error
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, gerr.Message(), "Access denied")
}

func TestInitiateCheckoutRefusesPaidOrder(t *testing.T) {
	f, snap, svc := newPaymentFixture(t, true)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, f.cashier, CreateOrderInput{Lines: []OrderLineInput{{ProductID: 1, Quantity: 1}}})
	require.NoError(t, err)
	paid, err := f.svc.ConfirmCashPayment(ctx, f.cashier, order.ID, false)
	require.NoError(t, err)

	_, err = svc.InitiateCheckout(ctx, paid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, snap.calls)
}

func TestHandleNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("settlement replayed", func(t *testing.T) {
		f, _, svc := newPaymentFixture(t, true)
		order, err := f.svc.CreateOrder(ctx, f.budi, CreateOrderInput{
			Lines:         []OrderLineInput{{ProductID: 1, Quantity: 2}},
			PaymentMethod: model.MethodGatewayQRIS,
		})
		require.NoError(t, err)

		body := notification(t, "1", "settlement")
		for i := 0; i < 2; i++ {
			got, err := svc.HandleNotification(ctx, body)
			require.NoError(t, err)
			assert.Equal(t, model.PaymentPaid, got.PaymentStatus)
		}
		assert.Equal(t, uint(1), order.ID)
		assert.Equal(t, 1, f.store.paymentCount())
	})

	t.Run("expire cancels", func(t *testing.T) {
		f, _, svc := newPaymentFixture(t, true)
		_, err := f.svc.CreateOrder(ctx, f.budi, CreateOrderInput{
			Lines:         []OrderLineInput{{ProductID: 1, Quantity: 2}},
			PaymentMethod: model.MethodGatewayVirtualAccount,
		})
		require.NoError(t, err)

		got, err := svc.HandleNotification(ctx, notification(t, "1", "expire"))
		require.NoError(t, err)
		assert.Equal(t, model.OrderCancelled, got.Status)
		assert.Equal(t, model.PaymentCancelled, got.PaymentStatus)
		require.NotNil(t, got.Payment)
		assert.True(t, got.Payment.Amount.IsZero())
	})

	t.Run("pending is acknowledged without change", func(t *testing.T) {
		f, _, svc := newPaymentFixture(t, true)
		_, err := f.svc.CreateOrder(ctx, f.budi, CreateOrderInput{
			Lines:         []OrderLineInput{{ProductID: 1, Quantity: 1}},
			PaymentMethod: model.MethodGatewayQRIS,
		})
		require.NoError(t, err)

		got, err := svc.HandleNotification(ctx, notification(t, "1", "pending"))
		require.NoError(t, err)
		assert.Equal(t, model.PaymentPending, got.PaymentStatus)
		assert.Equal(t, 0, f.store.paymentCount())
	})

	t.Run("unknown order", func(t *testing.T) {
		f, _, svc := newPaymentFixture(t, true)
		_, err := svc.HandleNotification(ctx, notification(t, "404", "settlement"))
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = svc.HandleNotification(ctx, notification(t, "404", "pending"))
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = svc.HandleNotification(ctx, notification(t, "ORDER-abc", "settlement"))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 0, f.store.paymentCount())
	})

	t.Run("bad signature", func(t *testing.T) {
		f, _, svc := newPaymentFixture(t, true)
		_, err := f.svc.CreateOrder(ctx, f.budi, CreateOrderInput{
			Lines:         []OrderLineInput{{ProductID: 1, Quantity: 1}},
			PaymentMethod: model.MethodGatewayQRIS,
		})
		require.NoError(t, err)

		forged, err := json.Marshal(gateway.Notification{
			OrderID:           "1",
			TransactionStatus: "settlement",
			StatusCode:        "200",
			GrossAmount:       "10000.00",
			SignatureKey:      "deadbeef",
		})
		require.NoError(t, err)

		_, err = svc.HandleNotification(ctx, forged)
		assert.ErrorIs(t, err, auth.ErrForbidden)
		assert.Equal(t, 0, f.store.paymentCount())
	})

	t.Run("signature check disabled", func(t *testing.T) {
		f, _, svc := newPaymentFixture(t, false)
		_, err := f.svc.CreateOrder(ctx, f.budi, CreateOrderInput{
			Lines:         []OrderLineInput{{ProductID: 1, Quantity: 1}},
			PaymentMethod: model.MethodGatewayQRIS,
		})
		require.NoError(t, err)

		_, err = svc.HandleNotification(ctx, []byte(`{"order_id":"1","transaction_status":"capture"}`))
		assert.NoError(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, _, svc := newPaymentFixture(t, true)
		_, err := svc.HandleNotification(ctx, []byte(`{not json`))
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.HandleNotification(ctx, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCustomerCashScenario(t *testing.T) {
	ctx := context.Background()
	sender := &captureSender{}
	otp, _, _ := newOTPFixture(t, sender)
	f := newOrderFixture(t)

	session, err := otp.RequestCode(ctx, RequestCodeInput{Name: "Budi", Phone: "08123456"})
	require.NoError(t, err)
	code := sender.codes["08123456"]
	require.Regexp(t, sixDigits, code)

	_, err = otp.Verify(ctx, session.SessionToken, wrongCode(code))
	assert.ErrorIs(t, err, ErrOTPInvalid)
	verified, err := otp.Verify(ctx, session.SessionToken, code)
	require.NoError(t, err)
	require.True(t, verified.IsVerified)

	customer := auth.Customer("Budi", verified.PhoneNumber)
	order, err := f.svc.CreateOrder(ctx, customer, CreateOrderInput{
		Lines:         []OrderLineInput{{ProductID: 1, Quantity: 1}},
		PaymentMethod: model.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SourceQRScan, order.Source)
	assert.Equal(t, "08123456", order.PhoneNumber)
	assert.Equal(t, model.PaymentPending, order.PaymentStatus)
	assert.Nil(t, order.Payment)

	paid, err := f.svc.ConfirmCashPayment(ctx, f.cashier, order.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, paid.PaymentStatus)
}
