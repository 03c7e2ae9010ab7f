package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLinesTotal(t *testing.T) {
	lines := []OrderLine{
		{UnitPrice: decimal.RequireFromString("0.10"), Quantity: 3},
		{UnitPrice: decimal.RequireFromString("8000.50"), Quantity: 2},
	}
	assert.True(t, LinesTotal(lines).Equal(decimal.RequireFromString("16001.30")))
	assert.True(t, LinesTotal(nil).IsZero())
}

func TestOrderHelpers(t *testing.T) {
	o := &Order{PaymentStatus: PaymentPending}
	assert.Equal(t, "Takeaway", o.TableLabel())
	assert.False(t, o.IsPaid())

	o.Table = &Table{TableNumber: "A3"}
	o.PaymentStatus = PaymentPaid
	assert.Equal(t, "A3", o.TableLabel())
	assert.True(t, o.IsPaid())
}

func TestPaymentMethod(t *testing.T) {
	assert.True(t, MethodCash.Valid())
	assert.False(t, MethodCash.IsGateway())
	assert.True(t, MethodGatewayQRIS.IsGateway())
	assert.True(t, MethodGatewayEWallet.IsGateway())
	assert.False(t, PaymentMethod("bitcoin").Valid())
	assert.False(t, PaymentMethod("bitcoin").IsGateway())
}
