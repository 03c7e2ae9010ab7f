package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Phone string          `validate:"required,phone"`
	Price decimal.Decimal `validate:"money"`
	Qty   int             `validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	ok := sample{Phone: "081234567890", Price: decimal.NewFromInt(10000), Qty: 1}
	assert.Empty(t, ValidateStruct(&ok))

	bad := sample{Phone: "08-12", Price: decimal.NewFromInt(-1), Qty: 0}
	errs := ValidateStruct(&bad)
	assert.Len(t, errs, 3)
	assert.Equal(t, "field 'sample.Phone' failed on 'phone'", Message(errs))
}
