package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-bot/models"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name        string
		subtotal    float64
		discount    float64
		shippingFee float64
		paidAmount  float64
		wantTotal   float64
		wantDebt    float64
		wantStatus  string
	}{
		{
			name:     "unpaid order",
			subtotal: 30.00, wantTotal: 30.00, wantDebt: 30.00,
			wantStatus: models.PaymentStatusPending,
		},
		{
			name:     "fully paid",
			subtotal: 30.00, paidAmount: 30.00, wantTotal: 30.00, wantDebt: 0,
			wantStatus: models.PaymentStatusPaid,
		},
		{
			name:     "partially paid",
			subtotal: 100, paidAmount: 40, wantTotal: 100, wantDebt: 60,
			wantStatus: models.PaymentStatusPartial,
		},
		{
			name:     "overpaid counts as paid",
			subtotal: 50, paidAmount: 80, wantTotal: 50, wantDebt: 0,
			wantStatus: models.PaymentStatusPaid,
		},
		{
			name:     "discount and shipping",
			subtotal: 100, discount: 20, shippingFee: 15, wantTotal: 95, wantDebt: 95,
			wantStatus: models.PaymentStatusPending,
		},
		{
			name:     "discount capped at subtotal",
			subtotal: 100, discount: 150, shippingFee: 10, wantTotal: 10, wantDebt: 10,
			wantStatus: models.PaymentStatusPending,
		},
		{
			name:     "negative discount ignored",
			subtotal: 100, discount: -50, wantTotal: 100, wantDebt: 100,
			wantStatus: models.PaymentStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := ComputeTotals(tt.subtotal, tt.discount, tt.shippingFee, tt.paidAmount)
			assert.Equal(t, tt.wantTotal, totals.Total)
			assert.Equal(t, tt.wantDebt, totals.DebtAmount)
			assert.Equal(t, tt.wantStatus, totals.PaymentStatus)
		})
	}
}

func TestRound2HalfUp(t *testing.T) {
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, 2.5, Round2(2.5))
	assert.Equal(t, 5.00, Round2(4.995))
}

func TestCheckCredit(t *testing.T) {
	assert.NoError(t, CheckCredit(0, 100, 1000))
	assert.NoError(t, CheckCredit(900, 100, 1000), "exactly at the ceiling is allowed")

	err := CheckCredit(950, 100, 1000)
	require.Error(t, err)

	var creditErr *CreditLimitExceededError
	require.ErrorAs(t, err, &creditErr)
	assert.Equal(t, 50.0, creditErr.Shortfall, "error must carry the exact pay-down amount")
	assert.Contains(t, creditErr.Error(), "50.00")
}
