package services

import (
	"math"

	"shop-bot/models"
)

// OrderTotals is the output of the credit/debt policy over a priced order.
type OrderTotals struct {
	Subtotal      float64
	Discount      float64
	ShippingFee   float64
	Total         float64
	PaidAmount    float64
	DebtAmount    float64
	PaymentStatus string
}

// Round2 rounds to two decimal places, half up. Quantities and line totals
// are allowed to be fractional to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeTotals applies the pricing formula: discount is capped at the
// subtotal (never negative after capping), debt is what remains after the
// paid amount, and the payment status follows from paid vs total.
func ComputeTotals(subtotal, discount, shippingFee, paidAmount float64) OrderTotals {
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	if paidAmount < 0 {
		paidAmount = 0
	}

	total := Round2(subtotal - discount + shippingFee)
	debt := Round2(math.Max(0, total-paidAmount))

	status := models.PaymentStatusPending
	switch {
	case paidAmount >= total:
		status = models.PaymentStatusPaid
	case paidAmount > 0:
		status = models.PaymentStatusPartial
	}

	return OrderTotals{
		Subtotal:      Round2(subtotal),
		Discount:      Round2(discount),
		ShippingFee:   Round2(shippingFee),
		Total:         total,
		PaidAmount:    Round2(paidAmount),
		DebtAmount:    debt,
		PaymentStatus: status,
	}
}

// CheckCredit decides whether an order may proceed given the customer's
// outstanding balance and the configured credit ceiling. It runs strictly
// after pricing and before persistence, so a credit rejection never leaves a
// partial order behind.
func CheckCredit(currentBalance, total, creditCeiling float64) error {
	if currentBalance+total <= creditCeiling {
		return nil
	}
	return &CreditLimitExceededError{
		Shortfall: Round2(currentBalance + total - creditCeiling),
	}
}
