// Package billing tracks the payment side of a contract: suggested milestone
// amounts, amount validation and the effective payment status.
package billing

import (
	"errors"

	"linksphere/internal/domain/entities"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountInvalid      = errors.New("amount must be a positive number")
	ErrAmountBelowMinimum = errors.New("amount is below the minimum advance")
	ErrAmountAboveMaximum = errors.New("amount exceeds the contract total")
	ErrAlreadyFullyPaid   = errors.New("contract is already fully paid")
	ErrPaymentNotAllowed  = errors.New("payment not allowed in the current contract state")
)

var advanceRatio = decimal.New(5, -1)

// TotalAmount is the contract total, falling back to the bid amount when the
// contract does not carry one yet.
func TotalAmount(c *entities.Contract, bid *entities.Bid) (decimal.Decimal, bool) {
	if c != nil && c.Payment.Amount.IsPositive() {
		return c.Payment.Amount, true
	}
	if bid != nil && bid.Amount.IsPositive() {
		return bid.Amount, true
	}
	return decimal.Zero, false
}

// SuggestedAdvance is half the total rounded down. No suggestion is made when
// the total is unknown.
func SuggestedAdvance(total decimal.Decimal) (decimal.Decimal, bool) {
	if !total.IsPositive() {
		return decimal.Zero, false
	}
	return total.Mul(advanceRatio).Floor(), true
}

// SuggestedFinal is the recorded final amount, or whatever remains of the total
// after the advance (recorded, else suggested).
func SuggestedFinal(c entities.Contract, bid *entities.Bid) (decimal.Decimal, bool) {
	if c.FinalAmount != nil {
		return *c.FinalAmount, true
	}
	total, ok := TotalAmount(&c, bid)
	if !ok {
		return decimal.Zero, false
	}
	if c.AdvanceAmount != nil {
		return total.Sub(*c.AdvanceAmount), true
	}
	adv, _ := SuggestedAdvance(total)
	return total.Sub(adv), true
}

// ValidateAdvance checks a user-entered advance. A zero total means the total is
// unknown, in which case only positivity is enforced.
func ValidateAdvance(amount, total decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountInvalid
	}
	if min, ok := SuggestedAdvance(total); ok && amount.LessThan(min) {
		return ErrAmountBelowMinimum
	}
	if total.IsPositive() && amount.GreaterThan(total) {
		return ErrAmountAboveMaximum
	}
	return nil
}

// ValidateFinal checks a final payment so that advance + final never exceeds the total.
func ValidateFinal(amount decimal.Decimal, c entities.Contract, bid *entities.Bid) error {
	if !amount.IsPositive() {
		return ErrAmountInvalid
	}
	total, ok := TotalAmount(&c, bid)
	if !ok {
		return nil
	}
	paid := decimal.Zero
	if c.AdvanceAmount != nil {
		paid = *c.AdvanceAmount
	}
	if paid.Add(amount).GreaterThan(total) {
		return ErrAmountAboveMaximum
	}
	return nil
}

// Validate dispatches to the validator for the payment type.
func Validate(t entities.PaymentType, amount decimal.Decimal, c entities.Contract, bid *entities.Bid) error {
	switch t {
	case entities.PaymentTypeAdvance:
		total, _ := TotalAmount(&c, bid)
		return ValidateAdvance(amount, total)
	case entities.PaymentTypeFinal:
		return ValidateFinal(amount, c, bid)
	}
	return ErrPaymentNotAllowed
}

// Effective merges a locally projected status over the confirmed one.
func Effective(projected, confirmed entities.PaymentStatus) entities.PaymentStatus {
	if projected != "" {
		return projected
	}
	if confirmed != "" {
		return confirmed
	}
	return entities.PaymentStatusNotPaid
}

// ExpectedAfter is the status a contract should reach once a payment of type t is captured.
func ExpectedAfter(t entities.PaymentType) entities.PaymentStatus {
	if t == entities.PaymentTypeFinal {
		return entities.PaymentStatusFullyPaid
	}
	return entities.PaymentStatusAdvancePaid
}

// DeriveStatus computes the payment status from a contract's payment history.
// Only captured records count.
func DeriveStatus(records []entities.PaymentRecord) entities.PaymentStatus {
	status := entities.PaymentStatusNotPaid
	for _, r := range records {
		if r.Status != entities.PaymentRecordCaptured {
			continue
		}
		if next := ExpectedAfter(r.PaymentType); next.Rank() > status.Rank() {
			status = next
		}
	}
	return status
}

// CanInitiate reports whether a payment of type t may start for c.
func CanInitiate(t entities.PaymentType, c entities.Contract, effective entities.PaymentStatus) error {
	if effective == entities.PaymentStatusFullyPaid {
		return ErrAlreadyFullyPaid
	}
	switch t {
	case entities.PaymentTypeAdvance:
		if effective == entities.PaymentStatusNotPaid &&
			c.Status == entities.ContractStatusPendingSignatures && c.FreelancerSigned {
			return nil
		}
	case entities.PaymentTypeFinal:
		if effective == entities.PaymentStatusAdvancePaid && c.Status == entities.ContractStatusActive {
			return nil
		}
	}
	return ErrPaymentNotAllowed
}

// ApplyCaptured records a captured payment on a copy of c.
func ApplyCaptured(c entities.Contract, t entities.PaymentType, amount decimal.Decimal) entities.Contract {
	out := c.Clone()
	v := amount
	switch t {
	case entities.PaymentTypeAdvance:
		out.AdvanceAmount = &v
		out.Payment.AdvancePaid = true
	case entities.PaymentTypeFinal:
		out.FinalAmount = &v
		out.Payment.AdvancePaid = true
		out.Payment.FullyPaid = true
	}
	if next := ExpectedAfter(t); next.Rank() > out.ConfirmedPaymentStatus().Rank() {
		out.PaymentStatus = next
	}
	return out
}
