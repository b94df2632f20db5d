package entities

import "github.com/shopspring/decimal"

// PaymentSuccess is published once a payment has been verified. It is the only
// channel through which views learn that a payment completed.
type PaymentSuccess struct {
	ContractID  string          `json:"contract_id"`
	PaymentType PaymentType     `json:"payment_type"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentID   string          `json:"payment_id"`
}
