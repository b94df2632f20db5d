package request

import (
	"strings"

	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase"

	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	ContractID  string          `json:"contract_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentType string          `json:"payment_type" binding:"required"`
}

func (r CreateOrderRequest) ToInput() usecase.CreateOrderInput {
	return usecase.CreateOrderInput{
		ContractID:  r.ContractID,
		PaymentType: entities.PaymentType(strings.ToUpper(strings.TrimSpace(r.PaymentType))),
		Amount:      r.Amount,
	}
}

// VerifyPaymentRequest is posted once the checkout widget reports success.
type VerifyPaymentRequest struct {
	PaymentID         string `json:"payment_id" binding:"required"`
	OrderID           string `json:"order_id"`
	ProviderPaymentID string `json:"provider_payment_id"`
}

func (r VerifyPaymentRequest) ToInput() usecase.VerifyPaymentInput {
	return usecase.VerifyPaymentInput{
		PaymentID:         r.PaymentID,
		OrderID:           r.OrderID,
		ProviderPaymentID: r.ProviderPaymentID,
	}
}
