package response

import (
	"encoding/json"
	"time"

	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase"

	"github.com/shopspring/decimal"
)

type PaymentRecordResponse struct {
	ID                string          `json:"id"`
	ContractID        string          `json:"contract_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	PaymentType       string          `json:"payment_type"`
	Status            string          `json:"status"`
	ProviderOrderID   string          `json:"provider_order_id,omitempty"`
	ProviderPaymentID string          `json:"provider_payment_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	ProviderPayloadRaw string         `json:"provider_payload_raw,omitempty"`
	ProviderPayload    map[string]any `json:"provider_payload,omitempty"`
}

func FromPaymentRecord(p entities.PaymentRecord) PaymentRecordResponse {
	out := PaymentRecordResponse{
		ID:                 p.ID,
		ContractID:         p.ContractID,
		Amount:             p.Amount,
		Currency:           p.Currency,
		PaymentType:        string(p.PaymentType),
		Status:             string(p.Status),
		ProviderOrderID:    p.ProviderOrderID,
		ProviderPaymentID:  p.ProviderPaymentID,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		ProviderPayloadRaw: string(p.ProviderPayloadRaw),
	}
	if len(p.ProviderPayloadRaw) > 0 {
		var payload map[string]any
		if err := json.Unmarshal(p.ProviderPayloadRaw, &payload); err == nil {
			out.ProviderPayload = payload
		}
	}
	return out
}

func (r PaymentRecordResponse) ToEntity() entities.PaymentRecord {
	return entities.PaymentRecord{
		ID:                r.ID,
		ContractID:        r.ContractID,
		Amount:            r.Amount,
		Currency:          r.Currency,
		PaymentType:       entities.PaymentType(r.PaymentType),
		Status:            entities.PaymentRecordStatus(r.Status),
		ProviderOrderID:   r.ProviderOrderID,
		ProviderPaymentID: r.ProviderPaymentID,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func FromPaymentRecords(records []entities.PaymentRecord) []PaymentRecordResponse {
	out := make([]PaymentRecordResponse, 0, len(records))
	for _, p := range records {
		out = append(out, FromPaymentRecord(p))
	}
	return out
}

type OrderResponse struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	CheckoutURL string          `json:"checkout_url,omitempty"`
}

// CreateOrderResponse carries what the checkout widget needs: the order, the
// pending payment record and the gateway public key.
type CreateOrderResponse struct {
	Success bool                  `json:"success"`
	Order   OrderResponse         `json:"order"`
	Payment PaymentRecordResponse `json:"payment"`
	Key     string                `json:"key"`
}

func FromOrderResult(r usecase.OrderResult) CreateOrderResponse {
	return CreateOrderResponse{
		Success: true,
		Order: OrderResponse{
			ID:          r.Order.OrderID,
			Amount:      r.Order.Amount,
			Currency:    r.Order.Currency,
			CheckoutURL: r.Order.CheckoutURL,
		},
		Payment: FromPaymentRecord(r.Payment),
		Key:     r.Order.PublicKey,
	}
}

type VerifyPaymentResponse struct {
	Success  bool                  `json:"success"`
	Payment  PaymentRecordResponse `json:"payment"`
	Contract ContractResponse      `json:"contract"`
}

func FromVerifyResult(r usecase.VerifyResult) VerifyPaymentResponse {
	return VerifyPaymentResponse{
		Success:  true,
		Payment:  FromPaymentRecord(r.Payment),
		Contract: FromContract(r.Contract),
	}
}

// PaymentEventResponse is the SSE payload of a paymentSuccess event.
type PaymentEventResponse struct {
	ContractID  string          `json:"contract_id"`
	PaymentType string          `json:"payment_type"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentID   string          `json:"payment_id"`
}

func FromPaymentSuccess(ev entities.PaymentSuccess) PaymentEventResponse {
	return PaymentEventResponse{
		ContractID:  ev.ContractID,
		PaymentType: string(ev.PaymentType),
		Amount:      ev.Amount,
		PaymentID:   ev.PaymentID,
	}
}
