package entities

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType is the milestone a payment settles.
type PaymentType string

const (
	PaymentTypeAdvance PaymentType = "ADVANCE"
	PaymentTypeFinal   PaymentType = "FINAL"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeAdvance || t == PaymentTypeFinal
}

// PaymentRecordStatus is the gateway-side state of a single payment attempt.
type PaymentRecordStatus string

const (
	PaymentRecordCreated    PaymentRecordStatus = "CREATED"
	PaymentRecordAuthorized PaymentRecordStatus = "AUTHORIZED"
	PaymentRecordCaptured   PaymentRecordStatus = "CAPTURED"
	PaymentRecordFailed     PaymentRecordStatus = "FAILED"
	PaymentRecordRefunded   PaymentRecordStatus = "REFUNDED"
)

// PaymentRecord is one payment attempt against a contract. A contract keeps its
// whole history; the effective payment status is derived from captured records.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (contract_id-index): contract_id
//
// ProviderPayloadRaw keeps the gateway response for audit.
type PaymentRecord struct {
	ID                string              `json:"id"`
	ContractID        string              `json:"contract_id"`
	Amount            decimal.Decimal     `json:"amount"`
	Currency          string              `json:"currency"`
	PaymentType       PaymentType         `json:"payment_type"`
	Status            PaymentRecordStatus `json:"status"`
	ProviderOrderID   string              `json:"provider_order_id,omitempty"`
	ProviderPaymentID string              `json:"provider_payment_id,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`

	ProviderPayloadRaw json.RawMessage `json:"provider_payload_raw,omitempty"`
}
