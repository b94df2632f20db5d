package interfaces

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// GatewayOrder is what the checkout widget needs to collect a payment.
type GatewayOrder struct {
	OrderID     string
	CheckoutURL string
	Amount      decimal.Decimal
	Currency    string
	PublicKey   string
	Raw         json.RawMessage
}

type OrderRequest struct {
	Reference   string
	ContractID  string
	PaymentType string
	Title       string
	Amount      decimal.Decimal
	Currency    string
}

// GatewayVerification is the provider's view of a completed checkout.
type GatewayVerification struct {
	Approved          bool
	ProviderPaymentID string
	ProviderStatus    string
	Amount            decimal.Decimal
	Raw               json.RawMessage
}

// IPaymentGateway abstracts external payment providers (e.g. Mercado Pago).
//
// CreateOrder opens a checkout for a single milestone; VerifyPayment asks the
// provider whether providerPaymentID settled the order identified by orderReference.
type IPaymentGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (GatewayOrder, error)
	VerifyPayment(ctx context.Context, orderReference string, providerPaymentID string) (GatewayVerification, error)
}
