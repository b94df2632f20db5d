package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"linksphere/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingMercadoPagoAccessToken   = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")
	ErrInvalidProviderPaymentID        = errors.New("invalid provider payment id")
)

const statusApproved = "approved"

type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

type paymentGetter interface {
	Get(ctx context.Context, id int) (*payment.Response, error)
}

// Options configures the Mercado Pago gateway. Mock short-circuits the SDK and
// approves any payment that carries a provider payment id.
type Options struct {
	AccessToken string
	PublicKey   string
	Mock        bool
}

type MercadoPagoGateway struct {
	preferences preferenceCreator
	payments    paymentGetter
	publicKey   string
	mockMode    bool
	mockOrders  sync.Map
	logger      zerolog.Logger
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(opts Options, logger zerolog.Logger) (*MercadoPagoGateway, error) {
	logger = logger.With().Str("component", "payment_gateway").Logger()
	if opts.Mock {
		logger.Info().Msg("mock mode enabled")
		return &MercadoPagoGateway{mockMode: true, publicKey: opts.PublicKey, logger: logger}, nil
	}

	if opts.AccessToken == "" {
		logger.Error().Msg("missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(opts.AccessToken)
	if err != nil {
		logger.Error().Err(err).Msg("failed creating sdk config")
		return nil, err
	}
	logger.Info().Msg("Mercado Pago client initialized")

	return &MercadoPagoGateway{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
		publicKey:   opts.PublicKey,
		logger:      logger,
	}, nil
}

// CreateOrder opens a checkout preference for one milestone. The order
// reference travels as external_reference so verification can match it.
func (g *MercadoPagoGateway) CreateOrder(ctx context.Context, req interfaces.OrderRequest) (interfaces.GatewayOrder, error) {
	if g != nil && g.mockMode {
		id := "mock-pref-" + strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
		g.mockOrders.Store(req.Reference, req.Amount)
		raw, err := json.Marshal(map[string]any{
			"id":                 id,
			"external_reference": req.Reference,
			"amount":             req.Amount.String(),
			"currency_id":        req.Currency,
		})
		if err != nil {
			return interfaces.GatewayOrder{}, err
		}
		g.logger.Info().Str("order_id", id).Str("reference", req.Reference).Msg("mock order created")
		return interfaces.GatewayOrder{
			OrderID:     id,
			CheckoutURL: "https://checkout.mock.local/" + id,
			Amount:      req.Amount,
			Currency:    req.Currency,
			PublicKey:   g.publicKey,
			Raw:         raw,
		}, nil
	}

	if g == nil || g.preferences == nil {
		return interfaces.GatewayOrder{}, ErrMercadoPagoGatewayNotConfigured
	}

	unitPrice, _ := req.Amount.Float64()
	resp, err := g.preferences.Create(ctx, preference.Request{
		ExternalReference: req.Reference,
		Items: []preference.ItemRequest{{
			ID:         req.ContractID + ":" + strings.ToLower(req.PaymentType),
			Title:      req.Title,
			Quantity:   1,
			UnitPrice:  unitPrice,
			CurrencyID: req.Currency,
		}},
	})
	if err != nil {
		g.logger.Error().Err(err).Str("reference", req.Reference).Msg("sdk preference create failed")
		return interfaces.GatewayOrder{}, err
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return interfaces.GatewayOrder{}, err
	}
	g.logger.Info().Str("order_id", resp.ID).Str("reference", req.Reference).Msg("order created")

	return interfaces.GatewayOrder{
		OrderID:     resp.ID,
		CheckoutURL: resp.InitPoint,
		Amount:      req.Amount,
		Currency:    req.Currency,
		PublicKey:   g.publicKey,
		Raw:         raw,
	}, nil
}

func (g *MercadoPagoGateway) VerifyPayment(ctx context.Context, orderReference string, providerPaymentID string) (interfaces.GatewayVerification, error) {
	providerPaymentID = strings.TrimSpace(providerPaymentID)

	if g != nil && g.mockMode {
		v := interfaces.GatewayVerification{ProviderPaymentID: providerPaymentID, ProviderStatus: "rejected"}
		if providerPaymentID != "" {
			v.Approved = true
			v.ProviderStatus = statusApproved
		}
		if amount, ok := g.mockOrders.Load(orderReference); ok {
			v.Amount = amount.(decimal.Decimal)
		}
		v.Raw, _ = json.Marshal(map[string]any{"id": providerPaymentID, "status": v.ProviderStatus, "external_reference": orderReference})
		g.logger.Info().Str("reference", orderReference).Str("provider_status", v.ProviderStatus).Msg("mock verification")
		return v, nil
	}

	if g == nil || g.payments == nil {
		return interfaces.GatewayVerification{}, ErrMercadoPagoGatewayNotConfigured
	}

	id, err := strconv.Atoi(providerPaymentID)
	if err != nil {
		return interfaces.GatewayVerification{}, fmt.Errorf("%w: %q", ErrInvalidProviderPaymentID, providerPaymentID)
	}

	resp, err := g.payments.Get(ctx, id)
	if err != nil {
		g.logger.Error().Err(err).Int("provider_payment_id", id).Msg("sdk payment get failed")
		return interfaces.GatewayVerification{}, err
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return interfaces.GatewayVerification{}, err
	}

	v := interfaces.GatewayVerification{
		Approved:          resp.Status == statusApproved && resp.ExternalReference == orderReference,
		ProviderPaymentID: strconv.Itoa(resp.ID),
		ProviderStatus:    resp.Status,
		Amount:            decimal.NewFromFloat(resp.TransactionAmount),
		Raw:               raw,
	}
	if resp.ExternalReference != orderReference {
		g.logger.Warn().Str("reference", orderReference).Str("provider_reference", resp.ExternalReference).Msg("payment belongs to another order")
	}
	g.logger.Info().Str("reference", orderReference).Str("provider_status", resp.Status).Bool("approved", v.Approved).Msg("payment verified")
	return v, nil
}
