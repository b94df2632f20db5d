package coordinator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	request "linksphere/internal/adapter/http/dto/request"
	"linksphere/internal/client"
	"linksphere/internal/domain/billing"
	"linksphere/internal/domain/binder"
	"linksphere/internal/domain/entities"

	"github.com/shopspring/decimal"
)

var (
	ErrPaymentGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrPaymentFailed             = errors.New("payment failed at checkout")
	ErrPaymentInProgress         = errors.New("a payment is already in progress for this contract")
)

type CheckoutOutcome string

const (
	CheckoutSucceeded CheckoutOutcome = "success"
	CheckoutFailed    CheckoutOutcome = "failure"
	CheckoutCancelled CheckoutOutcome = "cancel"
)

// CheckoutRequest is what the widget needs to collect a payment.
type CheckoutRequest struct {
	ContractID  string
	PaymentType entities.PaymentType
	OrderID     string
	CheckoutURL string
	Amount      decimal.Decimal
	Currency    string
	PublicKey   string
}

type CheckoutResult struct {
	Outcome           CheckoutOutcome
	ProviderPaymentID string
	Reason            string
}

// Checkout opens the external payment widget and blocks until the user
// finishes, fails or dismisses it. An error means the widget could not be
// opened at all.
type Checkout interface {
	Open(ctx context.Context, req CheckoutRequest) (CheckoutResult, error)
}

type PaymentResult struct {
	Outcome  CheckoutOutcome
	Payment  entities.PaymentRecord
	Contract entities.Contract
}

// Pay runs one milestone payment: local validation, order creation, checkout,
// backend verification and finally a PaymentSuccess event. A cancelled
// checkout returns without error and without contacting the backend again.
func (c *Coordinator) Pay(ctx context.Context, contractID string, t entities.PaymentType, amount decimal.Decimal) (PaymentResult, error) {
	s, ok := c.findContract(contractID)
	if !ok {
		return PaymentResult{}, ErrUnknownContract
	}
	if err := c.checkPayable(s, t, amount); err != nil {
		return PaymentResult{}, err
	}
	if c.checkout == nil {
		return PaymentResult{}, ErrPaymentGatewayUnavailable
	}
	if !c.beginPayment(contractID) {
		return PaymentResult{}, ErrPaymentInProgress
	}
	defer c.endPayment(contractID)

	order, err := c.api.CreateOrder(ctx, request.CreateOrderRequest{
		ContractID:  contractID,
		Amount:      amount,
		PaymentType: string(t),
	})
	if err != nil {
		if isStatus(err, http.StatusServiceUnavailable) {
			return PaymentResult{}, fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
		}
		return PaymentResult{}, err
	}

	res, err := c.checkout.Open(ctx, CheckoutRequest{
		ContractID:  contractID,
		PaymentType: t,
		OrderID:     order.Order.ID,
		CheckoutURL: order.Order.CheckoutURL,
		Amount:      order.Order.Amount,
		Currency:    order.Order.Currency,
		PublicKey:   order.Key,
	})
	if err != nil {
		return PaymentResult{}, fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}

	switch res.Outcome {
	case CheckoutCancelled:
		c.logger.Info().Str("contract_id", contractID).Msg("checkout dismissed")
		return PaymentResult{Outcome: CheckoutCancelled, Payment: order.Payment.ToEntity()}, nil
	case CheckoutFailed:
		return PaymentResult{Outcome: CheckoutFailed, Payment: order.Payment.ToEntity()}, fmt.Errorf("%w: %s", ErrPaymentFailed, res.Reason)
	case CheckoutSucceeded:
	default:
		return PaymentResult{}, fmt.Errorf("%w: unknown checkout outcome %q", ErrPaymentGatewayUnavailable, res.Outcome)
	}

	verified, err := c.api.VerifyPayment(ctx, request.VerifyPaymentRequest{
		PaymentID:         order.Payment.ID,
		OrderID:           order.Order.ID,
		ProviderPaymentID: res.ProviderPaymentID,
	})
	if err != nil {
		if isStatus(err, http.StatusPaymentRequired) {
			return PaymentResult{Outcome: CheckoutSucceeded}, fmt.Errorf("%w: %v", ErrPaymentVerificationFailed, err)
		}
		return PaymentResult{Outcome: CheckoutSucceeded}, err
	}

	ev := entities.PaymentSuccess{
		ContractID:  contractID,
		PaymentType: t,
		Amount:      verified.Payment.Amount,
		PaymentID:   verified.Payment.ID,
	}
	if c.publisher != nil {
		c.publisher.PublishPaymentSuccess(ev)
	} else {
		c.HandlePaymentSuccess(ev)
		c.kick()
	}
	c.logger.Info().Str("contract_id", contractID).Str("payment_id", ev.PaymentID).Str("payment_type", string(t)).Msg("payment verified")

	return PaymentResult{
		Outcome:  CheckoutSucceeded,
		Payment:  verified.Payment.ToEntity(),
		Contract: verified.Contract.ToEntity(),
	}, nil
}

// Processing reports whether a payment for contractID is between order
// creation and verification.
func (c *Coordinator) Processing(contractID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processing[contractID]
}

func (c *Coordinator) beginPayment(contractID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.processing[contractID] {
		return false
	}
	c.processing[contractID] = true
	return true
}

func (c *Coordinator) endPayment(contractID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.processing, contractID)
}

func (c *Coordinator) checkPayable(s client.BidWithContract, t entities.PaymentType, amount decimal.Decimal) error {
	contract := *s.Contract
	effective := c.EffectiveStatus(contract.ID)
	if err := billing.CanInitiate(t, contract, effective); err != nil {
		return err
	}
	want := binder.ActionPayAdvance
	if t == entities.PaymentTypeFinal {
		want = binder.ActionPayFinal
	}
	if !binder.Has(binder.Actions(c.role, s.Bid, &contract, effective), want) {
		return billing.ErrPaymentNotAllowed
	}
	bid := s.Bid
	return billing.Validate(t, amount, contract, &bid)
}

func isStatus(err error, status int) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
