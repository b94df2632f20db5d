package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"linksphere/internal/domain/billing"
	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound           = errors.New("payment not found")
	ErrInvalidPaymentID          = errors.New("invalid payment id")
	ErrInvalidPaymentType        = errors.New("invalid payment type")
	ErrPaymentGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrPaymentAlreadyProcessed   = errors.New("payment already processed")
)

// contractSaveAttempts bounds reload-and-retry when a captured payment races
// another contract write.
const contractSaveAttempts = 3

type CreateOrderInput struct {
	ContractID  string
	PaymentType entities.PaymentType
	Amount      decimal.Decimal
}

// OrderResult pairs the checkout order with the CREATED payment record.
type OrderResult struct {
	Order   interfaces.GatewayOrder
	Payment entities.PaymentRecord
}

type VerifyPaymentInput struct {
	PaymentID         string
	OrderID           string
	ProviderPaymentID string
}

// VerifyResult is the captured payment and the contract it settled.
type VerifyResult struct {
	Payment  entities.PaymentRecord
	Contract entities.Contract
}

type IPaymentUseCase interface {
	CreateOrder(ctx context.Context, caller Caller, in CreateOrderInput) (OrderResult, error)
	VerifyPayment(ctx context.Context, caller Caller, in VerifyPaymentInput) (VerifyResult, error)
	ListByContractID(ctx context.Context, caller Caller, contractID string) ([]entities.PaymentRecord, error)
}

type PaymentUseCase struct {
	repo         interfaces.IPaymentRepository
	contractRepo interfaces.IContractRepository
	gateway      interfaces.IPaymentGateway
	publisher    interfaces.IPaymentEventPublisher
	currency     string
	logger       zerolog.Logger
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(
	repo interfaces.IPaymentRepository,
	contractRepo interfaces.IContractRepository,
	gateway interfaces.IPaymentGateway,
	publisher interfaces.IPaymentEventPublisher,
	currency string,
	logger zerolog.Logger,
) *PaymentUseCase {
	if strings.TrimSpace(currency) == "" {
		currency = "BRL"
	}
	return &PaymentUseCase{
		repo:         repo,
		contractRepo: contractRepo,
		gateway:      gateway,
		publisher:    publisher,
		currency:     strings.ToUpper(currency),
		logger:       logger.With().Str("component", "payment_usecase").Logger(),
	}
}

func (u *PaymentUseCase) CreateOrder(ctx context.Context, caller Caller, in CreateOrderInput) (OrderResult, error) {
	if !in.PaymentType.Valid() {
		return OrderResult{}, ErrInvalidPaymentType
	}
	c, err := u.loadContract(ctx, caller, in.ContractID)
	if err != nil {
		return OrderResult{}, err
	}
	if caller.Role != entities.RoleClient {
		return OrderResult{}, ErrForbidden
	}
	if err := billing.CanInitiate(in.PaymentType, c, c.ConfirmedPaymentStatus()); err != nil {
		return OrderResult{}, err
	}
	if err := billing.Validate(in.PaymentType, in.Amount, c, nil); err != nil {
		return OrderResult{}, err
	}
	if u.gateway == nil {
		return OrderResult{}, ErrPaymentGatewayUnavailable
	}

	now := time.Now().UTC()
	rec := entities.PaymentRecord{
		ID:          uuid.NewString(),
		ContractID:  c.ID,
		Amount:      in.Amount,
		Currency:    u.currency,
		PaymentType: in.PaymentType,
		Status:      entities.PaymentRecordCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	order, err := u.gateway.CreateOrder(ctx, interfaces.OrderRequest{
		Reference:   rec.ID,
		ContractID:  c.ID,
		PaymentType: string(in.PaymentType),
		Title:       orderTitle(c, in.PaymentType),
		Amount:      in.Amount,
		Currency:    u.currency,
	})
	if err != nil {
		u.logger.Error().Err(err).Str("contract_id", c.ID).Str("payment_type", string(in.PaymentType)).Msg("gateway create order failed")
		return OrderResult{}, fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}
	rec.ProviderOrderID = order.OrderID
	rec.ProviderPayloadRaw = order.Raw

	saved, err := u.repo.Create(ctx, rec)
	if err != nil {
		return OrderResult{}, err
	}
	u.logger.Info().Str("contract_id", c.ID).Str("payment_id", saved.ID).Str("order_id", order.OrderID).
		Str("amount", in.Amount.String()).Msg("payment order created")
	return OrderResult{Order: order, Payment: saved}, nil
}

func (u *PaymentUseCase) VerifyPayment(ctx context.Context, caller Caller, in VerifyPaymentInput) (VerifyResult, error) {
	id := strings.TrimSpace(in.PaymentID)
	if id == "" {
		return VerifyResult{}, ErrInvalidPaymentID
	}
	rec, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return VerifyResult{}, err
	}
	if rec.ID == "" {
		return VerifyResult{}, ErrPaymentNotFound
	}
	c, err := u.loadContract(ctx, caller, rec.ContractID)
	if err != nil {
		return VerifyResult{}, err
	}
	if caller.Role != entities.RoleClient {
		return VerifyResult{}, ErrForbidden
	}
	if rec.Status == entities.PaymentRecordCaptured {
		return u.resettle(ctx, c, rec)
	}
	if rec.Status != entities.PaymentRecordCreated && rec.Status != entities.PaymentRecordAuthorized {
		return VerifyResult{}, fmt.Errorf("%w: payment is %s", ErrPaymentAlreadyProcessed, rec.Status)
	}
	if in.OrderID != "" && rec.ProviderOrderID != "" && in.OrderID != rec.ProviderOrderID {
		return VerifyResult{}, u.fail(ctx, rec, in.ProviderPaymentID, nil, "order id mismatch")
	}
	if err := payable(c, rec); err != nil {
		u.reject(ctx, rec, in.ProviderPaymentID, err)
		return VerifyResult{}, err
	}
	if u.gateway == nil {
		return VerifyResult{}, ErrPaymentGatewayUnavailable
	}

	v, err := u.gateway.VerifyPayment(ctx, rec.ID, in.ProviderPaymentID)
	if err != nil {
		u.logger.Error().Err(err).Str("payment_id", rec.ID).Msg("gateway verification failed")
		return VerifyResult{}, u.fail(ctx, rec, in.ProviderPaymentID, nil, err.Error())
	}
	if !v.Approved {
		return VerifyResult{}, u.fail(ctx, rec, v.ProviderPaymentID, v.Raw, "provider status "+v.ProviderStatus)
	}
	if v.Amount.IsPositive() && !v.Amount.Equal(rec.Amount) {
		return VerifyResult{}, u.fail(ctx, rec, v.ProviderPaymentID, v.Raw, "amount mismatch "+v.Amount.String())
	}

	// Captured before the contract write; resettle recovers a write that fails.
	captured, err := u.repo.UpdateStatus(ctx, rec.ID, entities.PaymentRecordCaptured, v.ProviderPaymentID, v.Raw)
	if err != nil {
		return VerifyResult{}, err
	}

	settled, err := u.settle(ctx, c, captured, true)
	if err != nil {
		if isPaymentRule(err) {
			u.logger.Error().Str("payment_id", captured.ID).Str("contract_id", c.ID).
				Msg("captured payment lost a race with another settlement; refund required")
			u.reject(ctx, captured, captured.ProviderPaymentID, err)
		}
		return VerifyResult{}, err
	}
	return u.captured(captured, settled), nil
}

// resettle finishes a payment that was captured but whose contract write never
// landed. The contract is considered settled once its status has reached what
// the captured history derives.
func (u *PaymentUseCase) resettle(ctx context.Context, c entities.Contract, rec entities.PaymentRecord) (VerifyResult, error) {
	records, err := u.repo.ListByContractID(ctx, c.ID)
	if err != nil {
		return VerifyResult{}, err
	}
	confirmed := c.ConfirmedPaymentStatus()
	derived := billing.DeriveStatus(records)
	if derived.Rank() <= confirmed.Rank() || billing.ExpectedAfter(rec.PaymentType).Rank() <= confirmed.Rank() {
		return VerifyResult{}, fmt.Errorf("%w: payment is %s", ErrPaymentAlreadyProcessed, rec.Status)
	}
	u.logger.Warn().Str("payment_id", rec.ID).Str("contract_id", c.ID).
		Str("confirmed", string(confirmed)).Str("derived", string(derived)).Msg("re-settling captured payment")
	settled, err := u.settle(ctx, c, rec, false)
	if err != nil {
		return VerifyResult{}, err
	}
	return u.captured(rec, settled), nil
}

func (u *PaymentUseCase) captured(p entities.PaymentRecord, settled entities.Contract) VerifyResult {
	if u.publisher != nil {
		u.publisher.PublishPaymentSuccess(entities.PaymentSuccess{
			ContractID:  settled.ID,
			PaymentType: p.PaymentType,
			Amount:      p.Amount,
			PaymentID:   p.ID,
		})
	}
	u.logger.Info().Str("contract_id", settled.ID).Str("payment_id", p.ID).
		Str("payment_status", string(settled.PaymentStatus)).Msg("payment captured")
	return VerifyResult{Payment: p, Contract: settled}
}

func (u *PaymentUseCase) ListByContractID(ctx context.Context, caller Caller, contractID string) ([]entities.PaymentRecord, error) {
	c, err := u.loadContract(ctx, caller, contractID)
	if err != nil {
		return nil, err
	}
	return u.repo.ListByContractID(ctx, c.ID)
}

// settle writes the captured milestone onto the contract, reloading on version
// conflicts. With guard set the payment rules are checked against every
// contract version it tries to write.
func (u *PaymentUseCase) settle(ctx context.Context, c entities.Contract, p entities.PaymentRecord, guard bool) (entities.Contract, error) {
	for attempt := 1; ; attempt++ {
		if guard {
			if err := payable(c, p); err != nil {
				return entities.Contract{}, err
			}
		}
		saved, err := u.contractRepo.Update(ctx, billing.ApplyCaptured(c, p.PaymentType, p.Amount))
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, interfaces.ErrVersionConflict) || attempt >= contractSaveAttempts {
			u.logger.Error().Err(err).Str("contract_id", c.ID).Str("payment_id", p.ID).Msg("contract settlement failed")
			return entities.Contract{}, err
		}
		c, err = u.contractRepo.GetByID(ctx, c.ID)
		if err != nil {
			return entities.Contract{}, err
		}
		if c.ID == "" {
			return entities.Contract{}, ErrContractNotFound
		}
	}
}

func (u *PaymentUseCase) fail(ctx context.Context, rec entities.PaymentRecord, providerPaymentID string, raw []byte, reason string) error {
	if _, err := u.repo.UpdateStatus(ctx, rec.ID, entities.PaymentRecordFailed, providerPaymentID, raw); err != nil {
		u.logger.Error().Err(err).Str("payment_id", rec.ID).Msg("mark payment failed")
	}
	u.logger.Warn().Str("payment_id", rec.ID).Str("contract_id", rec.ContractID).Str("reason", reason).Msg("payment not verified")
	return fmt.Errorf("%w: %s", ErrPaymentVerificationFailed, reason)
}

// reject closes a record that may no longer be applied to its contract.
func (u *PaymentUseCase) reject(ctx context.Context, rec entities.PaymentRecord, providerPaymentID string, cause error) {
	if _, err := u.repo.UpdateStatus(ctx, rec.ID, entities.PaymentRecordFailed, providerPaymentID, nil); err != nil {
		u.logger.Error().Err(err).Str("payment_id", rec.ID).Msg("mark payment failed")
	}
	u.logger.Warn().Err(cause).Str("payment_id", rec.ID).Str("contract_id", rec.ContractID).Msg("payment no longer allowed")
}

// payable re-checks a pending record against the contract it would settle.
func payable(c entities.Contract, p entities.PaymentRecord) error {
	if err := billing.CanInitiate(p.PaymentType, c, c.ConfirmedPaymentStatus()); err != nil {
		return err
	}
	return billing.Validate(p.PaymentType, p.Amount, c, nil)
}

func isPaymentRule(err error) bool {
	for _, target := range []error{
		billing.ErrAlreadyFullyPaid, billing.ErrPaymentNotAllowed, billing.ErrAmountInvalid,
		billing.ErrAmountBelowMinimum, billing.ErrAmountAboveMaximum,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (u *PaymentUseCase) loadContract(ctx context.Context, caller Caller, id string) (entities.Contract, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Contract{}, ErrInvalidContractID
	}
	c, err := u.contractRepo.GetByID(ctx, id)
	if err != nil {
		return entities.Contract{}, err
	}
	if c.ID == "" {
		return entities.Contract{}, ErrContractNotFound
	}
	if err := authorizeParty(caller, c); err != nil {
		return entities.Contract{}, err
	}
	return c, nil
}

func orderTitle(c entities.Contract, t entities.PaymentType) string {
	title := strings.TrimSpace(c.ProjectDetails.Title)
	if title == "" {
		title = "Contract " + c.ID
	}
	if t == entities.PaymentTypeFinal {
		return title + " - final payment"
	}
	return title + " - advance payment"
}
