package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"linksphere/internal/domain/billing"
	"linksphere/internal/domain/entities"
	"linksphere/internal/domain/lifecycle"
	"linksphere/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrContractNotFound     = errors.New("contract not found")
	ErrInvalidContractID    = errors.New("invalid contract id")
	ErrInvalidContractInput = errors.New("invalid contract input")
	ErrContractNotEditable  = errors.New("contract is not editable in its current status")
	ErrBidNotAccepted       = errors.New("bid not accepted")
	ErrBidAlreadyBound      = errors.New("bid already has a contract")
)

// GenerateContractInput is the client's draft built from an accepted bid.
type GenerateContractInput struct {
	BidID           string
	ClientInfo      entities.PartyInfo
	FreelancerInfo  entities.PartyInfo
	ProjectDetails  entities.ProjectDetails
	Payment         entities.PaymentTerms
	AdditionalTerms string
}

// ContractUpdate is a partial update. Nil fields are left untouched; Status, when
// set and different from the current status, is resolved into a lifecycle action.
type ContractUpdate struct {
	Status          *entities.ContractStatus
	Message         string
	ClientInfo      *entities.PartyInfo
	FreelancerInfo  *entities.PartyInfo
	ProjectDetails  *entities.ProjectDetails
	PaymentAmount   *decimal.Decimal
	PaymentMethod   *string
	PaymentTerms    *string
	AdditionalTerms *string
}

func (u ContractUpdate) hasFieldEdits() bool {
	return u.ClientInfo != nil || u.FreelancerInfo != nil || u.ProjectDetails != nil ||
		u.PaymentAmount != nil || u.PaymentMethod != nil || u.PaymentTerms != nil || u.AdditionalTerms != nil
}

// IContractUseCase exposes the contract lifecycle endpoints. Every status change
// goes through lifecycle.Apply.

type IContractUseCase interface {
	GenerateContract(ctx context.Context, caller Caller, in GenerateContractInput) (entities.Contract, error)
	GetByID(ctx context.Context, caller Caller, id string) (entities.Contract, error)
	Update(ctx context.Context, caller Caller, id string, upd ContractUpdate) (entities.Contract, error)
	Sign(ctx context.Context, caller Caller, id string) (entities.Contract, error)
	Finalize(ctx context.Context, caller Caller, id string) (entities.Contract, error)
	Complete(ctx context.Context, caller Caller, id string) (entities.Contract, error)
}

type ContractUseCase struct {
	repo    interfaces.IContractRepository
	bidRepo interfaces.IBidRepository
	logger  zerolog.Logger
	now     func() time.Time
}

var _ IContractUseCase = (*ContractUseCase)(nil)

func NewContractUseCase(repo interfaces.IContractRepository, bidRepo interfaces.IBidRepository, logger zerolog.Logger) *ContractUseCase {
	return &ContractUseCase{
		repo:    repo,
		bidRepo: bidRepo,
		logger:  logger.With().Str("component", "contract_usecase").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (u *ContractUseCase) GenerateContract(ctx context.Context, caller Caller, in GenerateContractInput) (entities.Contract, error) {
	if !caller.valid() {
		return entities.Contract{}, ErrUnauthenticated
	}
	if caller.Role != entities.RoleClient {
		return entities.Contract{}, ErrForbidden
	}
	bidID := strings.TrimSpace(in.BidID)
	if bidID == "" {
		return entities.Contract{}, ErrInvalidBidID
	}

	bid, err := u.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return entities.Contract{}, err
	}
	if bid.ID == "" {
		return entities.Contract{}, ErrBidNotFound
	}
	if bid.ClientID != caller.UserID {
		return entities.Contract{}, ErrForbidden
	}
	if bid.HasContract() {
		return entities.Contract{}, ErrBidAlreadyBound
	}
	if bid.Status != entities.BidStatusAccepted {
		return entities.Contract{}, ErrBidNotAccepted
	}

	terms := in.Payment
	terms.AdvancePaid, terms.FullyPaid = false, false
	if !terms.Amount.IsPositive() {
		terms.Amount = bid.Amount
	}
	if !terms.Amount.IsPositive() {
		return entities.Contract{}, fmt.Errorf("%w: payment amount must be positive", ErrInvalidContractInput)
	}

	now := u.now()
	details := in.ProjectDetails
	if details.StartDate.IsZero() {
		details.StartDate = now
	}
	if !details.EndDate.After(details.StartDate) {
		details.EndDate = details.StartDate.AddDate(0, 0, 1)
	}

	c := entities.Contract{
		ID:              uuid.NewString(),
		BidID:           bid.ID,
		JobID:           bid.JobID,
		ClientID:        bid.ClientID,
		FreelancerID:    bid.FreelancerID,
		Status:          entities.ContractStatusDraft,
		PaymentStatus:   entities.PaymentStatusNotPaid,
		Payment:         terms,
		ClientInfo:      in.ClientInfo,
		FreelancerInfo:  in.FreelancerInfo,
		ProjectDetails:  details,
		AdditionalTerms: in.AdditionalTerms,
		ChangeRequests:  []entities.ChangeRequest{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := u.repo.Create(ctx, c)
	if errors.Is(err, interfaces.ErrBidAlreadyBound) {
		u.logger.Warn().Str("bid_id", bid.ID).Msg("bid was bound concurrently")
		return entities.Contract{}, ErrBidAlreadyBound
	}
	if err != nil {
		u.logger.Error().Err(err).Str("bid_id", bid.ID).Msg("contract create failed")
		return entities.Contract{}, err
	}

	u.logger.Info().Str("bid_id", bid.ID).Str("contract_id", created.ID).Msg("contract generated")
	return created, nil
}

func (u *ContractUseCase) GetByID(ctx context.Context, caller Caller, id string) (entities.Contract, error) {
	c, err := u.load(ctx, id)
	if err != nil {
		return entities.Contract{}, err
	}
	if err := authorizeParty(caller, c); err != nil {
		return entities.Contract{}, err
	}
	return c, nil
}

func (u *ContractUseCase) Update(ctx context.Context, caller Caller, id string, upd ContractUpdate) (entities.Contract, error) {
	c, err := u.GetByID(ctx, caller, id)
	if err != nil {
		return entities.Contract{}, err
	}

	next := c.Clone()
	if upd.hasFieldEdits() {
		if caller.Role != entities.RoleClient {
			return entities.Contract{}, ErrForbidden
		}
		if c.Status != entities.ContractStatusDraft && c.Status != entities.ContractStatusRevisionRequested {
			return entities.Contract{}, ErrContractNotEditable
		}
		if err := applyFieldEdits(&next, upd); err != nil {
			return entities.Contract{}, err
		}
		next.UpdatedAt = u.now()
	}

	if upd.Status != nil && *upd.Status != c.Status {
		if !upd.Status.Valid() {
			return entities.Contract{}, fmt.Errorf("%w: unknown status %q", ErrInvalidContractInput, *upd.Status)
		}
		action, ok := lifecycle.ActionFor(c.Status, *upd.Status, caller.Role)
		if !ok {
			return entities.Contract{}, fmt.Errorf("%w: %s cannot move %s to %s", lifecycle.ErrInvalidTransition, caller.Role, c.Status, *upd.Status)
		}
		next, err = u.apply(next, action, caller, upd.Message)
		if err != nil {
			return entities.Contract{}, err
		}
	} else if upd.Status != nil && *upd.Status == entities.ContractStatusCompleted {
		return entities.Contract{}, lifecycle.ErrAlreadyCompleted
	}

	if !upd.hasFieldEdits() && (upd.Status == nil || *upd.Status == c.Status) {
		return c, nil
	}
	return u.save(ctx, next)
}

func (u *ContractUseCase) Sign(ctx context.Context, caller Caller, id string) (entities.Contract, error) {
	return u.transition(ctx, caller, id, lifecycle.ActionSign)
}

func (u *ContractUseCase) Finalize(ctx context.Context, caller Caller, id string) (entities.Contract, error) {
	return u.transition(ctx, caller, id, lifecycle.ActionFinalize)
}

func (u *ContractUseCase) Complete(ctx context.Context, caller Caller, id string) (entities.Contract, error) {
	return u.transition(ctx, caller, id, lifecycle.ActionComplete)
}

func (u *ContractUseCase) transition(ctx context.Context, caller Caller, id string, action lifecycle.Action) (entities.Contract, error) {
	c, err := u.GetByID(ctx, caller, id)
	if err != nil {
		return entities.Contract{}, err
	}
	next, err := u.apply(c, action, caller, "")
	if err != nil {
		return entities.Contract{}, err
	}
	if next.Status == c.Status && next.ClientSigned == c.ClientSigned && next.FreelancerSigned == c.FreelancerSigned {
		// idempotent sign
		return c, nil
	}
	return u.save(ctx, next)
}

func (u *ContractUseCase) apply(c entities.Contract, action lifecycle.Action, caller Caller, msg string) (entities.Contract, error) {
	next, err := lifecycle.Apply(c, action, lifecycle.Input{
		Actor:     caller.Role,
		Effective: c.ConfirmedPaymentStatus(),
		Message:   msg,
		Now:       u.now(),
	})
	if err != nil {
		u.logger.Info().Err(err).Str("contract_id", c.ID).Str("action", string(action)).Str("role", string(caller.Role)).Msg("transition refused")
		return entities.Contract{}, err
	}
	if err := lifecycle.CheckInvariants(next, next.ConfirmedPaymentStatus()); err != nil {
		u.logger.Error().Err(err).Str("contract_id", c.ID).Str("action", string(action)).Msg("transition would break invariants")
		return entities.Contract{}, err
	}
	u.logger.Info().Str("contract_id", c.ID).Str("action", string(action)).
		Str("from", string(c.Status)).Str("to", string(next.Status)).Msg("transition applied")
	return next, nil
}

func (u *ContractUseCase) load(ctx context.Context, id string) (entities.Contract, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Contract{}, ErrInvalidContractID
	}
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Contract{}, err
	}
	if c.ID == "" {
		return entities.Contract{}, ErrContractNotFound
	}
	return c, nil
}

func (u *ContractUseCase) save(ctx context.Context, c entities.Contract) (entities.Contract, error) {
	saved, err := u.repo.Update(ctx, c)
	if err != nil {
		u.logger.Error().Err(err).Str("contract_id", c.ID).Msg("contract update failed")
		return entities.Contract{}, err
	}
	if saved.ID == "" {
		return entities.Contract{}, ErrContractNotFound
	}
	return saved, nil
}

func applyFieldEdits(c *entities.Contract, upd ContractUpdate) error {
	if upd.ClientInfo != nil {
		c.ClientInfo = *upd.ClientInfo
	}
	if upd.FreelancerInfo != nil {
		c.FreelancerInfo = *upd.FreelancerInfo
	}
	if upd.ProjectDetails != nil {
		details := *upd.ProjectDetails
		if !details.StartDate.IsZero() && !details.EndDate.After(details.StartDate) {
			details.EndDate = details.StartDate.AddDate(0, 0, 1)
		}
		c.ProjectDetails = details
	}
	if upd.PaymentAmount != nil {
		if !upd.PaymentAmount.IsPositive() {
			return fmt.Errorf("%w: %v", ErrInvalidContractInput, billing.ErrAmountInvalid)
		}
		c.Payment.Amount = *upd.PaymentAmount
	}
	if upd.PaymentMethod != nil {
		c.Payment.Method = *upd.PaymentMethod
	}
	if upd.PaymentTerms != nil {
		c.Payment.Terms = *upd.PaymentTerms
	}
	if upd.AdditionalTerms != nil {
		c.AdditionalTerms = *upd.AdditionalTerms
	}
	return nil
}
