package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"linksphere/internal/domain/binder"
	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBidNotFound         = errors.New("bid not found")
	ErrInvalidBidID        = errors.New("invalid bid id")
	ErrInvalidBidInput     = errors.New("invalid bid input")
	ErrBidStatusTransition = errors.New("bid status cannot change")
)

// contractFetchLimit bounds concurrent contract reads while listing bids.
const contractFetchLimit = 8

// BidView is a bid as seen by one party: its contract (if any), the payment
// status considered effective and the actions that party may take.
type BidView struct {
	Bid           entities.Bid
	Contract      *entities.Contract
	PaymentStatus entities.PaymentStatus
	Actions       []binder.UIAction
}

type PlaceBidInput struct {
	JobID    string
	ClientID string
	Amount   decimal.Decimal
	Message  string
	Timeline string
}

type IBidUseCase interface {
	ListForClient(ctx context.Context, caller Caller) ([]BidView, error)
	ListForFreelancer(ctx context.Context, caller Caller) ([]BidView, error)
	PlaceBid(ctx context.Context, caller Caller, in PlaceBidInput) (entities.Bid, error)
	UpdateStatus(ctx context.Context, caller Caller, id string, status entities.BidStatus) (entities.Bid, error)
}

type BidUseCase struct {
	repo         interfaces.IBidRepository
	contractRepo interfaces.IContractRepository
	logger       zerolog.Logger
}

var _ IBidUseCase = (*BidUseCase)(nil)

func NewBidUseCase(repo interfaces.IBidRepository, contractRepo interfaces.IContractRepository, logger zerolog.Logger) *BidUseCase {
	return &BidUseCase{
		repo:         repo,
		contractRepo: contractRepo,
		logger:       logger.With().Str("component", "bid_usecase").Logger(),
	}
}

func (u *BidUseCase) ListForClient(ctx context.Context, caller Caller) ([]BidView, error) {
	if !caller.valid() {
		return nil, ErrUnauthenticated
	}
	if caller.Role != entities.RoleClient {
		return nil, ErrForbidden
	}
	bids, err := u.repo.ListByClientID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return u.views(ctx, caller.Role, bids)
}

func (u *BidUseCase) ListForFreelancer(ctx context.Context, caller Caller) ([]BidView, error) {
	if !caller.valid() {
		return nil, ErrUnauthenticated
	}
	if caller.Role != entities.RoleFreelancer {
		return nil, ErrForbidden
	}
	bids, err := u.repo.ListByFreelancerID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return u.views(ctx, caller.Role, bids)
}

func (u *BidUseCase) views(ctx context.Context, role entities.Role, bids []entities.Bid) ([]BidView, error) {
	out := make([]BidView, len(bids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(contractFetchLimit)
	for i, b := range bids {
		out[i] = BidView{Bid: b, PaymentStatus: entities.PaymentStatusNotPaid}
		if !b.HasContract() {
			continue
		}
		g.Go(func() error {
			c, err := u.contractRepo.GetByID(gctx, b.ContractID)
			if err != nil {
				return fmt.Errorf("load contract %s: %w", b.ContractID, err)
			}
			if c.ID == "" {
				u.logger.Warn().Str("bid_id", b.ID).Str("contract_id", b.ContractID).Msg("bid references missing contract")
				return nil
			}
			out[i].Contract = &c
			out[i].PaymentStatus = c.ConfirmedPaymentStatus()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].Actions = binder.Actions(role, out[i].Bid, out[i].Contract, out[i].PaymentStatus)
	}
	return out, nil
}

func (u *BidUseCase) PlaceBid(ctx context.Context, caller Caller, in PlaceBidInput) (entities.Bid, error) {
	if !caller.valid() {
		return entities.Bid{}, ErrUnauthenticated
	}
	if caller.Role != entities.RoleFreelancer {
		return entities.Bid{}, ErrForbidden
	}
	if strings.TrimSpace(in.JobID) == "" || strings.TrimSpace(in.ClientID) == "" {
		return entities.Bid{}, fmt.Errorf("%w: job_id and client_id are required", ErrInvalidBidInput)
	}
	if !in.Amount.IsPositive() {
		return entities.Bid{}, fmt.Errorf("%w: amount must be positive", ErrInvalidBidInput)
	}
	if in.ClientID == caller.UserID {
		return entities.Bid{}, fmt.Errorf("%w: cannot bid on own job", ErrInvalidBidInput)
	}

	now := time.Now().UTC()
	b := entities.Bid{
		ID:           uuid.NewString(),
		JobID:        strings.TrimSpace(in.JobID),
		ClientID:     strings.TrimSpace(in.ClientID),
		FreelancerID: caller.UserID,
		Amount:       in.Amount,
		Message:      in.Message,
		Timeline:     in.Timeline,
		Status:       entities.BidStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := u.repo.Create(ctx, b)
	if err != nil {
		return entities.Bid{}, err
	}
	u.logger.Info().Str("bid_id", created.ID).Str("job_id", created.JobID).Msg("bid placed")
	return created, nil
}

// UpdateStatus lets the job's client accept or reject a pending bid.
func (u *BidUseCase) UpdateStatus(ctx context.Context, caller Caller, id string, status entities.BidStatus) (entities.Bid, error) {
	if !caller.valid() {
		return entities.Bid{}, ErrUnauthenticated
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Bid{}, ErrInvalidBidID
	}
	if status != entities.BidStatusAccepted && status != entities.BidStatusRejected {
		return entities.Bid{}, fmt.Errorf("%w: %q", ErrBidStatusTransition, status)
	}

	b, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Bid{}, err
	}
	if b.ID == "" {
		return entities.Bid{}, ErrBidNotFound
	}
	if caller.Role != entities.RoleClient || b.ClientID != caller.UserID {
		return entities.Bid{}, ErrForbidden
	}
	if b.Status == status {
		return b, nil
	}
	if b.Status != entities.BidStatusPending {
		return entities.Bid{}, fmt.Errorf("%w: bid is %s", ErrBidStatusTransition, b.Status)
	}

	updated, err := u.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return entities.Bid{}, err
	}
	if updated.ID == "" {
		return entities.Bid{}, ErrBidNotFound
	}
	u.logger.Info().Str("bid_id", id).Str("status", string(status)).Msg("bid status updated")
	return updated, nil
}
