package coordinator

import (
	"context"
	"fmt"
	"time"

	request "linksphere/internal/adapter/http/dto/request"
	"linksphere/internal/domain/binder"
	"linksphere/internal/domain/entities"
	"linksphere/internal/domain/lifecycle"
)

// Transition performs action on contractID. The state machine is checked
// locally first, so an illegal action never reaches the backend. Mutating
// calls are not retried.
func (c *Coordinator) Transition(ctx context.Context, contractID string, action lifecycle.Action, message string) (entities.Contract, error) {
	s, ok := c.findContract(contractID)
	if !ok {
		return entities.Contract{}, ErrUnknownContract
	}
	current := *s.Contract
	next, err := lifecycle.Apply(current, action, lifecycle.Input{
		Actor:     c.role,
		Effective: c.EffectiveStatus(contractID),
		Message:   message,
		Now:       time.Now().UTC(),
	})
	if err != nil {
		return entities.Contract{}, err
	}

	var updated entities.Contract
	switch action {
	case lifecycle.ActionSign:
		updated, err = c.api.SignContract(ctx, contractID)
	case lifecycle.ActionFinalize:
		updated, err = c.api.FinalizeContract(ctx, contractID)
	case lifecycle.ActionComplete:
		updated, err = c.api.CompleteContract(ctx, contractID)
	default:
		status := string(next.Status)
		updated, err = c.api.UpdateContract(ctx, contractID, request.UpdateContractRequest{Status: &status, Message: message})
	}
	if err != nil {
		return entities.Contract{}, fmt.Errorf("%s contract %s: %w", action, contractID, err)
	}
	if !lifecycle.IsLegalSuccessor(current.Status, updated.Status) {
		c.logger.Error().Str("contract_id", contractID).Str("action", string(action)).
			Str("from", string(current.Status)).Str("to", string(updated.Status)).Msg("backend returned an illegal successor; refetching")
		if err := c.Refresh(ctx); err != nil {
			c.logger.Warn().Err(err).Str("contract_id", contractID).Msg("refetch after illegal successor failed")
		}
		return entities.Contract{}, fmt.Errorf("%w: backend moved %s from %s to %s", lifecycle.ErrInvalidTransition, contractID, current.Status, updated.Status)
	}
	if ctx.Err() == nil {
		c.replaceContract(updated)
	}
	return updated, nil
}

// DecideBid accepts or rejects a pending bid as the client.
func (c *Coordinator) DecideBid(ctx context.Context, bidID string, status entities.BidStatus) (entities.Bid, error) {
	s, ok := c.findBid(bidID)
	if !ok {
		return entities.Bid{}, ErrUnknownBid
	}
	want := binder.ActionAcceptBid
	if status == entities.BidStatusRejected {
		want = binder.ActionRejectBid
	}
	if !binder.Has(c.row(s).Actions, want) {
		return entities.Bid{}, fmt.Errorf("%w: %s not offered for bid %s", lifecycle.ErrInvalidTransition, want, bidID)
	}
	bid, err := c.api.UpdateBidStatus(ctx, bidID, status)
	if err != nil {
		return entities.Bid{}, err
	}
	return bid, c.Refresh(ctx)
}

// GenerateContract creates the contract for an accepted bid and refreshes the view.
func (c *Coordinator) GenerateContract(ctx context.Context, in request.GenerateContractRequest) (entities.Contract, error) {
	s, ok := c.findBid(in.BidID)
	if !ok {
		return entities.Contract{}, ErrUnknownBid
	}
	if !binder.Has(c.row(s).Actions, binder.ActionGenerateContract) {
		return entities.Contract{}, fmt.Errorf("%w: contract cannot be generated for bid %s", lifecycle.ErrInvalidTransition, in.BidID)
	}
	contract, err := c.api.GenerateContract(ctx, in)
	if err != nil {
		return entities.Contract{}, err
	}
	return contract, c.Refresh(ctx)
}
