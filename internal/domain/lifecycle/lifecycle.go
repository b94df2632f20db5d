// Package lifecycle holds the contract state machine: the single table of legal
// status transitions and the function that applies an action to a contract.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"linksphere/internal/domain/entities"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyCompleted  = errors.New("contract already completed")
	ErrMissingMessage    = errors.New("change request message is required")
	ErrInvariant         = errors.New("contract invariant violated")
)

// Action is a user intent that may move a contract between statuses.
type Action string

const (
	ActionSend          Action = "send"
	ActionRequestChange Action = "request-change"
	ActionEditResend    Action = "edit-resend"
	ActionReject        Action = "reject"
	ActionDecline       Action = "decline"
	ActionSign          Action = "sign"
	ActionFinalize      Action = "finalize"
	ActionComplete      Action = "complete"
)

type edge struct {
	from   entities.ContractStatus
	to     entities.ContractStatus
	actor  entities.Role
	action Action
}

const (
	draft     = entities.ContractStatusDraft
	sent      = entities.ContractStatusSentToFreelancer
	revision  = entities.ContractStatusRevisionRequested
	pending   = entities.ContractStatusPendingSignatures
	active    = entities.ContractStatusActive
	completed = entities.ContractStatusCompleted
	rejected  = entities.ContractStatusRejected

	client     = entities.RoleClient
	freelancer = entities.RoleFreelancer
)

var edges = []edge{
	{draft, sent, client, ActionSend},
	{sent, revision, freelancer, ActionRequestChange},
	{sent, pending, freelancer, ActionSign},
	{sent, rejected, freelancer, ActionDecline},
	{revision, sent, client, ActionEditResend},
	{revision, rejected, client, ActionReject},
	{pending, pending, freelancer, ActionSign},
	{pending, pending, client, ActionSign},
	{pending, active, client, ActionFinalize},
	{active, completed, client, ActionComplete},
}

func find(from entities.ContractStatus, action Action, actor entities.Role) (edge, bool) {
	for _, e := range edges {
		if e.from == from && e.action == action && e.actor == actor {
			return e, true
		}
	}
	return edge{}, false
}

// CanTransition reports whether actor may move a contract from current to next.
// Payment and signature guards are not consulted; see Apply.
func CanTransition(current, next entities.ContractStatus, actor entities.Role) bool {
	if current == next {
		return false
	}
	for _, e := range edges {
		if e.from == current && e.to == next && e.actor == actor {
			return true
		}
	}
	return false
}

// ActionFor resolves the action that moves current to next for actor.
func ActionFor(current, next entities.ContractStatus, actor entities.Role) (Action, bool) {
	for _, e := range edges {
		if e.from == current && e.to == next && e.actor == actor && e.from != e.to {
			return e.action, true
		}
	}
	return "", false
}

// IsLegalSuccessor reports whether next can follow prev for any actor. An
// unchanged status is always legal.
func IsLegalSuccessor(prev, next entities.ContractStatus) bool {
	if prev == next {
		return true
	}
	for _, e := range edges {
		if e.from == prev && e.to == next {
			return true
		}
	}
	return false
}

// Input carries everything Apply needs besides the contract itself.
type Input struct {
	Actor     entities.Role
	Effective entities.PaymentStatus
	Message   string
	Now       time.Time
}

// Apply returns the contract that results from actor performing action. The
// input contract is never modified.
func Apply(c entities.Contract, action Action, in Input) (entities.Contract, error) {
	if !in.Actor.Valid() {
		return c, fmt.Errorf("%w: unknown actor %q", ErrInvalidTransition, in.Actor)
	}

	if action == ActionSign && alreadySigned(c, in.Actor) {
		return c, nil
	}
	if action == ActionComplete && c.Status == completed && in.Actor == client {
		return c, ErrAlreadyCompleted
	}

	e, ok := find(c.Status, action, in.Actor)
	if !ok {
		return c, fmt.Errorf("%w: %s cannot %s a %s contract", ErrInvalidTransition, in.Actor, action, c.Status)
	}

	out := c.Clone()
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	switch action {
	case ActionRequestChange:
		msg := strings.TrimSpace(in.Message)
		if msg == "" {
			return c, ErrMissingMessage
		}
		out.ChangeRequests = append(out.ChangeRequests, entities.ChangeRequest{By: in.Actor, Message: msg, Timestamp: now})
	case ActionSign:
		if in.Actor == client {
			out.ClientSigned = true
		} else {
			out.FreelancerSigned = true
		}
	case ActionFinalize:
		if !c.FreelancerSigned || in.Effective != entities.PaymentStatusAdvancePaid {
			return c, fmt.Errorf("%w: finalize requires freelancer signature and advance payment (signed=%t payment=%s)",
				ErrInvalidTransition, c.FreelancerSigned, in.Effective)
		}
		out.ClientSigned = true
	}

	out.Status = e.to
	out.UpdatedAt = now
	return out, nil
}

func alreadySigned(c entities.Contract, actor entities.Role) bool {
	if actor == client {
		return c.ClientSigned
	}
	return c.FreelancerSigned
}

// CheckInvariants validates the structural invariants of a contract given the
// payment status the caller considers effective.
func CheckInvariants(c entities.Contract, effective entities.PaymentStatus) error {
	if !c.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvariant, c.Status)
	}
	if c.Status == active || c.Status == completed {
		if !c.ClientSigned || !c.FreelancerSigned {
			return fmt.Errorf("%w: %s contract must be signed by both parties", ErrInvariant, c.Status)
		}
		if effective == "" || effective == entities.PaymentStatusNotPaid {
			return fmt.Errorf("%w: %s contract without advance payment", ErrInvariant, c.Status)
		}
	}
	if c.AdvanceAmount != nil && c.FinalAmount != nil && c.Payment.Amount.IsPositive() {
		if c.AdvanceAmount.Add(*c.FinalAmount).GreaterThan(c.Payment.Amount) {
			return fmt.Errorf("%w: payments exceed contract amount", ErrInvariant)
		}
	}
	return nil
}
