package lifecycle

import (
	"testing"
	"time"

	"linksphere/internal/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []entities.ContractStatus{draft, sent, revision, pending, active, completed, rejected}

func TestCanTransition_CompleteIsClientOnly(t *testing.T) {
	assert.True(t, CanTransition(active, completed, client))
	assert.False(t, CanTransition(active, completed, freelancer))
}

func TestCanTransition_Table(t *testing.T) {
	cases := []struct {
		from, to entities.ContractStatus
		actor    entities.Role
		want     bool
	}{
		{draft, sent, client, true},
		{draft, sent, freelancer, false},
		{sent, revision, freelancer, true},
		{sent, revision, client, false},
		{sent, pending, freelancer, true},
		{revision, sent, client, true},
		{revision, rejected, client, true},
		{revision, rejected, freelancer, false},
		{pending, active, client, true},
		{pending, active, freelancer, false},
		{draft, active, client, false},
		{completed, active, client, false},
		{rejected, draft, client, false},
		{pending, pending, client, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, CanTransition(tc.from, tc.to, tc.actor), "%s -> %s by %s", tc.from, tc.to, tc.actor)
	}
}

func TestCanTransition_TerminalStatesHaveNoSuccessors(t *testing.T) {
	for _, term := range []entities.ContractStatus{completed, rejected} {
		for _, next := range allStatuses {
			assert.False(t, CanTransition(term, next, client))
			assert.False(t, CanTransition(term, next, freelancer))
		}
	}
}

func TestActionFor(t *testing.T) {
	a, ok := ActionFor(revision, sent, client)
	require.True(t, ok)
	assert.Equal(t, ActionEditResend, a)

	_, ok = ActionFor(pending, pending, client)
	assert.False(t, ok)
}

func TestIsLegalSuccessor(t *testing.T) {
	assert.True(t, IsLegalSuccessor(active, active))
	assert.True(t, IsLegalSuccessor(draft, sent))
	assert.False(t, IsLegalSuccessor(draft, completed))
}

func TestApply_FinalizeGuards(t *testing.T) {
	for _, st := range allStatuses {
		for _, signed := range []bool{false, true} {
			for _, pay := range []entities.PaymentStatus{entities.PaymentStatusNotPaid, entities.PaymentStatusAdvancePaid, entities.PaymentStatusFullyPaid} {
				c := entities.Contract{ID: "c-1", Status: st, FreelancerSigned: signed}
				out, err := Apply(c, ActionFinalize, Input{Actor: client, Effective: pay})

				if st == pending && signed && pay == entities.PaymentStatusAdvancePaid {
					require.NoError(t, err)
					assert.Equal(t, active, out.Status)
					assert.True(t, out.ClientSigned)
					continue
				}
				assert.ErrorIsf(t, err, ErrInvalidTransition, "status=%s signed=%t pay=%s", st, signed, pay)
				assert.Equal(t, st, out.Status)
			}
		}
	}
}

func TestApply_FinalizeByFreelancerFails(t *testing.T) {
	c := entities.Contract{Status: pending, FreelancerSigned: true}
	_, err := Apply(c, ActionFinalize, Input{Actor: freelancer, Effective: entities.PaymentStatusAdvancePaid})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApply_SignIsIdempotent(t *testing.T) {
	c := entities.Contract{Status: sent}

	first, err := Apply(c, ActionSign, Input{Actor: freelancer})
	require.NoError(t, err)
	assert.True(t, first.FreelancerSigned)
	assert.Equal(t, pending, first.Status)

	second, err := Apply(first, ActionSign, Input{Actor: freelancer})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestApply_ClientSignOnlyWhilePendingSignatures(t *testing.T) {
	_, err := Apply(entities.Contract{Status: draft}, ActionSign, Input{Actor: client})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	out, err := Apply(entities.Contract{Status: pending}, ActionSign, Input{Actor: client})
	require.NoError(t, err)
	assert.True(t, out.ClientSigned)
	assert.Equal(t, pending, out.Status)
}

func TestApply_Complete(t *testing.T) {
	c := entities.Contract{Status: active, ClientSigned: true, FreelancerSigned: true}

	done, err := Apply(c, ActionComplete, Input{Actor: client})
	require.NoError(t, err)
	assert.Equal(t, completed, done.Status)
	assert.True(t, done.Status.IsTerminal())

	_, err = Apply(done, ActionComplete, Input{Actor: client})
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	_, err = Apply(c, ActionComplete, Input{Actor: freelancer})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Apply(entities.Contract{Status: pending}, ActionComplete, Input{Actor: client})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApply_RevisionLoopKeepsHistory(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := entities.Contract{Status: sent}

	revised, err := Apply(c, ActionRequestChange, Input{Actor: freelancer, Message: "please add deliverable X", Now: now})
	require.NoError(t, err)
	assert.Equal(t, revision, revised.Status)
	require.Len(t, revised.ChangeRequests, 1)
	assert.Equal(t, entities.ChangeRequest{By: freelancer, Message: "please add deliverable X", Timestamp: now}, revised.ChangeRequests[0])
	assert.Empty(t, c.ChangeRequests, "input must not be mutated")

	resent, err := Apply(revised, ActionEditResend, Input{Actor: client})
	require.NoError(t, err)
	assert.Equal(t, sent, resent.Status)
	assert.Len(t, resent.ChangeRequests, 1)
}

func TestApply_RequestChangeNeedsMessage(t *testing.T) {
	_, err := Apply(entities.Contract{Status: sent}, ActionRequestChange, Input{Actor: freelancer, Message: "  "})
	assert.ErrorIs(t, err, ErrMissingMessage)
}

func TestApply_RejectAndDecline(t *testing.T) {
	out, err := Apply(entities.Contract{Status: revision}, ActionReject, Input{Actor: client})
	require.NoError(t, err)
	assert.Equal(t, rejected, out.Status)

	out, err = Apply(entities.Contract{Status: sent}, ActionDecline, Input{Actor: freelancer})
	require.NoError(t, err)
	assert.Equal(t, rejected, out.Status)

	_, err = Apply(entities.Contract{Status: sent}, ActionReject, Input{Actor: client})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApply_UnknownActor(t *testing.T) {
	_, err := Apply(entities.Contract{Status: draft}, ActionSend, Input{Actor: "admin"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCheckInvariants(t *testing.T) {
	okActive := entities.Contract{Status: active, ClientSigned: true, FreelancerSigned: true}
	assert.NoError(t, CheckInvariants(okActive, entities.PaymentStatusAdvancePaid))
	assert.ErrorIs(t, CheckInvariants(okActive, entities.PaymentStatusNotPaid), ErrInvariant)

	unsigned := entities.Contract{Status: active, FreelancerSigned: true}
	assert.ErrorIs(t, CheckInvariants(unsigned, entities.PaymentStatusAdvancePaid), ErrInvariant)

	adv := decimal.NewFromInt(600)
	fin := decimal.NewFromInt(500)
	over := entities.Contract{
		Status:        draft,
		Payment:       entities.PaymentTerms{Amount: decimal.NewFromInt(1000)},
		AdvanceAmount: &adv,
		FinalAmount:   &fin,
	}
	assert.ErrorIs(t, CheckInvariants(over, entities.PaymentStatusNotPaid), ErrInvariant)
}
