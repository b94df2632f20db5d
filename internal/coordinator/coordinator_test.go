package coordinator

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	request "linksphere/internal/adapter/http/dto/request"
	"linksphere/internal/client"
	"linksphere/internal/domain/billing"
	"linksphere/internal/domain/binder"
	"linksphere/internal/domain/entities"
	"linksphere/internal/domain/lifecycle"
	"linksphere/internal/infrastructure/events"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedContract() (entities.Contract, entities.Bid) {
	bid := entities.Bid{ID: "b-1", ClientID: clientID, FreelancerID: freelancerID, Amount: dec(1000)}
	c := entities.Contract{
		ID:               "c-1",
		BidID:            bid.ID,
		ClientID:         clientID,
		FreelancerID:     freelancerID,
		Status:           entities.ContractStatusPendingSignatures,
		FreelancerSigned: true,
		PaymentStatus:    entities.PaymentStatusNotPaid,
		Payment:          entities.PaymentTerms{Amount: dec(1000)},
		Version:          1,
	}
	return c, bid
}

func newCoordinator(t *testing.T, api API, role entities.Role, opts Options) *Coordinator {
	t.Helper()
	opts.Role = role
	if opts.Delay == 0 {
		opts.Delay = time.Millisecond
	}
	opts.Logger = zerolog.Nop()
	return New(api, opts)
}

func TestReconcile_ConvergesOnSecondFetch(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{})
	require.NoError(t, coord.Refresh(context.Background()))
	b.mu.Lock()
	b.listCalls = 0
	b.mu.Unlock()

	var seenBetween []entities.PaymentStatus
	b.listHook = func(call int) error {
		// Observe the view between cycles, then confirm on the second fetch.
		seenBetween = append(seenBetween, coord.EffectiveStatus("c-1"))
		if call == 2 {
			b.setPaymentStatus("c-1", entities.PaymentStatusAdvancePaid)
		}
		return nil
	}

	coord.HandlePaymentSuccess(entities.PaymentSuccess{ContractID: "c-1", PaymentType: entities.PaymentTypeAdvance, Amount: dec(500), PaymentID: "p-1"})
	assert.Equal(t, entities.PaymentStatusAdvancePaid, coord.EffectiveStatus("c-1"))

	require.NoError(t, coord.Reconcile(context.Background()))
	assert.Equal(t, 2, b.calls())
	_, pending := coord.Projection().Get("c-1")
	assert.False(t, pending)
	assert.Equal(t, []entities.PaymentStatus{entities.PaymentStatusAdvancePaid, entities.PaymentStatusAdvancePaid}, seenBetween)
	assert.Equal(t, entities.PaymentStatusAdvancePaid, coord.EffectiveStatus("c-1"))
}

func TestReconcile_ExhaustedBudgetKeepsStaleProjection(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{Retries: 3})
	coord.HandlePaymentSuccess(entities.PaymentSuccess{ContractID: "c-1", PaymentType: entities.PaymentTypeAdvance, Amount: dec(500)})

	err := coord.Reconcile(context.Background())
	assert.ErrorIs(t, err, ErrStaleReconciliation)
	assert.Equal(t, 4, b.calls())

	row, ok := coord.Row("c-1")
	require.True(t, ok)
	assert.True(t, row.Pending)
	assert.True(t, row.Stale)
	assert.Equal(t, entities.PaymentStatusAdvancePaid, row.PaymentStatus)
	assert.Equal(t, entities.PaymentStatusNotPaid, row.Confirmed)

	// A later refresh that sees the confirmation clears the stale entry.
	b.setPaymentStatus("c-1", entities.PaymentStatusAdvancePaid)
	require.NoError(t, coord.Refresh(context.Background()))
	assert.Equal(t, 0, coord.Projection().Len())
}

func TestReconcile_RetriesNetworkFailures(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)
	b.listHook = func(call int) error {
		if call == 1 {
			return errDown
		}
		b.setPaymentStatus("c-1", entities.PaymentStatusAdvancePaid)
		return nil
	}

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{})
	coord.HandlePaymentSuccess(entities.PaymentSuccess{ContractID: "c-1", PaymentType: entities.PaymentTypeAdvance})

	require.NoError(t, coord.Reconcile(context.Background()))
	assert.Equal(t, 2, b.calls())
	assert.Equal(t, 0, coord.Projection().Len())
}

func TestReconcile_NetworkExhaustion(t *testing.T) {
	b := newBackend()
	b.listHook = func(int) error { return errDown }

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{Retries: 2})
	coord.HandlePaymentSuccess(entities.PaymentSuccess{ContractID: "c-1", PaymentType: entities.PaymentTypeFinal})

	err := coord.Reconcile(context.Background())
	assert.ErrorIs(t, err, ErrStaleReconciliation)
	assert.Equal(t, 3, b.calls())
	assert.True(t, coord.Projection().IsStale("c-1"))
}

func TestReconcile_NothingPendingIsOneFetch(t *testing.T) {
	b := newBackend()
	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{})
	require.NoError(t, coord.Reconcile(context.Background()))
	assert.Equal(t, 1, b.calls())
}

func TestRefresh_DiscardsResultAfterClose(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{})
	release := make(chan struct{})
	b.listHook = func(int) error {
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- coord.Refresh(context.Background()) }()
	coord.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Empty(t, coord.Rows())
}

func TestRefresh_DiscardsResultAfterCancel(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	b.listHook = func(int) error {
		cancel()
		return nil
	}

	assert.ErrorIs(t, coord.Refresh(ctx), context.Canceled)
	assert.Empty(t, coord.Rows())
}

func TestProjection_NeverRegresses(t *testing.T) {
	p := NewProjection()
	p.Set("c-1", entities.PaymentStatusFullyPaid)
	p.Set("c-1", entities.PaymentStatusAdvancePaid)
	got, ok := p.Get("c-1")
	require.True(t, ok)
	assert.Equal(t, entities.PaymentStatusFullyPaid, got)

	assert.False(t, p.confirm("c-1", entities.PaymentStatusAdvancePaid))
	assert.True(t, p.confirm("c-1", entities.PaymentStatusFullyPaid))
	assert.Equal(t, 0, p.Len())
}

func TestProjection_IsolatedInstances(t *testing.T) {
	a, b := NewProjection(), NewProjection()
	a.Set("c-1", entities.PaymentStatusAdvancePaid)
	_, ok := b.Get("c-1")
	assert.False(t, ok)
}

func TestStart_AppliesBusEvents(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)
	bus := events.NewBus(4, zerolog.Nop())
	defer bus.Close()

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{})
	require.NoError(t, coord.Refresh(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		coord.Start(ctx, bus)
		close(stopped)
	}()
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, time.Millisecond)

	b.setPaymentStatus("c-1", entities.PaymentStatusAdvancePaid)
	bus.PublishPaymentSuccess(entities.PaymentSuccess{ContractID: "c-1", PaymentType: entities.PaymentTypeAdvance, Amount: dec(500)})

	require.Eventually(t, func() bool {
		row, _ := coord.Row("c-1")
		return row.Confirmed == entities.PaymentStatusAdvancePaid && !row.Pending
	}, time.Second, time.Millisecond)

	cancel()
	<-stopped
	assert.Equal(t, 0, bus.Subscribers())
}

func TestRows_ActionsFollowEffectiveStatus(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)
	b.addBid(entities.Bid{ID: "b-2", ClientID: clientID, FreelancerID: "free-2", Status: entities.BidStatusPending, Amount: dec(10)})

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{})
	require.NoError(t, coord.Refresh(context.Background()))

	row, ok := coord.Row("c-1")
	require.True(t, ok)
	assert.True(t, binder.Has(row.Actions, binder.ActionPayAdvance))
	require.NotNil(t, row.SuggestedAdvance)
	assert.True(t, row.SuggestedAdvance.Equal(dec(500)))
	assert.True(t, row.SuggestedFinal.Equal(dec(500)))

	coord.HandlePaymentSuccess(entities.PaymentSuccess{ContractID: "c-1", PaymentType: entities.PaymentTypeAdvance})
	row, _ = coord.Row("c-1")
	assert.False(t, binder.Has(row.Actions, binder.ActionPayAdvance))
	assert.True(t, binder.Has(row.Actions, binder.ActionFinalize))

	var pendingRow *Row
	for _, r := range coord.Rows() {
		if r.Bid.ID == "b-2" {
			pendingRow = &r
		}
	}
	require.NotNil(t, pendingRow)
	assert.Equal(t, []binder.UIAction{binder.ActionAcceptBid, binder.ActionRejectBid}, pendingRow.Actions)
}

func TestTransition_RejectedLocally(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	c.Status = entities.ContractStatusActive
	c.ClientSigned = true
	c.PaymentStatus = entities.PaymentStatusAdvancePaid
	b.addContract(c, bid)

	coord := newCoordinator(t, b.as(entities.RoleFreelancer), entities.RoleFreelancer, Options{})
	require.NoError(t, coord.Refresh(context.Background()))

	_, err := coord.Transition(context.Background(), "c-1", lifecycle.ActionComplete, "")
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	assert.Equal(t, entities.ContractStatusActive, b.contract("c-1").Status)
}

// skippingAPI answers every contract update with a fixed status.
type skippingAPI struct {
	*fakeAPI
	status entities.ContractStatus
}

func (a skippingAPI) UpdateContract(_ context.Context, id string, _ request.UpdateContractRequest) (entities.Contract, error) {
	c := a.b.contract(id)
	c.Status = a.status
	return c, nil
}

func TestTransition_RejectsIllegalSuccessorFromBackend(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	c.Status = entities.ContractStatusDraft
	c.FreelancerSigned = false
	b.addContract(c, bid)

	api := skippingAPI{fakeAPI: b.as(entities.RoleClient), status: entities.ContractStatusCompleted}
	coord := newCoordinator(t, api, entities.RoleClient, Options{})
	require.NoError(t, coord.Refresh(context.Background()))

	_, err := coord.Transition(context.Background(), "c-1", lifecycle.ActionSend, "")
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	row, ok := coord.Row("c-1")
	require.True(t, ok)
	assert.Equal(t, entities.ContractStatusDraft, row.Contract.Status)
}

func TestDecideBid(t *testing.T) {
	ctx := context.Background()
	b := newBackend()
	b.addBid(entities.Bid{ID: "b-1", ClientID: clientID, FreelancerID: freelancerID, Status: entities.BidStatusPending, Amount: dec(500)})

	fr := newCoordinator(t, b.as(entities.RoleFreelancer), entities.RoleFreelancer, Options{})
	require.NoError(t, fr.Refresh(ctx))
	_, err := fr.DecideBid(ctx, "b-1", entities.BidStatusAccepted)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	cl := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{})
	_, err = cl.DecideBid(ctx, "b-1", entities.BidStatusAccepted)
	assert.ErrorIs(t, err, ErrUnknownBid)

	require.NoError(t, cl.Refresh(ctx))
	bid, err := cl.DecideBid(ctx, "b-1", entities.BidStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, entities.BidStatusAccepted, bid.Status)

	rows := cl.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, []binder.UIAction{binder.ActionGenerateContract}, rows[0].Actions)
}

func TestPay_ValidatesBeforeCreatingOrder(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)
	co := &checkout{}

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{Checkout: co})
	require.NoError(t, coord.Refresh(context.Background()))

	_, err := coord.Pay(context.Background(), "c-1", entities.PaymentTypeAdvance, dec(499))
	assert.ErrorIs(t, err, billing.ErrAmountBelowMinimum)
	_, err = coord.Pay(context.Background(), "c-1", entities.PaymentTypeAdvance, dec(1001))
	assert.ErrorIs(t, err, billing.ErrAmountAboveMaximum)
	_, err = coord.Pay(context.Background(), "c-1", entities.PaymentTypeFinal, dec(500))
	assert.ErrorIs(t, err, billing.ErrPaymentNotAllowed)
	assert.Equal(t, 0, b.orderCalls)
	assert.Empty(t, co.opened)
}

func TestPay_FreelancerCannotPay(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)

	coord := newCoordinator(t, b.as(entities.RoleFreelancer), entities.RoleFreelancer, Options{Checkout: &checkout{}})
	require.NoError(t, coord.Refresh(context.Background()))

	_, err := coord.Pay(context.Background(), "c-1", entities.PaymentTypeAdvance, dec(500))
	assert.ErrorIs(t, err, billing.ErrPaymentNotAllowed)
}

func TestPay_RejectedWhenFullyPaid(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	c.Status = entities.ContractStatusActive
	c.ClientSigned = true
	c.PaymentStatus = entities.PaymentStatusFullyPaid
	b.addContract(c, bid)

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{Checkout: &checkout{}})
	require.NoError(t, coord.Refresh(context.Background()))

	_, err := coord.Pay(context.Background(), "c-1", entities.PaymentTypeFinal, dec(1))
	assert.ErrorIs(t, err, billing.ErrAlreadyFullyPaid)
}

func TestPay_CancelDoesNotContactBackend(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)
	co := &checkout{result: CheckoutResult{Outcome: CheckoutCancelled}}

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{Checkout: co})
	require.NoError(t, coord.Refresh(context.Background()))

	res, err := coord.Pay(context.Background(), "c-1", entities.PaymentTypeAdvance, dec(500))
	require.NoError(t, err)
	assert.Equal(t, CheckoutCancelled, res.Outcome)
	assert.Equal(t, 0, b.verifyCalls)
	assert.Equal(t, 0, coord.Projection().Len())
	assert.False(t, coord.Processing("c-1"))
	assert.Equal(t, entities.PaymentStatusNotPaid, coord.EffectiveStatus("c-1"))
}

func TestPay_CheckoutFailure(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)
	co := &checkout{result: CheckoutResult{Outcome: CheckoutFailed, Reason: "card declined"}}

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{Checkout: co})
	require.NoError(t, coord.Refresh(context.Background()))

	_, err := coord.Pay(context.Background(), "c-1", entities.PaymentTypeAdvance, dec(500))
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, 0, b.verifyCalls)
	assert.Equal(t, 0, coord.Projection().Len())
}

func TestPay_GatewayUnavailable(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)
	co := &checkout{err: errors.New("widget script failed to load")}

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{Checkout: co})
	require.NoError(t, coord.Refresh(context.Background()))

	_, err := coord.Pay(context.Background(), "c-1", entities.PaymentTypeAdvance, dec(500))
	assert.ErrorIs(t, err, ErrPaymentGatewayUnavailable)
	assert.False(t, coord.Processing("c-1"))

	noCheckout := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{})
	require.NoError(t, noCheckout.Refresh(context.Background()))
	_, err = noCheckout.Pay(context.Background(), "c-1", entities.PaymentTypeAdvance, dec(500))
	assert.ErrorIs(t, err, ErrPaymentGatewayUnavailable)
}

func TestPay_VerificationFailureAppliesNoProjection(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)
	b.verifyErr = &client.APIError{Status: http.StatusPaymentRequired, Code: "PAYMENT_VERIFICATION_FAILED"}
	co := &checkout{result: CheckoutResult{Outcome: CheckoutSucceeded, ProviderPaymentID: "123"}}
	pub := &recordingPublisher{}

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{Checkout: co, Publisher: pub})
	require.NoError(t, coord.Refresh(context.Background()))

	_, err := coord.Pay(context.Background(), "c-1", entities.PaymentTypeAdvance, dec(500))
	assert.ErrorIs(t, err, ErrPaymentVerificationFailed)
	assert.Equal(t, 0, coord.Projection().Len())
	assert.Empty(t, pub.events)
}

func TestPay_SuccessPublishesEvent(t *testing.T) {
	b := newBackend()
	c, bid := signedContract()
	b.addContract(c, bid)
	co := &checkout{result: CheckoutResult{Outcome: CheckoutSucceeded, ProviderPaymentID: "123"}}
	pub := &recordingPublisher{}

	coord := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{Checkout: co, Publisher: pub})
	require.NoError(t, coord.Refresh(context.Background()))

	res, err := coord.Pay(context.Background(), "c-1", entities.PaymentTypeAdvance, dec(600))
	require.NoError(t, err)
	assert.Equal(t, CheckoutSucceeded, res.Outcome)
	assert.Equal(t, entities.PaymentRecordCaptured, res.Payment.Status)
	require.Len(t, co.opened, 1)
	assert.Equal(t, "pk-test", co.opened[0].PublicKey)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "c-1", pub.events[0].ContractID)
	assert.True(t, pub.events[0].Amount.Equal(dec(600)))
}

// bid accepted -> contract generated -> sent -> signed -> advance paid ->
// finalized -> completed.
func TestScenario_HappyPath(t *testing.T) {
	ctx := context.Background()
	b := newBackend()
	b.addBid(entities.Bid{ID: "b-1", ClientID: clientID, FreelancerID: freelancerID, Status: entities.BidStatusAccepted, Amount: dec(1000)})

	co := &checkout{result: CheckoutResult{Outcome: CheckoutSucceeded, ProviderPaymentID: "mp-1"}}
	cl := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{Checkout: co})
	fr := newCoordinator(t, b.as(entities.RoleFreelancer), entities.RoleFreelancer, Options{})
	require.NoError(t, cl.Refresh(ctx))

	contract, err := cl.GenerateContract(ctx, request.GenerateContractRequest{BidID: "b-1"})
	require.NoError(t, err)
	assert.Equal(t, entities.ContractStatusDraft, contract.Status)
	id := contract.ID

	contract, err = cl.Transition(ctx, id, lifecycle.ActionSend, "")
	require.NoError(t, err)
	assert.Equal(t, entities.ContractStatusSentToFreelancer, contract.Status)

	require.NoError(t, fr.Refresh(ctx))
	contract, err = fr.Transition(ctx, id, lifecycle.ActionSign, "")
	require.NoError(t, err)
	assert.Equal(t, entities.ContractStatusPendingSignatures, contract.Status)
	assert.True(t, contract.FreelancerSigned)

	require.NoError(t, cl.Refresh(ctx))
	_, err = cl.Transition(ctx, id, lifecycle.ActionFinalize, "")
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	b.mu.Lock()
	b.hideCapture = 1
	b.mu.Unlock()
	_, err = cl.Pay(ctx, id, entities.PaymentTypeAdvance, dec(500))
	require.NoError(t, err)
	assert.Equal(t, entities.PaymentStatusAdvancePaid, cl.EffectiveStatus(id))

	// The first refetch still shows NOT_PAID; the projection holds the view.
	require.NoError(t, cl.Refresh(ctx))
	row, _ := cl.Row(id)
	assert.Equal(t, entities.PaymentStatusNotPaid, row.Confirmed)
	assert.Equal(t, entities.PaymentStatusAdvancePaid, row.PaymentStatus)
	require.NoError(t, cl.Reconcile(ctx))
	assert.Equal(t, 0, cl.Projection().Len())

	contract, err = cl.Transition(ctx, id, lifecycle.ActionFinalize, "")
	require.NoError(t, err)
	assert.Equal(t, entities.ContractStatusActive, contract.Status)

	contract, err = cl.Transition(ctx, id, lifecycle.ActionComplete, "")
	require.NoError(t, err)
	assert.Equal(t, entities.ContractStatusCompleted, contract.Status)
	assert.True(t, contract.Status.IsTerminal())

	_, err = cl.Transition(ctx, id, lifecycle.ActionComplete, "")
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyCompleted)
}

func TestScenario_RevisionLoop(t *testing.T) {
	ctx := context.Background()
	b := newBackend()
	c, bid := signedContract()
	c.Status = entities.ContractStatusSentToFreelancer
	c.FreelancerSigned = false
	b.addContract(c, bid)

	fr := newCoordinator(t, b.as(entities.RoleFreelancer), entities.RoleFreelancer, Options{})
	cl := newCoordinator(t, b.as(entities.RoleClient), entities.RoleClient, Options{})
	require.NoError(t, fr.Refresh(ctx))

	_, err := fr.Transition(ctx, "c-1", lifecycle.ActionRequestChange, "")
	assert.ErrorIs(t, err, lifecycle.ErrMissingMessage)

	updated, err := fr.Transition(ctx, "c-1", lifecycle.ActionRequestChange, "please add deliverable X")
	require.NoError(t, err)
	assert.Equal(t, entities.ContractStatusRevisionRequested, updated.Status)
	require.Len(t, updated.ChangeRequests, 1)
	assert.Equal(t, entities.RoleFreelancer, updated.ChangeRequests[0].By)

	require.NoError(t, cl.Refresh(ctx))
	row, _ := cl.Row("c-1")
	assert.True(t, binder.Has(row.Actions, binder.ActionEditAndResend))

	updated, err = cl.Transition(ctx, "c-1", lifecycle.ActionEditResend, "")
	require.NoError(t, err)
	assert.Equal(t, entities.ContractStatusSentToFreelancer, updated.Status)
	assert.Len(t, updated.ChangeRequests, 1)
	assert.Equal(t, "please add deliverable X", updated.ChangeRequests[0].Message)
}
