package coordinator

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	request "linksphere/internal/adapter/http/dto/request"
	response "linksphere/internal/adapter/http/dto/response"
	"linksphere/internal/client"
	"linksphere/internal/domain/billing"
	"linksphere/internal/domain/entities"
	"linksphere/internal/domain/lifecycle"
	"linksphere/internal/usecase"
	"linksphere/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
)

const (
	clientID     = "client-1"
	freelancerID = "free-1"
)

// backend is an in-memory stand-in for the HTTP service. It enforces the same
// state machine and payment rules.
type backend struct {
	mu        sync.Mutex
	bids      map[string]entities.Bid
	contracts map[string]entities.Contract
	payments  map[string]entities.PaymentRecord
	seq       int

	listCalls   int
	listHook    func(call int) error
	verifyCalls int
	verifyErr   error
	orderCalls  int
	// hideCapture keeps captured payments out of list results for that many
	// list calls after verification.
	hideCapture int
	hidden      map[string]entities.PaymentStatus
}

func newBackend() *backend {
	return &backend{
		bids:      make(map[string]entities.Bid),
		contracts: make(map[string]entities.Contract),
		payments:  make(map[string]entities.PaymentRecord),
		hidden:    make(map[string]entities.PaymentStatus),
	}
}

func (b *backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

func (b *backend) addBid(bid entities.Bid) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bids[bid.ID] = bid
}

func (b *backend) addContract(c entities.Contract, bid entities.Bid) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bid.ContractID = c.ID
	bid.Status = entities.BidStatusContractCreated
	b.bids[bid.ID] = bid
	b.contracts[c.ID] = c
}

func (b *backend) contract(id string) entities.Contract {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.contracts[id]
}

func (b *backend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls
}

// as returns the API as seen by role.
func (b *backend) as(role entities.Role) *fakeAPI {
	return &fakeAPI{b: b, role: role}
}

type fakeAPI struct {
	b    *backend
	role entities.Role
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) ListBidsWithContracts(ctx context.Context, role entities.Role) ([]client.BidWithContract, error) {
	b := f.b
	b.mu.Lock()
	b.listCalls++
	call := b.listCalls
	hook := b.listHook
	b.mu.Unlock()
	if hook != nil {
		if err := hook(call); err != nil {
			return nil, err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hideCapture > 0 {
		b.hideCapture--
	} else {
		b.hidden = make(map[string]entities.PaymentStatus)
	}
	var out []client.BidWithContract
	for _, bid := range b.bids {
		if (role == entities.RoleClient && bid.ClientID != clientID) || (role == entities.RoleFreelancer && bid.FreelancerID != freelancerID) {
			continue
		}
		row := client.BidWithContract{Bid: bid}
		if c, ok := b.contracts[bid.ContractID]; ok {
			c = c.Clone()
			if prev, hidden := b.hidden[c.ID]; hidden {
				c.PaymentStatus = prev
			}
			row.Contract = &c
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeAPI) UpdateBidStatus(_ context.Context, id string, status entities.BidStatus) (entities.Bid, error) {
	b := f.b
	b.mu.Lock()
	defer b.mu.Unlock()
	bid := b.bids[id]
	bid.Status = status
	b.bids[id] = bid
	return bid, nil
}

func (f *fakeAPI) GenerateContract(_ context.Context, in request.GenerateContractRequest) (entities.Contract, error) {
	b := f.b
	b.mu.Lock()
	defer b.mu.Unlock()
	bid, ok := b.bids[in.BidID]
	if !ok || bid.Status != entities.BidStatusAccepted || bid.HasContract() {
		return entities.Contract{}, &client.APIError{Status: http.StatusConflict, Code: "BID_NOT_ACCEPTED"}
	}
	input := in.ToInput()
	if !input.Payment.Amount.IsPositive() {
		input.Payment.Amount = bid.Amount
	}
	c := entities.Contract{
		ID:           b.nextID("c"),
		BidID:        bid.ID,
		ClientID:     bid.ClientID,
		FreelancerID: bid.FreelancerID,
		Status:       entities.ContractStatusDraft,
		Payment:      input.Payment,
		Version:      1,
	}
	b.contracts[c.ID] = c
	bid.ContractID = c.ID
	bid.Status = entities.BidStatusContractCreated
	b.bids[bid.ID] = bid
	return c, nil
}

func (f *fakeAPI) UpdateContract(_ context.Context, id string, in request.UpdateContractRequest) (entities.Contract, error) {
	upd, err := in.ToUpdate()
	if err != nil {
		return entities.Contract{}, err
	}
	b := f.b
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.contracts[id]
	action, ok := lifecycle.ActionFor(c.Status, *upd.Status, f.role)
	if !ok {
		return entities.Contract{}, &client.APIError{Status: http.StatusConflict, Code: "INVALID_TRANSITION"}
	}
	return f.applyLocked(c, action, upd.Message)
}

func (f *fakeAPI) SignContract(_ context.Context, id string) (entities.Contract, error) {
	return f.apply(id, lifecycle.ActionSign)
}

func (f *fakeAPI) FinalizeContract(_ context.Context, id string) (entities.Contract, error) {
	return f.apply(id, lifecycle.ActionFinalize)
}

func (f *fakeAPI) CompleteContract(_ context.Context, id string) (entities.Contract, error) {
	return f.apply(id, lifecycle.ActionComplete)
}

func (f *fakeAPI) apply(id string, action lifecycle.Action) (entities.Contract, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	return f.applyLocked(f.b.contracts[id], action, "")
}

func (f *fakeAPI) applyLocked(c entities.Contract, action lifecycle.Action, msg string) (entities.Contract, error) {
	next, err := lifecycle.Apply(c, action, lifecycle.Input{Actor: f.role, Effective: c.ConfirmedPaymentStatus(), Message: msg, Now: time.Now()})
	if err != nil {
		return entities.Contract{}, &client.APIError{Status: http.StatusConflict, Code: "INVALID_TRANSITION", Message: err.Error()}
	}
	next.Version++
	f.b.contracts[c.ID] = next
	return next, nil
}

func (f *fakeAPI) CreateOrder(_ context.Context, in request.CreateOrderRequest) (response.CreateOrderResponse, error) {
	b := f.b
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orderCalls++
	c := b.contracts[in.ContractID]
	t := entities.PaymentType(in.PaymentType)
	if err := billing.CanInitiate(t, c, c.ConfirmedPaymentStatus()); err != nil {
		return response.CreateOrderResponse{}, &client.APIError{Status: http.StatusConflict, Code: "PAYMENT_NOT_ALLOWED"}
	}
	rec := entities.PaymentRecord{
		ID:              b.nextID("pay"),
		ContractID:      c.ID,
		Amount:          in.Amount,
		Currency:        "BRL",
		PaymentType:     t,
		Status:          entities.PaymentRecordCreated,
		ProviderOrderID: b.nextID("pref"),
	}
	b.payments[rec.ID] = rec
	return response.FromOrderResult(orderResult(rec)), nil
}

func (f *fakeAPI) VerifyPayment(_ context.Context, in request.VerifyPaymentRequest) (response.VerifyPaymentResponse, error) {
	b := f.b
	b.mu.Lock()
	defer b.mu.Unlock()
	b.verifyCalls++
	if b.verifyErr != nil {
		return response.VerifyPaymentResponse{}, b.verifyErr
	}
	rec, ok := b.payments[in.PaymentID]
	if !ok || rec.ProviderOrderID != in.OrderID {
		return response.VerifyPaymentResponse{}, &client.APIError{Status: http.StatusPaymentRequired, Code: "PAYMENT_VERIFICATION_FAILED"}
	}
	rec.Status = entities.PaymentRecordCaptured
	rec.ProviderPaymentID = in.ProviderPaymentID
	b.payments[rec.ID] = rec

	c := b.contracts[rec.ContractID]
	if b.hideCapture > 0 {
		b.hidden[c.ID] = c.ConfirmedPaymentStatus()
	}
	c = billing.ApplyCaptured(c, rec.PaymentType, rec.Amount)
	c.Version++
	b.contracts[c.ID] = c
	return response.FromVerifyResult(verifyResult(rec, c)), nil
}

// checkout is a scripted payment widget.
type checkout struct {
	mu     sync.Mutex
	result CheckoutResult
	err    error
	opened []CheckoutRequest
}

func (c *checkout) Open(_ context.Context, req CheckoutRequest) (CheckoutResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = append(c.opened, req)
	return c.result, c.err
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []entities.PaymentSuccess
}

var _ interfaces.IPaymentEventPublisher = (*recordingPublisher)(nil)

func (p *recordingPublisher) PublishPaymentSuccess(ev entities.PaymentSuccess) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

var errDown = fmt.Errorf("%w: connection refused", client.ErrNetwork)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (b *backend) setPaymentStatus(id string, status entities.PaymentStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.contracts[id]
	c.PaymentStatus = status
	b.contracts[id] = c
}

func orderResult(rec entities.PaymentRecord) usecase.OrderResult {
	return usecase.OrderResult{
		Order:   interfaces.GatewayOrder{OrderID: rec.ProviderOrderID, Amount: rec.Amount, Currency: rec.Currency, PublicKey: "pk-test"},
		Payment: rec,
	}
}

func verifyResult(rec entities.PaymentRecord, c entities.Contract) usecase.VerifyResult {
	return usecase.VerifyResult{Payment: rec, Contract: c}
}
