package response

import (
	"testing"
	"time"

	"linksphere/internal/domain/binder"
	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase"
	"linksphere/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
)

func TestFromContract(t *testing.T) {
	now := time.Now().UTC()
	adv := decimal.NewFromInt(500)
	c := entities.Contract{
		ID: "c-1", Status: entities.ContractStatusActive, AdvanceAmount: &adv,
		ChangeRequests: []entities.ChangeRequest{{By: entities.RoleFreelancer, Message: "m", Timestamp: now}},
		UpdatedAt:      now,
	}

	res := FromContract(c)
	if res.PaymentStatus != "NOT_PAID" {
		t.Fatalf("expected NOT_PAID default, got %s", res.PaymentStatus)
	}
	if len(res.ChangeRequests) != 1 || res.ChangeRequests[0].By != "freelancer" {
		t.Fatalf("unexpected change requests: %+v", res.ChangeRequests)
	}
	back := res.ToEntity()
	if back.Status != entities.ContractStatusActive || !back.AdvanceAmount.Equal(adv) || !back.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected round trip: %+v", back)
	}
}

func TestFromBidView_SuggestedAmounts(t *testing.T) {
	c := entities.Contract{ID: "c-1", Status: entities.ContractStatusPendingSignatures, Payment: entities.PaymentTerms{Amount: decimal.NewFromInt(1001)}}
	v := usecase.BidView{
		Bid:           entities.Bid{ID: "bid-1", Status: entities.BidStatusContractCreated, ContractID: "c-1", Amount: decimal.NewFromInt(900)},
		Contract:      &c,
		PaymentStatus: entities.PaymentStatusNotPaid,
		Actions:       []binder.UIAction{binder.ActionView, binder.ActionPayAdvance},
	}

	res := FromBidView(v)
	if res.SuggestedAdvance == nil || !res.SuggestedAdvance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected floor(1001*0.5)=500, got %v", res.SuggestedAdvance)
	}
	if res.SuggestedFinal == nil || !res.SuggestedFinal.Equal(decimal.NewFromInt(501)) {
		t.Fatalf("expected 501 remaining, got %v", res.SuggestedFinal)
	}
	if len(res.Actions) != 2 || res.Actions[1] != "pay-advance" {
		t.Fatalf("unexpected actions: %v", res.Actions)
	}
}

func TestFromBidView_NoContract(t *testing.T) {
	res := FromBidView(usecase.BidView{Bid: entities.Bid{ID: "bid-1", Status: entities.BidStatusPending}, PaymentStatus: entities.PaymentStatusNotPaid})
	if res.Contract != nil || res.SuggestedAdvance != nil || res.Actions == nil {
		t.Fatalf("unexpected view: %+v", res)
	}
}

func TestFromOrderResult(t *testing.T) {
	res := FromOrderResult(usecase.OrderResult{
		Order:   interfaces.GatewayOrder{OrderID: "pref-1", Amount: decimal.NewFromInt(500), Currency: "BRL", PublicKey: "pk"},
		Payment: entities.PaymentRecord{ID: "pay-1", ProviderPayloadRaw: []byte(`{"id":"pref-1"}`)},
	})
	if !res.Success || res.Order.ID != "pref-1" || res.Key != "pk" || res.Payment.ID != "pay-1" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if res.Payment.ProviderPayload["id"] != "pref-1" {
		t.Fatalf("expected decoded provider payload: %+v", res.Payment.ProviderPayload)
	}
}
