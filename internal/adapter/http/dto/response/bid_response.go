package response

import (
	"time"

	"linksphere/internal/domain/billing"
	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase"

	"github.com/shopspring/decimal"
)

type BidResponse struct {
	ID           string          `json:"id"`
	JobID        string          `json:"job_id"`
	ClientID     string          `json:"client_id"`
	FreelancerID string          `json:"freelancer_id"`
	Amount       decimal.Decimal `json:"amount"`
	Message      string          `json:"message,omitempty"`
	Timeline     string          `json:"timeline,omitempty"`
	Status       string          `json:"status"`
	ContractID   string          `json:"contract_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func FromBid(b entities.Bid) BidResponse {
	return BidResponse{
		ID:           b.ID,
		JobID:        b.JobID,
		ClientID:     b.ClientID,
		FreelancerID: b.FreelancerID,
		Amount:       b.Amount,
		Message:      b.Message,
		Timeline:     b.Timeline,
		Status:       string(b.Status),
		ContractID:   b.ContractID,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func (r BidResponse) ToEntity() entities.Bid {
	return entities.Bid{
		ID:           r.ID,
		JobID:        r.JobID,
		ClientID:     r.ClientID,
		FreelancerID: r.FreelancerID,
		Amount:       r.Amount,
		Message:      r.Message,
		Timeline:     r.Timeline,
		Status:       entities.BidStatus(r.Status),
		ContractID:   r.ContractID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// BidViewResponse is one row of the bids list: the bid, its contract and what
// the caller may do next.
type BidViewResponse struct {
	BidResponse
	Contract         *ContractResponse `json:"contract,omitempty"`
	PaymentStatus    string            `json:"payment_status"`
	Actions          []string          `json:"actions"`
	SuggestedAdvance *decimal.Decimal  `json:"suggested_advance,omitempty"`
	SuggestedFinal   *decimal.Decimal  `json:"suggested_final,omitempty"`
}

func FromBidView(v usecase.BidView) BidViewResponse {
	out := BidViewResponse{
		BidResponse:   FromBid(v.Bid),
		PaymentStatus: string(v.PaymentStatus),
		Actions:       make([]string, 0, len(v.Actions)),
	}
	for _, a := range v.Actions {
		out.Actions = append(out.Actions, string(a))
	}
	if v.Contract != nil {
		c := FromContract(*v.Contract)
		out.Contract = &c
		bid := v.Bid
		if total, ok := billing.TotalAmount(v.Contract, &bid); ok {
			if adv, ok := billing.SuggestedAdvance(total); ok {
				out.SuggestedAdvance = &adv
			}
		}
		if fin, ok := billing.SuggestedFinal(*v.Contract, &bid); ok {
			out.SuggestedFinal = &fin
		}
	}
	return out
}

func FromBidViews(views []usecase.BidView) []BidViewResponse {
	out := make([]BidViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, FromBidView(v))
	}
	return out
}
