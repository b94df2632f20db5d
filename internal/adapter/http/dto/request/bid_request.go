package request

import (
	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase"

	"github.com/shopspring/decimal"
)

type PlaceBidRequest struct {
	JobID    string          `json:"job_id" binding:"required"`
	ClientID string          `json:"client_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Message  string          `json:"message"`
	Timeline string          `json:"timeline"`
}

func (r PlaceBidRequest) ToInput() usecase.PlaceBidInput {
	return usecase.PlaceBidInput{
		JobID:    r.JobID,
		ClientID: r.ClientID,
		Amount:   r.Amount,
		Message:  r.Message,
		Timeline: r.Timeline,
	}
}

type UpdateBidStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r UpdateBidStatusRequest) ParseStatus() (entities.BidStatus, error) {
	return entities.ParseBidStatus(r.Status)
}
