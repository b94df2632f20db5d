package interfaces

import (
	"context"
	"linksphere/internal/domain/entities"
)

// IBidRepository abstracts DynamoDB persistence for Bid. Bids are bound to
// contracts by IContractRepository.Create.

type IBidRepository interface {
	Create(ctx context.Context, b entities.Bid) (entities.Bid, error)
	GetByID(ctx context.Context, id string) (entities.Bid, error)
	ListByClientID(ctx context.Context, clientID string) ([]entities.Bid, error)
	ListByFreelancerID(ctx context.Context, freelancerID string) ([]entities.Bid, error)
	UpdateStatus(ctx context.Context, id string, status entities.BidStatus) (entities.Bid, error)
}
