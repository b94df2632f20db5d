package interfaces

import (
	"context"
	"errors"
	"linksphere/internal/domain/entities"
)

var (
	// ErrVersionConflict is returned by Update when the contract changed underneath the caller.
	ErrVersionConflict = errors.New("contract version conflict")
	// ErrBidAlreadyBound is returned by Create when the bid already has a contract.
	ErrBidAlreadyBound = errors.New("bid already has a contract")
)

// IContractRepository abstracts DynamoDB persistence for Contract.
//
// Create persists the contract and binds it to c.BidID atomically; nothing is
// written when the bid is already bound.
// Update must fail with ErrVersionConflict when the stored version differs from
// c.Version, and persist c with Version+1 otherwise.

type IContractRepository interface {
	Create(ctx context.Context, c entities.Contract) (entities.Contract, error)
	GetByID(ctx context.Context, id string) (entities.Contract, error)
	Update(ctx context.Context, c entities.Contract) (entities.Contract, error)
}
