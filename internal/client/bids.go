package client

import (
	"context"

	"linksphere/internal/domain/entities"

	"golang.org/x/sync/errgroup"
)

// BidWithContract pairs a bid with a freshly fetched copy of its contract.
// Contract is nil when the bid has none.
type BidWithContract struct {
	Bid      entities.Bid
	Contract *entities.Contract
}

// ListBidsWithContracts lists the bids for role and fetches the contract of
// every bound bid concurrently. Any failed fetch fails the whole call.
func (c *Client) ListBidsWithContracts(ctx context.Context, role entities.Role) ([]BidWithContract, error) {
	views, err := c.ListBids(ctx, role)
	if err != nil {
		return nil, err
	}

	out := make([]BidWithContract, len(views))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fetchLimit)
	for i, v := range views {
		out[i].Bid = v.ToEntity()
		if v.ContractID == "" {
			continue
		}
		g.Go(func() error {
			contract, err := c.GetContract(gctx, v.ContractID)
			if err != nil {
				return err
			}
			out[i].Contract = &contract
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
