package client

import (
	"context"
	"net/http"

	request "linksphere/internal/adapter/http/dto/request"
	response "linksphere/internal/adapter/http/dto/response"
	"linksphere/internal/domain/entities"
)

func (c *Client) ListMyBids(ctx context.Context) ([]response.BidViewResponse, error) {
	var out []response.BidViewResponse
	err := c.do(ctx, http.MethodGet, "/api/bids/my-bids", nil, &out)
	return out, err
}

func (c *Client) ListFreelancersBids(ctx context.Context) ([]response.BidViewResponse, error) {
	var out []response.BidViewResponse
	err := c.do(ctx, http.MethodGet, "/api/bids/freelancers-bids", nil, &out)
	return out, err
}

// ListBids returns the bid list for role: received bids for a client, placed
// bids for a freelancer.
func (c *Client) ListBids(ctx context.Context, role entities.Role) ([]response.BidViewResponse, error) {
	if role == entities.RoleClient {
		return c.ListFreelancersBids(ctx)
	}
	return c.ListMyBids(ctx)
}

func (c *Client) UpdateBidStatus(ctx context.Context, id string, status entities.BidStatus) (entities.Bid, error) {
	var out response.BidResponse
	if err := c.do(ctx, http.MethodPatch, "/api/bids/"+escape(id), request.UpdateBidStatusRequest{Status: string(status)}, &out); err != nil {
		return entities.Bid{}, err
	}
	return out.ToEntity(), nil
}

func (c *Client) GenerateContract(ctx context.Context, in request.GenerateContractRequest) (entities.Contract, error) {
	return c.contractCall(ctx, http.MethodPost, "/api/contracts", in)
}

func (c *Client) GetContract(ctx context.Context, id string) (entities.Contract, error) {
	return c.contractCall(ctx, http.MethodGet, "/api/contracts/"+escape(id), nil)
}

func (c *Client) UpdateContract(ctx context.Context, id string, in request.UpdateContractRequest) (entities.Contract, error) {
	return c.contractCall(ctx, http.MethodPatch, "/api/contracts/"+escape(id), in)
}

func (c *Client) SignContract(ctx context.Context, id string) (entities.Contract, error) {
	return c.contractCall(ctx, http.MethodPost, "/api/contracts/"+escape(id)+"/sign", nil)
}

func (c *Client) FinalizeContract(ctx context.Context, id string) (entities.Contract, error) {
	return c.contractCall(ctx, http.MethodPost, "/api/contracts/"+escape(id)+"/finalize", nil)
}

func (c *Client) CompleteContract(ctx context.Context, id string) (entities.Contract, error) {
	return c.contractCall(ctx, http.MethodPost, "/api/contracts/"+escape(id)+"/complete", nil)
}

func (c *Client) contractCall(ctx context.Context, method, path string, in any) (entities.Contract, error) {
	var out response.ContractResponse
	if err := c.do(ctx, method, path, in, &out); err != nil {
		return entities.Contract{}, err
	}
	return out.ToEntity(), nil
}

func (c *Client) CreateOrder(ctx context.Context, in request.CreateOrderRequest) (response.CreateOrderResponse, error) {
	var out response.CreateOrderResponse
	err := c.do(ctx, http.MethodPost, "/api/payments/create-order", in, &out)
	return out, err
}

func (c *Client) VerifyPayment(ctx context.Context, in request.VerifyPaymentRequest) (response.VerifyPaymentResponse, error) {
	var out response.VerifyPaymentResponse
	err := c.do(ctx, http.MethodPost, "/api/payments/verify-payment", in, &out)
	return out, err
}

func (c *Client) ListContractPayments(ctx context.Context, contractID string) ([]entities.PaymentRecord, error) {
	var out []response.PaymentRecordResponse
	if err := c.do(ctx, http.MethodGet, "/api/payments/contract/"+escape(contractID), nil, &out); err != nil {
		return nil, err
	}
	records := make([]entities.PaymentRecord, 0, len(out))
	for _, r := range out {
		records = append(records, r.ToEntity())
	}
	return records, nil
}
