package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BidStatus string

const (
	BidStatusPending         BidStatus = "pending"
	BidStatusAccepted        BidStatus = "accepted"
	BidStatusRejected        BidStatus = "rejected"
	BidStatusContractCreated BidStatus = "contract-created"
)

func (s BidStatus) Valid() bool {
	switch s {
	case BidStatusPending, BidStatusAccepted, BidStatusRejected, BidStatusContractCreated:
		return true
	}
	return false
}

func ParseBidStatus(s string) (BidStatus, error) {
	st := BidStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown bid status %q", s)
	}
	return st, nil
}

// Bid is a freelancer's proposal against a job.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (client_id-index): client_id
//   - GSI2 (freelancer_id-index): freelancer_id
//
// ContractID is set once, when a contract is generated from the bid, and never reassigned.
type Bid struct {
	ID           string          `json:"id"`
	JobID        string          `json:"job_id"`
	ClientID     string          `json:"client_id"`
	FreelancerID string          `json:"freelancer_id"`
	Amount       decimal.Decimal `json:"amount"`
	Message      string          `json:"message,omitempty"`
	Timeline     string          `json:"timeline,omitempty"`
	Status       BidStatus       `json:"status"`
	ContractID   string          `json:"contract_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (b Bid) HasContract() bool {
	return strings.TrimSpace(b.ContractID) != ""
}
