package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus is the lifecycle state of a contract.
//
// Transitions are owned by the lifecycle package; nothing else should compare
// statuses to decide what is allowed.
type ContractStatus string

const (
	ContractStatusDraft             ContractStatus = "draft"
	ContractStatusSentToFreelancer  ContractStatus = "sent-to-freelancer"
	ContractStatusRevisionRequested ContractStatus = "revision-requested"
	ContractStatusPendingSignatures ContractStatus = "pending-signatures"
	ContractStatusActive            ContractStatus = "active"
	ContractStatusCompleted         ContractStatus = "completed"
	ContractStatusRejected          ContractStatus = "rejected"
)

var contractStatuses = []ContractStatus{
	ContractStatusDraft,
	ContractStatusSentToFreelancer,
	ContractStatusRevisionRequested,
	ContractStatusPendingSignatures,
	ContractStatusActive,
	ContractStatusCompleted,
	ContractStatusRejected,
}

func (s ContractStatus) Valid() bool {
	for _, v := range contractStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusCompleted || s == ContractStatusRejected
}

func ParseContractStatus(s string) (ContractStatus, error) {
	st := ContractStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown contract status %q", s)
	}
	return st, nil
}

// PaymentStatus is the payment milestone reached by a contract.
type PaymentStatus string

const (
	PaymentStatusNotPaid     PaymentStatus = "NOT_PAID"
	PaymentStatusAdvancePaid PaymentStatus = "ADVANCE_PAID"
	PaymentStatusFullyPaid   PaymentStatus = "FULLY_PAID"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusNotPaid, PaymentStatusAdvancePaid, PaymentStatusFullyPaid:
		return true
	}
	return false
}

// Rank orders payment milestones so callers can tell progress from regression.
func (s PaymentStatus) Rank() int {
	switch s {
	case PaymentStatusAdvancePaid:
		return 1
	case PaymentStatusFullyPaid:
		return 2
	}
	return 0
}

// PaymentTerms is the agreed total and the per-milestone flags.
type PaymentTerms struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method,omitempty"`
	Terms       string          `json:"terms,omitempty"`
	AdvancePaid bool            `json:"advance_paid"`
	FullyPaid   bool            `json:"fully_paid"`
}

type PartyInfo struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name,omitempty"`
}

type ProjectDetails struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Deliverables []string  `json:"deliverables,omitempty"`
}

// ChangeRequest is one entry of the revision history. Entries are only ever appended.
type ChangeRequest struct {
	By        Role      `json:"by"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Contract is the agreement derived from an accepted bid.
//
// Storage model (DynamoDB):
//   - PK: id
//   - Version guards concurrent writes (conditional update).
//
// Monetary representation:
//   - AdvanceAmount/FinalAmount are nil until the matching payment is captured.
type Contract struct {
	ID           string `json:"id"`
	BidID        string `json:"bid_id"`
	JobID        string `json:"job_id"`
	ClientID     string `json:"client_id"`
	FreelancerID string `json:"freelancer_id"`

	Status           ContractStatus `json:"status"`
	ClientSigned     bool           `json:"client_signed"`
	FreelancerSigned bool           `json:"freelancer_signed"`

	PaymentStatus PaymentStatus    `json:"payment_status"`
	Payment       PaymentTerms     `json:"payment"`
	AdvanceAmount *decimal.Decimal `json:"advance_amount,omitempty"`
	FinalAmount   *decimal.Decimal `json:"final_amount,omitempty"`

	ClientInfo      PartyInfo       `json:"client_info"`
	FreelancerInfo  PartyInfo       `json:"freelancer_info"`
	ProjectDetails  ProjectDetails  `json:"project_details"`
	AdditionalTerms string          `json:"additional_terms,omitempty"`
	ChangeRequests  []ChangeRequest `json:"change_requests"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PartyRole reports which role userID holds on the contract.
func (c Contract) PartyRole(userID string) (Role, bool) {
	switch userID {
	case "":
		return "", false
	case c.ClientID:
		return RoleClient, true
	case c.FreelancerID:
		return RoleFreelancer, true
	}
	return "", false
}

// ConfirmedPaymentStatus is the server-side payment status, defaulting to NOT_PAID.
func (c Contract) ConfirmedPaymentStatus() PaymentStatus {
	if c.PaymentStatus == "" {
		return PaymentStatusNotPaid
	}
	return c.PaymentStatus
}

// Clone returns a copy that shares no slices or pointers with c.
func (c Contract) Clone() Contract {
	out := c
	if c.ChangeRequests != nil {
		out.ChangeRequests = append([]ChangeRequest(nil), c.ChangeRequests...)
	}
	if c.ProjectDetails.Deliverables != nil {
		out.ProjectDetails.Deliverables = append([]string(nil), c.ProjectDetails.Deliverables...)
	}
	if c.AdvanceAmount != nil {
		v := *c.AdvanceAmount
		out.AdvanceAmount = &v
	}
	if c.FinalAmount != nil {
		v := *c.FinalAmount
		out.FinalAmount = &v
	}
	return out
}
