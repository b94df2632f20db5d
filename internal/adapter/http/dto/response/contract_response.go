package response

import (
	"time"

	"linksphere/internal/domain/entities"

	"github.com/shopspring/decimal"
)

type ChangeRequestResponse struct {
	By        string    `json:"by"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type ContractResponse struct {
	ID               string `json:"id"`
	BidID            string `json:"bid_id"`
	JobID            string `json:"job_id"`
	ClientID         string `json:"client_id"`
	FreelancerID     string `json:"freelancer_id"`
	Status           string `json:"status"`
	ClientSigned     bool   `json:"client_signed"`
	FreelancerSigned bool   `json:"freelancer_signed"`

	PaymentStatus string                `json:"payment_status"`
	Payment       entities.PaymentTerms `json:"payment"`
	AdvanceAmount *decimal.Decimal      `json:"advance_amount,omitempty"`
	FinalAmount   *decimal.Decimal      `json:"final_amount,omitempty"`

	ClientInfo      entities.PartyInfo      `json:"client_info"`
	FreelancerInfo  entities.PartyInfo      `json:"freelancer_info"`
	ProjectDetails  entities.ProjectDetails `json:"project_details"`
	AdditionalTerms string                  `json:"additional_terms,omitempty"`
	ChangeRequests  []ChangeRequestResponse `json:"change_requests"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromContract(c entities.Contract) ContractResponse {
	crs := make([]ChangeRequestResponse, 0, len(c.ChangeRequests))
	for _, cr := range c.ChangeRequests {
		crs = append(crs, ChangeRequestResponse{By: string(cr.By), Message: cr.Message, Timestamp: cr.Timestamp})
	}
	return ContractResponse{
		ID:               c.ID,
		BidID:            c.BidID,
		JobID:            c.JobID,
		ClientID:         c.ClientID,
		FreelancerID:     c.FreelancerID,
		Status:           string(c.Status),
		ClientSigned:     c.ClientSigned,
		FreelancerSigned: c.FreelancerSigned,
		PaymentStatus:    string(c.ConfirmedPaymentStatus()),
		Payment:          c.Payment,
		AdvanceAmount:    c.AdvanceAmount,
		FinalAmount:      c.FinalAmount,
		ClientInfo:       c.ClientInfo,
		FreelancerInfo:   c.FreelancerInfo,
		ProjectDetails:   c.ProjectDetails,
		AdditionalTerms:  c.AdditionalTerms,
		ChangeRequests:   crs,
		Version:          c.Version,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// ToEntity rebuilds the domain contract from the wire shape.
func (r ContractResponse) ToEntity() entities.Contract {
	crs := make([]entities.ChangeRequest, 0, len(r.ChangeRequests))
	for _, cr := range r.ChangeRequests {
		crs = append(crs, entities.ChangeRequest{By: entities.Role(cr.By), Message: cr.Message, Timestamp: cr.Timestamp})
	}
	return entities.Contract{
		ID:               r.ID,
		BidID:            r.BidID,
		JobID:            r.JobID,
		ClientID:         r.ClientID,
		FreelancerID:     r.FreelancerID,
		Status:           entities.ContractStatus(r.Status),
		ClientSigned:     r.ClientSigned,
		FreelancerSigned: r.FreelancerSigned,
		PaymentStatus:    entities.PaymentStatus(r.PaymentStatus),
		Payment:          r.Payment,
		AdvanceAmount:    r.AdvanceAmount,
		FinalAmount:      r.FinalAmount,
		ClientInfo:       r.ClientInfo,
		FreelancerInfo:   r.FreelancerInfo,
		ProjectDetails:   r.ProjectDetails,
		AdditionalTerms:  r.AdditionalTerms,
		ChangeRequests:   crs,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
