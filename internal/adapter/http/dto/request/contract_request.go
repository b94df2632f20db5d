package request

import (
	"time"

	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase"

	"github.com/shopspring/decimal"
)

type PartyInfoRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name"`
}

func (p PartyInfoRequest) toEntity() entities.PartyInfo {
	return entities.PartyInfo{FullName: p.FullName, Email: p.Email, CompanyName: p.CompanyName}
}

type ProjectDetailsRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Deliverables []string  `json:"deliverables"`
}

func (p ProjectDetailsRequest) toEntity() entities.ProjectDetails {
	return entities.ProjectDetails{
		Title:        p.Title,
		Description:  p.Description,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Deliverables: p.Deliverables,
	}
}

type PaymentTermsRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Method *string          `json:"method"`
	Terms  *string          `json:"terms"`
}

// GenerateContractRequest is the client's draft for POST /api/contracts.
// A missing payment amount falls back to the bid amount.
type GenerateContractRequest struct {
	BidID           string                `json:"bid_id" binding:"required"`
	ClientInfo      PartyInfoRequest      `json:"client_info"`
	FreelancerInfo  PartyInfoRequest      `json:"freelancer_info"`
	ProjectDetails  ProjectDetailsRequest `json:"project_details"`
	Payment         PaymentTermsRequest   `json:"payment"`
	AdditionalTerms string                `json:"additional_terms"`
}

func (r GenerateContractRequest) ToInput() usecase.GenerateContractInput {
	terms := entities.PaymentTerms{}
	if r.Payment.Amount != nil {
		terms.Amount = *r.Payment.Amount
	}
	if r.Payment.Method != nil {
		terms.Method = *r.Payment.Method
	}
	if r.Payment.Terms != nil {
		terms.Terms = *r.Payment.Terms
	}
	return usecase.GenerateContractInput{
		BidID:           r.BidID,
		ClientInfo:      r.ClientInfo.toEntity(),
		FreelancerInfo:  r.FreelancerInfo.toEntity(),
		ProjectDetails:  r.ProjectDetails.toEntity(),
		Payment:         terms,
		AdditionalTerms: r.AdditionalTerms,
	}
}

// UpdateContractRequest is a partial PATCH. Omitted fields are left untouched.
type UpdateContractRequest struct {
	Status          *string                `json:"status"`
	Message         string                 `json:"message"`
	ClientInfo      *PartyInfoRequest      `json:"client_info"`
	FreelancerInfo  *PartyInfoRequest      `json:"freelancer_info"`
	ProjectDetails  *ProjectDetailsRequest `json:"project_details"`
	Payment         *PaymentTermsRequest   `json:"payment"`
	AdditionalTerms *string                `json:"additional_terms"`
}

func (r UpdateContractRequest) ToUpdate() (usecase.ContractUpdate, error) {
	upd := usecase.ContractUpdate{
		Message:         r.Message,
		AdditionalTerms: r.AdditionalTerms,
	}
	if r.Status != nil {
		st, err := entities.ParseContractStatus(*r.Status)
		if err != nil {
			return usecase.ContractUpdate{}, err
		}
		upd.Status = &st
	}
	if r.ClientInfo != nil {
		v := r.ClientInfo.toEntity()
		upd.ClientInfo = &v
	}
	if r.FreelancerInfo != nil {
		v := r.FreelancerInfo.toEntity()
		upd.FreelancerInfo = &v
	}
	if r.ProjectDetails != nil {
		v := r.ProjectDetails.toEntity()
		upd.ProjectDetails = &v
	}
	if r.Payment != nil {
		upd.PaymentAmount = r.Payment.Amount
		upd.PaymentMethod = r.Payment.Method
		upd.PaymentTerms = r.Payment.Terms
	}
	return upd, nil
}
