// Package binder maps a (role, bid, contract, payment) tuple to the UI actions
// that are legal for it. It performs no I/O.
package binder

import (
	"linksphere/internal/domain/entities"
)

type UIAction string

const (
	ActionAcceptBid          UIAction = "accept-bid"
	ActionRejectBid          UIAction = "reject-bid"
	ActionGenerateContract   UIAction = "generate-contract"
	ActionEdit               UIAction = "edit"
	ActionSend               UIAction = "send"
	ActionView               UIAction = "view"
	ActionAwaitFreelancer    UIAction = "await-freelancer"
	ActionAwaitClient        UIAction = "await-client"
	ActionEditAndResend      UIAction = "edit-and-resend"
	ActionReject             UIAction = "reject"
	ActionPayAdvance         UIAction = "pay-advance"
	ActionFinalize           UIAction = "finalize"
	ActionPayFinal           UIAction = "pay-final"
	ActionViewPaymentHistory UIAction = "view-payment-history"
	ActionMarkComplete       UIAction = "mark-complete"
	ActionSignContract       UIAction = "sign-contract"
	ActionRequestChange      UIAction = "request-change"
	ActionDecline            UIAction = "decline"
	ActionViewPaymentStatus  UIAction = "view-payment-status"
)

// Actions returns the legal actions for role. contract is nil when the bid has
// no contract yet; effective is the merged (confirmed + projected) payment status.
func Actions(role entities.Role, bid entities.Bid, contract *entities.Contract, effective entities.PaymentStatus) []UIAction {
	if effective == "" {
		effective = entities.PaymentStatusNotPaid
	}
	switch role {
	case entities.RoleClient:
		return clientActions(bid, contract, effective)
	case entities.RoleFreelancer:
		return freelancerActions(bid, contract, effective)
	}
	return nil
}

func bidAdvanced(b entities.Bid) bool {
	return b.Status == entities.BidStatusAccepted || b.Status == entities.BidStatusContractCreated
}

func clientActions(bid entities.Bid, c *entities.Contract, pay entities.PaymentStatus) []UIAction {
	if c == nil {
		switch {
		case bid.Status == entities.BidStatusPending:
			return []UIAction{ActionAcceptBid, ActionRejectBid}
		case bid.Status == entities.BidStatusAccepted && !bid.HasContract():
			return []UIAction{ActionGenerateContract}
		}
		return nil
	}
	if !bidAdvanced(bid) {
		return nil
	}

	switch c.Status {
	case entities.ContractStatusDraft:
		return []UIAction{ActionEdit, ActionSend}
	case entities.ContractStatusSentToFreelancer:
		return []UIAction{ActionView, ActionAwaitFreelancer}
	case entities.ContractStatusRevisionRequested:
		return []UIAction{ActionView, ActionEditAndResend, ActionReject}
	case entities.ContractStatusPendingSignatures:
		out := []UIAction{ActionView}
		if !c.FreelancerSigned {
			return append(out, ActionAwaitFreelancer)
		}
		switch pay {
		case entities.PaymentStatusNotPaid:
			out = append(out, ActionPayAdvance)
		case entities.PaymentStatusAdvancePaid:
			out = append(out, ActionFinalize, ActionViewPaymentHistory)
		}
		return out
	case entities.ContractStatusActive:
		out := []UIAction{ActionView}
		switch pay {
		case entities.PaymentStatusAdvancePaid:
			out = append(out, ActionPayFinal, ActionViewPaymentHistory)
		case entities.PaymentStatusFullyPaid:
			out = append(out, ActionViewPaymentHistory)
		}
		return append(out, ActionMarkComplete)
	case entities.ContractStatusCompleted:
		out := []UIAction{ActionView}
		if pay != entities.PaymentStatusNotPaid {
			out = append(out, ActionViewPaymentHistory)
		}
		return out
	case entities.ContractStatusRejected:
		return []UIAction{ActionView}
	}
	return nil
}

func freelancerActions(bid entities.Bid, c *entities.Contract, pay entities.PaymentStatus) []UIAction {
	if c == nil || !bidAdvanced(bid) {
		return nil
	}

	switch c.Status {
	case entities.ContractStatusDraft:
		return nil
	case entities.ContractStatusSentToFreelancer:
		return []UIAction{ActionView, ActionSignContract, ActionRequestChange, ActionDecline}
	case entities.ContractStatusRevisionRequested:
		return []UIAction{ActionView, ActionAwaitClient}
	case entities.ContractStatusPendingSignatures:
		out := []UIAction{ActionView}
		if !c.FreelancerSigned {
			out = append(out, ActionSignContract)
		} else {
			out = append(out, ActionAwaitClient)
		}
		return append(out, ActionViewPaymentStatus)
	case entities.ContractStatusActive, entities.ContractStatusCompleted:
		out := []UIAction{ActionView, ActionViewPaymentStatus}
		if pay != entities.PaymentStatusNotPaid {
			out = append(out, ActionViewPaymentHistory)
		}
		return out
	case entities.ContractStatusRejected:
		return []UIAction{ActionView}
	}
	return nil
}

// Has reports whether a is in actions.
func Has(actions []UIAction, a UIAction) bool {
	for _, v := range actions {
		if v == a {
			return true
		}
	}
	return false
}
