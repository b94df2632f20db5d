package coordinator

import (
	"linksphere/internal/client"
	"linksphere/internal/domain/billing"
	"linksphere/internal/domain/binder"
	"linksphere/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// Row is one line of the bids view as the current role sees it.
type Row struct {
	Bid      entities.Bid
	Contract *entities.Contract

	// PaymentStatus is the effective status: projection first, then the
	// backend's confirmed status.
	PaymentStatus entities.PaymentStatus
	Confirmed     entities.PaymentStatus
	Pending       bool
	Stale         bool

	Actions          []binder.UIAction
	SuggestedAdvance *decimal.Decimal
	SuggestedFinal   *decimal.Decimal
}

func (c *Coordinator) Rows() []Row {
	c.mu.RLock()
	snapshot := append([]client.BidWithContract(nil), c.snapshot...)
	c.mu.RUnlock()

	rows := make([]Row, 0, len(snapshot))
	for _, s := range snapshot {
		rows = append(rows, c.row(s))
	}
	return rows
}

// Row returns the row for contractID.
func (c *Coordinator) Row(contractID string) (Row, bool) {
	s, ok := c.findContract(contractID)
	if !ok {
		return Row{}, false
	}
	return c.row(s), true
}

func (c *Coordinator) row(s client.BidWithContract) Row {
	r := Row{Bid: s.Bid, Confirmed: entities.PaymentStatusNotPaid}
	if s.Contract != nil {
		contract := s.Contract.Clone()
		r.Contract = &contract
		r.Confirmed = contract.ConfirmedPaymentStatus()
	}
	r.PaymentStatus = r.Confirmed
	if r.Contract != nil {
		if projected, ok := c.projection.Get(r.Contract.ID); ok {
			r.Pending = true
			r.Stale = c.projection.IsStale(r.Contract.ID)
			r.PaymentStatus = billing.Effective(projected, r.Confirmed)
		}
	}
	r.Actions = binder.Actions(c.role, r.Bid, r.Contract, r.PaymentStatus)

	if r.Contract != nil {
		bid := r.Bid
		if total, ok := billing.TotalAmount(r.Contract, &bid); ok {
			if adv, ok := billing.SuggestedAdvance(total); ok {
				r.SuggestedAdvance = &adv
			}
		}
		if fin, ok := billing.SuggestedFinal(*r.Contract, &bid); ok {
			r.SuggestedFinal = &fin
		}
	}
	return r
}

// EffectiveStatus resolves the payment status of contractID the way every
// view must: projection first.
func (c *Coordinator) EffectiveStatus(contractID string) entities.PaymentStatus {
	confirmed := entities.PaymentStatusNotPaid
	if s, ok := c.findContract(contractID); ok {
		confirmed = s.Contract.ConfirmedPaymentStatus()
	}
	projected, _ := c.projection.Get(contractID)
	return billing.Effective(projected, confirmed)
}

func (c *Coordinator) findContract(contractID string) (client.BidWithContract, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.snapshot {
		if s.Contract != nil && s.Contract.ID == contractID {
			return s, true
		}
	}
	return client.BidWithContract{}, false
}

func (c *Coordinator) findBid(bidID string) (client.BidWithContract, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.snapshot {
		if s.Bid.ID == bidID {
			return s, true
		}
	}
	return client.BidWithContract{}, false
}

// replaceContract swaps in a contract returned by a mutating call.
func (c *Coordinator) replaceContract(contract entities.Contract) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for i, s := range c.snapshot {
		if s.Contract != nil && s.Contract.ID == contract.ID {
			v := contract
			c.snapshot[i].Contract = &v
			return
		}
	}
}
