package coordinator

import (
	"sync"

	"linksphere/internal/domain/entities"
)

type projected struct {
	status entities.PaymentStatus
	stale  bool
}

// Projection holds payment statuses that were observed locally but not yet
// confirmed by the backend, keyed by contract id. It is safe for concurrent use.
type Projection struct {
	mu      sync.Mutex
	entries map[string]projected
}

func NewProjection() *Projection {
	return &Projection{entries: make(map[string]projected)}
}

// Set records status for contractID. An existing higher status is kept so the
// projection never moves backwards.
func (p *Projection) Set(contractID string, status entities.PaymentStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur, ok := p.entries[contractID]; ok && cur.status.Rank() > status.Rank() {
		return
	}
	p.entries[contractID] = projected{status: status}
}

func (p *Projection) Get(contractID string) (entities.PaymentStatus, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[contractID]
	return e.status, ok
}

func (p *Projection) Clear(contractID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, contractID)
}

// Pending returns a copy of the unconfirmed entries.
func (p *Projection) Pending() map[string]entities.PaymentStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]entities.PaymentStatus, len(p.entries))
	for id, e := range p.entries {
		out[id] = e.status
	}
	return out
}

func (p *Projection) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// MarkStale flags an entry whose reconciliation budget ran out. The entry stays
// in place until a later refresh confirms it.
func (p *Projection) MarkStale(contractID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[contractID]; ok {
		e.stale = true
		p.entries[contractID] = e
	}
}

func (p *Projection) IsStale(contractID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries[contractID].stale
}

// confirm clears contractID when confirmed has caught up with the projected
// status and reports whether it did.
func (p *Projection) confirm(contractID string, confirmed entities.PaymentStatus) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[contractID]
	if !ok {
		return false
	}
	if confirmed.Rank() >= e.status.Rank() {
		delete(p.entries, contractID)
		return true
	}
	return false
}
