// Package coordinator keeps a role's bid and contract view consistent with the
// backend while payments settle. A verified payment is projected locally at
// once and reconciled against fresh fetches until the backend confirms it.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	request "linksphere/internal/adapter/http/dto/request"
	response "linksphere/internal/adapter/http/dto/response"
	"linksphere/internal/client"
	"linksphere/internal/domain/billing"
	"linksphere/internal/domain/entities"
	"linksphere/internal/infrastructure/events"
	"linksphere/internal/usecase/interfaces"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

var (
	ErrClosed              = errors.New("coordinator closed")
	ErrStaleReconciliation = errors.New("payment status may be out of date")
	ErrUnknownContract     = errors.New("contract not in the current view")
	ErrUnknownBid          = errors.New("bid not in the current view")

	errUnconfirmed = errors.New("projection not yet confirmed")
)

const (
	DefaultRetries = 3
	DefaultDelay   = time.Second
)

// deliveryWait bounds how long a publisher waits for Start to drain its subscription.
const deliveryWait = 5 * time.Second

// API is the subset of the backend the coordinator drives.
type API interface {
	ListBidsWithContracts(ctx context.Context, role entities.Role) ([]client.BidWithContract, error)
	UpdateBidStatus(ctx context.Context, id string, status entities.BidStatus) (entities.Bid, error)
	GenerateContract(ctx context.Context, in request.GenerateContractRequest) (entities.Contract, error)
	UpdateContract(ctx context.Context, id string, in request.UpdateContractRequest) (entities.Contract, error)
	SignContract(ctx context.Context, id string) (entities.Contract, error)
	FinalizeContract(ctx context.Context, id string) (entities.Contract, error)
	CompleteContract(ctx context.Context, id string) (entities.Contract, error)
	CreateOrder(ctx context.Context, in request.CreateOrderRequest) (response.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, in request.VerifyPaymentRequest) (response.VerifyPaymentResponse, error)
}

// EventSource delivers paymentSuccess events.
type EventSource interface {
	Subscribe(filter events.Filter, opts ...events.SubscribeOption) *events.Subscription
	Unsubscribe(s *events.Subscription)
}

type Options struct {
	Role       entities.Role
	Projection *Projection
	Checkout   Checkout
	// Publisher receives PaymentSuccess after a verified payment. When nil the
	// coordinator applies the event itself.
	Publisher interfaces.IPaymentEventPublisher
	Retries   int
	Delay     time.Duration
	Logger    zerolog.Logger
}

type Coordinator struct {
	api        API
	role       entities.Role
	projection *Projection
	checkout   Checkout
	publisher  interfaces.IPaymentEventPublisher
	retries    uint64
	delay      time.Duration
	logger     zerolog.Logger

	mu         sync.RWMutex
	snapshot   []client.BidWithContract
	closed     bool
	processing map[string]bool

	// reconcileMu serializes fetch-compare cycles.
	reconcileMu sync.Mutex
	trigger     chan struct{}
}

func New(api API, opts Options) *Coordinator {
	if opts.Projection == nil {
		opts.Projection = NewProjection()
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	} else if opts.Retries == 0 {
		opts.Retries = DefaultRetries
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	return &Coordinator{
		api:        api,
		role:       opts.Role,
		projection: opts.Projection,
		checkout:   opts.Checkout,
		publisher:  opts.Publisher,
		retries:    uint64(opts.Retries),
		delay:      opts.Delay,
		logger:     opts.Logger.With().Str("component", "coordinator").Str("role", string(opts.Role)).Logger(),
		processing: make(map[string]bool),
		trigger:    make(chan struct{}, 1),
	}
}

func (c *Coordinator) Projection() *Projection { return c.projection }

// Close stops the coordinator from accepting fetch results. In-flight
// responses that arrive afterwards are discarded.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Coordinator) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Refresh runs one fetch and compare cycle.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.reconcileMu.Lock()
	defer c.reconcileMu.Unlock()
	_, err := c.fetchAndCompare(ctx)
	return err
}

// Reconcile fetches until every projected entry is confirmed, retrying with a
// constant delay. Network failures use the same budget. Entries still
// unconfirmed when the budget runs out are kept, marked stale and reported
// through ErrStaleReconciliation.
func (c *Coordinator) Reconcile(ctx context.Context) error {
	c.reconcileMu.Lock()
	defer c.reconcileMu.Unlock()

	var lastErr error
	b := retry.WithMaxRetries(c.retries, retry.NewConstant(c.delay))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		remaining, err := c.fetchAndCompare(ctx)
		switch {
		case errors.Is(err, ErrClosed), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case errors.Is(err, client.ErrNetwork):
			lastErr = err
			c.logger.Warn().Err(err).Msg("refetch failed")
			return retry.RetryableError(err)
		case err != nil:
			return err
		case remaining > 0:
			lastErr = nil
			return retry.RetryableError(errUnconfirmed)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, errUnconfirmed) && !errors.Is(err, client.ErrNetwork) {
		return err
	}

	pending := c.projection.Pending()
	if len(pending) == 0 {
		return lastErr
	}
	for id := range pending {
		c.projection.MarkStale(id)
	}
	c.logger.Warn().Int("pending", len(pending)).Msg("reconciliation budget exhausted; keeping projection")
	if lastErr != nil {
		return fmt.Errorf("%w: %v", ErrStaleReconciliation, lastErr)
	}
	return ErrStaleReconciliation
}

func (c *Coordinator) fetchAndCompare(ctx context.Context) (int, error) {
	if c.isClosed() {
		return 0, ErrClosed
	}
	rows, err := c.api.ListBidsWithContracts(ctx, c.role)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	c.snapshot = rows
	c.mu.Unlock()

	pending := c.projection.Pending()
	for _, row := range rows {
		if row.Contract == nil {
			continue
		}
		if _, ok := pending[row.Contract.ID]; !ok {
			continue
		}
		if c.projection.confirm(row.Contract.ID, row.Contract.ConfirmedPaymentStatus()) {
			c.logger.Debug().Str("contract_id", row.Contract.ID).Msg("projection confirmed")
		}
	}
	return c.projection.Len(), nil
}

// HandlePaymentSuccess projects the status implied by ev. The caller is
// expected to reconcile afterwards.
func (c *Coordinator) HandlePaymentSuccess(ev entities.PaymentSuccess) {
	status := billing.ExpectedAfter(ev.PaymentType)
	c.projection.Set(ev.ContractID, status)
	c.logger.Info().Str("contract_id", ev.ContractID).Str("projected", string(status)).Msg("payment projected")
}

// Start subscribes to src and reconciles after every paymentSuccess event. It
// returns once ctx is done or the subscription closes.
func (c *Coordinator) Start(ctx context.Context, src EventSource) {
	sub := src.Subscribe(nil, events.Blocking(deliveryWait))
	defer src.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.trigger:
				if err := c.Reconcile(ctx); err != nil && !errors.Is(err, context.Canceled) {
					c.logger.Warn().Err(err).Msg("reconcile")
				}
			}
		}
	}()
	defer func() {
		cancel()
		<-done
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			c.HandlePaymentSuccess(ev)
			c.kick()
		}
	}
}

func (c *Coordinator) kick() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}
