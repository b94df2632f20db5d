package handlers

import (
	"net/http"
	"time"

	response "linksphere/internal/adapter/http/dto/response"
	"linksphere/internal/domain/entities"
	"linksphere/internal/infrastructure/events"
	"linksphere/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const eventPaymentSuccess = "paymentSuccess"

// EventSource is the subscribe side of the payment event bus.
type EventSource interface {
	Subscribe(filter events.Filter, opts ...events.SubscribeOption) *events.Subscription
	Unsubscribe(s *events.Subscription)
}

// EventsHandler streams paymentSuccess events for the caller's contracts as
// server-sent events.
type EventsHandler struct {
	source    EventSource
	contracts usecase.IContractUseCase
	heartbeat time.Duration
	logger    zerolog.Logger
}

func NewEventsHandler(source EventSource, contracts usecase.IContractUseCase, heartbeat time.Duration, logger zerolog.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &EventsHandler{
		source:    source,
		contracts: contracts,
		heartbeat: heartbeat,
		logger:    logger.With().Str("component", "events_handler").Logger(),
	}
}

// Stream godoc
// @Summary      Stream paymentSuccess events
// @Description  Optional contract_id query parameters narrow the stream. Events for contracts the caller is not a party to are never sent.
// @Tags         events
// @Produce      text/event-stream
// @Param        contract_id  query  []string  false  "Contract IDs"  collectionFormat(multi)
// @Security     BearerAuth
// @Router       /v1/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}

	var filter events.Filter
	if ids := c.QueryArray("contract_id"); len(ids) > 0 {
		wanted := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			wanted[id] = struct{}{}
		}
		filter = func(ev entities.PaymentSuccess) bool {
			_, ok := wanted[ev.ContractID]
			return ok
		}
	}

	sub := h.source.Subscribe(filter)
	defer h.source.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	allowed := make(map[string]bool)
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			c.Writer.Flush()
		case ev, open := <-sub.C:
			if !open {
				return
			}
			party, seen := allowed[ev.ContractID]
			if !seen {
				_, err := h.contracts.GetByID(ctx, cl, ev.ContractID)
				party = err == nil
				allowed[ev.ContractID] = party
			}
			if !party {
				continue
			}
			h.logger.Debug().Str("contract_id", ev.ContractID).Str("user_id", cl.UserID).Msg("forwarding payment event")
			c.SSEvent(eventPaymentSuccess, response.FromPaymentSuccess(ev))
			c.Writer.Flush()
		}
	}
}
