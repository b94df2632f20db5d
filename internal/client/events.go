package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	response "linksphere/internal/adapter/http/dto/response"
	"linksphere/internal/domain/entities"

	"github.com/r3labs/sse/v2"
	"gopkg.in/cenkalti/backoff.v1"
)

const paymentSuccessEvent = "paymentSuccess"

// StreamPaymentEvents follows the server's paymentSuccess stream and calls fn
// for each event until ctx is cancelled or the server closes the stream. The
// stream is not reopened; callers decide whether to reconnect.
func (c *Client) StreamPaymentEvents(ctx context.Context, contractIDs []string, fn func(entities.PaymentSuccess)) error {
	path := "/v1/events"
	if len(contractIDs) > 0 {
		q := url.Values{}
		for _, id := range contractIDs {
			q.Add("contract_id", id)
		}
		path += "?" + q.Encode()
	}

	header, err := c.bearer(ctx)
	if err != nil {
		return err
	}

	// Streams outlive the per-request timeout.
	conn := *c.http
	conn.Timeout = 0

	stream := sse.NewClient(c.baseURL + path)
	stream.Connection = &conn
	stream.Headers["Authorization"] = header
	stream.ReconnectStrategy = &backoff.StopBackOff{}
	stream.ResponseValidator = func(_ *sse.Client, resp *http.Response) error {
		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			return decodeAPIError(resp)
		}
		return nil
	}

	err = stream.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
		if string(msg.Event) != paymentSuccessEvent || len(msg.Data) == 0 {
			return
		}
		var ev response.PaymentEventResponse
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		fn(entities.PaymentSuccess{
			ContractID:  ev.ContractID,
			PaymentType: entities.PaymentType(ev.PaymentType),
			Amount:      ev.Amount,
			PaymentID:   ev.PaymentID,
		})
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("%w: GET %s: %v", ErrNetwork, path, err)
	}
	return nil
}
