package handlers

import (
	"net/http"

	request "linksphere/internal/adapter/http/dto/request"
	response "linksphere/internal/adapter/http/dto/response"
	"linksphere/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PaymentHandler handles order creation and verification for contract milestones.
type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
	logger  zerolog.Logger
}

func NewPaymentHandler(uc usecase.IPaymentUseCase, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{usecase: uc, logger: logger.With().Str("component", "payment_handler").Logger()}
}

// CreateOrder godoc
// @Summary      Create a gateway order for an advance or final payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      request.CreateOrderRequest  true  "Order"
// @Success      200   {object}  response.CreateOrderResponse
// @Failure      422   {object}  pkg.HTTPError
// @Failure      503   {object}  pkg.HTTPError
// @Security     BearerAuth
// @Router       /api/payments/create-order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var payload request.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Debug().Err(err).Msg("invalid create-order payload")
		writeError(c, errInvalidPayload)
		return
	}

	in := payload.ToInput()
	h.logger.Info().Str("contract_id", in.ContractID).Str("payment_type", string(in.PaymentType)).Str("amount", in.Amount.String()).Msg("create order start")
	res, err := h.usecase.CreateOrder(c.Request.Context(), cl, in)
	if err != nil {
		h.logger.Warn().Err(err).Str("contract_id", in.ContractID).Msg("create order failed")
		writeError(c, mapError(err))
		return
	}
	h.logger.Info().Str("contract_id", in.ContractID).Str("payment_id", res.Payment.ID).Str("order_id", res.Order.OrderID).Msg("create order success")

	c.JSON(http.StatusOK, response.FromOrderResult(res))
}

// VerifyPayment godoc
// @Summary      Verify a checkout result and record the payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      request.VerifyPaymentRequest  true  "Verification"
// @Success      200   {object}  response.VerifyPaymentResponse
// @Failure      402   {object}  pkg.HTTPError
// @Security     BearerAuth
// @Router       /api/payments/verify-payment [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var payload request.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	res, err := h.usecase.VerifyPayment(c.Request.Context(), cl, payload.ToInput())
	if err != nil {
		h.logger.Warn().Err(err).Str("payment_id", payload.PaymentID).Msg("verify payment failed")
		writeError(c, mapError(err))
		return
	}
	h.logger.Info().Str("payment_id", res.Payment.ID).Str("contract_id", res.Contract.ID).
		Str("payment_status", string(res.Contract.ConfirmedPaymentStatus())).Msg("verify payment success")

	c.JSON(http.StatusOK, response.FromVerifyResult(res))
}

// ListContractPayments godoc
// @Summary      Payment history of a contract
// @Tags         payments
// @Produce      json
// @Param        id   path     string  true  "Contract ID"
// @Success      200  {array}  response.PaymentRecordResponse
// @Security     BearerAuth
// @Router       /api/payments/contract/{id} [get]
func (h *PaymentHandler) ListContractPayments(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	records, err := h.usecase.ListByContractID(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromPaymentRecords(records))
}
