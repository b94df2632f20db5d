package handlers

import (
	"net/http"

	request "linksphere/internal/adapter/http/dto/request"
	response "linksphere/internal/adapter/http/dto/response"
	"linksphere/internal/usecase"

	"github.com/gin-gonic/gin"
)

type BidHandler struct {
	usecase usecase.IBidUseCase
}

func NewBidHandler(uc usecase.IBidUseCase) *BidHandler {
	return &BidHandler{usecase: uc}
}

// ListMyBids godoc
// @Summary      Bids placed by the calling freelancer
// @Tags         bids
// @Produce      json
// @Success      200  {array}  response.BidViewResponse
// @Security     BearerAuth
// @Router       /api/bids/my-bids [get]
func (h *BidHandler) ListMyBids(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	views, err := h.usecase.ListForFreelancer(c.Request.Context(), cl)
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromBidViews(views))
}

// ListFreelancersBids godoc
// @Summary      Bids received by the calling client
// @Tags         bids
// @Produce      json
// @Success      200  {array}  response.BidViewResponse
// @Security     BearerAuth
// @Router       /api/bids/freelancers-bids [get]
func (h *BidHandler) ListFreelancersBids(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	views, err := h.usecase.ListForClient(c.Request.Context(), cl)
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromBidViews(views))
}

// PlaceBid godoc
// @Summary      Place a bid on a job
// @Tags         bids
// @Accept       json
// @Produce      json
// @Param        body  body      request.PlaceBidRequest  true  "Bid"
// @Success      201   {object}  response.BidResponse
// @Security     BearerAuth
// @Router       /api/bids [post]
func (h *BidHandler) PlaceBid(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var payload request.PlaceBidRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}
	bid, err := h.usecase.PlaceBid(c.Request.Context(), cl, payload.ToInput())
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromBid(bid))
}

// UpdateBidStatus godoc
// @Summary      Accept or reject a pending bid
// @Tags         bids
// @Accept       json
// @Produce      json
// @Param        id    path      string                          true  "Bid ID"
// @Param        body  body      request.UpdateBidStatusRequest  true  "Status"
// @Success      200   {object}  response.BidResponse
// @Security     BearerAuth
// @Router       /api/bids/{id} [patch]
func (h *BidHandler) UpdateBidStatus(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var payload request.UpdateBidStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}
	status, err := payload.ParseStatus()
	if err != nil {
		writeError(c, errInvalidPayload)
		return
	}
	bid, err := h.usecase.UpdateStatus(c.Request.Context(), cl, c.Param("id"), status)
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromBid(bid))
}
