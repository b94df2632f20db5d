package routes

import (
	"net/http"

	"linksphere/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathContracts = "/contracts"
	PathBids      = "/bids"
	PathPayments  = "/payments"
	PathEvents    = "/events"
)

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

func addContractRoutes(rg *gin.RouterGroup, h *handlers.ContractHandler) {
	contracts := rg.Group(PathContracts)
	{
		contracts.POST("", h.GenerateContract)
		contracts.GET("/:id", h.GetContract)
		contracts.PATCH("/:id", h.UpdateContract)
		contracts.POST("/:id/sign", h.SignContract)
		contracts.POST("/:id/finalize", h.FinalizeContract)
		contracts.POST("/:id/complete", h.CompleteContract)
	}
}

func addBidRoutes(rg *gin.RouterGroup, h *handlers.BidHandler) {
	bids := rg.Group(PathBids)
	{
		bids.GET("/my-bids", h.ListMyBids)
		bids.GET("/freelancers-bids", h.ListFreelancersBids)
		bids.POST("", h.PlaceBid)
		bids.PATCH("/:id", h.UpdateBidStatus)
	}
}

func addPaymentRoutes(rg *gin.RouterGroup, h *handlers.PaymentHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("/create-order", h.CreateOrder)
		payments.POST("/verify-payment", h.VerifyPayment)
		payments.GET("/contract/:id", h.ListContractPayments)
	}
}
