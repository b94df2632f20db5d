package handlers

import (
	"context"
	"net/http"

	request "linksphere/internal/adapter/http/dto/request"
	response "linksphere/internal/adapter/http/dto/response"
	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase"

	"github.com/gin-gonic/gin"
)

// ContractHandler exposes the contract lifecycle over HTTP.
type ContractHandler struct {
	usecase usecase.IContractUseCase
}

func NewContractHandler(uc usecase.IContractUseCase) *ContractHandler {
	return &ContractHandler{usecase: uc}
}

// GenerateContract godoc
// @Summary      Generate a contract from an accepted bid
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        body  body      request.GenerateContractRequest  true  "Contract"
// @Success      201   {object}  response.ContractResponse
// @Failure      400   {object}  pkg.HTTPError
// @Failure      409   {object}  pkg.HTTPError
// @Security     BearerAuth
// @Router       /api/contracts [post]
func (h *ContractHandler) GenerateContract(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var payload request.GenerateContractRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	contract, err := h.usecase.GenerateContract(c.Request.Context(), cl, payload.ToInput())
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusCreated, response.FromContract(contract))
}

// GetContract godoc
// @Summary      Get a contract
// @Tags         contracts
// @Produce      json
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.ContractResponse
// @Failure      404  {object}  pkg.HTTPError
// @Security     BearerAuth
// @Router       /api/contracts/{id} [get]
func (h *ContractHandler) GetContract(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	contract, err := h.usecase.GetByID(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromContract(contract))
}

// UpdateContract godoc
// @Summary      Edit terms or move a contract to another status
// @Description  Status changes go through the contract state machine; a request-change needs a message.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id    path      string                          true  "Contract ID"
// @Param        body  body      request.UpdateContractRequest   true  "Patch"
// @Success      200   {object}  response.ContractResponse
// @Failure      409   {object}  pkg.HTTPError
// @Security     BearerAuth
// @Router       /api/contracts/{id} [patch]
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var payload request.UpdateContractRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidPayload)
		return
	}
	upd, err := payload.ToUpdate()
	if err != nil {
		writeError(c, errInvalidPayload)
		return
	}

	contract, err := h.usecase.Update(c.Request.Context(), cl, c.Param("id"), upd)
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromContract(contract))
}

// SignContract godoc
// @Summary      Sign a contract as the caller's role
// @Tags         contracts
// @Produce      json
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.ContractResponse
// @Security     BearerAuth
// @Router       /api/contracts/{id}/sign [post]
func (h *ContractHandler) SignContract(c *gin.Context) {
	h.transition(c, h.usecase.Sign)
}

// FinalizeContract godoc
// @Summary      Finalize a signed, advance-paid contract
// @Tags         contracts
// @Produce      json
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.ContractResponse
// @Security     BearerAuth
// @Router       /api/contracts/{id}/finalize [post]
func (h *ContractHandler) FinalizeContract(c *gin.Context) {
	h.transition(c, h.usecase.Finalize)
}

// CompleteContract godoc
// @Summary      Mark an active contract as completed
// @Tags         contracts
// @Produce      json
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.ContractResponse
// @Security     BearerAuth
// @Router       /api/contracts/{id}/complete [post]
func (h *ContractHandler) CompleteContract(c *gin.Context) {
	h.transition(c, h.usecase.Complete)
}

func (h *ContractHandler) transition(
	c *gin.Context,
	apply func(ctx context.Context, caller usecase.Caller, id string) (entities.Contract, error),
) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	contract, err := apply(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		writeError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromContract(contract))
}
