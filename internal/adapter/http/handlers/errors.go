package handlers

import (
	"errors"
	"net/http"

	"linksphere/internal/adapter/http/middleware"
	"linksphere/internal/domain/billing"
	"linksphere/internal/domain/lifecycle"
	"linksphere/internal/usecase"
	"linksphere/internal/usecase/interfaces"
	"linksphere/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidPayload = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	errUnauthorized   = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
)

func writeError(c *gin.Context, appErr *pkg.AppError) {
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

// caller aborts with 401 when no authenticated caller is attached to the request.
func caller(c *gin.Context) (usecase.Caller, bool) {
	cl, ok := middleware.CallerFrom(c)
	if !ok {
		writeError(c, errUnauthorized)
		return usecase.Caller{}, false
	}
	return cl, true
}

func mapError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		return pkg.NewDomainErrorSimple("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	case errors.Is(err, usecase.ErrForbidden):
		return pkg.NewDomainErrorSimple("FORBIDDEN", "Not allowed to act on this resource", http.StatusForbidden)

	case errors.Is(err, usecase.ErrContractNotFound):
		return pkg.NewDomainErrorSimple("CONTRACT_NOT_FOUND", "Contract not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrBidNotFound):
		return pkg.NewDomainErrorSimple("BID_NOT_FOUND", "Bid not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)

	case errors.Is(err, usecase.ErrInvalidContractID), errors.Is(err, usecase.ErrInvalidContractInput),
		errors.Is(err, usecase.ErrInvalidBidID), errors.Is(err, usecase.ErrInvalidBidInput),
		errors.Is(err, usecase.ErrInvalidPaymentID), errors.Is(err, usecase.ErrInvalidPaymentType):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", err.Error(), http.StatusBadRequest)
	case errors.Is(err, lifecycle.ErrMissingMessage):
		return pkg.NewDomainErrorSimple("MESSAGE_REQUIRED", "A change request needs a message", http.StatusBadRequest)

	case errors.Is(err, lifecycle.ErrAlreadyCompleted):
		return pkg.NewDomainErrorSimple("ALREADY_COMPLETED", "Contract already completed", http.StatusConflict)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return pkg.NewDomainErrorSimple("INVALID_TRANSITION", err.Error(), http.StatusConflict)
	case errors.Is(err, lifecycle.ErrInvariant):
		return pkg.NewDomainError("CONTRACT_INVARIANT", "Contract would violate its invariants", err, http.StatusConflict)
	case errors.Is(err, usecase.ErrContractNotEditable):
		return pkg.NewDomainErrorSimple("CONTRACT_NOT_EDITABLE", "Contract cannot be edited in its current status", http.StatusConflict)
	case errors.Is(err, usecase.ErrBidNotAccepted):
		return pkg.NewDomainErrorSimple("BID_NOT_ACCEPTED", "Bid must be accepted first", http.StatusConflict)
	case errors.Is(err, usecase.ErrBidAlreadyBound):
		return pkg.NewDomainErrorSimple("BID_ALREADY_BOUND", "Bid already has a contract", http.StatusConflict)
	case errors.Is(err, usecase.ErrBidStatusTransition):
		return pkg.NewDomainErrorSimple("INVALID_TRANSITION", "Bid status cannot change", http.StatusConflict)
	case errors.Is(err, interfaces.ErrVersionConflict):
		return pkg.NewDomainErrorSimple("VERSION_CONFLICT", "Contract was modified concurrently; reload and retry", http.StatusConflict)

	case errors.Is(err, billing.ErrAmountInvalid):
		return pkg.NewDomainErrorSimple("AMOUNT_INVALID", "Amount must be a positive number", http.StatusUnprocessableEntity)
	case errors.Is(err, billing.ErrAmountBelowMinimum):
		return pkg.NewDomainErrorSimple("AMOUNT_BELOW_MINIMUM", "Advance is below the minimum", http.StatusUnprocessableEntity)
	case errors.Is(err, billing.ErrAmountAboveMaximum):
		return pkg.NewDomainErrorSimple("AMOUNT_ABOVE_MAXIMUM", "Amount exceeds the contract total", http.StatusUnprocessableEntity)
	case errors.Is(err, billing.ErrAlreadyFullyPaid):
		return pkg.NewDomainErrorSimple("ALREADY_FULLY_PAID", "Contract is already fully paid", http.StatusConflict)
	case errors.Is(err, billing.ErrPaymentNotAllowed):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_ALLOWED", "Payment not allowed in the current contract state", http.StatusConflict)

	case errors.Is(err, usecase.ErrPaymentAlreadyProcessed):
		return pkg.NewDomainErrorSimple("PAYMENT_ALREADY_PROCESSED", "Payment already processed", http.StatusConflict)
	case errors.Is(err, usecase.ErrPaymentVerificationFailed):
		return pkg.NewDomainErrorSimple("PAYMENT_VERIFICATION_FAILED", "Payment verification failed", http.StatusPaymentRequired)
	case errors.Is(err, usecase.ErrPaymentGatewayUnavailable):
		return pkg.NewDomainErrorSimple("PAYMENT_GATEWAY_UNAVAILABLE", "Payment gateway unavailable", http.StatusServiceUnavailable)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
