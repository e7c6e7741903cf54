package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domainLoan "palmcash-backend/internal/domain/loan"
	domainPayment "palmcash-backend/internal/domain/payment"
)

// statusOf maps domain errors to HTTP status codes. Unknown errors are
// treated as internal.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domainLoan.ErrNotFound),
		errors.Is(err, domainPayment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainLoan.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, domainLoan.ErrRoleDenied):
		return http.StatusForbidden
	case errors.Is(err, domainLoan.ErrInvalidTerms),
		errors.Is(err, domainPayment.ErrInvalidPayment),
		errors.Is(err, domainPayment.ErrOverpaymentRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainLoan.ErrResourceBusy):
		return http.StatusLocked
	}
	return http.StatusInternalServerError
}

func domainError(c echo.Context, err error) error {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
		c.Logger().Error(err)
	}
	return c.JSON(code, ErrorResponse{Error: msg})
}

// actorFrom reads the caller identity forwarded by the gateway.
func actorFrom(c echo.Context) (domainLoan.Actor, bool) {
	a := domainLoan.Actor{
		ID:       c.Request().Header.Get("X-Actor-ID"),
		Role:     domainLoan.Role(c.Request().Header.Get("X-Actor-Role")),
		BranchID: c.Request().Header.Get("X-Branch-ID"),
	}
	switch a.Role {
	case domainLoan.RoleAdmin, domainLoan.RoleManager, domainLoan.RoleLoanOfficer, domainLoan.RoleBorrower:
	default:
		return a, false
	}
	return a, a.ID != ""
}

func unidentified(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid actor headers"})
}
