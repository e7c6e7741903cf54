package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	ucLoan "palmcash-backend/internal/usecase/loan"
)

type LoanHandler struct{ uc *ucLoan.Usecase }

func NewLoanHandler(uc *ucLoan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	BorrowerID string `json:"borrower_id" validate:"required,hex32"`
	ProductID  string `json:"product_id"  validate:"required,hex32"`
	Principal  string `json:"principal"   validate:"required,dec2"`
	TermCount  int    `json:"term_count"  validate:"required,gte=1"`
	Purpose    string `json:"purpose"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	principal, _ := decimal.NewFromString(req.Principal)
	dto, err := h.uc.Create(c.Request().Context(), ucLoan.CreateInput{
		BorrowerID: req.BorrowerID,
		OfficerID:  actor.ID,
		ProductID:  req.ProductID,
		Principal:  principal,
		TermCount:  req.TermCount,
		Purpose:    req.Purpose,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// ViewLoan returns the derived repayment picture: schedule, arrears,
// next due, totals.
func (h *LoanHandler) ViewLoan(c echo.Context) error {
	dto, err := h.uc.View(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) SubmitLoan(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	if err := h.uc.Submit(c.Request().Context(), c.Param("loan_id"), actor); err != nil {
		return domainError(c, err)
	}
	return h.GetLoan(c)
}

type decisionReq struct {
	Notes string `json:"notes"`
}

func (h *LoanHandler) ApproveLoan(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := h.uc.Approve(c.Request().Context(), c.Param("loan_id"), actor, req.Notes); err != nil {
		return domainError(c, err)
	}
	return h.GetLoan(c)
}

type rejectReq struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *LoanHandler) RejectLoan(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.uc.Reject(c.Request().Context(), c.Param("loan_id"), actor, req.Reason); err != nil {
		return domainError(c, err)
	}
	return h.GetLoan(c)
}

func (h *LoanHandler) VerifyUpfront(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	if err := h.uc.VerifyUpfront(c.Request().Context(), c.Param("loan_id"), actor); err != nil {
		return domainError(c, err)
	}
	return h.GetLoan(c)
}

func (h *LoanHandler) VerifyDeposit(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	if err := h.uc.VerifyDeposit(c.Request().Context(), c.Param("loan_id"), actor); err != nil {
		return domainError(c, err)
	}
	return h.GetLoan(c)
}

func (h *LoanHandler) DisburseLoan(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	if err := h.uc.Disburse(c.Request().Context(), c.Param("loan_id"), actor); err != nil {
		return domainError(c, err)
	}
	return h.GetLoan(c)
}

func (h *LoanHandler) CancelLoan(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := h.uc.Cancel(c.Request().Context(), c.Param("loan_id"), actor, req.Notes); err != nil {
		return domainError(c, err)
	}
	return h.GetLoan(c)
}

func (h *LoanHandler) DeleteLoan(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	if err := h.uc.Delete(c.Request().Context(), c.Param("loan_id"), actor); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
