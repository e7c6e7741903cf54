package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	domainPayment "palmcash-backend/internal/domain/payment"
	ucPayment "palmcash-backend/internal/usecase/payment"
)

type PaymentHandler struct{ uc *ucPayment.Usecase }

func NewPaymentHandler(uc *ucPayment.Usecase) *PaymentHandler { return &PaymentHandler{uc: uc} }

type postPaymentReq struct {
	Amount string `json:"amount" validate:"required,dec2"`
	Method string `json:"method" validate:"required,oneof=cash bank_transfer mobile_money check card"`
	Notes  string `json:"notes"`
}

type postInstallmentReq struct {
	Amount string `json:"amount" validate:"required,dec2"`
	Method string `json:"method" validate:"required,oneof=cash bank_transfer mobile_money check card"`
	// Date the cash changed hands, YYYY-MM-DD; empty means today.
	CollectionDate   string `json:"collection_date" validate:"omitempty,datetime=2006-01-02"`
	AllowOverpayment bool   `json:"allow_overpayment"`
	Notes            string `json:"notes"`
}

func bindPost(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

func (h *PaymentHandler) PostUpfront(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	var req postPaymentReq
	if ok, err := bindPost(c, &req); !ok {
		return err
	}
	amount, _ := decimal.NewFromString(req.Amount)
	dto, err := h.uc.PostUpfront(c.Request().Context(), ucPayment.PostInput{
		LoanID: c.Param("loan_id"),
		Amount: amount,
		Method: domainPayment.Method(req.Method),
		Actor:  actor,
		Notes:  req.Notes,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PaymentHandler) PostDeposit(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	var req postPaymentReq
	if ok, err := bindPost(c, &req); !ok {
		return err
	}
	amount, _ := decimal.NewFromString(req.Amount)
	dto, err := h.uc.PostSecurityDeposit(c.Request().Context(), ucPayment.PostInput{
		LoanID: c.Param("loan_id"),
		Amount: amount,
		Method: domainPayment.Method(req.Method),
		Actor:  actor,
		Notes:  req.Notes,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PaymentHandler) PostInstallment(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	var req postInstallmentReq
	if ok, err := bindPost(c, &req); !ok {
		return err
	}
	amount, _ := decimal.NewFromString(req.Amount)
	var collDate time.Time
	if req.CollectionDate != "" {
		collDate, _ = time.Parse("2006-01-02", req.CollectionDate)
	}
	dto, err := h.uc.PostInstallment(c.Request().Context(), ucPayment.PostInstallmentInput{
		LoanID:           c.Param("loan_id"),
		Amount:           amount,
		CollectionDate:   collDate,
		Method:           domainPayment.Method(req.Method),
		Actor:            actor,
		AllowOverpayment: req.AllowOverpayment,
		Notes:            req.Notes,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PaymentHandler) ReversePayment(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	if err := h.uc.Reverse(c.Request().Context(), c.Param("payment_id"), actor); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
