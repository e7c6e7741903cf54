package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	ucProduct "palmcash-backend/internal/usecase/product"
	"palmcash-backend/pkg/amortize"
)

type ProductHandler struct{ uc *ucProduct.Usecase }

func NewProductHandler(uc *ucProduct.Usecase) *ProductHandler { return &ProductHandler{uc: uc} }

type createProductReq struct {
	Name            string `json:"name"              validate:"required"`
	Description     string `json:"description"`
	Frequency       string `json:"repayment_frequency" validate:"required,oneof=daily weekly"`
	InterestRatePct string `json:"interest_rate_pct" validate:"required,dec2"`
	MinAmount       string `json:"min_amount"        validate:"required,dec2"`
	MaxAmount       string `json:"max_amount"        validate:"required,dec2"`
	MinTerm         int    `json:"min_term"          validate:"required,gte=1"`
	MaxTerm         int    `json:"max_term"          validate:"required,gte=1"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unidentified(c)
	}
	var req createProductReq
	if ok, err := bindPost(c, &req); !ok {
		return err
	}
	rate, _ := decimal.NewFromString(req.InterestRatePct)
	minAmt, _ := decimal.NewFromString(req.MinAmount)
	maxAmt, _ := decimal.NewFromString(req.MaxAmount)
	p, err := h.uc.Create(c.Request().Context(), ucProduct.CreateInput{
		Name:            req.Name,
		Description:     req.Description,
		Frequency:       amortize.Frequency(req.Frequency),
		InterestRatePct: rate,
		MinAmount:       minAmt,
		MaxAmount:       maxAmt,
		MinTerm:         req.MinTerm,
		MaxTerm:         req.MaxTerm,
	}, actor)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	p, err := h.uc.Get(c.Request().Context(), c.Param("product_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	list, err := h.uc.ListActive(c.Request().Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
