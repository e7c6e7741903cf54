package product

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domainLoan "palmcash-backend/internal/domain/loan"
	"palmcash-backend/pkg/amortize"
	"palmcash-backend/pkg/id"
	"palmcash-backend/pkg/money"
)

// Usecase manages the loan product catalogue. Products only gate new
// originations; live loans carry their own snapshots.
type Usecase struct {
	products domainLoan.ProductRepository
}

func NewUsecase(products domainLoan.ProductRepository) *Usecase {
	return &Usecase{products: products}
}

type CreateInput struct {
	Name            string
	Description     string
	Frequency       amortize.Frequency
	InterestRatePct decimal.Decimal
	MinAmount       decimal.Decimal
	MaxAmount       decimal.Decimal
	MinTerm         int
	MaxTerm         int
}

func (u *Usecase) Create(ctx context.Context, in CreateInput, actor domainLoan.Actor) (*domainLoan.Product, error) {
	if actor.Role != domainLoan.RoleAdmin {
		return nil, domainLoan.ErrRoleDenied
	}
	if !in.Frequency.Valid() || in.MinTerm < 1 || in.MaxTerm < in.MinTerm {
		return nil, domainLoan.ErrInvalidTerms
	}
	if !money.IsPositive(in.MinAmount) || in.MaxAmount.LessThan(in.MinAmount) {
		return nil, domainLoan.ErrInvalidTerms
	}
	if in.InterestRatePct.IsNegative() {
		return nil, domainLoan.ErrInvalidTerms
	}
	p := &domainLoan.Product{
		ProductID:          id.NewID32(),
		Name:               in.Name,
		Description:        in.Description,
		RepaymentFrequency: in.Frequency,
		InterestRatePct:    in.InterestRatePct,
		MinAmount:          in.MinAmount,
		MaxAmount:          in.MaxAmount,
		MinTerm:            in.MinTerm,
		MaxTerm:            in.MaxTerm,
		IsActive:           true,
	}
	if err := u.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *Usecase) Get(ctx context.Context, productID string) (*domainLoan.Product, error) {
	p, err := u.products.GetByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainLoan.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (u *Usecase) ListActive(ctx context.Context) ([]domainLoan.Product, error) {
	return u.products.ListActive(ctx)
}
