package mysql

import (
	"context"

	"gorm.io/gorm"

	loanDomain "palmcash-backend/internal/domain/loan"
)

type ProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) *ProductRepository { return &ProductRepository{db: db} }

func (r *ProductRepository) Create(ctx context.Context, p *loanDomain.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) GetByProductID(ctx context.Context, productID string) (*loanDomain.Product, error) {
	var out loanDomain.Product
	res := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&out)
	return &out, res.Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Product, error) {
	var out loanDomain.Product
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ProductRepository) ListActive(ctx context.Context) ([]loanDomain.Product, error) {
	var out []loanDomain.Product
	res := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&out)
	return out, res.Error
}
