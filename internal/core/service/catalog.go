package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/anle/storefront/internal/core/domain"
	"github.com/anle/storefront/internal/port"
)

// ProductInput carries the validated fields of an admin create request.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	ImageURL    string
}

// CatalogPage is one page of the product listing.
type CatalogPage struct {
	Products  []domain.Product
	Page      int
	PageCount int
}

type CatalogService interface {
	Page(ctx context.Context, page int) (*CatalogPage, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)

	// All returns the whole catalog; admin only.
	All(ctx context.Context, caller domain.Caller) ([]domain.Product, error)

	// Create, Update and Delete require the admin capability and fail with
	// domain.ErrForbidden otherwise. Field validation failures map to
	// domain.ErrInvalidInput.
	Create(ctx context.Context, caller domain.Caller, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, caller domain.Caller, id int64, patch domain.ProductPatch) error
	Delete(ctx context.Context, caller domain.Caller, id int64) error
}

func NewCatalogService(products port.ProductRepository, pageSize int) CatalogService {
	return &catalogService{products: products, pageSize: pageSize}
}

type catalogService struct {
	products port.ProductRepository
	pageSize int
}

func (s *catalogService) Page(ctx context.Context, page int) (*CatalogPage, error) {
	if page < 1 {
		page = 1
	}
	products, total, err := s.products.List(ctx, (page-1)*s.pageSize, s.pageSize)
	if err != nil {
		return nil, err
	}

	pageCount := (total + s.pageSize - 1) / s.pageSize
	if pageCount < 1 {
		pageCount = 1
	}
	return &CatalogPage{Products: products, Page: page, PageCount: pageCount}, nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *catalogService) All(ctx context.Context, caller domain.Caller) ([]domain.Product, error) {
	if !caller.Admin {
		return nil, domain.ErrForbidden
	}
	return s.products.ListAll(ctx)
}

func (s *catalogService) Create(ctx context.Context, caller domain.Caller, input ProductInput) (*domain.Product, error) {
	if !caller.Admin {
		return nil, domain.ErrForbidden
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validateProductFields(input.Name, input.Price, input.Quantity); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		ImageURL:    input.ImageURL,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) Update(ctx context.Context, caller domain.Caller, id int64, patch domain.ProductPatch) error {
	if !caller.Admin {
		return domain.ErrForbidden
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if patch.Name != nil {
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Quantity != nil {
		product.Quantity = *patch.Quantity
	}
	if patch.ImageURL != nil {
		product.ImageURL = *patch.ImageURL
	}

	if err := validateProductFields(product.Name, product.Price, product.Quantity); err != nil {
		return err
	}
	return s.products.Update(ctx, product)
}

func (s *catalogService) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	if !caller.Admin {
		return domain.ErrForbidden
	}
	return s.products.Delete(ctx, id)
}

func validateProductFields(name string, price decimal.Decimal, quantity int) error {
	if name == "" {
		return fmt.Errorf("%w: product name must not be empty", domain.ErrInvalidInput)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidInput)
	}
	return nil
}
