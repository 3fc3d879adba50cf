package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/happycart-io/happycart-backend/pkg/db/models"
	pkgerrors "github.com/happycart-io/happycart-backend/pkg/errors"
	"github.com/happycart-io/happycart-backend/pkg/types"
)

// Service exposes catalog browsing plus the admin management surface.
type Service interface {
	List(ctx context.Context, filters ListFilters) ([]ProductDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, adminID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, productID uuid.UUID) error
}

type service struct {
	repo ProductRepository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo ProductRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// CreateProductInput holds the validated payload to create a catalog entry.
type CreateProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	CountInStock  int
	SKU           string
	Category      string
	Brand         string
	Sizes         []string
	Colors        []string
	Collection    string
	Material      string
	Gender        string
	Images        types.ProductImages
	IsFeatured    bool
	IsPublished   bool
	Tags          []string
}

// UpdateProductInput holds optional mutation values for a catalog entry.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	DiscountPrice *decimal.Decimal
	CountInStock  *int
	SKU           *string
	Category      *string
	Brand         *string
	Sizes         *[]string
	Colors        *[]string
	Collection    *string
	Material      *string
	Gender        *string
	Images        *types.ProductImages
	IsFeatured    *bool
	IsPublished   *bool
	Tags          *[]string
}

// List returns catalog entries matching the filters.
func (s *service) List(ctx context.Context, filters ListFilters) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return ToDTOs(rows), nil
}

// GetByID returns a single catalog entry.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return ToDTO(product), nil
}

// Create inserts a new catalog entry after validating the SKU is unused.
func (s *service) Create(ctx context.Context, adminID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	sku := strings.TrimSpace(input.SKU)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
	}
	if input.CountInStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock count cannot be negative")
	}

	if _, err := s.repo.FindBySKU(ctx, sku); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product sku already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
	}

	product := &models.Product{
		Name:          name,
		Description:   input.Description,
		Price:         input.Price,
		DiscountPrice: input.DiscountPrice,
		CountInStock:  input.CountInStock,
		SKU:           sku,
		Category:      input.Category,
		Brand:         input.Brand,
		Sizes:         input.Sizes,
		Colors:        input.Colors,
		Collection:    input.Collection,
		Material:      input.Material,
		Gender:        input.Gender,
		Images:        input.Images,
		IsFeatured:    input.IsFeatured,
		IsPublished:   input.IsPublished,
		Tags:          input.Tags,
	}
	if adminID != uuid.Nil {
		product.CreatedByID = &adminID
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return ToDTO(created), nil
}

// Update applies the provided partial mutation to the catalog entry.
func (s *service) Update(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku cannot be blank")
		}
		if sku != product.SKU {
			if _, err := s.repo.FindBySKU(ctx, sku); err == nil {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "product sku already exists")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
			}
		}
		product.SKU = sku
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be blank")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.DiscountPrice != nil {
		product.DiscountPrice = input.DiscountPrice
	}
	if input.CountInStock != nil {
		if *input.CountInStock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock count cannot be negative")
		}
		product.CountInStock = *input.CountInStock
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Sizes != nil {
		product.Sizes = *input.Sizes
	}
	if input.Colors != nil {
		product.Colors = *input.Colors
	}
	if input.Collection != nil {
		product.Collection = *input.Collection
	}
	if input.Material != nil {
		product.Material = *input.Material
	}
	if input.Gender != nil {
		product.Gender = *input.Gender
	}
	if input.Images != nil {
		product.Images = *input.Images
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.IsPublished != nil {
		product.IsPublished = *input.IsPublished
	}
	if input.Tags != nil {
		product.Tags = *input.Tags
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return ToDTO(updated), nil
}

// Delete removes the catalog entry.
func (s *service) Delete(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}
