package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/happycart-io/happycart-backend/pkg/db/models"
	"github.com/happycart-io/happycart-backend/pkg/types"
)

// ProductDTO is the catalog entry shape returned by the API.
type ProductDTO struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice *decimal.Decimal    `json:"discountPrice,omitempty"`
	CountInStock  int                 `json:"countInStock"`
	SKU           string              `json:"sku"`
	Category      string              `json:"category"`
	Brand         string              `json:"brand"`
	Sizes         []string            `json:"sizes"`
	Colors        []string            `json:"colors"`
	Collection    string              `json:"collection"`
	Material      string              `json:"material"`
	Gender        string              `json:"gender"`
	Images        types.ProductImages `json:"images"`
	IsFeatured    bool                `json:"isFeatured"`
	IsPublished   bool                `json:"isPublished"`
	Tags          []string            `json:"tags"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// ToDTO maps the persistence model onto the API shape.
func ToDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		DiscountPrice: product.DiscountPrice,
		CountInStock:  product.CountInStock,
		SKU:           product.SKU,
		Category:      product.Category,
		Brand:         product.Brand,
		Sizes:         product.Sizes,
		Colors:        product.Colors,
		Collection:    product.Collection,
		Material:      product.Material,
		Gender:        product.Gender,
		Images:        product.Images,
		IsFeatured:    product.IsFeatured,
		IsPublished:   product.IsPublished,
		Tags:          product.Tags,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}

// ToDTOs maps a slice of models.
func ToDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
