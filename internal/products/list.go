package products

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/happycart-io/happycart-backend/pkg/pagination"
)

// Sort options supported by the browse endpoint.
const (
	SortPriceAsc   = "priceAsc"
	SortPriceDesc  = "priceDesc"
	SortPopularity = "popularity"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	Category   string           `json:"category,omitempty"`
	Brand      string           `json:"brand,omitempty"`
	Size       string           `json:"size,omitempty"`
	Color      string           `json:"color,omitempty"`
	Gender     string           `json:"gender,omitempty"`
	Collection string           `json:"collection,omitempty"`
	Material   string           `json:"material,omitempty"`
	Search     string           `json:"search,omitempty"`
	MinPrice   *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice   *decimal.Decimal `json:"max_price,omitempty"`
	SortBy     string           `json:"sort_by,omitempty"`
	Limit      int              `json:"limit,omitempty"`

	// IncludeUnpublished is set only on admin listings.
	IncludeUnpublished bool `json:"-"`
}

func (f ListFilters) apply(query *gorm.DB) *gorm.DB {
	if !f.IncludeUnpublished {
		query = query.Where("is_published = ?", true)
	}
	if f.Category != "" && !strings.EqualFold(f.Category, "all") {
		query = query.Where("category = ?", f.Category)
	}
	if f.Brand != "" {
		query = query.Where("brand = ?", f.Brand)
	}
	if f.Gender != "" {
		query = query.Where("gender = ?", f.Gender)
	}
	if f.Collection != "" {
		query = query.Where("collection = ?", f.Collection)
	}
	if f.Material != "" {
		query = query.Where("material = ?", f.Material)
	}
	if f.Size != "" {
		query = query.Where("? = ANY(sizes)", f.Size)
	}
	if f.Color != "" {
		query = query.Where("? = ANY(colors)", f.Color)
	}
	if f.Search != "" {
		query = query.Where("name ILIKE ?", "%"+f.Search+"%")
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}

	switch f.SortBy {
	case SortPriceAsc:
		query = query.Order("price ASC")
	case SortPriceDesc:
		query = query.Order("price DESC")
	case SortPopularity:
		query = query.Order("is_featured DESC, created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	return query.Limit(pagination.NormalizeLimit(f.Limit))
}
