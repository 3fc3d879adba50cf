package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/happycart-io/happycart-backend/pkg/types"
)

// Product is a catalog entry. The cart and checkout core treat it as a
// read-only price/name/image oracle; mutation happens only through the admin
// surface.
type Product struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string              `gorm:"column:name;not null"`
	Description   string              `gorm:"column:description;not null;default:''"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPrice *decimal.Decimal    `gorm:"column:discount_price;type:numeric(12,2)"`
	CountInStock  int                 `gorm:"column:count_in_stock;not null;default:0"`
	SKU           string              `gorm:"column:sku;not null;uniqueIndex"`
	Category      string              `gorm:"column:category;not null;default:''"`
	Brand         string              `gorm:"column:brand;not null;default:''"`
	Sizes         pq.StringArray      `gorm:"column:sizes;type:text[]"`
	Colors        pq.StringArray      `gorm:"column:colors;type:text[]"`
	Collection    string              `gorm:"column:collection;not null;default:''"`
	Material      string              `gorm:"column:material;not null;default:''"`
	Gender        string              `gorm:"column:gender;not null;default:''"`
	Images        types.ProductImages `gorm:"column:images;type:jsonb;serializer:json"`
	IsFeatured    bool                `gorm:"column:is_featured;not null;default:false"`
	IsPublished   bool                `gorm:"column:is_published;not null;default:false"`
	Tags          pq.StringArray      `gorm:"column:tags;type:text[]"`
	CreatedByID   *uuid.UUID          `gorm:"column:created_by_id;type:uuid"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
