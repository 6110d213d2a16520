package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable catalog item.
type Product struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string           `gorm:"column:name;not null"`
	Description   string           `gorm:"column:description;not null"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	PreviousPrice *decimal.Decimal `gorm:"column:previous_price;type:numeric(12,2)"`
	Stock         int              `gorm:"column:stock;not null"`
	ImageURL      string           `gorm:"column:image_url;not null"`
	CategoryID    *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	IsActive      bool             `gorm:"column:is_active;not null"`
	Category      *Category        `gorm:"foreignKey:CategoryID"`
	Tags          []Tag            `gorm:"many2many:product_tags;joinForeignKey:ProductID;joinReferences:TagID"`
	Images        []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// TagIDs lists the ids of the preloaded tags.
func (p Product) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// ProductImage is one entry of a product's ordered gallery.
type ProductImage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	URL       string    `gorm:"column:url;not null"`
	Position  int       `gorm:"column:position;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *ProductImage) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// ProductTag is the join row between products and tags.
type ProductTag struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	TagID     uuid.UUID `gorm:"column:tag_id;type:uuid;primaryKey"`
}

func (ProductTag) TableName() string { return "product_tags" }
