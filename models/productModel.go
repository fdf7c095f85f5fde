package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	gorm.Model
	Name        string         `json:"name" gorm:"size:255;not null"`
	Description string         `json:"description"`
	Category    string         `json:"category" gorm:"size:64;index;default:Other"`
	Price       Money          `json:"price" gorm:"not null"`
	Stock       int            `json:"stock"`
	NewArrival  bool           `json:"newArrival"`
	ImageURLs   datatypes.JSON `json:"imageUrls"`

	Specifications []ProductSpec `json:"specifications,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// ProductSpec is one label/value row of a product's specification sheet.
type ProductSpec struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ProductID uint      `json:"productId" gorm:"index;not null"`
	Label     string    `json:"label" gorm:"size:128;not null"`
	Value     string    `json:"value" gorm:"size:512;not null"`
	CreatedAt time.Time `json:"createdAt"`
}
