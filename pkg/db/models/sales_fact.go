package models

import "time"

// SalesFact is one pre-aggregated daily sales row in the row store.
type SalesFact struct {
	ID         int64     `gorm:"primaryKey"`
	Platform   string    `gorm:"type:text;not null"`
	Brand      string    `gorm:"type:text;not null"`
	Location   string    `gorm:"type:text;not null"`
	Category   string    `gorm:"type:text;not null"`
	IsOwnBrand int       `gorm:"not null;default:0"`
	SaleDate   time.Time `gorm:"not null"`
	Sales      float64   `gorm:"not null;default:0"`
	Units      int64     `gorm:"not null;default:0"`
}

func (SalesFact) TableName() string { return "sales_facts" }
