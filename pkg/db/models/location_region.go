package models

// LocationRegion maps a normalized city/location to its region label.
type LocationRegion struct {
	Location string `gorm:"type:text;primaryKey"`
	Region   string `gorm:"type:text;not null"`
}

func (LocationRegion) TableName() string { return "location_regions" }
