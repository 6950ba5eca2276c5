package models

import "time"

// Location is a lazily created, deduplicated geographic record. Identity is
// the exact (country, state, city) tuple; an absent state or city is part of
// the identity, not a wildcard. Locations are never deleted by this core.
type Location struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	Country       string    `json:"country" gorm:"size:100;not null;index:idx_location_tuple"`
	StateProvince *string   `json:"state_province" gorm:"size:100;index:idx_location_tuple"`
	City          *string   `json:"city" gorm:"size:100;index:idx_location_tuple"`
	Address       *string   `json:"address" gorm:"size:255"`
	Latitude      *float64  `json:"latitude" gorm:"type:decimal(10,8)"`
	Longitude     *float64  `json:"longitude" gorm:"type:decimal(11,8)"`
	CreatedAt     time.Time `json:"created_at"`
}
