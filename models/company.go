package models

import "time"

// Company is the owning tenant of orders and staff accounts.
type Company struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`
	// DetailedTracking forces every item, even ones that need no
	// preparation, through the full pending→preparing→ready→delivered flow.
	DetailedTracking bool      `json:"detailed_tracking" gorm:"default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
