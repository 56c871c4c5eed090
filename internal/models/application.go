package models

import "time"

// Application is a long-lived credential for non-human callers.
// Key is the full secret and is only returned in full on create and
// regenerate; list views use the masked preview.
type Application struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	Key         string    `gorm:"size:80;uniqueIndex;not null" json:"key,omitempty"`
	CreatedBy   string    `gorm:"size:36;not null;index" json:"createdBy"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ApplicationListItem is the masked projection used by list endpoints.
type ApplicationListItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	KeyPreview  string    `json:"keyPreview"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}
