package model

import "time"

// BaseModel handles the numeric ID and standard audit trail
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Audit User Tracking
	CreatedBy string `gorm:"type:varchar(50)" json:"created_by,omitempty"`
	UpdatedBy string `gorm:"type:varchar(50)" json:"updated_by,omitempty"`
}
