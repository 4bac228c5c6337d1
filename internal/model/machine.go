package model

import "time"

// Machine represents a serviceable machine, keyed by its serial number.
type Machine struct {
	NS          string    `gorm:"primaryKey;size:128" json:"ns"`
	Brand       string    `gorm:"size:128" json:"brand"`
	Class       string    `gorm:"size:128" json:"class"`
	Description string    `gorm:"size:512" json:"description"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
