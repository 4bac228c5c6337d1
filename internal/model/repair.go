package model

import "time"

// Repair represents a single repair order. Dates are carried as opaque
// date strings supplied by the caller; status is a free-form string with
// no enforced state machine.
//
// ClientRef must not be named ClientID: a references target whose name
// exists on both sides of the association makes gorm resolve it as has-one
// and put the foreign key on clients instead of repairs.
type Repair struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientRef      string    `gorm:"column:client_id;size:64;index;not null" json:"client_id"`
	MachineNS      string    `gorm:"size:128;index;not null" json:"ns"`
	IntakeDate     string    `gorm:"size:32;not null" json:"intake_date"`
	CompletedDate  string    `gorm:"size:32" json:"completed_date"`
	Status         string    `gorm:"size:64;not null" json:"status"`
	FaultDesc      string    `gorm:"size:1024" json:"fault_desc"`
	RepairDesc     string    `gorm:"size:1024" json:"repair_desc"`
	IntermediaryID string    `gorm:"size:64" json:"intermediary_id"`
	Billed         bool      `gorm:"not null;default:false" json:"billed"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`

	// Associations. Deleting a referenced client or machine is blocked by
	// the store, not checked here.
	Client  Client  `gorm:"foreignKey:ClientRef;references:ClientID;constraint:OnDelete:RESTRICT" json:"-"`
	Machine Machine `gorm:"foreignKey:MachineNS;references:NS;constraint:OnDelete:RESTRICT" json:"-"`
}
