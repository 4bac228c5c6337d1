package model

import "time"

// Client represents a customer of the workshop. ClientID is a
// caller-meaningful natural key, not a store-assigned surrogate.
type Client struct {
	ClientID      string    `gorm:"primaryKey;size:64" json:"client_id"`
	Name          string    `gorm:"size:256;not null;uniqueIndex:uniq_clients_name,where:name <> ''" json:"name"`
	Address       string    `gorm:"size:256" json:"address"`
	ContactPerson string    `gorm:"size:128" json:"contact_person"`
	Phone         string    `gorm:"size:64" json:"phone"`
	TaxID         string    `gorm:"size:32" json:"tax_id"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}
