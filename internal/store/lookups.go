package store

import (
	"context"
	"fmt"

	"repairshop-backend/internal/model"
)

// LookupValues aggregates the distinct values used to populate selection
// inputs on the intake form.
type LookupValues struct {
	Brands    []string `json:"brands"`
	Classes   []string `json:"classes"`
	Faults    []string `json:"faults"`
	ClientIDs []string `json:"client_ids"`
	Serials   []string `json:"serials"`
}

// Lookups collects distinct non-empty brands, classes and fault
// descriptions plus all client ids and serials.
func (s *gormStore) Lookups(ctx context.Context) (LookupValues, error) {
	v := LookupValues{
		Brands:    make([]string, 0),
		Classes:   make([]string, 0),
		Faults:    make([]string, 0),
		ClientIDs: make([]string, 0),
		Serials:   make([]string, 0),
	}

	type pluck struct {
		model  any
		column string
		dst    *[]string
	}
	plucks := []pluck{
		{&model.Machine{}, "brand", &v.Brands},
		{&model.Machine{}, "class", &v.Classes},
		{&model.Repair{}, "fault_desc", &v.Faults},
		{&model.Client{}, "client_id", &v.ClientIDs},
		{&model.Machine{}, "ns", &v.Serials},
	}

	for _, p := range plucks {
		err := s.db.WithContext(ctx).
			Model(p.model).
			Distinct(p.column).
			Where(p.column+" <> ''").
			Order(p.column).
			Pluck(p.column, p.dst).Error
		if err != nil {
			return LookupValues{}, fmt.Errorf("failed to collect distinct %s values: %w", p.column, err)
		}
	}
	return v, nil
}
