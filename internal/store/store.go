package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"repairshop-backend/internal/model"
	"repairshop-backend/internal/normalize"
)

// Store defines the interface for all database operations. Not-found and
// duplicate-key conditions surface as gorm.ErrRecordNotFound and
// gorm.ErrDuplicatedKey; callers classify with errors.Is, never by matching
// error text.
type Store interface {
	ListRepairs(ctx context.Context, f RepairFilter) ([]normalize.RepairRecord, error)
	ListRepairsProc(ctx context.Context, f RepairFilter) ([]normalize.RepairRecord, error)
	GetRepair(ctx context.Context, id int64) (normalize.RepairRecord, error)
	CreateRepair(ctx context.Context, r *model.Repair) (int64, error)
	UpdateRepair(ctx context.Context, id int64, fields map[string]any) error
	DeleteRepair(ctx context.Context, id int64) error

	FindOrCreateClient(ctx context.Context, c *model.Client) (string, bool, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	GetClient(ctx context.Context, clientID string) (model.Client, error)
	UpdateClient(ctx context.Context, clientID string, fields map[string]any) error

	UpsertMachine(ctx context.Context, m *model.Machine) error
	ListMachines(ctx context.Context) ([]model.Machine, error)
	GetMachine(ctx context.Context, ns string) (model.Machine, error)

	Lookups(ctx context.Context) (LookupValues, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// GetRepair resolves a single repair by id, joined with its machine and
// client through preloaded associations.
func (s *gormStore) GetRepair(ctx context.Context, id int64) (normalize.RepairRecord, error) {
	var repair model.Repair
	err := s.db.WithContext(ctx).
		Preload("Machine").
		Preload("Client").
		First(&repair, id).Error
	if err != nil {
		return normalize.RepairRecord{}, fmt.Errorf("failed to fetch repair %d: %w", id, err)
	}
	mi := normalize.MachineFromStruct(repair.Machine)
	return normalize.Record(repair, mi, repair.Client.Name), nil
}

// CreateRepair inserts a new repair order and returns its assigned id.
// Referential integrity against clients and machines is the store schema's
// job; a violation surfaces as gorm.ErrForeignKeyViolated.
func (s *gormStore) CreateRepair(ctx context.Context, r *model.Repair) (int64, error) {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return 0, fmt.Errorf("failed to create repair: %w", err)
	}
	return r.ID, nil
}

// UpdateRepair applies a partial update. The caller passes only recognized
// columns; zero affected rows means the id does not exist.
func (s *gormStore) UpdateRepair(ctx context.Context, id int64, fields map[string]any) error {
	res := s.db.WithContext(ctx).
		Model(&model.Repair{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update repair %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update repair %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// DeleteRepair removes a repair by id. A delete that affected nothing is
// reported as not-found, never as success.
func (s *gormStore) DeleteRepair(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Repair{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete repair %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete repair %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
