package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"repairshop-backend/internal/model"
)

// FindOrCreateClient resolves a client by natural key, inserting on a miss.
// The lookup key is ClientID when supplied, otherwise the display name.
// Existing attributes are never merged on the find path: client identity
// does not silently mutate on re-submission. The returned bool reports
// whether a row was inserted.
//
// The lookup-then-insert pair is not atomic; the unique indexes on
// client_id and name are the arbiter under concurrent duplicate
// submissions, and the losing insert surfaces gorm.ErrDuplicatedKey.
func (s *gormStore) FindOrCreateClient(ctx context.Context, c *model.Client) (string, bool, error) {
	q := s.db.WithContext(ctx)
	if c.ClientID != "" {
		q = q.Where("client_id = ?", c.ClientID)
	} else {
		q = q.Where("name = ?", c.Name)
	}

	var existing []model.Client
	if err := q.Limit(1).Find(&existing).Error; err != nil {
		return "", false, fmt.Errorf("failed to look up client: %w", err)
	}
	if len(existing) > 0 {
		return existing[0].ClientID, false, nil
	}

	if c.ClientID == "" {
		c.ClientID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return "", false, fmt.Errorf("failed to create client: %w", err)
	}
	return c.ClientID, true, nil
}

// ListClients returns all clients.
func (s *gormStore) ListClients(ctx context.Context) ([]model.Client, error) {
	clients := make([]model.Client, 0)
	if err := s.db.WithContext(ctx).Order("client_id").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// GetClient resolves a single client by natural key.
func (s *gormStore) GetClient(ctx context.Context, clientID string) (model.Client, error) {
	var c model.Client
	if err := s.db.WithContext(ctx).First(&c, "client_id = ?", clientID).Error; err != nil {
		return model.Client{}, fmt.Errorf("failed to fetch client %s: %w", clientID, err)
	}
	return c, nil
}

// UpdateClient applies a partial update of non-key attributes. Zero
// affected rows means the client does not exist.
func (s *gormStore) UpdateClient(ctx context.Context, clientID string, fields map[string]any) error {
	res := s.db.WithContext(ctx).
		Model(&model.Client{}).
		Where("client_id = ?", clientID).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update client %s: %w", clientID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update client %s: %w", clientID, gorm.ErrRecordNotFound)
	}
	return nil
}

// UpsertMachine inserts or updates a machine in a single statement keyed on
// the serial number. Unlike clients, machine attributes may legitimately
// change on re-submission, so the conflict action overwrites them.
func (s *gormStore) UpsertMachine(ctx context.Context, m *model.Machine) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ns"}},
		DoUpdates: clause.AssignmentColumns([]string{"brand", "class", "description", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert machine %s: %w", m.NS, err)
	}
	return nil
}

// ListMachines returns all machines.
func (s *gormStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	machines := make([]model.Machine, 0)
	if err := s.db.WithContext(ctx).Order("ns").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

// GetMachine resolves a single machine by serial number.
func (s *gormStore) GetMachine(ctx context.Context, ns string) (model.Machine, error) {
	var m model.Machine
	if err := s.db.WithContext(ctx).First(&m, "ns = ?", ns).Error; err != nil {
		return model.Machine{}, fmt.Errorf("failed to fetch machine %s: %w", ns, err)
	}
	return m, nil
}
