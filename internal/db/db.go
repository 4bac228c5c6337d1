package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"repairshop-backend/config"
	"repairshop-backend/internal/model"
)

// listRepairsFilteredDDL defines the named filter function used by the
// procedural query path. Empty-string arguments mean "no predicate", so the
// function and the composed join path accept the same filter set and return
// the same logical result. Rows come back pre-flattened with alias columns.
const listRepairsFilteredDDL = `
CREATE OR REPLACE FUNCTION list_repairs_filtered(
    p_client_id text, p_ns text, p_brand text,
    p_class text, p_status text, p_fault text)
RETURNS TABLE (
    id bigint, client_id text, client_name text, ns text,
    machine_brand text, machine_class text, intake_date text,
    completed_date text, status text, fault_desc text,
    repair_desc text, intermediary_id text, billed boolean)
LANGUAGE sql STABLE AS $$
    SELECT r.id, r.client_id, COALESCE(c.name, ''), r.machine_ns,
           COALESCE(m.brand, ''), COALESCE(m.class, ''),
           r.intake_date, r.completed_date, r.status, r.fault_desc,
           r.repair_desc, r.intermediary_id, r.billed
    FROM repairs r
    LEFT JOIN clients c ON c.client_id = r.client_id
    LEFT JOIN machines m ON m.ns = r.machine_ns
    WHERE (p_client_id = '' OR r.client_id = p_client_id)
      AND (p_ns = '' OR r.machine_ns = p_ns)
      AND (p_status = '' OR r.status = p_status)
      AND (p_brand = '' OR LOWER(m.brand) LIKE '%' || LOWER(p_brand) || '%')
      AND (p_class = '' OR LOWER(m.class) LIKE '%' || LOWER(p_class) || '%')
      AND (p_fault = '' OR LOWER(r.fault_desc) LIKE '%' || LOWER(p_fault) || '%')
    ORDER BY r.id DESC
$$;`

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Client{},
		&model.Machine{},
		&model.Repair{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if err := db.Exec(listRepairsFilteredDDL).Error; err != nil {
		return nil, fmt.Errorf("failed to create list_repairs_filtered: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}
