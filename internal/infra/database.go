package infra

import (
	"fmt"

	"sucursalpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create or update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// TranslateError maps driver errors onto gorm.ErrDuplicatedKey /
		// gorm.ErrForeignKeyViolated, which the services match with errors.Is.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the full schema. It is also used by integration tests
// against throwaway containers.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Sucursal{},
		&model.Usuario{},
		&model.Perfil{},
		&model.Producto{},
		&model.Caja{},
		&model.Venta{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// The partial unique index is the storage-level guarantee that a sucursal has
// at most one ABIERTA caja per fecha; concurrent aperturas race on it and
// exactly one insert wins.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_cajas_sucursal_fecha_abierta') THEN
		    CREATE UNIQUE INDEX uni_cajas_sucursal_fecha_abierta
		        ON cajas (sucursal_id, fecha)
		        WHERE estado = 'ABIERTA';
		  END IF;
		END $$`,
		// Reporting queries filter ventas through their caja's fecha.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ventas_caja_created') THEN
		    CREATE INDEX idx_ventas_caja_created ON ventas (caja_id, created_at DESC);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
