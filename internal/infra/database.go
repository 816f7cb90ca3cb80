package infra

import (
	"fmt"

	"github.com/gabrielle-jeco/personal-performance-app/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. Migrations are a
// separate step (RunMigrations) so callers decide when schema changes apply.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

	return db, nil
}

// RunMigrations creates/updates the schema. Also used by the integration tests
// against a throwaway container database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Location{},
		&model.User{},
		&model.Task{},
		&model.Evaluation{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
//
// The evaluation period guard needs at-most-one evaluation per subject per
// calendar month, enforced by the database rather than application locking so
// that two concurrent submissions cannot both insert. The arbiter is a unique
// expression index over (subject_id, date_trunc('month', date)); the upsert in
// repository.EvaluationRepository targets it with ON CONFLICT.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_evaluations_subject_month') THEN
		    CREATE UNIQUE INDEX uni_evaluations_subject_month
		        ON evaluations (subject_id, (date_trunc('month', date)));
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
