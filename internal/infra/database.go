package infra

import (
	"fmt"

	"github.com/wmakeouthill/Mercearia-R-V-sub001/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique index on the open session, etc.).
//
// TranslateError is required: the repository layer relies on
// gorm.ErrDuplicatedKey to detect the second concurrent session open.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
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

// RunMigrations applies the full schema. Also used by integration tests
// against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Operador{},
		&model.SessaoCaixa{},
		&model.MovimentacaoCaixa{},
		&model.Venda{},
		&model.VendaItem{},
		&model.VendaPagamento{},
		&model.VendaDeletada{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one open session, enforced at the database and not in
		// application code: two concurrent opens race to this index and
		// exactly one wins.
		{"partial unique index on open session", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_sessoes_caixa_aberta') THEN
    CREATE UNIQUE INDEX uni_sessoes_caixa_aberta
        ON sessoes_caixa ((status))
        WHERE status = 'aberta';
  END IF;
END $$`},
		// Reconciliation scans sales by timestamp window.
		{"index on vendas window scan", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_vendas_data_venda') THEN
    CREATE INDEX idx_vendas_data_venda ON vendas (data_venda);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
