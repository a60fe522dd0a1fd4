package database

import (
	"embed"
	"fmt"
	"log"
	"sort"
	"strings"

	"gorm.io/gorm"

	"gst-service/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationRecord tracks which migrations have been applied
type MigrationRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Version   string `gorm:"uniqueIndex;size:255"`
	AppliedAt int64  `gorm:"autoCreateTime"`
}

// RunMigrations runs all pending database migrations
func RunMigrations(db *gorm.DB) error {
	log.Println("Starting database migrations...")

	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}

	log.Println("  → Running schema migrations...")
	modelsToMigrate := []struct {
		name  string
		model interface{}
	}{
		{"TenantTaxProfile", &models.TenantTaxProfile{}},
		{"ProductTaxCategory", &models.ProductTaxCategory{}},
		{"Invoice", &models.Invoice{}},
		{"InvoiceLine", &models.InvoiceLine{}},
		{"GSTR1Filing", &models.GSTR1Filing{}},
	}
	for _, m := range modelsToMigrate {
		log.Printf("    → Migrating %s...", m.name)
		if err := db.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("failed to auto-migrate %s: %w", m.name, err)
		}
	}
	log.Println("  ✓ Schema migrations complete")

	// AutoMigrate does not add indexes to tables created by older builds
	log.Println("  → Ensuring unique indexes exist...")
	if err := ensureUniqueIndexes(db); err != nil {
		return fmt.Errorf("failed to create unique indexes: %w", err)
	}

	log.Println("  → Running seed migrations...")
	if err := runSQLMigrations(db); err != nil {
		return fmt.Errorf("failed to run SQL migrations: %w", err)
	}

	log.Println("✓ All database migrations complete")
	return nil
}

// runSQLMigrations executes embedded SQL migration files in name order,
// recording each one so it runs once
func runSQLMigrations(db *gorm.DB) error {
	fileNames, err := pendingFiles()
	if err != nil {
		return err
	}

	for _, fileName := range fileNames {
		var record MigrationRecord
		if err := db.Where("version = ?", fileName).First(&record).Error; err == nil {
			log.Printf("    → Skipping %s (already applied)", fileName)
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + fileName)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", fileName, err)
		}

		log.Printf("    → Applying %s...", fileName)
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := executeSQLStatements(tx, string(content)); err != nil {
				return err
			}
			return tx.Create(&MigrationRecord{Version: fileName}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", fileName, err)
		}
		log.Printf("    ✓ Applied %s", fileName)
	}

	return nil
}

func pendingFiles() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var fileNames []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			fileNames = append(fileNames, entry.Name())
		}
	}
	sort.Strings(fileNames)
	return fileNames, nil
}

// executeSQLStatements executes a SQL script with multiple statements
func executeSQLStatements(db *gorm.DB, sql string) error {
	statements := splitSQLStatements(sql)
	for i, stmt := range statements {
		stmt = stripComments(stmt)
		if stmt == "" {
			continue
		}
		result := db.Exec(stmt)
		if result.Error != nil {
			log.Printf("      [%d/%d] FAIL: %v", i+1, len(statements), result.Error)
			return result.Error
		}
		log.Printf("      [%d/%d] OK (rows: %d)", i+1, len(statements), result.RowsAffected)
	}
	return nil
}

// stripComments drops "--" comment lines that precede or sit inside a statement
func stripComments(stmt string) string {
	var sqlLines []string
	for _, line := range strings.Split(stmt, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			sqlLines = append(sqlLines, line)
		}
	}
	return strings.TrimSpace(strings.Join(sqlLines, "\n"))
}

// ensureUniqueIndexes creates the unique indexes the repository's ON CONFLICT
// clauses and duplicate checks rely on
func ensureUniqueIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		sql   string
		table string
	}{
		{
			name:  "idx_category_unique",
			sql:   `CREATE UNIQUE INDEX IF NOT EXISTS idx_category_unique ON product_tax_categories (tenant_id, name)`,
			table: "product_tax_categories",
		},
		{
			name:  "idx_invoice_number",
			sql:   `CREATE UNIQUE INDEX IF NOT EXISTS idx_invoice_number ON invoices (tenant_id, invoice_number)`,
			table: "invoices",
		},
		{
			name:  "idx_gstr1_period",
			sql:   `CREATE UNIQUE INDEX IF NOT EXISTS idx_gstr1_period ON gstr1_filings (tenant_id, period_start, period_end)`,
			table: "gstr1_filings",
		},
	}

	for _, idx := range indexes {
		var exists bool
		if err := db.Raw("SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = ?)", idx.table).Scan(&exists).Error; err != nil {
			log.Printf("    (warning: could not check table %s: %v)", idx.table, err)
			continue
		}
		if !exists {
			log.Printf("    (skipping index %s: table %s does not exist)", idx.name, idx.table)
			continue
		}
		if err := db.Exec(idx.sql).Error; err != nil {
			if strings.Contains(err.Error(), "already exists") {
				continue
			}
			return err
		}
		log.Printf("    ✓ Created/verified index %s", idx.name)
	}

	return nil
}

// splitSQLStatements splits SQL content into individual statements
func splitSQLStatements(sql string) []string {
	var statements []string
	var currentStmt strings.Builder
	inString := false
	stringChar := rune(0)

	for i, char := range sql {
		// semicolons inside string literals do not end a statement
		if (char == '\'' || char == '"') && (i == 0 || sql[i-1] != '\\') {
			if !inString {
				inString = true
				stringChar = char
			} else if char == stringChar {
				inString = false
			}
		}

		if char == ';' && !inString {
			if stmt := strings.TrimSpace(currentStmt.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			currentStmt.Reset()
		} else {
			currentStmt.WriteRune(char)
		}
	}

	if stmt := strings.TrimSpace(currentStmt.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}
