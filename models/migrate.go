package models

import (
	"fmt"

	"gorm.io/gorm"
)

/*
Column report usage:

Set GENERATE_COLUMN_REPORT=true and start the server. Instead of serving, it
prints every database column that no model field maps to, per table:

=== COLUMN MISMATCH REPORT ===
--- Table: blog_posts ---
Found 1 columns not accounted for in model:
  - legacy_slug
*/

// All returns every persisted model, in migration order.
func All() []any {
	return []any{
		&BlogPost{},
		&RoleGrant{},
	}
}

// Migrate creates or alters the tables for every model.
func Migrate(db *gorm.DB) error {
	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// ColumnMismatches returns, per table, the database columns that are not
// mapped by the corresponding model. Tables that do not exist yet are skipped.
func ColumnMismatches(db *gorm.DB) (map[string][]string, error) {
	report := make(map[string][]string)

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		tableName := stmt.Schema.Table

		if !db.Migrator().HasTable(tableName) {
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
		}

		modelFields := make(map[string]bool, len(stmt.Schema.DBNames))
		for _, name := range stmt.Schema.DBNames {
			modelFields[name] = true
		}

		var mismatches []string
		for _, column := range columnTypes {
			if !modelFields[column.Name()] {
				mismatches = append(mismatches, column.Name())
			}
		}
		report[tableName] = mismatches
	}

	return report, nil
}

// PrintColumnMismatchReport writes the column report to stdout.
func PrintColumnMismatchReport(db *gorm.DB) error {
	report, err := ColumnMismatches(db)
	if err != nil {
		return err
	}

	fmt.Println("=== COLUMN MISMATCH REPORT ===")
	total := 0
	for tableName, mismatches := range report {
		fmt.Printf("\n--- Table: %s ---\n", tableName)
		if len(mismatches) == 0 {
			fmt.Println("All columns are accounted for in the model.")
			continue
		}
		fmt.Printf("Found %d columns not accounted for in model:\n", len(mismatches))
		for _, col := range mismatches {
			fmt.Printf("  - %s\n", col)
		}
		total += len(mismatches)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", total)
	return nil
}
