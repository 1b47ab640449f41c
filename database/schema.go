package database

import (
	"fmt"
	"io"
	"slices"

	"gorm.io/gen"
	"gorm.io/gorm"

	"github.com/rpupo63/personal-blog-backend/models"
)

/*
Schema helpers

Migrate creates or alters the content tables. It runs on every start.

Column report (GENERATE_COLUMN_REPORT=true): lists columns that exist in the database but
have no field on the Go model, e.g.

	--- Table: posts ---
	Found 1 columns not accounted for in model:
	  - legacy_teaser

Query generation (GENERATE_MODELS=true): writes typed gorm/gen query helpers to ./generated.
*/

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Blog{},
		&models.Post{},
		&models.Tag{},
		&models.Comment{},
	}
}

// Migrate brings the schema up to date with the models
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate content schema: %w", err)
	}
	return nil
}

// TableReport holds the columns of one table that no model field maps to.
type TableReport struct {
	Table    string
	Missing  bool
	Unmapped []string
}

// ColumnReport compares live columns with model fields for every table.
func ColumnReport(db *gorm.DB) ([]TableReport, error) {
	reports := make([]TableReport, 0, len(Models()))
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		report := TableReport{Table: stmt.Schema.Table}

		if !db.Migrator().HasTable(model) {
			report.Missing = true
			reports = append(reports, report)
			continue
		}

		columns, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("error querying columns for table %s: %w", report.Table, err)
		}
		for _, col := range columns {
			if !slices.Contains(stmt.Schema.DBNames, col.Name()) {
				report.Unmapped = append(report.Unmapped, col.Name())
			}
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// WriteColumnReport prints reports in the bootstrap's plain text format
func WriteColumnReport(w io.Writer, reports []TableReport) {
	fmt.Fprintln(w, "=== COLUMN MISMATCH REPORT ===")
	total := 0
	for _, r := range reports {
		fmt.Fprintf(w, "\n--- Table: %s ---\n", r.Table)
		switch {
		case r.Missing:
			fmt.Fprintln(w, "Table does not exist yet (will be created during migration)")
		case len(r.Unmapped) == 0:
			fmt.Fprintln(w, "All columns are accounted for in the model.")
		default:
			fmt.Fprintf(w, "Found %d columns not accounted for in model:\n", len(r.Unmapped))
			for _, col := range r.Unmapped {
				fmt.Fprintf(w, "  - %s\n", col)
			}
			total += len(r.Unmapped)
		}
	}
	fmt.Fprintf(w, "\n=== SUMMARY ===\n")
	fmt.Fprintf(w, "Total mismatched columns across all tables: %d\n", total)
}

// GenerateQueries migrates, then writes typed query helpers for every model to outPath.
func GenerateQueries(db *gorm.DB, outPath string) error {
	if err := Migrate(db.Session(&gorm.Session{SkipDefaultTransaction: true})); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(Models()...)
	g.Execute()
	return nil
}
