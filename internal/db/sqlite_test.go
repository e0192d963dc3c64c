package db

import (
	"os"
	"path/filepath"
	"testing"

	"studyhub/migrations"
)

func TestRunMigrationsAppliesOnce(t *testing.T) {
	dir := t.TempDir()
	migrations := filepath.Join(dir, "migrations")
	if err := os.MkdirAll(migrations, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files := map[string]string{
		"002_add_column.sql":   "ALTER TABLE notes ADD COLUMN title TEXT;",
		"001_create_notes.sql": "CREATE TABLE notes (id TEXT PRIMARY KEY);",
		"README.md":            "not a migration",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(migrations, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	database, err := OpenSQLite(filepath.Join(dir, "nested", "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	applied, err := RunMigrations(database, migrations)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) != 2 || applied[0] != "001_create_notes.sql" || applied[1] != "002_add_column.sql" {
		t.Fatalf("unexpected applied migrations %v", applied)
	}

	applied, err = RunMigrations(database, migrations)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected nothing to apply, got %v", applied)
	}

	if _, err := database.Exec(`INSERT INTO notes (id, title) VALUES ('a', 'b')`); err != nil {
		t.Fatalf("insert after migrations: %v", err)
	}
}

func TestRunMigrationsRollsBackFailure(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("CREATE TABLE;"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	database, err := OpenSQLite(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	if _, err := RunMigrations(database, dir); err == nil {
		t.Fatal("expected migration error")
	}
	var count int
	if err := database.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed migration must not be recorded, got %d", count)
	}
}

func TestEmbeddedMigrationsMatchDirectory(t *testing.T) {
	database, err := OpenSQLite(filepath.Join(t.TempDir(), "embedded.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	applied, err := RunMigrationsFS(database, migrations.Files)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join("..", "..", "migrations"))
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	sqlFiles := 0
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".sql" {
			sqlFiles++
		}
	}
	if len(applied) != sqlFiles {
		t.Fatalf("expected %d embedded migrations, applied %v", sqlFiles, applied)
	}
}
