package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMigrationsSortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "010_requests.sql", "CREATE TABLE solicitud ();")
	writeFile(t, dir, "001_core.sql", "CREATE TABLE paciente ();")
	writeFile(t, dir, "002_catalog.sql", "CREATE TABLE examen ();")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	wantVersions := []int{1, 2, 10}
	for i, w := range wantVersions {
		if migs[i].Version != w {
			t.Errorf("migs[%d].Version = %d, want %d", i, migs[i].Version, w)
		}
	}
	if migs[0].SQL == "" {
		t.Error("migration SQL not loaded")
	}
}

func TestLoadMigrationsSkipsNonNumeric(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.sql", "-- not a migration")
	writeFile(t, dir, "readme.txt", "hello")
	writeFile(t, dir, "001_core.sql", "SELECT 1;")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migs) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migs))
	}
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/path")
	if _, err := m.LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
