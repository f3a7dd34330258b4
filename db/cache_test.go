package db

import "testing"

func TestIsPostgres(t *testing.T) {
	cases := map[string]bool{
		"postgres://u:p@host/db":   true,
		"postgresql://u:p@host/db": true,
		"./cache.db":               false,
		"https://foo.turso.io":     false,
	}
	for dsn, want := range cases {
		if got := isPostgres(dsn); got != want {
			t.Errorf("isPostgres(%q) = %v, want %v", dsn, got, want)
		}
	}
}

func TestIsLibSQL(t *testing.T) {
	cases := map[string]bool{
		"libsql://foo.turso.io": true,
		"https://foo.turso.io":  true,
		"./cache.db":            false,
		"postgres://host/db":    false,
	}
	for dsn, want := range cases {
		if got := isLibSQL(dsn); got != want {
			t.Errorf("isLibSQL(%q) = %v, want %v", dsn, got, want)
		}
	}
}

func TestExtractDBName(t *testing.T) {
	got := extractDBName("postgres://u:p@host:5432/fshc_cache?sslmode=disable")
	if got != "fshc_cache" {
		t.Errorf("extractDBName() = %q, want %q", got, "fshc_cache")
	}
}

func TestConnectSQLiteFileMigratesSchema(t *testing.T) {
	path := t.TempDir() + "/cache.db"
	gdb, err := Connect(path, false)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !gdb.Migrator().HasTable("cached_definitions") {
		t.Error("expected cached_definitions table to exist after migration")
	}
}
