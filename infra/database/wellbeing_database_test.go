package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewSQLiteInMemory(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLite(ctx, "")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer db.Close()

	if db.DriverName() != DriverSQLite {
		t.Errorf("driver = %s", db.DriverName())
	}
	if got := db.Rebind("SELECT ? + ?"); got != "SELECT ? + ?" {
		t.Errorf("Rebind = %q", got)
	}

	var fk int
	if err := db.GetContext(ctx, &fk, "PRAGMA foreign_keys"); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Error("foreign keys should be enabled")
	}
}

func TestNewSQLiteFile(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "wellbeing.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer db.Close()

	tests := []struct {
		pragma string
		want   string
	}{
		{"PRAGMA foreign_keys", "1"},
		{"PRAGMA busy_timeout", "5000"},
		{"PRAGMA journal_mode", "wal"},
	}
	for _, tt := range tests {
		var got string
		if err := db.GetContext(ctx, &got, tt.pragma); err != nil {
			t.Fatalf("%s: %v", tt.pragma, err)
		}
		if got != tt.want {
			t.Errorf("%s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/w.db", "/tmp/w.db?" + sqlitePragmas},
		{"file:/tmp/w.db?cache=shared", "file:/tmp/w.db?cache=shared&" + sqlitePragmas},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer client.Close()

	if _, err := NewRedis(context.Background(), "not a url"); err == nil {
		t.Error("expected parse error")
	}
}

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig(1)
	if cfg.MaxConns != 1 || cfg.MinConns != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	if DefaultPostgresConfig(0).MaxConns != 10 {
		t.Error("zero should fall back to 10")
	}
}
