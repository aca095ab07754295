package sqlitemigrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}

func TestApplyRunsOnce(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	migrations := fstest.MapFS{
		"002_seed.sql":   {Data: []byte("-- +migrate Up\nINSERT INTO items (id) VALUES ('a');\n-- +migrate Down\nDELETE FROM items;")},
		"001_create.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
		"README.md":      {Data: []byte("not sql")},
	}

	for i := 0; i < 2; i++ {
		if err := Apply(ctx, db, migrations); err != nil {
			t.Fatalf("Apply() pass %d error = %v", i, err)
		}
	}
	if n := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); n != 2 {
		t.Fatalf("recorded %d migrations, want 2", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM items"); n != 1 {
		t.Fatalf("items has %d rows, want 1", n)
	}
}

func TestApplyDoesNotRecordFailedMigration(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	migrations := fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE oops (")},
	}
	if err := Apply(ctx, db, migrations); err == nil {
		t.Fatal("Apply() error = nil, want syntax error")
	}
	if n := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); n != 0 {
		t.Fatalf("recorded %d migrations after failure", n)
	}
}

func TestUpSection(t *testing.T) {
	got := UpSection("-- header\n-- +migrate Up\nSELECT 1;\n-- +migrate Down\nSELECT 2;")
	if got != "\nSELECT 1;\n" {
		t.Fatalf("UpSection() = %q", got)
	}
	if got := UpSection("SELECT 3;"); got != "SELECT 3;" {
		t.Fatalf("UpSection() without markers = %q", got)
	}
}
