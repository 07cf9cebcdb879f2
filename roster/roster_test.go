package roster

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openMemDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	schema := `
	CREATE TABLE dispatchers (name TEXT, core INTEGER, ether TEXT);
	CREATE TABLE components (dispatcher TEXT, kind TEXT, "order" INTEGER);
	CREATE TABLE burst_parents (controller TEXT, parent_id INTEGER);

	INSERT INTO dispatchers VALUES ('book', 0, 'orders');
	INSERT INTO dispatchers VALUES ('risk', 1, 'orders');

	INSERT INTO components VALUES ('book', 'matcher', 0);
	INSERT INTO components VALUES ('book', 'logger', 1);
	INSERT INTO components VALUES ('risk', 'burst_gate', 0);

	INSERT INTO burst_parents VALUES ('risk', 42);
	INSERT INTO burst_parents VALUES ('risk', 43);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("schema exec failed: %v", err)
	}
	return db
}

func TestLoadPopulatesAllTables(t *testing.T) {
	db := openMemDB(t)
	defer db.Close()

	r, err := Load(db)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(r.Dispatchers) != 2 {
		t.Fatalf("expected 2 dispatchers, got %d", len(r.Dispatchers))
	}
	if r.Dispatchers[0].Name != "book" || r.Dispatchers[0].Core != 0 {
		t.Fatalf("unexpected first dispatcher: %+v", r.Dispatchers[0])
	}

	if len(r.Components) != 3 {
		t.Fatalf("expected 3 components, got %d", len(r.Components))
	}

	if len(r.BurstParents) != 2 {
		t.Fatalf("expected 2 burst parents, got %d", len(r.BurstParents))
	}
	if r.BurstParents[0].ParentID != 42 {
		t.Fatalf("unexpected first burst parent: %+v", r.BurstParents[0])
	}
}

func TestStaticFallbackIsUsable(t *testing.T) {
	r := Static()
	if len(r.Dispatchers) != 1 {
		t.Fatalf("expected 1 static dispatcher, got %d", len(r.Dispatchers))
	}
}
