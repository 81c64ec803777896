package runstore

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"pipescope/pkg/model"
)

func createResultsDB(t *testing.T, path string, rows [][3]string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE run_results (
		unique_id    TEXT NOT NULL,
		status       TEXT NOT NULL,
		message      TEXT,
		completed_at TIMESTAMP
	)`)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		var ts any
		if r[2] != "" {
			parsed, err := time.Parse(time.RFC3339, r[2])
			if err != nil {
				t.Fatal(err)
			}
			ts = parsed
		}
		if _, err := db.Exec(
			`INSERT INTO run_results (unique_id, status, message, completed_at) VALUES (?, ?, NULL, ?)`,
			r[0], r[1], ts,
		); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadSQLiteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	createResultsDB(t, path, [][3]string{
		{"model.shop.orders", "success", "2026-08-20T10:00:00Z"},
		{"model.shop.stg_orders", "error", "2026-08-20T10:00:00Z"},
	})

	got, err := loadSQLiteResults(path)
	if err != nil {
		t.Fatalf("loadSQLiteResults() error = %v", err)
	}
	if got["model.shop.orders"].Kind != model.StatusSuccess {
		t.Errorf("orders = %v, want success", got["model.shop.orders"].Kind)
	}
	if got["model.shop.stg_orders"].Kind != model.StatusError {
		t.Errorf("stg_orders = %v, want error", got["model.shop.stg_orders"].Kind)
	}
}

func TestLoadSQLiteResultsKeepsLatestPerNode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	createResultsDB(t, path, [][3]string{
		{"model.shop.orders", "error", "2026-08-19T10:00:00Z"},
		{"model.shop.orders", "success", "2026-08-20T10:00:00Z"},
	})

	got, err := loadSQLiteResults(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want the latest per node only", len(got))
	}
	st := got["model.shop.orders"]
	if st.Kind != model.StatusSuccess {
		t.Errorf("kind = %v, want the newer success row", st.Kind)
	}
}

func TestLoadSQLiteResultsMissingFile(t *testing.T) {
	if _, err := loadSQLiteResults(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Fatal("missing database opened without error")
	}
}
