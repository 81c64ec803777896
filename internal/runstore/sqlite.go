package runstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"pipescope/pkg/model"
)

// loadSQLiteResults reads the latest result per node from a results.db
// database. The schema is one row per node invocation:
//
//	CREATE TABLE run_results (
//	    unique_id    TEXT NOT NULL,
//	    status       TEXT NOT NULL,
//	    message      TEXT,
//	    completed_at TIMESTAMP
//	);
func loadSQLiteResults(path string) (map[string]model.RunStatus, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	query := `
		SELECT unique_id, status, message, MAX(completed_at)
		FROM run_results
		GROUP BY unique_id
	`
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query run results: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.RunStatus)
	for rows.Next() {
		var uid, status string
		var message sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&uid, &status, &message, &completedAt); err != nil {
			continue
		}
		st := model.RunStatus{Kind: statusKind(status)}
		if message.Valid {
			st.Message = message.String
		}
		if completedAt.Valid {
			st.CompletedAt = completedAt.Time
		} else {
			st.CompletedAt = time.Time{}
		}
		out[uid] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run results: %w", err)
	}
	return out, nil
}
