package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type ExportRecord struct {
	ID         int64  `json:"id"`
	EmailID    string `json:"emailId"`
	Format     string `json:"format"`
	Path       string `json:"path"`
	Bytes      int64  `json:"bytes"`
	ExportedAt string `json:"exportedAt"`
}

func RecordExport(ctx context.Context, db *sql.DB, r ExportRecord) (ExportRecord, error) {
	if r.ExportedAt == "" {
		r.ExportedAt = time.Now().UTC().Format(tsLayout)
	}
	res, err := db.ExecContext(ctx, `
INSERT INTO exports (email_id, format, path, bytes, exported_at)
VALUES (?, ?, ?, ?, ?);`,
		r.EmailID, r.Format, r.Path, r.Bytes, r.ExportedAt,
	)
	if err != nil {
		return ExportRecord{}, fmt.Errorf("record export: %w", err)
	}
	r.ID, _ = res.LastInsertId()
	return r, nil
}

// ListExports returns the newest exports first.
func ListExports(ctx context.Context, db *sql.DB, limit int) ([]ExportRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, email_id, format, path, bytes, exported_at
FROM exports
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var r ExportRecord
		if err := rows.Scan(&r.ID, &r.EmailID, &r.Format, &r.Path, &r.Bytes, &r.ExportedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
