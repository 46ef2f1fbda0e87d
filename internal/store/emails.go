package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"outreach-engine/internal/domain"
)

// sortable UTC layout; lexical order == chronological order
const tsLayout = "2006-01-02T15:04:05Z"

// ReplaceEmails overwrites the cached history of userID with emails, keeping
// the order the backend returned them in.
func ReplaceEmails(ctx context.Context, db *sql.DB, userID string, emails []domain.GeneratedEmail) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM emails WHERE user_id = ?;`, userID); err != nil {
		return fmt.Errorf("clear cached emails: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO emails (user_id, id, position, subject, company, job_title, timestamp, payload, cached_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(tsLayout)
	for i, e := range emails {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode email %s: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			userID, e.ID, i, e.Subject, e.JobListing.Company, e.JobListing.Title, e.Timestamp, string(payload), now,
		); err != nil {
			return fmt.Errorf("insert email %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// ListEmails returns the cached history of userID in fetch order.
func ListEmails(ctx context.Context, db *sql.DB, userID string) ([]domain.GeneratedEmail, error) {
	rows, err := db.QueryContext(ctx, `
SELECT payload
FROM emails
WHERE user_id = ?
ORDER BY position ASC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GeneratedEmail
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var e domain.GeneratedEmail
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func CleanupOldEmails(ctx context.Context, db *sql.DB, olderThan time.Duration) (deleted int64, err error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(tsLayout)
	res, err := db.ExecContext(ctx, `DELETE FROM emails WHERE cached_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old emails: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
