package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"outreach-engine/internal/domain"
)

// GetPreferences returns the locally saved preferences of userID, ok=false if none.
func GetPreferences(ctx context.Context, db *sql.DB, userID string) (domain.Preferences, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Preferences{}, false, nil
	}

	var p domain.Preferences
	err := db.QueryRowContext(ctx,
		`SELECT tone, language, email_length FROM preferences WHERE user_id = ? LIMIT 1;`,
		userID,
	).Scan(&p.Tone, &p.Language, &p.EmailLength)

	if err == sql.ErrNoRows {
		return domain.Preferences{}, false, nil
	}
	if err != nil {
		return domain.Preferences{}, false, err
	}
	return p, true, nil
}

func UpsertPreferences(ctx context.Context, db *sql.DB, userID string, p domain.Preferences) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}

	_, err := db.ExecContext(ctx, `
INSERT INTO preferences(user_id, tone, language, email_length, updated_at)
VALUES(?,?,?,?,?)
ON CONFLICT(user_id) DO UPDATE SET
  tone = excluded.tone,
  language = excluded.language,
  email_length = excluded.email_length,
  updated_at = excluded.updated_at;
`, userID, string(p.Tone), string(p.Language), string(p.EmailLength), time.Now().UTC().Format(tsLayout))

	return err
}
