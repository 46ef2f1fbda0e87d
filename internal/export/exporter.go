package export

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"
)

// Exporter writes rendered emails into Dir and logs each export in DB.
type Exporter struct {
	Dir string
	DB  *sql.DB // optional
}

// Save renders e and writes it atomically (tmp + rename). Nothing is
// recorded when rendering or writing fails.
func (x Exporter) Save(ctx context.Context, e domain.GeneratedEmail, f Format) (store.ExportRecord, error) {
	b, err := Render(e, f)
	if err != nil {
		return store.ExportRecord{}, err
	}
	return x.Write(ctx, e, f, b)
}

// Write stores an already rendered export of e.
func (x Exporter) Write(ctx context.Context, e domain.GeneratedEmail, f Format, b []byte) (store.ExportRecord, error) {
	if x.Dir == "" {
		return store.ExportRecord{}, fmt.Errorf("export directory not configured")
	}
	if err := os.MkdirAll(x.Dir, 0o755); err != nil {
		return store.ExportRecord{}, fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(x.Dir, Filename(e, f))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return store.ExportRecord{}, fmt.Errorf("write export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return store.ExportRecord{}, fmt.Errorf("write export: %w", err)
	}

	rec := store.ExportRecord{EmailID: e.ID, Format: string(f), Path: path, Bytes: int64(len(b))}
	if x.DB == nil {
		return rec, nil
	}
	saved, err := store.RecordExport(ctx, x.DB, rec)
	if err != nil {
		// the file is on disk; the log entry is best-effort
		log.Printf("level=warn msg=\"export not recorded\" path=%q err=%q", path, err.Error())
		return rec, nil
	}
	return saved, nil
}
