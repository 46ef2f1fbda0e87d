package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/export"
	"outreach-engine/internal/history"
	"outreach-engine/internal/session"
	"outreach-engine/internal/store"
	"outreach-engine/internal/wizard"
)

// EmailSaver stores a generated email in the remote history.
type EmailSaver interface {
	SaveEmail(ctx context.Context, email domain.GeneratedEmail) error
}

type Deps struct {
	DB    *sql.DB
	Store *store.DB // checkpoint; optional

	Hub *events.Hub

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
	// OnConfigReload runs after PUT /config made a new config live.
	OnConfigReload func(config.Config)

	Session  *session.Session
	Registry *wizard.Registry
	History  *history.Browser
	Loader   *history.Loader
	Saver    EmailSaver
	Exporter export.Exporter
}
