package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"outreach-engine/internal/backend"
	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/export"
	"outreach-engine/internal/history"
	"outreach-engine/internal/httpapi"
	"outreach-engine/internal/scheduler"
	"outreach-engine/internal/secrets"
	"outreach-engine/internal/session"
	"outreach-engine/internal/store"
	"outreach-engine/internal/wizard"
)

const (
	envDataDir       = "OUTREACH_DATA_DIR"
	envShutdownToken = "OUTREACH_SHUTDOWN_TOKEN"
)

func main() {
	// Engine data dir: use env if provided (the desktop shell passes one), else local folder.
	dataDir := os.Getenv(envDataDir)
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock data dir: %v", err)
	}
	if !locked {
		log.Fatalf("another engine is already running on %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Printf("level=warn msg=\"config\" detail=%q", w)
	}
	if !vr.OK() {
		log.Fatalf("config invalid (%s): %v", userCfgPath, vr.Errors)
	}
	cfgVal.Store(cfg)

	db, err := store.Open(filepath.Join(dataDir, "outreach.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	hub := events.NewHub()

	tokens := secrets.NewTokenStore(
		cfg.Auth.KeyringService,
		secrets.AccountForBackend(cfg.Backend.BaseURL),
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
	)
	client, err := backend.NewClient(backend.Options{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
		Limiter: backend.NewHostLimiter(cfg.Backend.RatePerSec, cfg.Backend.Burst),
		Tokens:  tokens,
	})
	if err != nil {
		log.Fatal(err)
	}
	authSvc := backend.AuthService{C: client}
	emailSvc := backend.EmailService{C: client}
	historySvc := backend.HistoryService{C: client}

	registry := wizard.NewRegistry(func(id string) *wizard.Wizard {
		return wizard.New(id, emailSvc, emailSvc,
			wizard.WithNotifier(events.Toaster{Hub: hub, Scope: id}),
			wizard.WithOnChange(func(st wizard.State) {
				hub.Emit("", events.TypeWizardStep, map[string]any{
					"id": st.ID, "step": st.Step, "generation": st.Generation,
				})
			}),
		)
	})

	browser := history.NewBrowser(cfg.History.PageSize)

	sess := session.New(authSvc, tokens, db.Pool)
	sess.OnChange = func(u domain.User, signedIn bool) {
		if !signedIn {
			registry.RemoveAll()
			browser.Clear()
		}
		hub.Emit("", events.TypeSession, map[string]any{"authenticated": signedIn, "userId": u.ID})
	}

	loader := &history.Loader{
		Fetch:   historySvc,
		DB:      db.Pool,
		Browser: browser,
		Notify:  events.Toaster{Hub: hub, Scope: "history"},
		UserID:  sess.UserID,
	}

	exportDir := cfg.App.ExportDir
	if !filepath.IsAbs(exportDir) {
		exportDir = filepath.Join(dataDir, exportDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	if err := sess.Init(initCtx); err != nil {
		log.Printf("level=warn msg=\"session restore failed\" err=%q", err.Error())
	}
	cancel()

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Store:       db,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		OnConfigReload: func(next config.Config) {
			if next.Backend.BaseURL != cfg.Backend.BaseURL || next.App.Port != cfg.App.Port {
				log.Printf("level=info msg=\"config saved; restart to apply backend/port changes\"")
			}
		},
		Session:  sess,
		Registry: registry,
		History:  browser,
		Loader:   loader,
		Saver:    historySvc,
		Exporter: export.Exporter{Dir: exportDir, DB: db.Pool},
	})

	shutdownToken := os.Getenv(envShutdownToken)
	if shutdownToken == "" {
		if shutdownToken, err = randomToken(16); err != nil {
			log.Fatal(err)
		}
	}
	if err := writeTokenFile(filepath.Join(dataDir, "engine.token"), shutdownToken); err != nil {
		log.Fatal(err)
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	srv := &http.Server{
		Handler:           httpapi.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&shutdownToken, stop))
	log.Printf("level=info msg=\"engine listening\" addr=http://%s data_dir=%s backend=%s", addr, dataDir, cfg.Backend.BaseURL)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	g.Go(func() error {
		return scheduler.Run(gctx,
			scheduler.Job{
				Name:     "reverify",
				Interval: time.Duration(cfg.Auth.VerifyMinutes) * time.Minute,
				Delay:    true,
				Task:     sess.Reverify,
			},
			scheduler.Job{
				Name:     "prune-wizards",
				Interval: time.Minute,
				Delay:    true,
				Task: func(context.Context) error {
					idle := time.Duration(cfgVal.Load().(config.Config).Wizard.IdleMinutes) * time.Minute
					if n := registry.Prune(idle); n > 0 {
						log.Printf("level=info msg=\"pruned idle wizards\" count=%d", n)
					}
					return nil
				},
			},
			scheduler.Job{
				Name:     "history-cache-cleanup",
				Interval: 6 * time.Hour,
				Task: func(ctx context.Context) error {
					days := cfgVal.Load().(config.Config).History.CacheDays
					n, err := store.CleanupOldEmails(ctx, db.Pool, time.Duration(days)*24*time.Hour)
					if n > 0 {
						log.Printf("level=info msg=\"history cache cleanup\" deleted=%d", n)
					}
					return err
				},
			},
		)
	})

	if err := g.Wait(); err != nil {
		log.Printf("level=error msg=\"engine stopped\" err=%q", err.Error())
		os.Exit(1)
	}
	log.Printf("level=info msg=\"engine stopped\"")
}
