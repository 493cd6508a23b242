package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/sanandreas/govportal/internal/api"
	"github.com/sanandreas/govportal/internal/api/handler"
	"github.com/sanandreas/govportal/internal/auth"
	"github.com/sanandreas/govportal/internal/blob"
	"github.com/sanandreas/govportal/internal/complaint"
	"github.com/sanandreas/govportal/internal/config"
	"github.com/sanandreas/govportal/internal/db"
	"github.com/sanandreas/govportal/internal/directory"
	"github.com/sanandreas/govportal/internal/health"
	"github.com/sanandreas/govportal/internal/links"
	"github.com/sanandreas/govportal/internal/model"
	"github.com/sanandreas/govportal/internal/notify"
	"github.com/sanandreas/govportal/internal/observability"
	"github.com/sanandreas/govportal/internal/profile"
	"github.com/sanandreas/govportal/internal/ratelimit"
	"github.com/sanandreas/govportal/internal/seed"
	"github.com/sanandreas/govportal/internal/version"
	"github.com/sanandreas/govportal/internal/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServeCommand creates the "serve" command that runs the HTTP server.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability -------------------------------------------------------
	obs, log, err := observability.New(ctx, &observability.Config{
		ServiceName:    "govportal",
		ServiceVersion: version.Version,
		LogLevel:       cfg.Log.Level,
		LogFormat:      cfg.Log.Format,
		OTLPEndpoint:   cfg.OTel.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer obs.Shutdown(context.Background())
	slog.SetDefault(log)
	log.Info("starting govportal", "version", version.Version, "commit", version.Commit, "db_driver", cfg.DB.Driver)

	// --- Database ------------------------------------------------------------
	// db.New opens the connection, runs migrations (AutoMigrate for SQLite,
	// golang-migrate for Postgres), and returns the GORM handle plus an
	// optional pgxpool (non-nil only for postgres, used by River).
	gormDB, pool, err := db.New(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if pool != nil {
		defer pool.Close()
	}
	log.Info("database ready", "driver", cfg.DB.Driver)

	// --- Seed superadmin -----------------------------------------------------
	if err := seed.EnsureSuperadmin(ctx, gormDB, seed.SuperadminOptions{
		Email:    cfg.App.SeedSuperadminEmail,
		Password: cfg.App.SeedSuperadminPassword,
	}, log); err != nil {
		return fmt.Errorf("seed superadmin: %w", err)
	}

	// --- Worker queue --------------------------------------------------------
	// River migrations only run when Postgres is available.
	if pool != nil {
		if err := worker.MigrateRiver(ctx, pool); err != nil {
			return fmt.Errorf("river migrations: %w", err)
		}
		log.Info("river migrations applied")
	}

	refreshStore := auth.NewRefreshStore(gormDB, cfg.JWT.RefreshTTL)
	wq, err := worker.New(ctx, pool, cfg.DB.Driver, cfg.Worker.Concurrency, refreshStore, time.Hour, log)
	if err != nil {
		return fmt.Errorf("create worker: %w", err)
	}
	if err := wq.Start(ctx); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := wq.Stop(stopCtx); err != nil {
			log.Error("worker stop error", "err", err)
		}
	}()

	// --- Lookup throttle -----------------------------------------------------
	// Redis-backed when REDIS_ADDR is set; otherwise a per-process fallback.
	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.App.LookupRateLimit, cfg.App.LookupRateWindow)
		log.Info("lookup throttle using redis", "addr", cfg.Redis.Addr)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.App.LookupRateLimit, cfg.App.LookupRateWindow)
		log.Info("lookup throttle using in-process window")
	}

	// --- Blob storage --------------------------------------------------------
	blobStore, err := blob.NewDiskStore(cfg.Blob.Dir, cfg.Blob.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	// --- Link settings -------------------------------------------------------
	linkStore, err := links.NewStore(gormDB)
	if err != nil {
		return fmt.Errorf("load link defaults: %w", err)
	}

	// --- Changelog -----------------------------------------------------------
	changelogHandler, err := handler.NewChangelogHandler(cfg.Changelog.Path)
	if err != nil {
		return fmt.Errorf("parse changelog: %w", err)
	}

	// --- HTTP routes ---------------------------------------------------------
	handlers := api.Handlers{
		Health:        health.New(db.NewPinger(gormDB)),
		Auth:          handler.NewAuthHandler(gormDB, cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL),
		Complaints:    handler.NewComplaintHandler(complaint.NewService(gormDB), limiter),
		Notifications: handler.NewNotificationHandler(notify.New(gormDB)),
		Settings:      handler.NewSettingsHandler(linkStore),
		Changelog:     changelogHandler,
		Profile:       handler.NewProfileHandler(profile.NewService(gormDB)),
		Upload:        handler.NewUploadHandler(blobStore, int64(cfg.Blob.MaxUploadMB)<<20),

		Announcements: handler.NewDirectoryHandler(
			directory.NewStore[model.Announcement](gormDB), "announcement",
			func(r *model.Announcement) string { return r.ID },
			func(r *model.Announcement) string { return r.Department },
			func(r *model.Announcement, d string) { r.Department = d },
		),
		Jobs: handler.NewDirectoryHandler(
			directory.NewStore[model.JobPosting](gormDB), "job_posting",
			func(r *model.JobPosting) string { return r.ID },
			func(r *model.JobPosting) string { return r.Department },
			func(r *model.JobPosting, d string) { r.Department = d },
		),
		Records: handler.NewDirectoryHandler(
			directory.NewStore[model.PublicRecord](gormDB), "public_record",
			func(r *model.PublicRecord) string { return r.ID },
			func(r *model.PublicRecord) string { return r.Department },
			func(r *model.PublicRecord, d string) { r.Department = d },
		),
		Rosters: handler.NewDirectoryHandler(
			directory.NewStore[model.RosterMember](gormDB), "roster_member",
			func(r *model.RosterMember) string { return r.ID },
			func(r *model.RosterMember) string { return r.Department },
			func(r *model.RosterMember, d string) { r.Department = d },
		),
		BarMembers: handler.NewDirectoryHandler(
			directory.NewStore[model.BarMember](gormDB), "bar_member",
			func(r *model.BarMember) string { return r.ID },
			func(r *model.BarMember) string { return r.Department },
			func(r *model.BarMember, d string) { r.Department = d },
		),
		Dockets: handler.NewDirectoryHandler(
			directory.NewStore[model.Docket](gormDB), "docket",
			func(r *model.Docket) string { return r.ID },
			func(r *model.Docket) string { return r.Department },
			func(r *model.Docket, d string) { r.Department = d },
		),
		Laws: handler.NewDirectoryHandler(
			directory.NewStore[model.Law](gormDB), "law",
			func(r *model.Law) string { return r.ID },
			func(r *model.Law) string { return r.Department },
			func(r *model.Law, d string) { r.Department = d },
		),

		UploadDir: cfg.Blob.Dir,
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, handlers, cfg.JWT.Secret)
	// Prometheus metrics endpoint
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Start server --------------------------------------------------------
	log.Info("http server listening", "addr", srv.Addr)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped cleanly")
	return nil
}
