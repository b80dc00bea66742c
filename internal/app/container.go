package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Walehamdi1/QNA/internal/cache"
	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/metrics"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository"
	"github.com/Walehamdi1/QNA/internal/repository/db"
	"github.com/Walehamdi1/QNA/internal/service"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

const (
	tokenPurgeInterval  = 24 * time.Hour
	lockCleanupInterval = 10 * time.Minute
	dbStatsInterval     = 30 * time.Second
)

// Container holds application dependencies / Contient les dépendances de l'application
type Container struct {
	DB       *sql.DB
	Config   *config.Config
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	UserRepo          ports.UserRepository
	RefreshTokenStore ports.RefreshTokenStore
	FormRepo          ports.FormulaireRepository
	QuestionRepo      ports.QuestionRepository
	ReponseClientRepo ports.ReponseClientRepository
	ReviewRepo        ports.ReponseFournisseurRepository
	FormCache         *cache.FormCache

	UserSvc       *service.UserService
	AuthSvc       *service.AuthService
	PasswordSvc   *service.PasswordService
	FormulaireSvc *service.FormulaireService
	QuestionSvc   *service.QuestionService
	ReponseSvc    *service.ReponseClientService
	ReviewSvc     *service.ReponseFournisseurService

	emailSender ports.EmailSender
	ctxCancel   context.CancelFunc
}

// Option customizes container construction / Personnalise la construction du conteneur
type Option func(*Container)

// WithEmailSender replaces the SMTP sender / Remplace l'expéditeur SMTP
func WithEmailSender(sender ports.EmailSender) Option {
	return func(c *Container) { c.emailSender = sender }
}

// ConnectDatabase opens the configured database without migrating / Ouvre la base sans migrer
func ConnectDatabase(cfg *config.Config) (*sql.DB, db.DatabaseType, error) {
	dbType := db.ParseDatabaseType(cfg.Database.Type)

	database, err := db.Open(db.DatabaseConfig{
		Type:            dbType,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, dbType, fmt.Errorf("failed to initialize %s database: %w", dbType, err)
	}
	return database, dbType, nil
}

// OpenDatabase connects and migrates the configured database / Connecte et migre la base configurée
func OpenDatabase(cfg *config.Config) (*sql.DB, error) {
	database, dbType, err := ConnectDatabase(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("applying database migrations", "type", dbType)
	if err := db.MigrateUp(database, dbType, cfg.Database.MigrationsPath); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// NewContainer initializes application container / Initialise le conteneur de l'application
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	// Private registry so several containers can coexist in tests
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.NewMetrics(c.Registry)

	database, err := OpenDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}
	c.DB = database

	c.initRepositories()

	if err := c.initServices(); err != nil {
		c.Close()
		return nil, fmt.Errorf("service init: %w", err)
	}

	if cfg.Seed.Enabled {
		if _, err := c.UserSvc.SeedDefaults(context.Background()); err != nil {
			c.Close()
			return nil, fmt.Errorf("seed default accounts: %w", err)
		}
	}

	c.updateDatabaseMetrics()
	return c, nil
}

// initRepositories initializes repositories / Initialise les repositories
func (c *Container) initRepositories() {
	adapter := repository.NewAdapter(c.DB, c.Config.Database.Type)

	c.UserRepo = adapter.UserRepository()
	c.RefreshTokenStore = adapter.RefreshTokenStore()
	c.FormRepo = adapter.FormulaireRepository()
	c.QuestionRepo = adapter.QuestionRepository()
	c.ReponseClientRepo = adapter.ReponseClientRepository()
	c.ReviewRepo = adapter.ReponseFournisseurRepository()
	c.FormCache = cache.NewFormCache(c.Config.Cache.TTL, c.Metrics)

	slog.Info("repositories initialized", "type", db.ParseDatabaseType(c.Config.Database.Type))
}

// initServices initializes application services / Initialise les services applicatifs
func (c *Container) initServices() error {
	if c.emailSender == nil {
		emailSvc, err := service.NewEmailService(c.Config.SMTP)
		if err != nil {
			return fmt.Errorf("failed to initialize email service: %w", err)
		}
		c.emailSender = emailSvc
	}

	c.UserSvc = service.NewUserService(c.UserRepo, c.RefreshTokenStore, c.FormCache, c.Config, c.Metrics)
	c.AuthSvc = service.NewAuthService(c.UserRepo, c.RefreshTokenStore, c.Config, c.DB, c.Metrics)

	var err error
	c.PasswordSvc, err = service.NewPasswordService(c.UserRepo, c.RefreshTokenStore, c.emailSender, c.Config, c.Metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize password service: %w", err)
	}

	c.FormulaireSvc = service.NewFormulaireService(c.FormRepo, c.QuestionRepo, c.UserRepo, c.FormCache)
	c.QuestionSvc = service.NewQuestionService(c.DB, c.FormRepo, c.QuestionRepo, c.FormCache, c.Metrics)
	c.ReponseSvc = service.NewReponseClientService(c.DB, c.FormRepo, c.QuestionRepo, c.UserRepo, c.ReponseClientRepo, c.Metrics)
	c.ReviewSvc = service.NewReponseFournisseurService(c.DB, c.FormRepo, c.ReponseClientRepo, c.UserRepo, c.ReviewRepo, c.Metrics)
	return nil
}

// Start launches background tasks until Close / Lance les tâches de fond jusqu'à Close
func (c *Container) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.ctxCancel = cancel

	go c.runPeriodic(ctx, "token_purge", tokenPurgeInterval, c.purgeExpiredTokens)
	go c.runPeriodic(ctx, "db_stats", dbStatsInterval, func(context.Context) { c.updateDatabaseMetrics() })
	go c.AuthSvc.CleanupInactiveLocks(ctx, lockCleanupInterval)

	if c.Config.Backup.Enabled && db.ParseDatabaseType(c.Config.Database.Type) == db.SQLite {
		slog.Info("automatic database backup enabled",
			"interval", c.Config.Backup.Interval, "retention_days", c.Config.Backup.RetentionDays)
		go c.runPeriodic(ctx, "database_backup", c.Config.Backup.Interval, func(ctx context.Context) {
			if _, err := c.Backup(ctx); err != nil {
				slog.Error("backup failed", "err", err)
			}
			if err := c.cleanOldBackups(); err != nil {
				slog.Error("backup cleanup failed", "err", err)
			}
		})
	}
}

// runPeriodic calls task every interval until ctx is done / Appelle task à chaque intervalle jusqu'à l'arrêt
func (c *Container) runPeriodic(ctx context.Context, name string, interval time.Duration, task func(context.Context)) {
	c.Metrics.SetBackgroundTaskStatus(name, true)
	defer c.Metrics.SetBackgroundTaskStatus(name, false)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			task(ctx)
		case <-ctx.Done():
			slog.Debug("background task stopped", "task", name)
			return
		}
	}
}

func (c *Container) purgeExpiredTokens(ctx context.Context) {
	n, err := c.RefreshTokenStore.PurgeExpired(ctx, time.Now())
	if err != nil {
		slog.Error("refresh token purge failed", "err", err)
		return
	}
	slog.Info("expired refresh tokens purged", "count", n)
}

// updateDatabaseMetrics updates database metrics / Met à jour les métriques de la BD
func (c *Container) updateDatabaseMetrics() {
	stats := c.DB.Stats()
	c.Metrics.UpdateDatabaseConnections(stats.OpenConnections)
}

// Close performs graceful shutdown / Effectue un arrêt gracieux
func (c *Container) Close() error {
	if c.ctxCancel != nil {
		c.ctxCancel()
	}
	if c.DB != nil {
		slog.Info("closing database")
		return c.DB.Close()
	}
	return nil
}
