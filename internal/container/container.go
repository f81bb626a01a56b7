// Package container builds the process-wide components from configuration.
// Everything it owns is released by Close.
package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-management-api/config"
	"github.com/oksasatya/project-management-api/internal/application"
	"github.com/oksasatya/project-management-api/internal/infrastructure/ai"
	pginfra "github.com/oksasatya/project-management-api/internal/infrastructure/postgres"
	"github.com/oksasatya/project-management-api/internal/infrastructure/redisstore"
	"github.com/oksasatya/project-management-api/internal/infrastructure/search"
	handlers "github.com/oksasatya/project-management-api/internal/interface/http"
	"github.com/oksasatya/project-management-api/internal/router"
	"github.com/oksasatya/project-management-api/pkg/helpers"
	"github.com/oksasatya/project-management-api/pkg/mailer"
	tpl "github.com/oksasatya/project-management-api/pkg/mailer/templates"
)

type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	PGPool *pgxpool.Pool
	Redis  *redis.Client
	GCS    *storage.Client
	ES     *elasticsearch.Client
	Rabbit *helpers.RabbitPublisher
	JWT    *helpers.JWTManager
	Mailer mailer.Sender

	Auth     *application.AuthService
	Users    *application.UserService
	Projects *application.ProjectService
	Teams    *application.TeamService

	closers []func()
}

// New connects every backing service named in cfg. Postgres, Redis and the
// configured mail driver are required; storage, search and AI are optional and
// only logged when unavailable.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c := &Container{Config: cfg, Logger: logger}
	if err := c.init(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) init(ctx context.Context) error {
	cfg := c.Config

	jwtm, err := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	c.JWT = jwtm

	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	c.Redis = rdb
	c.onClose(func() { _ = rdb.Close() })

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
	})
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	c.PGPool = pool
	c.onClose(pool.Close)

	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, c.Logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := c.initMailer(); err != nil {
		return err
	}

	users := pginfra.NewUserRepository(pool)
	c.Auth = application.NewAuthService(
		users,
		redisstore.NewTokenCache(rdb),
		helpers.NewPasswordHasher(cfg.BcryptCost),
		jwtm,
		c.Mailer,
		c.Logger,
		application.AuthConfig{
			ClientURL:           cfg.ClientURL,
			VerifyTokenTTL:      cfg.VerifyTokenTTL,
			ResetTokenTTL:       cfg.ResetTokenTTL,
			ConcealUnknownEmail: cfg.ConcealUnknownEmail,
			Brand: tpl.Brand{
				AppName:        cfg.AppName,
				CompanyName:    cfg.CompanyName,
				CompanyAddress: cfg.CompanyAddress,
				LogoURL:        cfg.LogoURL,
				SupportURL:     cfg.SupportURL,
			},
		},
	)

	c.Users = application.NewUserService(users, c.initStorage(ctx), c.Logger)
	c.Projects = application.NewProjectService(
		pginfra.NewProjectRepository(pool),
		pginfra.NewTaskRepository(pool),
		c.initSearch(ctx),
		c.initAI(ctx),
		c.Logger,
	)
	c.Teams = application.NewTeamService(pginfra.NewTeamRepository(pool), c.Logger)
	return nil
}

func (c *Container) initMailer() error {
	cfg := c.Config
	switch cfg.MailDriver {
	case "mailgun":
		c.Mailer = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	case "queue":
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		c.Rabbit = pub
		c.onClose(pub.Close)
		c.Mailer = mailer.NewQueueSender(pub)
	default:
		c.Mailer = mailer.NewLogSender(c.Logger)
	}
	helpers.LogInfo(c.Logger, "mail driver ready", logrus.Fields{"driver": cfg.MailDriver})
	return nil
}

// initStorage returns nil when no bucket is configured so avatar uploads are
// reported as unavailable.
func (c *Container) initStorage(ctx context.Context) application.ObjectUploader {
	if c.Config.GCSBucket == "" {
		return nil
	}
	client, err := helpers.NewGCSClient(ctx, c.Config.GCSCredentialsJSONPath)
	if err != nil {
		helpers.LogWarn(c.Logger, "gcs disabled", err, nil)
		return nil
	}
	c.GCS = client
	c.onClose(func() { _ = client.Close() })
	return helpers.NewGCSUploader(client, c.Config.GCSBucket)
}

func (c *Container) initSearch(ctx context.Context) application.ProjectIndexer {
	addrs := c.Config.ESAddrs()
	if len(addrs) == 0 {
		return nil
	}
	es, err := helpers.NewESClient(addrs, c.Config.ElasticsearchUser, c.Config.ElasticsearchPass)
	if err == nil {
		err = helpers.PingES(ctx, es)
	}
	if err != nil {
		helpers.LogWarn(c.Logger, "elasticsearch disabled", err, nil)
		return nil
	}
	idx := search.NewProjectIndex(es, c.Config.ESProjectsIndex, c.Logger)
	if err := idx.EnsureIndex(ctx); err != nil {
		helpers.LogWarn(c.Logger, "elasticsearch disabled", err, logrus.Fields{"index": c.Config.ESProjectsIndex})
		return nil
	}
	c.ES = es
	return idx
}

func (c *Container) initAI(ctx context.Context) application.SummaryGenerator {
	if c.Config.GeminiAPIKey == "" {
		return nil
	}
	g, err := ai.NewGemini(ctx, c.Config.GeminiAPIKey, c.Config.GeminiModel)
	if err != nil {
		helpers.LogWarn(c.Logger, "ai summaries disabled", err, nil)
		return nil
	}
	return g
}

// RouterDeps returns the handlers and authenticator for router.New.
func (c *Container) RouterDeps() router.Deps {
	return router.Deps{
		Auth:          handlers.NewAuthHandler(c.Auth, c.Logger),
		Users:         handlers.NewUserHandler(c.Users, c.Logger),
		Projects:      handlers.NewProjectHandler(c.Projects, c.Logger),
		Teams:         handlers.NewTeamHandler(c.Teams, c.Logger),
		Authenticator: c.Auth,
		Logger:        c.Logger,
		AccessLog:     c.Config.HTTPLogEnabled,
		DebugMetrics:  c.Config.DebugMetricsEnabled,
	}
}

func (c *Container) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
