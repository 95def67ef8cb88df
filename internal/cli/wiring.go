package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"quiz-console/internal/app"
	"quiz-console/internal/config"
	"quiz-console/internal/infra/file"
	"quiz-console/internal/infra/memory"
	"quiz-console/internal/infra/postgres"
	redisstore "quiz-console/internal/infra/redis"
	"quiz-console/internal/infra/sqlite"
	"quiz-console/internal/logging"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

// env holds the wired services and everything that must be closed on exit.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	accounts *app.AccountService
	quizzes  *app.QuizService
	closers  []func() error

	redis *redis.Client
}

func (r *env) onClose(fn func() error) { r.closers = append(r.closers, fn) }

// Close releases resources in reverse order of acquisition.
func (r *env) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func loadConfig(configPath, logLevel string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", configPath, err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// newEnv loads config and sets up logging; stores are added by the caller.
func newEnv(configPath, logLevel string) (*env, error) {
	cfg, err := loadConfig(configPath, logLevel)
	if err != nil {
		return nil, err
	}
	rt := &env{cfg: cfg}

	var out io.Writer
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		rt.onClose(f.Close)
	}
	rt.logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: out})
	return rt, nil
}

// build wires the configured backends into the account and quiz services.
func build(ctx context.Context, configPath, logLevel string) (*env, error) {
	rt, err := newEnv(configPath, logLevel)
	if err != nil {
		return nil, err
	}
	if err := rt.wire(ctx); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

func (r *env) wire(ctx context.Context) error {
	cfg := r.cfg

	if usesPostgres(cfg) {
		if err := r.migratePostgres(ctx); err != nil {
			return err
		}
	}

	users, err := r.userRepository()
	if err != nil {
		return err
	}
	loader, err := r.catalogLoader(ctx)
	if err != nil {
		return err
	}
	ledger, err := r.resultLedger(ctx)
	if err != nil {
		return err
	}

	if cfg.Redis.Addr != "" && cfg.Redis.CacheTTL != "" {
		client, err := r.redisClient(ctx)
		if err != nil {
			return err
		}
		cacheTTL := config.TTLDuration(cfg.Redis.CacheTTL, 10*time.Minute)
		loader = redisstore.NewCatalogCache(client, loader, "", cacheTTL, r.logger)
	}

	ttl := config.TTLDuration(cfg.Quiz.CatalogTTL, 0)
	bank := memory.NewQuestionBank(loader, ttl, r.logger)

	r.accounts = app.NewAccountService(users, r.logger)
	r.quizzes = app.NewQuizService(bank, ledger,
		app.WithMaxQuestions(cfg.Quiz.MaxQuestions),
		app.WithLogger(r.logger),
	)
	return nil
}

func (r *env) userRepository() (app.UserRepository, error) {
	switch r.cfg.Storage.Users {
	case config.BackendFile, "":
		return file.OpenUserStore(r.cfg.Files.Users, r.logger)
	case config.BackendSQLite:
		store, err := sqlite.OpenUserStore(r.cfg.SQLite.Path, r.logger)
		if err != nil {
			return nil, err
		}
		r.onClose(store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown users backend %q", r.cfg.Storage.Users)
	}
}

func (r *env) catalogLoader(ctx context.Context) (memory.CatalogLoader, error) {
	switch r.cfg.Storage.Catalog {
	case config.BackendFile, "":
		return file.NewCatalogLoader(r.cfg.Files.Catalog, r.logger), nil
	case config.BackendPostgres:
		pool, err := r.pgxPool(ctx)
		if err != nil {
			return nil, err
		}
		return postgres.NewCatalogLoader(pool, r.logger), nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", r.cfg.Storage.Catalog)
	}
}

func (r *env) resultLedger(ctx context.Context) (app.ResultLedger, error) {
	switch r.cfg.Storage.Results {
	case config.BackendFile, "":
		return file.OpenResultLedger(r.cfg.Files.Results, r.logger)
	case config.BackendMemory:
		return memory.NewResultLedger(), nil
	case config.BackendRedis:
		client, err := r.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return redisstore.NewResultLedger(client, r.cfg.Redis.Key, r.logger), nil
	case config.BackendPostgres:
		return postgres.NewResultLedger(r.bunDB()), nil
	default:
		return nil, fmt.Errorf("unknown results backend %q", r.cfg.Storage.Results)
	}
}

// redisClient connects on first use and shares the client afterwards.
func (r *env) redisClient(ctx context.Context) (*redis.Client, error) {
	if r.redis != nil {
		return r.redis, nil
	}
	if r.cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis addr not configured")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     r.cfg.Redis.Addr,
		Password: r.cfg.Redis.Password,
		DB:       r.cfg.Redis.DB,
	})
	r.onClose(client.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", r.cfg.Redis.Addr, err)
	}
	r.redis = client
	return client, nil
}

func (r *env) pgxPool(ctx context.Context) (*pgxpool.Pool, error) {
	if r.cfg.Postgres.URL == "" {
		return nil, fmt.Errorf("postgres url not configured")
	}
	pool, err := pgxpool.Connect(ctx, r.cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	r.onClose(func() error { pool.Close(); return nil })
	return pool, nil
}

func (r *env) bunDB() *bun.DB {
	db := postgres.OpenBun(r.cfg.Postgres.URL)
	r.onClose(db.Close)
	return db
}

func (r *env) migratePostgres(ctx context.Context) error {
	if r.cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	db := postgres.OpenBun(r.cfg.Postgres.URL)
	defer db.Close()

	group, err := postgres.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if !group.IsZero() {
		r.logger.Info("migrations applied", "group", group.String())
	}
	return nil
}

func usesPostgres(cfg config.Config) bool {
	return cfg.Storage.Catalog == config.BackendPostgres || cfg.Storage.Results == config.BackendPostgres
}
