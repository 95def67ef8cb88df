package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quiz-console/internal/domain"
	"quiz-console/internal/infra/sqlite/migrations"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

// UserStore keeps registered users in SQLite. username_norm (the lower-cased
// username) is the primary key, which makes uniqueness case-insensitive.
type UserStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenUserStore opens dsn and applies pending migrations.
func OpenUserStore(dsn string, logger *slog.Logger) (*UserStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &UserStore{db: db, logger: logger}
	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *UserStore) Close() error { return s.db.Close() }

// ApplyMigrations applies the embedded schema migrations.
func (s *UserStore) ApplyMigrations() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	instance, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}
	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *UserStore) Register(ctx context.Context, user domain.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username_norm = ?`,
		domain.NormalizeName(user.Username),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if exists > 0 {
		return domain.ErrDuplicateUser
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (username_norm, username, password, date_of_birth) VALUES (?, ?, ?, ?)`,
		domain.NormalizeName(user.Username), user.Username, user.Password, domain.FormatDate(user.DateOfBirth),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return tx.Commit()
}

func (s *UserStore) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	var (
		user domain.User
		dob  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password, date_of_birth FROM users WHERE username_norm = ?`,
		domain.NormalizeName(username),
	).Scan(&user.Username, &user.Password, &dob)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if user.Password != password {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	user.DateOfBirth, err = domain.ParseDate(dob)
	if err != nil {
		s.logger.Warn("malformed user record", "user", user.Username, "date_of_birth", dob)
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, username, password string) error {
	return s.exec(ctx, `UPDATE users SET password = ? WHERE username_norm = ?`, password, domain.NormalizeName(username))
}

func (s *UserStore) UpdateDateOfBirth(ctx context.Context, username string, dob time.Time) error {
	return s.exec(ctx, `UPDATE users SET date_of_birth = ? WHERE username_norm = ?`, domain.FormatDate(dob), domain.NormalizeName(username))
}

func (s *UserStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
