package directory

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/new-arrivals-chi/arrivals/internal/filter"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Dialect selects the SQL flavour of the store.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect validates a driver name from configuration.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", s)
}

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) gooseDialect() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// rebind rewrites ? placeholders to $1, $2, ... for postgres.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Config selects and addresses the database.
type Config struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Open connects to the configured database.
// Use ":memory:" as the sqlite DSN for a throwaway database.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*SQLStore, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if dialect == DialectSQLite {
		if dsn == "" {
			dsn = ":memory:"
		}
		if dsn != ":memory:" && !strings.Contains(dsn, "?") {
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite && strings.HasPrefix(dsn, ":memory:") {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	return NewSQLStore(db, dialect, logger), nil
}

// NewSQLStore wraps an open connection.
// If logger is nil, a discard logger is used.
func NewSQLStore(db *sql.DB, dialect Dialect, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLStore{db: db, dialect: dialect, logger: logger}
}

// Dialect returns the store's SQL dialect.
func (s *SQLStore) Dialect() Dialect {
	return s.dialect
}

// Migrate runs all pending migrations.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(s.dialect.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, s.db)
	if err == nil {
		s.logger.Debug("directory schema ready", "dialect", string(s.dialect), "version", version)
	}
	return nil
}

// Close closes the connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const resourceColumns = `id, name, phone, street_address, zip_code, city, state, neighborhood,
	supplies, hours, languages, status, created_at, updated_at`

// List returns resources ordered by name.
func (s *SQLStore) List(ctx context.Context, opts ListOptions) ([]*Resource, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT ` + resourceColumns + ` FROM resources`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return out, nil
}

// Get returns the resource with id.
func (s *SQLStore) Get(ctx context.Context, id string) (*Resource, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT `+resourceColumns+` FROM resources WHERE id = ?`), id)
	r, err := scanResource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Upsert inserts r or replaces the stored copy, keeping its created_at.
func (s *SQLStore) Upsert(ctx context.Context, r *Resource) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
	if err := r.Validate(); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO resources (`+resourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			street_address = excluded.street_address,
			zip_code = excluded.zip_code,
			city = excluded.city,
			state = excluded.state,
			neighborhood = excluded.neighborhood,
			supplies = excluded.supplies,
			hours = excluded.hours,
			languages = excluded.languages,
			status = excluded.status,
			updated_at = excluded.updated_at`),
		r.ID, r.Name, r.Phone, r.StreetAddress, r.ZipCode, r.City, r.State, r.Neighborhood,
		joinList(r.Supplies), r.Hours, joinList(r.Languages), string(r.Status),
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save resource %s: %w", r.ID, err)
	}
	return nil
}

// ToggleStatus flips a resource between ACTIVE and SUSPENDED.
func (s *SQLStore) ToggleStatus(ctx context.Context, id string) (Status, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, s.dialect.rebind(`SELECT status FROM resources WHERE id = ?`), id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status: %w", err)
	}

	next := Status(current).Toggled()
	if _, err := tx.ExecContext(ctx,
		s.dialect.rebind(`UPDATE resources SET status = ?, updated_at = ? WHERE id = ?`),
		string(next), time.Now().UTC(), id,
	); err != nil {
		return "", fmt.Errorf("failed to update status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit status change: %w", err)
	}

	s.logger.Info("resource status changed", "id", id, "from", current, "to", string(next))
	return next, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResource(sc scanner) (*Resource, error) {
	var (
		r         Resource
		supplies  string
		languages string
		status    string
	)
	err := sc.Scan(
		&r.ID, &r.Name, &r.Phone, &r.StreetAddress, &r.ZipCode, &r.City, &r.State, &r.Neighborhood,
		&supplies, &r.Hours, &languages, &status, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan resource: %w", err)
	}
	r.Supplies = splitList(supplies)
	r.Languages = splitList(languages)
	r.Status = Status(status)
	return &r, nil
}

func joinList(items []string) string {
	return strings.Join(items, filter.DefaultDelimiter)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
