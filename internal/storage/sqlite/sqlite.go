package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/liftoff-sh/liftoff/internal/log"
	"github.com/liftoff-sh/liftoff/internal/model"
	"github.com/liftoff-sh/liftoff/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateDeployment stores a deployment record and its per-service outcomes.
func (r *Repository) CreateDeployment(ctx context.Context, d model.Deployment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO deployments (
			id, project_name, repo_url, region, status,
			database_connection, cost_estimate, fingerprint, error, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID, d.ProjectName, d.RepoURL, d.Region, d.Status,
		d.DatabaseConnection, d.CostEstimate, d.Fingerprint, d.Error, d.CreatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: deployments.") {
			return fmt.Errorf("deployment already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert deployment: %w", err)
	}

	for _, svc := range d.Services {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO deployment_services (deployment_id, name, url, image, status, error)
			VALUES (?, ?, ?, ?, ?, ?)
		`, d.ID, svc.Name, svc.URL, svc.Image, svc.Status, svc.Error)
		if err != nil {
			return fmt.Errorf("could not insert deployment service: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Recorded deployment %s", d.ID)
	return nil
}

// GetDeployment retrieves a deployment by ID.
func (r *Repository) GetDeployment(ctx context.Context, id string) (*model.Deployment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project_name, repo_url, region, status,
		       database_connection, cost_estimate, fingerprint, error, created_at
		FROM deployments
		WHERE id = ?
	`, id)

	d, err := scanDeployment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("deployment %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query deployment: %w", err)
	}

	if err := r.loadServices(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

// ListDeployments returns all deployments, most recent first.
func (r *Repository) ListDeployments(ctx context.Context) ([]model.Deployment, error) {
	return r.list(ctx, `
		SELECT id, project_name, repo_url, region, status,
		       database_connection, cost_estimate, fingerprint, error, created_at
		FROM deployments
		ORDER BY created_at DESC
	`)
}

// ListByFingerprint returns deployments whose plan shape matched, most recent
// first.
func (r *Repository) ListByFingerprint(ctx context.Context, fingerprint string) ([]model.Deployment, error) {
	return r.list(ctx, `
		SELECT id, project_name, repo_url, region, status,
		       database_connection, cost_estimate, fingerprint, error, created_at
		FROM deployments
		WHERE fingerprint = ?
		ORDER BY created_at DESC
	`, fingerprint)
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]model.Deployment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query deployments: %w", err)
	}
	defer rows.Close()

	var deployments []model.Deployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan deployment: %w", err)
		}
		deployments = append(deployments, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate deployments: %w", err)
	}

	for i := range deployments {
		if err := r.loadServices(ctx, &deployments[i]); err != nil {
			return nil, err
		}
	}

	return deployments, nil
}

func (r *Repository) loadServices(ctx context.Context, d *model.Deployment) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, url, image, status, error
		FROM deployment_services
		WHERE deployment_id = ?
		ORDER BY name
	`, d.ID)
	if err != nil {
		return fmt.Errorf("could not query deployment services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var svc model.DeployedService
		if err := rows.Scan(&svc.Name, &svc.URL, &svc.Image, &svc.Status, &svc.Error); err != nil {
			return fmt.Errorf("could not scan deployment service: %w", err)
		}
		d.Services = append(d.Services, svc)
	}

	return rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDeployment(row scanner) (*model.Deployment, error) {
	var d model.Deployment
	var createdAt int64

	err := row.Scan(
		&d.ID, &d.ProjectName, &d.RepoURL, &d.Region, &d.Status,
		&d.DatabaseConnection, &d.CostEstimate, &d.Fingerprint, &d.Error, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	d.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &d, nil
}
