package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/fileinput/internal/config"
	"github.com/markdave123-py/fileinput/internal/core"
	"github.com/markdave123-py/fileinput/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

var _ core.TaskLedger = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn, err := withSSL(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// withSSL appends verify-ca parameters when a root certificate is configured.
func withSSL(databaseURL, certPath string) (string, error) {
	if certPath == "" {
		return databaseURL, nil
	}
	if _, err := os.Stat(certPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", certPath, err)
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", certPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

const taskRecordColumns = `id, batch_id, owner, source, position, file_name, content_type, size,
	storage_url, status, error_kind, error, output, created_at`

func (c *DatabaseClient) CreateTaskRecord(ctx context.Context, rec *models.TaskRecord) error {
	if rec == nil {
		return errors.New("nil task record")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	q := `INSERT INTO task_records (` + taskRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := c.db.ExecContext(ctx, q,
		rec.ID, rec.BatchID, rec.Owner, rec.Source, rec.Position, rec.FileName, rec.ContentType, rec.Size,
		rec.StorageURL, rec.Status, rec.ErrorKind, rec.Error, rec.Output, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert task record: %w", err)
	}
	return nil
}

func (c *DatabaseClient) GetTaskRecord(ctx context.Context, id string) (*models.TaskRecord, error) {
	q := `SELECT ` + taskRecordColumns + ` FROM task_records WHERE id = $1`
	rec, err := scanTaskRecord(c.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *DatabaseClient) ListTaskRecordsByBatch(ctx context.Context, batchID string) ([]models.TaskRecord, error) {
	q := `SELECT ` + taskRecordColumns + ` FROM task_records WHERE batch_id = $1 ORDER BY position`
	rows, err := c.db.QueryContext(ctx, q, batchID)
	if err != nil {
		return nil, fmt.Errorf("list task records: %w", err)
	}
	defer rows.Close()

	var out []models.TaskRecord
	for rows.Next() {
		rec, err := scanTaskRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskRecord(row rowScanner) (*models.TaskRecord, error) {
	var r models.TaskRecord
	err := row.Scan(&r.ID, &r.BatchID, &r.Owner, &r.Source, &r.Position, &r.FileName, &r.ContentType, &r.Size,
		&r.StorageURL, &r.Status, &r.ErrorKind, &r.Error, &r.Output, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
