package job

import (
	"context"
	"database/sql"
	"encoding/json"
)

type Repository interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context) ([]Job, error)
	HasActiveForDocument(ctx context.Context, documentID string) (bool, error)

	MarkActive(ctx context.Context, id string, attempt int) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	MarkCompleted(ctx context.Context, id string, summary ResultSummary) error
	MarkFailed(ctx context.Context, id, errMsg string, terminal bool) error
	MarkQueued(ctx context.Context, id string) error

	CountByStatus(ctx context.Context) (map[string]int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, job *Job) error {
	query := `INSERT INTO ingestion_jobs (id, document_id, kind, status, payload)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, job.ID, job.DocumentID, job.Kind, StatusQueued, []byte(job.Payload)).
		Scan(&job.CreatedAt, &job.UpdatedAt)
}

const jobColumns = `id, document_id, kind, status, progress, attempts, error, embeddings_count, content_length, payload, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	j := &Job{}
	var payload []byte
	err := row.Scan(&j.ID, &j.DocumentID, &j.Kind, &j.Status, &j.Progress, &j.Attempts,
		&j.Error, &j.EmbeddingsCount, &j.ContentLength, &payload, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Payload = json.RawMessage(payload)
	return j, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM ingestion_jobs WHERE id = $1`
	return scanJob(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepo) List(ctx context.Context) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM ingestion_jobs ORDER BY created_at DESC LIMIT 200`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (r *PostgresRepo) HasActiveForDocument(ctx context.Context, documentID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM ingestion_jobs WHERE document_id = $1 AND status IN ($2, $3)`
	err := r.db.QueryRowContext(ctx, query, documentID, StatusQueued, StatusActive).Scan(&count)
	return count > 0, err
}

func (r *PostgresRepo) MarkActive(ctx context.Context, id string, attempt int) error {
	query := `UPDATE ingestion_jobs SET status = $2, attempts = $3, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, StatusActive, attempt)
	return err
}

// UpdateProgress is monotonic: a stale update can never move progress
// backwards.
func (r *PostgresRepo) UpdateProgress(ctx context.Context, id string, progress int) error {
	query := `UPDATE ingestion_jobs SET progress = GREATEST(progress, $2), updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, progress)
	return err
}

func (r *PostgresRepo) MarkCompleted(ctx context.Context, id string, summary ResultSummary) error {
	query := `UPDATE ingestion_jobs
	          SET status = $2, progress = 100, error = '', embeddings_count = $3, content_length = $4, updated_at = now()
	          WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, StatusCompleted, summary.EmbeddingsCount, summary.ContentLength)
	return err
}

// MarkFailed records a failure. A non-terminal failure keeps the job
// queued (a requeue is already scheduled); a terminal one ends it.
func (r *PostgresRepo) MarkFailed(ctx context.Context, id, errMsg string, terminal bool) error {
	status := StatusQueued
	if terminal {
		status = StatusFailed
	}
	query := `UPDATE ingestion_jobs SET status = $2, error = $3, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status, errMsg)
	return err
}

func (r *PostgresRepo) MarkQueued(ctx context.Context, id string) error {
	query := `UPDATE ingestion_jobs SET status = $2, progress = 0, error = '', updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, StatusQueued)
	return err
}

func (r *PostgresRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM ingestion_jobs GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
