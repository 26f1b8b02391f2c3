package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"docgate/internal/model"
	"docgate/internal/repository"
)

const uniqueViolation = "23505"

const documentColumns = `id, title, description, file_type, size, owner, created_at, tags, status, access_level`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Read-modify-write operations lock the row with SELECT ... FOR UPDATE.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (model.Document, error) {
	var (
		d    model.Document
		tags []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.FileType,
		&d.Size,
		&d.Owner,
		&d.CreatedAt,
		&tags,
		&d.Status,
		&d.AccessLevel,
	); err != nil {
		return model.Document{}, err
	}
	d.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &d.Tags); err != nil {
			return model.Document{}, fmt.Errorf("decode tags of %s: %w", d.ID, err)
		}
	}
	d.CreatedAt = d.CreatedAt.UTC()
	return d, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateID
	}
	return err
}

// Insert adds a new document row and returns the stored record.
func (r *DocumentPostgres) Insert(ctx context.Context, doc model.Document) (*model.Document, error) {
	tags, err := encodeTags(doc.Tags)
	if err != nil {
		return nil, err
	}
	q := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.FileType,
		doc.Size,
		doc.Owner,
		doc.CreatedAt,
		tags,
		doc.Status,
		doc.AccessLevel,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

// List returns every document, oldest first.
func (r *DocumentPostgres) List(ctx context.Context) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update locks the row, hands it to fn and writes back the result in one transaction.
func (r *DocumentPostgres) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 FOR UPDATE`
	current, err := scanDocument(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapError(err)
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	tags, err := encodeTags(next.Tags)
	if err != nil {
		return nil, err
	}

	const qUpdate = `
		UPDATE documents
		SET title = $2, description = $3, file_type = $4, size = $5, tags = $6, status = $7, access_level = $8
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, qUpdate,
		id,
		next.Title,
		next.Description,
		next.FileType,
		next.Size,
		tags,
		next.Status,
		next.AccessLevel,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	next.ID = id
	next.Owner = current.Owner
	next.CreatedAt = current.CreatedAt
	return &next, nil
}

// Delete locks the row, runs check and removes it in one transaction.
func (r *DocumentPostgres) Delete(ctx context.Context, id string, check repository.DeleteCheck) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 FOR UPDATE`
	current, err := scanDocument(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		return mapError(err)
	}
	if check != nil {
		if err := check(current); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// PingContext checks database connectivity.
func (r *DocumentPostgres) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
