package postgres

import (
	"context"
	"database/sql"

	"pdfchat/internal/model"
	"pdfchat/internal/repository"
)

// PDFPostgres is a PostgreSQL implementation of repository.PDFRepository.
type PDFPostgres struct {
	db *sql.DB
}

// NewPDFPostgres creates a new PDFPostgres repository.
func NewPDFPostgres(db *sql.DB) *PDFPostgres {
	return &PDFPostgres{db: db}
}

var _ repository.PDFRepository = (*PDFPostgres)(nil)

// Create inserts a PDF metadata row and returns the stored record.
func (r *PDFPostgres) Create(ctx context.Context, doc *model.PDFDocument) (*model.PDFDocument, error) {
	const q = `
		INSERT INTO pdfs (id, user_id, filename, storage_path, size, chunks_count, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, filename, storage_path, size, chunks_count, uploaded_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.UserID,
		doc.Filename,
		doc.StoragePath,
		doc.Size,
		doc.ChunksCount,
		doc.UploadedAt,
	)
	var out model.PDFDocument
	if err := row.Scan(
		&out.ID,
		&out.UserID,
		&out.Filename,
		&out.StoragePath,
		&out.Size,
		&out.ChunksCount,
		&out.UploadedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

// ListByUser returns the user's uploads, newest first.
func (r *PDFPostgres) ListByUser(ctx context.Context, userID string) ([]model.PDFDocument, error) {
	const q = `
		SELECT id, user_id, filename, storage_path, size, chunks_count, uploaded_at
		FROM pdfs
		WHERE user_id = $1
		ORDER BY uploaded_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.PDFDocument, 0)
	for rows.Next() {
		var d model.PDFDocument
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.Filename,
			&d.StoragePath,
			&d.Size,
			&d.ChunksCount,
			&d.UploadedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
