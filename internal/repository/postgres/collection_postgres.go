package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"photoapi/internal/model"
	"photoapi/internal/repository"
)

// CollectionPostgres is a PostgreSQL implementation of repository.CollectionRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type CollectionPostgres struct {
	db *sql.DB
}

// NewCollectionPostgres creates a new CollectionPostgres repository.
func NewCollectionPostgres(db *sql.DB) *CollectionPostgres {
	return &CollectionPostgres{db: db}
}

var _ repository.CollectionRepository = (*CollectionPostgres)(nil)

// FindWithPhotos loads the collection row, then its photos.
func (r *CollectionPostgres) FindWithPhotos(ctx context.Context, id string) (*model.Collection, error) {
	const qCollection = `
		SELECT id, name, slug, cover_url, created_at
		FROM collection
		WHERE id = $1
	`
	var c model.Collection
	if err := r.db.QueryRowContext(ctx, qCollection, id).Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.CoverURL,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}

	const qPhotos = `
		SELECT id, collection_id, storage_path, COALESCE(s3_key, ''), COALESCE(public_url, ''), created_at
		FROM collection_photo
		WHERE collection_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, qPhotos, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Photos = make([]model.Photo, 0)
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(
			&p.ID,
			&p.CollectionID,
			&p.StoragePath,
			&p.S3Key,
			&p.PublicURL,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		c.Photos = append(c.Photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns collections using LIMIT/OFFSET pagination and a total count.
func (r *CollectionPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Collection], error) {
	const qCount = `SELECT COUNT(*) FROM collection`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, name, slug, cover_url, created_at
		FROM collection
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Collection, 0)
	for rows.Next() {
		var c model.Collection
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Slug,
			&c.CoverURL,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Collection]{
		Items: items,
		Total: total,
	}, nil
}

// CreatePhoto inserts a new photo row and returns the stored record.
func (r *CollectionPostgres) CreatePhoto(ctx context.Context, p *model.Photo) (*model.Photo, error) {
	const q = `
		INSERT INTO collection_photo (id, collection_id, storage_path, s3_key, public_url, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING id, collection_id, storage_path, COALESCE(s3_key, ''), COALESCE(public_url, ''), created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.CollectionID,
		p.StoragePath,
		p.S3Key,
		p.PublicURL,
		p.CreatedAt,
	)
	var out model.Photo
	if err := row.Scan(
		&out.ID,
		&out.CollectionID,
		&out.StoragePath,
		&out.S3Key,
		&out.PublicURL,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePhotos removes the given photo rows with a single IN (...) statement.
func (r *CollectionPostgres) DeletePhotos(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := `DELETE FROM collection_photo WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}
