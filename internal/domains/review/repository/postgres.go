package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wanderlust/internal/domains/review/model"
	pkgdb "wanderlust/pkg/database"
)

const foreignKeyViolation = "23503"

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// ========================================
// CREATE
// ========================================

func (r *postgresRepository) Create(ctx context.Context, review *model.Review) error {
	return pkgdb.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		// STEP 1: the review row
		_, err := tx.Exec(ctx, `
			INSERT INTO reviews (id, listing_id, author_id, comment, rating, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			review.ID,
			review.ListingID,
			uuid.NullUUID{UUID: review.AuthorID, Valid: review.AuthorID != uuid.Nil},
			review.Comment,
			review.Rating,
			review.CreatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
				return model.ErrListingNotFound
			}
			return fmt.Errorf("insert review: %w", err)
		}

		// STEP 2: the reference on the listing
		tag, err := tx.Exec(ctx,
			`UPDATE listings SET review_ids = array_append(review_ids, $2) WHERE id = $1`,
			review.ListingID, review.ID,
		)
		if err != nil {
			return fmt.Errorf("append review to listing: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrListingNotFound
		}
		return nil
	})
}

// ========================================
// READ / DELETE
// ========================================

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	query := `
		SELECT id, listing_id, author_id, comment, rating, created_at
		FROM reviews
		WHERE id = $1
	`
	var (
		review   model.Review
		authorID uuid.NullUUID
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&review.ID,
		&review.ListingID,
		&authorID,
		&review.Comment,
		&review.Rating,
		&review.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	if authorID.Valid {
		review.AuthorID = authorID.UUID
	}
	return &review, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}
