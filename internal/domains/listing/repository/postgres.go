package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"wanderlust/internal/domains/listing/model"
	"wanderlust/internal/shared/utils"
	pkgdb "wanderlust/pkg/database"
)

const listingColumns = `
	l.id, l.title, l.description, l.location, l.country, l.price, l.category,
	l.image_url, l.image_key, l.longitude, l.latitude, l.owner_id,
	l.review_ids, l.created_at, l.updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// ========================================
// SCANNING
// ========================================

// scanListing reads listingColumns, followed by any extra destinations.
func scanListing(row pgx.Row, extra ...any) (*model.Listing, error) {
	var (
		l        model.Listing
		category string
		ownerID  uuid.NullUUID
	)
	dest := []any{
		&l.ID,
		&l.Title,
		&l.Description,
		&l.Location,
		&l.Country,
		&l.Price,
		&category,
		&l.Image.URL,
		&l.Image.Key,
		&l.Geometry.Longitude,
		&l.Geometry.Latitude,
		&ownerID,
		&l.ReviewIDs,
		&l.CreatedAt,
		&l.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	l.Category = model.Category(category)
	if ownerID.Valid {
		l.OwnerID = ownerID.UUID
	}
	if l.ReviewIDs == nil {
		l.ReviewIDs = []uuid.UUID{}
	}
	return &l, nil
}

func (r *postgresRepository) queryListings(ctx context.Context, query string, args ...any) ([]model.Listing, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	listings := make([]model.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

// reviewIDArray renders ids as a Postgres array literal. Queries bind it as
// text and cast to uuid[].
func reviewIDArray(ids []uuid.UUID) pq.StringArray {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func nullableOwner(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

// ========================================
// CRUD
// ========================================

func (r *postgresRepository) Create(ctx context.Context, l *model.Listing) error {
	query := `
		INSERT INTO listings (
			id, title, description, location, country, price, category,
			image_url, image_key, longitude, latitude, owner_id,
			review_ids, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13::text::uuid[], $14, $15
		)
	`
	_, err := r.pool.Exec(ctx, query,
		l.ID,
		l.Title,
		l.Description,
		l.Location,
		l.Country,
		l.Price,
		string(l.Category),
		l.Image.URL,
		l.Image.Key,
		l.Geometry.Longitude,
		l.Geometry.Latitude,
		nullableOwner(l.OwnerID),
		reviewIDArray(l.ReviewIDs),
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.id = $1`

	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return l, nil
}

func (r *postgresRepository) FindDetail(ctx context.Context, id uuid.UUID) (*model.Detail, error) {
	// STEP 1: listing + owner
	query := `
		SELECT ` + listingColumns + `, u.username
		FROM listings l
		LEFT JOIN users u ON u.id = l.owner_id
		WHERE l.id = $1
	`
	var ownerName *string
	listing, err := scanListing(r.pool.QueryRow(ctx, query, id), &ownerName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find listing detail: %w", err)
	}

	detail := &model.Detail{Listing: *listing, Reviews: []model.ReviewView{}}
	if ownerName != nil && listing.OwnerID != uuid.Nil {
		detail.Owner = &model.Person{ID: listing.OwnerID, Username: *ownerName}
	}

	if len(listing.ReviewIDs) == 0 {
		return detail, nil
	}

	// STEP 2: reviews in reference order, with authors
	reviewQuery := `
		SELECT r.id, r.comment, r.rating, r.created_at, r.author_id, u.username
		FROM unnest($1::text::uuid[]) WITH ORDINALITY AS ref(id, ord)
		JOIN reviews r ON r.id = ref.id
		LEFT JOIN users u ON u.id = r.author_id
		ORDER BY ref.ord
	`
	rows, err := r.pool.Query(ctx, reviewQuery, reviewIDArray(listing.ReviewIDs))
	if err != nil {
		return nil, fmt.Errorf("query listing reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rv         model.ReviewView
			authorID   uuid.NullUUID
			authorName *string
		)
		if err := rows.Scan(&rv.ID, &rv.Comment, &rv.Rating, &rv.CreatedAt, &authorID, &authorName); err != nil {
			return nil, fmt.Errorf("scan listing review: %w", err)
		}
		if authorID.Valid && authorName != nil {
			rv.Author = &model.Person{ID: authorID.UUID, Username: *authorName}
		}
		detail.Reviews = append(detail.Reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing reviews: %w", err)
	}
	return detail, nil
}

func (r *postgresRepository) Update(ctx context.Context, l *model.Listing) error {
	query := `
		UPDATE listings
		SET title = $2, description = $3, location = $4, country = $5,
			price = $6, category = $7, image_url = $8, image_key = $9,
			longitude = $10, latitude = $11, updated_at = $12
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		l.ID,
		l.Title,
		l.Description,
		l.Location,
		l.Country,
		l.Price,
		string(l.Category),
		l.Image.URL,
		l.Image.Key,
		l.Geometry.Longitude,
		l.Geometry.Latitude,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrListingNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return pkgdb.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		// STEP 1: reviews referenced by or pointing at the listing
		_, err := tx.Exec(ctx, `
			DELETE FROM reviews
			WHERE listing_id = $1
			   OR id = ANY (SELECT unnest(review_ids) FROM listings WHERE id = $1)
		`, id)
		if err != nil {
			return fmt.Errorf("delete listing reviews: %w", err)
		}

		// STEP 2: the listing itself
		tag, err := tx.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete listing: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrListingNotFound
		}
		return nil
	})
}

// ========================================
// QUERIES
// ========================================

func (r *postgresRepository) List(ctx context.Context) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l ORDER BY l.created_at, l.id`
	return r.queryListings(ctx, query)
}

func (r *postgresRepository) ListByCategory(ctx context.Context, category model.Category) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.category = $1 ORDER BY l.created_at, l.id`
	return r.queryListings(ctx, query, string(category))
}

func (r *postgresRepository) Search(ctx context.Context, q string) ([]model.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings l
		WHERE l.title ILIKE $1 ESCAPE '\'
		   OR l.country ILIKE $1 ESCAPE '\'
		   OR l.location ILIKE $1 ESCAPE '\'
		ORDER BY l.created_at, l.id
	`
	return r.queryListings(ctx, query, utils.ContainsPattern(q))
}

// ========================================
// REVIEW REFERENCES
// ========================================

func (r *postgresRepository) PullReview(ctx context.Context, listingID, reviewID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET review_ids = array_remove(review_ids, $2) WHERE id = $1`,
		listingID, reviewID,
	)
	if err != nil {
		return fmt.Errorf("pull review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrListingNotFound
	}
	return nil
}

// ========================================
// MAINTENANCE
// ========================================

func (r *postgresRepository) ListAtOrigin(ctx context.Context, limit int) ([]model.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings l
		WHERE l.longitude = 0 AND l.latitude = 0
		ORDER BY l.created_at, l.id
		LIMIT NULLIF($1::int, 0)
	`
	return r.queryListings(ctx, query, limit)
}

func (r *postgresRepository) SetGeometry(ctx context.Context, id uuid.UUID, g model.Geometry) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET longitude = $2, latitude = $3, updated_at = NOW() WHERE id = $1`,
		id, g.Longitude, g.Latitude,
	)
	if err != nil {
		return fmt.Errorf("set listing geometry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrListingNotFound
	}
	return nil
}

func (r *postgresRepository) SetCategory(ctx context.Context, id uuid.UUID, c model.Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET category = $2, updated_at = NOW() WHERE id = $1`,
		id, string(c),
	)
	if err != nil {
		return fmt.Errorf("set listing category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrListingNotFound
	}
	return nil
}
